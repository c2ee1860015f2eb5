package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/tui/components"
	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

type recordShowModel struct {
	record       domain.Record
	zone         string
	providerName string
	width        int
	height       int
}

func newRecordShowModel(rec domain.Record, zone, providerName string, width, height int) recordShowModel {
	return recordShowModel{record: rec, zone: zone, providerName: providerName, width: width, height: height}
}

func (m recordShowModel) update(msg tea.Msg) (recordShowModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace", "left", "h", "q":
			return m, func() tea.Msg { return navigateBackMsg{} }
		case "e":
			return m, func() tea.Msg { return navigateEditMsg{record: m.record} }
		case "d":
			return m, func() tea.Msg { return navigateDeleteMsg{record: m.record} }
		}
	}
	return m, nil
}

func (m recordShowModel) View() string {
	header := components.Header(m.width, "dns > "+m.zone+" > "+m.record.Name, m.providerName)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "e", Desc: "edit"},
		{Key: "d", Desc: "delete"},
		{Key: "esc", Desc: "back"},
	})
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
	content := lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.renderCard())
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m recordShowModel) renderCard() string {
	r := m.record
	title := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.Title.Render(r.Name), "  ", styles.RecordTypeStyle(string(r.Type)).Render(string(r.Type)))

	rows := []string{title, ""}
	for _, f := range recordFields(r) {
		rows = append(rows, fieldRow(12, f.label, styles.Value.Render(f.value)))
	}
	return styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

type field struct {
	label string
	value string
}

// recordFields lists what a detail card shows for r. Priority and notes
// appear only when set.
func recordFields(r domain.Record) []field {
	fields := []field{
		{"ID", dash(r.ID)},
		{"Name", r.Name},
		{"Type", string(r.Type)},
		{"Content", r.Content},
		{"TTL", strconv.Itoa(r.TTL)},
	}
	if r.Priority > 0 {
		fields = append(fields, field{"Priority", strconv.Itoa(r.Priority)})
	}
	if r.Notes != "" {
		fields = append(fields, field{"Notes", r.Notes})
	}
	return fields
}

func fieldRow(width int, label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Left, lipgloss.NewStyle().Width(width).Render(styles.Label.Render(label)), value)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

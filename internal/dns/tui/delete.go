package tui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/tui/components"
	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

const (
	choiceDelete = iota
	choiceCancel
)

type recordDeleteModel struct {
	record       domain.Record
	zone         string
	providerName string

	// choice starts on Cancel.
	choice int

	width  int
	height int
}

func newRecordDeleteModel(rec domain.Record, zone, providerName string, width, height int) recordDeleteModel {
	return recordDeleteModel{record: rec, zone: zone, providerName: providerName, choice: choiceCancel, width: width, height: height}
}

func (m recordDeleteModel) update(msg tea.Msg) (recordDeleteModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return navigateBackMsg{} }
		case "left", "h":
			m.choice = choiceDelete
		case "right", "l":
			m.choice = choiceCancel
		case "enter":
			if m.choice == choiceCancel {
				return m, func() tea.Msg { return navigateBackMsg{} }
			}
			rec := m.record
			return m, func() tea.Msg { return deleteConfirmedMsg{record: rec} }
		}
	}
	return m, nil
}

func (m recordDeleteModel) View() string {
	header := components.Header(m.width, "dns > "+m.zone+" > delete", m.providerName)
	footer := components.Footer(m.width, []components.KeyBinding{
		{Key: "←/→", Desc: "select"},
		{Key: "enter", Desc: "confirm"},
		{Key: "esc", Desc: "cancel"},
	})
	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)
	content := lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.renderCard())
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m recordDeleteModel) renderCard() string {
	r := m.record
	fields := []string{
		fieldRow(10, "Name", styles.Value.Render(r.Name)),
		fieldRow(10, "Type", styles.Value.Render(string(r.Type))),
		fieldRow(10, "Content", styles.Value.Render(r.Content)),
		fieldRow(10, "TTL", styles.Value.Render(strconv.Itoa(r.TTL))),
	}

	del, cancel := "[ Delete ]", "[ Cancel ]"
	if m.choice == choiceDelete {
		del = lipgloss.NewStyle().Foreground(styles.White).Background(styles.Red).Render(del)
		cancel = styles.MutedText.Render(cancel)
	} else {
		del = lipgloss.NewStyle().Foreground(styles.Red).Render(del)
		cancel = lipgloss.NewStyle().Foreground(styles.White).Background(styles.Gray).Render(cancel)
	}

	card := styles.Card.BorderForeground(styles.Red).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(styles.Red).Bold(true).Render("Delete DNS Record"),
		"",
		strings.Join(fields, "\n"),
		"",
		styles.ErrorText.Render("This action cannot be undone."),
	))
	return lipgloss.JoinVertical(lipgloss.Center, card, "", lipgloss.JoinHorizontal(lipgloss.Center, del, "  ", cancel))
}

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/dns/services"
	"nathanbeddoewebdev/dnsctl/internal/tui/components"
	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

type recordsLoadedMsg struct{ records []domain.Record }

type recordsErrorMsg struct{ err error }

// typeFilters are cycled with "f". The empty entry shows every type.
var typeFilters = []domain.RecordType{"", domain.RecordTypeA, domain.RecordTypeAAAA, domain.RecordTypeCNAME, domain.RecordTypeMX, domain.RecordTypeTXT}

// chromeHeight approximates header, filter bar, status bar and footer.
const chromeHeight = 9

type recordListModel struct {
	ctx          context.Context
	service      *services.Service
	providerName string

	records   []domain.Record
	filtered  []domain.Record
	cursor    int
	listStart int

	typeFilter domain.RecordType

	loading          bool
	spinner          spinner.Model
	err              error
	persistentStatus string

	width  int
	height int
}

func newRecordListModel(ctx context.Context, svc *services.Service, providerName string) recordListModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	return recordListModel{
		ctx:          ctx,
		service:      svc,
		providerName: providerName,
		loading:      true,
		spinner:      s,
	}
}

func (m recordListModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadRecordsCmd())
}

func (m recordListModel) loadRecordsCmd() tea.Cmd {
	return func() tea.Msg {
		records, err := m.service.ListRecords(m.ctx, domain.Filter{})
		if err != nil {
			return recordsErrorMsg{err}
		}
		return recordsLoadedMsg{records}
	}
}

func (m *recordListModel) applyFilter() {
	m.filtered = make([]domain.Record, 0, len(m.records))
	for _, r := range m.records {
		if m.typeFilter == "" || r.Type == m.typeFilter {
			m.filtered = append(m.filtered, r)
		}
	}
	m.cursor = max(min(m.cursor, len(m.filtered)-1), 0)
	m.updateScroll()
}

func (m recordListModel) visibleRows() int {
	return max(m.height-chromeHeight, 1)
}

func (m *recordListModel) updateScroll() {
	rows := m.visibleRows()
	if m.cursor < m.listStart {
		m.listStart = m.cursor
	} else if m.cursor >= m.listStart+rows {
		m.listStart = m.cursor - rows + 1
	}
}

func (m recordListModel) selected() (domain.Record, bool) {
	if len(m.filtered) == 0 {
		return domain.Record{}, false
	}
	return m.filtered[m.cursor], true
}

func (m recordListModel) update(msg tea.Msg) (recordListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.updateScroll()

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return navigateBackMsg{} }
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			m.updateScroll()
		case "down", "j":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			m.updateScroll()
		case "g":
			m.cursor = 0
			m.updateScroll()
		case "G":
			m.cursor = max(len(m.filtered)-1, 0)
			m.updateScroll()
		case "f":
			for i, t := range typeFilters {
				if t == m.typeFilter {
					m.typeFilter = typeFilters[(i+1)%len(typeFilters)]
					break
				}
			}
			m.applyFilter()
		case "r":
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.loadRecordsCmd())
		case "c":
			return m, func() tea.Msg { return navigateCreateMsg{} }
		case "enter":
			if rec, ok := m.selected(); ok {
				return m, func() tea.Msg { return navigateShowMsg{record: rec} }
			}
		case "e":
			if rec, ok := m.selected(); ok {
				return m, func() tea.Msg { return navigateEditMsg{record: rec} }
			}
		case "d":
			if rec, ok := m.selected(); ok {
				return m, func() tea.Msg { return navigateDeleteMsg{record: rec} }
			}
		}

	case recordsLoadedMsg:
		m.loading = false
		m.err = nil
		m.records = msg.records
		m.applyFilter()

	case recordsErrorMsg:
		m.loading = false
		m.err = msg.err

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m recordListModel) status() (string, bool) {
	if m.err != nil {
		return "Error: " + m.err.Error(), true
	}
	if m.loading {
		return "", false
	}
	status := fmt.Sprintf("%d record(s)", len(m.records))
	if m.persistentStatus != "" {
		status = m.persistentStatus + " | " + status
	}
	return status, false
}

func (m recordListModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := components.Header(m.width, "dns > "+m.service.Domain(), m.providerName)
	bindings := []components.KeyBinding{{Key: "ctrl+c", Desc: "quit"}}
	if !m.loading {
		bindings = []components.KeyBinding{
			{Key: "j/k", Desc: "nav"},
			{Key: "enter", Desc: "show"},
			{Key: "c", Desc: "create"},
			{Key: "e", Desc: "edit"},
			{Key: "d", Desc: "delete"},
			{Key: "f", Desc: "filter"},
			{Key: "r", Desc: "refresh"},
			{Key: "q", Desc: "quit"},
		}
	}
	footer := components.Footer(m.width, bindings)
	message, isErr := m.status()
	statusBar := components.StatusBar(m.width, message, isErr)

	contentH := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer)-lipgloss.Height(statusBar), 1)

	sections := []string{header, m.renderContent(contentH)}
	if statusBar != "" {
		sections = append(sections, statusBar)
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(sections, footer)...)
}

func (m recordListModel) renderContent(height int) string {
	center := func(s string) string {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, s)
	}
	switch {
	case m.loading:
		return center(styles.MutedText.Render(m.spinner.View() + "  Fetching records…"))
	case m.err != nil:
		return center(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
	case len(m.records) == 0:
		return center(styles.MutedText.Render("No records found for this domain."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, m.renderFilterBar(), "", m.renderTable())
	if lines := lipgloss.Height(content); lines < height {
		content += strings.Repeat("\n", height-lines)
	}
	return content
}

func (m recordListModel) renderFilterBar() string {
	parts := []string{"  Filter: "}
	for _, t := range typeFilters {
		label := string(t)
		if t == "" {
			label = "All"
		}
		if t == m.typeFilter {
			parts = append(parts, "["+styles.AccentText.Render(label)+"]")
		} else {
			parts = append(parts, " "+styles.MutedText.Render(label)+" ")
		}
	}
	return strings.Join(parts, "")
}

func (m recordListModel) renderTable() string {
	if len(m.filtered) == 0 {
		return styles.MutedText.Render("  No records match the current filter.")
	}

	zone := m.service.Domain()
	nameW, typeW, ttlW := 24, 8, 8
	contentW := max(m.width-4-nameW-typeW-ttlW, 16)
	cell := func(w int, s string) string { return lipgloss.NewStyle().Width(w).Render(s) }

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		"  ",
		styles.TableHeader.Width(nameW).Render("NAME"),
		styles.TableHeader.Width(typeW).Render("TYPE"),
		styles.TableHeader.Width(contentW).Render("CONTENT"),
		styles.TableHeader.Width(ttlW).Render("TTL"),
	)
	rows := []string{headerRow, styles.MutedText.Render(strings.Repeat("─", max(m.width-4, 1)))}

	end := min(m.listStart+m.visibleRows(), len(m.filtered))
	for i := m.listStart; i < end; i++ {
		r := m.filtered[i]
		name := names.Relative(r.Name, zone)
		if name == "" {
			name = "@"
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			cell(nameW, truncate(name, nameW-2)),
			cell(typeW, styles.RecordTypeStyle(string(r.Type)).Render(string(r.Type))),
			cell(contentW, truncate(r.Content, contentW-2)),
			cell(ttlW, strconv.Itoa(r.TTL)),
		)

		cursor, style := "  ", styles.TableCell
		if i == m.cursor {
			cursor, style = styles.AccentText.Render("> "), styles.TableSelectedRow
		}
		rows = append(rows, cursor+style.Render(row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 4 {
		return s
	}
	return string(r[:n-3]) + "..."
}

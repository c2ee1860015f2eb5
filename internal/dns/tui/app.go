// Package tui is the interactive record browser behind "dnsctl dns list"
// on a terminal: list, show, create, edit and delete records of one zone.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/services"
	"nathanbeddoewebdev/dnsctl/internal/tui/components"
	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

// --- Navigation messages ---

type navigateShowMsg struct{ record domain.Record }

type navigateCreateMsg struct{}

type navigateEditMsg struct{ record domain.Record }

type navigateDeleteMsg struct{ record domain.Record }

type navigateBackMsg struct{}

// --- Action messages ---

type createConfirmedMsg struct{ opts domain.CreateRecordOpts }

type updateConfirmedMsg struct {
	record domain.Record
	opts   domain.UpdateRecordOpts
}

type deleteConfirmedMsg struct{ record domain.Record }

// actionResultMsg reports a finished create, update or delete.
type actionResultMsg struct {
	done string
	err  error
}

type appView int

const (
	viewRecordList appView = iota
	viewRecordShow
	viewRecordForm
	viewRecordDelete
	viewAction
)

type appModel struct {
	ctx          context.Context
	service      *services.Service
	providerName string
	view         appView

	list   recordListModel
	show   recordShowModel
	form   recordFormModel
	delete recordDeleteModel

	actionSpinner spinner.Model
	actionLabel   string
	actionErr     error

	width  int
	height int
}

// Run opens the browser on the service's zone and blocks until the user
// quits. ctx is used for every provider call.
func Run(ctx context.Context, service *services.Service, providerName string) error {
	_, err := tea.NewProgram(newAppModel(ctx, service, providerName), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func newAppModel(ctx context.Context, service *services.Service, providerName string) appModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	return appModel{
		ctx:           ctx,
		service:       service,
		providerName:  providerName,
		view:          viewRecordList,
		list:          newRecordListModel(ctx, service, providerName),
		actionSpinner: s,
	}
}

func (m appModel) Init() tea.Cmd {
	return m.list.Init()
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.view == viewAction {
			if m.actionErr != nil && (msg.String() == "esc" || msg.String() == "enter") {
				m.view = viewRecordList
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.width, m.list.height = msg.Width, msg.Height
		return m.updateChild(msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if m.view == viewAction {
			var cmd tea.Cmd
			m.actionSpinner, cmd = m.actionSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case navigateShowMsg:
		m.view = viewRecordShow
		m.show = newRecordShowModel(msg.record, m.service.Domain(), m.providerName, m.width, m.height)
		return m, nil

	case navigateCreateMsg:
		m.view = viewRecordForm
		m.form = newRecordCreateModel(m.service.Domain(), m.providerName, m.width, m.height)
		return m, m.form.Init()

	case navigateEditMsg:
		m.view = viewRecordForm
		m.form = newRecordEditModel(msg.record, m.service.Domain(), m.providerName, m.width, m.height)
		return m, m.form.Init()

	case navigateDeleteMsg:
		m.view = viewRecordDelete
		m.delete = newRecordDeleteModel(msg.record, m.service.Domain(), m.providerName, m.width, m.height)
		return m, nil

	case navigateBackMsg:
		if m.view == viewRecordList {
			return m, tea.Quit
		}
		m.view = viewRecordList
		return m, nil

	case createConfirmedMsg:
		return m.startAction("Creating "+describeOpts(msg.opts), m.createCmd(msg.opts))

	case updateConfirmedMsg:
		return m.startAction("Updating "+describeRecord(msg.record), m.updateCmd(msg.record, msg.opts))

	case deleteConfirmedMsg:
		return m.startAction("Deleting "+describeRecord(msg.record), m.deleteCmd(msg.record))

	case actionResultMsg:
		if msg.err != nil {
			m.actionErr = msg.err
			return m, nil
		}
		m.view = viewRecordList
		m.list.persistentStatus = msg.done
		m.list.loading = true
		m.list.err = nil
		return m, m.list.loadRecordsCmd()
	}

	return m.updateChild(msg)
}

func (m appModel) startAction(label string, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.view = viewAction
	m.actionLabel = label
	m.actionErr = nil
	return m, tea.Batch(m.actionSpinner.Tick, cmd)
}

func (m appModel) createCmd(opts domain.CreateRecordOpts) tea.Cmd {
	return func() tea.Msg {
		err := m.service.CreateRecord(m.ctx, opts)
		return actionResultMsg{done: "Created " + describeOpts(opts), err: err}
	}
}

func (m appModel) updateCmd(rec domain.Record, opts domain.UpdateRecordOpts) tea.Cmd {
	return func() tea.Msg {
		err := m.service.UpdateRecord(m.ctx, recordTarget(rec), opts)
		return actionResultMsg{done: "Updated " + describeRecord(rec), err: err}
	}
}

func (m appModel) deleteCmd(rec domain.Record) tea.Cmd {
	return func() tea.Msg {
		err := m.service.DeleteRecord(m.ctx, recordTarget(rec))
		return actionResultMsg{done: "Deleted " + describeRecord(rec), err: err}
	}
}

// recordTarget selects exactly rec. Type, name and content identify a
// record on every backend, including those whose IDs are derived from
// the name.
func recordTarget(rec domain.Record) domain.Target {
	return domain.ByFilter(domain.Filter{Type: rec.Type, Name: rec.Name, Content: rec.Content})
}

func describeRecord(r domain.Record) string {
	return fmt.Sprintf("%s %s", r.Type, r.Name)
}

func describeOpts(o domain.CreateRecordOpts) string {
	name := o.Name
	if name == "" {
		name = "@"
	}
	return fmt.Sprintf("%s %s", o.Type, name)
}

func (m appModel) updateChild(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewRecordList:
		m.list, cmd = m.list.update(msg)
	case viewRecordShow:
		m.show, cmd = m.show.update(msg)
	case viewRecordForm:
		m.form, cmd = m.form.update(msg)
	case viewRecordDelete:
		m.delete, cmd = m.delete.update(msg)
	}
	return m, cmd
}

func (m appModel) View() string {
	switch m.view {
	case viewRecordShow:
		return m.show.View()
	case viewRecordForm:
		return m.form.View()
	case viewRecordDelete:
		return m.delete.View()
	case viewAction:
		return m.actionView()
	}
	return m.list.View()
}

func (m appModel) actionView() string {
	header := components.Header(m.width, "dns > "+m.service.Domain(), m.providerName)
	content := fmt.Sprintf("\n  %s %s\n", m.actionSpinner.View(), m.actionLabel)
	var footer string
	if m.actionErr != nil {
		content += fmt.Sprintf("\n  %s\n", styles.ErrorText.Render(m.actionErr.Error()))
		footer = components.Footer(m.width, []components.KeyBinding{{Key: "esc", Desc: "back"}})
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

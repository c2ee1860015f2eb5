package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/tui/components"
	"nathanbeddoewebdev/dnsctl/internal/tui/styles"
)

type formStep int

const (
	stepType formStep = iota
	stepName
	stepContent
	stepTTL
	stepPriority
	stepNotes
	stepConfirm
)

var stepTitles = map[formStep]string{
	stepType:     "Type",
	stepName:     "Name",
	stepContent:  "Content",
	stepTTL:      "TTL",
	stepPriority: "Priority",
	stepNotes:    "Notes",
	stepConfirm:  "Confirm",
}

// formTypes are offered when creating a record.
var formTypes = []domain.RecordType{
	domain.RecordTypeA,
	domain.RecordTypeAAAA,
	domain.RecordTypeCNAME,
	domain.RecordTypeMX,
	domain.RecordTypeTXT,
	domain.RecordTypeSRV,
	domain.RecordTypeCAA,
	domain.RecordTypeNS,
}

// recordFormModel drives both create and edit. Editing starts at the
// name step with the inputs filled from the record.
type recordFormModel struct {
	zone         string
	providerName string

	editing  bool
	original domain.Record

	recordType domain.RecordType
	typeCursor int
	step       formStep
	inputs     map[formStep]textinput.Model
	err        string

	width  int
	height int
}

func newRecordForm(zone, providerName string, width, height int) recordFormModel {
	placeholders := map[formStep]string{
		stepName:     "e.g. www (@ for the apex)",
		stepContent:  "e.g. 1.2.3.4",
		stepTTL:      "seconds, empty for the default",
		stepPriority: "e.g. 10",
		stepNotes:    "optional",
	}
	inputs := make(map[formStep]textinput.Model, len(placeholders))
	for step, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.PromptStyle = styles.AccentText
		in.TextStyle = styles.Value
		in.PlaceholderStyle = styles.MutedText
		inputs[step] = in
	}
	return recordFormModel{zone: zone, providerName: providerName, inputs: inputs, width: width, height: height}
}

func newRecordCreateModel(zone, providerName string, width, height int) recordFormModel {
	m := newRecordForm(zone, providerName, width, height)
	m.step = stepType
	return m
}

func newRecordEditModel(rec domain.Record, zone, providerName string, width, height int) recordFormModel {
	m := newRecordForm(zone, providerName, width, height)
	m.editing = true
	m.original = rec
	m.recordType = rec.Type
	m.setValue(stepName, displayName(rec.Name, zone))
	m.setValue(stepContent, rec.Content)
	if rec.TTL > 0 {
		m.setValue(stepTTL, strconv.Itoa(rec.TTL))
	}
	if rec.Priority > 0 {
		m.setValue(stepPriority, strconv.Itoa(rec.Priority))
	}
	m.setValue(stepNotes, rec.Notes)
	m.step = stepName
	m.focusInput()
	return m
}

// displayName is name relative to zone, "@" for the apex.
func displayName(name, zone string) string {
	if rel := names.Relative(name, zone); rel != "" {
		return rel
	}
	return "@"
}

func hasPriority(t domain.RecordType) bool {
	return t == domain.RecordTypeMX || t == domain.RecordTypeSRV
}

// steps lists the steps that apply to the form, in order.
func (m recordFormModel) steps() []formStep {
	var out []formStep
	if !m.editing {
		out = append(out, stepType)
	}
	out = append(out, stepName, stepContent, stepTTL)
	if hasPriority(m.recordType) {
		out = append(out, stepPriority)
	}
	return append(out, stepNotes, stepConfirm)
}

func (m *recordFormModel) setValue(step formStep, v string) {
	in := m.inputs[step]
	in.SetValue(v)
	m.inputs[step] = in
}

func (m recordFormModel) value(step formStep) string {
	return strings.TrimSpace(m.inputs[step].Value())
}

func (m *recordFormModel) focusInput() {
	for k, in := range m.inputs {
		if k == m.step {
			in.Focus()
		} else {
			in.Blur()
		}
		m.inputs[k] = in
	}
}

func (m *recordFormModel) move(delta int) {
	steps := m.steps()
	i := slices.Index(steps, m.step) + delta
	m.step = steps[max(min(i, len(steps)-1), 0)]
	m.err = ""
	m.focusInput()
}

func (m recordFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m recordFormModel) update(msg tea.Msg) (recordFormModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			if m.step == m.steps()[0] {
				return m, func() tea.Msg { return navigateBackMsg{} }
			}
			m.move(-1)
			return m, nil
		case "enter":
			return m.submit()
		case "up", "k":
			if m.step == stepType && m.typeCursor > 0 {
				m.typeCursor--
				return m, nil
			}
		case "down", "j":
			if m.step == stepType && m.typeCursor < len(formTypes)-1 {
				m.typeCursor++
				return m, nil
			}
		}
	}
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
	}

	in, ok := m.inputs[m.step]
	if !ok {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.step], cmd = in.Update(msg)
	return m, cmd
}

// submit validates the current step and moves on; on the confirm step it
// emits the create or update.
func (m recordFormModel) submit() (recordFormModel, tea.Cmd) {
	switch m.step {
	case stepType:
		m.recordType = formTypes[m.typeCursor]
	case stepContent:
		if m.value(stepContent) == "" {
			m.err = "content cannot be empty"
			return m, nil
		}
	case stepTTL, stepPriority:
		if _, err := optionalInt(m.value(m.step)); err != nil {
			m.err = fmt.Sprintf("%s must be a positive number", strings.ToLower(stepTitles[m.step]))
			return m, nil
		}
	case stepConfirm:
		if !m.editing {
			opts := m.createOpts()
			return m, func() tea.Msg { return createConfirmedMsg{opts: opts} }
		}
		opts, changed := m.updateOpts()
		if !changed {
			m.err = "nothing to update"
			return m, nil
		}
		rec := m.original
		return m, func() tea.Msg { return updateConfirmedMsg{record: rec, opts: opts} }
	}
	m.move(1)
	return m, nil
}

// optionalInt parses a positive integer; empty means zero.
func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil && n <= 0 {
		err = fmt.Errorf("%d is not positive", n)
	}
	return n, err
}

func (m recordFormModel) createOpts() domain.CreateRecordOpts {
	ttl, _ := optionalInt(m.value(stepTTL))
	opts := domain.CreateRecordOpts{
		Type:    m.recordType,
		Name:    m.value(stepName),
		Content: m.value(stepContent),
		TTL:     ttl,
		Notes:   m.value(stepNotes),
	}
	if hasPriority(m.recordType) {
		opts.Priority, _ = optionalInt(m.value(stepPriority))
	}
	return opts
}

// updateOpts carries only the fields that differ from the original record.
func (m recordFormModel) updateOpts() (domain.UpdateRecordOpts, bool) {
	var opts domain.UpdateRecordOpts
	r := m.original

	if name := m.value(stepName); names.Relative(name, m.zone) != names.Relative(r.Name, m.zone) {
		opts.Name = displayName(name, m.zone)
	}
	if c := m.value(stepContent); c != r.Content {
		opts.Content = c
	}
	if ttl, _ := optionalInt(m.value(stepTTL)); ttl > 0 && ttl != r.TTL {
		opts.TTL = ttl
	}
	if hasPriority(r.Type) {
		if p, _ := optionalInt(m.value(stepPriority)); p > 0 && p != r.Priority {
			opts.Priority = p
		}
	}
	if notes := m.value(stepNotes); notes != r.Notes {
		opts.Notes = &notes
	}
	return opts, opts != (domain.UpdateRecordOpts{})
}

func (m recordFormModel) View() string {
	action := "create"
	if m.editing {
		action = "edit"
	}
	header := components.Header(m.width, "dns > "+m.zone+" > "+action, m.providerName)

	next := "next"
	if m.step == stepConfirm {
		next = "confirm"
	}
	bindings := []components.KeyBinding{{Key: "enter", Desc: next}, {Key: "esc", Desc: "back"}}
	if m.step == stepType {
		bindings = append([]components.KeyBinding{{Key: "j/k", Desc: "select"}}, bindings...)
	}
	footer := components.Footer(m.width, bindings)

	var body string
	switch m.step {
	case stepType:
		body = m.renderTypeStep()
	case stepConfirm:
		body = m.renderConfirmStep()
	default:
		title := stepTitles[m.step]
		if m.step == stepContent {
			title = fmt.Sprintf("%s %s", m.recordType, title)
		}
		body = fmt.Sprintf("  %s\n\n  %s", styles.Subtitle.Render(title+":"), m.inputs[m.step].View())
	}
	if m.err != "" {
		body += "\n\n  " + styles.ErrorText.Render(m.err)
	}

	content := m.renderStepper() + "\n\n" + body
	if h := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 1); lipgloss.Height(content) < h {
		content += strings.Repeat("\n", h-lipgloss.Height(content))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (m recordFormModel) renderStepper() string {
	steps := m.steps()
	current := slices.Index(steps, m.step)
	parts := make([]string, len(steps))
	for i, s := range steps {
		switch {
		case i == current:
			parts[i] = styles.AccentText.Render("● " + stepTitles[s])
		case i < current:
			parts[i] = styles.SuccessText.Render("✓ ") + styles.MutedText.Render(stepTitles[s])
		default:
			parts[i] = styles.MutedText.Render("○ " + stepTitles[s])
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m recordFormModel) renderTypeStep() string {
	lines := []string{"  " + styles.Subtitle.Render("Record type:"), ""}
	for i, t := range formTypes {
		if i == m.typeCursor {
			lines = append(lines, "  "+styles.AccentText.Render("> "+string(t)))
		} else {
			lines = append(lines, "    "+styles.RecordTypeStyle(string(t)).Render(string(t)))
		}
	}
	return strings.Join(lines, "\n")
}

func (m recordFormModel) renderConfirmStep() string {
	var rows []string
	if m.editing {
		opts, _ := m.updateOpts()
		after := opts.Apply(m.original)
		if opts.Name != "" {
			after.Name = names.Full(opts.Name, m.zone)
		}
		before := recordFields(m.original)
		for i, f := range recordFields(after) {
			value := styles.Value.Render(f.value)
			if i >= len(before) || before[i] != f {
				value = styles.AccentText.Render(f.value)
			}
			rows = append(rows, fieldRow(10, f.label, value))
		}
	} else {
		o := m.createOpts()
		rec := domain.Record{Type: o.Type, Name: names.Full(o.Name, m.zone), Content: o.Content, TTL: o.TTL, Priority: o.Priority, Notes: o.Notes}
		for _, f := range recordFields(rec)[1:] {
			if f.label == "TTL" && o.TTL == 0 {
				f.value = "default"
			}
			rows = append(rows, fieldRow(10, f.label, styles.Value.Render(f.value)))
		}
	}

	title := "Create DNS Record"
	if m.editing {
		title = "Update DNS Record"
	}
	card := styles.CardActive.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(title), "", strings.Join(rows, "\n")))
	return lipgloss.JoinVertical(lipgloss.Center, card, "", "  Press Enter to "+strings.Fields(title)[0])
}

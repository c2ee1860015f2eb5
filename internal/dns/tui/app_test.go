package tui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/services"
)

// --- Stub provider ---

type stubProvider struct {
	records    []domain.Record
	err        error
	lastTarget domain.Target
	lastCreate domain.CreateRecordOpts
	lastUpdate domain.UpdateRecordOpts
}

func (p *stubProvider) GetDisplayName() string             { return "Stub" }
func (p *stubProvider) Authenticate(context.Context) error { return nil }

func (p *stubProvider) ListRecords(context.Context, domain.Filter) ([]domain.Record, error) {
	return p.records, p.err
}

func (p *stubProvider) CreateRecord(_ context.Context, opts domain.CreateRecordOpts) error {
	p.lastCreate = opts
	return p.err
}

func (p *stubProvider) UpdateRecord(_ context.Context, target domain.Target, opts domain.UpdateRecordOpts) error {
	p.lastTarget, p.lastUpdate = target, opts
	return p.err
}

func (p *stubProvider) DeleteRecord(_ context.Context, target domain.Target) error {
	p.lastTarget = target
	return p.err
}

// --- Helpers ---

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// msgOf runs cmd and returns its message, failing on a nil command.
func msgOf(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

var (
	recA   = domain.Record{ID: "1", Type: domain.RecordTypeA, Name: "www.example.com", Content: "1.2.3.4", TTL: 3600}
	recTXT = domain.Record{ID: "2", Type: domain.RecordTypeTXT, Name: "www.example.com", Content: "old", TTL: 3600}
	recMX  = domain.Record{ID: "3", Type: domain.RecordTypeMX, Name: "example.com", Content: "mail.example.com", TTL: 3600, Priority: 10}
)

func newTestApp(p *stubProvider) appModel {
	m := newAppModel(context.Background(), services.New(p, "example.com"), "Stub")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(appModel)
}

// --- Record list ---

func TestRecordList_NavigateFilterAndShow(t *testing.T) {
	m := newRecordListModel(context.Background(), services.New(&stubProvider{}, "example.com"), "Stub")
	m, _ = m.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.update(recordsLoadedMsg{records: []domain.Record{recTXT, recA, recMX}})

	m, _ = m.update(key("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursor)
	}

	m, _ = m.update(key("f"))
	if m.typeFilter != domain.RecordTypeA {
		t.Fatalf("typeFilter = %q, want A", m.typeFilter)
	}
	if len(m.filtered) != 1 || m.cursor != 0 {
		t.Fatalf("filtered = %v cursor = %d, want only the A record selected", m.filtered, m.cursor)
	}

	_, cmd := m.update(key("enter"))
	got, ok := msgOf(t, cmd).(navigateShowMsg)
	if !ok || got.record != recA {
		t.Errorf("enter produced %#v, want show of %v", got, recA)
	}
}

func TestRecordList_FilterCyclesBackToAll(t *testing.T) {
	m := newRecordListModel(context.Background(), services.New(&stubProvider{}, "example.com"), "Stub")
	m, _ = m.update(recordsLoadedMsg{records: []domain.Record{recTXT, recA}})

	for range typeFilters {
		m, _ = m.update(key("f"))
	}
	if m.typeFilter != "" || len(m.filtered) != 2 {
		t.Errorf("typeFilter = %q filtered = %d, want all records", m.typeFilter, len(m.filtered))
	}
}

func TestRecordList_IgnoresKeysWhileLoading(t *testing.T) {
	m := newRecordListModel(context.Background(), services.New(&stubProvider{}, "example.com"), "Stub")
	if _, cmd := m.update(key("c")); cmd != nil {
		t.Error("expected no command while loading")
	}
}

func TestRecordList_LoadsThroughService(t *testing.T) {
	p := &stubProvider{records: []domain.Record{recA}}
	m := newRecordListModel(context.Background(), services.New(p, "example.com"), "Stub")

	loaded, ok := m.loadRecordsCmd()().(recordsLoadedMsg)
	if !ok || len(loaded.records) != 1 {
		t.Fatalf("load produced %#v", loaded)
	}

	p.err = domain.ErrNetwork
	if _, ok := m.loadRecordsCmd()().(recordsErrorMsg); !ok {
		t.Error("expected recordsErrorMsg on provider failure")
	}
}

func TestRecordList_ApexDisplayedAsAt(t *testing.T) {
	m := newRecordListModel(context.Background(), services.New(&stubProvider{}, "example.com"), "Stub")
	m, _ = m.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.update(recordsLoadedMsg{records: []domain.Record{recMX}})

	if got := m.View(); !containsAll(got, "@", "mail.example.com", "1 record(s)") {
		t.Errorf("View() missing apex row or status:\n%s", got)
	}
}

// --- Create and edit ---

func TestRecordForm_Create(t *testing.T) {
	m := newRecordCreateModel("example.com", "Stub", 100, 30)

	for range 4 {
		m, _ = m.update(key("j"))
	}
	m, _ = m.update(key("enter"))
	if m.recordType != domain.RecordTypeTXT || m.step != stepName {
		t.Fatalf("type = %q step = %d, want TXT at the name step", m.recordType, m.step)
	}

	m, _ = m.update(key("_acme-challenge"))
	m, _ = m.update(key("enter"))

	m, _ = m.update(key("enter"))
	if m.step != stepContent || m.err == "" {
		t.Fatalf("empty content accepted: step = %d err = %q", m.step, m.err)
	}
	m, _ = m.update(key("token"))
	m, _ = m.update(key("enter"))

	m, _ = m.update(key("300"))
	m, _ = m.update(key("enter"))
	if m.step != stepNotes {
		t.Fatalf("step = %d, want notes (no priority for TXT)", m.step)
	}
	m, _ = m.update(key("enter"))

	_, cmd := m.update(key("enter"))
	got, ok := msgOf(t, cmd).(createConfirmedMsg)
	if !ok {
		t.Fatalf("confirm produced %#v", got)
	}
	want := domain.CreateRecordOpts{Type: domain.RecordTypeTXT, Name: "_acme-challenge", Content: "token", TTL: 300}
	if diff := cmp.Diff(want, got.opts); diff != "" {
		t.Errorf("create opts mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordForm_RejectsInvalidTTL(t *testing.T) {
	m := newRecordEditModel(recTXT, "example.com", "Stub", 100, 30)
	m.step = stepTTL
	m.setValue(stepTTL, "-5")

	m, _ = m.update(key("enter"))
	if m.step != stepTTL || m.err == "" {
		t.Errorf("step = %d err = %q, want to stay on TTL with an error", m.step, m.err)
	}
}

func TestRecordForm_EditSendsOnlyChanges(t *testing.T) {
	m := newRecordEditModel(recTXT, "example.com", "Stub", 100, 30)
	if got := m.value(stepName); got != "www" {
		t.Fatalf("name prefilled with %q, want www", got)
	}
	m.setValue(stepContent, "new")

	for m.step != stepConfirm {
		m, _ = m.update(key("enter"))
	}
	_, cmd := m.update(key("enter"))
	got, ok := msgOf(t, cmd).(updateConfirmedMsg)
	if !ok {
		t.Fatalf("confirm produced %#v", got)
	}
	if diff := cmp.Diff(domain.UpdateRecordOpts{Content: "new"}, got.opts); diff != "" {
		t.Errorf("update opts mismatch (-want +got):\n%s", diff)
	}
	if got.record != recTXT {
		t.Errorf("record = %v, want %v", got.record, recTXT)
	}
}

func TestRecordForm_EditRenameToApex(t *testing.T) {
	m := newRecordEditModel(recTXT, "example.com", "Stub", 100, 30)
	m.setValue(stepName, "@")

	opts, changed := m.updateOpts()
	if !changed || opts.Name != "@" {
		t.Errorf("updateOpts() = %+v, %v, want Name @", opts, changed)
	}
}

func TestRecordForm_EditWithoutChanges(t *testing.T) {
	m := newRecordEditModel(recMX, "example.com", "Stub", 100, 30)
	if got := m.value(stepName); got != "@" {
		t.Fatalf("apex prefilled with %q, want @", got)
	}
	if !slices.Contains(m.steps(), stepPriority) {
		t.Fatal("MX form should ask for a priority")
	}

	for m.step != stepConfirm {
		m, _ = m.update(key("enter"))
	}
	m, cmd := m.update(key("enter"))
	if cmd != nil || m.err != "nothing to update" {
		t.Errorf("cmd = %v err = %q, want no update", cmd, m.err)
	}
}

func TestRecordForm_EscGoesBack(t *testing.T) {
	m := newRecordEditModel(recTXT, "example.com", "Stub", 100, 30)
	m, _ = m.update(key("enter"))
	m, _ = m.update(key("esc"))
	if m.step != stepName {
		t.Fatalf("step = %d, want name", m.step)
	}
	_, cmd := m.update(key("esc"))
	if _, ok := msgOf(t, cmd).(navigateBackMsg); !ok {
		t.Error("esc on the first step should leave the form")
	}
}

// --- Delete ---

func TestRecordDelete_DefaultsToCancel(t *testing.T) {
	m := newRecordDeleteModel(recTXT, "example.com", "Stub", 100, 30)

	_, cmd := m.update(key("enter"))
	if _, ok := msgOf(t, cmd).(navigateBackMsg); !ok {
		t.Fatal("enter without selecting Delete should cancel")
	}

	m, _ = m.update(key("h"))
	_, cmd = m.update(key("enter"))
	got, ok := msgOf(t, cmd).(deleteConfirmedMsg)
	if !ok || got.record != recTXT {
		t.Errorf("confirm produced %#v", got)
	}
}

// --- App ---

func TestApp_NavigatesBetweenViews(t *testing.T) {
	m := newTestApp(&stubProvider{})

	updated, _ := m.Update(navigateEditMsg{record: recTXT})
	m = updated.(appModel)
	if m.view != viewRecordForm || !m.form.editing {
		t.Fatalf("view = %d, want the edit form", m.view)
	}

	updated, _ = m.Update(navigateBackMsg{})
	m = updated.(appModel)
	if m.view != viewRecordList {
		t.Fatalf("view = %d, want the record list", m.view)
	}

	_, cmd := m.Update(navigateBackMsg{})
	if _, ok := msgOf(t, cmd).(tea.QuitMsg); !ok {
		t.Error("back from the record list should quit")
	}
}

func TestApp_DeleteTargetsExactRecord(t *testing.T) {
	p := &stubProvider{}
	m := newTestApp(p)

	result := msgOf(t, m.deleteCmd(recTXT)).(actionResultMsg)
	if result.err != nil {
		t.Fatalf("delete error = %v", result.err)
	}
	want := domain.ByFilter(domain.Filter{Type: domain.RecordTypeTXT, Name: "www", Content: "old"})
	if diff := cmp.Diff(want, p.lastTarget); diff != "" {
		t.Errorf("target mismatch (-want +got):\n%s", diff)
	}

	updated, cmd := m.Update(result)
	m = updated.(appModel)
	if m.view != viewRecordList || !m.list.loading || cmd == nil {
		t.Errorf("view = %d loading = %v, want a reloading record list", m.view, m.list.loading)
	}
	if m.list.persistentStatus != "Deleted TXT www.example.com" {
		t.Errorf("status = %q", m.list.persistentStatus)
	}
}

func TestApp_UpdateToApex(t *testing.T) {
	p := &stubProvider{}
	m := newTestApp(p)

	msgOf(t, m.updateCmd(recTXT, domain.UpdateRecordOpts{Name: "@"}))
	if p.lastUpdate.Name != "@" {
		t.Errorf("provider got Name %q, want @", p.lastUpdate.Name)
	}
}

func TestApp_ActionErrorStaysVisible(t *testing.T) {
	m := newTestApp(&stubProvider{})

	updated, _ := m.Update(createConfirmedMsg{opts: domain.CreateRecordOpts{Type: domain.RecordTypeA, Name: "www", Content: "1.2.3.4"}})
	m = updated.(appModel)
	if m.view != viewAction {
		t.Fatalf("view = %d, want the action view", m.view)
	}

	updated, _ = m.Update(actionResultMsg{err: errors.New("boom")})
	m = updated.(appModel)
	if m.view != viewAction || !containsAll(m.View(), "boom") {
		t.Fatalf("error not shown:\n%s", m.View())
	}

	updated, _ = m.Update(key("esc"))
	if updated.(appModel).view != viewRecordList {
		t.Error("esc after a failed action should return to the list")
	}
}

func TestApp_CreateReachesProvider(t *testing.T) {
	p := &stubProvider{}
	m := newTestApp(p)

	opts := domain.CreateRecordOpts{Type: domain.RecordTypeTXT, Name: "_acme-challenge", Content: "token", TTL: 300}
	result := msgOf(t, m.createCmd(opts)).(actionResultMsg)
	if result.err != nil {
		t.Fatalf("create error = %v", result.err)
	}
	if p.lastCreate.Name != "_acme-challenge" || p.lastCreate.Content != "token" {
		t.Errorf("provider got %+v", p.lastCreate)
	}
}

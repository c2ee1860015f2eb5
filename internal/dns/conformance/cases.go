package conformance

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
)

// Case names. Adapters reference them in Skips.
const (
	Authenticate                                = "Authenticate"
	AuthenticateWithUnmanagedDomainShouldFail   = "AuthenticateWithUnmanagedDomainShouldFail"
	CreateRecordForA                            = "CreateRecordForA"
	CreateRecordForCNAME                        = "CreateRecordForCNAME"
	CreateRecordForTXT                          = "CreateRecordForTXT"
	CreateRecordForTXTWithFullName              = "CreateRecordForTXTWithFullName"
	CreateRecordForTXTWithFQDNName              = "CreateRecordForTXTWithFQDNName"
	CreateRecordDuplicateShouldBeNoop           = "CreateRecordDuplicateShouldBeNoop"
	CreateRecordMultipleTimesShouldCreateSet    = "CreateRecordMultipleTimesShouldCreateRecordSet"
	ListRecordsWithNoArgumentsShouldListAll     = "ListRecordsWithNoArgumentsShouldListAll"
	ListRecordsWithNameFilter                   = "ListRecordsWithNameFilterShouldReturnRecord"
	ListRecordsWithFullNameFilter               = "ListRecordsWithFullNameFilterShouldReturnRecord"
	ListRecordsWithFQDNNameFilter               = "ListRecordsWithFQDNNameFilterShouldReturnRecord"
	ListRecordsAfterSettingTTL                  = "ListRecordsAfterSettingTTLShouldReturnTTL"
	ListRecordsWithNoMatchShouldReturnEmpty     = "ListRecordsWithNoMatchShouldReturnEmpty"
	ListRecordsWithArgumentsShouldFilter        = "ListRecordsWithArgumentsShouldFilter"
	ListRecordsShouldHandleRecordSets           = "ListRecordsShouldHandleRecordSets"
	UpdateRecordShouldModifyRecord              = "UpdateRecordShouldModifyRecord"
	UpdateRecordShouldModifyRecordNameSpecified = "UpdateRecordShouldModifyRecordNameSpecified"
	UpdateRecordWithFullNameShouldModifyRecord  = "UpdateRecordWithFullNameShouldModifyRecord"
	UpdateRecordWithFQDNNameShouldModifyRecord  = "UpdateRecordWithFQDNNameShouldModifyRecord"
	UpdateRecordMissingShouldFailWithNotFound   = "UpdateRecordMissingShouldFailWithNotFound"
	UpdateRecordAmbiguousShouldFollowPolicy     = "UpdateRecordAmbiguousShouldFollowPolicy"
	DeleteRecordByIdentifierShouldRemoveRecord  = "DeleteRecordByIdentifierShouldRemoveRecord"
	DeleteRecordByFilterShouldRemoveRecord      = "DeleteRecordByFilterShouldRemoveRecord"
	DeleteRecordByFilterWithFullName            = "DeleteRecordByFilterWithFullNameShouldRemoveRecord"
	DeleteRecordByFilterWithFQDNName            = "DeleteRecordByFilterWithFQDNNameShouldRemoveRecord"
	DeleteRecordMissingShouldSucceed            = "DeleteRecordMissingShouldSucceed"
	DeleteRecordSetByNameShouldRemoveAll        = "DeleteRecordSetByNameShouldRemoveAll"
	DeleteRecordSetByContentShouldLeaveOthers   = "DeleteRecordSetByContentShouldLeaveOthers"
	CreateThenListTXTShouldReturnOneRecord      = "CreateThenListTXTShouldReturnOneRecord"
)

// Case is one named behaviour of the provider contract.
type Case struct {
	Name string
	Run  func(t *testing.T, h *Harness)
}

// Cases returns the catalog in execution order.
func Cases() []Case {
	return []Case{
		{Authenticate, func(t *testing.T, h *Harness) {
			if err := h.Provider.Authenticate(h.Ctx); err != nil {
				t.Fatalf("Authenticate() error = %v", err)
			}
		}},
		{AuthenticateWithUnmanagedDomainShouldFail, func(t *testing.T, h *Harness) {
			p := h.newProvider(h.adapter.unmanagedDomain())
			err := p.Authenticate(h.Ctx)
			if !errors.Is(err, domain.ErrAuthentication) {
				t.Fatalf("Authenticate(%s) error = %v, want %v", h.adapter.unmanagedDomain(), err, domain.ErrAuthentication)
			}
		}},

		{CreateRecordForA, createCase(domain.RecordTypeA, "localhost", "127.0.0.1")},
		{CreateRecordForCNAME, createCase(domain.RecordTypeCNAME, "docs", "docs.example.com")},
		{CreateRecordForTXT, createCase(domain.RecordTypeTXT, "_acme-challenge.test", "challengetoken")},
		{CreateRecordForTXTWithFullName, func(t *testing.T, h *Harness) {
			createCase(domain.RecordTypeTXT, h.Full("_acme-challenge.full"), "challengetoken")(t, h)
		}},
		{CreateRecordForTXTWithFQDNName, func(t *testing.T, h *Harness) {
			createCase(domain.RecordTypeTXT, h.FQDN("_acme-challenge.fqdn"), "challengetoken")(t, h)
		}},
		{CreateRecordDuplicateShouldBeNoop, func(t *testing.T, h *Harness) {
			name := h.FQDN("_acme-challenge.noop")
			h.Create(domain.RecordTypeTXT, name, "challengetoken", 0)
			h.Create(domain.RecordTypeTXT, name, "challengetoken", 0)
			h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: name}, "challengetoken")
		}},
		{CreateRecordMultipleTimesShouldCreateSet, func(t *testing.T, h *Harness) {
			name := h.FQDN("_acme-challenge.createrecordset")
			h.Create(domain.RecordTypeTXT, name, "challengetoken1", 0)
			h.Create(domain.RecordTypeTXT, name, "challengetoken2", 0)
			h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: name}, "challengetoken1", "challengetoken2")
		}},

		{ListRecordsWithNoArgumentsShouldListAll, func(t *testing.T, h *Harness) {
			h.Create(domain.RecordTypeA, "random.listall", "127.0.0.1", 0)
			want := domain.Filter{Type: domain.RecordTypeA, Name: "random.listall", Content: "127.0.0.1"}
			for _, r := range h.List(domain.Filter{}) {
				if want.Matches(r, h.Domain) {
					return
				}
			}
			t.Fatalf("ListRecords() does not include %s", want)
		}},
		{ListRecordsWithNameFilter, listByNameCase(func(h *Harness) string { return "random.test" })},
		{ListRecordsWithFullNameFilter, listByNameCase(func(h *Harness) string { return h.Full("random.fulltest") })},
		{ListRecordsWithFQDNNameFilter, listByNameCase(func(h *Harness) string { return h.FQDN("random.fqdntest") })},
		{ListRecordsAfterSettingTTL, func(t *testing.T, h *Harness) {
			name := h.FQDN("ttl.fqdn")
			h.Create(domain.RecordTypeTXT, name, "ttlshouldbe3600", 3600)
			records := h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: name}, "ttlshouldbe3600")
			if len(records) == 1 && records[0].TTL != 3600 {
				t.Errorf("TTL = %d, want 3600", records[0].TTL)
			}
		}},
		{ListRecordsWithNoMatchShouldReturnEmpty, func(t *testing.T, h *Harness) {
			h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: "filter.thisdoesnotexist"})
		}},
		{ListRecordsWithArgumentsShouldFilter, func(t *testing.T, h *Harness) {
			h.Create(domain.RecordTypeTXT, "filter.test", "challengetoken", 0)
			h.Create(domain.RecordTypeA, "filter.test", "127.0.0.2", 0)
			h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: "filter.test"}, "challengetoken")
			h.ExpectContents(domain.Filter{Name: "filter.test", Content: "127.0.0.2"}, "127.0.0.2")
		}},
		{ListRecordsShouldHandleRecordSets, func(t *testing.T, h *Harness) {
			name := h.FQDN("_acme-challenge.listrecordset")
			h.Create(domain.RecordTypeTXT, name, "challengetoken1", 0)
			h.Create(domain.RecordTypeTXT, name, "challengetoken2", 0)
			h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: name}, "challengetoken1", "challengetoken2")
		}},

		{UpdateRecordShouldModifyRecord, func(t *testing.T, h *Harness) {
			filter := domain.Filter{Type: domain.RecordTypeTXT, Name: "orig.test"}
			h.Create(filter.Type, filter.Name, "challengetoken", 0)
			id := h.ID(filter)
			update(t, h, domain.ByID(id), domain.UpdateRecordOpts{Content: "updated"})
			h.ExpectContents(filter, "updated")
		}},
		{UpdateRecordShouldModifyRecordNameSpecified, func(t *testing.T, h *Harness) {
			orig := domain.Filter{Type: domain.RecordTypeTXT, Name: "orig.nameonly.test"}
			renamed := domain.Filter{Type: domain.RecordTypeTXT, Name: "updated.nameonly.test"}
			h.Create(orig.Type, orig.Name, "challengetoken", 0)
			h.cleanup(renamed.Type, renamed.Name)
			id := h.ID(orig)
			update(t, h, domain.ByID(id), domain.UpdateRecordOpts{Name: renamed.Name})
			h.ExpectContents(orig)
			h.ExpectContents(renamed, "challengetoken")
		}},
		{UpdateRecordWithFullNameShouldModifyRecord, updateByFilterCase(func(h *Harness) string { return h.Full("orig.testfull") })},
		{UpdateRecordWithFQDNNameShouldModifyRecord, updateByFilterCase(func(h *Harness) string { return h.FQDN("orig.testfqdn") })},
		{UpdateRecordMissingShouldFailWithNotFound, func(t *testing.T, h *Harness) {
			target := domain.ByFilter(domain.Filter{Type: domain.RecordTypeTXT, Name: "orig.thisdoesnotexist"})
			err := h.Provider.UpdateRecord(h.Ctx, target, domain.UpdateRecordOpts{Content: "updated"})
			if !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("UpdateRecord(%s) error = %v, want %v", target, err, domain.ErrNotFound)
			}
		}},
		{UpdateRecordAmbiguousShouldFollowPolicy, updateAmbiguousCase},

		{DeleteRecordByIdentifierShouldRemoveRecord, func(t *testing.T, h *Harness) {
			filter := domain.Filter{Type: domain.RecordTypeTXT, Name: "delete.testid"}
			h.Create(filter.Type, filter.Name, "challengetoken", 0)
			remove(t, h, domain.ByID(h.ID(filter)))
			h.ExpectContents(filter)
		}},
		{DeleteRecordByFilterShouldRemoveRecord, deleteByFilterCase(func(h *Harness) string { return "delete.testfilt" })},
		{DeleteRecordByFilterWithFullName, deleteByFilterCase(func(h *Harness) string { return h.Full("delete.testfull") })},
		{DeleteRecordByFilterWithFQDNName, deleteByFilterCase(func(h *Harness) string { return h.FQDN("delete.testfqdn") })},
		{DeleteRecordMissingShouldSucceed, func(t *testing.T, h *Harness) {
			remove(t, h, domain.ByFilter(domain.Filter{Type: domain.RecordTypeTXT, Name: "delete.thisdoesnotexist"}))
		}},
		{DeleteRecordSetByNameShouldRemoveAll, func(t *testing.T, h *Harness) {
			filter := domain.Filter{Type: domain.RecordTypeTXT, Name: h.FQDN("_acme-challenge.deleterecordset")}
			h.Create(filter.Type, filter.Name, "challengetoken1", 0)
			h.Create(filter.Type, filter.Name, "challengetoken2", 0)
			remove(t, h, domain.ByFilter(filter))
			h.ExpectContents(filter)
		}},
		{DeleteRecordSetByContentShouldLeaveOthers, func(t *testing.T, h *Harness) {
			filter := domain.Filter{Type: domain.RecordTypeTXT, Name: h.FQDN("_acme-challenge.deleterecordinset")}
			h.Create(filter.Type, filter.Name, "challengetoken1", 0)
			h.Create(filter.Type, filter.Name, "challengetoken2", 0)
			target := filter
			target.Content = "challengetoken1"
			remove(t, h, domain.ByFilter(target))
			h.ExpectContents(filter, "challengetoken2")
		}},

		{CreateThenListTXTShouldReturnOneRecord, func(t *testing.T, h *Harness) {
			h.Create(domain.RecordTypeTXT, "_test", "hello", 300)
			h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: "_test", Content: "hello"}, "hello")
		}},
	}
}

// CaseNames returns the catalog's case names in execution order.
func CaseNames() []string {
	cases := Cases()
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.Name
	}
	return out
}

func createCase(typ domain.RecordType, name, content string) func(*testing.T, *Harness) {
	return func(t *testing.T, h *Harness) {
		h.Create(typ, name, content, 0)
		h.ExpectContents(domain.Filter{Type: typ, Name: name}, content)
	}
}

func listByNameCase(name func(*Harness) string) func(*testing.T, *Harness) {
	return func(t *testing.T, h *Harness) {
		n := name(h)
		h.Create(domain.RecordTypeTXT, n, "challengetoken", 0)
		h.ExpectContents(domain.Filter{Type: domain.RecordTypeTXT, Name: n}, "challengetoken")
	}
}

func updateByFilterCase(name func(*Harness) string) func(*testing.T, *Harness) {
	return func(t *testing.T, h *Harness) {
		filter := domain.Filter{Type: domain.RecordTypeTXT, Name: name(h)}
		h.Create(filter.Type, filter.Name, "challengetoken", 0)
		update(t, h, domain.ByFilter(filter), domain.UpdateRecordOpts{Content: "updated"})
		h.ExpectContents(filter, "updated")
	}
}

func deleteByFilterCase(name func(*Harness) string) func(*testing.T, *Harness) {
	return func(t *testing.T, h *Harness) {
		filter := domain.Filter{Type: domain.RecordTypeTXT, Name: name(h)}
		h.Create(filter.Type, filter.Name, "challengetoken", 0)
		target := filter
		target.Content = "challengetoken"
		remove(t, h, domain.ByFilter(target))
		h.ExpectContents(filter)
	}
}

// updateAmbiguousCase changes the TTL through a filter matching two
// records and checks the outcome against the adapter's declared policy.
func updateAmbiguousCase(t *testing.T, h *Harness) {
	const ttl = 3600
	filter := domain.Filter{Type: domain.RecordTypeTXT, Name: h.FQDN("_acme-challenge.updaterecordset")}
	h.Create(filter.Type, filter.Name, "challengetoken1", 0)
	h.Create(filter.Type, filter.Name, "challengetoken2", 0)

	err := h.Provider.UpdateRecord(h.Ctx, domain.ByFilter(filter), domain.UpdateRecordOpts{TTL: ttl})
	records := h.ExpectContents(filter, "challengetoken1", "challengetoken2")
	updated := 0
	for _, r := range records {
		if r.TTL == ttl {
			updated++
		}
	}

	policy := h.adapter.multiMatch()
	switch policy {
	case domain.MultiMatchError:
		if !errors.Is(err, domain.ErrAmbiguousMatch) {
			t.Errorf("UpdateRecord error = %v, want %v", err, domain.ErrAmbiguousMatch)
		}
		if updated != 0 {
			t.Errorf("%d records updated despite the ambiguity error", updated)
		}
	case domain.MultiMatchFirst, domain.MultiMatchAll:
		if err != nil {
			t.Fatalf("UpdateRecord error = %v", err)
		}
		want := len(records)
		if policy == domain.MultiMatchFirst {
			want = 1
		}
		if updated != want {
			t.Errorf("policy %s updated %d records, want %d: %s", policy, updated, want, describe(records))
		}
	}
}

func update(t *testing.T, h *Harness, target domain.Target, opts domain.UpdateRecordOpts) {
	t.Helper()
	if err := h.Provider.UpdateRecord(h.Ctx, target, opts); err != nil {
		t.Fatalf("UpdateRecord(%s) error = %v", target, err)
	}
}

func remove(t *testing.T, h *Harness, target domain.Target) {
	t.Helper()
	if err := h.Provider.DeleteRecord(h.Ctx, target); err != nil {
		t.Fatalf("DeleteRecord(%s) error = %v", target, err)
	}
}

func describe(records []domain.Record) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, fmt.Sprintf("%s %s %q ttl=%d", r.Type, r.Name, r.Content, r.TTL))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

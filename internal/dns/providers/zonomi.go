package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"nathanbeddoewebdev/dnsctl/internal/dns/domain"
	"nathanbeddoewebdev/dnsctl/internal/dns/engine"
	"nathanbeddoewebdev/dnsctl/internal/dns/names"
	"nathanbeddoewebdev/dnsctl/internal/dns/transport"
	"nathanbeddoewebdev/dnsctl/internal/log"
)

const (
	zonomiPath = "/dns/dyndns.jsp"

	// ZonomiMultiMatch is the Zonomi update policy for filters matching
	// several records.
	ZonomiMultiMatch = domain.MultiMatchError
)

// zonomiEntrypoints maps the auth_entrypoint setting to an API base URL.
// Zonomi and RimuHosting serve the same API from different hosts.
var zonomiEntrypoints = map[string]string{
	"zonomi":      "https://zonomi.com/app",
	"rimuhosting": "https://rimuhosting.com/app",
}

const zonomiDefaultEntrypoint = "rimuhosting"

// Compile-time check that ZonomiProvider satisfies domain.Provider.
var _ domain.Provider = (*ZonomiProvider)(nil)

type zonomiConfig struct {
	engine.Config  `mapstructure:",squash"`
	AuthToken      string `mapstructure:"auth_token"`
	AuthEntrypoint string `mapstructure:"auth_entrypoint"`
}

// ZonomiProvider implements domain.Provider on the Zonomi dynamic DNS
// API. The API has no record identifiers, so a record's ID is its
// fully-qualified name and updates are expressed as set plus delete.
type ZonomiProvider struct {
	cfg      zonomiConfig
	endpoint string
	client   *transport.Client
	gate     authGate
}

// NewZonomi builds a ZonomiProvider from settings. It requires the
// auth_token and domain settings.
func NewZonomi(settings engine.Settings, opts ...transport.Option) (domain.Provider, error) {
	var cfg zonomiConfig
	if err := decodeConfig("zonomi", settings, &cfg, &cfg.Config); err != nil {
		return nil, err
	}
	if err := requireCredential("zonomi", "auth_token", cfg.AuthToken); err != nil {
		return nil, err
	}

	entrypoint := strings.ToLower(cfg.AuthEntrypoint)
	if entrypoint == "" {
		entrypoint = zonomiDefaultEntrypoint
	}
	fallback, ok := zonomiEntrypoints[entrypoint]
	if !ok {
		return nil, fmt.Errorf("zonomi: unknown auth_entrypoint %q (want zonomi or rimuhosting)", cfg.AuthEntrypoint)
	}

	return &ZonomiProvider{
		cfg:      cfg,
		endpoint: strings.TrimSuffix(cfg.Endpoint(fallback), "/"),
		client:   transport.New("zonomi", cfg.Config, opts...),
	}, nil
}

// GetDisplayName returns the human-readable provider name.
func (z *ZonomiProvider) GetDisplayName() string {
	return "Zonomi"
}

// Endpoint returns the API base URL requests are sent to.
func (z *ZonomiProvider) Endpoint() string {
	return z.endpoint
}

// --- API response types ---

// zonomiResponse decodes both the <dnsapi_result> success document and
// the bare <error> document.
type zonomiResponse struct {
	XMLName xml.Name
	IsOK    string `xml:"is_ok"`
	Text    string `xml:",chardata"`
	Actions []struct {
		Records []zonomiRecord `xml:"record"`
	} `xml:"actions>action"`
}

type zonomiRecord struct {
	Type  string `xml:"type,attr"`
	Host  string `xml:"host,attr"`
	Value string `xml:"value,attr"`
	TTL   string `xml:"ttl,attr"`
}

func (r *zonomiResponse) records() []zonomiRecord {
	var out []zonomiRecord
	for _, a := range r.Actions {
		out = append(out, a.Records...)
	}
	return out
}

// --- HTTP helpers ---

// call sends one dyndns.jsp action and decodes the XML reply.
func (z *ZonomiProvider) call(ctx context.Context, params url.Values) (*zonomiResponse, error) {
	params.Set("api_key", z.cfg.AuthToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, z.endpoint+zonomiPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("zonomi: failed to build request: %w", err)
	}

	resp, err := z.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var out zonomiResponse
	if err := xml.Unmarshal(resp.Body, &out); err != nil {
		return nil, zonomiStatusError(resp.StatusCode, fmt.Sprintf("unreadable response: %v", err))
	}

	if out.XMLName.Local == "error" {
		return nil, zonomiStatusError(resp.StatusCode, strings.TrimSpace(out.Text))
	}
	if resp.StatusCode >= 300 || !strings.HasPrefix(strings.TrimSpace(out.IsOK), "OK") {
		return nil, zonomiStatusError(resp.StatusCode, strings.TrimSpace(out.IsOK))
	}
	return &out, nil
}

// zonomiStatusError maps an error reply to a domain sentinel.
func zonomiStatusError(status int, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(lower, "api_key") || strings.Contains(lower, "api key"):
		return fmt.Errorf("%w: zonomi: %s", domain.ErrAuthentication, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: zonomi: %s", domain.ErrRateLimited, msg)
	case status == http.StatusNotFound || strings.Contains(lower, "no zone"):
		return fmt.Errorf("%w: zonomi: %s", domain.ErrNotFound, msg)
	}
	return fmt.Errorf("zonomi: HTTP %d: %s", status, msg)
}

// --- Provider implementation ---

// Authenticate queries the SOA of the zone, which fails unless the API
// key is valid and the account manages the domain.
func (z *ZonomiProvider) Authenticate(ctx context.Context) error {
	return z.gate.ensure(ctx, z.authenticate)
}

func (z *ZonomiProvider) authenticate(ctx context.Context) error {
	_, err := z.call(ctx, url.Values{
		"action": {"QUERY"},
		"name":   {"**." + z.cfg.Domain},
		"type":   {"SOA"},
	})
	if err != nil {
		return authFailure("zonomi", z.cfg.Domain, err)
	}
	log.L(ctx).Debug("authenticated", log.Provider("zonomi", z.cfg.Domain)...)
	return nil
}

// ListRecords returns the records matching filter.
func (z *ZonomiProvider) ListRecords(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	if err := z.Authenticate(ctx); err != nil {
		return nil, err
	}
	return z.list(ctx, filter)
}

func (z *ZonomiProvider) list(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	params := url.Values{"action": {"QUERY"}, "name": {"**." + z.cfg.Domain}}
	if filter.Name != "" {
		params.Set("name", names.Full(filter.Name, z.cfg.Domain))
	}
	if filter.Type != "" {
		params.Set("type", string(filter.Type))
	}

	out, err := z.call(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for %q: %w", z.cfg.Domain, err)
	}

	records := []domain.Record{}
	for _, r := range out.records() {
		rec := zonomiToDomainRecord(z.cfg.Domain, r)
		if filter.Matches(rec, z.cfg.Domain) {
			records = append(records, rec)
		}
	}
	return records, nil
}

// CreateRecord adds a value to the record set of (type, name). Creating a
// value that already exists is a no-op.
func (z *ZonomiProvider) CreateRecord(ctx context.Context, opts domain.CreateRecordOpts) error {
	if err := z.Authenticate(ctx); err != nil {
		return err
	}
	if opts.Type == "" || opts.Content == "" {
		return fmt.Errorf("zonomi: record type and content are required")
	}

	name := names.Full(opts.Name, z.cfg.Domain)
	existing, err := z.list(ctx, domain.Filter{Type: opts.Type, Name: name, Content: opts.Content})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.L(ctx).Debug("record already exists",
			zap.String("name", name), zap.String("type", string(opts.Type)))
		return nil
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = z.cfg.TTL
	}
	if err := z.set(ctx, opts.Type, name, opts.Content, ttl); err != nil {
		return fmt.Errorf("failed to create record for %q: %w", z.cfg.Domain, err)
	}
	return nil
}

// UpdateRecord rewrites the records target selects. Renaming a record
// addressed by ID is unsupported because the ID is the name.
func (z *ZonomiProvider) UpdateRecord(ctx context.Context, target domain.Target, opts domain.UpdateRecordOpts) error {
	if err := z.Authenticate(ctx); err != nil {
		return err
	}
	target = z.canonicalTarget(target)
	if opts.Name != "" {
		opts.Name = names.Full(opts.Name, z.cfg.Domain)
		if target.ID != "" && opts.Name != target.ID {
			return fmt.Errorf("%w: zonomi cannot rename record %q to %q by identifier", domain.ErrUnsupported, target.ID, opts.Name)
		}
	}

	matched, err := updateTargets(ctx, z.list, z.cfg.Domain, target, ZonomiMultiMatch)
	if err != nil {
		return fmt.Errorf("failed to update record %s for %q: %w", target, z.cfg.Domain, err)
	}

	for _, old := range matched {
		updated := opts.Apply(old)
		if updated == old {
			continue
		}
		if err := z.set(ctx, updated.Type, updated.Name, updated.Content, updated.TTL); err != nil {
			return fmt.Errorf("failed to update record %s for %q: %w", target, z.cfg.Domain, err)
		}
		if updated.Type == old.Type && updated.Name == old.Name && updated.Content == old.Content {
			continue
		}
		if err := z.remove(ctx, old); err != nil {
			return fmt.Errorf("failed to update record %s for %q: %w", target, z.cfg.Domain, err)
		}
	}
	return nil
}

// DeleteRecord removes every value target selects.
func (z *ZonomiProvider) DeleteRecord(ctx context.Context, target domain.Target) error {
	if err := z.Authenticate(ctx); err != nil {
		return err
	}
	target = z.canonicalTarget(target)

	matched, err := matchTargets(ctx, z.list, z.cfg.Domain, target)
	if err != nil {
		return fmt.Errorf("failed to delete record %s for %q: %w", target, z.cfg.Domain, err)
	}
	for _, r := range matched {
		if err := z.remove(ctx, r); err != nil {
			return fmt.Errorf("failed to delete record %s for %q: %w", target, z.cfg.Domain, err)
		}
	}
	return nil
}

func (z *ZonomiProvider) set(ctx context.Context, typ domain.RecordType, name, content string, ttl int) error {
	params := url.Values{
		"action": {"SET"},
		"name":   {name},
		"type":   {string(typ)},
		"value":  {content},
	}
	if ttl > 0 {
		params.Set("ttl", strconv.Itoa(ttl))
	}
	_, err := z.call(ctx, params)
	return err
}

func (z *ZonomiProvider) remove(ctx context.Context, r domain.Record) error {
	_, err := z.call(ctx, url.Values{
		"action": {"DELETE"},
		"name":   {r.Name},
		"type":   {string(r.Type)},
		"value":  {r.Content},
	})
	return err
}

func (z *ZonomiProvider) canonicalTarget(t domain.Target) domain.Target {
	if t.ID != "" {
		t.ID = names.Full(t.ID, z.cfg.Domain)
	}
	return t
}

// --- Conversion helpers ---

// zonomiToDomainRecord converts a Zonomi <record> element. The TTL
// attribute reads "300 seconds".
func zonomiToDomainRecord(zone string, r zonomiRecord) domain.Record {
	name := names.Full(r.Host, zone)
	ttl := 0
	if fields := strings.Fields(r.TTL); len(fields) > 0 {
		ttl = parseInt(fields[0])
	}
	return domain.Record{
		ID:      name,
		Type:    domain.RecordType(strings.ToUpper(r.Type)),
		Name:    name,
		Content: r.Value,
		TTL:     ttl,
	}
}

package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
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
	porkbunBaseURL = "https://api.porkbun.com/api/json/v3"

	// PorkbunMultiMatch is the Porkbun update policy for filters matching
	// several records.
	PorkbunMultiMatch = domain.MultiMatchError
)

// Compile-time checks that PorkbunProvider satisfies the provider interfaces.
var (
	_ domain.Provider     = (*PorkbunProvider)(nil)
	_ domain.DomainLister = (*PorkbunProvider)(nil)
)

type porkbunConfig struct {
	engine.Config `mapstructure:",squash"`
	AuthKey       string `mapstructure:"auth_key"`
	AuthSecret    string `mapstructure:"auth_secret"`
}

// PorkbunProvider implements domain.Provider using the Porkbun API v3.
// Every call is a POST carrying the key pair in its JSON body.
type PorkbunProvider struct {
	cfg     porkbunConfig
	baseURL string
	client  *transport.Client
	gate    authGate
}

// NewPorkbun builds a PorkbunProvider from settings. It requires the
// auth_key, auth_secret and domain settings.
func NewPorkbun(settings engine.Settings, opts ...transport.Option) (domain.Provider, error) {
	var cfg porkbunConfig
	if err := decodeConfig("porkbun", settings, &cfg, &cfg.Config); err != nil {
		return nil, err
	}
	if err := requireCredential("porkbun", "auth_key", cfg.AuthKey); err != nil {
		return nil, err
	}
	if err := requireCredential("porkbun", "auth_secret", cfg.AuthSecret); err != nil {
		return nil, err
	}

	return &PorkbunProvider{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(cfg.Endpoint(porkbunBaseURL), "/"),
		client:  transport.New("porkbun", cfg.Config, opts...),
	}, nil
}

// GetDisplayName returns the human-readable provider name.
func (p *PorkbunProvider) GetDisplayName() string {
	return "Porkbun"
}

// --- API request/response types ---

// porkbunAuth is embedded in every request body.
type porkbunAuth struct {
	APIKey    string `json:"apikey"`
	SecretKey string `json:"secretapikey"`
}

// porkbunResponse is the base response shape for all Porkbun API calls.
type porkbunResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (r porkbunResponse) err() error {
	if r.Status != "SUCCESS" {
		return fmt.Errorf("porkbun: %s", r.Message)
	}
	return nil
}

// porkbunDomainRecord maps to the Porkbun DNS record object.
type porkbunDomainRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl"`
	Prio    string `json:"prio"`
	Notes   string `json:"notes"`
}

// porkbunRecordBody is the request body of the create and edit calls.
type porkbunRecordBody struct {
	porkbunAuth
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content string `json:"content"`
	TTL     string `json:"ttl,omitempty"`
	Prio    string `json:"prio,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// --- HTTP helpers ---

// post sends a POST request to the given path with the JSON body,
// decodes the response into out and maps API errors.
func (p *PorkbunProvider) post(ctx context.Context, path string, body any, out interface{ err() error }) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("porkbun: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("porkbun: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: porkbun: HTTP %d", domain.ErrRateLimited, resp.StatusCode)
		}
		return fmt.Errorf("porkbun: failed to decode HTTP %d response: %w", resp.StatusCode, err)
	}
	return mapAPIError(out.err())
}

// authBody returns the base request body with credentials embedded.
func (p *PorkbunProvider) authBody() porkbunAuth {
	return porkbunAuth{APIKey: p.cfg.AuthKey, SecretKey: p.cfg.AuthSecret}
}

// mapAPIError converts Porkbun error messages to domain sentinels where recognisable.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "authentication"):
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, err.Error())
	case strings.Contains(msg, "not found") ||
		strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "invalid record id") ||
		strings.Contains(msg, "invalid domain"):
		return fmt.Errorf("%w: %s", domain.ErrNotFound, err.Error())
	case strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests"):
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, err.Error())
	case strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "conflict"):
		return fmt.Errorf("%w: %s", domain.ErrConflict, err.Error())
	}
	return err
}

// --- Provider implementation ---

// Authenticate retrieves the zone's records, which fails unless the key
// pair is valid and API access is enabled for the domain.
func (p *PorkbunProvider) Authenticate(ctx context.Context) error {
	return p.gate.ensure(ctx, func(ctx context.Context) error {
		if _, err := p.retrieve(ctx); err != nil {
			return authFailure("porkbun", p.cfg.Domain, err)
		}
		log.L(ctx).Debug("authenticated", log.Provider("porkbun", p.cfg.Domain)...)
		return nil
	})
}

// ListDomains returns all domains in the Porkbun account.
func (p *PorkbunProvider) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	type request struct {
		porkbunAuth
		Start         string `json:"start,omitempty"`
		IncludeLabels string `json:"includeLabels,omitempty"`
	}

	type apiDomain struct {
		Domain     string `json:"domain"`
		Status     string `json:"status"`
		TLD        string `json:"tld"`
		CreateDate string `json:"createDate"`
		ExpireDate string `json:"expireDate"`
	}

	type response struct {
		porkbunResponse
		Domains []apiDomain `json:"domains"`
	}

	var out response
	if err := p.post(ctx, "/domain/listAll", request{porkbunAuth: p.authBody()}, &out); err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}

	domains := make([]domain.Domain, 0, len(out.Domains))
	for _, d := range out.Domains {
		domains = append(domains, domain.Domain{
			Name:       d.Domain,
			Status:     d.Status,
			TLD:        d.TLD,
			CreateDate: d.CreateDate,
			ExpireDate: d.ExpireDate,
		})
	}
	return domains, nil
}

// ListRecords returns the zone's records matching filter.
func (p *PorkbunProvider) ListRecords(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	if err := p.Authenticate(ctx); err != nil {
		return nil, err
	}
	return p.list(ctx, filter)
}

func (p *PorkbunProvider) list(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	all, err := p.retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for %q: %w", p.cfg.Domain, err)
	}
	records := []domain.Record{}
	for _, r := range all {
		if filter.Matches(r, p.cfg.Domain) {
			records = append(records, r)
		}
	}
	return records, nil
}

func (p *PorkbunProvider) retrieve(ctx context.Context) ([]domain.Record, error) {
	type response struct {
		porkbunResponse
		Records []porkbunDomainRecord `json:"records"`
	}

	var out response
	if err := p.post(ctx, "/dns/retrieve/"+p.cfg.Domain, p.authBody(), &out); err != nil {
		return nil, err
	}

	records := make([]domain.Record, 0, len(out.Records))
	for _, r := range out.Records {
		records = append(records, toDomainRecord(p.cfg.Domain, r))
	}
	return records, nil
}

// CreateRecord creates a DNS record unless an identical one exists.
func (p *PorkbunProvider) CreateRecord(ctx context.Context, opts domain.CreateRecordOpts) error {
	if err := p.Authenticate(ctx); err != nil {
		return err
	}

	existing, err := p.list(ctx, opts.Filter())
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.L(ctx).Debug("record already exists", zap.String("id", existing[0].ID))
		return nil
	}

	type response struct {
		porkbunResponse
		ID json.Number `json:"id"`
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = p.cfg.TTL
	}
	body := p.recordBody(domain.Record{
		Type:     opts.Type,
		Name:     names.Full(opts.Name, p.cfg.Domain),
		Content:  opts.Content,
		TTL:      ttl,
		Priority: opts.Priority,
		Notes:    opts.Notes,
	})

	var out response
	if err := p.post(ctx, "/dns/create/"+p.cfg.Domain, body, &out); err != nil {
		return fmt.Errorf("failed to create record for %q: %w", p.cfg.Domain, err)
	}
	log.L(ctx).Debug("created record", zap.String("id", out.ID.String()))
	return nil
}

// UpdateRecord edits the record target selects.
func (p *PorkbunProvider) UpdateRecord(ctx context.Context, target domain.Target, opts domain.UpdateRecordOpts) error {
	if err := p.Authenticate(ctx); err != nil {
		return err
	}
	if opts.Name != "" {
		opts.Name = names.Full(opts.Name, p.cfg.Domain)
	}

	matched, err := updateTargets(ctx, p.list, p.cfg.Domain, target, PorkbunMultiMatch)
	if err != nil {
		return fmt.Errorf("failed to update record %s for %q: %w", target, p.cfg.Domain, err)
	}

	for _, old := range matched {
		var out porkbunResponse
		if err := p.post(ctx, "/dns/edit/"+p.cfg.Domain+"/"+old.ID, p.recordBody(opts.Apply(old)), &out); err != nil {
			return fmt.Errorf("failed to update record %q for %q: %w", old.ID, p.cfg.Domain, err)
		}
	}
	return nil
}

// DeleteRecord deletes every record target selects.
func (p *PorkbunProvider) DeleteRecord(ctx context.Context, target domain.Target) error {
	if err := p.Authenticate(ctx); err != nil {
		return err
	}

	matched, err := matchTargets(ctx, p.list, p.cfg.Domain, target)
	if err != nil {
		return fmt.Errorf("failed to delete record %s for %q: %w", target, p.cfg.Domain, err)
	}

	for _, r := range matched {
		var out porkbunResponse
		if err := p.post(ctx, "/dns/delete/"+p.cfg.Domain+"/"+r.ID, p.authBody(), &out); err != nil {
			return fmt.Errorf("failed to delete record %q for %q: %w", r.ID, p.cfg.Domain, err)
		}
	}
	return nil
}

func (p *PorkbunProvider) recordBody(r domain.Record) porkbunRecordBody {
	body := porkbunRecordBody{
		porkbunAuth: p.authBody(),
		Name:        names.Relative(r.Name, p.cfg.Domain),
		Type:        string(r.Type),
		Content:     r.Content,
		Notes:       r.Notes,
	}
	if r.TTL > 0 {
		body.TTL = strconv.Itoa(r.TTL)
	}
	if r.Priority > 0 {
		body.Prio = strconv.Itoa(r.Priority)
	}
	return body
}

// --- Conversion helpers ---

// toDomainRecord converts a Porkbun API record to a domain.Record.
func toDomainRecord(zone string, r porkbunDomainRecord) domain.Record {
	return domain.Record{
		ID:       r.ID,
		Name:     names.Full(r.Name, zone),
		Type:     domain.RecordType(strings.ToUpper(r.Type)),
		Content:  r.Content,
		TTL:      parseInt(r.TTL),
		Priority: parseInt(r.Prio),
		Notes:    r.Notes,
	}
}

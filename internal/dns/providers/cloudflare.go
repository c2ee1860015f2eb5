package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
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
	cloudflareBaseURL = "https://api.cloudflare.com/client/v4"

	// CloudflareMultiMatch is the Cloudflare update policy for filters
	// matching several records.
	CloudflareMultiMatch = domain.MultiMatchAll
)

// Compile-time checks that CloudflareProvider satisfies the provider interfaces.
var (
	_ domain.Provider     = (*CloudflareProvider)(nil)
	_ domain.DomainLister = (*CloudflareProvider)(nil)
)

type cloudflareConfig struct {
	engine.Config `mapstructure:",squash"`
	AuthToken     string `mapstructure:"auth_token"`
}

// CloudflareProvider implements domain.Provider using the Cloudflare API v4.
// It authenticates via a scoped Account API Token (not a Global API Key).
// The token needs Zone:Read and DNS:Edit permissions.
// It uses a direct HTTP client rather than the official SDK so requests
// flow through the shared transport and can be recorded as fixtures.
type CloudflareProvider struct {
	cfg     cloudflareConfig
	baseURL string
	client  *transport.Client
	gate    authGate
	zoneID  string
}

// NewCloudflare builds a CloudflareProvider from settings. It requires
// the auth_token and domain settings.
func NewCloudflare(settings engine.Settings, opts ...transport.Option) (domain.Provider, error) {
	var cfg cloudflareConfig
	if err := decodeConfig("cloudflare", settings, &cfg, &cfg.Config); err != nil {
		return nil, err
	}
	if err := requireCredential("cloudflare", "auth_token", cfg.AuthToken); err != nil {
		return nil, err
	}

	return &CloudflareProvider{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(cfg.Endpoint(cloudflareBaseURL), "/"),
		client:  transport.New("cloudflare", cfg.Config, opts...),
	}, nil
}

// GetDisplayName returns the human-readable provider name.
func (c *CloudflareProvider) GetDisplayName() string {
	return "Cloudflare"
}

// --- API request/response types ---

// cfEnvelope is the standard Cloudflare API response wrapper.
type cfEnvelope[T any] struct {
	Success  bool      `json:"success"`
	Errors   []cfError `json:"errors"`
	Result   T         `json:"result"`
	Messages []cfError `json:"messages,omitempty"`
}

// cfError represents a single Cloudflare API error.
type cfError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// cfResultInfo holds pagination info from Cloudflare list responses.
type cfResultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
}

// cfListEnvelope extends the envelope with pagination info.
type cfListEnvelope[T any] struct {
	Success    bool         `json:"success"`
	Errors     []cfError    `json:"errors"`
	Result     []T          `json:"result"`
	ResultInfo cfResultInfo `json:"result_info"`
}

// cfZone is the Cloudflare zone object.
type cfZone struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedOn string `json:"created_on"`
}

// cfDNSRecord is the Cloudflare DNS record object.
type cfDNSRecord struct {
	ID       string `json:"id"`
	ZoneID   string `json:"zone_id"`
	ZoneName string `json:"zone_name"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Priority *int   `json:"priority,omitempty"`
	Comment  string `json:"comment"`
}

// cfRecordBody is the request body for creating (POST) and updating
// (PATCH) a DNS record.
type cfRecordBody struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl,omitempty"`
	Priority *int   `json:"priority,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// --- HTTP helpers ---

// envelopeError extracts a single error from a Cloudflare response envelope.
// It maps known HTTP-level and API-level error codes to domain sentinels.
func envelopeError(success bool, errors []cfError, httpStatus int) error {
	if success {
		return nil
	}

	// Map HTTP status codes to domain sentinels.
	switch httpStatus {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthentication, cfErrorString(errors))
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, cfErrorString(errors))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, cfErrorString(errors))
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, cfErrorString(errors))
	}

	// Fall back to inspecting the error codes/messages.
	for _, e := range errors {
		msg := strings.ToLower(e.Message)
		switch {
		case e.Code == 9109 || e.Code == 10000 || strings.Contains(msg, "authentication"):
			return fmt.Errorf("%w: %s", domain.ErrAuthentication, e.Message)
		case e.Code == 81044 || strings.Contains(msg, "not found"):
			return fmt.Errorf("%w: %s", domain.ErrNotFound, e.Message)
		case e.Code == 81057 || e.Code == 81058 || strings.Contains(msg, "already exists"):
			return fmt.Errorf("%w: %s", domain.ErrConflict, e.Message)
		}
	}

	return fmt.Errorf("cloudflare: %s", cfErrorString(errors))
}

// cfErrorString joins multiple Cloudflare errors into a single string.
func cfErrorString(errors []cfError) string {
	if len(errors) == 0 {
		return "unknown error"
	}
	msgs := make([]string, 0, len(errors))
	for _, e := range errors {
		msgs = append(msgs, fmt.Sprintf("[%d] %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}

// doJSON sends the request and decodes the JSON body into out. It
// returns the HTTP status code for use in error mapping.
func (c *CloudflareProvider) doJSON(ctx context.Context, method, path string, body any, out any) (int, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("cloudflare: failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("cloudflare: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return 0, err
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("cloudflare: failed to decode HTTP %d response: %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}

// --- Zone lookup ---

// Authenticate resolves the domain's zone ID. An unknown token or a zone
// outside the account fails with domain.ErrAuthentication.
func (c *CloudflareProvider) Authenticate(ctx context.Context) error {
	return c.gate.ensure(ctx, func(ctx context.Context) error {
		id, err := c.lookupZoneID(ctx)
		if err != nil {
			return authFailure("cloudflare", c.cfg.Domain, err)
		}
		c.zoneID = id
		log.L(ctx).Debug("authenticated", append(log.Provider("cloudflare", c.cfg.Domain), zap.String("zone_id", id))...)
		return nil
	})
}

func (c *CloudflareProvider) lookupZoneID(ctx context.Context) (string, error) {
	var out cfListEnvelope[cfZone]
	status, err := c.doJSON(ctx, http.MethodGet, "/zones?name="+url.QueryEscape(c.cfg.Domain)+"&per_page=1", nil, &out)
	if err != nil {
		return "", fmt.Errorf("failed to look up zone for %q: %w", c.cfg.Domain, err)
	}
	if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
		return "", fmt.Errorf("failed to look up zone for %q: %w", c.cfg.Domain, apiErr)
	}

	if len(out.Result) == 0 {
		return "", fmt.Errorf("zone for %q: %w", c.cfg.Domain, domain.ErrNotFound)
	}

	return out.Result[0].ID, nil
}

// --- Provider implementation ---

// ListDomains returns all zones (domains) in the Cloudflare account.
func (c *CloudflareProvider) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	var allZones []cfZone
	page := 1

	for {
		path := fmt.Sprintf("/zones?page=%d&per_page=50", page)
		var out cfListEnvelope[cfZone]
		status, err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
		if err != nil {
			return nil, fmt.Errorf("failed to list domains: %w", err)
		}
		if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
			return nil, fmt.Errorf("failed to list domains: %w", apiErr)
		}

		allZones = append(allZones, out.Result...)

		if page >= out.ResultInfo.TotalPages {
			break
		}
		page++
	}

	domains := make([]domain.Domain, 0, len(allZones))
	for _, z := range allZones {
		domains = append(domains, domain.Domain{
			Name:       z.Name,
			Status:     z.Status,
			TLD:        extractTLD(z.Name),
			CreateDate: z.CreatedOn,
			ExpireDate: "N/A",
		})
	}
	return domains, nil
}

// ListRecords returns the zone's records matching filter. Type, name and
// content are passed to the API as query filters.
func (c *CloudflareProvider) ListRecords(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	if err := c.Authenticate(ctx); err != nil {
		return nil, err
	}
	return c.list(ctx, filter)
}

func (c *CloudflareProvider) list(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	q := url.Values{"per_page": {"100"}}
	if filter.Type != "" {
		q.Set("type", string(filter.Type))
	}
	if filter.Name != "" {
		q.Set("name", names.Full(filter.Name, c.cfg.Domain))
	}
	if filter.Content != "" {
		q.Set("content", filter.Content)
	}

	records := []domain.Record{}
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		path := fmt.Sprintf("/zones/%s/dns_records?%s", c.zoneID, q.Encode())

		var out cfListEnvelope[cfDNSRecord]
		status, err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
		if err != nil {
			return nil, fmt.Errorf("failed to list records for %q: %w", c.cfg.Domain, err)
		}
		if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
			return nil, fmt.Errorf("failed to list records for %q: %w", c.cfg.Domain, apiErr)
		}

		for _, r := range out.Result {
			rec := cfToDomainRecord(c.cfg.Domain, r)
			if filter.Matches(rec, c.cfg.Domain) {
				records = append(records, rec)
			}
		}

		if page >= out.ResultInfo.TotalPages {
			break
		}
	}
	return records, nil
}

// CreateRecord creates a DNS record unless an identical one exists.
func (c *CloudflareProvider) CreateRecord(ctx context.Context, opts domain.CreateRecordOpts) error {
	if err := c.Authenticate(ctx); err != nil {
		return err
	}

	existing, err := c.list(ctx, opts.Filter())
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.L(ctx).Debug("record already exists", zap.String("id", existing[0].ID))
		return nil
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = c.cfg.TTL
	}
	body := cfRecordBody{
		Type:    string(opts.Type),
		Name:    names.Full(opts.Name, c.cfg.Domain),
		Content: opts.Content,
		TTL:     ttl,
		Comment: opts.Notes,
	}
	if opts.Priority > 0 {
		p := opts.Priority
		body.Priority = &p
	}

	path := fmt.Sprintf("/zones/%s/dns_records", c.zoneID)
	var out cfEnvelope[cfDNSRecord]
	status, err := c.doJSON(ctx, http.MethodPost, path, body, &out)
	if err != nil {
		return fmt.Errorf("failed to create record for %q: %w", c.cfg.Domain, err)
	}
	if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
		return fmt.Errorf("failed to create record for %q: %w", c.cfg.Domain, apiErr)
	}

	log.L(ctx).Debug("created record", zap.String("id", out.Result.ID))
	return nil
}

// UpdateRecord patches every record target selects.
func (c *CloudflareProvider) UpdateRecord(ctx context.Context, target domain.Target, opts domain.UpdateRecordOpts) error {
	if err := c.Authenticate(ctx); err != nil {
		return err
	}
	if opts.Name != "" {
		opts.Name = names.Full(opts.Name, c.cfg.Domain)
	}

	matched, err := updateTargets(ctx, c.list, c.cfg.Domain, target, CloudflareMultiMatch)
	if err != nil {
		return fmt.Errorf("failed to update record %s for %q: %w", target, c.cfg.Domain, err)
	}

	for _, old := range matched {
		r := opts.Apply(old)
		body := cfRecordBody{
			Type:    string(r.Type),
			Name:    r.Name,
			Content: r.Content,
			TTL:     r.TTL,
			Comment: r.Notes,
		}
		if r.Priority > 0 {
			p := r.Priority
			body.Priority = &p
		}

		path := fmt.Sprintf("/zones/%s/dns_records/%s", c.zoneID, old.ID)
		var out cfEnvelope[cfDNSRecord]
		status, err := c.doJSON(ctx, http.MethodPatch, path, body, &out)
		if err != nil {
			return fmt.Errorf("failed to update record %q for %q: %w", old.ID, c.cfg.Domain, err)
		}
		if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
			return fmt.Errorf("failed to update record %q for %q: %w", old.ID, c.cfg.Domain, apiErr)
		}
	}
	return nil
}

// DeleteRecord deletes every record target selects.
func (c *CloudflareProvider) DeleteRecord(ctx context.Context, target domain.Target) error {
	if err := c.Authenticate(ctx); err != nil {
		return err
	}

	matched, err := matchTargets(ctx, c.list, c.cfg.Domain, target)
	if err != nil {
		return fmt.Errorf("failed to delete record %s for %q: %w", target, c.cfg.Domain, err)
	}

	for _, r := range matched {
		path := fmt.Sprintf("/zones/%s/dns_records/%s", c.zoneID, r.ID)
		var out cfEnvelope[struct {
			ID string `json:"id"`
		}]
		status, err := c.doJSON(ctx, http.MethodDelete, path, nil, &out)
		if err != nil {
			return fmt.Errorf("failed to delete record %q for %q: %w", r.ID, c.cfg.Domain, err)
		}
		if apiErr := envelopeError(out.Success, out.Errors, status); apiErr != nil {
			return fmt.Errorf("failed to delete record %q for %q: %w", r.ID, c.cfg.Domain, apiErr)
		}
	}
	return nil
}

// --- Conversion helpers ---

// extractTLD returns the suffix after the first label of a domain name.
// For "example.com" it returns "com"; for "example.co.uk" it returns "co.uk".
func extractTLD(name string) string {
	idx := strings.IndexByte(name, '.')
	if idx < 0 || idx >= len(name)-1 {
		return ""
	}
	return name[idx+1:]
}

// cfToDomainRecord converts a Cloudflare API record to a domain.Record.
func cfToDomainRecord(zone string, r cfDNSRecord) domain.Record {
	prio := 0
	if r.Priority != nil {
		prio = *r.Priority
	}

	return domain.Record{
		ID:       r.ID,
		Name:     names.Full(r.Name, zone),
		Type:     domain.RecordType(strings.ToUpper(r.Type)),
		Content:  r.Content,
		TTL:      r.TTL,
		Priority: prio,
		Notes:    r.Comment,
	}
}

package auditlog

import "time"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// AuditEntry is one recorded CLI invocation.
type AuditEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command"`
	Args       string    `json:"args,omitempty"`
	Provider   string    `json:"provider,omitempty"`
	Domain     string    `json:"domain,omitempty"`
	RecordType string    `json:"record_type,omitempty"`
	RecordName string    `json:"record_name,omitempty"`
	RecordID   string    `json:"record_id,omitempty"`
	Outcome    string    `json:"outcome"`
	// ErrorKind is the taxonomy label of a failed command.
	ErrorKind  string `json:"error_kind,omitempty"`
	Detail     string `json:"detail,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Apply copies meta into e.
func (e *AuditEntry) Apply(meta Metadata) {
	e.Provider = meta.Provider
	e.Domain = meta.Domain
	e.RecordType = meta.RecordType
	e.RecordName = meta.RecordName
	e.RecordID = meta.RecordID
}

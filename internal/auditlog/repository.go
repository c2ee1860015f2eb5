package auditlog

import (
	"database/sql"
	"fmt"
	"time"

	"nathanbeddoewebdev/dnsctl/internal/database"
)

// Repository defines the persistence interface for audit entries.
type Repository interface {
	Save(entry *AuditEntry) error
	List(limit int) ([]AuditEntry, error)
	ListByCommand(command string, limit int) ([]AuditEntry, error)
	ListByDomain(domain string, limit int) ([]AuditEntry, error)
	Prune(olderThan time.Duration) (int64, error)
	CountOlderThan(olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the audit repository at the default path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("auditlog: %w", err)
	}
	return OpenAt(path)
}

// OpenAt creates or opens a SQLite database at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("auditlog: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// migrations are applied in order by database.Migrate.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS dns_audit_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp   TEXT    NOT NULL,
		command     TEXT    NOT NULL,
		args        TEXT    NOT NULL DEFAULT '',
		provider    TEXT    NOT NULL DEFAULT '',
		domain      TEXT    NOT NULL DEFAULT '',
		record_type TEXT    NOT NULL DEFAULT '',
		record_name TEXT    NOT NULL DEFAULT '',
		record_id   TEXT    NOT NULL DEFAULT '',
		outcome     TEXT    NOT NULL DEFAULT '',
		error_kind  TEXT    NOT NULL DEFAULT '',
		detail      TEXT    NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_dns_audit_log_timestamp ON dns_audit_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_dns_audit_log_command ON dns_audit_log(command);
	CREATE INDEX IF NOT EXISTS idx_dns_audit_log_domain ON dns_audit_log(provider, domain);`,
}

func (r *SQLiteRepository) migrate() error {
	if err := database.Migrate(r.db, migrations); err != nil {
		return fmt.Errorf("auditlog: %w", err)
	}
	return nil
}

// Save inserts a new audit entry.
func (r *SQLiteRepository) Save(entry *AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := r.db.Exec(`
        INSERT INTO dns_audit_log (timestamp, command, args, provider, domain, record_type, record_name, record_id,
                                   outcome, error_kind, detail, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano), entry.Command, entry.Args, entry.Provider, entry.Domain,
		entry.RecordType, entry.RecordName, entry.RecordID, entry.Outcome, entry.ErrorKind, entry.Detail, entry.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("auditlog: insert failed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("auditlog: failed to get last insert ID: %w", err)
	}
	entry.ID = id
	return nil
}

const selectColumns = `
        SELECT id, timestamp, command, args, provider, domain, record_type, record_name, record_id,
               outcome, error_kind, detail, duration_ms
        FROM dns_audit_log`

// List returns the most recent n audit entries.
func (r *SQLiteRepository) List(limit int) ([]AuditEntry, error) {
	return r.query(selectColumns+` ORDER BY timestamp DESC LIMIT ?`, limit)
}

// ListByCommand returns the most recent n audit entries for a command.
func (r *SQLiteRepository) ListByCommand(command string, limit int) ([]AuditEntry, error) {
	return r.query(selectColumns+` WHERE command = ? ORDER BY timestamp DESC LIMIT ?`, command, limit)
}

// ListByDomain returns the most recent n audit entries touching domain.
func (r *SQLiteRepository) ListByDomain(domain string, limit int) ([]AuditEntry, error) {
	return r.query(selectColumns+` WHERE domain = ? ORDER BY timestamp DESC LIMIT ?`, domain, limit)
}

func (r *SQLiteRepository) query(q string, args ...any) ([]AuditEntry, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("auditlog: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func cutoff(olderThan time.Duration) string {
	return time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
}

// CountOlderThan reports how many entries Prune would delete.
func (r *SQLiteRepository) CountOlderThan(olderThan time.Duration) (int64, error) {
	var n int64
	err := r.db.QueryRow(`SELECT COUNT(*) FROM dns_audit_log WHERE timestamp < ?`, cutoff(olderThan)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("auditlog: count failed: %w", err)
	}
	return n, nil
}

// Prune deletes entries older than the given duration.
func (r *SQLiteRepository) Prune(olderThan time.Duration) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM dns_audit_log WHERE timestamp < ?`, cutoff(olderThan))
	if err != nil {
		return 0, fmt.Errorf("auditlog: delete failed: %w", err)
	}
	return result.RowsAffected()
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanRows(rows *sql.Rows) ([]AuditEntry, error) {
	var entries []AuditEntry
	for rows.Next() {
		var entry AuditEntry
		var timestampStr string
		err := rows.Scan(
			&entry.ID, &timestampStr, &entry.Command, &entry.Args, &entry.Provider, &entry.Domain,
			&entry.RecordType, &entry.RecordName, &entry.RecordID,
			&entry.Outcome, &entry.ErrorKind, &entry.Detail, &entry.DurationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("auditlog: scan failed: %w", err)
		}
		entry.Timestamp, _ = time.Parse(time.RFC3339Nano, timestampStr)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

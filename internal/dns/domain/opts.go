package domain

// CreateRecordOpts holds the parameters for creating a new DNS record.
type CreateRecordOpts struct {
	// Type is the DNS record type. Required.
	Type RecordType

	// Name is the record name. Relative ("www"), full ("www.example.com")
	// and fully-qualified ("www.example.com.") forms are accepted. Empty
	// or "@" means the zone apex.
	Name string

	// Content is the record value. Required.
	Content string

	// TTL is the time-to-live in seconds.
	// Zero means use the engine or provider default.
	TTL int

	// Priority is used for record types that support it (MX, SRV, etc.).
	Priority int

	// Notes is an optional human-readable annotation.
	Notes string
}

// Filter returns the (type, name, content) tuple that identifies the
// record these options create.
func (o CreateRecordOpts) Filter() Filter {
	return Filter{Type: o.Type, Name: o.Name, Content: o.Content}
}

// UpdateRecordOpts holds the new values applied to every record an update
// targets. Empty fields keep the current value.
type UpdateRecordOpts struct {
	Type    RecordType
	Name    string
	Content string

	// TTL is the new time-to-live in seconds. Zero keeps the current value.
	TTL int

	Priority int

	// Notes controls the record annotation.
	// nil means no change; pointer to empty string clears the notes.
	Notes *string
}

// Apply returns r with the non-empty fields of o applied. Name is taken
// verbatim; callers canonicalise it first.
func (o UpdateRecordOpts) Apply(r Record) Record {
	if o.Type != "" {
		r.Type = o.Type
	}
	if o.Name != "" {
		r.Name = o.Name
	}
	if o.Content != "" {
		r.Content = o.Content
	}
	if o.TTL > 0 {
		r.TTL = o.TTL
	}
	if o.Priority > 0 {
		r.Priority = o.Priority
	}
	if o.Notes != nil {
		r.Notes = *o.Notes
	}
	return r
}

// MultiMatchPolicy is a backend's documented behaviour when an update
// filter selects more than one record.
type MultiMatchPolicy string

const (
	// MultiMatchError rejects the update with ErrAmbiguousMatch.
	MultiMatchError MultiMatchPolicy = "error"
	// MultiMatchFirst updates the first record the backend lists.
	MultiMatchFirst MultiMatchPolicy = "first"
	// MultiMatchAll updates every matching record.
	MultiMatchAll MultiMatchPolicy = "all"
)

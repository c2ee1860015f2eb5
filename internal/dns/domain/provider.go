package domain

import "context"

// Provider is the interface that DNS providers must implement.
//
// A Provider is bound to a single domain when it is constructed.
// Operations authenticate lazily: the first call after construction runs
// Authenticate if the caller has not done so. Providers are not safe for
// concurrent use.
type Provider interface {
	// GetDisplayName returns the human-readable provider name (e.g. "Zonomi").
	GetDisplayName() string

	// Authenticate verifies the credentials and that the domain is
	// managed by the account. It fails with ErrAuthentication or ErrNetwork.
	Authenticate(ctx context.Context) error

	// ListRecords returns the records matching every set field of the
	// filter. It returns an empty slice, not an error, when none match.
	ListRecords(ctx context.Context, filter Filter) ([]Record, error)

	// CreateRecord creates a record. Creating a record whose (type, name,
	// content) already exists is a no-op.
	CreateRecord(ctx context.Context, opts CreateRecordOpts) error

	// UpdateRecord modifies the records selected by target. It fails with
	// ErrNotFound when nothing matches. When several records match, the
	// provider's MultiMatchPolicy decides.
	UpdateRecord(ctx context.Context, target Target, opts UpdateRecordOpts) error

	// DeleteRecord removes the records selected by target. Deleting a
	// record that does not exist is not an error.
	DeleteRecord(ctx context.Context, target Target) error
}

// DomainLister is implemented by providers that can enumerate the zones
// in an account.
type DomainLister interface {
	ListDomains(ctx context.Context) ([]Domain, error)
}

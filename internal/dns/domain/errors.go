package domain

import "errors"

// Sentinel errors for cross-provider error classification.
// Providers translate their native error responses into these at the
// Provider boundary so callers never see backend-specific shapes:
//
//	return fmt.Errorf("%w: %s", domain.ErrAuthentication, msg)
var (
	// ErrAuthentication indicates missing or rejected credentials, or a
	// domain the account does not manage.
	ErrAuthentication = errors.New("authentication failed")

	// ErrNotFound indicates the operation target does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNetwork indicates a transport failure or timeout.
	ErrNetwork = errors.New("network error")

	// ErrAmbiguousMatch indicates a filter matched several records where
	// the operation requires exactly one.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates a state or uniqueness conflict.
	ErrConflict = errors.New("conflict")

	// ErrUnsupported indicates an operation the backend cannot express.
	ErrUnsupported = errors.New("unsupported operation")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrAuthentication, "authentication"},
	{ErrNotFound, "not found"},
	{ErrNetwork, "network"},
	{ErrAmbiguousMatch, "ambiguous match"},
	{ErrRateLimited, "rate limited"},
	{ErrConflict, "conflict"},
	{ErrUnsupported, "unsupported"},
}

// Kind returns the taxonomy label of err, or "error" when err does not
// wrap one of the sentinels.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "error"
}

package config

import "errors"

// Configuration errors. Each of them is a configuration error in the sense
// of the run: it is reported before any browser session is created.
var (
	// ErrMissingCredentials is returned when a proxy or platform credential
	// is not set. A run never starts without all four values.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrInvalidEndpoint is returned when an endpoint is not "host:port".
	ErrInvalidEndpoint = errors.New("invalid proxy endpoint")

	// ErrInvalidTimeout is returned when a stage timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when a delay bound is negative or max < min.
	ErrInvalidDelay = errors.New("invalid delay bounds: need 0 <= min <= max")

	// ErrInvalidMaxTrends is returned when max trends is outside 1..5.
	ErrInvalidMaxTrends = errors.New("invalid max trends: must be between 1 and 5")

	// ErrInvalidAuthFailurePolicy is returned for an unknown auth failure policy.
	ErrInvalidAuthFailurePolicy = errors.New("invalid auth failure policy: use continue or skip")

	// ErrUnknownStoreDriver is returned for an unknown store backend.
	ErrUnknownStoreDriver = errors.New("unknown store driver: use sqlite, postgres or mongodb")

	// ErrMissingStoreDSN is returned when the selected backend has no location.
	ErrMissingStoreDSN = errors.New("missing store location: set db_dir for sqlite or dsn otherwise")

	// ErrInvalidOutputFormat is returned for an unknown output format.
	ErrInvalidOutputFormat = errors.New("invalid output format: use table, json or markdown")
)

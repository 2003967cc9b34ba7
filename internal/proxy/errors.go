package proxy

import "errors"

// Proxy errors.
var (
	// ErrInvalidProxyAddress is returned when an endpoint entry cannot be parsed.
	ErrInvalidProxyAddress = errors.New("invalid proxy address")

	// ErrProxyAuthRequired is returned when the proxy answers 407 to a probe.
	// The configured proxy credentials are missing or wrong.
	ErrProxyAuthRequired = errors.New("proxy rejected credentials")

	// ErrProxyCannotConnect is returned when the proxy cannot be reached.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when a probe exceeds its timeout.
	ErrProxyTimeout = errors.New("timeout probing proxy")

	// ErrProxyBadResponse is returned when the probe target answered through
	// the proxy with a server error.
	ErrProxyBadResponse = errors.New("unexpected response through proxy")

	// ErrTorNotRunning is returned when the embedded Tor endpoint is requested
	// before Start succeeded.
	ErrTorNotRunning = errors.New("embedded Tor daemon is not running")
)

// ProbeStatus is the result class of one probe.
type ProbeStatus int

const (
	// ProbeOK means the target was reached through the proxy.
	ProbeOK ProbeStatus = iota
	// ProbeAuthRequired means the proxy rejected the credentials.
	ProbeAuthRequired
	// ProbeCannotConnect means the proxy itself was unreachable.
	ProbeCannotConnect
	// ProbeTimeout means the probe did not finish in time.
	ProbeTimeout
	// ProbeBadResponse means the target answered with a server error.
	ProbeBadResponse
)

// String returns a short description of the status.
func (s ProbeStatus) String() string {
	switch s {
	case ProbeOK:
		return "OK"
	case ProbeAuthRequired:
		return "auth required"
	case ProbeCannotConnect:
		return "cannot connect"
	case ProbeTimeout:
		return "timeout"
	case ProbeBadResponse:
		return "bad response"
	default:
		return "unknown"
	}
}

// Err returns the sentinel for the status, or nil for ProbeOK.
func (s ProbeStatus) Err() error {
	switch s {
	case ProbeOK:
		return nil
	case ProbeAuthRequired:
		return ErrProxyAuthRequired
	case ProbeCannotConnect:
		return ErrProxyCannotConnect
	case ProbeTimeout:
		return ErrProxyTimeout
	case ProbeBadResponse:
		return ErrProxyBadResponse
	default:
		return ErrProxyCannotConnect
	}
}

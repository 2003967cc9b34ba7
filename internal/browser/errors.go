package browser

import "errors"

var (
	// ErrSessionLaunch is returned when the browser could not be started
	// or configured for the endpoint.
	ErrSessionLaunch = errors.New("failed to launch browser session")

	// ErrStageTimeout is returned when a bounded wait expires before the
	// element appears.
	ErrStageTimeout = errors.New("stage wait timed out")

	// ErrSessionClosed is returned by actions on a released session.
	ErrSessionClosed = errors.New("browser session is closed")
)

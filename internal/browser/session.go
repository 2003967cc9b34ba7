package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp/kb"

	"github.com/nao1215/trendscan/internal/model"
)

// KeyEnter submits a form field when sent with SendKeys.
const KeyEnter = kb.Enter

// Session is a live browser bound to one egress endpoint.
// Implementations are not safe for concurrent use.
type Session interface {
	// Navigate loads url in the session's tab.
	Navigate(ctx context.Context, url string) error

	// WaitPresent blocks until selector matches an element or timeout expires.
	// An expired wait returns an error wrapping ErrStageTimeout.
	WaitPresent(ctx context.Context, selector string, timeout time.Duration) error

	// SendKeys types keys into the first element matching selector.
	SendKeys(ctx context.Context, selector, keys string) error

	// Texts returns the rendered text of the elements matching selector, in
	// document order. limit <= 0 returns all of them.
	Texts(ctx context.Context, selector string, limit int) ([]string, error)

	// Screenshot captures the visible viewport as PNG.
	Screenshot(ctx context.Context) ([]byte, error)

	// Endpoint returns the egress endpoint the session is bound to.
	Endpoint() model.ProxyEndpoint

	// Close tears the browser down. Close may be called more than once.
	Close() error
}

// Launcher creates a Session for an endpoint.
type Launcher interface {
	Launch(ctx context.Context, endpoint model.ProxyEndpoint) (Session, error)
}

// Release closes s and logs, but never returns, teardown failures.
// A panic inside Close is recovered as well.
func Release(s Session, logger *slog.Logger) {
	if s == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("session teardown panicked",
				"endpoint", s.Endpoint().String(),
				"panic", fmt.Sprint(r),
			)
		}
	}()
	if err := s.Close(); err != nil {
		logger.Warn("session teardown failed",
			"endpoint", s.Endpoint().String(),
			"error", err,
		)
		return
	}
	logger.Debug("session released", "endpoint", s.Endpoint().String())
}

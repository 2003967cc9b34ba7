package httpapi

import (
	"log/slog"
	"time"
)

// Options controls HTTP API runtime behavior.
type Options struct {
	// RunTimeout bounds one scrape run started by /run-script.
	RunTimeout time.Duration

	// Logger receives the access log and run errors.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.RunTimeout <= 0 {
		o.RunTimeout = 15 * time.Minute
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

package trends

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/model"
)

// Extractor reads the trending page through a session.
type Extractor struct {
	trendingURL   string
	trendSelector string
	waitTimeout   time.Duration
	maxTrends     int
	pacer         *browser.Pacer
	snapshots     *browser.Snapshotter
	logger        *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithWaitTimeout bounds the wait for the first trend element.
func WithWaitTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		e.waitTimeout = d
	}
}

// WithMaxTrends caps the number of entries returned.
func WithMaxTrends(n int) Option {
	return func(e *Extractor) {
		if n > 0 && n <= model.MaxTrends {
			e.maxTrends = n
		}
	}
}

// WithPacer sets the delay applied after navigating.
func WithPacer(p *browser.Pacer) Option {
	return func(e *Extractor) {
		e.pacer = p
	}
}

// WithSnapshotter sets where failure screenshots go.
func WithSnapshotter(s *browser.Snapshotter) Option {
	return func(e *Extractor) {
		e.snapshots = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates an Extractor for the trending page at url whose
// items match selector.
func NewExtractor(url, selector string, opts ...Option) *Extractor {
	e := &Extractor{
		trendingURL:   url,
		trendSelector: selector,
		waitTimeout:   45 * time.Second,
		maxTrends:     model.MaxTrends,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pacer == nil {
		e.pacer = browser.NoPacer()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract reads the first maxTrends trend items and returns the valid ones
// in page order.
// Any failure is logged with a snapshot and yields an empty result.
func (e *Extractor) Extract(ctx context.Context, s browser.Session) []model.TrendEntry {
	logger := e.logger.With("endpoint", s.Endpoint().String())

	texts, err := e.read(ctx, s)
	if err != nil {
		logger.Warn("trend extraction failed", "error", err)
		e.snapshots.Capture(ctx, s, browser.TagScrapingError)
		return nil
	}
	logger.Debug("trend items found", "count", len(texts))

	entries, anomalies := Select(texts, e.maxTrends)
	for _, a := range anomalies {
		logger.Info("skipping trend item", "reason", a)
	}
	for _, entry := range entries {
		logger.Debug("trend extracted", "topic", entry.Topic)
	}
	return entries
}

func (e *Extractor) read(ctx context.Context, s browser.Session) ([]string, error) {
	if err := s.Navigate(ctx, e.trendingURL); err != nil {
		return nil, err
	}
	if err := e.pacer.Pause(ctx); err != nil {
		return nil, err
	}
	if err := s.WaitPresent(ctx, e.trendSelector, e.waitTimeout); err != nil {
		return nil, err
	}
	return s.Texts(ctx, e.trendSelector, e.maxTrends)
}

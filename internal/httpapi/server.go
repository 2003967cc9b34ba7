package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nao1215/trendscan/internal/model"
)

// Response messages.
const (
	MsgNoDataFetched = "No data was fetched by the scraper."
	MsgNoData        = "No data available."
)

// Runner performs one scrape run.
type Runner interface {
	Run(ctx context.Context) (*model.ScrapeResult, error)
}

// LatestReader returns the newest stored record, or nil when there is none.
type LatestReader interface {
	Latest(ctx context.Context) (*model.ScrapeResult, error)
}

// Server holds the dependencies of the handlers.
type Server struct {
	runner  Runner
	store   LatestReader
	opt     Options
	metrics *metricsStore
	runs    singleflight.Group
}

// NewServer creates a Server.
func NewServer(runner Runner, store LatestReader, opt Options) *Server {
	return &Server{
		runner:  runner,
		store:   store,
		opt:     opt.withDefaults(),
		metrics: newMetricsStore(),
	}
}

// Mux returns the routes without middleware.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /run-script", s.handleRunScript)
	mux.HandleFunc("GET /get-latest-data", s.handleLatest)
	return mux
}

// Handler returns the production handler (mux + access log and counters).
func (s *Server) Handler() http.Handler {
	return s.withObservability(s.Mux())
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	WriteText(w, http.StatusOK, "ok\n")
}

func (s *Server) handleRunScript(w http.ResponseWriter, r *http.Request) {
	// A client hanging up must not cancel a run other requests are waiting on.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.opt.RunTimeout)
	defer cancel()

	v, err, shared := s.runs.Do("run", func() (any, error) {
		return s.run(ctx)
	})
	if shared {
		s.metrics.incRunShared()
	}
	if err != nil {
		s.opt.Logger.Error("run failed", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	latest, _ := v.(*model.ScrapeResult)
	if latest == nil {
		WriteError(w, http.StatusOK, MsgNoDataFetched)
		return
	}
	WriteData(w, latest)
}

// run executes the scrape and reads back the newest record.
func (s *Server) run(ctx context.Context) (*model.ScrapeResult, error) {
	start := time.Now()
	result, err := s.runner.Run(ctx)
	switch {
	case err != nil:
		s.metrics.incRun(runFailed)
		return nil, err
	case result == nil:
		s.metrics.incRun(runNoData)
	default:
		s.metrics.incRun(runSucceeded)
	}
	s.opt.Logger.Info("run finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"fetched", result != nil,
	)

	latest, err := s.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest record: %w", err)
	}
	return latest, nil
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := s.store.Latest(r.Context())
	if err != nil {
		s.opt.Logger.Error("failed to read latest record", "error", err)
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if latest == nil {
		WriteError(w, http.StatusOK, MsgNoData)
		return
	}
	WriteData(w, latest)
}

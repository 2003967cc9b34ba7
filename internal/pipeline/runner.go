package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/config"
	"github.com/nao1215/trendscan/internal/model"
)

// EndpointSource yields the egress endpoints of a run in order.
type EndpointSource interface {
	Endpoints() iter.Seq[model.ProxyEndpoint]
}

// Recorder persists a successful result.
type Recorder interface {
	Insert(ctx context.Context, result *model.ScrapeResult) error
}

// Runner executes a scrape run with endpoint failover.
type Runner struct {
	endpoints EndpointSource
	launcher  browser.Launcher
	auth      Authenticator
	extractor Extractor
	recorder  Recorder
	secrets   model.Secrets

	policy config.AuthFailurePolicy
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithAuthFailurePolicy sets what an attempt does after a failed login.
func WithAuthFailurePolicy(policy config.AuthFailurePolicy) RunnerOption {
	return func(r *Runner) {
		r.policy = policy
	}
}

// WithClock sets the time source of result timestamps.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// WithIDGenerator sets the run id source.
func WithIDGenerator(newID func() string) RunnerOption {
	return func(r *Runner) {
		r.newID = newID
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner.
func NewRunner(
	endpoints EndpointSource,
	launcher browser.Launcher,
	auth Authenticator,
	extractor Extractor,
	recorder Recorder,
	secrets model.Secrets,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		endpoints: endpoints,
		launcher:  launcher,
		auth:      auth,
		extractor: extractor,
		recorder:  recorder,
		secrets:   secrets,
		policy:    config.AuthFailureContinue,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run tries the endpoints in order until one yields trends, persists that
// result and returns it. A run that exhausts the endpoints returns nil, nil.
//
// Missing credentials are reported before any session is launched.
// A cancelled context ends the run with the context's error. No other
// failure leaves Run.
func (r *Runner) Run(ctx context.Context) (*model.ScrapeResult, error) {
	if err := r.checkSecrets(); err != nil {
		r.logger.Error("cannot start run", "error", err)
		return nil, err
	}

	runID := r.newID()
	logger := r.logger.With("run_id", runID)
	logger.Info("run started")

	attempts := 0
	for ep := range r.endpoints.Endpoints() {
		attempts++
		attempt, verdict := r.attempt(ctx, runID, ep)

		switch verdict.Kind {
		case model.VerdictFatalAbort:
			logger.Warn("run aborted", "endpoint", ep.String(), "error", verdict.Err)
			return nil, verdict.Err
		case model.VerdictContinue:
			logger.Info("no trends from endpoint, trying next",
				"endpoint", ep.String(),
				"steps", attempt.PerformedSteps,
				"error", attempt.Err,
			)
			continue
		case model.VerdictSuccess:
		}

		result := model.NewScrapeResult(runID, verdict.Trends, r.now(), ep)
		if err := r.recorder.Insert(ctx, result); err != nil {
			logger.Error("failed to store result, trying next endpoint",
				"endpoint", ep.String(),
				"error", err,
			)
			continue
		}
		logger.Info("run succeeded",
			"endpoint", ep.String(),
			"trends", len(verdict.Trends),
			"attempts", attempts,
		)
		return result, nil
	}

	logger.Warn("no endpoint produced trends", "attempts", attempts)
	return nil, nil
}

func (r *Runner) checkSecrets() error {
	if missing := config.MissingSecretVars(r.secrets); len(missing) > 0 {
		return fmt.Errorf("%w: %v", config.ErrMissingCredentials, missing)
	}
	return nil
}

// attempt runs one endpoint. The session is released before it returns,
// and a panic inside the attempt is turned into a failed attempt.
func (r *Runner) attempt(ctx context.Context, runID string, ep model.ProxyEndpoint) (attempt *model.Attempt, verdict model.Verdict) {
	attempt = &model.Attempt{RunID: runID, Endpoint: ep}
	logger := r.logger.With("run_id", runID, "endpoint", ep.String())

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("attempt panicked", "panic", rec)
			attempt.Err = fmt.Errorf("attempt panicked: %v", rec)
			attempt.Trends = nil
			verdict = Decide(r.report(ctx, attempt))
		}
	}()

	sess, err := r.launcher.Launch(ctx, ep)
	if err != nil {
		logger.Warn("failed to start browser session", "error", err)
		attempt.Err = err
		return attempt, Decide(r.report(ctx, attempt))
	}
	defer browser.Release(sess, logger)

	p := New(WithLogger(logger))
	p.AddSteps(
		NewAuthenticateStep(r.auth, r.secrets.Platform, r.policy, logger),
		NewExtractStep(r.extractor),
	)
	logger.Debug("attempt started", "steps", p.StepNames())
	if err := p.Execute(ctx, sess, attempt); err != nil {
		attempt.Err = err
	}
	return attempt, Decide(r.report(ctx, attempt))
}

func (r *Runner) report(ctx context.Context, attempt *model.Attempt) AttemptReport {
	return AttemptReport{
		ContextErr: ctx.Err(),
		ConfigErr:  r.checkSecrets(),
		Trends:     attempt.Trends,
	}
}

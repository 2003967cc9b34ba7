package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/model"
)

// Step is one stage of an endpoint attempt.
type Step interface {
	// Do runs the step against the attempt's session.
	// Stage failures that the run can survive are recorded on the attempt
	// and Do returns nil; a returned error stops the attempt.
	Do(ctx context.Context, sess browser.Session, attempt *model.Attempt) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order on one attempt.
type Pipeline struct {
	steps []Step

	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in sequence.
// It stops before the next step when the context is done or when a step
// marked the attempt as skipped.
func (p *Pipeline) Execute(ctx context.Context, sess browser.Session, attempt *model.Attempt) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("attempt cancelled",
				"step", step.Name(),
				"endpoint", attempt.Endpoint.String(),
				"reason", ctx.Err(),
			)
			attempt.Err = ctx.Err()
			return ctx.Err()
		default:
		}

		if attempt.Skipped {
			p.logger.Debug("skipping remaining steps",
				"step", step.Name(),
				"endpoint", attempt.Endpoint.String(),
			)
			return nil
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"endpoint", attempt.Endpoint.String(),
		)

		if err := step.Do(ctx, sess, attempt); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"endpoint", attempt.Endpoint.String(),
				"error", err,
			)
			attempt.Err = err
			return err
		}

		attempt.PerformedSteps = append(attempt.PerformedSteps, step.Name())
	}

	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

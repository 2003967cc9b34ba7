package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/model"
)

// Targets are the pages and DOM markers of the login flow.
type Targets struct {
	HomeURL            string
	LoginURL           string
	UsernameSelector   string
	PasswordSelector   string
	HomeMarkerSelector string
}

// Authenticator runs the login stages on a session.
type Authenticator struct {
	targets     Targets
	waitTimeout time.Duration
	homeTimeout time.Duration
	pacer       *browser.Pacer
	snapshots   *browser.Snapshotter
	logger      *slog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithPacer sets the humanized delay source.
func WithPacer(p *browser.Pacer) Option {
	return func(a *Authenticator) {
		a.pacer = p
	}
}

// WithSnapshotter sets where failure screenshots go.
func WithSnapshotter(s *browser.Snapshotter) Option {
	return func(a *Authenticator) {
		a.snapshots = s
	}
}

// WithTimeouts sets the field wait bound and the home marker wait bound.
func WithTimeouts(wait, home time.Duration) Option {
	return func(a *Authenticator) {
		a.waitTimeout = wait
		a.homeTimeout = home
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// New creates an Authenticator for targets.
func New(targets Targets, opts ...Option) *Authenticator {
	a := &Authenticator{
		targets:     targets,
		waitTimeout: 45 * time.Second,
		homeTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.pacer == nil {
		a.pacer = browser.NoPacer()
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// stage is one transition of the login state machine. run moves the
// session from the previous stage to reached.
type stage struct {
	reached model.AuthStage
	run     func(ctx context.Context, s browser.Session, creds model.Credentials) error
}

func (a *Authenticator) stages() []stage {
	return []stage{
		{reached: model.StageNavigatedHome, run: func(ctx context.Context, s browser.Session, _ model.Credentials) error {
			return a.navigate(ctx, s, a.targets.HomeURL)
		}},
		{reached: model.StageNavigatedLoginPage, run: func(ctx context.Context, s browser.Session, _ model.Credentials) error {
			return a.navigate(ctx, s, a.targets.LoginURL)
		}},
		{reached: model.StageUsernameSubmitted, run: func(ctx context.Context, s browser.Session, c model.Credentials) error {
			return a.submitField(ctx, s, a.targets.UsernameSelector, c.Username)
		}},
		{reached: model.StagePasswordSubmitted, run: func(ctx context.Context, s browser.Session, c model.Credentials) error {
			return a.submitField(ctx, s, a.targets.PasswordSelector, c.Password)
		}},
		{reached: model.StageAuthenticated, run: func(ctx context.Context, s browser.Session, _ model.Credentials) error {
			return s.WaitPresent(ctx, a.targets.HomeMarkerSelector, a.homeTimeout)
		}},
	}
}

// Authenticate logs s in with creds. It returns model.Authenticated when the
// home marker renders, otherwise model.AuthFailed naming the last stage reached.
func (a *Authenticator) Authenticate(ctx context.Context, s browser.Session, creds model.Credentials) model.AuthOutcome {
	logger := a.logger.With("endpoint", s.Endpoint().String())
	current := model.StageUnauthenticated

	for _, st := range a.stages() {
		if err := st.run(ctx, s, creds); err != nil {
			logger.Warn("login stage failed",
				"stage", st.reached.String(),
				"reached", current.String(),
				"error", err,
			)
			a.snapshots.Capture(ctx, s, browser.TagLoginError)
			return model.AuthFailed{Stage: current, Reason: err}
		}
		current = st.reached
		logger.Debug("login stage completed", "stage", current.String())
	}

	logger.Info("login succeeded")
	return model.Authenticated{}
}

// navigate opens url and pauses like a reader would.
func (a *Authenticator) navigate(ctx context.Context, s browser.Session, url string) error {
	if err := s.Navigate(ctx, url); err != nil {
		return err
	}
	return a.pacer.Pause(ctx)
}

// submitField waits for the field, types value one character at a time,
// pauses, then presses Enter.
func (a *Authenticator) submitField(ctx context.Context, s browser.Session, selector, value string) error {
	if err := s.WaitPresent(ctx, selector, a.waitTimeout); err != nil {
		return err
	}
	for _, r := range value {
		if err := s.SendKeys(ctx, selector, string(r)); err != nil {
			return err
		}
		if err := a.pacer.Keystroke(ctx); err != nil {
			return err
		}
	}
	if err := a.pacer.Pause(ctx); err != nil {
		return err
	}
	if err := s.SendKeys(ctx, selector, browser.KeyEnter); err != nil {
		return fmt.Errorf("failed to submit %s: %w", selector, err)
	}
	return nil
}

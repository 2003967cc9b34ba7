package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/trendscan/internal/browser"
	"github.com/nao1215/trendscan/internal/config"
	"github.com/nao1215/trendscan/internal/model"
)

// Authenticator logs a session in.
type Authenticator interface {
	Authenticate(ctx context.Context, sess browser.Session, creds model.Credentials) model.AuthOutcome
}

// Extractor reads trend entries from a session.
type Extractor interface {
	Extract(ctx context.Context, sess browser.Session) []model.TrendEntry
}

// AuthenticateStep logs in and applies the auth failure policy.
type AuthenticateStep struct {
	auth   Authenticator
	creds  model.Credentials
	policy config.AuthFailurePolicy
	logger *slog.Logger
}

// NewAuthenticateStep creates an AuthenticateStep.
// An empty policy behaves like config.AuthFailureContinue.
func NewAuthenticateStep(auth Authenticator, creds model.Credentials, policy config.AuthFailurePolicy, logger *slog.Logger) *AuthenticateStep {
	if policy == "" {
		policy = config.AuthFailureContinue
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthenticateStep{auth: auth, creds: creds, policy: policy, logger: logger}
}

// Name implements Step.
func (s *AuthenticateStep) Name() string {
	return "authenticate"
}

// Do implements Step. A failed login is recorded on the attempt and never
// returned as an error.
func (s *AuthenticateStep) Do(ctx context.Context, sess browser.Session, attempt *model.Attempt) error {
	outcome := s.auth.Authenticate(ctx, sess, s.creds)
	attempt.Auth = outcome
	if outcome.Succeeded() {
		return nil
	}

	if s.policy == config.AuthFailureSkip {
		s.logger.Info("login failed, skipping endpoint",
			"endpoint", attempt.Endpoint.String(),
			"outcome", outcome,
		)
		attempt.Skipped = true
		return nil
	}
	s.logger.Info("login failed, reading trends anyway",
		"endpoint", attempt.Endpoint.String(),
		"outcome", outcome,
	)
	return nil
}

// ExtractStep reads the trending page.
type ExtractStep struct {
	extractor Extractor
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(extractor Extractor) *ExtractStep {
	return &ExtractStep{extractor: extractor}
}

// Name implements Step.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do implements Step.
func (s *ExtractStep) Do(ctx context.Context, sess browser.Session, attempt *model.Attempt) error {
	attempt.Trends = s.extractor.Extract(ctx, sess)
	return nil
}

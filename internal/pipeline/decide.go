package pipeline

import (
	"github.com/nao1215/trendscan/internal/model"
)

// AttemptReport is everything Decide looks at.
type AttemptReport struct {
	// ContextErr is the run context's error after the attempt.
	ContextErr error
	// ConfigErr is a configuration error such as missing credentials.
	ConfigErr error
	// Trends are the entries the attempt extracted.
	Trends []model.TrendEntry
}

// Decide maps an attempt to a Verdict. It has no side effects.
func Decide(r AttemptReport) model.Verdict {
	switch {
	case r.ContextErr != nil:
		return model.Verdict{Kind: model.VerdictFatalAbort, Err: r.ContextErr}
	case r.ConfigErr != nil:
		return model.Verdict{Kind: model.VerdictFatalAbort, Err: r.ConfigErr}
	case len(r.Trends) > 0:
		return model.Verdict{Kind: model.VerdictSuccess, Trends: r.Trends}
	default:
		return model.Verdict{Kind: model.VerdictContinue}
	}
}

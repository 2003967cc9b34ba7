package model

import "fmt"

// AuthStage names a step of the login protocol.
type AuthStage int

// Login stages in the order they are reached.
const (
	StageUnauthenticated AuthStage = iota
	StageNavigatedHome
	StageNavigatedLoginPage
	StageUsernameSubmitted
	StagePasswordSubmitted
	StageAuthenticated
)

// String returns the stage name used in logs.
func (s AuthStage) String() string {
	switch s {
	case StageUnauthenticated:
		return "unauthenticated"
	case StageNavigatedHome:
		return "navigated_home"
	case StageNavigatedLoginPage:
		return "navigated_login_page"
	case StageUsernameSubmitted:
		return "username_submitted"
	case StagePasswordSubmitted:
		return "password_submitted"
	case StageAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthOutcome is the result of a login attempt: either Authenticated or AuthFailed.
type AuthOutcome interface {
	Succeeded() bool
	isAuthOutcome()
}

// Authenticated reports that the home view rendered after login.
type Authenticated struct{}

// Succeeded implements AuthOutcome.
func (Authenticated) Succeeded() bool { return true }
func (Authenticated) isAuthOutcome()  {}

// String implements fmt.Stringer.
func (Authenticated) String() string { return "authenticated" }

// AuthFailed reports the stage that could not be completed and why.
// Stage is the last stage reached before the failure.
type AuthFailed struct {
	Stage  AuthStage
	Reason error
}

// Succeeded implements AuthOutcome.
func (AuthFailed) Succeeded() bool { return false }
func (AuthFailed) isAuthOutcome()  {}

// String implements fmt.Stringer.
func (f AuthFailed) String() string {
	return fmt.Sprintf("auth failed after %s: %v", f.Stage, f.Reason)
}

// VerdictKind tags the decision taken after an endpoint attempt.
type VerdictKind int

const (
	// VerdictContinue moves on to the next endpoint.
	VerdictContinue VerdictKind = iota
	// VerdictSuccess persists the result and stops rotation.
	VerdictSuccess
	// VerdictFatalAbort stops rotation without persisting anything.
	VerdictFatalAbort
)

// String returns the verdict name.
func (k VerdictKind) String() string {
	switch k {
	case VerdictContinue:
		return "continue"
	case VerdictSuccess:
		return "success"
	case VerdictFatalAbort:
		return "fatal_abort"
	default:
		return "unknown"
	}
}

// Verdict is the decision for one attempt. Trends is set only for VerdictSuccess
// and Err only for VerdictFatalAbort.
type Verdict struct {
	Kind   VerdictKind
	Trends []TrendEntry
	Err    error
}

// Attempt carries the state of one endpoint attempt through the attempt pipeline.
type Attempt struct {
	// RunID is shared by every attempt of a run.
	RunID string
	// Endpoint is the egress proxy of this attempt.
	Endpoint ProxyEndpoint
	// Auth is nil until the authentication step has run.
	Auth AuthOutcome
	// Trends holds the validated entries read by the extraction step.
	Trends []TrendEntry
	// Skipped is set when a step decided the rest of the attempt should not run.
	Skipped bool
	// PerformedSteps lists the names of the steps that ran.
	PerformedSteps []string
	// Err is the last step error.
	Err error
}

package model

import (
	"errors"
	"strings"
	"testing"
)

func TestAuthOutcome(t *testing.T) {
	t.Parallel()

	t.Run("Authenticated succeeds", func(t *testing.T) {
		t.Parallel()
		var o AuthOutcome = Authenticated{}
		if !o.Succeeded() {
			t.Error("expected Authenticated to succeed")
		}
	})

	t.Run("AuthFailed carries stage and reason", func(t *testing.T) {
		t.Parallel()
		var o AuthOutcome = AuthFailed{Stage: StageNavigatedLoginPage, Reason: errors.New("timeout")}
		if o.Succeeded() {
			t.Error("expected AuthFailed not to succeed")
		}
		f, ok := o.(AuthFailed)
		if !ok {
			t.Fatalf("expected AuthFailed, got %T", o)
		}
		if !strings.Contains(f.String(), "navigated_login_page") {
			t.Errorf("expected stage in message, got %q", f.String())
		}
	})
}

func TestStageAndVerdictStrings(t *testing.T) {
	t.Parallel()

	if StageAuthenticated.String() != "authenticated" {
		t.Errorf("unexpected stage string %q", StageAuthenticated.String())
	}
	if AuthStage(99).String() != "unknown" {
		t.Errorf("expected unknown stage string")
	}
	if VerdictFatalAbort.String() != "fatal_abort" {
		t.Errorf("unexpected verdict string %q", VerdictFatalAbort.String())
	}
}

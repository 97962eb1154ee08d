package model

import "testing"

func TestSessionState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  SessionState
		to    SessionState
		valid bool
	}{
		{SessionStateUnauthenticated, SessionStateAuthenticating, true},
		{SessionStateAuthenticating, SessionStateAuthenticated, true},
		{SessionStateAuthenticating, SessionStateUnauthenticated, true},
		{SessionStateAuthenticated, SessionStateUnauthenticated, true},
		{SessionStateAuthenticated, SessionStateAuthenticating, true},

		{SessionStateUnauthenticated, SessionStateAuthenticated, false},
		{SessionStateUnauthenticated, SessionStateUnauthenticated, false},
		{SessionStateAuthenticated, SessionStateAuthenticated, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("%s → %s: got %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{From: SessionStateUnauthenticated, To: SessionStateAuthenticated}
	want := "invalid session state transition: UNAUTHENTICATED → AUTHENTICATED"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{Code: ErrUnauthorized, Message: "Bad credentials"}
	if got := err.Error(); got != "UNAUTHORIZED: Bad credentials" {
		t.Errorf("Error() = %q", got)
	}
	plain := &APIError{Message: "Bad credentials"}
	if got := plain.Error(); got != "Bad credentials" {
		t.Errorf("Error() = %q", got)
	}
}

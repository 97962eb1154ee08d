package model

// SessionState is the lifecycle state of a client session.
type SessionState string

const (
	SessionStateUnauthenticated SessionState = "UNAUTHENTICATED"
	SessionStateAuthenticating  SessionState = "AUTHENTICATING"
	SessionStateAuthenticated   SessionState = "AUTHENTICATED"
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	return string(s)
}

// ValidSessionTransitions defines the allowed session state transitions.
// AUTHENTICATED may re-enter AUTHENTICATING on an explicit re-check.
var ValidSessionTransitions = map[SessionState][]SessionState{
	SessionStateUnauthenticated: {SessionStateAuthenticating},
	SessionStateAuthenticating:  {SessionStateAuthenticated, SessionStateUnauthenticated},
	SessionStateAuthenticated:   {SessionStateAuthenticating, SessionStateUnauthenticated},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	for _, allowed := range ValidSessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

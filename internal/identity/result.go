package identity

import (
	"errors"

	"github.com/me/kitlend/pkg/model"
)

// Status classifies the outcome of a resolution pass.
type Status string

const (
	// StatusAuthenticated means the identity was fully resolved.
	StatusAuthenticated Status = "authenticated"
	// StatusDegraded means an identity was resolved but a secondary lookup
	// failed, so the role may be less privileged than the backend would grant.
	StatusDegraded Status = "degraded"
	// StatusUnauthenticated means there is no usable session.
	StatusUnauthenticated Status = "unauthenticated"
)

// Reasons attached to non-authenticated results.
var (
	ErrProfileUnavailable = errors.New("account profile unavailable")
	ErrProfileMissingID   = errors.New("account profile has no id")
	ErrMembershipLookup   = errors.New("borrowing group lookup failed")
	ErrSuperseded         = errors.New("session changed while the request was in flight")
)

// Result is the outcome of one resolution pass.
type Result struct {
	Status Status
	// Identity is set for StatusAuthenticated and StatusDegraded.
	Identity *model.ResolvedIdentity
	// Reason explains a degraded or unauthenticated result. It is nil when
	// the session simply has no credential.
	Reason error
}

// Authenticated reports whether the result carries an identity.
func (r Result) Authenticated() bool {
	return r.Identity != nil
}

func unauthenticated(reason error) Result {
	return Result{Status: StatusUnauthenticated, Reason: reason}
}

package identity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/me/kitlend/internal/logging"
	"github.com/me/kitlend/pkg/model"
)

// Session holds the one ResolvedIdentity of a running client together with
// its lifecycle state. All methods are safe for concurrent use.
//
// Every resolution pass runs under a context tied to the session epoch.
// Logout cancels the in-flight pass and advances the epoch; a pass that
// finishes under a stale epoch discards its result.
type Session struct {
	backend  Backend
	resolver *Resolver
	logger   *slog.Logger

	mu       sync.Mutex
	state    model.SessionState
	identity *model.ResolvedIdentity
	last     Result
	loading  bool
	epoch    uint64
	cancel   context.CancelFunc
}

// NewSession creates an unauthenticated session.
func NewSession(backend Backend, logger *slog.Logger) *Session {
	return &Session{
		backend:  backend,
		resolver: NewResolver(backend, logger),
		logger:   logging.Component(logger, "session"),
		state:    model.SessionStateUnauthenticated,
		last:     unauthenticated(nil),
	}
}

// Start runs the app-start resolution pass from the stored credential.
func (s *Session) Start(ctx context.Context) Result {
	return s.refresh(ctx)
}

// Recheck re-resolves the identity, e.g. after the account changed on the
// backend.
func (s *Session) Recheck(ctx context.Context) Result {
	return s.refresh(ctx)
}

func (s *Session) refresh(ctx context.Context) Result {
	passCtx, epoch := s.beginPass(ctx)
	res := s.resolver.Resolve(passCtx)
	if !s.finishPass(epoch, res) {
		return unauthenticated(ErrSuperseded)
	}
	return res
}

// Login authenticates, stores the credential and resolves the identity in
// one step. Authentication failures are returned as errors and leave the
// session unauthenticated. A successful login whose resolution fails
// returns a nil error and an unauthenticated Result explaining why.
func (s *Session) Login(ctx context.Context, username, password string) (Result, error) {
	passCtx, epoch := s.beginPass(ctx)

	if _, err := s.backend.Login(passCtx, username, password); err != nil {
		res := unauthenticated(err)
		if !s.finishPass(epoch, res) {
			return unauthenticated(ErrSuperseded), ErrSuperseded
		}
		return res, err
	}

	res := s.resolver.Resolve(passCtx)
	if !s.finishPass(epoch, res) {
		return unauthenticated(ErrSuperseded), ErrSuperseded
	}
	return res, nil
}

// Logout clears the local session and notifies the backend. It always
// succeeds locally and is safe to call when already logged out.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epoch++
	s.identity = nil
	s.loading = false
	s.last = unauthenticated(nil)
	s.setState(model.SessionStateUnauthenticated)
	s.mu.Unlock()

	s.backend.Logout(ctx)
	s.logger.Info("logged out")
}

// Identity returns a copy of the resolved identity, or nil when
// unauthenticated.
func (s *Session) Identity() *model.ResolvedIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIdentity(s.identity)
}

// State returns the current lifecycle state.
func (s *Session) State() model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether a login or resolution pass is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Last returns the result of the most recent completed pass.
func (s *Session) Last() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.last
	res.Identity = cloneIdentity(res.Identity)
	return res
}

// beginPass cancels any pass still in flight and starts a new one.
func (s *Session) beginPass(ctx context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	s.epoch++
	passCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	if s.state != model.SessionStateAuthenticating {
		s.setState(model.SessionStateAuthenticating)
	}
	return passCtx, s.epoch
}

// finishPass commits res if the pass is still current. It reports whether
// the result was committed.
func (s *Session) finishPass(epoch uint64, res Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		s.logger.Debug("discarding superseded resolution", "status", res.Status)
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
	s.last = res
	s.identity = res.Identity
	if res.Identity != nil {
		s.setState(model.SessionStateAuthenticated)
	} else {
		s.setState(model.SessionStateUnauthenticated)
	}
	return true
}

// setState moves to next. Callers hold s.mu.
func (s *Session) setState(next model.SessionState) {
	if s.state == next {
		return
	}
	if !s.state.CanTransitionTo(next) {
		s.logger.Warn("unexpected session transition", "error", &model.InvalidTransitionError{From: s.state, To: next})
	}
	s.logger.Debug("session state", "from", s.state, "to", next)
	s.state = next
}

func cloneIdentity(id *model.ResolvedIdentity) *model.ResolvedIdentity {
	if id == nil {
		return nil
	}
	c := *id
	if id.BorrowingGroupInfo != nil {
		info := *id.BorrowingGroupInfo
		c.BorrowingGroupInfo = &info
	}
	return &c
}

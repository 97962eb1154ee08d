package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/me/kitlend/pkg/model"
)

func TestSession_LoginHappyPath(t *testing.T) {
	b := &fakeBackend{profile: &model.AccountProfile{ID: "1", Role: model.BackendRoleStudent}}
	s := NewSession(b, testLogger())

	res, err := s.Login(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if b.token != "T" {
		t.Errorf("credential = %q, want T", b.token)
	}
	want := model.ResolvedIdentity{ID: "1", Role: model.UIRoleMember}
	if res.Identity == nil || *res.Identity != want {
		t.Fatalf("Identity = %+v, want %+v", res.Identity, want)
	}
	if res.Identity.BorrowingGroupInfo != nil {
		t.Errorf("BorrowingGroupInfo = %+v, want nil", res.Identity.BorrowingGroupInfo)
	}
	if s.State() != model.SessionStateAuthenticated {
		t.Errorf("State = %s", s.State())
	}
	if s.Loading() {
		t.Error("Loading() = true after login")
	}
	if got := s.Identity(); got == nil || got.ID != "1" {
		t.Errorf("Identity() = %+v", got)
	}
}

func TestSession_LoginFailurePropagates(t *testing.T) {
	loginErr := errors.New("HTTP 401: Invalid email or password")
	b := &fakeBackend{loginErr: loginErr}
	s := NewSession(b, testLogger())

	res, err := s.Login(context.Background(), "a@b.com", "bad")
	if !errors.Is(err, loginErr) {
		t.Fatalf("err = %v, want %v", err, loginErr)
	}
	if res.Status != StatusUnauthenticated || res.Identity != nil {
		t.Errorf("result = %+v", res)
	}
	if s.State() != model.SessionStateUnauthenticated {
		t.Errorf("State = %s", s.State())
	}
	if s.Identity() != nil {
		t.Error("identity set after failed login")
	}
}

func TestSession_LoginThenProfileFailure(t *testing.T) {
	b := &fakeBackend{profileErr: errors.New("HTTP 503")}
	s := NewSession(b, testLogger())

	res, err := s.Login(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Status != StatusUnauthenticated || !errors.Is(res.Reason, ErrProfileUnavailable) {
		t.Errorf("result = %+v", res)
	}
	if s.State() != model.SessionStateUnauthenticated {
		t.Errorf("State = %s", s.State())
	}
}

func TestSession_LogoutIdempotent(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b, testLogger())

	s.Logout(context.Background())
	s.Logout(context.Background())

	if s.State() != model.SessionStateUnauthenticated {
		t.Errorf("State = %s", s.State())
	}
	if s.Identity() != nil {
		t.Error("identity after logout")
	}
	if b.logoutCalls != 2 {
		t.Errorf("backend logout calls = %d, want 2", b.logoutCalls)
	}
}

func TestSession_LogoutClearsIdentity(t *testing.T) {
	b := loggedIn(model.BackendRoleAdmin)
	s := NewSession(b, testLogger())

	if res := s.Start(context.Background()); res.Status != StatusAuthenticated {
		t.Fatalf("Start = %+v", res)
	}
	s.Logout(context.Background())

	if s.Identity() != nil || s.State() != model.SessionStateUnauthenticated {
		t.Errorf("after logout: identity %+v, state %s", s.Identity(), s.State())
	}
	if b.token != "" {
		t.Error("credential not cleared")
	}
	if res := s.Recheck(context.Background()); res.Status != StatusUnauthenticated {
		t.Errorf("Recheck after logout = %+v", res)
	}
}

func TestSession_StartWithoutCredential(t *testing.T) {
	s := NewSession(&fakeBackend{}, testLogger())
	res := s.Start(context.Background())
	if res.Status != StatusUnauthenticated || res.Reason != nil {
		t.Errorf("Start = %+v", res)
	}
	if s.Last().Status != StatusUnauthenticated {
		t.Errorf("Last = %+v", s.Last())
	}
}

func TestSession_RecheckPicksUpChanges(t *testing.T) {
	b := loggedIn(model.BackendRoleStudent)
	s := NewSession(b, testLogger())

	if res := s.Start(context.Background()); res.Identity.Role != model.UIRoleMember {
		t.Fatalf("Start role = %q", res.Identity.Role)
	}

	b.mu.Lock()
	b.memberships = []model.GroupMembership{{GroupID: "G", Role: model.GroupRoleLeader}}
	b.mu.Unlock()

	res := s.Recheck(context.Background())
	if res.Identity.Role != model.UIRoleLeader {
		t.Errorf("Recheck role = %q, want leader", res.Identity.Role)
	}
	if s.Identity().Role != model.UIRoleLeader {
		t.Errorf("Identity().Role = %q", s.Identity().Role)
	}
}

func TestSession_DegradedIsAuthenticated(t *testing.T) {
	b := loggedIn(model.BackendRoleStudent)
	b.membershipsErr = errors.New("timeout")
	s := NewSession(b, testLogger())

	res := s.Start(context.Background())
	if res.Status != StatusDegraded {
		t.Fatalf("Status = %s", res.Status)
	}
	if s.State() != model.SessionStateAuthenticated {
		t.Errorf("State = %s", s.State())
	}
	if s.Last().Status != StatusDegraded {
		t.Errorf("Last().Status = %s", s.Last().Status)
	}
}

func TestSession_IdentityIsCopy(t *testing.T) {
	b := loggedIn(model.BackendRoleStudent, model.GroupMembership{GroupID: "G", Role: model.GroupRoleMember})
	s := NewSession(b, testLogger())
	s.Start(context.Background())

	id := s.Identity()
	id.Role = model.UIRoleAdmin
	id.BorrowingGroupInfo.Role = model.GroupRoleLeader

	again := s.Identity()
	if again.Role != model.UIRoleMember || again.BorrowingGroupInfo.Role != model.GroupRoleMember {
		t.Errorf("session identity mutated through copy: %+v", again)
	}
}

func TestSession_LogoutDuringResolutionDiscardsResult(t *testing.T) {
	b := loggedIn(model.BackendRoleAdmin)
	b.blockProfile = make(chan struct{})
	b.profileStarted = make(chan struct{}, 1)
	s := NewSession(b, testLogger())

	done := make(chan Result, 1)
	go func() { done <- s.Start(context.Background()) }()

	select {
	case <-b.profileStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("resolution never reached the profile fetch")
	}
	if !s.Loading() {
		t.Error("Loading() = false during resolution")
	}
	if s.State() != model.SessionStateAuthenticating {
		t.Errorf("State = %s during resolution", s.State())
	}

	s.Logout(context.Background())
	close(b.blockProfile)

	var res Result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("resolution did not finish")
	}
	if !errors.Is(res.Reason, ErrSuperseded) {
		t.Errorf("Reason = %v, want ErrSuperseded", res.Reason)
	}
	if s.Identity() != nil {
		t.Errorf("stale identity re-populated: %+v", s.Identity())
	}
	if s.State() != model.SessionStateUnauthenticated {
		t.Errorf("State = %s", s.State())
	}
}

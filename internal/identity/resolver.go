// Package identity turns a stored credential into the UI-facing identity of
// the logged-in account.
package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/me/kitlend/internal/logging"
	"github.com/me/kitlend/pkg/model"
)

// Backend is the subset of the lending API the resolver depends on.
// *api.Client implements it.
type Backend interface {
	IsAuthenticated(ctx context.Context) bool
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context)
	GetProfile(ctx context.Context) (*model.AccountProfile, error)
	GetGroupMembershipsByAccountID(ctx context.Context, accountID model.ID) ([]model.GroupMembership, error)
}

// Resolver derives a ResolvedIdentity from the backend. It keeps no state
// between calls.
type Resolver struct {
	backend Backend
	logger  *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(backend Backend, logger *slog.Logger) *Resolver {
	return &Resolver{
		backend: backend,
		logger:  logging.Component(logger, "identity"),
	}
}

// Resolve runs one resolution pass. It never returns a partially populated
// identity: any failure before the identity is complete yields
// StatusUnauthenticated, and a failed membership lookup yields
// StatusDegraded with the unmodified role.
func (r *Resolver) Resolve(ctx context.Context) Result {
	if !r.backend.IsAuthenticated(ctx) {
		return unauthenticated(nil)
	}

	profile, err := r.backend.GetProfile(ctx)
	if err != nil {
		r.logger.Warn("profile fetch failed", "error", err)
		return unauthenticated(fmt.Errorf("%w: %w", ErrProfileUnavailable, err))
	}
	if profile == nil {
		r.logger.Warn("profile fetch returned no payload")
		return unauthenticated(ErrProfileUnavailable)
	}
	if !profile.HasID() {
		r.logger.Warn("profile has no id")
		return unauthenticated(ErrProfileMissingID)
	}

	id := &model.ResolvedIdentity{
		ID:          profile.ID,
		Email:       profile.Email,
		Name:        profile.FullName,
		Role:        model.UIRoleFor(profile.Role),
		AvatarURL:   profile.AvatarURL,
		Phone:       profile.Phone,
		StudentCode: profile.StudentCode,
	}
	logger := r.logger.With("account_id", id.ID, "backend_role", profile.Role)

	if id.Role != model.UIRoleMember {
		logger.Debug("identity resolved", "role", id.Role)
		return Result{Status: StatusAuthenticated, Identity: id}
	}

	memberships, err := r.backend.GetGroupMembershipsByAccountID(ctx, id.ID)
	if err != nil {
		logger.Warn("membership lookup failed, keeping member role", "error", err)
		return Result{
			Status:   StatusDegraded,
			Identity: id,
			Reason:   fmt.Errorf("%w: %w", ErrMembershipLookup, err),
		}
	}
	applyMemberships(id, memberships)

	logger.Debug("identity resolved", "role", id.Role, "memberships", len(memberships))
	return Result{Status: StatusAuthenticated, Identity: id}
}

// applyMemberships applies the leadership override. The first LEADER
// membership in backend order wins; otherwise the first MEMBER membership
// only attaches group info.
func applyMemberships(id *model.ResolvedIdentity, memberships []model.GroupMembership) {
	if m, ok := model.FirstWithRole(memberships, model.GroupRoleLeader); ok {
		id.Role = model.UIRoleLeader
		id.BorrowingGroupInfo = &model.BorrowingGroupInfo{GroupID: m.GroupID, Role: model.GroupRoleLeader}
		return
	}
	if m, ok := model.FirstWithRole(memberships, model.GroupRoleMember); ok {
		id.BorrowingGroupInfo = &model.BorrowingGroupInfo{GroupID: m.GroupID, Role: model.GroupRoleMember}
	}
}

package api

import (
	"context"
	"net/url"

	"github.com/me/kitlend/pkg/model"
)

// GetProfile fetches the profile of the logged-in account. It returns a nil
// profile and nil error when the backend answers with an empty payload.
func (c *Client) GetProfile(ctx context.Context) (*model.AccountProfile, error) {
	resp, err := c.Get(ctx, PathProfile)
	if err != nil {
		return nil, err
	}
	profile, ok, err := Decode[model.AccountProfile](resp)
	if err != nil {
		return nil, wrapError("get profile", err)
	}
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// GetGroupMembershipsByAccountID lists the borrowing-group memberships of an
// account, in the order the backend returns them.
func (c *Client) GetGroupMembershipsByAccountID(ctx context.Context, accountID model.ID) ([]model.GroupMembership, error) {
	resp, err := c.Get(ctx, PathMembershipsPrefix+url.PathEscape(accountID.String()))
	if err != nil {
		return nil, err
	}
	memberships, err := DecodeList[model.GroupMembership](resp)
	if err != nil {
		return nil, wrapError("get group memberships", err)
	}
	return memberships, nil
}

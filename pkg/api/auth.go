package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/me/kitlend/pkg/model"
)

// Backend endpoint paths.
const (
	PathLogin             = "/api/auth/login"
	PathLogout            = "/api/auth/logout"
	PathProfile           = "/api/accounts/me"
	PathMembershipsPrefix = "/api/borrowing-groups/members/account/"
)

// IsAuthenticated reports whether a credential is currently stored.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	if c.tokens == nil {
		return false
	}
	token, err := c.tokens.Load(ctx)
	if err != nil {
		c.logger.Warn("load credential failed", "error", err)
		return false
	}
	return token != ""
}

// Login authenticates against the backend and stores the returned bearer
// token. Failures carry the server-provided message, or ErrUnreachable when
// the server could not be contacted.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	const op = "login"

	resp, err := c.do(ctx, op, http.MethodPost, PathLogin, model.LoginRequest{
		Username: username,
		Password: password,
	}, false)
	if err != nil {
		return "", err
	}

	token, err := tokenFromResponse(resp)
	if err != nil {
		return "", wrapError(op, err)
	}

	// A caller that gave up (e.g. a logout cancelled the login) must not
	// find the credential stored afterwards.
	if err := ctx.Err(); err != nil {
		return "", wrapError(op, err)
	}
	if c.tokens != nil {
		if err := c.tokens.Save(ctx, token); err != nil {
			return "", wrapError(op, fmt.Errorf("save credential: %w", err))
		}
	}
	c.logger.Info("logged in", "username", username)
	return token, nil
}

// tokenFromResponse extracts the bearer token from a login response. The
// backend answers with a bare text token, a JSON string, a {token} or
// {accessToken} object, or any of those under {data: ...}.
func tokenFromResponse(resp *Response) (string, error) {
	if !resp.JSON {
		token := strings.Trim(resp.Text(), `"`)
		if token == "" {
			return "", ErrEmptyToken
		}
		return token, nil
	}

	raw := resp.Payload()
	if isNull(raw) {
		return "", ErrEmptyToken
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s, nil
		}
		return "", ErrEmptyToken
	}

	var lr model.LoginResponse
	if err := json.Unmarshal(raw, &lr); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if token := strings.TrimSpace(lr.BearerToken()); token != "" {
		return token, nil
	}
	return "", ErrEmptyToken
}

// Logout notifies the backend and clears the stored credential. The remote
// call is best-effort: its failures are logged and the local credential is
// cleared regardless.
func (c *Client) Logout(ctx context.Context) {
	if c.IsAuthenticated(ctx) {
		if _, err := c.do(ctx, "logout", http.MethodPost, PathLogout, nil, true); err != nil {
			c.logger.Warn("backend logout failed", "error", err)
		}
	}
	if c.tokens == nil {
		return
	}
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Warn("clear credential failed", "error", err)
	}
}

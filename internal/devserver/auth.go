package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/me/kitlend/pkg/model"
)

// claims are the JWT claims issued on login.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 token for acc.
func (s *Server) issueToken(acc *account) (string, error) {
	now := time.Now().UTC()
	c := claims{
		Role: acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   fmt.Sprint(acc.ID),
			Issuer:    "kitlend-devserver",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(s.config.JWTSecret))
}

// parseToken verifies a token and returns its claims.
func (s *Server) parseToken(raw string) (*claims, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return c, nil
}

// revoked reports whether a token ID was logged out.
func (s *Server) revoked(jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revokedIDs[jti]
}

func (s *Server) revoke(jti string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokedIDs[jti] = true
}

type ctxKeyAccount struct{}

type authInfo struct {
	account *account
	claims  *claims
}

func authFromContext(ctx context.Context) *authInfo {
	info, _ := ctx.Value(ctxKeyAccount{}).(*authInfo)
	return info
}

var errMissingBearer = errors.New("missing bearer token")

func bearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errMissingBearer
	}
	return strings.TrimSpace(token), nil
}

// requireAuth rejects requests without a valid, unrevoked bearer token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, model.ErrUnauthorized, "Authentication required")
			return
		}
		c, err := s.parseToken(raw)
		if err != nil || s.revoked(c.ID) {
			respondError(w, http.StatusUnauthorized, model.ErrUnauthorized, "Invalid or expired token")
			return
		}
		acc, ok := s.dir.byID[c.Subject]
		if !ok {
			respondError(w, http.StatusUnauthorized, model.ErrUnauthorized, "Account no longer exists")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyAccount{}, &authInfo{account: acc, claims: c})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

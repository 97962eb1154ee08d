package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/me/kitlend/internal/config"
	"github.com/me/kitlend/pkg/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]any{"status": "healthy"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Username and password are required")
		return
	}

	acc, err := s.dir.authenticate(req.Username, req.Password)
	if err != nil {
		s.logger.Info("login rejected", "username", req.Username)
		respondError(w, http.StatusUnauthorized, model.ErrUnauthorized, "Invalid email or password")
		return
	}

	token, err := s.issueToken(acc)
	if err != nil {
		s.logger.Error("sign token", "error", err)
		respondError(w, http.StatusInternalServerError, model.ErrInternal, "Could not issue token")
		return
	}
	s.logger.Info("login", "account_id", acc.ID, "role", acc.Role)

	switch s.config.LoginFormat {
	case config.LoginFormatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(token))
	case config.LoginFormatJSON:
		respondJSON(w, http.StatusOK, model.LoginResponse{Token: token})
	default:
		respondData(w, http.StatusOK, model.LoginResponse{AccessToken: token})
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	info := authFromContext(r.Context())
	s.revoke(info.claims.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	acc := authFromContext(r.Context()).account

	profile := map[string]any{
		"email":    acc.Email,
		"fullName": acc.FullName,
		"role":     acc.Role,
	}
	switch acc.IDField {
	case "userId":
		profile["userId"] = acc.ID
	case "none":
	default:
		profile["id"] = acc.ID
	}
	if acc.AvatarURL != "" {
		profile["avatarUrl"] = acc.AvatarURL
	}
	if acc.Phone != "" {
		profile["phone"] = acc.Phone
	}
	if acc.StudentCode != "" {
		profile["studentCode"] = acc.StudentCode
	}
	respondData(w, http.StatusOK, profile)
}

type membershipJSON struct {
	ID        int64  `json:"id"`
	GroupID   int64  `json:"groupId"`
	AccountID int64  `json:"accountId"`
	Role      string `json:"role"`
}

func (s *Server) handleMemberships(w http.ResponseWriter, r *http.Request) {
	if s.failMemberships.Load() {
		respondError(w, http.StatusServiceUnavailable, model.ErrUnavailable, "Borrowing group service unavailable")
		return
	}

	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "Account id must be numeric")
		return
	}
	caller := authFromContext(r.Context()).account
	if caller.ID != accountID && caller.Role != string(model.BackendRoleAdmin) {
		respondError(w, http.StatusForbidden, model.ErrUnauthorized, "Cannot view another account's groups")
		return
	}
	if _, ok := s.dir.byID[strconv.FormatInt(accountID, 10)]; !ok {
		apiErr := model.NewNotFoundError("Account", strconv.FormatInt(accountID, 10))
		respondError(w, http.StatusNotFound, apiErr.Code, apiErr.Message)
		return
	}

	content := []membershipJSON{}
	for _, m := range s.dir.membershipsOf(accountID) {
		content = append(content, membershipJSON{ID: m.ID, GroupID: m.GroupID, AccountID: m.AccountID, Role: m.Role})
	}
	respondData(w, http.StatusOK, map[string]any{
		"content":       content,
		"totalElements": len(content),
	})
}

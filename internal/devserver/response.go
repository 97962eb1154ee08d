package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/me/kitlend/pkg/model"
)

// respondData writes {"status":"ok","data":...}.
func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, map[string]any{"status": "ok", "data": data})
}

// respondError writes the backend's error body {code, message}.
func respondError(w http.ResponseWriter, status int, code model.ErrorCode, msg string) {
	respondJSON(w, status, &model.APIError{Code: code, Message: msg})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

package model

import "encoding/json"

// Envelope is the response wrapper the backend puts around most payloads.
// Paged endpoints put their items under Content, either at the top level or
// nested inside Data.
type Envelope struct {
	Status  string          `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
}

// LoginRequest is the body of the authentication call.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON form of a successful authentication.
type LoginResponse struct {
	Token       string `json:"token,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

// BearerToken returns whichever token field is set.
func (r LoginResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

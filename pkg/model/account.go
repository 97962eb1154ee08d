package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// BackendRole is the account role as reported by the lending backend.
type BackendRole string

const (
	BackendRoleAdmin    BackendRole = "ADMIN"
	BackendRoleStudent  BackendRole = "STUDENT"
	BackendRoleLecturer BackendRole = "LECTURER"
	BackendRoleLeader   BackendRole = "LEADER"
	BackendRoleAcademic BackendRole = "ACADEMIC"
)

// ID is a backend identifier. The backend emits identifiers as JSON numbers
// or strings depending on the endpoint; both decode to the same ID.
type ID string

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number, got %s", string(data))
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as a string.
func (id ID) String() string {
	return string(id)
}

// AccountProfile is the backend-authoritative account record returned by
// the profile endpoint.
type AccountProfile struct {
	ID          ID          `json:"id"`
	Email       string      `json:"email"`
	FullName    string      `json:"fullName"`
	Role        BackendRole `json:"role"`
	AvatarURL   string      `json:"avatarUrl,omitempty"`
	Phone       string      `json:"phone,omitempty"`
	StudentCode string      `json:"studentCode,omitempty"`
}

// UnmarshalJSON decodes a profile, taking the identifier from "id" or, when
// that is absent, from "userId".
func (p *AccountProfile) UnmarshalJSON(data []byte) error {
	type plain AccountProfile
	var raw struct {
		plain
		UserID ID `json:"userId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = AccountProfile(raw.plain)
	if p.ID == "" {
		p.ID = raw.UserID
	}
	return nil
}

// HasID reports whether the profile carries a usable identifier.
func (p *AccountProfile) HasID() bool {
	return p != nil && p.ID != ""
}

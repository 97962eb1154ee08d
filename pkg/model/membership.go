package model

import "encoding/json"

// GroupRole is the role an account holds inside a borrowing group.
type GroupRole string

const (
	GroupRoleLeader GroupRole = "LEADER"
	GroupRoleMember GroupRole = "MEMBER"
)

// GroupMembership associates an account with a borrowing group.
type GroupMembership struct {
	ID        ID        `json:"id,omitempty"`
	GroupID   ID        `json:"groupId"`
	AccountID ID        `json:"accountId"`
	Role      GroupRole `json:"role"`
}

// UnmarshalJSON decodes a membership. Older backend builds name the role
// field "roles"; it is used when "role" is absent.
func (m *GroupMembership) UnmarshalJSON(data []byte) error {
	type plain GroupMembership
	var raw struct {
		plain
		Roles GroupRole `json:"roles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = GroupMembership(raw.plain)
	if m.Role == "" {
		m.Role = raw.Roles
	}
	return nil
}

// FirstWithRole returns the first membership holding role, in the order
// given. The second result is false when none matches.
func FirstWithRole(memberships []GroupMembership, role GroupRole) (GroupMembership, bool) {
	for _, m := range memberships {
		if m.Role == role {
			return m, true
		}
	}
	return GroupMembership{}, false
}

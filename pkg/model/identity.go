package model

// UIRole is the role the front-end works with. It is derived from the
// backend role and, for members, from borrowing-group leadership.
type UIRole string

const (
	UIRoleAdmin    UIRole = "admin"
	UIRoleMember   UIRole = "member"
	UIRoleLecturer UIRole = "lecturer"
	UIRoleLeader   UIRole = "leader"
	UIRoleAcademic UIRole = "academic"
)

// uiRoles maps every recognized backend role to its UI role.
var uiRoles = map[BackendRole]UIRole{
	BackendRoleAdmin:    UIRoleAdmin,
	BackendRoleStudent:  UIRoleMember,
	BackendRoleLecturer: UIRoleLecturer,
	BackendRoleLeader:   UIRoleLeader,
	BackendRoleAcademic: UIRoleAcademic,
}

// UIRoleFor maps a backend role to a UI role. Unrecognized and empty roles
// map to UIRoleMember.
func UIRoleFor(r BackendRole) UIRole {
	if role, ok := uiRoles[r]; ok {
		return role
	}
	return UIRoleMember
}

// IsValid reports whether r is one of the five UI roles.
func (r UIRole) IsValid() bool {
	switch r {
	case UIRoleAdmin, UIRoleMember, UIRoleLecturer, UIRoleLeader, UIRoleAcademic:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r UIRole) String() string {
	return string(r)
}

// BorrowingGroupInfo identifies the borrowing group an identity acts in.
type BorrowingGroupInfo struct {
	GroupID ID        `json:"groupId"`
	Role    GroupRole `json:"role"`
}

// ResolvedIdentity is the UI-facing view of the logged-in account.
type ResolvedIdentity struct {
	ID                 ID                  `json:"id"`
	Email              string              `json:"email"`
	Name               string              `json:"name"`
	Role               UIRole              `json:"role"`
	AvatarURL          string              `json:"avatarUrl,omitempty"`
	Phone              string              `json:"phone,omitempty"`
	StudentCode        string              `json:"studentCode,omitempty"`
	BorrowingGroupInfo *BorrowingGroupInfo `json:"borrowingGroupInfo,omitempty"`
}

// IsAdmin returns true if the identity has the admin UI role.
func (i *ResolvedIdentity) IsAdmin() bool {
	return i.Role == UIRoleAdmin
}

// IsGroupLeader returns true if the identity leads a borrowing group.
func (i *ResolvedIdentity) IsGroupLeader() bool {
	return i.BorrowingGroupInfo != nil && i.BorrowingGroupInfo.Role == GroupRoleLeader
}

package model

import "testing"

func TestUIRoleFor(t *testing.T) {
	tests := []struct {
		backend BackendRole
		want    UIRole
	}{
		{BackendRoleAdmin, UIRoleAdmin},
		{BackendRoleStudent, UIRoleMember},
		{BackendRoleLecturer, UIRoleLecturer},
		{BackendRoleLeader, UIRoleLeader},
		{BackendRoleAcademic, UIRoleAcademic},
		{"JANITOR", UIRoleMember},
		{"admin", UIRoleMember},
		{"", UIRoleMember},
	}
	for _, tt := range tests {
		got := UIRoleFor(tt.backend)
		if got != tt.want {
			t.Errorf("UIRoleFor(%q) = %q, want %q", tt.backend, got, tt.want)
		}
		if !got.IsValid() {
			t.Errorf("UIRoleFor(%q) = %q is not a valid UI role", tt.backend, got)
		}
	}
}

func TestUIRole_IsValid(t *testing.T) {
	if UIRole("superuser").IsValid() {
		t.Error("unexpected valid role superuser")
	}
	if UIRole("").IsValid() {
		t.Error("empty role should not be valid")
	}
}

func TestResolvedIdentity_IsGroupLeader(t *testing.T) {
	id := &ResolvedIdentity{Role: UIRoleLeader, BorrowingGroupInfo: &BorrowingGroupInfo{GroupID: "7", Role: GroupRoleLeader}}
	if !id.IsGroupLeader() {
		t.Error("IsGroupLeader() = false, want true")
	}
	id.BorrowingGroupInfo.Role = GroupRoleMember
	if id.IsGroupLeader() {
		t.Error("IsGroupLeader() = true for MEMBER info")
	}
	id.BorrowingGroupInfo = nil
	if id.IsGroupLeader() {
		t.Error("IsGroupLeader() = true without group info")
	}
}

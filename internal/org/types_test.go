package org

import (
	"testing"
	"time"
)

func ts(sec int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC)
}

func TestMembershipStateDerivation(t *testing.T) {
	now := ts(0)
	cases := []struct {
		name string
		m    Membership
		want MembershipState
	}{
		{"pending", Membership{InvitedAt: &now}, MembershipPending},
		{"pending without invited_at", Membership{}, MembershipPending},
		{"active", Membership{JoinedAt: &now}, MembershipActive},
		{"left", Membership{JoinedAt: &now, LeftAt: &now}, MembershipLeft},
		{"removed", Membership{JoinedAt: &now, DeletedAt: &now}, MembershipRemoved},
		{"removed wins over left", Membership{JoinedAt: &now, LeftAt: &now, DeletedAt: &now}, MembershipRemoved},
	}
	for _, tc := range cases {
		if got := tc.m.State(); got != tc.want {
			t.Errorf("%s: State = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestStateReadableOnValues(t *testing.T) {
	joined := ts(0)
	fresh := func() Membership {
		return Membership{ID: "m1", JoinedAt: &joined}
	}
	// State and Terminal are reads; they must work on a value returned
	// straight from a call, not only on an addressable variable.
	if fresh().State() != MembershipActive {
		t.Fatalf("state = %s", fresh().State())
	}
	if fresh().Terminal() {
		t.Fatalf("active membership read as terminal")
	}
}

func TestAcceptOnlyPending(t *testing.T) {
	now := ts(0)
	m := Membership{ID: "m1", InvitedAt: &now}
	if err := m.Accept("u1", ts(1)); err != nil {
		t.Fatalf("accept pending: %v", err)
	}
	if m.State() != MembershipActive {
		t.Fatalf("state = %s", m.State())
	}
	if m.UserID == nil || *m.UserID != "u1" {
		t.Fatalf("UserID = %v", m.UserID)
	}

	if err := m.Accept("u1", ts(2)); err == nil {
		t.Fatalf("accepting an active membership must fail")
	}
}

func TestLeaveOnlyActive(t *testing.T) {
	m := Membership{ID: "m1"}
	if err := m.Leave(ts(1)); err == nil {
		t.Fatalf("leaving a pending membership must fail")
	}
	joined := ts(0)
	m.JoinedAt = &joined
	if err := m.Leave(ts(1)); err != nil {
		t.Fatalf("leave active: %v", err)
	}
	if !m.Terminal() {
		t.Fatalf("left membership must be terminal")
	}
	if err := m.Leave(ts(2)); err == nil {
		t.Fatalf("leaving twice must fail")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	joined := ts(0)
	m := Membership{ID: "m1", JoinedAt: &joined}
	m.Remove(ts(1))
	first := *m.DeletedAt
	m.Remove(ts(5))
	if !m.DeletedAt.Equal(first) {
		t.Fatalf("second remove rewrote DeletedAt")
	}
	if m.State() != MembershipRemoved {
		t.Fatalf("state = %s", m.State())
	}
}

func TestChangeRoleOnlyActive(t *testing.T) {
	joined := ts(0)
	m := Membership{ID: "m1", JoinedAt: &joined, RoleCode: RoleMember}
	if err := m.ChangeRole(RoleAdmin, ts(1)); err != nil {
		t.Fatalf("change role: %v", err)
	}
	if m.RoleCode != RoleAdmin {
		t.Fatalf("RoleCode = %s", m.RoleCode)
	}
	if err := m.ChangeRole("superuser", ts(2)); err == nil {
		t.Fatalf("unknown role accepted")
	}

	left := ts(3)
	m.LeftAt = &left
	if err := m.ChangeRole(RoleMember, ts(4)); err == nil {
		t.Fatalf("role change on left membership accepted")
	}
}

func TestRoleHelpers(t *testing.T) {
	if !ValidRole(RoleOwner) || !ValidRole(RoleAdmin) || !ValidRole(RoleMember) {
		t.Fatalf("known roles rejected")
	}
	if ValidRole("root") {
		t.Fatalf("unknown role accepted")
	}
	if !RoleOwner.CanManageMembers() || !RoleAdmin.CanManageMembers() {
		t.Fatalf("managers rejected")
	}
	if RoleMember.CanManageMembers() {
		t.Fatalf("member can manage")
	}
}

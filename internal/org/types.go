package org

import (
	"fmt"
	"time"

	"crewbase.org/internal/uc"
)

// RoleCode ranks a member inside one organization.
type RoleCode string

const (
	RoleOwner  RoleCode = "owner"
	RoleAdmin  RoleCode = "admin"
	RoleMember RoleCode = "member"
)

// ValidRole reports whether code is one of the three known roles.
func ValidRole(code RoleCode) bool {
	switch code {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may add or remove other members.
func (r RoleCode) CanManageMembers() bool {
	return r == RoleOwner || r == RoleAdmin
}

// MembershipState is the explicit lifecycle position of a membership.
// The nullable timestamps stay on the row as audit fields; logic branches on
// the derived state, never on "timestamp is zero" checks.
type MembershipState string

const (
	// MembershipPending: invited, invitation not yet accepted.
	MembershipPending MembershipState = "pending"
	// MembershipActive: joined, not left and not removed.
	MembershipActive MembershipState = "active"
	// MembershipLeft: the member left voluntarily. Terminal.
	MembershipLeft MembershipState = "left"
	// MembershipRemoved: administrative removal. Terminal.
	MembershipRemoved MembershipState = "removed"
)

// Organization is a tenant. OwnerUserID always names the single active owner.
type Organization struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	OwnerUserID string         `json:"owner_user_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// User is an account. ExternalID is the principal identifier carried by
// bearer tokens; DeletedAt marks soft deletion.
type User struct {
	ID           string     `json:"id"`
	ExternalID   string     `json:"external_id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Membership ties a user (or a not-yet-registered invitee) to an
// organization. UserID is nil while the invitee has no account.
type Membership struct {
	ID             string     `json:"id"`
	UserID         *string    `json:"user_id,omitempty"`
	Username       string     `json:"username"`
	OrganizationID string     `json:"organization_id"`
	RoleCode       RoleCode   `json:"role_code"`
	InvitedAt      *time.Time `json:"invited_at,omitempty"`
	JoinedAt       *time.Time `json:"joined_at,omitempty"`
	LeftAt         *time.Time `json:"left_at,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// State derives the lifecycle position. Removal wins over leaving so an
// administratively removed row never reads as merely left.
func (m Membership) State() MembershipState {
	switch {
	case m.DeletedAt != nil:
		return MembershipRemoved
	case m.LeftAt != nil:
		return MembershipLeft
	case m.JoinedAt != nil:
		return MembershipActive
	default:
		return MembershipPending
	}
}

// Terminal reports whether the membership can never become active again.
// A new row is created instead of reactivating a terminal one.
func (m Membership) Terminal() bool {
	s := m.State()
	return s == MembershipLeft || s == MembershipRemoved
}

// Accept moves a pending membership to active, binding the registered user.
func (m *Membership) Accept(userID string, now time.Time) *uc.Error {
	if m.State() != MembershipPending {
		return uc.BusinessRule(
			fmt.Sprintf("membership is %s, only pending invitations can be accepted", m.State()),
			map[string]any{"membership_id": m.ID, "state": string(m.State())},
		)
	}
	m.UserID = &userID
	m.JoinedAt = &now
	m.UpdatedAt = now
	return nil
}

// ChangeRole updates the role of an active membership. Owner promotion and
// demotion go through TransferOwnership, never through here.
func (m *Membership) ChangeRole(role RoleCode, now time.Time) *uc.Error {
	if !ValidRole(role) {
		return uc.Validation(fmt.Sprintf("unknown role %s", role), "role_code", nil)
	}
	if m.State() != MembershipActive {
		return uc.BusinessRule(
			fmt.Sprintf("membership is %s, only active members can change role", m.State()),
			map[string]any{"membership_id": m.ID, "state": string(m.State())},
		)
	}
	m.RoleCode = role
	m.UpdatedAt = now
	return nil
}

// Leave records a voluntary exit. Terminal.
func (m *Membership) Leave(now time.Time) *uc.Error {
	if m.State() != MembershipActive {
		return uc.BusinessRule(
			fmt.Sprintf("membership is %s, only active members can leave", m.State()),
			map[string]any{"membership_id": m.ID, "state": string(m.State())},
		)
	}
	m.LeftAt = &now
	m.UpdatedAt = now
	return nil
}

// Remove records an administrative removal. Calling it on an already removed
// membership is a no-op; callers rely on that for idempotent removes.
func (m *Membership) Remove(now time.Time) {
	if m.DeletedAt != nil {
		return
	}
	m.DeletedAt = &now
	m.UpdatedAt = now
}

package org

import (
	"context"
	"errors"
	"strings"

	"crewbase.org/internal/uc"
)

// Use-case names, also used as audit actions and metric labels.
const (
	UseCaseCreateUser         = "CreateUser"
	UseCaseGetUser            = "GetUser"
	UseCaseUpdateUser         = "UpdateUser"
	UseCaseDeleteUser         = "DeleteUser"
	UseCaseListUsers          = "ListUsers"
	UseCaseCreateOrganization = "CreateOrganization"
	UseCaseGetOrganization    = "GetOrganization"
	UseCaseUpdateOrganization = "UpdateOrganization"
	UseCaseDeleteOrganization = "DeleteOrganization"
	UseCaseListOrganizations  = "ListOrganizations"
	UseCaseAddMember          = "AddOrganizationMember"
	UseCaseAcceptInvitation   = "AcceptInvitation"
	UseCaseUpdateMemberRole   = "UpdateMemberRole"
	UseCaseLeaveOrganization  = "LeaveOrganization"
	UseCaseRemoveMember       = "RemoveOrganizationMember"
	UseCaseTransferOwnership  = "TransferOwnership"
	UseCaseListMembers        = "ListOrganizationMembers"
)

// storesOf recovers the domain store bundle from the adapter envelope.
func storesOf(ad *uc.Adapters) *Stores {
	st, _ := ad.Stores.(*Stores)
	if st == nil {
		panic("org: adapters carry no *org.Stores bundle")
	}
	return st
}

// actorUser resolves the operation's actor to a live user account.
func actorUser(ctx context.Context, st *Stores, op uc.Operation) (*User, error) {
	id := strings.TrimSpace(op.ActorID)
	if id == "" {
		return nil, uc.Unauthorized("act without an authenticated principal", "")
	}
	u, err := st.Users.FindByExternalID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, uc.Unauthorized("act as unknown principal", "User")
	}
	if err != nil {
		return nil, err
	}
	if u.DeletedAt != nil {
		return nil, uc.Unauthorized("act as a deleted user", "User")
	}
	return u, nil
}

// actorMembership resolves the actor's active membership in an organization.
// Returns (nil, nil) when the actor simply is not a member.
func actorMembership(ctx context.Context, st *Stores, orgID string, op uc.Operation) (*Membership, error) {
	actor, err := actorUser(ctx, st, op)
	if err != nil {
		return nil, err
	}
	m, err := st.Memberships.FindActiveByUser(ctx, orgID, actor.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// requireID validates a non-empty identifier field.
func requireID(value, field string) (string, *uc.Error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", uc.Validation(field+" is required", field, nil)
	}
	return value, nil
}

package org

import (
	"context"
	"errors"

	"crewbase.org/internal/audit"
	"crewbase.org/internal/uc"
)

type AddMemberInput struct {
	OrganizationID string   `json:"organization_id"`
	Username       string   `json:"username"`
	RoleCode       RoleCode `json:"role_code,omitempty"`
}

type AcceptInvitationInput struct {
	OrganizationID string `json:"organization_id"`
}

type UpdateMemberRoleInput struct {
	OrganizationID string   `json:"organization_id"`
	MembershipID   string   `json:"membership_id"`
	RoleCode       RoleCode `json:"role_code"`
}

type LeaveOrganizationInput struct {
	OrganizationID string `json:"organization_id"`
}

type RemoveMemberInput struct {
	OrganizationID string `json:"organization_id"`
	MembershipID   string `json:"membership_id"`
}

type TransferOwnershipInput struct {
	OrganizationID string `json:"organization_id"`
	NewOwnerUserID string `json:"new_owner_user_id"`
}

type ListMembersInput struct {
	OrganizationID string `json:"organization_id"`
}

// auditAfter emits an audit line once the mutation has committed. The hook
// never fails: audit is best effort by contract.
func auditAfter[I, O any](action string, fields func(hc *uc.HookContext[I, O]) map[string]any) uc.Hook[I, O] {
	return func(ctx context.Context, hc *uc.HookContext[I, O]) error {
		var f map[string]any
		if fields != nil {
			f = fields(hc)
		}
		audit.Record(hc.Op, action, f)
		return nil
	}
}

// requireManager authorizes actors holding admin or owner in the target
// organization.
func requireManager(ctx context.Context, ad *uc.Adapters, orgID string, op uc.Operation) (bool, error) {
	m, err := actorMembership(ctx, storesOf(ad), orgID, op)
	if err != nil {
		return false, err
	}
	return m != nil && m.RoleCode.CanManageMembers(), nil
}

// NewAddMember builds the AddOrganizationMember use case. A registered
// target joins immediately; an unregistered one gets a pending invitation.
func NewAddMember(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[AddMemberInput, Membership] {
	return uc.MustRegister(reg, &uc.UseCase[AddMemberInput, Membership]{
		Name:     UseCaseAddMember,
		Adapters: ad,
		Validate: func(ctx context.Context, in AddMemberInput) (AddMemberInput, *uc.Error) {
			orgID, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = orgID
			username, verr := validUsername(in.Username)
			if verr != nil {
				return in, verr
			}
			in.Username = username
			if in.RoleCode == "" {
				in.RoleCode = RoleMember
			}
			if !ValidRole(in.RoleCode) {
				return in, uc.Validation("unknown role", "role_code", map[string]any{"role_code": string(in.RoleCode)})
			}
			if in.RoleCode == RoleOwner {
				return in, uc.Validation("owner role is assigned through ownership transfer only", "role_code", nil)
			}
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[AddMemberInput, Membership]) (bool, error) {
			return requireManager(ctx, hc.Adapters, hc.Steps.ValidatedInput.OrganizationID, hc.Op)
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[AddMemberInput, Membership]) (Membership, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput

			if _, err := st.Organizations.FindByID(ctx, in.OrganizationID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return Membership{}, uc.NotFound("Organization", in.OrganizationID)
				}
				return Membership{}, err
			}
			if _, err := st.Memberships.FindPendingByUsername(ctx, in.OrganizationID, in.Username); err == nil {
				return Membership{}, uc.Conflict("OrganizationMembership", in.Username)
			} else if !errors.Is(err, ErrNotFound) {
				return Membership{}, err
			}

			now := hc.Adapters.Now()
			m := &Membership{
				ID:             hc.Adapters.NewID(),
				Username:       in.Username,
				OrganizationID: in.OrganizationID,
				RoleCode:       in.RoleCode,
				CreatedAt:      now,
				UpdatedAt:      now,
			}

			target, err := st.Users.FindByUsername(ctx, in.Username)
			switch {
			case err == nil && target.DeletedAt == nil:
				if _, err := st.Memberships.FindActiveByUser(ctx, in.OrganizationID, target.ID); err == nil {
					return Membership{}, uc.Conflict("OrganizationMembership", in.Username)
				} else if !errors.Is(err, ErrNotFound) {
					return Membership{}, err
				}
				userID := target.ID
				m.UserID = &userID
				m.JoinedAt = &now
			case err == nil || errors.Is(err, ErrNotFound):
				// Unregistered (or soft-deleted) target: invite.
				m.InvitedAt = &now
			default:
				return Membership{}, err
			}

			if err := st.Memberships.Create(ctx, m); err != nil {
				if errors.Is(err, ErrConflict) {
					return Membership{}, uc.Conflict("OrganizationMembership", in.Username)
				}
				return Membership{}, err
			}
			return *m, nil
		},
		Hooks: uc.Hooks[AddMemberInput, Membership]{
			AfterExecution: auditAfter(UseCaseAddMember, func(hc *uc.HookContext[AddMemberInput, Membership]) map[string]any {
				return map[string]any{
					"membership_id": hc.Steps.Output.ID,
					"username":      hc.Steps.Output.Username,
					"state":         string(hc.Steps.Output.State()),
				}
			}),
		},
	})
}

// NewAcceptInvitation builds the AcceptInvitation use case: the actor claims
// the pending invitation addressed to its own username.
func NewAcceptInvitation(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[AcceptInvitationInput, Membership] {
	return uc.MustRegister(reg, &uc.UseCase[AcceptInvitationInput, Membership]{
		Name:     UseCaseAcceptInvitation,
		Adapters: ad,
		Validate: func(ctx context.Context, in AcceptInvitationInput) (AcceptInvitationInput, *uc.Error) {
			orgID, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = orgID
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[AcceptInvitationInput, Membership]) (bool, error) {
			if _, err := actorUser(ctx, storesOf(hc.Adapters), hc.Op); err != nil {
				return false, err
			}
			return true, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[AcceptInvitationInput, Membership]) (Membership, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			actor, err := actorUser(ctx, st, hc.Op)
			if err != nil {
				return Membership{}, err
			}
			m, err := st.Memberships.FindPendingByUsername(ctx, in.OrganizationID, actor.Username)
			if errors.Is(err, ErrNotFound) {
				return Membership{}, uc.NotFound("Invitation", actor.Username)
			}
			if err != nil {
				return Membership{}, err
			}
			now := hc.Adapters.Now()
			if uerr := m.Accept(actor.ID, now); uerr != nil {
				return Membership{}, uerr
			}
			if err := st.Memberships.Update(ctx, m); err != nil {
				return Membership{}, err
			}
			return *m, nil
		},
		Hooks: uc.Hooks[AcceptInvitationInput, Membership]{
			AfterExecution: auditAfter(UseCaseAcceptInvitation, func(hc *uc.HookContext[AcceptInvitationInput, Membership]) map[string]any {
				return map[string]any{"membership_id": hc.Steps.Output.ID}
			}),
		},
	})
}

// NewUpdateMemberRole builds the UpdateMemberRole use case. Owner promotion
// and demotion are excluded: the sole-owner invariant is owned by
// TransferOwnership.
func NewUpdateMemberRole(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[UpdateMemberRoleInput, Membership] {
	return uc.MustRegister(reg, &uc.UseCase[UpdateMemberRoleInput, Membership]{
		Name:     UseCaseUpdateMemberRole,
		Adapters: ad,
		Validate: func(ctx context.Context, in UpdateMemberRoleInput) (UpdateMemberRoleInput, *uc.Error) {
			orgID, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = orgID
			id, verr := requireID(in.MembershipID, "membership_id")
			if verr != nil {
				return in, verr
			}
			in.MembershipID = id
			if !ValidRole(in.RoleCode) {
				return in, uc.Validation("unknown role", "role_code", map[string]any{"role_code": string(in.RoleCode)})
			}
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[UpdateMemberRoleInput, Membership]) (bool, error) {
			return requireManager(ctx, hc.Adapters, hc.Steps.ValidatedInput.OrganizationID, hc.Op)
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[UpdateMemberRoleInput, Membership]) (Membership, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			m, err := st.Memberships.FindByID(ctx, in.MembershipID)
			if errors.Is(err, ErrNotFound) || (err == nil && m.OrganizationID != in.OrganizationID) {
				return Membership{}, uc.NotFound("OrganizationMembership", in.MembershipID)
			}
			if err != nil {
				return Membership{}, err
			}
			if m.RoleCode == RoleOwner {
				return Membership{}, uc.BusinessRule(
					"the owner cannot be demoted directly, transfer ownership first",
					map[string]any{"membership_id": m.ID},
				)
			}
			if in.RoleCode == RoleOwner {
				return Membership{}, uc.BusinessRule(
					"owner role is assigned through ownership transfer only",
					map[string]any{"membership_id": m.ID},
				)
			}
			if uerr := m.ChangeRole(in.RoleCode, hc.Adapters.Now()); uerr != nil {
				return Membership{}, uerr
			}
			if err := st.Memberships.Update(ctx, m); err != nil {
				return Membership{}, err
			}
			return *m, nil
		},
		Hooks: uc.Hooks[UpdateMemberRoleInput, Membership]{
			AfterExecution: auditAfter(UseCaseUpdateMemberRole, func(hc *uc.HookContext[UpdateMemberRoleInput, Membership]) map[string]any {
				return map[string]any{
					"membership_id": hc.Steps.Output.ID,
					"role_code":     string(hc.Steps.Output.RoleCode),
				}
			}),
		},
	})
}

// NewLeaveOrganization builds the LeaveOrganization use case: the actor ends
// its own membership. Owners must transfer ownership before leaving.
func NewLeaveOrganization(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[LeaveOrganizationInput, Membership] {
	return uc.MustRegister(reg, &uc.UseCase[LeaveOrganizationInput, Membership]{
		Name:     UseCaseLeaveOrganization,
		Adapters: ad,
		Validate: func(ctx context.Context, in LeaveOrganizationInput) (LeaveOrganizationInput, *uc.Error) {
			orgID, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = orgID
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[LeaveOrganizationInput, Membership]) (bool, error) {
			if _, err := actorUser(ctx, storesOf(hc.Adapters), hc.Op); err != nil {
				return false, err
			}
			return true, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[LeaveOrganizationInput, Membership]) (Membership, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			actor, err := actorUser(ctx, st, hc.Op)
			if err != nil {
				return Membership{}, err
			}
			m, err := st.Memberships.FindActiveByUser(ctx, in.OrganizationID, actor.ID)
			if errors.Is(err, ErrNotFound) {
				return Membership{}, uc.NotFound("OrganizationMembership", actor.Username)
			}
			if err != nil {
				return Membership{}, err
			}
			if m.RoleCode == RoleOwner {
				return Membership{}, uc.BusinessRule(
					"the owner cannot leave, transfer ownership first",
					map[string]any{"membership_id": m.ID},
				)
			}
			if uerr := m.Leave(hc.Adapters.Now()); uerr != nil {
				return Membership{}, uerr
			}
			if err := st.Memberships.Update(ctx, m); err != nil {
				return Membership{}, err
			}
			return *m, nil
		},
		Hooks: uc.Hooks[LeaveOrganizationInput, Membership]{
			AfterExecution: auditAfter(UseCaseLeaveOrganization, func(hc *uc.HookContext[LeaveOrganizationInput, Membership]) map[string]any {
				return map[string]any{"membership_id": hc.Steps.Output.ID}
			}),
		},
	})
}

// NewRemoveMember builds the RemoveOrganizationMember use case.
// Administrative removal; removing an already removed membership succeeds
// without touching the row.
func NewRemoveMember(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[RemoveMemberInput, Membership] {
	return uc.MustRegister(reg, &uc.UseCase[RemoveMemberInput, Membership]{
		Name:     UseCaseRemoveMember,
		Adapters: ad,
		Validate: func(ctx context.Context, in RemoveMemberInput) (RemoveMemberInput, *uc.Error) {
			orgID, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = orgID
			id, verr := requireID(in.MembershipID, "membership_id")
			if verr != nil {
				return in, verr
			}
			in.MembershipID = id
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[RemoveMemberInput, Membership]) (bool, error) {
			return requireManager(ctx, hc.Adapters, hc.Steps.ValidatedInput.OrganizationID, hc.Op)
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[RemoveMemberInput, Membership]) (Membership, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			m, err := st.Memberships.FindByID(ctx, in.MembershipID)
			if errors.Is(err, ErrNotFound) || (err == nil && m.OrganizationID != in.OrganizationID) {
				return Membership{}, uc.NotFound("OrganizationMembership", in.MembershipID)
			}
			if err != nil {
				return Membership{}, err
			}
			if m.State() == MembershipRemoved {
				return *m, nil
			}
			if m.RoleCode == RoleOwner && m.State() == MembershipActive {
				return Membership{}, uc.BusinessRule(
					"the owner cannot be removed, transfer ownership first",
					map[string]any{"membership_id": m.ID},
				)
			}
			m.Remove(hc.Adapters.Now())
			if err := st.Memberships.Update(ctx, m); err != nil {
				return Membership{}, err
			}
			return *m, nil
		},
		Hooks: uc.Hooks[RemoveMemberInput, Membership]{
			AfterExecution: auditAfter(UseCaseRemoveMember, func(hc *uc.HookContext[RemoveMemberInput, Membership]) map[string]any {
				return map[string]any{"membership_id": hc.Steps.Output.ID}
			}),
		},
	})
}

// NewTransferOwnership builds the TransferOwnership use case: the old owner
// drops to member, the new owner is promoted, and the organization record is
// repointed, all inside one unit of work. Partial application is a
// correctness violation, so every write shares the transaction.
func NewTransferOwnership(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[TransferOwnershipInput, Organization] {
	return uc.MustRegister(reg, &uc.UseCase[TransferOwnershipInput, Organization]{
		Name:     UseCaseTransferOwnership,
		Adapters: ad,
		Validate: func(ctx context.Context, in TransferOwnershipInput) (TransferOwnershipInput, *uc.Error) {
			orgID, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = orgID
			id, verr := requireID(in.NewOwnerUserID, "new_owner_user_id")
			if verr != nil {
				return in, verr
			}
			in.NewOwnerUserID = id
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[TransferOwnershipInput, Organization]) (bool, error) {
			m, err := actorMembership(ctx, storesOf(hc.Adapters), hc.Steps.ValidatedInput.OrganizationID, hc.Op)
			if err != nil {
				return false, err
			}
			return m != nil && m.RoleCode == RoleOwner, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[TransferOwnershipInput, Organization]) (Organization, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput

			var out Organization
			err := hc.Adapters.UoW.RunInTx(ctx, func(txCtx context.Context) error {
				o, err := st.Organizations.FindByID(txCtx, in.OrganizationID)
				if errors.Is(err, ErrNotFound) {
					return uc.NotFound("Organization", in.OrganizationID)
				}
				if err != nil {
					return err
				}
				if o.OwnerUserID == in.NewOwnerUserID {
					out = *o
					return nil
				}

				newOwner, err := st.Users.FindByID(txCtx, in.NewOwnerUserID)
				if errors.Is(err, ErrNotFound) {
					return uc.NotFound("User", in.NewOwnerUserID)
				}
				if err != nil {
					return err
				}
				if newOwner.DeletedAt != nil {
					return uc.BusinessRule("ownership cannot be transferred to a deleted user",
						map[string]any{"user_id": newOwner.ID})
				}

				oldOwnerMembership, err := st.Memberships.FindActiveByUser(txCtx, o.ID, o.OwnerUserID)
				if errors.Is(err, ErrNotFound) {
					return uc.BusinessRule("current owner has no active membership",
						map[string]any{"organization_id": o.ID})
				}
				if err != nil {
					return err
				}
				newOwnerMembership, err := st.Memberships.FindActiveByUser(txCtx, o.ID, newOwner.ID)
				if errors.Is(err, ErrNotFound) {
					return uc.BusinessRule("new owner must be an active member",
						map[string]any{"organization_id": o.ID, "user_id": newOwner.ID})
				}
				if err != nil {
					return err
				}

				now := hc.Adapters.Now()
				oldOwnerMembership.RoleCode = RoleMember
				oldOwnerMembership.UpdatedAt = now
				newOwnerMembership.RoleCode = RoleOwner
				newOwnerMembership.UpdatedAt = now
				o.OwnerUserID = newOwner.ID
				o.UpdatedAt = now

				if err := st.Memberships.Update(txCtx, oldOwnerMembership); err != nil {
					return err
				}
				if err := st.Memberships.Update(txCtx, newOwnerMembership); err != nil {
					return err
				}
				if err := st.Organizations.Update(txCtx, o); err != nil {
					return err
				}
				out = *o
				return nil
			})
			if err != nil {
				return Organization{}, err
			}
			return out, nil
		},
		Hooks: uc.Hooks[TransferOwnershipInput, Organization]{
			AfterExecution: auditAfter(UseCaseTransferOwnership, func(hc *uc.HookContext[TransferOwnershipInput, Organization]) map[string]any {
				return map[string]any{
					"organization_id": hc.Steps.Output.ID,
					"new_owner_id":    hc.Steps.Output.OwnerUserID,
				}
			}),
		},
	})
}

// NewListMembers builds the ListOrganizationMembers use case. Any active
// member may see the roster.
func NewListMembers(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[ListMembersInput, []Membership] {
	return uc.MustRegister(reg, &uc.UseCase[ListMembersInput, []Membership]{
		Name:     UseCaseListMembers,
		Adapters: ad,
		Validate: func(ctx context.Context, in ListMembersInput) (ListMembersInput, *uc.Error) {
			orgID, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = orgID
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[ListMembersInput, []Membership]) (bool, error) {
			m, err := actorMembership(ctx, storesOf(hc.Adapters), hc.Steps.ValidatedInput.OrganizationID, hc.Op)
			if err != nil {
				return false, err
			}
			return m != nil, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[ListMembersInput, []Membership]) ([]Membership, error) {
			st := storesOf(hc.Adapters)
			all, err := st.Memberships.ListByOrganization(ctx, hc.Steps.ValidatedInput.OrganizationID)
			if err != nil {
				return nil, err
			}
			out := make([]Membership, 0, len(all))
			for _, m := range all {
				out = append(out, *m)
			}
			return out, nil
		},
	})
}

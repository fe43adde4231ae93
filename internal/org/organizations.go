package org

import (
	"context"
	"errors"
	"strings"

	"crewbase.org/internal/uc"
)

type CreateOrganizationInput struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type GetOrganizationInput struct {
	OrganizationID string `json:"organization_id"`
}

type UpdateOrganizationInput struct {
	OrganizationID string         `json:"organization_id"`
	Name           *string        `json:"name,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

type DeleteOrganizationInput struct {
	OrganizationID string `json:"organization_id"`
}

type ListOrganizationsInput struct{}

// NewCreateOrganization builds the CreateOrganization use case. The actor
// becomes the owner; the owning membership row is created in the same unit
// of work as the organization itself.
func NewCreateOrganization(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[CreateOrganizationInput, Organization] {
	return uc.MustRegister(reg, &uc.UseCase[CreateOrganizationInput, Organization]{
		Name:     UseCaseCreateOrganization,
		Adapters: ad,
		Validate: func(ctx context.Context, in CreateOrganizationInput) (CreateOrganizationInput, *uc.Error) {
			name := strings.TrimSpace(in.Name)
			if name == "" {
				return in, uc.Validation("organization name is required", "name", nil)
			}
			in.Name = name
			if in.Metadata == nil {
				in.Metadata = map[string]any{}
			}
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[CreateOrganizationInput, Organization]) (bool, error) {
			if _, err := actorUser(ctx, storesOf(hc.Adapters), hc.Op); err != nil {
				return false, err
			}
			return true, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[CreateOrganizationInput, Organization]) (Organization, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			owner, err := actorUser(ctx, st, hc.Op)
			if err != nil {
				return Organization{}, err
			}

			now := hc.Adapters.Now()
			o := &Organization{
				ID:          hc.Adapters.NewID(),
				Name:        in.Name,
				OwnerUserID: owner.ID,
				Metadata:    in.Metadata,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			ownerID := owner.ID
			m := &Membership{
				ID:             hc.Adapters.NewID(),
				UserID:         &ownerID,
				Username:       owner.Username,
				OrganizationID: o.ID,
				RoleCode:       RoleOwner,
				JoinedAt:       &now,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			err = hc.Adapters.UoW.RunInTx(ctx, func(txCtx context.Context) error {
				if err := st.Organizations.Create(txCtx, o); err != nil {
					return err
				}
				return st.Memberships.Create(txCtx, m)
			})
			if err != nil {
				return Organization{}, err
			}
			return *o, nil
		},
	})
}

// NewGetOrganization builds the GetOrganization use case.
func NewGetOrganization(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[GetOrganizationInput, Organization] {
	return uc.MustRegister(reg, &uc.UseCase[GetOrganizationInput, Organization]{
		Name:     UseCaseGetOrganization,
		Adapters: ad,
		Validate: func(ctx context.Context, in GetOrganizationInput) (GetOrganizationInput, *uc.Error) {
			id, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = id
			return in, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[GetOrganizationInput, Organization]) (Organization, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			o, err := st.Organizations.FindByID(ctx, in.OrganizationID)
			if errors.Is(err, ErrNotFound) {
				return Organization{}, uc.NotFound("Organization", in.OrganizationID)
			}
			if err != nil {
				return Organization{}, err
			}
			return *o, nil
		},
	})
}

// NewUpdateOrganization builds the UpdateOrganization use case. Owners and
// admins may rename; metadata entries merge over existing ones.
func NewUpdateOrganization(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[UpdateOrganizationInput, Organization] {
	return uc.MustRegister(reg, &uc.UseCase[UpdateOrganizationInput, Organization]{
		Name:     UseCaseUpdateOrganization,
		Adapters: ad,
		Validate: func(ctx context.Context, in UpdateOrganizationInput) (UpdateOrganizationInput, *uc.Error) {
			id, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = id
			if in.Name != nil {
				name := strings.TrimSpace(*in.Name)
				if name == "" {
					return in, uc.Validation("organization name is required", "name", nil)
				}
				in.Name = &name
			}
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[UpdateOrganizationInput, Organization]) (bool, error) {
			m, err := actorMembership(ctx, storesOf(hc.Adapters), hc.Steps.ValidatedInput.OrganizationID, hc.Op)
			if err != nil {
				return false, err
			}
			return m != nil && m.RoleCode.CanManageMembers(), nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[UpdateOrganizationInput, Organization]) (Organization, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			o, err := st.Organizations.FindByID(ctx, in.OrganizationID)
			if errors.Is(err, ErrNotFound) {
				return Organization{}, uc.NotFound("Organization", in.OrganizationID)
			}
			if err != nil {
				return Organization{}, err
			}
			if in.Name != nil {
				o.Name = *in.Name
			}
			if len(in.Metadata) > 0 {
				if o.Metadata == nil {
					o.Metadata = map[string]any{}
				}
				for k, v := range in.Metadata {
					o.Metadata[k] = v
				}
			}
			o.UpdatedAt = hc.Adapters.Now()
			if err := st.Organizations.Update(ctx, o); err != nil {
				return Organization{}, err
			}
			return *o, nil
		},
	})
}

// NewDeleteOrganization builds the DeleteOrganization use case. Owner only.
func NewDeleteOrganization(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[DeleteOrganizationInput, Organization] {
	return uc.MustRegister(reg, &uc.UseCase[DeleteOrganizationInput, Organization]{
		Name:     UseCaseDeleteOrganization,
		Adapters: ad,
		Validate: func(ctx context.Context, in DeleteOrganizationInput) (DeleteOrganizationInput, *uc.Error) {
			id, verr := requireID(in.OrganizationID, "organization_id")
			if verr != nil {
				return in, verr
			}
			in.OrganizationID = id
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[DeleteOrganizationInput, Organization]) (bool, error) {
			m, err := actorMembership(ctx, storesOf(hc.Adapters), hc.Steps.ValidatedInput.OrganizationID, hc.Op)
			if err != nil {
				return false, err
			}
			return m != nil && m.RoleCode == RoleOwner, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[DeleteOrganizationInput, Organization]) (Organization, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			o, err := st.Organizations.FindByID(ctx, in.OrganizationID)
			if errors.Is(err, ErrNotFound) {
				return Organization{}, uc.NotFound("Organization", in.OrganizationID)
			}
			if err != nil {
				return Organization{}, err
			}
			if err := st.Organizations.Delete(ctx, o.ID); err != nil {
				return Organization{}, err
			}
			return *o, nil
		},
	})
}

// NewListOrganizations builds the ListOrganizations use case.
func NewListOrganizations(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[ListOrganizationsInput, []Organization] {
	return uc.MustRegister(reg, &uc.UseCase[ListOrganizationsInput, []Organization]{
		Name:     UseCaseListOrganizations,
		Adapters: ad,
		Execute: func(ctx context.Context, hc *uc.HookContext[ListOrganizationsInput, []Organization]) ([]Organization, error) {
			all, err := storesOf(hc.Adapters).Organizations.List(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]Organization, 0, len(all))
			for _, o := range all {
				out = append(out, *o)
			}
			return out, nil
		},
	})
}

package org

import (
	"context"
	"errors"
	"strings"

	"crewbase.org/internal/authn"
	"crewbase.org/internal/uc"
)

const maxUsernameLen = 64

// CreateUserInput registers a new account. ExternalID defaults to a fresh
// identifier; Password is optional and only needed for token issuance.
type CreateUserInput struct {
	Username   string `json:"username"`
	ExternalID string `json:"external_id,omitempty"`
	Password   string `json:"password,omitempty"`
}

type GetUserInput struct {
	PrincipalExternalID string `json:"principal_external_id"`
}

type UpdateUserInput struct {
	UserID   string  `json:"user_id"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

type DeleteUserInput struct {
	UserID string `json:"user_id"`
}

type ListUsersInput struct{}

func validUsername(username string) (string, *uc.Error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", uc.Validation("username is required", "username", nil)
	}
	if len(username) > maxUsernameLen {
		return "", uc.Validation("username is too long", "username", map[string]any{"max": maxUsernameLen})
	}
	return username, nil
}

// NewCreateUser builds the CreateUser use case.
func NewCreateUser(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[CreateUserInput, User] {
	return uc.MustRegister(reg, &uc.UseCase[CreateUserInput, User]{
		Name:     UseCaseCreateUser,
		Adapters: ad,
		Validate: func(ctx context.Context, in CreateUserInput) (CreateUserInput, *uc.Error) {
			username, verr := validUsername(in.Username)
			if verr != nil {
				return in, verr
			}
			in.Username = username
			in.ExternalID = strings.TrimSpace(in.ExternalID)
			return in, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[CreateUserInput, User]) (User, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput

			if _, err := st.Users.FindByUsername(ctx, in.Username); err == nil {
				return User{}, uc.Conflict("User", in.Username)
			} else if !errors.Is(err, ErrNotFound) {
				return User{}, err
			}

			now := hc.Adapters.Now()
			u := &User{
				ID:         hc.Adapters.NewID(),
				ExternalID: in.ExternalID,
				Username:   in.Username,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if u.ExternalID == "" {
				u.ExternalID = hc.Adapters.NewID()
			}
			if in.Password != "" {
				hash, err := authn.HashPassword(in.Password)
				if err != nil {
					return User{}, err
				}
				u.PasswordHash = hash
			}
			if err := st.Users.Create(ctx, u); err != nil {
				if errors.Is(err, ErrConflict) {
					return User{}, uc.Conflict("User", in.Username)
				}
				return User{}, err
			}
			return *u, nil
		},
	})
}

// NewGetUser builds the GetUser use case, keyed by principal external id.
func NewGetUser(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[GetUserInput, User] {
	return uc.MustRegister(reg, &uc.UseCase[GetUserInput, User]{
		Name:     UseCaseGetUser,
		Adapters: ad,
		Validate: func(ctx context.Context, in GetUserInput) (GetUserInput, *uc.Error) {
			id, verr := requireID(in.PrincipalExternalID, "principal_external_id")
			if verr != nil {
				return in, verr
			}
			in.PrincipalExternalID = id
			return in, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[GetUserInput, User]) (User, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			u, err := st.Users.FindByExternalID(ctx, in.PrincipalExternalID)
			if errors.Is(err, ErrNotFound) {
				return User{}, uc.NotFound("User", in.PrincipalExternalID)
			}
			if err != nil {
				return User{}, err
			}
			if u.DeletedAt != nil {
				return User{}, uc.NotFound("User", in.PrincipalExternalID)
			}
			return *u, nil
		},
	})
}

// NewUpdateUser builds the UpdateUser use case. Only the user itself may
// change its account.
func NewUpdateUser(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[UpdateUserInput, User] {
	return uc.MustRegister(reg, &uc.UseCase[UpdateUserInput, User]{
		Name:     UseCaseUpdateUser,
		Adapters: ad,
		Validate: func(ctx context.Context, in UpdateUserInput) (UpdateUserInput, *uc.Error) {
			id, verr := requireID(in.UserID, "user_id")
			if verr != nil {
				return in, verr
			}
			in.UserID = id
			if in.Username != nil {
				username, verr := validUsername(*in.Username)
				if verr != nil {
					return in, verr
				}
				in.Username = &username
			}
			if in.Password != nil && strings.TrimSpace(*in.Password) == "" {
				return in, uc.Validation("password must not be blank", "password", nil)
			}
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[UpdateUserInput, User]) (bool, error) {
			st := storesOf(hc.Adapters)
			actor, err := actorUser(ctx, st, hc.Op)
			if err != nil {
				return false, err
			}
			return actor.ID == hc.Steps.ValidatedInput.UserID, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[UpdateUserInput, User]) (User, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			u, err := st.Users.FindByID(ctx, in.UserID)
			if errors.Is(err, ErrNotFound) {
				return User{}, uc.NotFound("User", in.UserID)
			}
			if err != nil {
				return User{}, err
			}
			if in.Username != nil && *in.Username != u.Username {
				if _, err := st.Users.FindByUsername(ctx, *in.Username); err == nil {
					return User{}, uc.Conflict("User", *in.Username)
				} else if !errors.Is(err, ErrNotFound) {
					return User{}, err
				}
				u.Username = *in.Username
			}
			if in.Password != nil {
				hash, err := authn.HashPassword(*in.Password)
				if err != nil {
					return User{}, err
				}
				u.PasswordHash = hash
			}
			u.UpdatedAt = hc.Adapters.Now()
			if err := st.Users.Update(ctx, u); err != nil {
				return User{}, err
			}
			return *u, nil
		},
	})
}

// NewDeleteUser builds the DeleteUser use case. Soft delete: the row keeps
// its timestamps, DeletedAt marks the account gone.
func NewDeleteUser(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[DeleteUserInput, User] {
	return uc.MustRegister(reg, &uc.UseCase[DeleteUserInput, User]{
		Name:     UseCaseDeleteUser,
		Adapters: ad,
		Validate: func(ctx context.Context, in DeleteUserInput) (DeleteUserInput, *uc.Error) {
			id, verr := requireID(in.UserID, "user_id")
			if verr != nil {
				return in, verr
			}
			in.UserID = id
			return in, nil
		},
		Authorize: func(ctx context.Context, hc *uc.HookContext[DeleteUserInput, User]) (bool, error) {
			st := storesOf(hc.Adapters)
			actor, err := actorUser(ctx, st, hc.Op)
			if err != nil {
				return false, err
			}
			return actor.ID == hc.Steps.ValidatedInput.UserID, nil
		},
		Execute: func(ctx context.Context, hc *uc.HookContext[DeleteUserInput, User]) (User, error) {
			st := storesOf(hc.Adapters)
			in := *hc.Steps.ValidatedInput
			u, err := st.Users.FindByID(ctx, in.UserID)
			if errors.Is(err, ErrNotFound) {
				return User{}, uc.NotFound("User", in.UserID)
			}
			if err != nil {
				return User{}, err
			}
			if u.DeletedAt != nil {
				// Idempotent: deleting a deleted account succeeds unchanged.
				return *u, nil
			}
			now := hc.Adapters.Now()
			u.DeletedAt = &now
			u.UpdatedAt = now
			if err := st.Users.Update(ctx, u); err != nil {
				return User{}, err
			}
			return *u, nil
		},
	})
}

// NewListUsers builds the ListUsers use case. Soft-deleted accounts are
// filtered out.
func NewListUsers(reg *uc.Registry, ad *uc.Adapters) *uc.UseCase[ListUsersInput, []User] {
	return uc.MustRegister(reg, &uc.UseCase[ListUsersInput, []User]{
		Name:     UseCaseListUsers,
		Adapters: ad,
		Execute: func(ctx context.Context, hc *uc.HookContext[ListUsersInput, []User]) ([]User, error) {
			st := storesOf(hc.Adapters)
			all, err := st.Users.List(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]User, 0, len(all))
			for _, u := range all {
				if u.DeletedAt != nil {
					continue
				}
				out = append(out, *u)
			}
			return out, nil
		},
	})
}

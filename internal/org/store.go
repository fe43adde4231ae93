package org

import (
	"context"
	"errors"
)

// Sentinel errors shared by every store implementation. Use cases translate
// them into the typed taxonomy at the pipeline boundary.
var (
	ErrNotFound = errors.New("org: not found")
	ErrConflict = errors.New("org: already exists")
)

// Stores is the repository bundle wired into uc.Adapters.Stores.
type Stores struct {
	Users         UserStore
	Organizations OrganizationStore
	Memberships   MembershipStore
}

// UserStore manages user accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByExternalID(ctx context.Context, externalID string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	List(ctx context.Context) ([]*User, error)
}

// OrganizationStore manages tenants.
type OrganizationStore interface {
	Create(ctx context.Context, o *Organization) error
	FindByID(ctx context.Context, id string) (*Organization, error)
	Update(ctx context.Context, o *Organization) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Organization, error)
}

// MembershipStore manages organization memberships. Find methods that take
// state hints (active/pending) never return terminal rows.
type MembershipStore interface {
	Create(ctx context.Context, m *Membership) error
	FindByID(ctx context.Context, id string) (*Membership, error)
	FindActiveByUser(ctx context.Context, orgID, userID string) (*Membership, error)
	FindPendingByUsername(ctx context.Context, orgID, username string) (*Membership, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*Membership, error)
	Update(ctx context.Context, m *Membership) error
}

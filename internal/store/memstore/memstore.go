// Package memstore is the in-memory store used by tests and local runs
// without Postgres. A coarse transaction lock plus snapshot restore gives
// RunInTx all-or-nothing semantics.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"crewbase.org/internal/org"
)

// Store keeps all rows in process memory. Every read returns a copy so
// callers can mutate results freely before writing them back.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users       map[string]*org.User
	orgs        map[string]*org.Organization
	memberships map[string]*org.Membership
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:       make(map[string]*org.User),
		orgs:        make(map[string]*org.Organization),
		memberships: make(map[string]*org.Membership),
	}
}

// Stores bundles the repositories for uc.Adapters wiring.
func (s *Store) Stores() *org.Stores {
	return &org.Stores{
		Users:         (*userStore)(s),
		Organizations: (*orgStore)(s),
		Memberships:   (*membershipStore)(s),
	}
}

// RunInTx serializes the mutation against all other transactions, snapshots
// the store, runs fn and restores the snapshot when fn fails.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users       map[string]*org.User
	orgs        map[string]*org.Organization
	memberships map[string]*org.Membership
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := snapshot{
		users:       make(map[string]*org.User, len(s.users)),
		orgs:        make(map[string]*org.Organization, len(s.orgs)),
		memberships: make(map[string]*org.Membership, len(s.memberships)),
	}
	for id, u := range s.users {
		snap.users[id] = copyUser(u)
	}
	for id, o := range s.orgs {
		snap.orgs[id] = copyOrganization(o)
	}
	for id, m := range s.memberships {
		snap.memberships[id] = copyMembership(m)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.orgs = snap.orgs
	s.memberships = snap.memberships
}

type userStore Store

func (s *userStore) Create(ctx context.Context, u *org.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return org.ErrConflict
	}
	for _, existing := range s.users {
		if existing.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(existing.Username, u.Username) || existing.ExternalID == u.ExternalID {
			return org.ErrConflict
		}
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *userStore) FindByID(ctx context.Context, id string) (*org.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, org.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *userStore) FindByExternalID(ctx context.Context, externalID string) (*org.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ExternalID == externalID {
			return copyUser(u), nil
		}
	}
	return nil, org.ErrNotFound
}

func (s *userStore) FindByUsername(ctx context.Context, username string) (*org.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Username, username) {
			return copyUser(u), nil
		}
	}
	return nil, org.ErrNotFound
}

func (s *userStore) Update(ctx context.Context, u *org.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return org.ErrNotFound
	}
	s.users[u.ID] = copyUser(u)
	return nil
}

func (s *userStore) List(ctx context.Context) ([]*org.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*org.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	sortByCreated(out, func(u *org.User) (time.Time, string) { return u.CreatedAt, u.ID })
	return out, nil
}

type orgStore Store

func (s *orgStore) Create(ctx context.Context, o *org.Organization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[o.ID]; ok {
		return org.ErrConflict
	}
	s.orgs[o.ID] = copyOrganization(o)
	return nil
}

func (s *orgStore) FindByID(ctx context.Context, id string) (*org.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orgs[id]
	if !ok {
		return nil, org.ErrNotFound
	}
	return copyOrganization(o), nil
}

func (s *orgStore) Update(ctx context.Context, o *org.Organization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[o.ID]; !ok {
		return org.ErrNotFound
	}
	s.orgs[o.ID] = copyOrganization(o)
	return nil
}

func (s *orgStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orgs[id]; !ok {
		return org.ErrNotFound
	}
	delete(s.orgs, id)
	return nil
}

func (s *orgStore) List(ctx context.Context) ([]*org.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*org.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		out = append(out, copyOrganization(o))
	}
	sortByCreated(out, func(o *org.Organization) (time.Time, string) { return o.CreatedAt, o.ID })
	return out, nil
}

type membershipStore Store

func (s *membershipStore) Create(ctx context.Context, m *org.Membership) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[m.ID]; ok {
		return org.ErrConflict
	}
	s.memberships[m.ID] = copyMembership(m)
	return nil
}

func (s *membershipStore) FindByID(ctx context.Context, id string) (*org.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memberships[id]
	if !ok {
		return nil, org.ErrNotFound
	}
	return copyMembership(m), nil
}

func (s *membershipStore) FindActiveByUser(ctx context.Context, orgID, userID string) (*org.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.OrganizationID != orgID || m.UserID == nil || *m.UserID != userID {
			continue
		}
		if m.State() == org.MembershipActive {
			return copyMembership(m), nil
		}
	}
	return nil, org.ErrNotFound
}

func (s *membershipStore) FindPendingByUsername(ctx context.Context, orgID, username string) (*org.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.memberships {
		if m.OrganizationID != orgID || !strings.EqualFold(m.Username, username) {
			continue
		}
		if m.State() == org.MembershipPending {
			return copyMembership(m), nil
		}
	}
	return nil, org.ErrNotFound
}

func (s *membershipStore) ListByOrganization(ctx context.Context, orgID string) ([]*org.Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*org.Membership, 0)
	for _, m := range s.memberships {
		if m.OrganizationID == orgID {
			out = append(out, copyMembership(m))
		}
	}
	sortByCreated(out, func(m *org.Membership) (time.Time, string) { return m.CreatedAt, m.ID })
	return out, nil
}

func (s *membershipStore) Update(ctx context.Context, m *org.Membership) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memberships[m.ID]; !ok {
		return org.ErrNotFound
	}
	s.memberships[m.ID] = copyMembership(m)
	return nil
}

func copyUser(u *org.User) *org.User {
	c := *u
	c.DeletedAt = copyTime(u.DeletedAt)
	return &c
}

func copyOrganization(o *org.Organization) *org.Organization {
	c := *o
	if o.Metadata != nil {
		c.Metadata = make(map[string]any, len(o.Metadata))
		for k, v := range o.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func copyMembership(m *org.Membership) *org.Membership {
	c := *m
	if m.UserID != nil {
		id := *m.UserID
		c.UserID = &id
	}
	c.InvitedAt = copyTime(m.InvitedAt)
	c.JoinedAt = copyTime(m.JoinedAt)
	c.LeftAt = copyTime(m.LeftAt)
	c.DeletedAt = copyTime(m.DeletedAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// sortByCreated orders list output by creation time, falling back to id so
// equal timestamps still produce a stable order.
func sortByCreated[T any](items []*T, key func(*T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		aT, aID := key(items[i])
		bT, bID := key(items[j])
		if !aT.Equal(bT) {
			return aT.Before(bT)
		}
		return aID < bID
	})
}

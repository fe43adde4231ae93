package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"crewbase.org/internal/org"
)

func seedUser(t *testing.T, s *Store, id, externalID, username string) *org.User {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	u := &org.User{ID: id, ExternalID: externalID, Username: username, CreatedAt: now, UpdatedAt: now}
	if err := s.Stores().Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserLookups(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "ext-1", "alice")
	st := s.Stores()

	if _, err := st.Users.FindByID(context.Background(), "u1"); err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if _, err := st.Users.FindByExternalID(context.Background(), "ext-1"); err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if _, err := st.Users.FindByUsername(context.Background(), "ALICE"); err != nil {
		t.Fatalf("FindByUsername should be case-insensitive: %v", err)
	}
	if _, err := st.Users.FindByID(context.Background(), "nope"); !errors.Is(err, org.ErrNotFound) {
		t.Fatalf("missing id: %v", err)
	}
}

func TestUserCreateConflicts(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "ext-1", "alice")
	st := s.Stores()

	dupName := &org.User{ID: "u2", ExternalID: "ext-2", Username: "Alice"}
	if err := st.Users.Create(context.Background(), dupName); !errors.Is(err, org.ErrConflict) {
		t.Fatalf("duplicate username: %v", err)
	}
	dupExt := &org.User{ID: "u3", ExternalID: "ext-1", Username: "bob"}
	if err := st.Users.Create(context.Background(), dupExt); !errors.Is(err, org.ErrConflict) {
		t.Fatalf("duplicate external id: %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "ext-1", "alice")
	st := s.Stores()

	got, err := st.Users.FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got.Username = "mutated"

	fresh, err := st.Users.FindByID(context.Background(), "u1")
	if err != nil || fresh.Username != "alice" {
		t.Fatalf("store row mutated through a read copy: %+v", fresh)
	}
}

func TestMembershipStateFilters(t *testing.T) {
	s := New()
	st := s.Stores()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := "u1"

	pending := &org.Membership{ID: "m1", Username: "carol", OrganizationID: "o1", RoleCode: org.RoleMember, InvitedAt: &now, CreatedAt: now, UpdatedAt: now}
	active := &org.Membership{ID: "m2", UserID: &userID, Username: "alice", OrganizationID: "o1", RoleCode: org.RoleOwner, JoinedAt: &now, CreatedAt: now, UpdatedAt: now}
	if err := st.Memberships.Create(context.Background(), pending); err != nil {
		t.Fatalf("create pending: %v", err)
	}
	if err := st.Memberships.Create(context.Background(), active); err != nil {
		t.Fatalf("create active: %v", err)
	}

	if _, err := st.Memberships.FindActiveByUser(context.Background(), "o1", userID); err != nil {
		t.Fatalf("FindActiveByUser: %v", err)
	}
	if _, err := st.Memberships.FindPendingByUsername(context.Background(), "o1", "Carol"); err != nil {
		t.Fatalf("FindPendingByUsername: %v", err)
	}
	// An active membership never matches the pending lookup.
	if _, err := st.Memberships.FindPendingByUsername(context.Background(), "o1", "alice"); !errors.Is(err, org.ErrNotFound) {
		t.Fatalf("active row matched pending lookup: %v", err)
	}

	ms, err := st.Memberships.ListByOrganization(context.Background(), "o1")
	if err != nil || len(ms) != 2 {
		t.Fatalf("ListByOrganization = %v, err %v", ms, err)
	}
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	s := New()
	seedUser(t, s, "u1", "ext-1", "alice")
	st := s.Stores()

	err := s.RunInTx(context.Background(), func(ctx context.Context) error {
		u, err := st.Users.FindByID(ctx, "u1")
		if err != nil {
			return err
		}
		u.Username = "renamed"
		if err := st.Users.Update(ctx, u); err != nil {
			return err
		}
		if err := st.Users.Create(ctx, &org.User{ID: "u2", ExternalID: "ext-2", Username: "bob"}); err != nil {
			return err
		}
		return errors.New("abort the transaction")
	})
	if err == nil {
		t.Fatalf("expected error")
	}

	u, err := st.Users.FindByID(context.Background(), "u1")
	if err != nil || u.Username != "alice" {
		t.Fatalf("update not rolled back: %+v", u)
	}
	if _, err := st.Users.FindByID(context.Background(), "u2"); !errors.Is(err, org.ErrNotFound) {
		t.Fatalf("create not rolled back: %v", err)
	}
}

func TestRunInTxCommits(t *testing.T) {
	s := New()
	st := s.Stores()
	err := s.RunInTx(context.Background(), func(ctx context.Context) error {
		return st.Users.Create(ctx, &org.User{ID: "u1", ExternalID: "ext-1", Username: "alice"})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if _, err := st.Users.FindByID(context.Background(), "u1"); err != nil {
		t.Fatalf("committed row missing: %v", err)
	}
}

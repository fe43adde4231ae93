package org_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"crewbase.org/internal/org"
	"crewbase.org/internal/store/memstore"
	"crewbase.org/internal/uc"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct{ n int }

func (g *seqIDs) Generate() string {
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}

type env struct {
	reg *uc.Registry
	ad  *uc.Adapters
	mem *memstore.Store
	ucs *org.UseCases
}

func newEnv(t *testing.T) *env {
	t.Helper()
	mem := memstore.New()
	ad := &uc.Adapters{
		UoW:    mem,
		Clock:  fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		UUID:   &seqIDs{},
		Stores: mem.Stores(),
	}
	reg := uc.NewRegistry()
	return &env{reg: reg, ad: ad, mem: mem, ucs: org.NewUseCases(reg, ad)}
}

func asOp(externalID string) uc.Operation {
	return uc.Operation{RequestID: "req-1", ActorID: externalID}
}

// register creates a user and returns it.
func (e *env) register(t *testing.T, username, externalID string) org.User {
	t.Helper()
	result := e.ucs.CreateUser.Run(context.Background(), org.CreateUserInput{
		Username:   username,
		ExternalID: externalID,
		Password:   "s3cret-" + username,
	}, uc.Operation{})
	if !result.IsSuccess() {
		t.Fatalf("create user %s: %v", username, result.Err())
	}
	return result.Value()
}

func TestCreateUser(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "ext-alice")

	if u.Username != "alice" || u.ExternalID != "ext-alice" {
		t.Fatalf("user = %+v", u)
	}
	if !u.UpdatedAt.Equal(u.CreatedAt) {
		t.Fatalf("fresh user must have UpdatedAt == CreatedAt")
	}
	if u.DeletedAt != nil {
		t.Fatalf("fresh user must not be deleted")
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret-alice" {
		t.Fatalf("password was not hashed")
	}
}

func TestCreateUserDefaultsExternalID(t *testing.T) {
	e := newEnv(t)
	result := e.ucs.CreateUser.Run(context.Background(), org.CreateUserInput{Username: "bob"}, uc.Operation{})
	if !result.IsSuccess() {
		t.Fatalf("create: %v", result.Err())
	}
	if result.Value().ExternalID == "" {
		t.Fatalf("external id was not generated")
	}
}

func TestCreateUserValidation(t *testing.T) {
	e := newEnv(t)
	result := e.ucs.CreateUser.Run(context.Background(), org.CreateUserInput{Username: "   "}, uc.Operation{})
	if result.IsSuccess() || result.Err().Code != uc.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %+v", result)
	}
}

func TestCreateUserConflict(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "ext-alice")
	result := e.ucs.CreateUser.Run(context.Background(), org.CreateUserInput{Username: "Alice"}, uc.Operation{})
	if result.IsSuccess() || result.Err().Code != uc.CodeConflict {
		t.Fatalf("expected CONFLICT, got %+v", result)
	}
}

func TestGetUserMissing(t *testing.T) {
	e := newEnv(t)
	result := e.ucs.GetUser.Run(context.Background(), org.GetUserInput{PrincipalExternalID: "missing"}, uc.Operation{})
	if result.IsSuccess() {
		t.Fatalf("expected failure")
	}
	err := result.Err()
	if err.Kind != uc.KindNotFound || err.Code != uc.CodeNotFound {
		t.Fatalf("err = %+v", err)
	}
}

func TestGetUserSkipsDeleted(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "ext-alice")
	del := e.ucs.DeleteUser.Run(context.Background(), org.DeleteUserInput{UserID: u.ID}, asOp("ext-alice"))
	if !del.IsSuccess() {
		t.Fatalf("delete: %v", del.Err())
	}
	result := e.ucs.GetUser.Run(context.Background(), org.GetUserInput{PrincipalExternalID: "ext-alice"}, uc.Operation{})
	if result.IsSuccess() || result.Err().Code != uc.CodeNotFound {
		t.Fatalf("deleted user still readable: %+v", result)
	}
}

func TestUpdateUserRequiresSelf(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "ext-alice")
	e.register(t, "bob", "ext-bob")

	newName := "alice2"
	result := e.ucs.UpdateUser.Run(context.Background(), org.UpdateUserInput{
		UserID:   alice.ID,
		Username: &newName,
	}, asOp("ext-bob"))
	if result.IsSuccess() || result.Err().Kind != uc.KindUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %+v", result)
	}

	result = e.ucs.UpdateUser.Run(context.Background(), org.UpdateUserInput{
		UserID:   alice.ID,
		Username: &newName,
	}, asOp("ext-alice"))
	if !result.IsSuccess() {
		t.Fatalf("self update: %v", result.Err())
	}
	if result.Value().Username != "alice2" {
		t.Fatalf("username = %s", result.Value().Username)
	}
}

func TestDeleteUserIdempotent(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "alice", "ext-alice")
	op := asOp("ext-alice")
	first := e.ucs.DeleteUser.Run(context.Background(), org.DeleteUserInput{UserID: u.ID}, op)
	if !first.IsSuccess() {
		t.Fatalf("first delete: %v", first.Err())
	}
	// A deleted actor cannot act; the second delete fails on authorization,
	// not by corrupting the row.
	second := e.ucs.DeleteUser.Run(context.Background(), org.DeleteUserInput{UserID: u.ID}, op)
	if second.IsSuccess() {
		t.Fatalf("deleted actor could still act")
	}
}

func TestListUsersFiltersDeleted(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "ext-alice")
	bob := e.register(t, "bob", "ext-bob")
	if r := e.ucs.DeleteUser.Run(context.Background(), org.DeleteUserInput{UserID: bob.ID}, asOp("ext-bob")); !r.IsSuccess() {
		t.Fatalf("delete bob: %v", r.Err())
	}

	result := e.ucs.ListUsers.Run(context.Background(), org.ListUsersInput{}, uc.Operation{})
	if !result.IsSuccess() {
		t.Fatalf("list: %v", result.Err())
	}
	users := result.Value()
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("users = %+v", users)
	}
}

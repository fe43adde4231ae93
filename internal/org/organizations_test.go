package org_test

import (
	"context"
	"testing"

	"crewbase.org/internal/org"
	"crewbase.org/internal/uc"
)

func TestGetOrganization(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "ext-alice")
	o := e.createOrg(t, "acme", "ext-alice")

	result := e.ucs.GetOrganization.Run(context.Background(), org.GetOrganizationInput{OrganizationID: o.ID}, uc.Operation{})
	if !result.IsSuccess() || result.Value().Name != "acme" {
		t.Fatalf("get: %+v", result)
	}

	missing := e.ucs.GetOrganization.Run(context.Background(), org.GetOrganizationInput{OrganizationID: "nope"}, uc.Operation{})
	if missing.IsSuccess() || missing.Err().Code != uc.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %+v", missing)
	}
}

func TestUpdateOrganizationMergesMetadata(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "ext-alice")
	o := e.createOrg(t, "acme", "ext-alice")

	first := e.ucs.UpdateOrganization.Run(context.Background(), org.UpdateOrganizationInput{
		OrganizationID: o.ID,
		Metadata:       map[string]any{"tier": "pro", "region": "eu"},
	}, asOp("ext-alice"))
	if !first.IsSuccess() {
		t.Fatalf("update: %v", first.Err())
	}

	newName := "acme gmbh"
	second := e.ucs.UpdateOrganization.Run(context.Background(), org.UpdateOrganizationInput{
		OrganizationID: o.ID,
		Name:           &newName,
		Metadata:       map[string]any{"tier": "enterprise"},
	}, asOp("ext-alice"))
	if !second.IsSuccess() {
		t.Fatalf("update: %v", second.Err())
	}
	got := second.Value()
	if got.Name != "acme gmbh" {
		t.Fatalf("name = %s", got.Name)
	}
	if got.Metadata["tier"] != "enterprise" || got.Metadata["region"] != "eu" {
		t.Fatalf("metadata = %v", got.Metadata)
	}
}

func TestUpdateOrganizationRequiresManager(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "ext-alice")
	e.register(t, "bob", "ext-bob")
	o := e.createOrg(t, "acme", "ext-alice")
	e.addMember(t, o.ID, "ext-alice", "bob", "")

	newName := "hijacked"
	result := e.ucs.UpdateOrganization.Run(context.Background(), org.UpdateOrganizationInput{
		OrganizationID: o.ID, Name: &newName,
	}, asOp("ext-bob"))
	if result.IsSuccess() || result.Err().Kind != uc.KindUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %+v", result)
	}
}

func TestDeleteOrganizationOwnerOnly(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "ext-alice")
	e.register(t, "bob", "ext-bob")
	o := e.createOrg(t, "acme", "ext-alice")
	bobM := e.addMember(t, o.ID, "ext-alice", "bob", "")
	if r := e.ucs.UpdateMemberRole.Run(context.Background(), org.UpdateMemberRoleInput{
		OrganizationID: o.ID, MembershipID: bobM.ID, RoleCode: org.RoleAdmin,
	}, asOp("ext-alice")); !r.IsSuccess() {
		t.Fatalf("promote: %v", r.Err())
	}

	// Admin is not enough.
	denied := e.ucs.DeleteOrganization.Run(context.Background(), org.DeleteOrganizationInput{OrganizationID: o.ID}, asOp("ext-bob"))
	if denied.IsSuccess() || denied.Err().Kind != uc.KindUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %+v", denied)
	}

	ok := e.ucs.DeleteOrganization.Run(context.Background(), org.DeleteOrganizationInput{OrganizationID: o.ID}, asOp("ext-alice"))
	if !ok.IsSuccess() {
		t.Fatalf("owner delete: %v", ok.Err())
	}
	missing := e.ucs.GetOrganization.Run(context.Background(), org.GetOrganizationInput{OrganizationID: o.ID}, uc.Operation{})
	if missing.IsSuccess() {
		t.Fatalf("organization still readable after delete")
	}
}

func TestListOrganizations(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice", "ext-alice")
	e.createOrg(t, "acme", "ext-alice")
	e.createOrg(t, "globex", "ext-alice")

	result := e.ucs.ListOrganizations.Run(context.Background(), org.ListOrganizationsInput{}, uc.Operation{})
	if !result.IsSuccess() || len(result.Value()) != 2 {
		t.Fatalf("list: %+v", result)
	}
}

package httpapi

import (
	"net/http"
	"strings"

	"crewbase.org/internal/org"
)

func (a *API) handleOrganizationsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createOrganization(w, r)
	case http.MethodGet:
		op := a.operationFrom(r, org.UseCaseListOrganizations, "")
		respond(w, r, http.StatusOK, a.ucs.ListOrganizations.Run(r.Context(), org.ListOrganizationsInput{}, op))
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleOrganizationResource routes everything under /v1/organizations/{id}:
// the organization itself, its member collection, single memberships and the
// invitation/leave/ownership verbs.
func (a *API) handleOrganizationResource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/organizations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	orgID := parts[0]

	switch {
	case len(parts) == 1:
		a.organizationResource(w, r, orgID)
	case len(parts) == 2 && parts[1] == "members":
		a.membersCollection(w, r, orgID)
	case len(parts) == 3 && parts[1] == "members":
		a.memberResource(w, r, orgID, parts[2])
	case len(parts) == 3 && parts[1] == "invitations" && parts[2] == "accept":
		a.acceptInvitation(w, r, orgID)
	case len(parts) == 2 && parts[1] == "leave":
		a.leaveOrganization(w, r, orgID)
	case len(parts) == 2 && parts[1] == "transfer-ownership":
		a.transferOwnership(w, r, orgID)
	default:
		http.NotFound(w, r)
	}
}

func (a *API) organizationResource(w http.ResponseWriter, r *http.Request, orgID string) {
	switch r.Method {
	case http.MethodGet:
		op := a.operationFrom(r, org.UseCaseGetOrganization, orgID)
		in := org.GetOrganizationInput{OrganizationID: orgID}
		respond(w, r, http.StatusOK, a.ucs.GetOrganization.Run(r.Context(), in, op))
	case http.MethodPatch:
		var in org.UpdateOrganizationInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeValidationError(w, r, err.Error())
			return
		}
		in.OrganizationID = orgID
		op := a.operationFrom(r, org.UseCaseUpdateOrganization, orgID)
		respond(w, r, http.StatusOK, a.ucs.UpdateOrganization.Run(r.Context(), in, op))
	case http.MethodDelete:
		op := a.operationFrom(r, org.UseCaseDeleteOrganization, orgID)
		in := org.DeleteOrganizationInput{OrganizationID: orgID}
		respond(w, r, http.StatusOK, a.ucs.DeleteOrganization.Run(r.Context(), in, op))
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) createOrganization(w http.ResponseWriter, r *http.Request) {
	var in org.CreateOrganizationInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeValidationError(w, r, err.Error())
		return
	}
	op := a.operationFrom(r, org.UseCaseCreateOrganization, "")
	respond(w, r, http.StatusCreated, a.ucs.CreateOrganization.Run(r.Context(), in, op))
}

func (a *API) membersCollection(w http.ResponseWriter, r *http.Request, orgID string) {
	switch r.Method {
	case http.MethodPost:
		var in org.AddMemberInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeValidationError(w, r, err.Error())
			return
		}
		in.OrganizationID = orgID
		op := a.operationFrom(r, org.UseCaseAddMember, orgID)
		respond(w, r, http.StatusCreated, a.ucs.AddMember.Run(r.Context(), in, op))
	case http.MethodGet:
		op := a.operationFrom(r, org.UseCaseListMembers, orgID)
		in := org.ListMembersInput{OrganizationID: orgID}
		respond(w, r, http.StatusOK, a.ucs.ListMembers.Run(r.Context(), in, op))
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) memberResource(w http.ResponseWriter, r *http.Request, orgID, membershipID string) {
	switch r.Method {
	case http.MethodPatch:
		var in org.UpdateMemberRoleInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeValidationError(w, r, err.Error())
			return
		}
		in.OrganizationID = orgID
		in.MembershipID = membershipID
		op := a.operationFrom(r, org.UseCaseUpdateMemberRole, orgID)
		respond(w, r, http.StatusOK, a.ucs.UpdateMemberRole.Run(r.Context(), in, op))
	case http.MethodDelete:
		op := a.operationFrom(r, org.UseCaseRemoveMember, orgID)
		in := org.RemoveMemberInput{OrganizationID: orgID, MembershipID: membershipID}
		respond(w, r, http.StatusOK, a.ucs.RemoveMember.Run(r.Context(), in, op))
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) acceptInvitation(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	op := a.operationFrom(r, org.UseCaseAcceptInvitation, orgID)
	in := org.AcceptInvitationInput{OrganizationID: orgID}
	respond(w, r, http.StatusOK, a.ucs.AcceptInvitation.Run(r.Context(), in, op))
}

func (a *API) leaveOrganization(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	op := a.operationFrom(r, org.UseCaseLeaveOrganization, orgID)
	in := org.LeaveOrganizationInput{OrganizationID: orgID}
	respond(w, r, http.StatusOK, a.ucs.LeaveOrganization.Run(r.Context(), in, op))
}

func (a *API) transferOwnership(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var in org.TransferOwnershipInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeValidationError(w, r, err.Error())
		return
	}
	in.OrganizationID = orgID
	op := a.operationFrom(r, org.UseCaseTransferOwnership, orgID)
	respond(w, r, http.StatusOK, a.ucs.TransferOwnership.Run(r.Context(), in, op))
}

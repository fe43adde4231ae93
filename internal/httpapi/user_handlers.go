package httpapi

import (
	"net/http"
	"strings"

	"crewbase.org/internal/org"
)

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.createUser(w, r)
	case http.MethodGet:
		a.listUsers(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleUserResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPatch:
		a.updateUser(w, r, id)
	case http.MethodDelete:
		a.deleteUser(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
	}
}

// handleMe returns the account behind the authenticated principal.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	op := a.operationFrom(r, org.UseCaseGetUser, "")
	in := org.GetUserInput{PrincipalExternalID: op.ActorID}
	respond(w, r, http.StatusOK, a.ucs.GetUser.Run(r.Context(), in, op))
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var in org.CreateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeValidationError(w, r, err.Error())
		return
	}
	op := a.operationFrom(r, org.UseCaseCreateUser, "")
	respond(w, r, http.StatusCreated, a.ucs.CreateUser.Run(r.Context(), in, op))
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	op := a.operationFrom(r, org.UseCaseListUsers, "")
	respond(w, r, http.StatusOK, a.ucs.ListUsers.Run(r.Context(), org.ListUsersInput{}, op))
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	var in org.UpdateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeValidationError(w, r, err.Error())
		return
	}
	in.UserID = id
	op := a.operationFrom(r, org.UseCaseUpdateUser, "")
	respond(w, r, http.StatusOK, a.ucs.UpdateUser.Run(r.Context(), in, op))
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request, id string) {
	op := a.operationFrom(r, org.UseCaseDeleteUser, "")
	in := org.DeleteUserInput{UserID: id}
	respond(w, r, http.StatusOK, a.ucs.DeleteUser.Run(r.Context(), in, op))
}

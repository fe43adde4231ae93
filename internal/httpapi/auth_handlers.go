package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"crewbase.org/internal/authn"
	"crewbase.org/internal/org"
)

const tokenTTL = 12 * time.Hour

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// handleToken exchanges username/password credentials for a bearer token.
// Bad credentials and unknown accounts are indistinguishable on the wire.
func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !authn.Enabled() {
		writeGenericError(w, r, errors.New("token auth is not configured"))
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeValidationError(w, r, err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeValidationError(w, r, "username and password are required")
		return
	}

	u, err := a.stores.Users.FindByUsername(r.Context(), req.Username)
	if errors.Is(err, org.ErrNotFound) {
		writeAuthError(w, r, "invalid credentials")
		return
	}
	if err != nil {
		writeGenericError(w, r, err)
		return
	}
	if err := authn.VerifyPassword(u.PasswordHash, req.Password); err != nil {
		writeAuthError(w, r, "invalid credentials")
		return
	}

	token, err := authn.GenerateToken(u.ExternalID, u.Username, tokenTTL)
	if err != nil {
		writeGenericError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(tokenTTL.Seconds()),
	})
}

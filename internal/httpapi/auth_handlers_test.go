package httpapi

import (
	"net/http"
	"testing"

	"crewbase.org/internal/authn"
)

func TestTokenEndpoint(t *testing.T) {
	t.Setenv("CREWBASE_AUTH_SECRET", "token-test-secret")
	authn.ResetSecretCache()
	t.Cleanup(authn.ResetSecretCache)

	srv := newTestServer(t)
	registerUser(t, srv, "alice", "ext-alice")

	resp, raw := doJSON(t, srv, http.MethodPost, "/v1/auth/token", "", map[string]string{
		"username": "alice",
		"password": "pw-alice",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("token: %d %s", resp.StatusCode, raw)
	}
	var tok tokenResponse
	decodeInto(t, raw, &tok)
	if tok.AccessToken == "" || tok.TokenType != "Bearer" {
		t.Fatalf("token response = %+v", tok)
	}

	claims, err := authn.VerifyToken(tok.AccessToken)
	if err != nil || claims.Subject != "ext-alice" {
		t.Fatalf("claims = %+v, err %v", claims, err)
	}
}

func TestTokenEndpointRejectsBadCredentials(t *testing.T) {
	t.Setenv("CREWBASE_AUTH_SECRET", "token-test-secret")
	authn.ResetSecretCache()
	t.Cleanup(authn.ResetSecretCache)

	srv := newTestServer(t)
	registerUser(t, srv, "alice", "ext-alice")

	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrong"},
		{"username": "nobody", "password": "pw-alice"},
	} {
		resp, raw := doJSON(t, srv, http.MethodPost, "/v1/auth/token", "", creds)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("creds %v: %d %s", creds, resp.StatusCode, raw)
		}
	}
}

package httpapi

import (
	"net/http"
	"testing"
	"time"

	"crewbase.org/internal/authn"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc123", "abc123", true},
		{"bearer abc123", "abc123", true},
		{"  Bearer   abc123  ", "abc123", true},
		{"", "", false},
		{"Basic abc123", "", false},
		{"Bearer ", "", false},
	}
	for _, tc := range cases {
		got, err := extractBearerToken(tc.header)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("%q: got %q, err %v", tc.header, got, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%q: expected error", tc.header)
		}
	}
}

func TestIsPublicPath(t *testing.T) {
	if !isPublicPath(http.MethodGet, "/healthz") {
		t.Errorf("/healthz should be public")
	}
	if !isPublicPath(http.MethodPost, "/v1/users") {
		t.Errorf("registration should be public")
	}
	if isPublicPath(http.MethodGet, "/v1/users") {
		t.Errorf("user listing should need auth")
	}
	if isPublicPath(http.MethodGet, "/v1/organizations") {
		t.Errorf("organizations should need auth")
	}
}

func TestWithAuthEnforcesBearer(t *testing.T) {
	t.Setenv("CREWBASE_AUTH_SECRET", "handler-test-secret")
	authn.ResetSecretCache()
	t.Cleanup(authn.ResetSecretCache)

	srv := newTestServer(t)
	registerUser(t, srv, "alice", "ext-alice")

	// No token: rejected before any handler runs.
	resp, raw := doJSON(t, srv, http.MethodGet, "/v1/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d body %s", resp.StatusCode, raw)
	}

	token, err := authn.GenerateToken("ext-alice", "alice", time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/me", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set(authHeader, bearer+token)
	got, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK {
		t.Fatalf("authenticated request: %d", got.StatusCode)
	}
}

func TestWithAuthRejectsBadToken(t *testing.T) {
	t.Setenv("CREWBASE_AUTH_SECRET", "handler-test-secret")
	authn.ResetSecretCache()
	t.Cleanup(authn.ResetSecretCache)

	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/me", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set(authHeader, bearer+"forged.token.value")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

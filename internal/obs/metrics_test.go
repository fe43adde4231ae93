package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                              "/",
		"/metrics":                      "/metrics",
		"/v1/users/abc":                 "/v1/users/:id",
		"/v1/users/abc?fields=id":       "/v1/users/:id",
		"/v1/organizations/o1":          "/v1/organizations/:id",
		"/v1/organizations/o1/members":  "/v1/organizations/:id/members",
		"/v1/organizations/o1/members/m1": "/v1/organizations/:id/members/:id",
		"/v1/organizations":             "/v1/organizations",
		"/v1/auth/token":                "/v1/auth/token",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}

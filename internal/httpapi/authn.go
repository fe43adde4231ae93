package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"crewbase.org/internal/authn"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/token",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

func (a *API) withAuth(next http.Handler) http.Handler {
	if !authn.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeAuthError(w, r, err.Error())
			return
		}
		claims, err := authn.VerifyToken(token)
		if err != nil {
			writeAuthError(w, r, "invalid token")
			return
		}

		ctx := authn.ContextWithPrincipal(r.Context(), authn.Principal{
			ExternalID: claims.Subject,
			Username:   claims.Username,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAuthError(w http.ResponseWriter, r *http.Request, message string) {
	status, envelope := toHTTPError(unauthenticated(message), requestIDFrom(r.Context()))
	writeJSON(w, status, envelope)
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// isPublicPath exempts probe, metrics and sign-up style endpoints from
// bearer authentication.
func isPublicPath(method, path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	// Open registration.
	if method == http.MethodPost && path == "/v1/users" {
		return true
	}
	return false
}

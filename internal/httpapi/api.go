package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"crewbase.org/internal/authn"
	"crewbase.org/internal/obs"
	"crewbase.org/internal/org"
	"crewbase.org/internal/uc"
)

// ReadyProbe checks readiness (for example a DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the use-case catalogue.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	ucs        *org.UseCases
	stores     *org.Stores
}

func New(ucs *org.UseCases, stores *org.Stores, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		ucs:        ucs,
		stores:     stores,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/token", a.handleToken)
	a.mux.HandleFunc("/v1/me", a.handleMe)
	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)
	a.mux.HandleFunc("/v1/organizations", a.handleOrganizationsCollection)
	a.mux.HandleFunc("/v1/organizations/", a.handleOrganizationResource)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the wired http.Handler: metrics instrumentation outermost,
// then request tagging, hardening and authentication.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "crewbase-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "crewbase-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// operationFrom assembles the per-request operation context handed to every
// use-case run. The actor is the authenticated principal; the fallback header
// only matters when token auth is not configured.
func (a *API) operationFrom(r *http.Request, auditAction, orgID string) uc.Operation {
	actorID := ""
	if principal, ok := authn.PrincipalFromContext(r.Context()); ok {
		actorID = principal.ExternalID
	} else if !authn.Enabled() {
		actorID = strings.TrimSpace(r.Header.Get("X-Actor-Id"))
	}
	return uc.Operation{
		RequestID:      requestIDFrom(r.Context()),
		ActorID:        actorID,
		OrganizationID: orgID,
		AuditAction:    auditAction,
		Metadata: uc.Metadata{
			Source:    "http",
			IPAddress: clientIP(r),
			UserAgent: r.UserAgent(),
		},
	}
}

// respond translates a Result into the wire response.
func respond[T any](w http.ResponseWriter, r *http.Request, status int, result uc.Result[T]) {
	if !result.IsSuccess() {
		writeDomainError(w, r, result.Err())
		return
	}
	writeJSON(w, status, result.Value())
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return errors.New("invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeJSON(w, http.StatusMethodNotAllowed, errorEnvelope{Error: errorBody{
		Code:      "METHOD_NOT_ALLOWED",
		Message:   "method " + r.Method + " is not allowed",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RequestID: requestIDFrom(r.Context()),
	}})
}

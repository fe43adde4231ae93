package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"crewbase.org/internal/uc"
)

func TestHTTPStatusTable(t *testing.T) {
	cases := []struct {
		err    *uc.Error
		status int
		code   string
	}{
		{uc.Validation("bad", "f", nil), http.StatusBadRequest, "VALIDATION_ERROR"},
		{uc.Unauthorized("DeleteUser", ""), http.StatusUnauthorized, "UNAUTHORIZED"},
		{uc.NotFound("User", "u1"), http.StatusNotFound, "NOT_FOUND"},
		{uc.Conflict("User", "alice"), http.StatusConflict, "CONFLICT"},
		{uc.BusinessRule("owner cannot leave", nil), http.StatusUnprocessableEntity, "BUSINESS_RULE_VIOLATION"},
		{uc.Infrastructure("db down", nil), http.StatusInternalServerError, "INFRASTRUCTURE_ERROR"},
		{uc.Aborted("stop"), http.StatusInternalServerError, "ABORTED"},
	}
	for _, tc := range cases {
		status, envelope := toHTTPError(tc.err, "req-1")
		if status != tc.status {
			t.Errorf("%s: status = %d, want %d", tc.code, status, tc.status)
		}
		if envelope.Error.Code != tc.code {
			t.Errorf("code = %s, want %s", envelope.Error.Code, tc.code)
		}
		if envelope.Error.RequestID != "req-1" {
			t.Errorf("%s: request id missing", tc.code)
		}
		if envelope.Error.Timestamp == "" {
			t.Errorf("%s: timestamp missing", tc.code)
		}
	}
}

func TestGenericErrorEnvelope(t *testing.T) {
	status, envelope := genericHTTPError(errors.New("socket closed"), "req-9")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d", status)
	}
	if envelope.Error.Code != "INTERNAL_SERVER_ERROR" {
		t.Fatalf("code = %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("message leaked: %q", envelope.Error.Message)
	}
	if envelope.Error.Details["original_message"] != "socket closed" {
		t.Fatalf("details = %v", envelope.Error.Details)
	}
}

func TestValidationDetailsSurvive(t *testing.T) {
	err := uc.Validation("too long", "username", map[string]any{"max": 64})
	_, envelope := toHTTPError(err, "")
	if envelope.Error.Details["field"] != "username" || envelope.Error.Details["max"] != 64 {
		t.Fatalf("details = %v", envelope.Error.Details)
	}
}

package httpapi

import (
	"net/http"
	"time"

	"crewbase.org/internal/uc"
)

// codeInternal is what a non-domain error surfaces as on the wire. Domain
// infrastructure failures keep their own code.
const codeInternal = "INTERNAL_SERVER_ERROR"

type errorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
	RequestID string         `json:"request_id,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// httpStatus maps the closed failure taxonomy onto HTTP status codes. Every
// kind outside the expected set falls through to 500.
func httpStatus(kind uc.Kind) int {
	switch kind {
	case uc.KindValidation:
		return http.StatusBadRequest
	case uc.KindUnauthorized:
		return http.StatusUnauthorized
	case uc.KindNotFound:
		return http.StatusNotFound
	case uc.KindConflict:
		return http.StatusConflict
	case uc.KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// toHTTPError builds the wire envelope for a domain error.
func toHTTPError(err *uc.Error, requestID string) (int, errorEnvelope) {
	return httpStatus(err.Kind), errorEnvelope{Error: errorBody{
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RequestID: requestID,
	}}
}

// genericHTTPError builds the envelope for a failure that never passed
// through the taxonomy. The original message survives only inside details.
func genericHTTPError(err error, requestID string) (int, errorEnvelope) {
	return http.StatusInternalServerError, errorEnvelope{Error: errorBody{
		Code:      codeInternal,
		Message:   "internal server error",
		Details:   map[string]any{"original_message": err.Error()},
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RequestID: requestID,
	}}
}

// writeDomainError writes the mapped envelope for a failed Result.
func writeDomainError(w http.ResponseWriter, r *http.Request, err *uc.Error) {
	status, envelope := toHTTPError(err, requestIDFrom(r.Context()))
	writeJSON(w, status, envelope)
}

// writeGenericError writes the fallback envelope for a raw error.
func writeGenericError(w http.ResponseWriter, r *http.Request, err error) {
	status, envelope := genericHTTPError(err, requestIDFrom(r.Context()))
	writeJSON(w, status, envelope)
}

// writeValidationError reports a transport-level input problem (body too
// large, malformed JSON) in the same envelope as domain validation failures.
func writeValidationError(w http.ResponseWriter, r *http.Request, message string) {
	writeDomainError(w, r, uc.Validation(message, "", nil))
}

// unauthenticated is a transport-level 401 with a verbatim message.
func unauthenticated(message string) *uc.Error {
	return &uc.Error{Kind: uc.KindUnauthorized, Code: uc.CodeUnauthorized, Message: message}
}

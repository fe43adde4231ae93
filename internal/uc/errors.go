package uc

import (
	"errors"
	"fmt"
)

// Kind classifies an expected business failure. The set is closed: every
// failure a use case can legitimately return maps to exactly one kind.
type Kind string

const (
	KindNotFound       Kind = "NotFound"
	KindValidation     Kind = "Validation"
	KindConflict       Kind = "Conflict"
	KindUnauthorized   Kind = "Unauthorized"
	KindBusinessRule   Kind = "BusinessRule"
	KindInfrastructure Kind = "Infrastructure"
	KindAborted        Kind = "Aborted"
)

// Machine-stable error codes. The HTTP error mapper switches on these,
// never on the display message.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeConflict       = "CONFLICT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeBusinessRule   = "BUSINESS_RULE_VIOLATION"
	CodeInfrastructure = "INFRASTRUCTURE_ERROR"
	CodeAborted        = "ABORTED"
)

// Error is the single error type crossing use-case boundaries.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Detail returns a copy of e with an extra details entry set.
func (e *Error) Detail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	clone := *e
	clone.Details = details
	return &clone
}

// NotFound reports a missing resource.
func NotFound(resource, identifier string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with identifier %s not found", resource, identifier),
		Details: map[string]any{"resource": resource, "identifier": identifier},
	}
}

// Validation reports malformed or rejected input. field may be empty when the
// failure is not attributable to a single field.
func Validation(message, field string, details map[string]any) *Error {
	d := make(map[string]any, len(details)+1)
	for k, v := range details {
		d[k] = v
	}
	if field != "" {
		d["field"] = field
	}
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message, Details: d}
}

// Conflict reports a uniqueness or state collision on a resource.
func Conflict(resource, identifier string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    CodeConflict,
		Message: fmt.Sprintf("%s with identifier %s already exists", resource, identifier),
		Details: map[string]any{"resource": resource, "identifier": identifier},
	}
}

// Unauthorized reports a denied action. resource may be empty.
func Unauthorized(action, resource string) *Error {
	details := map[string]any{"action": action}
	if resource != "" {
		details["resource"] = resource
	}
	return &Error{
		Kind:    KindUnauthorized,
		Code:    CodeUnauthorized,
		Message: fmt.Sprintf("not authorized to %s", action),
		Details: details,
	}
}

// BusinessRule reports a violated domain rule on otherwise valid input.
func BusinessRule(message string, details map[string]any) *Error {
	d := make(map[string]any, len(details))
	for k, v := range details {
		d[k] = v
	}
	return &Error{Kind: KindBusinessRule, Code: CodeBusinessRule, Message: message, Details: d}
}

// Infrastructure reports an unexpected failure in an adapter or dependency.
func Infrastructure(message string, details map[string]any) *Error {
	d := make(map[string]any, len(details))
	for k, v := range details {
		d[k] = v
	}
	return &Error{Kind: KindInfrastructure, Code: CodeInfrastructure, Message: message, Details: d}
}

// Aborted reports a cooperative mid-pipeline cancellation. Distinct from
// every failure kind: an abort is not an error in the business sense.
func Aborted(reason string) *Error {
	return &Error{
		Kind:    KindAborted,
		Code:    CodeAborted,
		Message: fmt.Sprintf("operation aborted: %s", reason),
		Details: map[string]any{"reason": reason},
	}
}

// AsError extracts a typed *Error from an arbitrary error chain. When err is
// not a domain error it is wrapped as Infrastructure, preserving the original
// message under details.original_message.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return Infrastructure(err.Error(), map[string]any{"original_message": err.Error()})
}

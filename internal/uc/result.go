package uc

import "fmt"

// Result is the two-variant outcome of a use case: a success value or a
// domain error, never both, never neither. There is no partial success.
type Result[T any] struct {
	value T
	err   *Error
	ok    bool
}

// OK wraps a success value.
func OK[T any](value T) Result[T] {
	return Result[T]{value: value, ok: true}
}

// Fail wraps a domain error. A nil error is a programming bug and panics.
func Fail[T any](err *Error) Result[T] {
	if err == nil {
		panic("uc: Fail called with nil error")
	}
	return Result[T]{err: err}
}

// IsSuccess reports which variant is populated. It is the single source of
// truth for branching on a Result.
func (r Result[T]) IsSuccess() bool { return r.ok }

// Value returns the success value. Calling it on a failure is a programming
// error and panics; it never silently returns a zero value.
func (r Result[T]) Value() T {
	if !r.ok {
		panic(fmt.Sprintf("uc: Value called on failed result (%s)", r.err.Code))
	}
	return r.value
}

// Err returns the failure. Calling it on a success is a programming error
// and panics.
func (r Result[T]) Err() *Error {
	if r.ok {
		panic("uc: Err called on successful result")
	}
	return r.err
}

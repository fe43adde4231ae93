package uc

import "context"

// StepResults accumulates the immutable output of each completed stage.
// Fields only ever transition from nil to set; a populated field is never
// rewritten by a later stage.
type StepResults[I, O any] struct {
	ValidatedInput *I
	Authorized     *bool
	Output         *O
}

// HookContext is the envelope handed to every hook of one pipeline run.
// Input, Steps and Op are read-only; Shared is the only hook-to-hook
// communication channel and lives exactly as long as the run. Adapters is the
// shared infrastructure bundle and must only be written through in the
// execute stage.
type HookContext[I, O any] struct {
	ExecutionID string
	UseCaseName string
	Input       I
	Steps       StepResults[I, O]
	Shared      map[string]any
	Adapters    *Adapters
	Op          Operation

	aborted     bool
	abortReason string
}

// Abort requests cooperative termination of the run. It does not unwind the
// calling hook: the hook must return promptly after calling it. The pipeline
// checks the flag after every hook and routes to the aborted terminal path.
func (hc *HookContext[I, O]) Abort(reason string) {
	if hc.aborted {
		return
	}
	hc.aborted = true
	hc.abortReason = reason
}

// Aborted reports whether Abort has been called during this run.
func (hc *HookContext[I, O]) Aborted() (string, bool) {
	return hc.abortReason, hc.aborted
}

// Hook is an extension point around a pipeline stage. A non-nil returned
// error routes the run to the errored terminal path.
type Hook[I, O any] func(ctx context.Context, hc *HookContext[I, O]) error

// ErrorHook observes the error that terminated the run. A non-nil returned
// error replaces the original in the final Result.
type ErrorHook[I, O any] func(ctx context.Context, hc *HookContext[I, O], cause error) error

// AbortHook observes a cooperative abort. Errors it returns are logged and
// swallowed; they never change the aborted outcome.
type AbortHook[I, O any] func(ctx context.Context, hc *HookContext[I, O], reason string) error

// FinallyHook runs exactly once per invocation with the finished Result.
// Errors it returns are logged and swallowed.
type FinallyHook[I, O any] func(ctx context.Context, hc *HookContext[I, O], result Result[O]) error

// Hooks is the optional per-use-case extension set. Any field may be nil.
// AfterExecution failures are treated like any other stage failure; hooks
// performing best-effort side effects (notifications etc.) must catch
// internally and return nil.
type Hooks[I, O any] struct {
	OnStart         Hook[I, O]
	AfterValidation Hook[I, O]
	BeforeExecution Hook[I, O]
	AfterExecution  Hook[I, O]
	OnError         ErrorHook[I, O]
	OnAbort         AbortHook[I, O]
	OnFinally       FinallyHook[I, O]
}

package uc

import (
	"context"
	"fmt"
	"time"

	"crewbase.org/internal/ids"
	"crewbase.org/internal/obs"
)

// Stage names as they appear in hook logs and metrics.
const (
	stageOnStart         = "onStart"
	stageValidate        = "validateInput"
	stageAfterValidation = "afterValidation"
	stageAuthorize       = "authorize"
	stageBeforeExecution = "beforeExecution"
	stageExecute         = "executeBusinessLogic"
	stageAfterExecution  = "afterExecution"
	stageOnError         = "onError"
	stageOnAbort         = "onAbort"
	stageOnFinally       = "onFinally"
)

// UseCase executes one business operation through a fixed stage sequence:
// onStart, validate, afterValidation, authorize, beforeExecution, execute,
// afterExecution, then exactly one of the error/abort terminals, then
// onFinally. Run never panics and never returns a raw error; every outcome is
// a Result.
//
// Validate returns the parsed input or a domain error. Authorize returns
// whether the actor may proceed; false yields an Unauthorized failure.
// Execute is the only stage that may perform writes through the adapters.
type UseCase[I, O any] struct {
	Name      string
	Adapters  *Adapters
	Validate  func(ctx context.Context, input I) (I, *Error)
	Authorize func(ctx context.Context, hc *HookContext[I, O]) (bool, error)
	Execute   func(ctx context.Context, hc *HookContext[I, O]) (O, error)
	Hooks     Hooks[I, O]
}

// Run executes the pipeline for one input under one operation context.
// Concurrent calls are independent; all cross-call state lives in Adapters.
func (u *UseCase[I, O]) Run(ctx context.Context, input I, op Operation) Result[O] {
	start := time.Now()
	hc := &HookContext[I, O]{
		ExecutionID: ids.New(),
		UseCaseName: u.Name,
		Input:       input,
		Shared:      make(map[string]any),
		Adapters:    u.Adapters,
		Op:          op,
	}

	result := u.advance(ctx, hc)

	u.finally(ctx, hc, result)
	outcome := "success"
	if !result.IsSuccess() {
		outcome = "error"
		if result.err.Kind == KindAborted {
			outcome = "aborted"
		}
	}
	obs.ObserveUseCase(u.Name, outcome, time.Since(start))
	return result
}

// advance walks stages 1-7 and resolves the terminal path. Exactly one of
// the onError / onAbort terminals fires for any run that does not succeed.
func (u *UseCase[I, O]) advance(ctx context.Context, hc *HookContext[I, O]) Result[O] {
	// Stage 1: onStart, ahead of schema validation.
	if err := u.runHook(ctx, hc, stageOnStart, u.Hooks.OnStart); err != nil {
		return u.errored(ctx, hc, err)
	}
	if reason, ok := hc.Aborted(); ok {
		return u.aborted(ctx, hc, reason)
	}

	// Stage 2: validate. On failure afterValidation never runs.
	validated := hc.Input
	if u.Validate != nil {
		var verr *Error
		var panicked error
		validated, verr, panicked = u.validate(ctx, hc.Input)
		if panicked != nil {
			return u.errored(ctx, hc, panicked)
		}
		if verr != nil {
			return u.errored(ctx, hc, verr)
		}
	}
	hc.Steps.ValidatedInput = &validated

	// Stage 3.
	if err := u.runHook(ctx, hc, stageAfterValidation, u.Hooks.AfterValidation); err != nil {
		return u.errored(ctx, hc, err)
	}
	if reason, ok := hc.Aborted(); ok {
		return u.aborted(ctx, hc, reason)
	}

	// Stage 4: authorize. A denial is an expected failure, not a throw.
	allowed, err := u.authorize(ctx, hc)
	if err != nil {
		return u.errored(ctx, hc, err)
	}
	hc.Steps.Authorized = &allowed
	if !allowed {
		return u.errored(ctx, hc, Unauthorized(u.Name, ""))
	}

	// Stage 5.
	if err := u.runHook(ctx, hc, stageBeforeExecution, u.Hooks.BeforeExecution); err != nil {
		return u.errored(ctx, hc, err)
	}
	if reason, ok := hc.Aborted(); ok {
		return u.aborted(ctx, hc, reason)
	}

	// Stage 6: the business mutation.
	output, err := u.execute(ctx, hc)
	if err != nil {
		return u.errored(ctx, hc, err)
	}
	hc.Steps.Output = &output
	if reason, ok := hc.Aborted(); ok {
		return u.aborted(ctx, hc, reason)
	}

	// Stage 7: side-effect hooks. An uncaught failure here is fatal; hooks
	// doing best-effort work must swallow their own errors.
	if err := u.runHook(ctx, hc, stageAfterExecution, u.Hooks.AfterExecution); err != nil {
		return u.errored(ctx, hc, err)
	}
	if reason, ok := hc.Aborted(); ok {
		return u.aborted(ctx, hc, reason)
	}

	return OK(output)
}

func (u *UseCase[I, O]) validate(ctx context.Context, input I) (out I, verr *Error, panicked error) {
	defer func() {
		if p := recover(); p != nil {
			panicked = panicError(u.Name, stageValidate, p)
		}
	}()
	out, verr = u.Validate(ctx, input)
	return out, verr, nil
}

func (u *UseCase[I, O]) authorize(ctx context.Context, hc *HookContext[I, O]) (allowed bool, err error) {
	if u.Authorize == nil {
		return true, nil
	}
	defer func() {
		if p := recover(); p != nil {
			allowed = false
			err = panicError(u.Name, stageAuthorize, p)
		}
	}()
	return u.Authorize(ctx, hc)
}

func (u *UseCase[I, O]) execute(ctx context.Context, hc *HookContext[I, O]) (out O, err error) {
	started := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = panicError(u.Name, stageExecute, p)
		}
		u.logHook(hc, stageExecute, time.Since(started), err)
	}()
	if u.Execute == nil {
		return out, Infrastructure(fmt.Sprintf("use case %s has no execute stage", u.Name), nil)
	}
	return u.Execute(ctx, hc)
}

// errored resolves the failed terminal path. An error returned by the onError
// hook replaces the original cause in the final Result.
func (u *UseCase[I, O]) errored(ctx context.Context, hc *HookContext[I, O], cause error) Result[O] {
	final := cause
	if u.Hooks.OnError != nil {
		if err := u.runTerminal(hc, stageOnError, func() error {
			return u.Hooks.OnError(ctx, hc, cause)
		}); err != nil {
			final = err
		}
	}
	return Fail[O](AsError(final))
}

// aborted resolves the cooperative-cancellation terminal path. Errors inside
// the onAbort hook are logged and swallowed; the outcome stays Aborted.
func (u *UseCase[I, O]) aborted(ctx context.Context, hc *HookContext[I, O], reason string) Result[O] {
	if u.Hooks.OnAbort != nil {
		if err := u.runTerminal(hc, stageOnAbort, func() error {
			return u.Hooks.OnAbort(ctx, hc, reason)
		}); err != nil {
			u.logSwallowed(hc, stageOnAbort, err)
		}
	}
	return Fail[O](Aborted(reason))
}

// finally runs the onFinally hook exactly once with the finished Result and
// releases the per-run scratch state. Failures are logged only.
func (u *UseCase[I, O]) finally(ctx context.Context, hc *HookContext[I, O], result Result[O]) {
	if u.Hooks.OnFinally != nil {
		if err := u.runTerminal(hc, stageOnFinally, func() error {
			return u.Hooks.OnFinally(ctx, hc, result)
		}); err != nil {
			u.logSwallowed(hc, stageOnFinally, err)
		}
	}
	// Scratch state must not outlive the invocation.
	hc.Shared = nil
}

// runHook invokes an optional stage hook with panic containment, timing and
// observability reporting.
func (u *UseCase[I, O]) runHook(ctx context.Context, hc *HookContext[I, O], stage string, hook Hook[I, O]) (err error) {
	if hook == nil {
		return nil
	}
	started := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = panicError(u.Name, stage, p)
		}
		u.logHook(hc, stage, time.Since(started), err)
	}()
	return hook(ctx, hc)
}

// runTerminal invokes a terminal-path hook, containing panics so that the
// already-decided outcome cannot be disturbed by an unwinding hook.
func (u *UseCase[I, O]) runTerminal(hc *HookContext[I, O], stage string, fn func() error) (err error) {
	started := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = panicError(u.Name, stage, p)
		}
		u.logHook(hc, stage, time.Since(started), err)
	}()
	return fn()
}

func (u *UseCase[I, O]) logHook(hc *HookContext[I, O], stage string, d time.Duration, err error) {
	if err != nil {
		obs.HookFailure(u.Name, stage)
	}
	if u.Adapters == nil || u.Adapters.HookLog == nil {
		return
	}
	u.Adapters.HookLog.LogHookExecution(HookExecution{
		ExecutionID: hc.ExecutionID,
		UseCase:     u.Name,
		Hook:        stage,
		RequestID:   hc.Op.RequestID,
		Duration:    d,
		Err:         err,
	})
}

func (u *UseCase[I, O]) logSwallowed(hc *HookContext[I, O], stage string, err error) {
	obs.LogJSON(map[string]any{
		"level":        "error",
		"msg":          "hook error swallowed",
		"use_case":     u.Name,
		"hook":         stage,
		"execution_id": hc.ExecutionID,
		"request_id":   hc.Op.RequestID,
		"error":        err.Error(),
	})
}

func panicError(useCase, stage string, p any) *Error {
	return Infrastructure(
		fmt.Sprintf("panic in %s stage %s", useCase, stage),
		map[string]any{"panic": fmt.Sprint(p)},
	)
}

package uc

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UnitOfWork is the transactional boundary wrapping one or more repository
// writes. fn runs inside one transaction; returning an error rolls every
// write back.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock abstracts the time source so use cases stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces identifiers for newly created entities.
type IDGenerator interface {
	Generate() string
}

// HookLog receives one record per executed hook. Implementations are
// fire-and-forget: failures must never influence a pipeline result.
type HookLog interface {
	LogHookExecution(payload HookExecution)
}

// HookExecution describes a single hook invocation for observability.
type HookExecution struct {
	ExecutionID string
	UseCase     string
	Hook        string
	RequestID   string
	Duration    time.Duration
	Err         error
}

// SystemClock implements Clock with wall time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator implements IDGenerator with random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate() string { return uuid.NewString() }

// Adapters bundles the shared infrastructure a use case may touch. One bundle
// is wired at composition time and shared across every invocation, so every
// member must be safe for concurrent use. Stores holds the domain-owned
// repository bundle; use-case code asserts it back to its concrete type.
type Adapters struct {
	UoW     UnitOfWork
	Clock   Clock
	UUID    IDGenerator
	HookLog HookLog
	Stores  any
}

// Now returns the adapter clock's time, falling back to wall time when no
// clock was wired.
func (a *Adapters) Now() time.Time {
	if a == nil || a.Clock == nil {
		return time.Now().UTC()
	}
	return a.Clock.Now()
}

// NewID returns a fresh entity identifier from the wired generator.
func (a *Adapters) NewID() string {
	if a == nil || a.UUID == nil {
		return uuid.NewString()
	}
	return a.UUID.Generate()
}

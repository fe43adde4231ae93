package uc

import (
	"fmt"
	"sync"
)

// Registry validates use-case composition once at wiring time rather than on
// every call: names must be unique and non-empty, every use case needs an
// execute stage and an adapter bundle.
type Registry struct {
	mu    sync.Mutex
	names map[string]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register binds a use case into the registry, rejecting malformed or
// duplicate definitions.
func Register[I, O any](r *Registry, u *UseCase[I, O]) (*UseCase[I, O], error) {
	if u == nil {
		return nil, fmt.Errorf("uc: nil use case")
	}
	if u.Name == "" {
		return nil, fmt.Errorf("uc: use case name is required")
	}
	if u.Execute == nil {
		return nil, fmt.Errorf("uc: use case %s has no execute stage", u.Name)
	}
	if u.Adapters == nil {
		return nil, fmt.Errorf("uc: use case %s has no adapters", u.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[u.Name]; exists {
		return nil, fmt.Errorf("uc: use case %s already registered", u.Name)
	}
	r.names[u.Name] = struct{}{}
	return u, nil
}

// MustRegister is Register for static wiring paths where a malformed
// definition is a programming error.
func MustRegister[I, O any](r *Registry, u *UseCase[I, O]) *UseCase[I, O] {
	registered, err := Register(r, u)
	if err != nil {
		panic(err)
	}
	return registered
}

package strategy

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-intraday/pkg/errors"
)

const (
	PolicyBaselineSMA = "baseline_sma"
	PolicyORB         = "orb"
	PolicyGapAndGo    = "gap_and_go"
	PolicyRouter      = "router"
)

// Factory builds a fresh policy instance. Every slot gets its own instance.
type Factory func() Policy

// Registry resolves policy names to factories.
type Registry interface {
	Register(name string, factory Factory) error
	Create(name string) (Policy, error)
	Has(name string) bool
	Names() []string
}

// RegistryV1 is the in-process registry of compiled policies.
type RegistryV1 struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *RegistryV1 {
	return &RegistryV1{
		factories: make(map[string]Factory),
		mu:        sync.RWMutex{},
	}
}

// NewDefaultRegistry registers the built-in policies with the given parameters.
func NewDefaultRegistry(params Params) *RegistryV1 {
	r := NewRegistry()

	// names are constants, registration cannot collide
	_ = r.Register(PolicyBaselineSMA, func() Policy { return NewBaselineSMA(params.SMAWindow) })
	_ = r.Register(PolicyORB, func() Policy { return NewORB(params.ORBWindowMinutes) })
	_ = r.Register(PolicyGapAndGo, func() Policy { return NewGapAndGo(params.GapAndGo) })
	_ = r.Register(PolicyRouter, func() Policy {
		return NewRouter(NewGapAndGo(params.GapAndGo), NewORB(params.ORBWindowMinutes))
	})

	return r
}

// Register adds a factory under name.
func (r *RegistryV1) Register(name string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" || factory == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "policy name and factory are required")
	}

	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "policy %s already registered", name)
	}

	r.factories[name] = factory

	return nil
}

// Create builds a new instance of the named policy.
func (r *RegistryV1) Create(name string) (Policy, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unknown policy %q", name)
	}

	return factory(), nil
}

func (r *RegistryV1) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]

	return exists
}

// Names returns the registered names in sorted order.
func (r *RegistryV1) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

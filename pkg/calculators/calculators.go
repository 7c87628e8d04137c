// Package calculators holds the scalar feature calculators applied to every
// series during extraction, and the parameter maps that select them.
package calculators

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

var (
	// ErrUnknownCalculator is returned for a calculator name the registry
	// does not know.
	ErrUnknownCalculator = errors.New("unknown feature calculator")

	// ErrParams is returned for missing, malformed or mistyped parameters.
	ErrParams = errors.New("invalid calculator parameters")
)

// Params is one parameter set of a calculator. Values are int64, float64,
// bool or string.
type Params map[string]any

// Func computes a feature over the samples of one series. The result is a
// float64, int or bool; NaN marks a feature that is undefined for x.
type Func func(x []float64, p Params) (any, error)

// Calculator is a named feature function.
type Calculator struct {
	Name string
	Fn   Func
	// Defaults lists the parameter sets used by the comprehensive preset.
	// Calculators without parameters leave it nil.
	Defaults []Params
}

// Parameterized reports whether the calculator takes parameters.
func (c Calculator) Parameterized() bool {
	return len(c.Defaults) > 0
}

// FCParameters maps a calculator name to the parameter sets it runs with.
// A nil list runs a parameterless calculator once.
type FCParameters map[string][]Params

// KindToFCParameters maps a series kind to its own FCParameters.
type KindToFCParameters map[string]FCParameters

// Names returns the calculator names in sorted order.
func (p FCParameters) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Clone returns a deep copy of p.
func (p FCParameters) Clone() FCParameters {
	if p == nil {
		return nil
	}
	out := make(FCParameters, len(p))
	for name, list := range p {
		if list == nil {
			out[name] = nil
			continue
		}
		cp := make([]Params, len(list))
		for i, ps := range list {
			cp[i] = ps.Clone()
		}
		out[name] = cp
	}
	return out
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Kinds returns the kinds in sorted order.
func (k KindToFCParameters) Kinds() []string {
	kinds := make([]string, 0, len(k))
	for kind := range k {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// Registry resolves calculator names. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	calcs map[string]Calculator
}

// NewRegistry returns a registry holding cs.
func NewRegistry(cs ...Calculator) *Registry {
	r := &Registry{calcs: make(map[string]Calculator, len(cs))}
	for _, c := range cs {
		r.calcs[c.Name] = c
	}
	return r
}

// Register adds c, replacing any calculator of the same name.
func (r *Registry) Register(c Calculator) error {
	if c.Name == "" || c.Fn == nil {
		return fmt.Errorf("calculator needs a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calcs[c.Name] = c
	return nil
}

// Lookup returns the calculator called name.
func (r *Registry) Lookup(name string) (Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calcs[name]
	if !ok {
		return Calculator{}, fmt.Errorf("%w: %q", ErrUnknownCalculator, name)
	}
	return c, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.calcs[name]
	return ok
}

// Names returns every registered name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.calcs))
	for n := range r.calcs {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Validate checks that every calculator named in p is registered.
func (r *Registry) Validate(p FCParameters) error {
	for _, name := range p.Names() {
		if !r.Has(name) {
			return fmt.Errorf("%w: %q", ErrUnknownCalculator, name)
		}
	}
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry holding the built-in catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(catalog()...)
	})
	return defaultRegistry
}

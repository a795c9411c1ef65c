package heuristic

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/example/sfl-lite/sfl/domain"
)

// Func scores one requirement from its spectrum:
//
//	failed:      failing tests that covered the requirement
//	passed:      passing tests that covered the requirement
//	totalFailed: failing tests in the session
//	totalPassed: passing tests in the session
//
// Implementations must be pure and total.
type Func func(failed, passed, totalFailed, totalPassed int) float64

// Heuristic is a named scoring function.
type Heuristic struct {
	Name        string
	Description string
	Score       Func
}

// Eval applies the heuristic and normalizes NaN and infinities to 0.
func (h Heuristic) Eval(failed, passed, totalFailed, totalPassed int) float64 {
	v := h.Score(failed, passed, totalFailed, totalPassed)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Registry maps heuristic names to scoring functions. Lookups are
// case-insensitive and a trailing "Heuristic" suffix is ignored.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Heuristic
}

// NewRegistry returns a registry holding the built-in heuristics.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Heuristic, len(builtins))}
	for _, h := range builtins {
		r.byName[normalize(h.Name)] = h
	}
	return r
}

// Register adds a heuristic. Registering an existing name is an error.
func (r *Registry) Register(h Heuristic) error {
	if h.Name == "" || h.Score == nil {
		return fmt.Errorf("%w: heuristic needs a name and a score function", domain.ErrInvalidArgument)
	}
	key := normalize(h.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("%w: heuristic %q already registered", domain.ErrInvalidArgument, h.Name)
	}
	r.byName[key] = h
	return nil
}

// Lookup returns the heuristic registered under name.
func (r *Registry) Lookup(name string) (Heuristic, error) {
	r.mu.RLock()
	h, ok := r.byName[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return Heuristic{}, fmt.Errorf("%w: %q (available: %s)",
			domain.ErrUnknownHeuristic, name, strings.Join(r.Names(), ", "))
	}
	return h, nil
}

// Names returns the registered heuristic names in alphabetical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for _, h := range r.byName {
		names = append(names, h.Name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered heuristics ordered by name.
func (r *Registry) All() []Heuristic {
	names := r.Names()
	out := make([]Heuristic, 0, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range names {
		out = append(out, r.byName[normalize(n)])
	}
	return out
}

var defaultRegistry = NewRegistry()

// Lookup resolves a built-in heuristic by name.
func Lookup(name string) (Heuristic, error) {
	return defaultRegistry.Lookup(name)
}

// Names returns the built-in heuristic names.
func Names() []string {
	return defaultRegistry.Names()
}

func normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(n, "heuristic")
}

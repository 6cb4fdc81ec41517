// Package collectors defines the CPU sampler contract and the registry of
// sampler backends. Backends live in subpackages; the refresh loop only sees
// the Sampler interface.
package collectors

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNotReady is returned while the underlying counter is still being
	// acquired. Callers report zero or a loading status; it is not a failure.
	ErrNotReady = errors.New("collectors: sampler not ready")

	// ErrSamplingUnavailable is returned when the counter is invalid or
	// failed transiently (sleep/resume, permission revocation). Backends wrap
	// it with %w. Callers log and keep polling.
	ErrSamplingUnavailable = errors.New("collectors: sampling unavailable")
)

// Sampler produces the next system-wide CPU utilization percentage.
//
// Sample must not block for more than a few milliseconds in steady state.
// The value is nominally in [0, 100] but may exceed 100 transiently because
// of counter artifacts; it is not clamped here.
type Sampler interface {
	// Name returns the backend identifier (e.g. "gopsutil", "procstat").
	Name() string

	// Sample returns the utilization since the previous call.
	Sample() (float64, error)
}

// Opener acquires a counter handle and returns a ready Sampler. Acquisition
// may take several seconds and must not run on the display goroutine.
type Opener func(ctx context.Context) (Sampler, error)

// Registry maps backend names to their openers.
type Registry struct {
	openers map[string]Opener
	aliases map[string]string
}

// NewRegistry creates a new empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		openers: make(map[string]Opener),
		aliases: make(map[string]string),
	}
}

// Register adds a backend. If a backend with the same name already exists,
// it is replaced.
func (r *Registry) Register(name string, open Opener) {
	r.openers[name] = open
}

// Alias makes alias resolve to the backend registered as target.
func (r *Registry) Alias(alias, target string) {
	r.aliases[alias] = target
}

// Get returns the opener for name, following aliases.
func (r *Registry) Get(name string) (Opener, error) {
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	open, ok := r.openers[name]
	if !ok {
		return nil, fmt.Errorf("collectors: unknown sampler %q (have %v)", name, r.Names())
	}
	return open, nil
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.openers))
	for name := range r.openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Package registry tracks the external capabilities Aura's organs depend on.
// Each capability is probed once, at construction, and resolves to either
// Ready or Unavailable with a reason. Nothing re-probes afterward: a
// capability that was missing at startup stays unavailable for the life of
// the process, and its organ degrades rather than crashes.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// State is the resolved availability of a capability.
type State int

const (
	// Unavailable means the probe failed; the reason is recorded.
	Unavailable State = iota
	// Ready means the dependency resolved at startup.
	Ready
)

// String returns the display name of the state.
func (s State) String() string {
	if s == Ready {
		return "ready"
	}
	return "unavailable"
}

// Capability is one named external dependency: an inference credential,
// a capture utility, or a delegated organ.
type Capability struct {
	Name   string `json:"name"`
	State  State  `json:"-"`
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

// Registry holds the resolved capability set.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]Capability
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// MarkReady records a capability that resolved successfully.
func (r *Registry) MarkReady(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[name] = Capability{Name: name, State: Ready, Ready: true}
}

// MarkUnavailable records a capability whose probe failed.
func (r *Registry) MarkUnavailable(name, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caps[name] = Capability{Name: name, State: Unavailable, Reason: reason}
}

// Resolve records the outcome of a probe in one call.
func (r *Registry) Resolve(name string, err error) {
	if err != nil {
		r.MarkUnavailable(name, err.Error())
		return
	}
	r.MarkReady(name)
}

// Available reports whether a capability resolved as Ready. Unknown
// capabilities are unavailable.
func (r *Registry) Available(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caps[name].State == Ready
}

// Get returns the recorded capability and whether it was ever probed.
func (r *Registry) Get(name string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	return c, ok
}

// Snapshot returns all capabilities sorted by name, for status reporting.
func (r *Registry) Snapshot() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Capability, 0, len(r.caps))
	for _, c := range r.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Summary returns a one-line account of the registry, e.g. "3/5 capabilities ready".
func (r *Registry) Summary() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ready := 0
	for _, c := range r.caps {
		if c.State == Ready {
			ready++
		}
	}
	return fmt.Sprintf("%d/%d capabilities ready", ready, len(r.caps))
}

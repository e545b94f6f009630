package actuator

import (
	"slices"
	"strings"
	"sync"
)

// linkedCapabilities holds capability names declared by packages compiled into the binary.
var linkedCapabilities = struct {
	mu    sync.RWMutex
	names map[string]struct{}
}{names: make(map[string]struct{})}

// DeclareCapability records that the calling package is linked into the binary.
// Packages call it from init so that auto-configuration can check whether a client
// type is resolvable before wiring anything that depends on it.
func DeclareCapability(name string) {
	if name == "" {
		return
	}
	linkedCapabilities.mu.Lock()
	defer linkedCapabilities.mu.Unlock()
	linkedCapabilities.names[name] = struct{}{}
}

// LinkedCapabilities returns a snapshot of every declared capability.
func LinkedCapabilities() CapabilitySet {
	linkedCapabilities.mu.RLock()
	defer linkedCapabilities.mu.RUnlock()

	names := make([]string, 0, len(linkedCapabilities.names))
	for name := range linkedCapabilities.names {
		names = append(names, name)
	}
	return NewCapabilitySet(names...)
}

// CapabilitySet is an immutable set of capability names. The zero value is empty.
type CapabilitySet struct {
	names map[string]struct{}
}

// NewCapabilitySet builds a set from names; empty names are dropped.
func NewCapabilitySet(names ...string) CapabilitySet {
	set := CapabilitySet{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		if name != "" {
			set.names[name] = struct{}{}
		}
	}
	return set
}

// Has reports whether name is in the set.
func (s CapabilitySet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Without returns a copy of the set with names removed. Tests use it to simulate a
// binary in which a client package is not linked.
func (s CapabilitySet) Without(names ...string) CapabilitySet {
	out := NewCapabilitySet(s.Names()...)
	for _, name := range names {
		delete(out.names, name)
	}
	return out
}

// With returns a copy of the set with names added.
func (s CapabilitySet) With(names ...string) CapabilitySet {
	return NewCapabilitySet(append(s.Names(), names...)...)
}

// Names returns the capability names in sorted order.
func (s CapabilitySet) Names() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s CapabilitySet) String() string {
	return "[" + strings.Join(s.Names(), ", ") + "]"
}

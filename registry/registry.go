package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Static errors for registry package
var (
	ErrServiceNotFound        = errors.New("service not found")
	ErrDuplicateRegistration  = errors.New("duplicate service registration")
	ErrRegistrationNil        = errors.New("registration cannot be nil")
	ErrRegistrationNameEmpty  = errors.New("registration name cannot be empty")
	ErrRegistrationServiceNil = errors.New("registration service cannot be nil")
)

// DuplicateRegistrationError is returned when a name is already occupied.
type DuplicateRegistrationError struct {
	Name      string
	Existing  *ServiceRegistration
	Attempted *ServiceRegistration
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("%s: %q already registered by %q (%T), rejected %T from %q",
		ErrDuplicateRegistration, e.Name,
		e.Existing.RegisteredBy, e.Existing.Service,
		e.Attempted.Service, e.Attempted.RegisteredBy)
}

// Is lets errors.Is match ErrDuplicateRegistration.
func (e *DuplicateRegistrationError) Is(target error) bool {
	return target == ErrDuplicateRegistration
}

// Registry implements the ServiceRegistry interface with basic map-based storage
type Registry struct {
	mu       sync.RWMutex
	services map[string]*ServiceEntry
	sequence int
}

var _ ServiceRegistry = (*Registry)(nil)

// NewRegistry creates an empty service registry
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]*ServiceEntry),
	}
}

// Register registers a service with the registry
func (r *Registry) Register(ctx context.Context, registration *ServiceRegistration) error {
	if registration == nil {
		return ErrRegistrationNil
	}
	if registration.Name == "" {
		return ErrRegistrationNameEmpty
	}
	if registration.Service == nil {
		return fmt.Errorf("%w: %s", ErrRegistrationServiceNil, registration.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if registration.RegisteredAt.IsZero() {
		registration.RegisteredAt = now
	}
	if registration.Origin == "" {
		registration.Origin = OriginUser
	}

	if existing, exists := r.services[registration.Name]; exists {
		return &DuplicateRegistrationError{
			Name:      registration.Name,
			Existing:  existing.Registration,
			Attempted: registration,
		}
	}

	r.sequence++
	r.services[registration.Name] = &ServiceEntry{
		Registration: registration,
		Sequence:     r.sequence,
		CreatedAt:    now,
	}

	return nil
}

// Lookup returns the entry registered under name
func (r *Registry) Lookup(name string) (*ServiceEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.services[name]
	return entry, exists
}

// ResolveByName resolves a service by its registered name
func (r *Registry) ResolveByName(ctx context.Context, name string) (any, error) {
	entry, exists := r.Lookup(name)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	return entry.Registration.Service, nil
}

// ResolveAllAssignableTo returns all entries whose service can be assigned to t.
// When t is an interface, entries implementing it match.
func (r *Registry) ResolveAllAssignableTo(ctx context.Context, t reflect.Type) ([]*ServiceEntry, error) {
	entries, _ := r.List(ctx)

	matched := make([]*ServiceEntry, 0, len(entries))
	for _, entry := range entries {
		svcType := reflect.TypeOf(entry.Registration.Service)
		if svcType.AssignableTo(t) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// List returns all registered services
func (r *Registry) List(ctx context.Context) ([]*ServiceEntry, error) {
	r.mu.RLock()
	entries := make([]*ServiceEntry, 0, len(r.services))
	for _, entry := range r.services {
		entries = append(entries, entry)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Sequence < entries[j].Sequence })
	return entries, nil
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}

// Names returns the registered names ordered by registration sequence.
func (r *Registry) Names() []string {
	entries, _ := r.List(context.Background())
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Registration.Name
	}
	return names
}

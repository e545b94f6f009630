// Package registry defines the shared named-service registry that modules publish into
// during application initialisation and that downstream consumers read afterwards.
package registry

import (
	"context"
	"reflect"
	"time"
)

// ServiceRegistry defines the interface for service registration and resolution.
// Entries are never replaced or removed once registered.
type ServiceRegistry interface {
	// Register registers a service with the registry. An occupied name fails with
	// *DuplicateRegistrationError.
	Register(ctx context.Context, registration *ServiceRegistration) error

	// Lookup returns the entry registered under name, if any
	Lookup(name string) (*ServiceEntry, bool)

	// ResolveByName resolves a service by its registered name
	ResolveByName(ctx context.Context, name string) (any, error)

	// ResolveAllAssignableTo returns every entry whose service is assignable to t.
	// Entries are ordered by registration sequence.
	ResolveAllAssignableTo(ctx context.Context, t reflect.Type) ([]*ServiceEntry, error)

	// List returns all registered services ordered by registration sequence
	List(ctx context.Context) ([]*ServiceEntry, error)
}

// Origin records who published a service.
type Origin string

const (
	// OriginUser marks services published by application (user) modules.
	OriginUser Origin = "user"
	// OriginAutoConfiguration marks services published by auto-configuration modules.
	OriginAutoConfiguration Origin = "auto-configuration"
)

// ServiceRegistration represents a service registration request
type ServiceRegistration struct {
	Name     string         `json:"name"`
	Service  any            `json:"-"`
	Origin   Origin         `json:"origin"`
	Metadata map[string]any `json:"metadata,omitempty"`

	// RegisteredBy is the module or component that registered this service
	RegisteredBy string    `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ServiceEntry represents a registered service in the registry
type ServiceEntry struct {
	Registration *ServiceRegistration `json:"registration"`
	Sequence     int                  `json:"sequence"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Name returns the registered name.
func (e *ServiceEntry) Name() string { return e.Registration.Name }

// Service returns the registered instance.
func (e *ServiceEntry) Service() any { return e.Registration.Service }

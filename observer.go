package actuator

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer defines the interface for objects that want to be notified of events.
// Events follow the CloudEvents specification.
type Observer interface {
	// OnEvent is called when an event occurs that the observer is interested in.
	// Errors are logged by the subject and never stop delivery to other observers.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// Subject defines the interface for objects that can be observed.
type Subject interface {
	// RegisterObserver adds an observer to receive notifications.
	// When eventTypes is empty the observer receives every event.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer from receiving notifications.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends an event to all registered observers interested in its type.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about currently registered observers.
	GetObservers() []ObserverInfo
}

// ObserverInfo provides information about a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by the application core. Modules define their own types using
// the same reverse domain prefix.
const (
	EventTypeModuleInitialized = "com.modular.module.initialized"
	EventTypeModuleStarted     = "com.modular.module.started"
	EventTypeModuleStopped     = "com.modular.module.stopped"

	EventTypeServiceRegistered = "com.modular.service.registered"

	EventTypeConfigLoaded = "com.modular.config.loaded"

	EventTypeApplicationStarted = "com.modular.application.started"
	EventTypeApplicationStopped = "com.modular.application.stopped"
	EventTypeApplicationFailed  = "com.modular.application.failed"
)

// ObserverFunc is a bare event handler, registered through WithObserver.
type ObserverFunc func(ctx context.Context, event cloudevents.Event) error

// FunctionalObserver provides a simple way to create observers using functions.
type FunctionalObserver struct {
	id      string
	handler ObserverFunc
}

// NewFunctionalObserver creates a new observer that uses the provided function
// to handle events.
func NewFunctionalObserver(id string, handler ObserverFunc) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements the Observer interface by calling the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements the Observer interface by returning the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

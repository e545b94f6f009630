package actuator

import (
	"context"
	"slices"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

const applicationEventSource = "application"

// observerRegistration holds information about a registered observer
type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// RegisterObserver adds an observer to receive notifications from the application.
// If eventTypes is empty, the observer receives all events.
func (app *StdApplication) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}

	app.observerMutex.Lock()
	defer app.observerMutex.Unlock()

	eventTypeMap := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}

	app.observers[observer.ObserverID()] = &observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
	}

	app.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer from receiving notifications.
func (app *StdApplication) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrObserverNil
	}

	app.observerMutex.Lock()
	defer app.observerMutex.Unlock()

	if _, exists := app.observers[observer.ObserverID()]; !exists {
		return ErrObserverNotRegistered
	}
	delete(app.observers, observer.ObserverID())
	return nil
}

// NotifyObservers delivers event to every interested observer before returning.
// Observer errors and panics are logged and do not reach the caller.
func (app *StdApplication) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}
	if err := ValidateCloudEvent(event); err != nil {
		app.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	app.observerMutex.RLock()
	targets := make([]*observerRegistration, 0, len(app.observers))
	for _, registration := range app.observers {
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue
		}
		targets = append(targets, registration)
	}
	app.observerMutex.RUnlock()

	slices.SortFunc(targets, func(a, b *observerRegistration) int {
		return a.registeredAt.Compare(b.registeredAt)
	})

	for _, registration := range targets {
		app.deliver(ctx, registration.observer, event)
	}
	return nil
}

func (app *StdApplication) deliver(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			app.logger.Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", r)
		}
	}()

	if err := observer.OnEvent(ctx, event); err != nil {
		app.logger.Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

// GetObservers returns information about currently registered observers.
func (app *StdApplication) GetObservers() []ObserverInfo {
	app.observerMutex.RLock()
	defer app.observerMutex.RUnlock()

	info := make([]ObserverInfo, 0, len(app.observers))
	for _, registration := range app.observers {
		eventTypes := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			eventTypes = append(eventTypes, eventType)
		}
		slices.Sort(eventTypes)

		info = append(info, ObserverInfo{
			ID:           registration.observer.ObserverID(),
			EventTypes:   eventTypes,
			RegisteredAt: registration.registeredAt,
		})
	}
	return info
}

func (app *StdApplication) emitEvent(ctx context.Context, eventType string, data any) {
	app.observerMutex.RLock()
	hasObservers := len(app.observers) > 0
	app.observerMutex.RUnlock()
	if !hasObservers {
		return
	}

	if err := app.NotifyObservers(ctx, NewCloudEvent(eventType, applicationEventSource, data, nil)); err != nil {
		app.logger.Error("Failed to notify observers", "event", eventType, "error", err)
	}
}

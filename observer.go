package networking

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer is notified of call lifecycle events.
// Observers are invoked synchronously on the calling goroutine and should
// return quickly; an observer error is logged and never fails the call.
type Observer interface {
	// OnEvent is called for every event the observer subscribed to.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// Event types emitted by the client, in reverse domain notation.
const (
	EventTypeRequestPrepared  = "com.networking.request.prepared"
	EventTypeResponseReceived = "com.networking.response.received"
	EventTypeCallCompleted    = "com.networking.call.completed"
	EventTypeCallFailed       = "com.networking.call.failed"
)

// EventSource is the CloudEvents source attribute of client events.
const EventSource = "networking.client"

// FunctionalObserver provides a simple way to create observers using functions.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates a new observer that uses the provided function
// to handle events.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
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

// registeredObserver is an observer plus its event type filter.
// An empty filter receives every event.
type registeredObserver struct {
	observer   Observer
	eventTypes map[string]struct{}
}

func (r registeredObserver) wants(eventType string) bool {
	if len(r.eventTypes) == 0 {
		return true
	}
	_, ok := r.eventTypes[eventType]
	return ok
}

// notifyObservers delivers event to every interested observer in
// registration order. Failures are logged at debug level only.
func notifyObservers(ctx context.Context, logger Logger, observers []registeredObserver, event cloudevents.Event) {
	for _, o := range observers {
		if !o.wants(event.Type()) {
			continue
		}
		if err := o.observer.OnEvent(ctx, event); err != nil {
			logger.Debug("Observer failed to handle event",
				"observer", o.observer.ObserverID(),
				"eventType", event.Type(),
				"error", err,
			)
		}
	}
}

// Package event provides the synchronous event bus that carries native
// surface notifications (input, pointer and key releases, focus) and
// document-level notifications (content and signature changes) between the
// editor components.
//
// The editor runs on a single logical loop, so delivery is synchronous:
// Publish returns after every matching handler has run.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/richtext/internal/event/topic"
)

// Event is a typed event value.
type Event[T any] struct {
	// Type is the hierarchical event type (e.g., "surface.input").
	Type topic.Topic

	// Payload contains the event-specific data.
	Payload T

	// Metadata contains standard event information.
	Metadata Metadata
}

// Metadata is attached to every event.
type Metadata struct {
	ID        string
	Timestamp time.Time
	// Source identifies the component that published the event.
	Source string
}

// NewEvent creates a new event with the given type and payload.
func NewEvent[T any](eventType topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    eventType,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// TopicProvider is implemented by values the bus can route.
type TopicProvider interface {
	EventTopic() topic.Topic
}

package events

import "time"

// EventType identifies the type of event
type EventType string

// Document state events
const (
	FilesChanged   EventType = "files.changed"
	ContentChanged EventType = "content.changed"
	PreviewOpened  EventType = "preview.opened"
	PreviewClosed  EventType = "preview.closed"

	// Store events
	StorePersisted     EventType = "store.persisted"
	StorePersistFailed EventType = "store.persist_failed"
)

// Event represents a generic event in the system
type Event[T any] struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher defines the interface for publishing events
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// EventFilter decides whether a subscriber receives an event
type EventFilter func(eventType EventType) bool

// OfType accepts only the listed event types
func OfType(types ...EventType) EventFilter {
	return func(eventType EventType) bool {
		for _, t := range types {
			if t == eventType {
				return true
			}
		}
		return false
	}
}

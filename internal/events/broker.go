package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	defaultBufferSize = 64
	defaultMaxEvents  = 256
)

// Broker implements a generic publish-subscribe broker with type safety
type Broker[T any] struct {
	subs       map[chan Event[T]]SubscriberInfo
	mu         sync.RWMutex
	done       chan struct{}
	bufferSize int

	maxEvents    int
	eventHistory []Event[T]
	historyMu    sync.RWMutex
}

// SubscriberInfo contains metadata about a subscriber
type SubscriberInfo struct {
	ID      string
	Filters []EventFilter
	Created time.Time
}

// NewBroker creates a new broker with default settings
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithOptions[T](defaultBufferSize, defaultMaxEvents)
}

// NewBrokerWithOptions creates a new broker with custom settings
func NewBrokerWithOptions[T any](channelBufferSize, maxEvents int) *Broker[T] {
	return &Broker[T]{
		subs:         make(map[chan Event[T]]SubscriberInfo),
		done:         make(chan struct{}),
		bufferSize:   channelBufferSize,
		maxEvents:    maxEvents,
		eventHistory: make([]Event[T], 0, maxEvents),
	}
}

// Publish publishes an event to all subscribers. A subscriber whose buffer is
// full misses the event; Publish never blocks.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	if b.isShutdown() {
		return
	}

	event := Event[T]{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	b.addToHistory(event)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, info := range b.subs {
		if !accepts(eventType, info.Filters) {
			continue
		}
		select {
		case ch <- event:
		default:
			log.Warn("event channel full, dropping event", "subscriber", info.ID, "type", eventType)
		}
	}
}

// Subscribe creates a new subscription with optional filters. The channel is
// closed when ctx is done or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context, filters ...EventFilter) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], b.bufferSize)
	if b.isShutdown() {
		close(ch)
		return ch
	}

	b.subs[ch] = SubscriberInfo{
		ID:      uuid.New().String(),
		Filters: filters,
		Created: time.Now(),
	}

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(ch)
		case <-b.done:
		}
	}()

	return ch
}

// unsubscribe removes a subscriber
func (b *Broker[T]) unsubscribe(ch chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subs[ch]; exists {
		delete(b.subs, ch)
		close(ch)
	}
}

func accepts(eventType EventType, filters []EventFilter) bool {
	for _, filter := range filters {
		if !filter(eventType) {
			return false
		}
	}
	return true
}

// addToHistory adds an event to the in-memory history
func (b *Broker[T]) addToHistory(event Event[T]) {
	b.historyMu.Lock()
	defer b.historyMu.Unlock()

	b.eventHistory = append(b.eventHistory, event)
	if over := len(b.eventHistory) - b.maxEvents; over > 0 {
		b.eventHistory = append(b.eventHistory[:0], b.eventHistory[over:]...)
	}
}

// GetHistory returns recent events matching the given filters, oldest first
func (b *Broker[T]) GetHistory(filters ...EventFilter) []Event[T] {
	b.historyMu.RLock()
	defer b.historyMu.RUnlock()

	var result []Event[T]
	for _, event := range b.eventHistory {
		if accepts(event.Type, filters) {
			result = append(result, event)
		}
	}
	return result
}

// SubscriberCount returns the number of live subscriptions
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// isShutdown checks if the broker is shut down
func (b *Broker[T]) isShutdown() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Shutdown closes every subscriber channel. Later publishes are dropped.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isShutdown() {
		return
	}
	close(b.done)

	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	log.Debug("event broker shut down")
}

// String returns a string representation of the broker
func (b *Broker[T]) String() string {
	b.historyMu.RLock()
	history := len(b.eventHistory)
	b.historyMu.RUnlock()
	return fmt.Sprintf("Broker[subscribers=%d, history=%d, shutdown=%v]",
		b.SubscriberCount(), history, b.isShutdown())
}

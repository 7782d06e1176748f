package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/arena/internal/shared/domain"
)

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

// HandlerFunc reacts to one domain event.
type HandlerFunc func(ctx context.Context, event domain.DomainEvent) error

// EventConsumer is a named handler for a fixed set of event types.
type EventConsumer interface {
	Name() string
	EventTypes() []string
	Handle(ctx context.Context, event domain.DomainEvent) error
}

// Unsubscribe removes the registration it was returned for. Calling it more
// than once is harmless.
type Unsubscribe func()

type subscription struct {
	id        uint64
	name      string
	eventType string
	handle    HandlerFunc
}

// Bus is a synchronous in-process domain event bus. Handlers run on the
// publishing goroutine in registration order. A failing handler does not
// stop the remaining ones; failures are reported back to the publisher.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger *slog.Logger
}

// New creates an empty bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers handler for eventType. Use AllEvents to receive
// every event.
func (b *Bus) Subscribe(eventType, name string, handler HandlerFunc) Unsubscribe {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: name, eventType: eventType, handle: handler})
	b.mu.Unlock()

	b.logger.Debug("handler subscribed", "event_type", eventType, "handler", name)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// RegisterConsumer subscribes consumer to each of its declared event types.
func (b *Bus) RegisterConsumer(consumer EventConsumer) Unsubscribe {
	types := consumer.EventTypes()
	unsubs := make([]Unsubscribe, 0, len(types))
	for _, eventType := range types {
		unsubs = append(unsubs, b.Subscribe(eventType, consumer.Name(), consumer.Handle))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// HandlerCount returns the number of handlers that would receive eventType.
func (b *Bus) HandlerCount(eventType string) int {
	return len(b.handlersFor(eventType))
}

func (b *Bus) handlersFor(eventType string) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	matched := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.eventType == eventType || s.eventType == AllEvents {
			matched = append(matched, s)
		}
	}
	return matched
}

// Publish delivers event to its handlers. The returned error is a
// *PublishError listing every handler that failed, or nil.
func (b *Bus) Publish(ctx context.Context, event domain.DomainEvent) error {
	handlers := b.handlersFor(event.EventType())
	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", "event_type", event.EventType())
		return nil
	}

	start := time.Now()
	var report PublishError
	for _, h := range handlers {
		if err := b.invoke(ctx, h, event); err != nil {
			b.logger.Error("event handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"handler", h.name,
				"error", err,
			)
			report.add(h.name, event, err)
		}
	}

	b.logger.Debug("event dispatched",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"handlers", len(handlers),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report.errOrNil()
}

// PublishAll publishes events in order and merges their failure reports.
func (b *Bus) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	var report PublishError
	for _, event := range events {
		report.merge(b.Publish(ctx, event))
	}
	return report.errOrNil()
}

func (b *Bus) invoke(ctx context.Context, h subscription, event domain.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.handle(ctx, event)
}

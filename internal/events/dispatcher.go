package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// EventHandler reacts to one published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans events out to the handlers subscribed to their type.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type syncDispatcher struct {
	mu   sync.RWMutex
	subs map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a Dispatcher that runs handlers on the
// publishing goroutine, in subscription order.
func NewInMemoryDispatcher() Dispatcher {
	return &syncDispatcher{subs: map[EventType][]EventHandler{}}
}

// Publish calls every subscriber of event.Type even when some fail, and
// returns their failures joined, each tagged with the event type and id.
func (d *syncDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	subs := slices.Clone(d.subs[event.Type])
	d.mu.RUnlock()

	var failures []error
	for _, h := range subs {
		if err := h(ctx, event); err != nil {
			failures = append(failures, fmt.Errorf("%s %s: %w", event.Type, event.ID, err))
		}
	}
	return errors.Join(failures...)
}

func (d *syncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	d.subs[eventType] = append(d.subs[eventType], handler)
	d.mu.Unlock()
}

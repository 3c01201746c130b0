package event

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/richtext/internal/event/topic"
)

// Bus delivers events to subscriptions whose pattern matches the event
// topic. Delivery is synchronous and ordered by priority, then by
// subscription order. Handlers may publish further events.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
	seq  uint64

	config busConfig

	eventsPublished  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus(opts ...BusOption) *Bus {
	cfg := defaultBusConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{config: cfg}
}

// Subscribe registers handler for every topic matching pattern.
func (b *Bus) Subscribe(pattern topic.Topic, handler Handler, opts ...SubscriptionOption) (*Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	if pattern == "" {
		return nil, ErrInvalidTopic
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := newSubscription(uuid.NewString(), b.seq, pattern, handler, opts...)
	b.subs = append(b.subs, sub)
	return sub, nil
}

// SubscribeFunc is a convenience wrapper around Subscribe.
func (b *Bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (*Subscription, error) {
	return b.Subscribe(pattern, fn, opts...)
}

// Unsubscribe cancels and removes a subscription.
func (b *Bus) Unsubscribe(sub *Subscription) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	sub.Cancel()

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := slices.Index(b.subs, sub)
	if idx < 0 {
		return ErrSubscriptionNotFound
	}
	b.subs = slices.Delete(b.subs, idx, idx+1)
	return nil
}

// Publish delivers event to every matching subscription before returning.
// Handler errors and panics are counted and reported to the configured
// hooks; they do not stop delivery to the remaining handlers.
func (b *Bus) Publish(ctx context.Context, event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	eventTopic := tp.EventTopic()

	subs := b.match(eventTopic)
	b.eventsPublished.Add(1)

	for _, sub := range subs {
		if !sub.shouldDeliver(event) {
			continue
		}
		err := b.dispatch(ctx, sub, eventTopic, event)
		b.handlersExecuted.Add(1)
		if err != nil {
			b.handlerErrors.Add(1)
			if b.config.errorHandler != nil {
				b.config.errorHandler(event, err)
			}
			continue
		}
		if sub.config.Once {
			_ = b.Unsubscribe(sub)
		}
	}
	return nil
}

func (b *Bus) dispatch(ctx context.Context, sub *Subscription, eventTopic topic.Topic, event any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.handlerPanics.Add(1)
			if b.config.panicHandler != nil {
				b.config.panicHandler(event, r)
			}
			err = fmt.Errorf("%w: %v", &PanicError{
				SubscriptionID: sub.id,
				Topic:          eventTopic.String(),
				Value:          r,
			}, r)
		}
	}()
	return sub.handler.Handle(ctx, event)
}

// match returns the active subscriptions for eventTopic in delivery order.
func (b *Bus) match(eventTopic topic.Topic) []*Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*Subscription
	for _, sub := range b.subs {
		if sub.IsActive() && eventTopic.Matches(sub.pattern) {
			out = append(out, sub)
		}
	}
	slices.SortStableFunc(out, func(a, c *Subscription) int {
		if a.config.Priority != c.config.Priority {
			return int(a.config.Priority - c.config.Priority)
		}
		return int(a.seq) - int(c.seq)
	})
	return out
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	active := 0
	for _, sub := range b.subs {
		if sub.IsActive() {
			active++
		}
	}
	b.mu.RUnlock()

	return Stats{
		EventsPublished:   b.eventsPublished.Load(),
		HandlersExecuted:  b.handlersExecuted.Load(),
		HandlerErrors:     b.handlerErrors.Load(),
		HandlerPanics:     b.handlerPanics.Load(),
		ActiveSubscribers: active,
	}
}

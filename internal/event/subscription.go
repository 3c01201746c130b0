package event

import (
	"sync/atomic"

	"github.com/dshills/richtext/internal/event/topic"
)

// SubscriptionConfig contains configuration for a subscription.
type SubscriptionConfig struct {
	// Priority determines execution order (lower values execute first).
	Priority Priority

	// Filter is an optional predicate; events are only delivered when it
	// returns true.
	Filter FilterFunc

	// Once cancels the subscription after the first successful delivery.
	Once bool
}

// Subscription is a registered handler for a topic pattern.
type Subscription struct {
	id        string
	pattern   topic.Topic
	handler   Handler
	config    SubscriptionConfig
	seq       uint64
	cancelled atomic.Bool
}

func newSubscription(id string, seq uint64, pattern topic.Topic, handler Handler, opts ...SubscriptionOption) *Subscription {
	cfg := SubscriptionConfig{Priority: PriorityNormal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Subscription{
		id:      id,
		pattern: pattern,
		handler: handler,
		config:  cfg,
		seq:     seq,
	}
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed topic pattern.
func (s *Subscription) Topic() topic.Topic { return s.pattern }

// Config returns the subscription configuration.
func (s *Subscription) Config() SubscriptionConfig { return s.config }

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool { return !s.cancelled.Load() }

// Cancel permanently stops delivery to this subscription.
func (s *Subscription) Cancel() { s.cancelled.Store(true) }

func (s *Subscription) shouldDeliver(event any) bool {
	if !s.IsActive() {
		return false
	}
	if s.config.Filter != nil && !s.config.Filter(event) {
		return false
	}
	return true
}

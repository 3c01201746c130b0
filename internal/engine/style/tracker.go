package style

import (
	"context"
	"slices"

	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/engine/bridge"
	"github.com/dshills/richtext/internal/event"
	"github.com/dshills/richtext/internal/event/events"
	"github.com/dshills/richtext/internal/logging"
)

// Baseline is the signature reported when there is no caret.
var Baseline = NewSignature(JustifyLeft)

// Querier reads native command state.
type Querier interface {
	QueryState(cmd bridge.Command) bool
	Focused() *html.Node
}

// Tracker maintains the active signature. It re-derives the signature
// when Refresh is called and, once attached to a bus, on every pointer
// and key release.
type Tracker struct {
	q       Querier
	current Signature
	bus     *event.Bus
	subs    []*event.Subscription
	log     *logging.Logger
}

// NewTracker creates a tracker reading from q. The initial signature is
// the baseline.
func NewTracker(q Querier, log *logging.Logger) *Tracker {
	if log == nil {
		log = logging.Nop()
	}
	return &Tracker{
		q:       q,
		current: Baseline,
		log:     log.WithComponent("style"),
	}
}

// Current returns the last published signature.
func (t *Tracker) Current() Signature {
	return t.current
}

// Attach subscribes the tracker to selection-changing events on bus and
// publishes signature changes there.
func (t *Tracker) Attach(bus *event.Bus) error {
	t.bus = bus
	refresh := func(ctx context.Context, e event.Event[events.SurfacePointer]) error {
		t.Refresh(ctx, "")
		return nil
	}
	sub, err := bus.Subscribe(events.TopicSurfacePointerUp, event.AsHandler(refresh), event.WithPriority(event.PriorityHigh))
	if err != nil {
		return err
	}
	t.subs = append(t.subs, sub)

	sub, err = bus.Subscribe(events.TopicSurfaceKeyUp, event.AsHandler(func(ctx context.Context, e event.Event[events.SurfaceKey]) error {
		t.Refresh(ctx, "")
		return nil
	}), event.WithPriority(event.PriorityHigh))
	if err != nil {
		return err
	}
	t.subs = append(t.subs, sub)
	return nil
}

// Detach cancels the tracker's bus subscriptions.
func (t *Tracker) Detach() {
	for _, sub := range t.subs {
		_ = t.bus.Unsubscribe(sub)
	}
	t.subs = nil
}

// Refresh re-derives the signature from native state. explicit names the
// command that triggered the refresh, or is empty for selection changes.
//
// Native state is advisory. When explicit belongs to an exclusive group
// its siblings are forced off; alignment commands also force their own
// member on, while list commands keep the native reading because applying
// the active list again removes it. Remaining ties go to the first member
// in group order.
func (t *Tracker) Refresh(ctx context.Context, explicit bridge.Command) Signature {
	next := t.derive(explicit)
	t.publish(ctx, next)
	return next
}

func (t *Tracker) derive(explicit bridge.Command) Signature {
	if t.q.Focused() == nil {
		return Baseline
	}

	var s Signature
	for _, tok := range canonical {
		if t.q.QueryState(CommandFor(tok)) {
			s = s.With(tok)
		}
	}

	if tok, ok := TokenFor(explicit); ok {
		if g, grouped := GroupOf(tok); grouped {
			on := s.Has(tok) || g.Name == AlignGroup.Name
			for _, m := range g.Members {
				s = s.Without(m)
			}
			if on {
				s = s.With(tok)
			}
		}
	}
	return s.Resolve()
}

func (t *Tracker) publish(ctx context.Context, next Signature) {
	prev := t.current
	t.current = next
	if prev == next {
		return
	}
	t.log.Debug("signature %s -> %s", prev, next)
	if t.bus == nil {
		return
	}
	ev := event.NewEvent(events.TopicStyleSignatureChanged, events.StyleSignatureChanged{
		Previous: prev.Strings(),
		Current:  next.Strings(),
	}, "style")
	if err := t.bus.Publish(ctx, ev); err != nil {
		t.log.Warn("publish signature: %v", err)
	}
}

// Active reports whether the current signature holds every token.
func (t *Tracker) Active(tokens ...Token) bool {
	return !slices.ContainsFunc(tokens, func(tok Token) bool {
		return !t.current.Has(tok)
	})
}

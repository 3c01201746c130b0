package engine

import (
	"time"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/event"
	"github.com/dshills/richtext/internal/logging"
)

// Option configures an Editor during creation.
type Option func(*Editor)

// WithConfig sets the configuration. The editor keeps its own copy.
func WithConfig(cfg *config.Config) Option {
	return func(e *Editor) {
		if cfg != nil {
			e.cfg = cfg.Clone()
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithBus publishes editor and surface events on bus instead of a private
// bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Editor) {
		e.bus = bus
	}
}

// WithClock sets the time source used to stamp serialized documents.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithContent sets the initial markup. It is sanitized and split into
// blocks like LoadMarkup.
func WithContent(markup string) Option {
	return func(e *Editor) {
		e.initContent = markup
	}
}

// WithSanitizer replaces the sanitizer selected by the configured policy.
func WithSanitizer(s Sanitizer) Option {
	return func(e *Editor) {
		e.sanitizer = s
	}
}

// WithIDGenerator replaces the data-id generator of new editables.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/engine/block"
	"github.com/dshills/richtext/internal/engine/bridge"
	"github.com/dshills/richtext/internal/engine/media"
	"github.com/dshills/richtext/internal/engine/serialize"
	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/surface"
	"github.com/dshills/richtext/internal/event"
	"github.com/dshills/richtext/internal/event/events"
	"github.com/dshills/richtext/internal/logging"
)

const eventSource = "editor"

// Editor is one editing session over a single document. Instances share
// no state.
type Editor struct {
	mu sync.Mutex

	// Core components
	surf     *surface.Surface
	bridge   *bridge.Bridge
	tracker  *style.Tracker
	blocks   *block.Model
	resolver *media.Resolver
	queue    *media.Queue

	// Configuration
	cfg       *config.Config
	log       *logging.Logger
	bus       *event.Bus
	inner     *event.Bus
	now       func() time.Time
	sanitizer Sanitizer
	newID     func() string

	// policySanitizer is set when the sanitizer follows the configured
	// policy rather than WithSanitizer.
	policySanitizer bool

	// Initialization
	initContent string

	// Session state
	sourceMode bool
	source     string
	lastMarkup string
	closed     bool

	// outbox holds events raised under mu until unlock publishes them.
	outbox []any
}

// New creates an editor holding one empty block, or the WithContent
// markup.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{
		cfg: config.Default(),
		log: logging.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("editor config: %w", err)
	}
	if e.bus == nil {
		e.bus = event.NewBus()
	}
	e.inner = event.NewBus()
	if _, err := e.inner.Subscribe("**", event.HandlerFunc(e.record), event.WithPriority(event.PriorityMonitor)); err != nil {
		return nil, fmt.Errorf("attach outbox: %w", err)
	}
	if e.sanitizer == nil {
		e.sanitizer = NewSanitizer(e.cfg.Editor.SanitizePolicy)
		e.policySanitizer = true
	}

	surfOpts := []surface.Option{surface.WithBus(e.inner), surface.WithLogger(e.log)}
	if e.newID != nil {
		surfOpts = append(surfOpts, surface.WithIDGenerator(e.newID))
	}
	e.surf = surface.New(surfOpts...)
	e.bridge = bridge.New(e.surf, e.log)
	e.tracker = style.NewTracker(e.bridge, e.log)
	e.blocks = block.New(e.surf, block.WithPlaceholder(e.cfg.Editor.Placeholder), block.WithLogger(e.log))
	e.resolver = media.NewResolver(e.cfg.Media)
	e.log = e.log.WithComponent("editor")

	if err := e.blocks.Attach(e.inner); err != nil {
		return nil, fmt.Errorf("attach block model: %w", err)
	}
	if err := e.tracker.Attach(e.inner); err != nil {
		e.blocks.Detach()
		return nil, fmt.Errorf("attach style tracker: %w", err)
	}

	if e.initContent != "" {
		if err := e.loadMarkupLocked(e.initContent); err != nil {
			e.tracker.Detach()
			e.blocks.Detach()
			return nil, err
		}
	} else {
		e.blocks.EnsureBlock()
	}
	e.tracker.Refresh(context.Background(), "")
	e.lastMarkup = e.surf.InnerHTML()

	e.queue = media.NewQueue(e.cfg.Media.QueueSize)

	queued := e.outbox
	e.outbox = nil
	e.publishAll(queued)
	return e, nil
}

// Config returns a copy of the editor configuration.
func (e *Editor) Config() *config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Clone()
}

// Reconfigure applies cfg to later commands: the placeholder of new
// blocks, media limits, the sanitizer policy, table defaults and the
// document version. Existing blocks and the media queue size are kept.
func (e *Editor) Reconfigure(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("editor config: %w", config.ErrValidationFailed)
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("editor config: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEditorClosed
	}
	e.cfg = cfg
	e.resolver = media.NewResolver(cfg.Media)
	e.blocks.SetPlaceholder(cfg.Editor.Placeholder)
	if e.policySanitizer {
		e.sanitizer = NewSanitizer(cfg.Editor.SanitizePolicy)
	}
	e.log.Info("reconfigured: %s", cfg)
	return nil
}

func (e *Editor) mediaResolver() *media.Resolver {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolver
}

// Bus returns the event bus the editor publishes on. Surface, signature
// and document events reach it after the editor released its lock, so
// handlers may call back into the editor.
func (e *Editor) Bus() *event.Bus {
	return e.bus
}

// Close stops the media queue. Pending file insertions fail with
// ErrEditorClosed, including one whose read has not returned yet, and
// later commands do nothing. Close does not wait for such a read. It is
// idempotent.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	// The queue worker may be waiting for e.mu in a completion.
	e.queue.Close()

	e.mu.Lock()
	e.tracker.Detach()
	e.blocks.Detach()
	e.mu.Unlock()
	e.log.Debug("closed")
}

// mutate runs fn under the lock unless the editor is closed or showing its
// source buffer, then publishes document.changed when the markup moved.
func (e *Editor) mutate(fn func() bool) bool {
	e.mu.Lock()
	if e.closed || e.sourceMode {
		e.mu.Unlock()
		return false
	}
	ok := fn()
	e.unlock()
	return ok
}

// unlock releases mu, then publishes the events queued while it was held
// and document.changed when the markup moved.
func (e *Editor) unlock() {
	queued := e.outbox
	e.outbox = nil
	markup, changed := e.diffLocked()
	e.mu.Unlock()

	e.publishAll(queued)
	if changed {
		e.publishChanged(markup)
	}
}

// record queues an event raised on the inner bus. It runs under mu.
func (e *Editor) record(_ context.Context, ev any) error {
	e.outbox = append(e.outbox, ev)
	return nil
}

func (e *Editor) publishAll(queued []any) {
	for _, ev := range queued {
		if err := e.bus.Publish(context.Background(), ev); err != nil {
			e.log.Warn("publish: %v", err)
		}
	}
}

func (e *Editor) diffLocked() (string, bool) {
	markup := e.surf.InnerHTML()
	if markup == e.lastMarkup {
		return markup, false
	}
	e.lastMarkup = markup
	return markup, true
}

func (e *Editor) publishChanged(markup string) {
	ev := event.NewEvent(events.TopicDocumentChanged, events.DocumentChanged{Markup: markup}, eventSource)
	if err := e.bus.Publish(context.Background(), ev); err != nil {
		e.log.Warn("publish change: %v", err)
	}
}

// OnChange calls fn with the new markup whenever the document changes.
func (e *Editor) OnChange(fn func(markup string)) (*event.Subscription, error) {
	return e.bus.Subscribe(events.TopicDocumentChanged, event.AsHandler(func(ctx context.Context, ev event.Event[events.DocumentChanged]) error {
		fn(ev.Payload.Markup)
		return nil
	}))
}

// ApplyFormat issues a native formatting command on the focused block.
// It returns false when nothing is focused. Applying a list type first
// removes the other active list; the signature is re-derived afterwards
// with command taking precedence over native state.
func (e *Editor) ApplyFormat(command, value string) (bool, error) {
	cmd, ok := bridge.ParseCommand(command)
	if !ok {
		return false, e.invalid("command", fmt.Sprintf("unknown command %q", command), ErrUnknownCommand)
	}
	switch cmd {
	case bridge.CreateLink:
		if strings.TrimSpace(value) == "" {
			return false, e.invalid("url", "link URL is empty", ErrInvalidLink)
		}
	case bridge.InsertImage:
		if strings.TrimSpace(value) == "" {
			return false, e.invalid("url", "image URL is empty", ErrInvalidMedia)
		}
	}

	return e.mutate(func() bool {
		e.clearGroup(cmd)
		applied := e.bridge.Apply(cmd, value)
		e.tracker.Refresh(context.Background(), cmd)
		e.log.Debug("format %s applied=%t signature=%s", cmd, applied, e.tracker.Current())
		return applied
	}), nil
}

// clearGroup unapplies the other active member of cmd's list group.
// Alignment members replace each other natively.
func (e *Editor) clearGroup(cmd bridge.Command) {
	tok, ok := style.TokenFor(cmd)
	if !ok {
		return
	}
	g, grouped := style.GroupOf(tok)
	if !grouped || g.Name != style.ListGroup.Name {
		return
	}
	for _, m := range g.Members {
		other := style.CommandFor(m)
		if m != tok && e.bridge.QueryState(other) {
			e.bridge.Apply(other, "")
		}
	}
}

// SetHeading converts the current block to tag: p, h1-h6 or normal.
func (e *Editor) SetHeading(tag string) (bool, error) {
	if _, ok := block.HeadingTag(tag); !ok {
		return false, e.invalid("heading", fmt.Sprintf("unsupported tag %q", tag), ErrInvalidHeading)
	}
	return e.mutate(func() bool {
		ok := e.blocks.ConvertHeading(tag)
		e.tracker.Refresh(context.Background(), "")
		return ok
	}), nil
}

// InsertTable replaces the current block's content with a rows x cols
// table.
func (e *Editor) InsertTable(rows, cols int) (bool, error) {
	if rows < 1 || cols < 1 {
		return false, e.invalid("table", fmt.Sprintf("%dx%d", rows, cols), ErrInvalidDimensions)
	}
	return e.mutate(func() bool {
		return e.structural(e.blocks.InsertTable(rows, cols))
	}), nil
}

// AddTableRow grows the table nearest the focus by one row.
func (e *Editor) AddTableRow() bool {
	return e.mutate(func() bool {
		return e.structural(e.blocks.AddTableRow())
	})
}

// AddTableColumn grows the table nearest the focus by one column.
func (e *Editor) AddTableColumn() bool {
	return e.mutate(func() bool {
		return e.structural(e.blocks.AddTableColumn())
	})
}

// structural re-derives the signature after a structural command.
func (e *Editor) structural(applied bool) bool {
	e.tracker.Refresh(context.Background(), "")
	return applied
}

// InsertLayout replaces the current block's content with a one-row layout
// whose column widths are used verbatim.
func (e *Editor) InsertLayout(widths []float64) (bool, error) {
	if len(widths) == 0 {
		return false, e.invalid("layout", "no columns", ErrInvalidDimensions)
	}
	for _, w := range widths {
		if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return false, e.invalid("layout", fmt.Sprintf("width %v", w), ErrInvalidDimensions)
		}
	}
	return e.mutate(func() bool {
		return e.structural(e.blocks.InsertLayout(widths))
	}), nil
}

// InsertLink appends a link to the current block and moves to a new block.
func (e *Editor) InsertLink(text, url string) (bool, error) {
	text, url = strings.TrimSpace(text), strings.TrimSpace(url)
	if text == "" {
		return false, e.invalid("text", "link text is empty", ErrInvalidLink)
	}
	if url == "" {
		return false, e.invalid("url", "link URL is empty", ErrInvalidLink)
	}
	return e.mutate(func() bool {
		return e.structural(e.blocks.InsertLink(text, url))
	}), nil
}

// InsertMedia appends an image or video to the current block and moves to
// a new block. Invalid sources are rejected synchronously. URL sources are
// applied before InsertMedia returns; file sources are read on the media
// queue and applied in call order. The returned Pending reports the
// outcome; a no-op insertion completes with an empty result.
func (e *Editor) InsertMedia(src media.Source) (*media.Pending, error) {
	resolver := e.mediaResolver()
	if _, err := resolver.Classify(src); err != nil {
		return nil, e.invalid("media", err.Error(), err)
	}

	if src.Kind == media.KindURL {
		res, err := resolver.ResolveURL(src)
		if err != nil {
			return nil, e.invalid("media", err.Error(), err)
		}
		applied := e.mutate(func() bool {
			return e.structural(e.blocks.AppendMedia(res.Node()))
		})
		if !applied {
			return media.Completed(media.Resolved{}, nil), nil
		}
		return media.Completed(res, nil), nil
	}

	return e.queue.Submit(func() (media.Resolved, error) {
		res, err := resolver.ReadFile(src)
		if err != nil {
			e.log.Warn("media %s: %v", src.Name, err)
		}
		return res, err
	}, e.completeMedia), nil
}

// completeMedia applies a resolved file on the queue worker.
func (e *Editor) completeMedia(res media.Resolved) error {
	e.mu.Lock()
	switch {
	case e.closed:
		e.mu.Unlock()
		return ErrEditorClosed
	case e.sourceMode:
		e.mu.Unlock()
		return ErrSourceMode
	}
	applied := e.structural(e.blocks.AppendMedia(res.Node()))
	e.unlock()
	if !applied {
		return media.ErrSkipped
	}
	return nil
}

// Focus activates the block at position as a pointer interaction would.
func (e *Editor) Focus(position int) bool {
	return e.mutate(func() bool {
		return e.blocks.SetActiveBlock(position)
	})
}

// Blur clears focus. The signature falls back to the baseline.
func (e *Editor) Blur() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.surf.Blur()
	e.tracker.Refresh(context.Background(), "")
	e.unlock()
}

// TypeText inserts text at the end of the focused editable.
func (e *Editor) TypeText(text string) bool {
	return e.mutate(func() bool {
		return e.surf.InsertText(text)
	})
}

// KeyUp reports a key release, which re-derives the signature.
func (e *Editor) KeyUp() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.surf.KeyUp()
	e.unlock()
}

// RemoveBlock deletes the block at position. Removing the last block
// leaves a fresh empty one.
func (e *Editor) RemoveBlock(position int) bool {
	return e.mutate(func() bool {
		return e.structural(e.blocks.Remove(position))
	})
}

// Blocks describes the current blocks in order.
func (e *Editor) Blocks() []block.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.blocks.Views()
}

// ActiveSignature returns the active format signature.
func (e *Editor) ActiveSignature() style.Signature {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Current()
}

// IsActive reports whether every token is in the active signature.
func (e *Editor) IsActive(tokens ...style.Token) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Active(tokens...)
}

// Markup returns the document markup verbatim.
func (e *Editor) Markup() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return serialize.Markup(e.surf.Root())
}

// CompactMarkup returns the minified document markup.
func (e *Editor) CompactMarkup() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return serialize.CompactMarkup(e.surf.Root())
}

// Document returns the structured snapshot of the document.
func (e *Editor) Document() serialize.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return serialize.Snapshot(e.surf.Root(), e.cfg.Version, e.now())
}

// DocumentJSON encodes Document, pretty-printed when indent is set.
func (e *Editor) DocumentJSON(indent bool) ([]byte, error) {
	return serialize.JSON(e.Document(), indent)
}

// Tree renders the document as a generic node tree.
func (e *Editor) Tree() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return serialize.Tree(e.surf.Root())
}

// Text returns the plain text of the document, one line per block.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return serialize.Text(e.surf.Root())
}

// Stats counts the document's blocks, words and characters.
func (e *Editor) Stats() serialize.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return serialize.Count(e.surf.Root())
}

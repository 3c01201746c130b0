// Package block implements the block model of the editor document.
//
// The document is the ordered sequence of block elements directly under
// the surface root. The model never retains node references between
// calls: the current block is the block containing the surface focus and
// the active block is the one carrying the "active" class, both resolved
// from the live tree on every call.
package block

import (
	"context"

	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/surface"
	"github.com/dshills/richtext/internal/event"
	"github.com/dshills/richtext/internal/event/events"
	"github.com/dshills/richtext/internal/logging"
)

// Class names used on block-level markup.
const (
	ClassBlock  = "editor-block"
	ClassActive = "active"
	ClassTable  = "editor-table"
	ClassLayout = "layout-table"
)

// DefaultPlaceholder is shown in empty blocks.
const DefaultPlaceholder = "Start typing..."

// View is a read-only description of one block.
type View struct {
	Position int
	ID       string
	Tag      string
	Format   string
	Active   bool
}

// Model performs structural operations on the blocks of a surface.
type Model struct {
	surf        *surface.Surface
	placeholder string

	bus  *event.Bus
	subs []*event.Subscription
	log  *logging.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithPlaceholder sets the placeholder of new blocks.
func WithPlaceholder(p string) Option {
	return func(m *Model) {
		m.placeholder = p
	}
}

// SetPlaceholder changes the placeholder given to blocks created from now
// on.
func (m *Model) SetPlaceholder(p string) {
	m.placeholder = p
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Model) {
		m.log = l
	}
}

// New creates a model over surf.
func New(surf *surface.Surface, opts ...Option) *Model {
	m := &Model{
		surf:        surf,
		placeholder: DefaultPlaceholder,
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.WithComponent("block")
	return m
}

// IsBlock reports whether n is a block element.
func IsBlock(n *html.Node) bool {
	return dom.IsElement(n) && dom.HasClass(n, ClassBlock)
}

// Blocks returns the live block elements in document order.
func (m *Model) Blocks() []*html.Node {
	var out []*html.Node
	for _, c := range dom.ElementChildren(m.surf.Root()) {
		if IsBlock(c) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of blocks.
func (m *Model) Len() int {
	return len(m.Blocks())
}

// At returns the block at pos, or nil.
func (m *Model) At(pos int) *html.Node {
	blocks := m.Blocks()
	if pos < 0 || pos >= len(blocks) {
		return nil
	}
	return blocks[pos]
}

// Position returns the index of block n, or -1.
func (m *Model) Position(n *html.Node) int {
	for i, b := range m.Blocks() {
		if b == n {
			return i
		}
	}
	return -1
}

// Current returns the block holding the surface focus, or nil.
func (m *Model) Current() *html.Node {
	focused := m.surf.Focused()
	if focused == nil {
		return nil
	}
	blk := dom.Closest(focused, IsBlock)
	if blk == nil || blk.Parent != m.surf.Root() {
		return nil
	}
	return blk
}

// Active returns the block carrying the active class, or nil.
func (m *Model) Active() *html.Node {
	for _, b := range m.Blocks() {
		if dom.HasClass(b, ClassActive) {
			return b
		}
	}
	return nil
}

// Views describes every block.
func (m *Model) Views() []View {
	blocks := m.Blocks()
	out := make([]View, len(blocks))
	for i, b := range blocks {
		out[i] = View{
			Position: i,
			ID:       dom.Attr(b, surface.AttrID),
			Tag:      b.Data,
			Format:   Format(b),
			Active:   dom.HasClass(b, ClassActive),
		}
	}
	return out
}

// Format returns the annotated signature of block n.
func Format(n *html.Node) string {
	if f := dom.Attr(n, surface.AttrType); f != "" {
		return f
	}
	return style.Normal
}

// NewBlock creates a detached empty block element.
func (m *Model) NewBlock(tag string) *html.Node {
	return dom.Element(tag,
		"class", ClassBlock,
		surface.AttrContentEditable, "true",
		surface.AttrID, m.surf.NewID(),
		surface.AttrType, style.Normal,
		surface.AttrPlaceholder, m.placeholder,
	)
}

// SetActiveBlock makes the block at pos active and clicks it.
func (m *Model) SetActiveBlock(pos int) bool {
	blk := m.At(pos)
	if blk == nil {
		return false
	}
	m.markActive(blk)
	return m.surf.Click(dom.Attr(blk, surface.AttrID))
}

// activate marks blk active and focuses it.
func (m *Model) activate(blk *html.Node) {
	m.markActive(blk)
	m.surf.Focus(dom.Attr(blk, surface.AttrID))
}

func (m *Model) markActive(blk *html.Node) {
	for _, b := range m.Blocks() {
		if b != blk && dom.HasClass(b, ClassActive) {
			dom.RemoveClass(b, ClassActive)
		}
	}
	dom.AddClass(blk, ClassActive)
}

// EnsureBlock inserts, activates and focuses a default block when the
// document holds none. It reports whether a block was inserted.
func (m *Model) EnsureBlock() bool {
	if m.Len() > 0 {
		return false
	}
	blk := m.NewBlock("div")
	m.surf.Root().AppendChild(blk)
	m.activate(blk)

	id := dom.Attr(blk, surface.AttrID)
	m.log.Debug("healed empty document with block %s", id)
	if m.bus != nil {
		ev := event.NewEvent(events.TopicDocumentBlockHealed, events.DocumentBlockHealed{BlockID: id}, "block")
		if err := m.bus.Publish(context.Background(), ev); err != nil {
			m.log.Warn("publish heal: %v", err)
		}
	}
	return true
}

// Remove deletes the block at pos. The document heals to a default block
// when the last block goes.
func (m *Model) Remove(pos int) bool {
	blk := m.At(pos)
	if blk == nil {
		return false
	}
	if !m.surf.RemoveNode(dom.Attr(blk, surface.AttrID)) {
		return false
	}
	m.EnsureBlock()
	return true
}

// Annotate re-derives the data-type of block n from its computed style.
func (m *Model) Annotate(n *html.Node) {
	sig := style.FromComputed(m.surf.ComputedStyle(n), surface.ListKind(n))
	dom.SetAttr(n, surface.AttrType, sig.Format())
}

// AnnotateAll re-derives the data-type of every block.
func (m *Model) AnnotateAll() {
	for _, b := range m.Blocks() {
		m.Annotate(b)
	}
}

// Attach subscribes the model to native surface events on bus: clicks
// activate the enclosing block, removals and replacements heal the
// document, and content changes re-annotate blocks. Structural changes
// re-annotate only the block they touched; retagged blocks keep the
// annotation they carried over.
func (m *Model) Attach(bus *event.Bus) error {
	m.bus = bus

	sub, err := bus.Subscribe(events.TopicSurfaceClick, event.AsHandler(func(ctx context.Context, e event.Event[events.SurfacePointer]) error {
		if blk := dom.Closest(m.surf.Lookup(e.Payload.TargetID), IsBlock); blk != nil {
			m.markActive(blk)
		}
		return nil
	}), event.WithPriority(event.PriorityCritical))
	if err != nil {
		return err
	}
	m.subs = append(m.subs, sub)

	sub, err = bus.Subscribe(events.TopicSurfaceInput, event.AsHandler(func(ctx context.Context, e event.Event[events.SurfaceInput]) error {
		switch e.Payload.Type {
		case events.InputRetag:
			return nil
		case events.InputStructure:
			if blk := dom.Closest(m.surf.Lookup(e.Payload.TargetID), IsBlock); blk != nil {
				m.Annotate(blk)
			}
			return nil
		case events.InputRemove, events.InputReplace:
			m.EnsureBlock()
		}
		m.AnnotateAll()
		return nil
	}), event.WithPriority(event.PriorityCritical))
	if err != nil {
		return err
	}
	m.subs = append(m.subs, sub)
	return nil
}

// Detach cancels the model's bus subscriptions.
func (m *Model) Detach() {
	for _, sub := range m.subs {
		_ = m.bus.Unsubscribe(sub)
	}
	m.subs = nil
}

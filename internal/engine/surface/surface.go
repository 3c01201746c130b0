// Package surface implements a headless editable surface.
//
// The surface stands in for a browser's contenteditable region: it owns an
// HTML node tree rooted at <div id="editor">, executes the native editing
// command vocabulary against the focused editable element, answers command
// state and computed style queries, and publishes native events (input,
// click, pointer and key release, focus) on the event bus.
//
// Focus is stored as the data-id of the focused editable and resolved
// against the live tree on every use. When the id no longer resolves the
// focus is detached: commands do nothing and every query reports false.
package surface

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/dshills/richtext/internal/dom"
	"github.com/dshills/richtext/internal/event"
	"github.com/dshills/richtext/internal/event/events"
	"github.com/dshills/richtext/internal/event/topic"
	"github.com/dshills/richtext/internal/logging"
)

// Attribute names shared by every editable element.
const (
	AttrID              = "data-id"
	AttrType            = "data-type"
	AttrContentEditable = "contenteditable"
	AttrPlaceholder     = "placeholder"

	// RootID is the id attribute of the surface root.
	RootID = "editor"
)

const eventSource = "surface"

// Surface is a headless editable document.
type Surface struct {
	root    *html.Node
	focusID string

	bus   *event.Bus
	log   *logging.Logger
	newID func() string
}

// Option configures a Surface.
type Option func(*Surface)

// WithBus publishes native events on bus.
func WithBus(bus *event.Bus) Option {
	return func(s *Surface) {
		s.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Surface) {
		s.log = l
	}
}

// WithIDGenerator replaces the data-id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Surface) {
		s.newID = fn
	}
}

// New creates an empty surface.
func New(opts ...Option) *Surface {
	s := &Surface{
		root:  dom.Element("div", "id", RootID, AttrContentEditable, "true"),
		log:   logging.Nop(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("surface")
	return s
}

// Root returns the root element. Callers that mutate the tree outside the
// command vocabulary are structural collaborators and must not retain
// references to descendants across operations.
func (s *Surface) Root() *html.Node {
	return s.root
}

// NewID returns a fresh data-id.
func (s *Surface) NewID() string {
	return s.newID()
}

// InnerHTML renders the document.
func (s *Surface) InnerHTML() string {
	return dom.InnerHTML(s.root)
}

// SetInnerHTML replaces the document with markup. Focus is kept when the
// focused id still resolves afterwards.
func (s *Surface) SetInnerHTML(markup string) error {
	if err := dom.SetInnerHTML(s.root, markup); err != nil {
		return err
	}
	s.publishInput("", events.InputReplace, "")
	return nil
}

// Lookup returns the editable element carrying id, or nil.
func (s *Surface) Lookup(id string) *html.Node {
	if id == "" {
		return nil
	}
	n := dom.FindByAttr(s.root, AttrID, id)
	if !IsEditable(n) {
		return nil
	}
	return n
}

// IsEditable reports whether n is an element that accepts focus.
func IsEditable(n *html.Node) bool {
	return dom.IsElement(n) && dom.Attr(n, AttrContentEditable) == "true" && dom.HasAttr(n, AttrID)
}

// FocusedID returns the id of the focused editable, which may be detached.
func (s *Surface) FocusedID() string {
	return s.focusID
}

// Focused returns the focused editable element, or nil when nothing is
// focused or the focus is detached.
func (s *Surface) Focused() *html.Node {
	return s.Lookup(s.focusID)
}

// Focus moves focus to the editable carrying id.
func (s *Surface) Focus(id string) bool {
	if s.Lookup(id) == nil {
		return false
	}
	prev := s.focusID
	s.focusID = id
	if prev != id {
		publish(s, events.TopicSurfaceFocus, events.SurfaceFocus{PreviousID: prev, TargetID: id})
	}
	return true
}

// Blur clears focus.
func (s *Surface) Blur() {
	if s.focusID == "" {
		return
	}
	prev := s.focusID
	s.focusID = ""
	publish(s, events.TopicSurfaceFocus, events.SurfaceFocus{PreviousID: prev})
}

// Click simulates a pointer press and release on the editable carrying id.
func (s *Surface) Click(id string) bool {
	if !s.Focus(id) {
		return false
	}
	publish(s, events.TopicSurfaceClick, events.SurfacePointer{TargetID: id})
	publish(s, events.TopicSurfacePointerUp, events.SurfacePointer{TargetID: id})
	return true
}

// KeyUp simulates a key release on the focused editable.
func (s *Surface) KeyUp() {
	publish(s, events.TopicSurfaceKeyUp, events.SurfaceKey{TargetID: s.focusID})
}

// InsertText appends text at the end of the focused editable. Text is
// normalized to NFC. Inside a list the text lands in the last item.
func (s *Surface) InsertText(text string) bool {
	el := s.Focused()
	if el == nil || text == "" {
		return false
	}
	text = norm.NFC.String(text)
	target := insertionPoint(el)
	if last := target.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += text
	} else {
		target.AppendChild(dom.Text(text))
	}
	s.publishInput(s.focusID, events.InputText, "")
	return true
}

// InsertHTML parses markup and appends it to the focused editable.
func (s *Surface) InsertHTML(markup string) bool {
	el := s.Focused()
	if el == nil {
		return false
	}
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		s.log.Warn("insertHTML: %v", err)
		return false
	}
	target := insertionPoint(el)
	for _, n := range nodes {
		target.AppendChild(n)
	}
	s.publishInput(s.focusID, events.InputHTML, "")
	return true
}

// RemoveNode detaches the editable carrying id. A focused node leaves the
// focus detached.
func (s *Surface) RemoveNode(id string) bool {
	n := s.Lookup(id)
	if n == nil || n == s.root {
		return false
	}
	dom.Detach(n)
	s.publishInput(id, events.InputRemove, "")
	return true
}

// NotifyStructure publishes a structural input event for id. Structural
// collaborators call it after mutating the tree through Root.
func (s *Surface) NotifyStructure(id string) {
	s.publishInput(id, events.InputStructure, "")
}

// NotifyRetag publishes a retag input event for the block id.
func (s *Surface) NotifyRetag(id string) {
	s.publishInput(id, events.InputRetag, "")
}

// insertionPoint returns the last list item when el holds a list, el
// otherwise.
func insertionPoint(el *html.Node) *html.Node {
	if list := directList(el); list != nil {
		items := dom.ElementChildren(list)
		if len(items) > 0 {
			return items[len(items)-1]
		}
	}
	return el
}

func (s *Surface) publishInput(id string, kind events.InputType, command string) {
	publish(s, events.TopicSurfaceInput, events.SurfaceInput{TargetID: id, Type: kind, Command: command})
}

func publish[T any](s *Surface, t topic.Topic, payload T) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(context.Background(), event.NewEvent(t, payload, eventSource)); err != nil {
		s.log.Warn("publish %s: %v", t, err)
	}
}

package bridge

import (
	"testing"

	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
	"github.com/dshills/richtext/internal/engine/surface"
)

type fakeNative struct {
	focused *html.Node
	execs   []string
	state   map[string]bool
}

func (f *fakeNative) ExecCommand(cmd, value string) bool {
	f.execs = append(f.execs, cmd+"="+value)
	return true
}

func (f *fakeNative) QueryCommandState(cmd string) bool {
	return f.state[cmd]
}

func (f *fakeNative) ComputedStyle(n *html.Node) surface.StyleSnapshot {
	return surface.ComputedStyle(n)
}

func (f *fakeNative) Focused() *html.Node {
	return f.focused
}

func TestApplyRequiresFocus(t *testing.T) {
	n := &fakeNative{state: map[string]bool{"bold": true}}
	b := New(n, nil)

	if b.Apply(Bold, "") {
		t.Error("Apply succeeded without focus")
	}
	if b.QueryState(Bold) {
		t.Error("QueryState true without focus")
	}
	if len(n.execs) != 0 {
		t.Errorf("native called: %v", n.execs)
	}

	n.focused = dom.Element("div")
	if !b.Apply(CreateLink, "http://x") {
		t.Error("Apply failed with focus")
	}
	if !b.QueryState(Bold) {
		t.Error("QueryState false with focus")
	}
	if len(n.execs) != 1 || n.execs[0] != "createLink=http://x" {
		t.Errorf("execs = %v", n.execs)
	}
}

func TestParseCommand(t *testing.T) {
	for _, c := range Commands() {
		got, ok := ParseCommand(string(c))
		if !ok || got != c {
			t.Errorf("ParseCommand(%q) = %q, %v", c, got, ok)
		}
	}
	if _, ok := ParseCommand("strikeThrough"); ok {
		t.Error("unknown command parsed")
	}
	if len(Commands()) != 13 {
		t.Errorf("vocabulary size = %d", len(Commands()))
	}
}

func TestStateful(t *testing.T) {
	tests := map[Command]bool{
		Bold:              true,
		JustifyCenter:     true,
		InsertOrderedList: true,
		Subscript:         true,
		CreateLink:        false,
		InsertImage:       false,
		FormatBlock:       false,
		Command("nope"):   false,
	}
	for c, want := range tests {
		if got := c.Stateful(); got != want {
			t.Errorf("%s.Stateful() = %v", c, got)
		}
	}
}

func TestBridgeOverSurface(t *testing.T) {
	s := surface.New()
	el := dom.Element("div", surface.AttrContentEditable, "true", surface.AttrID, "a")
	s.Root().AppendChild(el)
	b := New(s, nil)

	if b.Apply(Italic, "") {
		t.Error("applied before focus")
	}
	s.Focus("a")
	if !b.Apply(Italic, "") || !b.QueryState(Italic) {
		t.Error("italic not applied")
	}
	if !b.QueryComputedStyle(el).Italic() {
		t.Error("computed style not italic")
	}
}

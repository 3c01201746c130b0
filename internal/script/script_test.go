package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richtext/internal/engine"
	"github.com/dshills/richtext/internal/engine/serialize"
)

func newState(t *testing.T) (*State, *engine.Editor) {
	t.Helper()
	ed, err := engine.New()
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(ed.Close)

	s, err := New(ed)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, ed
}

func run(t *testing.T, s *State, code string) {
	t.Helper()
	if err := s.DoString(context.Background(), code); err != nil {
		t.Fatalf("DoString(%q) error = %v", code, err)
	}
}

func tableStrings(v lua.LValue) []string {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.Len(); i++ {
		out = append(out, tbl.RawGetInt(i).String())
	}
	return out
}

func TestNewRequiresEditor(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoEditor) {
		t.Errorf("New(nil) error = %v, want ErrNoEditor", err)
	}
}

func TestFormatAndType(t *testing.T) {
	s, ed := newState(t)
	run(t, s, `
		applied = editor.format("bold")
		typed = editor.type("Hello")
		sig = editor.signature()
		both = editor.active("bold", "justifyLeft")
		mixed = editor.active("bold", "italic")
		txt = editor.text()
	`)

	if s.GetGlobal("both") != lua.LTrue || s.GetGlobal("mixed") != lua.LFalse {
		t.Errorf("both = %v, mixed = %v", s.GetGlobal("both"), s.GetGlobal("mixed"))
	}
	if got := s.GetGlobal("txt").String(); got != "Hello" {
		t.Errorf("text = %q", got)
	}

	if s.GetGlobal("applied") != lua.LTrue || s.GetGlobal("typed") != lua.LTrue {
		t.Errorf("applied = %v, typed = %v", s.GetGlobal("applied"), s.GetGlobal("typed"))
	}
	sig := strings.Join(tableStrings(s.GetGlobal("sig")), " ")
	if !strings.Contains(sig, "bold") || !strings.Contains(sig, "justifyLeft") {
		t.Errorf("signature = %q", sig)
	}
	b := ed.Document().Blocks[0]
	if b.Content != "Hello" || b.Format != "bold" {
		t.Errorf("block = %+v", b)
	}
}

func TestValidationRaises(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"heading", `editor.heading("h9")`, "invalid heading"},
		{"command", `editor.format("shout")`, "invalid command"},
		{"table", `editor.table(0, 2)`, "invalid table"},
		{"layout", `editor.layout({40, -1})`, "invalid layout"},
		{"layout type", `editor.layout({"wide"})`, "widths must be numbers"},
		{"link", `editor.link("", "https://example.com")`, "invalid text"},
		{"media", `editor.media("http://x/a.txt")`, "invalid media"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newState(t)
			err := s.DoString(context.Background(), tt.code)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestPcallCatchesValidation(t *testing.T) {
	s, _ := newState(t)
	run(t, s, `ok, msg = pcall(editor.heading, "h9")`)
	if s.GetGlobal("ok") != lua.LFalse {
		t.Errorf("ok = %v", s.GetGlobal("ok"))
	}
	if msg := s.GetGlobal("msg").String(); !strings.Contains(msg, "invalid heading") {
		t.Errorf("msg = %q", msg)
	}
}

func TestTableDefaultsAndGrowth(t *testing.T) {
	s, ed := newState(t)
	run(t, s, `
		editor.table()
		editor.add_column()
		editor.add_row()
	`)

	tc, ok := ed.Document().Blocks[0].Content.(serialize.TableContent)
	if !ok || tc.RowCount != 3 || tc.ColumnCount != 3 {
		t.Errorf("table = %+v", ed.Document().Blocks[0])
	}
}

func TestLayout(t *testing.T) {
	s, ed := newState(t)
	run(t, s, `editor.layout({25, 75})`)

	markup := ed.Markup()
	if !strings.Contains(markup, "width: 25%") || !strings.Contains(markup, "width: 75%") {
		t.Errorf("markup = %s", markup)
	}
}

func TestMediaLinkAndFocus(t *testing.T) {
	s, ed := newState(t)
	run(t, s, `
		m = editor.media("http://x/a.png")
		l = editor.link("docs", "https://example.com")
		n = #editor.blocks()
		f = editor.focus(1)
		first = editor.blocks()[1].active
		missing = editor.focus(10)
	`)

	if s.GetGlobal("m") != lua.LTrue || s.GetGlobal("l") != lua.LTrue {
		t.Errorf("media = %v, link = %v", s.GetGlobal("m"), s.GetGlobal("l"))
	}
	if n := s.GetGlobal("n"); n != lua.LNumber(3) {
		t.Errorf("blocks = %v, want 3", n)
	}
	if s.GetGlobal("f") != lua.LTrue || s.GetGlobal("first") != lua.LTrue {
		t.Errorf("focus = %v, first active = %v", s.GetGlobal("f"), s.GetGlobal("first"))
	}
	if s.GetGlobal("missing") != lua.LFalse {
		t.Errorf("focus(10) = %v", s.GetGlobal("missing"))
	}
	if got := ed.Document().Blocks[0].Type; got != serialize.TypeImage {
		t.Errorf("first block type = %q", got)
	}
}

func TestBlurMakesCommandsNoOps(t *testing.T) {
	s, ed := newState(t)
	before := ed.Markup()
	run(t, s, `
		editor.blur()
		applied = editor.format("italic")
		removed = editor.remove(5)
	`)

	if s.GetGlobal("applied") != lua.LFalse || s.GetGlobal("removed") != lua.LFalse {
		t.Errorf("applied = %v, removed = %v", s.GetGlobal("applied"), s.GetGlobal("removed"))
	}
	if ed.Markup() != before {
		t.Errorf("markup changed while detached")
	}
}

func TestMarkupAndDocument(t *testing.T) {
	s, ed := newState(t)
	run(t, s, `
		editor.type("Title")
		editor.heading("h2")
		html = editor.markup()
		doc = editor.document()
	`)

	if got := s.GetGlobal("html").String(); got != ed.Markup() {
		t.Errorf("markup = %q, want %q", got, ed.Markup())
	}
	doc := s.GetGlobal("doc").String()
	if got := gjson.Get(doc, "blocks.0.type").String(); got != serialize.TypeHeading {
		t.Errorf("type = %q in %s", got, doc)
	}
	if got := gjson.Get(doc, "blocks.0.level").Int(); got != 2 {
		t.Errorf("level = %d", got)
	}
	if got := gjson.Get(doc, "blocks.0.content").String(); got != "Title" {
		t.Errorf("content = %q", got)
	}
}

func TestSandbox(t *testing.T) {
	s, _ := newState(t)
	run(t, s, `
		closed = os == nil and io == nil and debug == nil
			and require == nil and dofile == nil and loadfile == nil and load == nil
		helpers = string.upper("x") == "X" and math.max(1, 2) == 2 and table.concat({"a", "b"}) == "ab"
	`)

	if s.GetGlobal("closed") != lua.LTrue {
		t.Error("host libraries are reachable")
	}
	if s.GetGlobal("helpers") != lua.LTrue {
		t.Error("safe libraries are missing")
	}
}

func TestContextCancelsScript(t *testing.T) {
	s, _ := newState(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.DoString(ctx, `while true do end`) }()

	select {
	case err := <-done:
		if err == nil {
			t.Error("endless script returned nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("script was not cancelled")
	}

	// The state stays usable.
	run(t, s, `x = 1`)
}

func TestDoFile(t *testing.T) {
	s, ed := newState(t)
	path := filepath.Join(t.TempDir(), "macro.lua")
	if err := os.WriteFile(path, []byte(`editor.format("underline")
editor.type("u")
`), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := s.DoFile(context.Background(), path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if got := ed.Document().Blocks[0].Format; got != "underline" {
		t.Errorf("format = %q", got)
	}

	if err := s.DoFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Error("DoFile(missing) returned nil")
	}
}

func TestClose(t *testing.T) {
	s, _ := newState(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString after Close error = %v, want ErrStateClosed", err)
	}
	if s.GetGlobal("x") != lua.LNil {
		t.Error("GetGlobal after Close returned a value")
	}
}

package script

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/richtext/internal/engine/media"
	"github.com/dshills/richtext/internal/engine/style"
)

// register installs the editor module as a global table.
func (s *State) register() {
	funcs := map[string]lua.LGFunction{
		"format":     s.format,
		"heading":    s.heading,
		"table":      s.table,
		"add_row":    s.addRow,
		"add_column": s.addColumn,
		"layout":     s.layout,
		"link":       s.link,
		"media":      s.media,
		"type":       s.typeText,
		"focus":      s.focus,
		"blur":       s.blur,
		"remove":     s.remove,
		"blocks":     s.blocks,
		"markup":     s.markup,
		"document":   s.document,
		"signature":  s.signature,
		"active":     s.active,
		"text":       s.text,
	}
	s.L.SetGlobal(ModuleName, s.L.SetFuncs(s.L.NewTable(), funcs))
}

// push returns ok to Lua or raises err.
func push(L *lua.LState, ok bool, err error) int {
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LBool(ok))
	return 1
}

// format(cmd [, value]) -> bool
func (s *State) format(L *lua.LState) int {
	cmd := L.CheckString(1)
	value := L.OptString(2, "")
	ok, err := s.editor.ApplyFormat(cmd, value)
	return push(L, ok, err)
}

// heading(tag) -> bool
func (s *State) heading(L *lua.LState) int {
	ok, err := s.editor.SetHeading(L.CheckString(1))
	return push(L, ok, err)
}

// table([rows [, cols]]) -> bool
// Missing dimensions fall back to the configured defaults.
func (s *State) table(L *lua.LState) int {
	def := s.editor.Config().Editor
	rows := L.OptInt(1, def.DefaultTableRows)
	cols := L.OptInt(2, def.DefaultTableCols)
	ok, err := s.editor.InsertTable(rows, cols)
	return push(L, ok, err)
}

// add_row() -> bool
func (s *State) addRow(L *lua.LState) int {
	return push(L, s.editor.AddTableRow(), nil)
}

// add_column() -> bool
func (s *State) addColumn(L *lua.LState) int {
	return push(L, s.editor.AddTableColumn(), nil)
}

// layout({w1, w2, ...}) -> bool
func (s *State) layout(L *lua.LState) int {
	tbl := L.CheckTable(1)
	widths := make([]float64, 0, tbl.Len())
	for i := 1; i <= tbl.Len(); i++ {
		n, ok := tbl.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.ArgError(1, "widths must be numbers")
			return 0
		}
		widths = append(widths, float64(n))
	}
	ok, err := s.editor.InsertLayout(widths)
	return push(L, ok, err)
}

// link(text, url) -> bool
func (s *State) link(L *lua.LState) int {
	ok, err := s.editor.InsertLink(L.CheckString(1), L.CheckString(2))
	return push(L, ok, err)
}

// media(url) -> bool
// URL media is applied before the call returns.
func (s *State) media(L *lua.LState) int {
	p, err := s.editor.InsertMedia(media.URL(L.CheckString(1)))
	if err != nil {
		return push(L, false, err)
	}
	res, err := p.Wait(context.Background())
	return push(L, res.Src != "", err)
}

// type(text) -> bool
func (s *State) typeText(L *lua.LState) int {
	return push(L, s.editor.TypeText(L.CheckString(1)), nil)
}

// focus(n) -> bool
// Blocks are numbered from 1.
func (s *State) focus(L *lua.LState) int {
	return push(L, s.editor.Focus(L.CheckInt(1)-1), nil)
}

// blur()
func (s *State) blur(L *lua.LState) int {
	s.editor.Blur()
	return 0
}

// remove(n) -> bool
func (s *State) remove(L *lua.LState) int {
	return push(L, s.editor.RemoveBlock(L.CheckInt(1)-1), nil)
}

// blocks() -> {{id=, tag=, format=, active=}, ...}
func (s *State) blocks(L *lua.LState) int {
	out := L.NewTable()
	for _, v := range s.editor.Blocks() {
		b := L.NewTable()
		b.RawSetString("id", lua.LString(v.ID))
		b.RawSetString("tag", lua.LString(v.Tag))
		b.RawSetString("format", lua.LString(v.Format))
		b.RawSetString("active", lua.LBool(v.Active))
		out.Append(b)
	}
	L.Push(out)
	return 1
}

// markup() -> string
func (s *State) markup(L *lua.LState) int {
	L.Push(lua.LString(s.editor.Markup()))
	return 1
}

// document([indent]) -> string
// Returns the serialized document as JSON.
func (s *State) document(L *lua.LState) int {
	data, err := s.editor.DocumentJSON(L.OptBool(1, false))
	if err != nil {
		L.RaiseError("document: %v", err)
		return 0
	}
	L.Push(lua.LString(data))
	return 1
}

// signature() -> {"bold", "justifyLeft", ...}
// active reports whether every named token is active.
func (s *State) active(L *lua.LState) int {
	tokens := make([]style.Token, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		tokens = append(tokens, style.Token(L.CheckString(i)))
	}
	L.Push(lua.LBool(s.editor.IsActive(tokens...)))
	return 1
}

func (s *State) text(L *lua.LState) int {
	L.Push(lua.LString(s.editor.Text()))
	return 1
}

func (s *State) signature(L *lua.LState) int {
	out := L.NewTable()
	for _, tok := range s.editor.ActiveSignature().Strings() {
		out.Append(lua.LString(tok))
	}
	L.Push(out)
	return 1
}

// Package bridge issues native editing commands and reads native state.
//
// The Bridge is the only path from the editor core to the native engine.
// It knows the command vocabulary and nothing about what a command changes.
package bridge

import (
	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/engine/surface"
	"github.com/dshills/richtext/internal/logging"
)

// Command is a native editing command name.
type Command string

// Command vocabulary.
const (
	Bold                Command = surface.CmdBold
	Italic              Command = surface.CmdItalic
	Underline           Command = surface.CmdUnderline
	InsertOrderedList   Command = surface.CmdInsertOrderedList
	InsertUnorderedList Command = surface.CmdInsertUnorderedList
	JustifyLeft         Command = surface.CmdJustifyLeft
	JustifyCenter       Command = surface.CmdJustifyCenter
	JustifyRight        Command = surface.CmdJustifyRight
	Superscript         Command = surface.CmdSuperscript
	Subscript           Command = surface.CmdSubscript
	CreateLink          Command = surface.CmdCreateLink
	InsertImage         Command = surface.CmdInsertImage
	FormatBlock         Command = surface.CmdFormatBlock
)

var vocabulary = []Command{
	Bold, Italic, Underline,
	InsertOrderedList, InsertUnorderedList,
	JustifyLeft, JustifyCenter, JustifyRight,
	Superscript, Subscript,
	CreateLink, InsertImage, FormatBlock,
}

// Commands returns the full command vocabulary.
func Commands() []Command {
	out := make([]Command, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// ParseCommand returns the command named s.
func ParseCommand(s string) (Command, bool) {
	for _, c := range vocabulary {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Stateful reports whether c has a queryable on/off state.
func (c Command) Stateful() bool {
	switch c {
	case CreateLink, InsertImage, FormatBlock:
		return false
	}
	_, ok := ParseCommand(string(c))
	return ok
}

// StyleSnapshot is the effective style of a node.
type StyleSnapshot = surface.StyleSnapshot

// Native is the editable-region primitive the bridge drives.
type Native interface {
	ExecCommand(cmd, value string) bool
	QueryCommandState(cmd string) bool
	ComputedStyle(n *html.Node) surface.StyleSnapshot
	Focused() *html.Node
}

// Bridge issues commands to a Native engine.
type Bridge struct {
	native Native
	log    *logging.Logger
}

// New creates a Bridge over native.
func New(native Native, log *logging.Logger) *Bridge {
	if log == nil {
		log = logging.Nop()
	}
	return &Bridge{native: native, log: log.WithComponent("bridge")}
}

// Apply issues cmd with an optional value. With nothing focused it does
// nothing and returns false.
func (b *Bridge) Apply(cmd Command, value string) bool {
	if b.native.Focused() == nil {
		b.log.Debug("apply %s: no focus", cmd)
		return false
	}
	return b.native.ExecCommand(string(cmd), value)
}

// QueryState reports whether cmd is active at the focus. Unfocused or
// detached targets report false.
func (b *Bridge) QueryState(cmd Command) bool {
	if b.native.Focused() == nil {
		return false
	}
	return b.native.QueryCommandState(string(cmd))
}

// QueryComputedStyle reads the effective style of n.
func (b *Bridge) QueryComputedStyle(n *html.Node) StyleSnapshot {
	return b.native.ComputedStyle(n)
}

// Focused returns the focused editable, or nil.
func (b *Bridge) Focused() *html.Node {
	return b.native.Focused()
}

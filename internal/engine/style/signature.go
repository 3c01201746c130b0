// Package style tracks the active formatting signature.
//
// A Signature is a set of style tokens. Alignment and list tokens form
// exclusive groups: a Signature produced by this package never holds more
// than one member of either group.
package style

import (
	"strings"

	"github.com/dshills/richtext/internal/engine/bridge"
)

// Token is a single style token.
type Token string

// Tokens in canonical order.
const (
	Bold          Token = "bold"
	Italic        Token = "italic"
	Underline     Token = "underline"
	Superscript   Token = "superscript"
	Subscript     Token = "subscript"
	JustifyLeft   Token = "justifyLeft"
	JustifyCenter Token = "justifyCenter"
	JustifyRight  Token = "justifyRight"
	OrderedList   Token = "orderedList"
	UnorderedList Token = "unorderedList"
)

// Normal is the format string of an empty signature.
const Normal = "normal"

var canonical = []Token{
	Bold, Italic, Underline, Superscript, Subscript,
	JustifyLeft, JustifyCenter, JustifyRight,
	OrderedList, UnorderedList,
}

// Group is an exclusive set of tokens.
type Group struct {
	Name    string
	Members []Token
}

// Exclusive groups.
var (
	AlignGroup = Group{Name: "align", Members: []Token{JustifyLeft, JustifyCenter, JustifyRight}}
	ListGroup  = Group{Name: "list", Members: []Token{OrderedList, UnorderedList}}
)

// Groups returns the exclusive groups.
func Groups() []Group {
	return []Group{AlignGroup, ListGroup}
}

// GroupOf returns the exclusive group containing t.
func GroupOf(t Token) (Group, bool) {
	for _, g := range Groups() {
		for _, m := range g.Members {
			if m == t {
				return g, true
			}
		}
	}
	return Group{}, false
}

// TokenFor maps a stateful command to its token.
func TokenFor(cmd bridge.Command) (Token, bool) {
	switch cmd {
	case bridge.InsertOrderedList:
		return OrderedList, true
	case bridge.InsertUnorderedList:
		return UnorderedList, true
	}
	if !cmd.Stateful() {
		return "", false
	}
	return Token(cmd), true
}

// CommandFor maps a token back to the command that toggles it.
func CommandFor(t Token) bridge.Command {
	switch t {
	case OrderedList:
		return bridge.InsertOrderedList
	case UnorderedList:
		return bridge.InsertUnorderedList
	}
	return bridge.Command(t)
}

func (t Token) index() int {
	for i, c := range canonical {
		if c == t {
			return i
		}
	}
	return -1
}

// Signature is an immutable set of tokens.
type Signature uint16

// NewSignature builds a signature from tokens. Unknown tokens are ignored.
// Group exclusivity is not enforced; use Resolve for that.
func NewSignature(tokens ...Token) Signature {
	var s Signature
	for _, t := range tokens {
		s = s.With(t)
	}
	return s
}

// ParseFormat parses a dash-joined format string. "normal" and "" yield
// the empty signature.
func ParseFormat(format string) Signature {
	if format == "" || format == Normal {
		return 0
	}
	var s Signature
	for _, part := range strings.Split(format, "-") {
		s = s.With(Token(part))
	}
	return s
}

// Has reports whether t is in s.
func (s Signature) Has(t Token) bool {
	i := t.index()
	return i >= 0 && s&(1<<i) != 0
}

// With returns s plus t.
func (s Signature) With(t Token) Signature {
	if i := t.index(); i >= 0 {
		return s | 1<<i
	}
	return s
}

// Without returns s minus t.
func (s Signature) Without(t Token) Signature {
	if i := t.index(); i >= 0 {
		return s &^ (1 << i)
	}
	return s
}

// Only returns s with t on and every other member of t's group off.
func (s Signature) Only(t Token) Signature {
	if g, ok := GroupOf(t); ok {
		for _, m := range g.Members {
			s = s.Without(m)
		}
	}
	return s.With(t)
}

// Empty reports whether s holds no tokens.
func (s Signature) Empty() bool {
	return s == 0
}

// Tokens returns the members of s in canonical order.
func (s Signature) Tokens() []Token {
	var out []Token
	for _, t := range canonical {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Strings returns the members of s as strings in canonical order.
func (s Signature) Strings() []string {
	tokens := s.Tokens()
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}

// Format joins the members of s with "-", or returns "normal".
func (s Signature) Format() string {
	if s.Empty() {
		return Normal
	}
	return strings.Join(s.Strings(), "-")
}

// String implements fmt.Stringer.
func (s Signature) String() string {
	return s.Format()
}

// Resolve enforces group exclusivity. Within each group the first member
// in group order wins.
func (s Signature) Resolve() Signature {
	for _, g := range Groups() {
		kept := false
		for _, m := range g.Members {
			if !s.Has(m) {
				continue
			}
			if kept {
				s = s.Without(m)
			}
			kept = true
		}
	}
	return s
}

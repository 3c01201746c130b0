package surface

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
)

// StyleSnapshot holds the effective values of the properties the editor
// tracks for one element.
type StyleSnapshot struct {
	FontWeight     string
	FontStyle      string
	TextDecoration string
	TextAlign      string
	VerticalAlign  string
}

// Bold reports whether FontWeight renders bold.
func (s StyleSnapshot) Bold() bool {
	return IsBoldWeight(s.FontWeight)
}

// Italic reports whether FontStyle is italic or oblique.
func (s StyleSnapshot) Italic() bool {
	return s.FontStyle == "italic" || s.FontStyle == "oblique"
}

// Underline reports whether TextDecoration includes an underline.
func (s StyleSnapshot) Underline() bool {
	return strings.Contains(s.TextDecoration, "underline")
}

// IsBoldWeight reports whether a font-weight value renders bold.
func IsBoldWeight(w string) bool {
	switch w {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}

type property struct {
	name      string
	inherited bool
	initial   string
	ua        map[string]string
}

var (
	propFontWeight = property{
		name:      "font-weight",
		inherited: true,
		initial:   "normal",
		ua: map[string]string{
			"b": "bold", "strong": "bold", "th": "bold",
			"h1": "bold", "h2": "bold", "h3": "bold", "h4": "bold", "h5": "bold", "h6": "bold",
		},
	}
	propFontStyle = property{
		name:      "font-style",
		inherited: true,
		initial:   "normal",
		ua: map[string]string{
			"i": "italic", "em": "italic", "cite": "italic", "var": "italic", "dfn": "italic",
		},
	}
	propTextDecoration = property{
		name:    "text-decoration",
		initial: "none",
		ua: map[string]string{
			"u": "underline", "ins": "underline",
			"s": "line-through", "strike": "line-through", "del": "line-through",
		},
	}
	propTextAlign = property{
		name:      "text-align",
		inherited: true,
		initial:   "start",
		ua:        map[string]string{"th": "center", "center": "center"},
	}
	propVerticalAlign = property{
		name:    "vertical-align",
		initial: "baseline",
		ua:      map[string]string{"sup": "super", "sub": "sub"},
	}
)

// resolve computes p for n: inline style, then the user-agent default for
// the tag, then the parent's value for inherited properties.
func (p property) resolve(n *html.Node) string {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if v := dom.StyleValue(n, p.name); v != "" && v != "inherit" {
			return v
		}
		if v, ok := p.ua[n.Data]; ok {
			return v
		}
		if !p.inherited {
			break
		}
	}
	return p.initial
}

// base computes p for n ignoring n's own inline declaration.
func (p property) base(n *html.Node) string {
	if v, ok := p.ua[n.Data]; ok {
		return v
	}
	if p.inherited && n.Parent != nil {
		return p.resolve(n.Parent)
	}
	return p.initial
}

// ComputedStyle resolves the tracked properties of n. It never mutates
// the tree; a nil or non-element node yields the initial values.
func ComputedStyle(n *html.Node) StyleSnapshot {
	if n == nil || n.Type != html.ElementNode {
		return StyleSnapshot{
			FontWeight:     propFontWeight.initial,
			FontStyle:      propFontStyle.initial,
			TextDecoration: propTextDecoration.initial,
			TextAlign:      propTextAlign.initial,
			VerticalAlign:  propVerticalAlign.initial,
		}
	}
	return StyleSnapshot{
		FontWeight:     propFontWeight.resolve(n),
		FontStyle:      propFontStyle.resolve(n),
		TextDecoration: propTextDecoration.resolve(n),
		TextAlign:      propTextAlign.resolve(n),
		VerticalAlign:  propVerticalAlign.resolve(n),
	}
}

// toggle flips a two-state property on n's inline style. on reports the
// current rendering and onValue/offValue are the inline values to write.
// The inline declaration is dropped whenever the inherited or default
// value already renders the wanted state.
func toggle(n *html.Node, p property, on bool, isOn func(string) bool, onValue, offValue string) {
	want := !on
	if isOn(p.base(n)) == want {
		dom.RemoveStyle(n, p.name)
		return
	}
	if want {
		dom.SetStyle(n, p.name, onValue)
	} else {
		dom.SetStyle(n, p.name, offValue)
	}
}

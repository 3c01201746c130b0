package surface

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/richtext/internal/dom"
	"github.com/dshills/richtext/internal/event/events"
)

// Native command names.
const (
	CmdBold                = "bold"
	CmdItalic              = "italic"
	CmdUnderline           = "underline"
	CmdInsertOrderedList   = "insertOrderedList"
	CmdInsertUnorderedList = "insertUnorderedList"
	CmdJustifyLeft         = "justifyLeft"
	CmdJustifyCenter       = "justifyCenter"
	CmdJustifyRight        = "justifyRight"
	CmdSuperscript         = "superscript"
	CmdSubscript           = "subscript"
	CmdCreateLink          = "createLink"
	CmdInsertImage         = "insertImage"
	CmdFormatBlock         = "formatBlock"
)

// blockTags are the element names formatBlock accepts.
var blockTags = map[string]bool{
	"div": true, "p": true, "pre": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// ExecCommand applies a native editing command to the focused editable.
// It returns false when nothing is focused, the command is unknown or the
// value is unusable. A successful command publishes surface.input.
func (s *Surface) ExecCommand(cmd, value string) bool {
	el := s.Focused()
	if el == nil {
		return false
	}

	ok := true
	switch cmd {
	case CmdBold:
		toggle(el, propFontWeight, ComputedStyle(el).Bold(), IsBoldWeight, "bold", "normal")
	case CmdItalic:
		toggle(el, propFontStyle, ComputedStyle(el).Italic(), func(v string) bool {
			return v == "italic" || v == "oblique"
		}, "italic", "normal")
	case CmdUnderline:
		toggle(el, propTextDecoration, ComputedStyle(el).Underline(), func(v string) bool {
			return strings.Contains(v, "underline")
		}, "underline", "none")
	case CmdSuperscript:
		toggleVertical(el, "super")
	case CmdSubscript:
		toggleVertical(el, "sub")
	case CmdJustifyLeft:
		dom.SetStyle(el, propTextAlign.name, "left")
	case CmdJustifyCenter:
		dom.SetStyle(el, propTextAlign.name, "center")
	case CmdJustifyRight:
		dom.SetStyle(el, propTextAlign.name, "right")
	case CmdInsertOrderedList:
		toggleList(el, "ol")
	case CmdInsertUnorderedList:
		toggleList(el, "ul")
	case CmdCreateLink:
		if value == "" {
			return false
		}
		a := dom.Element("a", "href", value)
		a.AppendChild(dom.Text(value))
		insertionPoint(el).AppendChild(a)
	case CmdInsertImage:
		if value == "" {
			return false
		}
		insertionPoint(el).AppendChild(dom.Element("img", "src", value))
	case CmdFormatBlock:
		ok = renameBlock(el, value)
	default:
		ok = false
	}
	if !ok {
		return false
	}

	s.log.Debug("exec %s", cmd)
	s.publishInput(s.focusID, events.InputFormat, cmd)
	return true
}

// QueryCommandState reports whether cmd is in effect on the focused
// editable. It never mutates the tree.
func (s *Surface) QueryCommandState(cmd string) bool {
	el := s.Focused()
	if el == nil {
		return false
	}
	cs := ComputedStyle(el)
	switch cmd {
	case CmdBold:
		return cs.Bold()
	case CmdItalic:
		return cs.Italic()
	case CmdUnderline:
		return cs.Underline()
	case CmdSuperscript:
		return cs.VerticalAlign == "super"
	case CmdSubscript:
		return cs.VerticalAlign == "sub"
	case CmdJustifyLeft:
		return cs.TextAlign == "left" || cs.TextAlign == "start"
	case CmdJustifyCenter:
		return cs.TextAlign == "center"
	case CmdJustifyRight:
		return cs.TextAlign == "right" || cs.TextAlign == "end"
	case CmdInsertOrderedList:
		return dom.IsElement(directList(el), "ol")
	case CmdInsertUnorderedList:
		return dom.IsElement(directList(el), "ul")
	}
	return false
}

// ComputedStyle is the method form of the package-level ComputedStyle.
func (s *Surface) ComputedStyle(n *html.Node) StyleSnapshot {
	return ComputedStyle(n)
}

// ListKind returns "ol", "ul" or "" for the list held directly by n.
func ListKind(n *html.Node) string {
	if l := directList(n); l != nil {
		return l.Data
	}
	return ""
}

// directList returns the first ol/ul child of el.
func directList(el *html.Node) *html.Node {
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, "ol", "ul") {
			return c
		}
	}
	return nil
}

func toggleVertical(el *html.Node, want string) {
	if ComputedStyle(el).VerticalAlign == want {
		dom.RemoveStyle(el, propVerticalAlign.name)
		return
	}
	dom.SetStyle(el, propVerticalAlign.name, want)
}

// toggleList wraps el's content in a list of tag, switches an existing
// list of the other kind to tag, or unwraps a list of the same kind.
func toggleList(el *html.Node, tag string) {
	list := directList(el)
	switch {
	case list == nil:
		list = dom.Element(tag)
		li := dom.Element("li")
		dom.MoveChildren(li, el)
		list.AppendChild(li)
		el.AppendChild(list)
	case list.Data != tag:
		list.Data = tag
		list.DataAtom = atom.Lookup([]byte(tag))
	default:
		unwrapList(el, list)
	}
}

func unwrapList(el, list *html.Node) {
	first := true
	for _, li := range dom.ElementChildren(list) {
		if !first {
			el.InsertBefore(dom.Element("br"), list)
		}
		first = false
		for c := li.FirstChild; c != nil; c = li.FirstChild {
			li.RemoveChild(c)
			el.InsertBefore(c, list)
		}
	}
	el.RemoveChild(list)
}

func renameBlock(el *html.Node, value string) bool {
	tag := strings.ToLower(strings.Trim(strings.TrimSpace(value), "<>"))
	if !blockTags[tag] {
		return false
	}
	el.Data = tag
	el.DataAtom = atom.Lookup([]byte(tag))
	return true
}

// Package dom provides small helpers over golang.org/x/net/html nodes.
//
// The editor surface keeps its document as an *html.Node tree. These helpers
// cover the handful of DOM operations the surface and serializer need:
// attribute and class access, inline style editing, tree walking, and
// inner-markup rendering and parsing.
package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element creates a detached element node. Attributes are given as
// alternating key/value pairs.
func Element(tag string, kv ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return n
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// IsElement reports whether n is an element with one of the given tags.
// With no tags it reports whether n is an element at all.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	return slices.Contains(tags, n.Data)
}

// Attr returns the value of the attribute key, or "".
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether n carries the attribute key.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	return slices.ContainsFunc(n.Attr, func(a html.Attribute) bool {
		return a.Key == key
	})
}

// SetAttr sets or replaces the attribute key.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the attribute key if present.
func RemoveAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(a html.Attribute) bool {
		return a.Key == key
	})
}

// HasClass reports whether the class attribute of n contains class.
func HasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(Attr(n, "class")), class)
}

// AddClass adds class to n's class list.
func AddClass(n *html.Node, class string) {
	classes := strings.Fields(Attr(n, "class"))
	if slices.Contains(classes, class) {
		return
	}
	SetAttr(n, "class", strings.Join(append(classes, class), " "))
}

// RemoveClass removes class from n's class list.
func RemoveClass(n *html.Node, class string) {
	if !HasAttr(n, "class") {
		return
	}
	classes := slices.DeleteFunc(strings.Fields(Attr(n, "class")), func(c string) bool {
		return c == class
	})
	SetAttr(n, "class", strings.Join(classes, " "))
}

// Walk visits n and its descendants in document order. When fn returns
// true the children of the visited node are skipped.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}

// Find returns the first descendant of n (excluding n) matching pred.
func Find(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			return c
		}
		if found := Find(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant of n matching pred in document order.
func FindAll(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if pred(c) {
			out = append(out, c)
		}
		out = append(out, FindAll(c, pred)...)
	}
	return out
}

// FindTag returns the first descendant element with the given tag.
func FindTag(n *html.Node, tags ...string) *html.Node {
	return Find(n, func(c *html.Node) bool { return IsElement(c, tags...) })
}

// FindByAttr returns the first descendant whose attribute key equals val.
func FindByAttr(n *html.Node, key, val string) *html.Node {
	return Find(n, func(c *html.Node) bool {
		return c.Type == html.ElementNode && HasAttr(c, key) && Attr(c, key) == val
	})
}

// Closest returns the nearest of n and its ancestors matching pred.
func Closest(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if pred(n) {
			return n
		}
	}
	return nil
}

// Contains reports whether n is root or a descendant of root.
func Contains(root, n *html.Node) bool {
	return Closest(n, func(p *html.Node) bool { return p == root }) != nil
}

// ElementChildren returns the element children of n.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Children returns every child of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Detach removes n from its parent.
func Detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// ReplaceWith puts repl at old's position and detaches old.
func ReplaceWith(old, repl *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	Detach(repl)
	parent.InsertBefore(repl, old)
	parent.RemoveChild(old)
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// MoveChildren moves every child of src to the end of dst.
func MoveChildren(dst, src *html.Node) {
	for c := src.FirstChild; c != nil; c = src.FirstChild {
		src.RemoveChild(c)
		dst.AppendChild(c)
	}
}

// Clone returns a deep, detached copy of n.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// TextContent concatenates the text of n and all of its descendants.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return false
	})
	return sb.String()
}

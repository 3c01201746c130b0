package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Declaration is a single inline CSS property.
type Declaration struct {
	Property string
	Value    string
}

// ParseStyle splits an inline style attribute into declarations, keeping
// their order. Malformed declarations are dropped.
func ParseStyle(style string) []Declaration {
	var out []Declaration
	for _, raw := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(raw, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}
		out = append(out, Declaration{Property: prop, Value: val})
	}
	return out
}

// FormatStyle renders declarations back into an inline style attribute.
func FormatStyle(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.Property+": "+d.Value)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// StyleValue returns the inline value of prop on n, or "".
func StyleValue(n *html.Node, prop string) string {
	for _, d := range ParseStyle(Attr(n, "style")) {
		if d.Property == prop {
			return d.Value
		}
	}
	return ""
}

// SetStyle sets prop on n's inline style, keeping the declaration order.
func SetStyle(n *html.Node, prop, val string) {
	decls := ParseStyle(Attr(n, "style"))
	for i := range decls {
		if decls[i].Property == prop {
			decls[i].Value = val
			SetAttr(n, "style", FormatStyle(decls))
			return
		}
	}
	decls = append(decls, Declaration{Property: prop, Value: val})
	SetAttr(n, "style", FormatStyle(decls))
}

// RemoveStyle drops prop from n's inline style. The style attribute is
// removed entirely once empty.
func RemoveStyle(n *html.Node, prop string) {
	decls := ParseStyle(Attr(n, "style"))
	kept := decls[:0]
	for _, d := range decls {
		if d.Property != prop {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", FormatStyle(kept))
}

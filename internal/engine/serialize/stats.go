package serialize

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
)

// Stats counts the visible text of a document.
type Stats struct {
	Blocks     int `json:"blocks"`
	Words      int `json:"words"`
	Characters int `json:"characters"`
}

// Text returns the plain text of root, one line per unit.
func Text(root *html.Node) string {
	units := Units(root)
	lines := make([]string, len(units))
	for i, u := range units {
		lines[i] = dom.TextContent(u)
	}
	return strings.Join(lines, "\n")
}

// Count computes Stats for root. Characters are user-perceived characters
// (grapheme clusters), not bytes or code points; unit separators are not
// counted.
func Count(root *html.Node) Stats {
	units := Units(root)
	s := Stats{Blocks: len(units)}
	for _, u := range units {
		text := dom.TextContent(u)
		s.Words += len(strings.Fields(text))
		s.Characters += uniseg.GraphemeClusterCount(text)
	}
	return s
}

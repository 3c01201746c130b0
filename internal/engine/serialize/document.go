// Package serialize produces read-only snapshots of the editor document.
//
// Every function walks the live tree without mutating it. A document whose
// root holds block elements is serialized block by block; otherwise each
// child of the root is one unit (single-surface mode).
package serialize

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
	"github.com/dshills/richtext/internal/engine/block"
	"github.com/dshills/richtext/internal/engine/style"
)

// Block types.
const (
	TypeText    = "text"
	TypeImage   = "image"
	TypeTable   = "table"
	TypeHeading = "heading"
)

// Document is the structured snapshot of the editor content.
type Document struct {
	Version string  `json:"version"`
	Time    int64   `json:"time"`
	Blocks  []Block `json:"blocks"`
}

// Block is one serialized unit. Content is a string for text and heading
// blocks, an ImageContent for images and a TableContent for tables.
type Block struct {
	Type    string `json:"type"`
	Content any    `json:"content"`
	Format  string `json:"format"`
	Level   int    `json:"level,omitempty"`
}

// ImageContent describes a media block.
type ImageContent struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// TableContent describes a table block. Rows hold each cell's inner markup.
type TableContent struct {
	Rows        [][]string `json:"rows"`
	RowCount    int        `json:"rowCount"`
	ColumnCount int        `json:"columnCount"`
}

// Markup returns the inner markup of root verbatim.
func Markup(root *html.Node) string {
	return dom.InnerHTML(root)
}

// Units returns the serialization units of root: its block elements, or
// every non-blank child node when it holds no blocks.
func Units(root *html.Node) []*html.Node {
	var blocks, nodes []*html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if block.IsBlock(c) {
				blocks = append(blocks, c)
			}
			nodes = append(nodes, c)
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				nodes = append(nodes, c)
			}
		}
	}
	if len(blocks) > 0 {
		return blocks
	}
	return nodes
}

// Snapshot serializes root. version is stamped on the document and now
// supplies its timestamp.
func Snapshot(root *html.Node, version string, now time.Time) Document {
	units := Units(root)
	doc := Document{
		Version: version,
		Time:    now.UnixMilli(),
		Blocks:  make([]Block, 0, len(units)),
	}
	for _, u := range units {
		doc.Blocks = append(doc.Blocks, Unit(u))
	}
	return doc
}

// Unit serializes a single unit. Media takes precedence over tables,
// tables over headings.
func Unit(n *html.Node) Block {
	if n.Type == html.TextNode {
		return Block{Type: TypeText, Content: n.Data, Format: style.Normal}
	}

	b := Block{Type: TypeText, Content: dom.InnerHTML(n), Format: format(n)}

	if m := selfOrDescendant(n, "img", "video"); m != nil {
		alt := dom.Attr(m, "alt")
		text := dom.TextContent(n)
		if alt != "" {
			text = strings.Replace(text, alt, "", 1)
		}
		b.Type = TypeImage
		b.Content = ImageContent{
			Src:     dom.Attr(m, "src"),
			Alt:     alt,
			Caption: strings.TrimSpace(text),
		}
		return b
	}

	if t := selfOrDescendant(n, "table"); t != nil {
		b.Type = TypeTable
		b.Content = Table(t)
		return b
	}

	if level := headingLevel(n); level > 0 {
		b.Type = TypeHeading
		b.Level = level
	}
	return b
}

// Table reads the cells of table t, ignoring nested tables.
func Table(t *html.Node) TableContent {
	var rows [][]string
	cols := 0
	dom.Walk(t, func(n *html.Node) bool {
		if n != t && dom.IsElement(n, "table") {
			return true
		}
		if !dom.IsElement(n, "tr") {
			return false
		}
		var cells []string
		for _, c := range dom.ElementChildren(n) {
			if dom.IsElement(c, "td", "th") {
				cells = append(cells, dom.InnerHTML(c))
			}
		}
		if cells == nil {
			cells = []string{}
		}
		rows = append(rows, cells)
		cols = max(cols, len(cells))
		return true
	})
	if rows == nil {
		rows = [][]string{}
	}
	return TableContent{Rows: rows, RowCount: len(rows), ColumnCount: cols}
}

func selfOrDescendant(n *html.Node, tags ...string) *html.Node {
	if dom.IsElement(n, tags...) {
		return n
	}
	return dom.FindTag(n, tags...)
}

func format(n *html.Node) string {
	if block.IsBlock(n) {
		return block.Format(n)
	}
	if f := dom.Attr(n, "data-type"); f != "" {
		return f
	}
	return style.Normal
}

func headingLevel(n *html.Node) int {
	if len(n.Data) == 2 && n.Data[0] == 'h' {
		if l, err := strconv.Atoi(n.Data[1:]); err == nil && l >= 1 && l <= 6 {
			return l
		}
	}
	return 0
}

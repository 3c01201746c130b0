package serialize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/net/html"
)

// JSON encodes doc. With indent the output is pretty-printed.
func JSON(doc Document, indent bool) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	if indent {
		data = pretty.Pretty(data)
	}
	return data, nil
}

// ParseDocument decodes a serialized document. Blocks with an unknown
// content shape keep their raw JSON text as content.
func ParseDocument(data []byte) (Document, error) {
	if !gjson.ValidBytes(data) {
		return Document{}, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Document{}, fmt.Errorf("%w: expected an object", ErrInvalidDocument)
	}
	blocks := root.Get("blocks")
	if blocks.Exists() && !blocks.IsArray() {
		return Document{}, fmt.Errorf("%w: blocks must be an array", ErrInvalidDocument)
	}

	doc := Document{
		Version: root.Get("version").String(),
		Time:    root.Get("time").Int(),
		Blocks:  []Block{},
	}
	var perr error
	blocks.ForEach(func(i, v gjson.Result) bool {
		b, err := parseBlock(v)
		if err != nil {
			perr = fmt.Errorf("%w: block %d: %v", ErrInvalidDocument, i.Int(), err)
			return false
		}
		doc.Blocks = append(doc.Blocks, b)
		return true
	})
	if perr != nil {
		return Document{}, perr
	}
	return doc, nil
}

func parseBlock(v gjson.Result) (Block, error) {
	if !v.IsObject() {
		return Block{}, fmt.Errorf("expected an object")
	}
	b := Block{
		Type:   v.Get("type").String(),
		Format: v.Get("format").String(),
		Level:  int(v.Get("level").Int()),
	}
	if b.Format == "" {
		b.Format = "normal"
	}
	content := v.Get("content")
	switch b.Type {
	case TypeImage:
		b.Content = ImageContent{
			Src:     content.Get("src").String(),
			Alt:     content.Get("alt").String(),
			Caption: content.Get("caption").String(),
		}
	case TypeTable:
		t := TableContent{Rows: [][]string{}}
		content.Get("rows").ForEach(func(_, row gjson.Result) bool {
			cells := []string{}
			row.ForEach(func(_, cell gjson.Result) bool {
				cells = append(cells, cell.String())
				return true
			})
			t.Rows = append(t.Rows, cells)
			t.ColumnCount = max(t.ColumnCount, len(cells))
			return true
		})
		t.RowCount = len(t.Rows)
		b.Content = t
	case TypeText, TypeHeading:
		if content.Type != gjson.String && content.Exists() {
			return Block{}, fmt.Errorf("%s content must be a string", b.Type)
		}
		b.Content = content.String()
	default:
		return Block{}, fmt.Errorf("unknown block type %q", b.Type)
	}
	return b, nil
}

// Tree renders n as a generic node tree: elements become objects with
// type, attributes and children; text nodes become strings.
func Tree(n *html.Node) (string, error) {
	return treeNode(n)
}

func treeNode(n *html.Node) (string, error) {
	out := `{}`
	out, err := sjson.Set(out, "type", strings.ToLower(n.Data))
	if err != nil {
		return "", err
	}
	if out, err = sjson.SetRaw(out, "attributes", `{}`); err != nil {
		return "", err
	}
	for _, a := range n.Attr {
		if out, err = sjson.Set(out, "attributes."+escapeKey(a.Key), a.Val); err != nil {
			return "", err
		}
	}
	if out, err = sjson.SetRaw(out, "children", `[]`); err != nil {
		return "", err
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			out, err = sjson.Set(out, "children.-1", c.Data)
		case html.ElementNode:
			var child string
			if child, err = treeNode(c); err == nil {
				out, err = sjson.SetRaw(out, "children.-1", child)
			}
		default:
			continue
		}
		if err != nil {
			return "", err
		}
	}
	return out, nil
}

// escapeKey escapes sjson path metacharacters in an attribute name.
func escapeKey(k string) string {
	var sb strings.Builder
	for _, r := range k {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

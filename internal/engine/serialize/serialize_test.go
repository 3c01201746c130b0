package serialize

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
)

func parseRoot(t *testing.T, markup string) *html.Node {
	t.Helper()
	root := dom.Element("div", "id", "editor")
	if err := dom.SetInnerHTML(root, markup); err != nil {
		t.Fatal(err)
	}
	return root
}

const blockDoc = `<div class="editor-block" data-type="bold">Hello</div>` +
	`<h2 class="editor-block" data-type="bold-justifyCenter">Title</h2>` +
	`<div class="editor-block" data-type="normal">See <img src="http://x/a.png" alt="Inserted image"/> caption<br/></div>` +
	`<div class="editor-block"><table><tbody><tr><td>a</td><td><b>b</b></td></tr><tr><td>c</td><td>d</td></tr></tbody></table></div>` +
	`<div class="editor-block"><video src="v.mp4" controls=""></video></div>`

func TestSnapshotBlocks(t *testing.T) {
	root := parseRoot(t, blockDoc)
	now := time.UnixMilli(1700000000123)
	doc := Snapshot(root, "1.0.0", now)

	if doc.Version != "1.0.0" || doc.Time != 1700000000123 {
		t.Errorf("header = %s %d", doc.Version, doc.Time)
	}
	want := []Block{
		{Type: TypeText, Content: "Hello", Format: "bold"},
		{Type: TypeHeading, Content: "Title", Format: "bold-justifyCenter", Level: 2},
		{Type: TypeImage, Content: ImageContent{Src: "http://x/a.png", Alt: "Inserted image", Caption: "See  caption"}, Format: "normal"},
		{Type: TypeTable, Content: TableContent{Rows: [][]string{{"a", "<b>b</b>"}, {"c", "d"}}, RowCount: 2, ColumnCount: 2}, Format: "normal"},
		{Type: TypeImage, Content: ImageContent{Src: "v.mp4"}, Format: "normal"},
	}
	if !reflect.DeepEqual(doc.Blocks, want) {
		t.Errorf("blocks =\n%#v\nwant\n%#v", doc.Blocks, want)
	}
}

func TestSnapshotIsDeterministicAndReadOnly(t *testing.T) {
	root := parseRoot(t, blockDoc)
	before := Markup(root)

	a := Snapshot(root, "1.0.0", time.Now())
	b := Snapshot(root, "1.0.0", time.Now().Add(time.Second))
	if !reflect.DeepEqual(a.Blocks, b.Blocks) {
		t.Error("consecutive snapshots differ")
	}
	_, _ = Tree(root)
	_, _ = CompactMarkup(root)
	Count(root)
	if Markup(root) != before {
		t.Error("serialization mutated the tree")
	}
}

func TestSingleSurfaceMode(t *testing.T) {
	root := parseRoot(t, "intro text\n<p>para</p><h1>Top</h1><p><img src=\"p.gif\" alt=\"pic\"/>pic shown</p>")
	doc := Snapshot(root, "1.0.0", time.Now())

	if len(doc.Blocks) != 4 {
		t.Fatalf("blocks = %+v", doc.Blocks)
	}
	if doc.Blocks[0].Type != TypeText || doc.Blocks[0].Content != "intro text\n" {
		t.Errorf("text node = %+v", doc.Blocks[0])
	}
	if doc.Blocks[1].Content != "para" || doc.Blocks[1].Format != "normal" {
		t.Errorf("paragraph = %+v", doc.Blocks[1])
	}
	if doc.Blocks[2].Type != TypeHeading || doc.Blocks[2].Level != 1 {
		t.Errorf("heading = %+v", doc.Blocks[2])
	}
	img, ok := doc.Blocks[3].Content.(ImageContent)
	if !ok || img.Caption != "shown" {
		t.Errorf("image = %+v", doc.Blocks[3])
	}
}

func TestNestedTableIgnored(t *testing.T) {
	root := parseRoot(t, `<div class="editor-block"><table><tr><td><table><tr><td>x</td><td>y</td><td>z</td></tr></table></td></tr></table></div>`)
	doc := Snapshot(root, "1.0.0", time.Now())
	tc := doc.Blocks[0].Content.(TableContent)
	if tc.RowCount != 1 || tc.ColumnCount != 1 {
		t.Errorf("table = %+v", tc)
	}
}

func TestJSONShape(t *testing.T) {
	root := parseRoot(t, blockDoc)
	data, err := JSON(Snapshot(root, "1.0.0", time.UnixMilli(42)), false)
	if err != nil {
		t.Fatal(err)
	}
	js := string(data)
	checks := map[string]string{
		"version":                      "1.0.0",
		"time":                         "42",
		"blocks.0.type":                "text",
		"blocks.0.format":              "bold",
		"blocks.1.level":               "2",
		"blocks.2.content.src":         "http://x/a.png",
		"blocks.3.content.rowCount":    "2",
		"blocks.3.content.rows.0.1":    "<b>b</b>",
		"blocks.3.content.columnCount": "2",
	}
	for path, want := range checks {
		if got := gjson.Get(js, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if gjson.Get(js, "blocks.0.level").Exists() {
		t.Error("level should be omitted for text blocks")
	}

	indented, _ := JSON(Snapshot(root, "1.0.0", time.UnixMilli(42)), true)
	if !strings.Contains(string(indented), "\n  \"version\"") {
		t.Errorf("indent missing:\n%s", indented)
	}
}

func TestParseDocumentRoundTrip(t *testing.T) {
	root := parseRoot(t, blockDoc)
	doc := Snapshot(root, "1.0.0", time.UnixMilli(42))
	data, err := JSON(doc, true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseDocument(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip =\n%#v\nwant\n%#v", got, doc)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":    `{"blocks": [`,
		"not object":   `[1,2]`,
		"blocks type":  `{"blocks": "x"}`,
		"block type":   `{"blocks": [{"type": "audio", "content": "x"}]}`,
		"text content": `{"blocks": [{"type": "text", "content": {"a": 1}}]}`,
		"block shape":  `{"blocks": [3]}`,
	}
	for name, in := range tests {
		if _, err := ParseDocument([]byte(in)); !errors.Is(err, ErrInvalidDocument) {
			t.Errorf("%s: err = %v", name, err)
		}
	}

	doc, err := ParseDocument([]byte(`{"version":"1.0.0","blocks":[{"type":"text","content":"x"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Blocks[0].Format != "normal" {
		t.Errorf("default format = %q", doc.Blocks[0].Format)
	}
}

func TestTree(t *testing.T) {
	root := parseRoot(t, `<div class="editor-block" data-id="1">Hi <b>there</b></div>`)
	out, err := Tree(root)
	if err != nil {
		t.Fatal(err)
	}
	checks := map[string]string{
		"type":                             "div",
		"attributes.id":                    "editor",
		"children.0.type":                  "div",
		"children.0.attributes.data-id":    "1",
		"children.0.attributes.class":      "editor-block",
		"children.0.children.0":            "Hi ",
		"children.0.children.1.type":       "b",
		"children.0.children.1.children.0": "there",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
	if n := len(gjson.Get(out, "children.0.children.1.attributes").Map()); n != 0 {
		t.Errorf("b attributes = %d", n)
	}
}

func TestCompactMarkup(t *testing.T) {
	root := parseRoot(t, "<div class=\"editor-block\">\n    <p>a</p>\n    <p>b</p>\n</div>")
	out, err := CompactMarkup(root)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "\n") || !strings.Contains(out, `class="editor-block"`) {
		t.Errorf("compact = %q", out)
	}
	if len(out) >= len(Markup(root)) {
		t.Error("compact markup is not shorter")
	}
}

func TestCount(t *testing.T) {
	root := parseRoot(t, `<div class="editor-block">Hello brave world</div>`+
		"<div class=\"editor-block\">e\u0301t\u00e9 \U0001F44D\U0001F3FD</div>")
	s := Count(root)
	if s.Blocks != 2 || s.Words != 5 {
		t.Errorf("stats = %+v", s)
	}
	// The combining accent and the skin-tone modifier do not add characters.
	if s.Characters != 17+5 {
		t.Errorf("characters = %d", s.Characters)
	}
	if want := "Hello brave world\ne\u0301t\u00e9 \U0001F44D\U0001F3FD"; Text(root) != want {
		t.Errorf("text = %q", Text(root))
	}
}

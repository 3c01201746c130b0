package dom

import (
	"slices"
	"testing"

	"golang.org/x/net/html"
)

func parse(t *testing.T, markup string) *html.Node {
	t.Helper()
	root := Element("div", "id", "root")
	if err := SetInnerHTML(root, markup); err != nil {
		t.Fatalf("SetInnerHTML() error = %v", err)
	}
	return root
}

func TestElementAndAttrs(t *testing.T) {
	n := Element("td", "data-id", "x", "odd")
	if !IsElement(n) || !IsElement(n, "th", "td") || IsElement(n, "tr") {
		t.Error("IsElement mismatch")
	}
	if Attr(n, "data-id") != "x" || HasAttr(n, "odd") {
		t.Errorf("attrs = %+v", n.Attr)
	}

	SetAttr(n, "data-id", "y")
	SetAttr(n, "title", "t")
	if Attr(n, "data-id") != "y" || len(n.Attr) != 2 {
		t.Errorf("attrs after SetAttr = %+v", n.Attr)
	}
	RemoveAttr(n, "title")
	if HasAttr(n, "title") {
		t.Error("title not removed")
	}
	if IsElement(nil) || IsElement(Text("x")) || Attr(nil, "a") != "" || HasAttr(nil, "a") {
		t.Error("nil and text nodes must not look like elements")
	}
}

func TestClasses(t *testing.T) {
	n := Element("div", "class", "editor-block")
	AddClass(n, "active")
	AddClass(n, "active")
	if got := Attr(n, "class"); got != "editor-block active" {
		t.Errorf("class = %q", got)
	}
	if !HasClass(n, "active") || HasClass(n, "act") {
		t.Error("HasClass mismatch")
	}
	RemoveClass(n, "editor-block")
	if got := Attr(n, "class"); got != "active" {
		t.Errorf("class = %q", got)
	}

	bare := Element("p")
	RemoveClass(bare, "active")
	if HasAttr(bare, "class") {
		t.Error("RemoveClass added a class attribute")
	}
}

func TestFind(t *testing.T) {
	root := parse(t, `<p data-id="a">one <b>two</b></p><table><tbody><tr><td data-id="c">x</td></tr></tbody></table>`)

	if b := FindTag(root, "b"); b == nil || TextContent(b) != "two" {
		t.Errorf("FindTag(b) = %v", b)
	}
	td := FindByAttr(root, "data-id", "c")
	if td == nil || td.Data != "td" {
		t.Fatalf("FindByAttr = %v", td)
	}
	if table := Closest(td, func(n *html.Node) bool { return IsElement(n, "table") }); table == nil {
		t.Error("Closest(table) = nil")
	}
	if !Contains(root, td) || Contains(td, root) {
		t.Error("Contains mismatch")
	}

	ids := FindAll(root, func(n *html.Node) bool { return HasAttr(n, "data-id") })
	if len(ids) != 2 || Attr(ids[0], "data-id") != "a" {
		t.Errorf("FindAll = %d nodes", len(ids))
	}
	if Find(root, func(n *html.Node) bool { return IsElement(n, "video") }) != nil {
		t.Error("Find returned a missing element")
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	root := parse(t, `<p>a<b>b</b></p><i>c</i>`)
	var tags []string
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			tags = append(tags, n.Data)
		}
		return IsElement(n, "p")
	})
	if want := []string{"div", "p", "i"}; !slices.Equal(tags, want) {
		t.Errorf("visited = %v, want %v", tags, want)
	}
}

func TestMutation(t *testing.T) {
	root := parse(t, `<p>a</p><p>b</p>`)
	first, second := ElementChildren(root)[0], ElementChildren(root)[1]

	h := Element("h2")
	MoveChildren(h, first)
	ReplaceWith(first, h)
	if got := InnerHTML(root); got != "<h2>a</h2><p>b</p>" {
		t.Errorf("after ReplaceWith = %q", got)
	}
	if first.Parent != nil {
		t.Error("replaced node still attached")
	}

	c := Clone(second)
	c.FirstChild.Data = "changed"
	if TextContent(second) != "b" {
		t.Error("Clone shares children")
	}

	Detach(second)
	if got := len(Children(root)); got != 1 {
		t.Errorf("children = %d", got)
	}
	RemoveChildren(root)
	if root.FirstChild != nil {
		t.Error("RemoveChildren left nodes")
	}
}

func TestMarkup(t *testing.T) {
	nodes, err := ParseFragment(`text<br><span class="x">s</span>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("nodes = %d", len(nodes))
	}
	for _, n := range nodes {
		if n.Parent != nil {
			t.Error("fragment node is attached")
		}
	}
	if got := OuterHTML(nodes[2]); got != `<span class="x">s</span>` {
		t.Errorf("OuterHTML = %q", got)
	}
	if InnerHTML(nil) != "" || OuterHTML(nil) != "" {
		t.Error("nil rendering is not empty")
	}
}

func TestStyles(t *testing.T) {
	decls := ParseStyle(" Font-Weight: bold ;broken; text-align:center;color:")
	want := []Declaration{{"font-weight", "bold"}, {"text-align", "center"}}
	if !slices.Equal(decls, want) {
		t.Errorf("ParseStyle = %+v", decls)
	}
	if got := FormatStyle(decls); got != "font-weight: bold; text-align: center;" {
		t.Errorf("FormatStyle = %q", got)
	}
	if FormatStyle(nil) != "" {
		t.Error("FormatStyle(nil) not empty")
	}

	n := Element("div", "style", "width: 50%;")
	SetStyle(n, "font-style", "italic")
	SetStyle(n, "width", "25%")
	if got := Attr(n, "style"); got != "width: 25%; font-style: italic;" {
		t.Errorf("style = %q", got)
	}
	if StyleValue(n, "font-style") != "italic" || StyleValue(n, "color") != "" {
		t.Error("StyleValue mismatch")
	}
	RemoveStyle(n, "width")
	RemoveStyle(n, "font-style")
	if HasAttr(n, "style") {
		t.Errorf("empty style kept: %q", Attr(n, "style"))
	}
}

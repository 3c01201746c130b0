package block

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
	"github.com/dshills/richtext/internal/engine/surface"
)

// HeadingTag maps a heading name to the element tag of the converted
// block. "normal" is a plain div.
func HeadingTag(name string) (string, bool) {
	switch name {
	case "normal":
		return "div", true
	case "p", "h1", "h2", "h3", "h4", "h5", "h6":
		return name, true
	}
	return "", false
}

// Percent renders v as a CSS percentage.
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

const cellDecls = "border: 1px solid #ccc; padding: 8px;"

// ConvertHeading replaces the current block with a new block of the given
// heading name. Content, inline style and annotation carry over; the new
// block becomes active and focused.
func (m *Model) ConvertHeading(name string) bool {
	tag, ok := HeadingTag(name)
	if !ok {
		return false
	}
	old := m.Current()
	if old == nil {
		return false
	}

	blk := m.NewBlock(tag)
	dom.SetAttr(blk, surface.AttrType, Format(old))
	if st := dom.Attr(old, "style"); st != "" {
		dom.SetAttr(blk, "style", st)
	}
	if dom.HasAttr(old, surface.AttrPlaceholder) {
		dom.SetAttr(blk, surface.AttrPlaceholder, dom.Attr(old, surface.AttrPlaceholder))
	}
	dom.MoveChildren(blk, old)
	dom.ReplaceWith(old, blk)

	m.activate(blk)
	m.log.Debug("converted block to %s", tag)
	m.surf.NotifyRetag(dom.Attr(blk, surface.AttrID))
	return true
}

// InsertTable replaces the content of the current block with a rows x cols
// table of editable cells and focuses the first cell.
func (m *Model) InsertTable(rows, cols int) bool {
	if rows < 1 || cols < 1 {
		return false
	}
	blk := m.Current()
	if blk == nil {
		return false
	}

	table, tbody := gridShell(ClassTable)
	for r := 0; r < rows; r++ {
		tr := dom.Element("tr")
		for c := 0; c < cols; c++ {
			tr.AppendChild(m.newCell())
		}
		tbody.AppendChild(tr)
	}
	normalizeTable(table)

	m.replaceContent(blk, table)
	return true
}

// InsertLayout replaces the content of the current block with a one-row
// layout grid whose column widths are taken verbatim from widths.
func (m *Model) InsertLayout(widths []float64) bool {
	if len(widths) == 0 {
		return false
	}
	blk := m.Current()
	if blk == nil {
		return false
	}

	table, tbody := gridShell(ClassLayout)
	tr := dom.Element("tr")
	for _, w := range widths {
		td := m.newCell()
		dom.SetStyle(td, "width", Percent(w))
		tr.AppendChild(td)
	}
	tbody.AppendChild(tr)

	m.replaceContent(blk, table)
	return true
}

// AddTableRow appends a row to the table nearest the focus and evens out
// row heights.
func (m *Model) AddTableRow() bool {
	table := m.targetTable()
	if table == nil {
		return false
	}
	rows := tableRows(table)
	cols := columnCount(rows)
	tr := dom.Element("tr")
	for c := 0; c < cols; c++ {
		tr.AppendChild(m.newCell())
	}
	rows[len(rows)-1].Parent.AppendChild(tr)
	normalizeTable(table)

	m.surf.NotifyStructure(m.surf.FocusedID())
	return true
}

// AddTableColumn appends a cell to every row of the table nearest the
// focus and evens out column widths.
func (m *Model) AddTableColumn() bool {
	table := m.targetTable()
	if table == nil {
		return false
	}
	for _, tr := range tableRows(table) {
		tr.AppendChild(m.newCell())
	}
	normalizeTable(table)

	m.surf.NotifyStructure(m.surf.FocusedID())
	return true
}

// AppendMedia appends n and a line break to the current block, then
// activates a new empty block placed after it.
func (m *Model) AppendMedia(n *html.Node) bool {
	blk := m.Current()
	if blk == nil {
		return false
	}
	blk.AppendChild(n)
	blk.AppendChild(dom.Element("br"))

	next := m.NewBlock("div")
	blk.Parent.InsertBefore(next, blk.NextSibling)
	m.activate(next)

	m.surf.NotifyStructure(dom.Attr(blk, surface.AttrID))
	return true
}

// InsertLink appends an anchor opening in a new context, then proceeds as
// AppendMedia.
func (m *Model) InsertLink(text, url string) bool {
	if text == "" || url == "" {
		return false
	}
	a := dom.Element("a", "href", url, "target", "_blank", "rel", "noopener noreferrer")
	a.AppendChild(dom.Text(text))
	return m.AppendMedia(a)
}

// BuildTable creates a detached table whose cells hold the given inner
// markup. Cells without an editable element get one wrapping their
// content.
func (m *Model) BuildTable(cells [][]string) (*html.Node, error) {
	table, tbody := gridShell(ClassTable)
	for _, row := range cells {
		tr := dom.Element("tr")
		for _, markup := range row {
			td := dom.Element("td", "style", cellDecls)
			if err := dom.SetInnerHTML(td, markup); err != nil {
				return nil, err
			}
			if dom.Find(td, surface.IsEditable) == nil {
				editor := m.newEditor()
				dom.MoveChildren(editor, td)
				td.AppendChild(editor)
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	normalizeTable(table)
	return table, nil
}

func gridShell(class string) (table, tbody *html.Node) {
	table = dom.Element("table", "class", class, "style", "width: 100%; border-collapse: collapse;")
	tbody = dom.Element("tbody")
	table.AppendChild(tbody)
	return table, tbody
}

func (m *Model) newEditor() *html.Node {
	return dom.Element("div",
		surface.AttrContentEditable, "true",
		surface.AttrID, m.surf.NewID(),
	)
}

func (m *Model) newCell() *html.Node {
	td := dom.Element("td", "style", cellDecls)
	td.AppendChild(m.newEditor())
	return td
}

// replaceContent swaps blk's children for grid and focuses the first cell.
func (m *Model) replaceContent(blk, grid *html.Node) {
	dom.RemoveChildren(blk)
	blk.AppendChild(grid)
	m.markActive(blk)
	if first := dom.Find(grid, surface.IsEditable); first != nil {
		m.surf.Focus(dom.Attr(first, surface.AttrID))
	}
	m.surf.NotifyStructure(dom.Attr(blk, surface.AttrID))
}

// targetTable finds the growable table nearest the focus: an enclosing
// table first, then the first table inside the current block.
func (m *Model) targetTable() *html.Node {
	blk := m.Current()
	if blk == nil {
		return nil
	}
	isTable := func(n *html.Node) bool {
		return dom.IsElement(n, "table") && !dom.HasClass(n, ClassLayout)
	}
	table := dom.Closest(m.surf.Focused(), isTable)
	if table == nil || !dom.Contains(blk, table) {
		table = dom.Find(blk, isTable)
	}
	if table == nil || len(tableRows(table)) == 0 {
		return nil
	}
	return table
}

// tableRows returns the rows of table, skipping nested tables.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	dom.Walk(table, func(n *html.Node) bool {
		if n != table && dom.IsElement(n, "table") {
			return true
		}
		if dom.IsElement(n, "tr") {
			rows = append(rows, n)
			return true
		}
		return false
	})
	return rows
}

func rowCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for _, c := range dom.ElementChildren(tr) {
		if dom.IsElement(c, "td", "th") {
			cells = append(cells, c)
		}
	}
	return cells
}

func columnCount(rows []*html.Node) int {
	n := 0
	for _, tr := range rows {
		n = max(n, len(rowCells(tr)))
	}
	return n
}

// normalizeTable gives every cell width 100/cols% and height 100/rows%.
func normalizeTable(table *html.Node) {
	rows := tableRows(table)
	cols := columnCount(rows)
	if len(rows) == 0 || cols == 0 {
		return
	}
	width := Percent(100 / float64(cols))
	height := Percent(100 / float64(len(rows)))
	for _, tr := range rows {
		for _, td := range rowCells(tr) {
			dom.SetStyle(td, "width", width)
			dom.SetStyle(td, "height", height)
		}
	}
}

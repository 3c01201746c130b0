package engine

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/dom"
	"github.com/dshills/richtext/internal/engine/block"
	"github.com/dshills/richtext/internal/engine/media"
	"github.com/dshills/richtext/internal/engine/serialize"
	"github.com/dshills/richtext/internal/engine/style"
	"github.com/dshills/richtext/internal/engine/surface"
)

// blockTags are the top-level elements that become blocks themselves;
// everything else is wrapped in a div block.
var blockTags = map[string]bool{
	"div": true, "p": true, "pre": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// tokenStyles maps style tokens to the inline declaration producing them.
var tokenStyles = map[style.Token][2]string{
	style.Bold:          {"font-weight", "bold"},
	style.Italic:        {"font-style", "italic"},
	style.Underline:     {"text-decoration", "underline"},
	style.Superscript:   {"vertical-align", "super"},
	style.Subscript:     {"vertical-align", "sub"},
	style.JustifyLeft:   {"text-align", "left"},
	style.JustifyCenter: {"text-align", "center"},
	style.JustifyRight:  {"text-align", "right"},
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// LoadMarkup replaces the document with sanitized markup. Top-level
// paragraphs, headings and divs become blocks; other content is grouped
// into div blocks. The first block becomes active.
func (e *Editor) LoadMarkup(markup string) error {
	return e.load(func() error {
		return e.loadMarkupLocked(markup)
	})
}

// LoadMarkdown renders CommonMark with GitHub extensions and loads the
// result like LoadMarkup.
func (e *Editor) LoadMarkdown(md string) error {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	return e.LoadMarkup(buf.String())
}

// LoadDocument rebuilds the blocks of a serialized document. Block formats
// are restored as inline style so annotation derives them again.
func (e *Editor) LoadDocument(data []byte) error {
	doc, err := serialize.ParseDocument(data)
	if err != nil {
		e.log.Warn("load document: %v", err)
		return err
	}
	return e.load(func() error {
		var sb strings.Builder
		for _, b := range doc.Blocks {
			blk, err := e.rebuild(b)
			if err != nil {
				return err
			}
			sb.WriteString(dom.OuterHTML(blk))
		}
		return e.loadMarkupLocked(sb.String())
	})
}

// load runs fn under the lock. A load in source mode also refreshes the
// source buffer.
func (e *Editor) load(fn func() error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	if err := fn(); err != nil {
		e.unlock()
		return err
	}
	if e.sourceMode {
		e.source = e.surf.InnerHTML()
	}
	e.unlock()
	return nil
}

func (e *Editor) loadMarkupLocked(markup string) error {
	nodes, err := dom.ParseFragment(e.sanitizer.Sanitize(markup))
	if err != nil {
		return fmt.Errorf("loading markup: %w", err)
	}
	var sb strings.Builder
	for _, n := range e.blockify(nodes) {
		sb.WriteString(dom.OuterHTML(n))
	}
	if err := e.surf.SetInnerHTML(sb.String()); err != nil {
		return fmt.Errorf("loading markup: %w", err)
	}
	e.blocks.SetActiveBlock(0)
	e.log.Debug("loaded %d blocks", e.blocks.Len())
	return nil
}

// blockify turns top-level nodes into blocks. Consecutive inline nodes
// share one wrapper block.
func (e *Editor) blockify(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	var wrapper *html.Node
	for _, n := range nodes {
		switch {
		case n.Type == html.ElementNode && blockTags[n.Data]:
			wrapper = nil
			e.promote(n)
			out = append(out, n)
		case n.Type == html.TextNode && strings.TrimSpace(n.Data) == "":
			if wrapper != nil {
				wrapper.AppendChild(n)
			}
		case n.Type == html.ElementNode || n.Type == html.TextNode:
			if wrapper == nil {
				wrapper = e.blocks.NewBlock("div")
				out = append(out, wrapper)
			}
			wrapper.AppendChild(n)
		}
	}
	return out
}

// promote gives element n the block attributes it lacks.
func (e *Editor) promote(n *html.Node) {
	dom.AddClass(n, block.ClassBlock)
	dom.RemoveClass(n, block.ClassActive)
	dom.SetAttr(n, surface.AttrContentEditable, "true")
	if dom.Attr(n, surface.AttrID) == "" {
		dom.SetAttr(n, surface.AttrID, e.surf.NewID())
	}
	if !dom.HasAttr(n, surface.AttrPlaceholder) {
		dom.SetAttr(n, surface.AttrPlaceholder, e.cfg.Editor.Placeholder)
	}
}

// rebuild creates the block element of a serialized block.
func (e *Editor) rebuild(b serialize.Block) (*html.Node, error) {
	tag := "div"
	if b.Type == serialize.TypeHeading && b.Level >= 1 && b.Level <= 6 {
		tag = "h" + strconv.Itoa(b.Level)
	}
	blk := e.blocks.NewBlock(tag)

	switch c := b.Content.(type) {
	case string:
		if err := dom.SetInnerHTML(blk, c); err != nil {
			return nil, err
		}
	case serialize.ImageContent:
		res := media.Resolved{Type: media.TypeImage, Src: c.Src, Alt: c.Alt}
		if typ, err := e.resolver.Classify(media.URL(c.Src)); err == nil {
			res.Type = typ
		} else if strings.HasPrefix(c.Src, "data:video/") {
			res.Type = media.TypeVideo
		}
		blk.AppendChild(res.Node())
		if c.Caption != "" {
			blk.AppendChild(dom.Text(c.Caption))
		}
		blk.AppendChild(dom.Element("br"))
	case serialize.TableContent:
		table, err := e.blocks.BuildTable(c.Rows)
		if err != nil {
			return nil, err
		}
		blk.AppendChild(table)
	}

	for _, tok := range style.ParseFormat(b.Format).Tokens() {
		if decl, ok := tokenStyles[tok]; ok {
			dom.SetStyle(blk, decl[0], decl[1])
		}
	}
	return blk, nil
}

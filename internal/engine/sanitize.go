package engine

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/engine/surface"
)

// Sanitizer cleans untrusted markup before it enters the document.
// *bluemonday.Policy satisfies it.
type Sanitizer interface {
	Sanitize(markup string) string
}

type passthrough struct{}

func (passthrough) Sanitize(markup string) string { return markup }

var (
	weightRegexp     = regexp.MustCompile(`^(normal|bold|bolder|lighter|[1-9]00)$`)
	fontStyleRegexp  = regexp.MustCompile(`^(normal|italic|oblique)$`)
	decorationRegexp = regexp.MustCompile(`^(none|underline|line-through|overline)( (underline|line-through|overline))*$`)
	alignRegexp      = regexp.MustCompile(`^(left|center|right|justify|start|end)$`)
	verticalRegexp   = regexp.MustCompile(`^(baseline|super|sub)$`)
	sizeRegexp       = regexp.MustCompile(`^(\d+(\.\d+)?(%|px|em|rem)?|auto)$`)
	borderRegexp     = regexp.MustCompile(`^(\d+px (solid|dashed|dotted) #[0-9a-fA-F]{3,6}|none)$`)
	collapseRegexp   = regexp.MustCompile(`^(collapse|separate)$`)
)

// NewSanitizer returns the sanitizer for a configured policy name. The
// "ugc" policy keeps the markup the editor itself produces: block and cell
// attributes, formatting styles, tables, media and links.
func NewSanitizer(policy string) Sanitizer {
	switch policy {
	case config.PolicyNone:
		return passthrough{}
	case config.PolicyStrict:
		return bluemonday.StrictPolicy()
	}

	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", surface.AttrContentEditable, surface.AttrPlaceholder).Globally()
	p.AllowDataAttributes()
	p.AllowDataURIImages()
	p.AllowElements("video")
	p.AllowAttrs("src", "controls").OnElements("video")
	p.AllowAttrs("target", "rel").OnElements("a")
	p.RequireNoFollowOnLinks(false)

	p.AllowStyles("font-weight").Matching(weightRegexp).Globally()
	p.AllowStyles("font-style").Matching(fontStyleRegexp).Globally()
	p.AllowStyles("text-decoration").Matching(decorationRegexp).Globally()
	p.AllowStyles("text-align").Matching(alignRegexp).Globally()
	p.AllowStyles("vertical-align").Matching(verticalRegexp).Globally()
	p.AllowStyles("width", "height", "padding").Matching(sizeRegexp).Globally()
	p.AllowStyles("border").Matching(borderRegexp).Globally()
	p.AllowStyles("border-collapse").Matching(collapseRegexp).Globally()
	return p
}

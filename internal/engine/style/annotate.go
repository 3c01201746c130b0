package style

import "github.com/dshills/richtext/internal/engine/surface"

// FromComputed derives a block annotation from computed style and the
// kind of list the block holds ("ol", "ul" or ""). Alignment is annotated
// only when explicitly left, center or right.
func FromComputed(cs surface.StyleSnapshot, list string) Signature {
	var s Signature
	if cs.Bold() {
		s = s.With(Bold)
	}
	if cs.Italic() {
		s = s.With(Italic)
	}
	if cs.Underline() {
		s = s.With(Underline)
	}
	switch cs.VerticalAlign {
	case "super":
		s = s.With(Superscript)
	case "sub":
		s = s.With(Subscript)
	}
	switch cs.TextAlign {
	case "left":
		s = s.With(JustifyLeft)
	case "center":
		s = s.With(JustifyCenter)
	case "right":
		s = s.With(JustifyRight)
	}
	switch list {
	case "ol":
		s = s.With(OrderedList)
	case "ul":
		s = s.With(UnorderedList)
	}
	return s
}

package serialize

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
)

const mediaTypeHTML = "text/html"

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.Add(mediaTypeHTML, &mhtml.Minifier{
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepDefaultAttrVals: true,
	})
	return m
}

// CompactMarkup returns the markup of root with insignificant whitespace
// removed.
func CompactMarkup(root *html.Node) (string, error) {
	out, err := minifier.String(mediaTypeHTML, Markup(root))
	if err != nil {
		return "", fmt.Errorf("minifying markup: %w", err)
	}
	return out, nil
}

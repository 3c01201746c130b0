// Package media validates and resolves embedded media sources.
//
// A Source is either a URL, used as-is, or a file handle whose bytes are
// encoded into a data URL. File reads run on a Queue so that completions
// are applied in submission order.
package media

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/dom"
)

// Kind is the kind of a media source.
type Kind int

const (
	// KindURL is a remote or inline URL.
	KindURL Kind = iota
	// KindFile is a readable file handle.
	KindFile
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindFile {
		return "file"
	}
	return "url"
}

// Type is the media element type.
type Type string

// Media types.
const (
	TypeImage Type = "image"
	TypeVideo Type = "video"
)

// DefaultAlt is the alt text of images inserted by URL.
const DefaultAlt = "Inserted image"

// Source describes media to insert.
type Source struct {
	Kind Kind
	// URL is the address for KindURL.
	URL string
	// Name is the file name for KindFile; its extension selects the type.
	Name string
	// MIME overrides the type derived from the file name.
	MIME string
	// Reader supplies the file bytes for KindFile.
	Reader io.Reader
}

// URL returns a URL source.
func URL(u string) Source {
	return Source{Kind: KindURL, URL: u}
}

// File returns a file source.
func File(name string, r io.Reader) Source {
	return Source{Kind: KindFile, Name: name, Reader: r}
}

// Resolved is a validated source ready for insertion.
type Resolved struct {
	Type Type
	Src  string
	Alt  string
}

// Node builds the media element.
func (r Resolved) Node() *html.Node {
	if r.Type == TypeVideo {
		return dom.Element("video", "src", r.Src, "controls", "")
	}
	return dom.Element("img", "src", r.Src, "alt", r.Alt)
}

// Resolver validates sources against the configured allowlists.
type Resolver struct {
	images   []string
	videos   []string
	maxBytes int64
}

// NewResolver creates a resolver from media configuration.
func NewResolver(cfg config.MediaConfig) *Resolver {
	return &Resolver{
		images:   cfg.ImageExtensions,
		videos:   cfg.VideoExtensions,
		maxBytes: cfg.MaxBytes,
	}
}

// Extension returns the lower-case extension of a URL or file name,
// ignoring any query or fragment.
func Extension(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// Classify validates src without reading it.
func (r *Resolver) Classify(src Source) (Type, error) {
	var name string
	switch src.Kind {
	case KindURL:
		if strings.TrimSpace(src.URL) == "" {
			return "", fmt.Errorf("%w: empty URL", ErrInvalidMedia)
		}
		name = src.URL
	case KindFile:
		if src.Reader == nil {
			return "", fmt.Errorf("%w: no file selected", ErrInvalidMedia)
		}
		name = src.Name
	default:
		return "", fmt.Errorf("%w: unknown source kind %d", ErrInvalidMedia, src.Kind)
	}

	ext := Extension(name)
	switch {
	case ext != "" && slices.Contains(r.images, ext):
		return TypeImage, nil
	case ext != "" && slices.Contains(r.videos, ext):
		return TypeVideo, nil
	}
	return "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidMedia, ext)
}

// ResolveURL resolves a URL source. It fails for file sources.
func (r *Resolver) ResolveURL(src Source) (Resolved, error) {
	if src.Kind != KindURL {
		return Resolved{}, fmt.Errorf("%w: not a URL source", ErrInvalidMedia)
	}
	typ, err := r.Classify(src)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Type: typ, Src: strings.TrimSpace(src.URL), Alt: DefaultAlt}, nil
}

// ReadFile reads a file source into a data URL. It blocks on the reader.
func (r *Resolver) ReadFile(src Source) (Resolved, error) {
	typ, err := r.Classify(src)
	if err != nil {
		return Resolved{}, err
	}
	if src.Kind != KindFile {
		return Resolved{}, fmt.Errorf("%w: not a file source", ErrInvalidMedia)
	}

	reader := src.Reader
	if r.maxBytes > 0 {
		reader = io.LimitReader(reader, r.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return Resolved{}, fmt.Errorf("%w: %s: %v", ErrReadFailed, src.Name, err)
	}
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return Resolved{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, src.Name, r.maxBytes)
	}

	mimeType := src.MIME
	if mimeType == "" {
		mimeType = mime.TypeByExtension("." + Extension(src.Name))
	}
	if mimeType == "" {
		mimeType = string(typ) + "/" + Extension(src.Name)
	}
	return Resolved{Type: typ, Src: DataURL(mimeType, data), Alt: src.Name}, nil
}

// DataURL encodes data as a base64 data URL.
func DataURL(mimeType string, data []byte) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return "data:" + strings.TrimSpace(mimeType) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

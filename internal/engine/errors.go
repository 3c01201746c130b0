package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/richtext/internal/engine/media"
)

// Errors returned by editor operations.
var (
	// ErrInvalidMedia indicates an empty, missing or unsupported media source.
	ErrInvalidMedia = media.ErrInvalidMedia

	// ErrInvalidLink indicates empty link text or URL.
	ErrInvalidLink = errors.New("invalid link")

	// ErrInvalidHeading indicates a heading tag outside p, h1-h6 and normal.
	ErrInvalidHeading = errors.New("invalid heading")

	// ErrInvalidDimensions indicates a table or layout size that cannot be built.
	ErrInvalidDimensions = errors.New("invalid dimensions")

	// ErrUnknownCommand indicates a command outside the native vocabulary.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrEditorClosed indicates the editor was closed.
	ErrEditorClosed = media.ErrClosed

	// ErrSourceMode indicates a late media completion arrived while the
	// editor showed its source buffer.
	ErrSourceMode = errors.New("editor is in source mode")

	// ErrReadFailed indicates a media file could not be read.
	ErrReadFailed = media.ErrReadFailed

	// ErrFileTooLarge indicates a media file exceeded the size limit.
	ErrFileTooLarge = media.ErrFileTooLarge
)

// ValidationError reports caller input that was rejected before any
// mutation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *Editor) invalid(field, msg string, err error) error {
	e.log.Warn("rejected %s: %s", field, msg)
	return &ValidationError{Field: field, Message: msg, Err: err}
}

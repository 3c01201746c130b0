package media

import "errors"

// Errors returned by media resolution.
var (
	// ErrInvalidMedia indicates an empty, missing or unsupported source.
	ErrInvalidMedia = errors.New("invalid media")

	// ErrReadFailed indicates a file source could not be read.
	ErrReadFailed = errors.New("media read failed")

	// ErrFileTooLarge indicates a file source exceeded the size limit.
	ErrFileTooLarge = errors.New("media file too large")

	// ErrClosed indicates the queue or its owner was closed before the
	// media could be inserted.
	ErrClosed = errors.New("editor closed")

	// ErrQueueFull indicates too many file reads are pending.
	ErrQueueFull = errors.New("media queue full")

	// ErrSkipped is returned by a CompleteFunc that had nowhere to insert
	// the media. The Pending then completes with an empty result.
	ErrSkipped = errors.New("media insertion skipped")
)

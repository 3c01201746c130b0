package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when running a script on a closed state.
	ErrStateClosed = errors.New("script state is closed")

	// ErrNoEditor is returned when a state is created without an editor.
	ErrNoEditor = errors.New("script state requires an editor")
)

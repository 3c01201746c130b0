package serialize

import "errors"

// ErrInvalidDocument indicates serialized input that cannot be read as a
// document.
var ErrInvalidDocument = errors.New("invalid document")

package metadata

import (
	"errors"
	"fmt"
)

// Causes reported by Error.
var (
	ErrMalformed       = errors.New("malformed document")
	ErrMissingField    = errors.New("missing field")
	ErrInvalidField    = errors.New("invalid value")
	ErrInvalidFilename = errors.New("invalid library filename")
	ErrDuplicate       = errors.New("duplicate library filename")
)

// Error reports a metadata document that cannot be loaded. A single bad
// entry fails the whole load.
type Error struct {
	Filename string // library filename of the entry, empty for document-level errors
	Field    string // document field name, empty for entry-level errors
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Filename == "":
		return fmt.Sprintf("metadata: %v", e.Err)
	case e.Field == "":
		return fmt.Sprintf("metadata entry %q: %v", e.Filename, e.Err)
	default:
		return fmt.Sprintf("metadata entry %q: field %q: %v", e.Filename, e.Field, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

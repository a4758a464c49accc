package translate

import (
	"fmt"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Translator is a stateless, bidirectional codec between a typed application
// value and its canonical representations: a flat string (used for composite
// keys and migration) and a data.Data value (used for persisted values).
//
// Translators are identified by their Tag. Two translator instances with the
// same tag must be interchangeable: the storage layer uses the tag, not the
// instance, to decide whether a named view is being reopened with a
// compatible translator. Differently-constructed instances of the same
// translator therefore share a tag, while translators that produce different
// encodings must not.
type Translator[T any] interface {
	// Tag returns the identity tag of this translator.
	Tag() string
	// Encode converts a value to its canonical string form.
	Encode(value T) (string, error)
	// Decode is the inverse of Encode.
	Decode(encoded string) (T, error)
	// ToData converts a value to the Data intermediate representation.
	ToData(value T) (data.Data, error)
	// FromData is the inverse of ToData.
	FromData(d data.Data) (T, error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error reports that a value could not be represented in the target
// encoding. It wraps the underlying cause when one exists. Translation
// failures are always recoverable by choosing a different value or
// translator; they are never retried by this package.
type Error struct {
	Msg   string // what failed to translate
	Cause error  // underlying error, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("TranslationError: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("TranslationError: %s", e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new translation error wrapping the given cause.
func NewError(msg string, cause error) *Error {
	return &Error{Msg: msg, Cause: cause}
}

// Package fault is the error taxonomy shared by every store. Stores return
// *fault.Error for anything the caller did wrong; uapi maps the kind to an
// HTTP status and a stable machine-readable body. Anything else bubbling out
// of a store is treated as internal and never echoed to the client.
package fault

import "fmt"

type Kind string

const (
	NotFound     Kind = "not_found"
	Conflict     Kind = "conflict"
	Unauthorized Kind = "unauthorized"
	Validation   Kind = "validation"
	Internal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string

	// Wrapped storage error, logged but never sent to the client
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an unexpected storage error as internal, keeping the cause for
// the logs while the client only ever sees msg.
func Wrap(err error, msg string) *Error {
	return &Error{Kind: Internal, Message: msg, cause: err}
}

// KindOf returns the taxonomy kind of err, or Internal for plain errors.
func KindOf(err error) Kind {
	if fe, ok := err.(*Error); ok {
		return fe.Kind
	}
	return Internal
}

package nominatim

import (
	"errors"
	"fmt"
)

// ErrSearchFailed matches every error returned by Client.Search through errors.Is.
var ErrSearchFailed = errors.New("location search failed")

// Kind represents the category of a search failure.
type Kind int

const (
	// KindTransport covers connection, DNS, TLS and timeout failures.
	KindTransport Kind = iota + 1
	// KindStatus is a response with a non-2xx status code.
	KindStatus
	// KindDecode is a body that is not a JSON array.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is a search failure with a typed Kind.
type Error struct {
	Kind   Kind
	Op     string
	Status int    // HTTP status for KindStatus
	Body   string // start of the response body for KindStatus
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: upstream returned %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrSearchFailed as a match.
func (e *Error) Is(target error) bool {
	return target == ErrSearchFailed
}

// KindOf returns the Kind of err, or 0 if err is not a search Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

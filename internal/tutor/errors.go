package tutor

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMessage = errors.New("tutor: message is empty")
	ErrTransport    = errors.New("tutor: transport failure")
	ErrFormat       = errors.New("tutor: malformed response")
)

type Kind int

const (
	KindTransport Kind = iota + 1
	KindFormat
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindFormat:
		return "format"
	default:
		return "unknown"
	}
}

// Error is returned only when the client is configured to surface failures.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tutor %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrFormat:
		return e.Kind == KindFormat
	}
	return false
}

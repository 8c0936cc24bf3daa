package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller-facing error payload.
type Kind int

const (
	KindUnknown Kind = iota
	KindArtifactNotFound
	KindArtifactLoad
	KindInputParse
	KindInputType
	KindInference
)

func (k Kind) String() string {
	switch k {
	case KindArtifactNotFound:
		return "ArtifactNotFound"
	case KindArtifactLoad:
		return "ArtifactLoadError"
	case KindInputParse:
		return "InputParseError"
	case KindInputType:
		return "InputTypeError"
	case KindInference:
		return "InferenceError"
	default:
		return "UnknownError"
	}
}

// Error carries a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with kind. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a kinded error from a format string. %w verbs are honored.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsInput reports whether err was caused by the caller's payload.
func IsInput(err error) bool {
	k := KindOf(err)
	return k == KindInputParse || k == KindInputType
}

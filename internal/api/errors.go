package api

import (
	"errors"
	"fmt"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// Kind classifies a gateway failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindNetwork    Kind = "network"
	KindServer     Kind = "server"
)

// Sentinel errors matched by errors.Is against an *Error of the same Kind.
var (
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("already exists")
	ErrNotFound   = errors.New("not found")
	ErrNetwork    = errors.New("service unreachable")
	ErrServer     = errors.New("server error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindConflict:
		return ErrConflict
	case KindNotFound:
		return ErrNotFound
	case KindNetwork:
		return ErrNetwork
	default:
		return ErrServer
	}
}

// Error is a failed gateway call.
type Error struct {
	Op      string // e.g. "delete root"
	Kind    Kind
	Status  int    // HTTP status; zero when no response arrived
	Subject string // the root or scheme the call was about
	Message string // server-supplied message, if any
	BaseURL string
	Err     error // underlying transport or decode error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Reason()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Reason renders the failure for a person reading it.
func (e *Error) Reason() string {
	switch e.Kind {
	case KindValidation:
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return fmt.Sprintf("invalid value %q", e.Subject)
	case KindConflict:
		return fmt.Sprintf("%q already exists", e.Subject)
	case KindNotFound:
		return fmt.Sprintf("%q not found; it may already have been removed", e.Subject)
	case KindNetwork:
		return fmt.Sprintf("cannot reach %s; check that the service is running and the network is up", e.BaseURL)
	default:
		if e.Message != "" {
			return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
		}
		if e.Status != 0 {
			return fmt.Sprintf("server error (status %d)", e.Status)
		}
		if e.Err != nil {
			return "server error: " + e.Err.Error()
		}
		return "server error"
	}
}

// KindOf returns the gateway failure kind of err. Client-side validation
// errors from the lexicon package count as KindValidation; anything else that
// is not an *Error counts as KindServer.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	var verr *lexicon.ValidationError
	if errors.As(err, &verr) {
		return KindValidation
	}
	return KindServer
}

// ReasonOf returns the human-readable reason for err.
func ReasonOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Reason()
	}
	return err.Error()
}

package remotelist

import (
	"errors"
	"fmt"
)

// Kind classifies view model failures.
type Kind int

const (
	// FetchFailed is a read failure. Previously loaded items stay available.
	FetchFailed Kind = iota + 1
	// MutationFailed is a write failure. Optimistic changes are rolled back.
	MutationFailed
)

func (k Kind) String() string {
	switch k {
	case FetchFailed:
		return "fetch failed"
	case MutationFailed:
		return "mutation failed"
	}
	return "unknown"
}

var (
	ErrFetchFailed    = errors.New(FetchFailed.String())
	ErrMutationFailed = errors.New(MutationFailed.String())

	ErrNotFound     = errors.New("no item with that id")
	ErrUnknownField = errors.New("unknown boolean field")
	ErrClosed       = errors.New("view model closed")
)

// Error is returned by every view model operation that fails. Match the kind
// with errors.Is(err, ErrFetchFailed) or errors.Is(err, ErrMutationFailed).
type Error struct {
	Kind     Kind
	Resource string
	Op       string
	ID       string
	Field    string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Resource != "" {
		msg = e.Resource + " " + msg
	}
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.Field != "" {
		msg += "." + e.Field
	}
	return fmt.Sprintf("%s: %s: %v", msg, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrFetchFailed:
		return e.Kind == FetchFailed
	case ErrMutationFailed:
		return e.Kind == MutationFailed
	}
	return false
}

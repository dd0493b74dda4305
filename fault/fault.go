// Package fault classifies the unrecoverable failures of a run so the
// process entry point can report them and pick an exit status.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a fatal run error.
type Kind uint8

const (
	Unknown  Kind = iota
	Config        // missing/invalid key, absent mesh file, bad device index
	Geometry      // degenerate or malformed mesh
	Device        // platform, compilation, allocation, dispatch
	IO            // output directory or snapshot file
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Config:
		return "config"
	case Geometry:
		return "geometry"
	case Device:
		return "device"
	case IO:
		return "io"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit status for the kind.
func (k Kind) ExitCode() int {
	switch k {
	case Config:
		return 2
	case Geometry:
		return 3
	case Device:
		return 4
	case IO:
		return 5
	default:
		return 1
	}
}

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a kind and operation. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a classified error from a format string.
func Newf(kind Kind, op string, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in the chain,
// or Unknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

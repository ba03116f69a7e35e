package vm

import "github.com/pkg/errors"

// ErrorKind is the categorical trap taxonomy the interpreter surfaces.
// These are not exceptions: once raised, execution terminates immediately
// with no recovery, no retry, no propagation to user code.
type ErrorKind int

const (
	MalformedClassFile ErrorKind = iota + 1
	LinkError
	NoSuchEntry
	IllegalOperand
	NoNativeImpl
	UnsupportedArch
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedClassFile:
		return "MalformedClassFile"
	case LinkError:
		return "LinkError"
	case NoSuchEntry:
		return "NoSuchEntry"
	case IllegalOperand:
		return "IllegalOperand"
	case NoNativeImpl:
		return "NoNativeImpl"
	case UnsupportedArch:
		return "UnsupportedArch"
	default:
		return "Unknown"
	}
}

// ExitCode maps an ErrorKind to the process exit code the CLI should return.
func (k ErrorKind) ExitCode() int {
	switch k {
	case MalformedClassFile:
		return 2
	case LinkError:
		return 3
	case NoSuchEntry:
		return 4
	case IllegalOperand:
		return 5
	case NoNativeImpl:
		return 6
	case UnsupportedArch:
		return 7
	default:
		return 1
	}
}

// TrapError is a terminal interpreter error: a kind plus a wrapped cause.
type TrapError struct {
	Kind  ErrorKind
	cause error
}

func (e *TrapError) Error() string {
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *TrapError) Unwrap() error {
	return e.cause
}

// Trap builds a TrapError, wrapping the formatted message with pkg/errors
// so a diagnostic carries a stack trace alongside its categorical kind.
func Trap(kind ErrorKind, format string, args ...interface{}) error {
	return &TrapError{Kind: kind, cause: errors.Errorf(format, args...)}
}

// KindOf extracts the ErrorKind from err, defaulting to LinkError for any
// error that wasn't raised through Trap (e.g. an I/O failure surfaced by
// the classloader).
func KindOf(err error) ErrorKind {
	var t *TrapError
	if errors.As(err, &t) {
		return t.Kind
	}
	return LinkError
}

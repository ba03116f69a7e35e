package classfile

import "github.com/pkg/errors"

// ErrMalformed wraps a decode-time failure. Every decode error is wrapped
// with this sentinel via errors.Wrap so callers can test with errors.Is
// while still getting a stack trace on the diagnostic.
var ErrMalformed = errors.New("malformed class file")

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}

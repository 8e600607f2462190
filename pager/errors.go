package pager

import (
	"errors"
	"fmt"
)

// FatalError marks a condition the engine considers unrecoverable: a
// corrupt file, an out-of-bounds page number, or an attempt to flush a
// page that was never loaded. The REPL is the only caller that should
// ever turn one of these into os.Exit; every other layer just
// propagates it like any other error.
type FatalError struct {
	msg string
}

func (e *FatalError) Error() string { return e.msg }

// NewFatalError builds a FatalError with a printf-style message.
func NewFatalError(format string, args ...interface{}) *FatalError {
	return &FatalError{msg: fmt.Sprintf(format, args...)}
}

// IsFatal reports whether err is (or wraps) a *FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

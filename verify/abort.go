package verify

import (
	"fmt"

	"github.com/pkg/errors"
)

// Abort terminates the release. Message is what the operator sees.
type Abort struct {
	Message string
	Err     error
}

func (a *Abort) Error() string {
	switch {
	case a.Message != "" && a.Err != nil && !errors.Is(a.Err, ErrFalse):
		return a.Message + ": " + a.Err.Error()
	case a.Message != "":
		return a.Message
	case a.Err != nil:
		return a.Err.Error()
	}
	return "aborted"
}

// Unwrap returns the underlying cause.
func (a *Abort) Unwrap() error { return a.Err }

// Cause implements the github.com/pkg/errors causer interface.
func (a *Abort) Cause() error { return a.Err }

// Action builds the abort for a failed check from its cause.
type Action func(cause error) *Abort

// EchoAndDie aborts with a fixed diagnostic message.
func EchoAndDie(format string, args ...interface{}) Action {
	msg := fmt.Sprintf(format, args...)
	return func(cause error) *Abort {
		return &Abort{Message: msg, Err: cause}
	}
}

// Die aborts with the cause as the only diagnostic.
func Die() Action {
	return func(cause error) *Abort {
		return &Abort{Err: cause}
	}
}

// AsAbort reports whether err is, or wraps, an *Abort.
func AsAbort(err error) (*Abort, bool) {
	var a *Abort
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}

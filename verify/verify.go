// Package verify wraps the outcome of a fallible release step into a Result
// and provides the fallback and abort combinators used to chain steps.
//
// A Result is either a success carrying a value or a failure carrying the
// cause. Combinators never panic and never exit the process: an abort is
// reported as an *Abort error which the caller must return immediately, so
// no step after an abort can run.
package verify

import (
	"github.com/pkg/errors"
)

// ErrFalse is the cause recorded when a check evaluated to false without
// any underlying error.
var ErrFalse = errors.New("check evaluated false")

// Result is the outcome of one verified operation.
type Result[T any] struct {
	value T
	ok    bool
	err   error
}

// Value verifies an operation returning a value and an error.
func Value[T any](v T, err error) Result[T] {
	return Result[T]{value: v, ok: err == nil, err: err}
}

// Truth verifies a boolean check. The result is truthy only when the check
// returned true without error.
func Truth(b bool, err error) Result[bool] {
	if err == nil && !b {
		return Result[bool]{value: false, err: ErrFalse}
	}
	return Result[bool]{value: b, ok: err == nil, err: err}
}

// Run verifies an operation that only reports an error.
func Run(err error) Result[struct{}] {
	return Result[struct{}]{ok: err == nil, err: err}
}

// Failed returns a failed Result with the given cause.
func Failed[T any](err error) Result[T] {
	if err == nil {
		err = ErrFalse
	}
	return Result[T]{err: err}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.ok }

// Err returns the failure cause, or nil on success.
func (r Result[T]) Err() error {
	if r.ok {
		return nil
	}
	return r.err
}

// Get returns the value and whether the operation succeeded.
func (r Result[T]) Get() (T, bool) { return r.value, r.ok }

// MapError rewrites the failure cause. Successful results are returned as is.
func (r Result[T]) MapError(fn func(error) error) Result[T] {
	if r.ok || fn == nil {
		return r
	}
	if err := fn(r.err); err != nil {
		r.err = err
	}
	return r
}

// ValueElse returns the value on success. On failure it returns whatever
// fallback computes from the failure cause. It never aborts.
func (r Result[T]) ValueElse(fallback func(cause error) T) T {
	if r.ok {
		return r.value
	}
	if fallback == nil {
		var zero T
		return zero
	}
	return fallback(r.err)
}

// OrElse returns the value on success. On failure it runs abort and returns
// the resulting *Abort, which the caller must propagate.
func (r Result[T]) OrElse(abort Action) (T, error) {
	if r.ok {
		return r.value, nil
	}
	var zero T
	return zero, invoke(abort, r.err)
}

// Then is the inverted guard used for "must not be true" preconditions: it
// aborts when the check was truthy. A falsy check continues. A check that
// could not be evaluated at all aborts with its error, since the
// precondition is then unknown.
func (r Result[T]) Then(abort Action) error {
	if r.ok {
		return invoke(abort, nil)
	}
	if r.err != nil && !errors.Is(r.err, ErrFalse) {
		return invoke(Die(), r.err)
	}
	return nil
}

func invoke(abort Action, cause error) error {
	if abort == nil {
		abort = Die()
	}
	if a := abort(cause); a != nil {
		return a
	}
	return &Abort{Err: cause}
}

package verify

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueElse(t *testing.T) {
	got := Value("leftover", nil).ValueElse(func(error) string {
		t.Fatal("fallback must not run on success")
		return ""
	})
	assert.Equal(t, "leftover", got)

	boom := errors.New("no such file")
	var seen error
	got = Value("", boom).ValueElse(func(cause error) string {
		seen = cause
		return "synthesized"
	})
	assert.Equal(t, "synthesized", got)
	assert.Equal(t, boom, seen)
}

func TestValueElseNilFallback(t *testing.T) {
	assert.Equal(t, 0, Value(7, errors.New("x")).ValueElse(nil))
}

func TestOrElse(t *testing.T) {
	v, err := Value("1.2.3", nil).OrElse(EchoAndDie("No version!?"))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v)

	v, err = Value("", errors.New("no match")).OrElse(EchoAndDie("No version!?"))
	require.Error(t, err)
	assert.Empty(t, v)
	a, ok := AsAbort(err)
	require.True(t, ok)
	assert.Equal(t, "No version!?", a.Message)
	assert.EqualError(t, a.Err, "no match")
}

func TestOrElseFalseCheck(t *testing.T) {
	_, err := Truth(false, nil).OrElse(EchoAndDie("Failed to build %s", "out.jar"))
	a, ok := AsAbort(err)
	require.True(t, ok)
	assert.Equal(t, "Failed to build out.jar", a.Error())
}

func TestThenAbortsOnTruthy(t *testing.T) {
	err := Truth(true, nil).Then(EchoAndDie("Version `%s` already exists!", "1.0"))
	a, ok := AsAbort(err)
	require.True(t, ok)
	assert.Equal(t, "Version `1.0` already exists!", a.Message)
	assert.NoError(t, a.Err)
}

func TestThenContinuesOnFalsy(t *testing.T) {
	assert.NoError(t, Truth(false, nil).Then(EchoAndDie("exists")))
}

func TestThenAbortsWhenCheckErrored(t *testing.T) {
	err := Truth(false, errors.New("not a git repository")).Then(EchoAndDie("exists"))
	a, ok := AsAbort(err)
	require.True(t, ok)
	assert.Empty(t, a.Message)
	assert.Contains(t, a.Error(), "not a git repository")
}

func TestRunAndDie(t *testing.T) {
	_, err := Run(nil).OrElse(Die())
	assert.NoError(t, err)

	_, err = Run(errors.New("task test failed")).OrElse(Die())
	a, ok := AsAbort(err)
	require.True(t, ok)
	assert.Equal(t, "task test failed", a.Error())
}

func TestMapError(t *testing.T) {
	r := Value(0, errors.New("raw")).MapError(func(err error) error {
		return errors.Wrap(err, "read build file")
	})
	assert.EqualError(t, r.Err(), "read build file: raw")

	ok := Value(1, nil).MapError(func(error) error { return errors.New("unused") })
	assert.NoError(t, ok.Err())
}

func TestAsAbortWrapped(t *testing.T) {
	err := errors.Wrap(&Abort{Message: "stop"}, "step 3")
	a, ok := AsAbort(err)
	require.True(t, ok)
	assert.Equal(t, "stop", a.Message)

	_, ok = AsAbort(errors.New("plain"))
	assert.False(t, ok)
}

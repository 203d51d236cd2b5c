package result

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOkAndErr(t *testing.T) {
	ok := Ok(42)
	require.True(t, ok.IsOk())
	require.False(t, ok.IsErr())
	require.Equal(t, 42, ok.Value())
	require.NoError(t, ok.Err())

	boom := errors.New("boom")
	bad := Err[int](boom)
	require.True(t, bad.IsErr())
	require.ErrorIs(t, bad.Err(), boom)
}

func TestValuePanicsOnError(t *testing.T) {
	bad := Err[string](errors.New("nope"))
	require.Panics(t, func() { _ = bad.Value() })
}

func TestErrRejectsNil(t *testing.T) {
	require.Panics(t, func() { _ = Err[int](nil) })
}

func TestFromAndUnwrap(t *testing.T) {
	v, err := From(strconv.Atoi("17")).Unwrap()
	require.NoError(t, err)
	require.Equal(t, 17, v)

	_, err = From(strconv.Atoi("x")).Unwrap()
	require.Error(t, err)
}

func TestThenStopsAtFirstError(t *testing.T) {
	calls := 0
	parse := func(s string) Result[int] {
		calls++
		return From(strconv.Atoi(s))
	}

	r := Then(Ok("5"), parse)
	r = Then(r, func(n int) Result[int] { return Ok(n * 2) })
	require.Equal(t, 10, r.Value())

	r = Then(Ok("five"), parse)
	r = Then(r, func(n int) Result[int] {
		t.Fatal("must not be called after an error")
		return Ok(n)
	})
	require.True(t, r.IsErr())
	require.Equal(t, 2, calls)
}

func TestMapAndMapErr(t *testing.T) {
	r := Map(Ok(3), func(n int) string { return strconv.Itoa(n) })
	require.Equal(t, "3", r.Value())

	base := errors.New("query failed")
	wrapped := MapErr(Err[int](base), func(err error) error {
		return fmt.Errorf("load questions: %w", err)
	})
	require.ErrorIs(t, wrapped.Err(), base)
	require.Contains(t, wrapped.Err().Error(), "load questions")

	untouched := MapErr(Ok(1), func(err error) error { return errors.New("never") })
	require.True(t, untouched.IsOk())
}

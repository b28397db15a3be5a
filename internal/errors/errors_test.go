package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := New(CategoryStorage, SeverityError, "append failed")
		require.Equal(t, "storage (error): append failed", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CategoryStorage, SeverityError, "append failed")
		require.Equal(t, "storage (error): append failed: disk full", err.Error())
		require.ErrorIs(t, err, cause)
	})
}

func TestWithContext(t *testing.T) {
	err := New(CategoryValidation, SeverityWarning, "bad argument").
		WithContext("arg", "abc").
		WithContext("command", "/setadmin")
	require.Equal(t, "abc", err.Context["arg"])
	require.Equal(t, "/setadmin", err.Context["command"])
}

func TestIsCategory(t *testing.T) {
	err := New(CategoryAuth, SeverityWarning, "admin only")
	require.True(t, IsCategory(err, CategoryAuth))
	require.False(t, IsCategory(err, CategoryStorage))
	require.False(t, IsCategory(nil, CategoryAuth))
	require.False(t, IsCategory(errors.New("plain"), CategoryAuth))
}

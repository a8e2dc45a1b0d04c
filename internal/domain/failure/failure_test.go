package failure_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ganot/sitecycle/internal/domain/failure"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("disk full")

	require.Equal(t, failure.Kind(""), failure.KindOf(nil))
	require.Equal(t, failure.KindWrite, failure.KindOf(failure.Write("rotate", cause)))
	require.Equal(t, failure.KindExport, failure.KindOf(fmt.Errorf("archiving: %w", failure.Export("emit", cause))))
	require.Equal(t, failure.KindValidation, failure.KindOf(failure.Validation("name is required")))
	require.Equal(t, failure.KindUnknown, failure.KindOf(cause))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := failure.Read("list projects", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "READ_FAILURE: list projects: boom", err.Error())
	require.NoError(t, failure.Write("noop", nil))
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesChain(t *testing.T) {
	root := stderrors.New("connection refused")
	err := Wrap(root, CodeUnavailable, "database unreachable")

	require.True(t, stderrors.Is(err, root))
	require.True(t, IsCode(err, CodeUnavailable))
	require.Contains(t, err.Error(), "unavailable")
	require.Contains(t, err.Error(), "connection refused")
}

func TestIsCodeThroughFmtWrapping(t *testing.T) {
	inner := New(CodeNotFound, "entity not found")
	outer := fmt.Errorf("loading project: %w", inner)

	require.True(t, IsCode(outer, CodeNotFound))
	require.False(t, IsCode(outer, CodeConflict))
	require.False(t, IsCode(stderrors.New("plain"), CodeNotFound))
}

func TestWithMeta(t *testing.T) {
	err := New(CodeInvalid, "too many files").WithMeta("limit", 50).WithMeta("files", 51)
	require.Equal(t, 50, err.Meta["limit"])
	require.Equal(t, 51, err.Meta["files"])
}

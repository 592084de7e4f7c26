package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient struct {
	name  string
	out   json.RawMessage
	err   error
	calls int
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) GenerateJSON(_ context.Context, _, _ string) (json.RawMessage, error) {
	s.calls++
	return s.out, s.err
}

func TestChainFallsThroughInOrder(t *testing.T) {
	first := &stubClient{name: "first", err: errors.New("quota exceeded")}
	second := &stubClient{name: "second", out: json.RawMessage(`{"ok":true}`)}
	third := &stubClient{name: "third", out: json.RawMessage(`{"ok":"never"}`)}

	chain := NewChain(zap.NewNop(), first, second, third)
	raw, err := chain.GenerateJSON(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(raw))

	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
	require.Equal(t, 0, third.calls)
}

func TestChainEachBackendTriedOnce(t *testing.T) {
	first := &stubClient{name: "first", err: errors.New("down")}
	second := &stubClient{name: "second", err: errors.New("also down")}

	chain := NewChain(zap.NewNop(), first, second)
	_, err := chain.GenerateJSON(context.Background(), "sys", "prompt")
	require.EqualError(t, err, "also down")
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
}

func TestChainSkipsUnparseableResponse(t *testing.T) {
	// A backend that answers without error but with prose must not consume
	// the chain; the next backend still gets its turn.
	first := &stubClient{name: "first", out: json.RawMessage("I am sorry, I cannot analyze this.")}
	second := &stubClient{name: "second", out: json.RawMessage(`{"languages":{"go":1.0}}`)}

	chain := NewChain(zap.NewNop(), first, second)
	raw, err := chain.GenerateJSON(context.Background(), "sys", "prompt")
	require.NoError(t, err)
	require.JSONEq(t, `{"languages":{"go":1.0}}`, string(raw))
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
}

func TestChainAllUnparseable(t *testing.T) {
	first := &stubClient{name: "first", out: json.RawMessage("no json here")}
	second := &stubClient{name: "second", out: json.RawMessage("none here either")}

	chain := NewChain(zap.NewNop(), first, second)
	_, err := chain.GenerateJSON(context.Background(), "sys", "prompt")
	require.ErrorIs(t, err, ErrInvalidJSON)
	require.Equal(t, 1, first.calls)
	require.Equal(t, 1, second.calls)
}

func TestChainEmpty(t *testing.T) {
	chain := NewChain(zap.NewNop())
	_, err := chain.GenerateJSON(context.Background(), "sys", "prompt")
	require.ErrorIs(t, err, ErrNoBackends)
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &stubClient{name: "first", err: errors.New("slow backend timed out")}
	second := &stubClient{name: "second", out: json.RawMessage(`{}`)}

	cancel()
	chain := NewChain(zap.NewNop(), first, second)
	_, err := chain.GenerateJSON(ctx, "sys", "prompt")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, second.calls)
}

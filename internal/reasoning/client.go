// Package reasoning wraps the external large-language-model backends that
// perform all analysis, documentation, and improvement inference. Backends
// are opaque text-in/text-out dependencies; callers own structured-output
// extraction and must tolerate non-conforming responses.
package reasoning

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrInvalidJSON is returned when a backend responds without usable JSON.
var ErrInvalidJSON = errors.New("reasoning: invalid json from backend")

// ErrNoBackends is returned by a chain with an empty client list.
var ErrNoBackends = errors.New("reasoning: no backends configured")

// Client is a single reasoning backend. GenerateJSON sends a system
// instruction plus a user prompt and returns the raw JSON response.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error)
}

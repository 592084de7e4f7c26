package reasoning

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Chain tries a fixed preference order of backends; the first backend whose
// response contains a parseable JSON object wins. A backend that answers
// without error but with unusable prose counts as a failure and the next
// backend is tried. Each backend is attempted at most once per call: no
// retries, no backoff.
type Chain struct {
	clients []Client
	log     *zap.Logger
}

func NewChain(log *zap.Logger, clients ...Client) *Chain {
	return &Chain{clients: clients, log: log}
}

func (c *Chain) Name() string { return "chain" }

// Backends returns the configured backend names, in preference order.
func (c *Chain) Backends() []string {
	names := make([]string, 0, len(c.clients))
	for _, cl := range c.clients {
		names = append(names, cl.Name())
	}
	return names
}

func (c *Chain) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	if len(c.clients) == 0 {
		return nil, ErrNoBackends
	}
	var lastErr error
	for _, cl := range c.clients {
		raw, err := cl.GenerateJSON(ctx, system, prompt)
		if err == nil {
			if _, ok := ExtractJSONObject(string(raw)); ok {
				return raw, nil
			}
			err = ErrInvalidJSON
		}
		lastErr = err
		c.log.Warn("reasoning backend failed",
			zap.String("backend", cl.Name()),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

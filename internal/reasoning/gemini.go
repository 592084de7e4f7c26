package reasoning

import (
	"context"
	"encoding/json"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client. It only
// focuses on the API call itself; fallback across backends is handled by
// Chain.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

// NewGeminiClient constructs a Gemini backend. The genai client reads its
// API key from the environment (GEMINI_API_KEY).
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "gemini:" + g.model }

// GenerateJSON asks for application/json output and returns the model's
// response body as raw JSON.
func (g *GeminiClient) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		cfg,
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrInvalidJSON
	}
	return json.RawMessage(resp.Candidates[0].Content.Parts[0].Text), nil
}

package insight

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// TextGenerator produces free-form text from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, temperature *float32) (string, error)
}

// GeminiGenerator implements TextGenerator on the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// Compile-time check that GeminiGenerator implements TextGenerator
var _ TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a Gemini-backed generator. An empty apiKey lets
// the SDK fall back to GOOGLE_API_KEY / GEMINI_API_KEY.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends a single-turn prompt and returns the response text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, temperature *float32) (string, error) {
	var cfg *genai.GenerateContentConfig
	if temperature != nil {
		cfg = &genai.GenerateContentConfig{Temperature: temperature}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

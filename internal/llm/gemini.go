package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider generates text with Google's Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	opts   Options
}

// NewGeminiProvider fails with a configuration error when apiKey is empty.
func NewGeminiProvider(ctx context.Context, apiKey, model string, opts Options) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("gemini", "API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, NewConfigurationError("gemini", fmt.Sprintf("failed to create client: %v", err))
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		opts:   opts,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.opts.Timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{}
	if g.opts.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(g.opts.Temperature))
	}
	if g.opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(g.opts.MaxTokens)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", Wrap(g.Name(), err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", Wrap(g.Name(), ErrEmptyResponse)
	}
	return text, nil
}

package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider is the generative-text collaborator: prompt in, text out.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tune a provider's calls.
type Options struct {
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// PingPrompt asks the model for a short fixed answer.
const PingPrompt = `Hello, respond with "API working" in Hebrew`

// Ping checks the provider answers at all.
func Ping(ctx context.Context, p Provider) (string, error) {
	text, err := p.Generate(ctx, PingPrompt)
	if err != nil {
		return "", fmt.Errorf("ping %s: %w", p.Name(), err)
	}
	return text, nil
}

// New builds the provider named by name ("gemini" or "anthropic").
func New(ctx context.Context, name, apiKey, model string, opts Options) (Provider, error) {
	switch name {
	case "gemini":
		p, err := NewGeminiProvider(ctx, apiKey, model, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "anthropic":
		p, err := NewAnthropicProvider(apiKey, model, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, NewConfigurationError(name, fmt.Sprintf("unknown provider %q", name))
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

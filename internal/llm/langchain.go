package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// LangchainProvider generates text with any langchaingo model; Anthropic is
// the one wired by configuration.
type LangchainProvider struct {
	model llms.Model
	name  string
	opts  Options
}

// NewAnthropicProvider fails with a configuration error when apiKey is empty.
func NewAnthropicProvider(apiKey, model string, opts Options) (*LangchainProvider, error) {
	if apiKey == "" {
		return nil, NewConfigurationError("anthropic", "API key is required")
	}

	client, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	)
	if err != nil {
		return nil, NewConfigurationError("anthropic", fmt.Sprintf("failed to create client: %v", err))
	}

	return NewLangchainProvider("anthropic", client, opts), nil
}

// NewLangchainProvider adapts any langchaingo model.
func NewLangchainProvider(name string, model llms.Model, opts Options) *LangchainProvider {
	return &LangchainProvider{
		model: model,
		name:  name,
		opts:  opts,
	}
}

func (a *LangchainProvider) Name() string {
	return a.name
}

func (a *LangchainProvider) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, a.opts.Timeout)
	defer cancel()

	var callOpts []llms.CallOption
	if a.opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(a.opts.Temperature))
	}
	if a.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(a.opts.MaxTokens))
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt, callOpts...)
	if err != nil {
		return "", Wrap(a.name, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", Wrap(a.name, ErrEmptyResponse)
	}
	return text, nil
}

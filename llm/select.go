package llm

import (
	"context"
	"log/slog"

	"github.com/m4xw311/brainstorm/config"
	"github.com/m4xw311/brainstorm/errors"
)

// Provider resolves which generator cfg asks for. An explicit local flag
// wins; with no provider configured an OpenAI key selects OpenAI.
func Provider(cfg *config.Config) string {
	if cfg.Local {
		return config.ProviderLocal
	}
	if cfg.LLMClient != "" {
		return cfg.LLMClient
	}
	if cfg.Env.OpenAIAPIKey != "" {
		return config.ProviderOpenAI
	}
	return config.ProviderLocal
}

// New constructs the client for provider without any fallback.
func New(ctx context.Context, provider string, cfg *config.Config) (LLMClient, error) {
	opts := Options{Model: cfg.ModelFor(provider), Temperature: cfg.Temperature}
	switch provider {
	case config.ProviderLocal:
		return NewLocalLLMClient(), nil
	case config.ProviderOpenAI:
		opts.APIKey, opts.BaseURL = cfg.Env.OpenAIAPIKey, cfg.Env.OpenAIBaseURL
		return NewOpenAILLMClient(ctx, opts)
	case config.ProviderAnthropic:
		opts.APIKey, opts.BaseURL = cfg.Env.AnthropicAPIKey, cfg.Env.AnthropicBaseURL
		return NewAnthropicLLMClient(ctx, opts)
	case config.ProviderGemini:
		opts.APIKey = cfg.Env.GeminiAPIKey
		return NewGeminiLLMClient(ctx, opts)
	case config.ProviderBedrock:
		opts.BaseURL = cfg.Env.BedrockEndpoint
		return NewBedrockLLMClient(ctx, opts)
	default:
		return nil, errors.New("unknown llm provider %q", provider)
	}
}

// Select picks the configured generator. A remote client that cannot be
// constructed is replaced by the local one, and a remote client that can is
// wrapped so a failed call falls back to local output.
func Select(ctx context.Context, cfg *config.Config, logger *slog.Logger) LLMClient {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	local := NewLocalLLMClient()
	provider := Provider(cfg)
	if provider == config.ProviderLocal {
		return local
	}

	client, err := New(ctx, provider, cfg)
	if err != nil {
		logger.Warn("falling back to local agent", "provider", provider, "error", err)
		return local
	}
	logger.Debug("using remote generator", "provider", provider, "name", client.Name())
	return &FallbackLLMClient{Primary: client, Secondary: local, Logger: logger}
}

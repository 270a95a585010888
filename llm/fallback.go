package llm

import (
	"context"
	"log/slog"

	"github.com/m4xw311/brainstorm/session"
)

// FallbackLLMClient substitutes Secondary's reply whenever Primary fails.
// There is exactly one attempt at each; nothing is retried.
type FallbackLLMClient struct {
	Primary   LLMClient
	Secondary LLMClient
	Logger    *slog.Logger
}

// Name reports the primary, since that is the configured generator.
func (f *FallbackLLMClient) Name() string { return f.Primary.Name() }

func (f *FallbackLLMClient) Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error) {
	reply, err := f.Primary.Chat(ctx, prompt, history)
	if err == nil {
		return reply, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if f.Logger != nil {
		f.Logger.Warn("generation failed, using fallback",
			"primary", f.Primary.Name(), "fallback", f.Secondary.Name(), "error", err)
	}
	return f.Secondary.Chat(ctx, prompt, history)
}

// Unwrap returns the primary client when c is a FallbackLLMClient. Callers
// that handle generation errors themselves use it to see the real failure.
func Unwrap(c LLMClient) LLMClient {
	if f, ok := c.(*FallbackLLMClient); ok {
		return f.Primary
	}
	return c
}

package llm

import (
	"context"

	"github.com/m4xw311/brainstorm/session"
)

// SystemPrompt frames every remote generation request.
const SystemPrompt = "You are a pragmatic product/engineering brainstorming partner. " +
	"Favor concrete next steps, trade-off analysis, and lean experiments. " +
	"Prefer bullet points, crisp writing, and numbered lists."

const DefaultMaxTokens = 4096

// LLMClient generates a reply to prompt given the prior conversation.
// Implementations send the system prompt, then history, then prompt as the
// final user turn.
type LLMClient interface {
	Name() string
	Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error)
}

// Options configures a remote client. Temperature is sent as given.
type Options struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
}

// withPrompt returns history followed by prompt as a user message.
func withPrompt(prompt string, history []session.Message) []session.Message {
	msgs := make([]session.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	return append(msgs, session.Message{Role: session.RoleUser, Text: prompt})
}

func assistantReply(text string) *session.Message {
	return &session.Message{Role: session.RoleAssistant, Text: text}
}

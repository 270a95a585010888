package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/session"
)

const DefaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicLLMClient is a client for the Anthropic Messages API.
type AnthropicLLMClient struct {
	client      *anthropic.Client
	model       string
	temperature float64
}

func NewAnthropicLLMClient(ctx context.Context, opts Options) (*AnthropicLLMClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not set")
	}

	options := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		options = append(options, option.WithBaseURL(opts.BaseURL))
	}
	client := anthropic.NewClient(options...)

	model := opts.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicLLMClient{client: &client, model: model, temperature: opts.Temperature}, nil
}

func (a *AnthropicLLMClient) Name() string { return "Anthropic Brainstormer" }

func (a *AnthropicLLMClient) Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   DefaultMaxTokens,
		Messages:    convertMessagesToAnthropic(withPrompt(prompt, history)),
		System:      []anthropic.TextBlockParam{{Text: SystemPrompt}},
		Temperature: anthropic.Float(a.temperature),
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send message to Anthropic")
	}
	return processAnthropicResponse(resp), nil
}

// convertMessagesToAnthropic maps session messages onto Anthropic turns.
// Empty assistant turns are dropped because the API rejects them.
func convertMessagesToAnthropic(messages []session.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	for _, msg := range messages {
		switch msg.Role {
		case session.RoleAssistant:
			if msg.Text == "" {
				continue
			}
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Text)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Text)))
		}
	}
	return out
}

func processAnthropicResponse(resp *anthropic.Message) *session.Message {
	if resp == nil {
		return assistantReply("")
	}
	var b strings.Builder
	for _, content := range resp.Content {
		if c, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(c.Text)
		}
	}
	return assistantReply(strings.TrimSpace(b.String()))
}

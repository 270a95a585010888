package llm

import (
	"context"
	"strings"

	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/session"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAILLMClient is a client for the OpenAI Chat Completion API.
type OpenAILLMClient struct {
	client      *openai.Client
	model       string
	temperature float64
}

// NewOpenAILLMClient creates a new OpenAILLMClient. An API key is required;
// BaseURL is optional for compatible endpoints.
func NewOpenAILLMClient(ctx context.Context, opts Options) (*OpenAILLMClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}

	options := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
	}
	if opts.BaseURL != "" {
		options = append(options, option.WithBaseURL(opts.BaseURL))
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	// The &c is required, do not replace and just use c
	c := openai.NewClient(options...)
	return &OpenAILLMClient{client: &c, model: model, temperature: opts.Temperature}, nil
}

func (o *OpenAILLMClient) Name() string { return "OpenAI Brainstormer" }

// Chat sends a chat request to OpenAI and converts the response into a session.Message.
func (o *OpenAILLMClient) Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    convertMessagesToOpenAI(withPrompt(prompt, history)),
		Temperature: openai.Float(o.temperature),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send message to OpenAI")
	}
	return processOpenAIResponse(resp), nil
}

func processOpenAIResponse(resp *openai.ChatCompletion) *session.Message {
	if resp == nil || len(resp.Choices) == 0 {
		return assistantReply("")
	}
	return assistantReply(strings.TrimSpace(resp.Choices[0].Message.Content))
}

// convertMessagesToOpenAI prepends the system prompt and maps roles.
func convertMessagesToOpenAI(messages []session.Message) []openai.ChatCompletionMessageParamUnion {
	chatMessages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(SystemPrompt)}
	for _, msg := range messages {
		switch msg.Role {
		case session.RoleAssistant:
			chatMessages = append(chatMessages, openai.AssistantMessage(msg.Text))
		default:
			chatMessages = append(chatMessages, openai.UserMessage(msg.Text))
		}
	}
	return chatMessages
}

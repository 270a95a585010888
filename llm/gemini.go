package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/session"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiLLMClient is a client for the Google Gemini API.
type GeminiLLMClient struct {
	model *genai.GenerativeModel
}

func NewGeminiLLMClient(ctx context.Context, opts Options) (*GeminiLLMClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create genai client")
	}

	name := opts.Model
	if name == "" {
		name = DefaultGeminiModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(float32(opts.Temperature))
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt)}}

	return &GeminiLLMClient{model: model}, nil
}

func (g *GeminiLLMClient) Name() string { return "Gemini Brainstormer" }

func (g *GeminiLLMClient) Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error) {
	chat := g.model.StartChat()
	chat.History = convertMessagesToGemini(history)

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send message to Gemini")
	}
	return processGeminiResponse(resp)
}

// convertMessagesToGemini maps roles: assistant becomes "model", all else "user".
func convertMessagesToGemini(messages []session.Message) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range messages {
		role := "user"
		if msg.Role == session.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}
	return contents
}

func processGeminiResponse(resp *genai.GenerateContentResponse) (*session.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("received an empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return assistantReply(strings.TrimSpace(b.String())), nil
}

package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/session"
)

const DefaultBedrockModel = "anthropic.claude-3-haiku-20240307-v1:0"

// BedrockLLMClient is a client for Anthropic models on AWS Bedrock.
type BedrockLLMClient struct {
	client      *bedrockruntime.Client
	modelID     string
	temperature float64
}

// NewBedrockLLMClient uses the default AWS credential chain. BaseURL, when set,
// overrides the Bedrock endpoint.
func NewBedrockLLMClient(ctx context.Context, opts Options) (*BedrockLLMClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load AWS config")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client := bedrockruntime.NewFromConfig(cfg, func(o *bedrockruntime.Options) {
		if opts.BaseURL != "" {
			o.BaseEndpoint = aws.String(opts.BaseURL)
		}
	})

	modelID := opts.Model
	if modelID == "" {
		modelID = DefaultBedrockModel
	}
	return &BedrockLLMClient{client: client, modelID: modelID, temperature: opts.Temperature}, nil
}

func (b *BedrockLLMClient) Name() string { return "Bedrock Brainstormer" }

func (b *BedrockLLMClient) Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error) {
	body, err := createBedrockRequest(withPrompt(prompt, history), b.temperature)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create Bedrock request")
	}

	resp, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to invoke Bedrock model")
	}
	return processBedrockResponse(resp.Body)
}

type bedrockContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type bedrockMessage struct {
	Role    string           `json:"role"`
	Content []bedrockContent `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system"`
	Temperature      float64          `json:"temperature"`
	Messages         []bedrockMessage `json:"messages"`
}

type bedrockResponse struct {
	Content []bedrockContent `json:"content"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// createBedrockRequest builds the Anthropic-on-Bedrock request body.
func createBedrockRequest(messages []session.Message, temperature float64) ([]byte, error) {
	req := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        DefaultMaxTokens,
		System:           SystemPrompt,
		Temperature:      temperature,
	}
	for _, msg := range messages {
		role := session.RoleUser
		if msg.Role == session.RoleAssistant {
			if msg.Text == "" {
				continue
			}
			role = session.RoleAssistant
		}
		req.Messages = append(req.Messages, bedrockMessage{
			Role:    role,
			Content: []bedrockContent{{Type: "text", Text: msg.Text}},
		})
	}
	return json.Marshal(req)
}

func processBedrockResponse(body []byte) (*session.Message, error) {
	var resp bedrockResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal Bedrock response")
	}
	if resp.Error != nil {
		return nil, errors.New("Bedrock API error: %s", resp.Error.Message)
	}

	var b strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	return assistantReply(strings.TrimSpace(b.String())), nil
}

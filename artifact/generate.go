package artifact

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/llm"
	"github.com/m4xw311/brainstorm/session"
)

// Generator produces artifacts from sessions using an LLM client.
type Generator struct {
	client llm.LLMClient
	now    func() time.Time
}

// NewGenerator builds a Generator. A fallback-wrapped client is unwrapped so
// that remote failures are reported in the artifact summary instead of being
// masked by local chat output.
func NewGenerator(client llm.LLMClient) *Generator {
	if client != nil {
		client = llm.Unwrap(client)
	}
	return &Generator{client: client, now: time.Now}
}

// Generate asks the model for an artifact of type t and falls back to the
// heuristic document when the call fails or the reply is not the expected
// JSON. Only an unknown type is an error.
func (g *Generator) Generate(ctx context.Context, t Type, sess *session.Session) (*session.Artifact, error) {
	prompt, err := Prompt(t, sess)
	if err != nil {
		return nil, err
	}
	now := g.now()

	var (
		data    any
		summary string
	)
	reply, err := g.chat(ctx, prompt, sess.Messages)
	switch {
	case err != nil:
		summary = "Generation failed, using heuristic: " + err.Error()
		data = Heuristic(t, sess.Topic(), now)
	default:
		parsed, perr := Parse(t, reply)
		if perr != nil {
			summary = reply
			data = Heuristic(t, sess.Topic(), now)
		} else {
			data = parsed
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s data", t)
	}

	source := "unknown"
	if g.client != nil {
		source = g.client.Name()
	}
	return &session.Artifact{
		ID:        uuid.NewString(),
		Type:      string(t),
		CreatedAt: now.UTC(),
		Source:    source,
		Data:      raw,
		Summary:   summary,
	}, nil
}

func (g *Generator) chat(ctx context.Context, prompt string, history []session.Message) (string, error) {
	if g.client == nil {
		return "", errors.New("no generator configured")
	}
	reply, err := g.client.Chat(ctx, prompt, history)
	if err != nil {
		return "", err
	}
	if reply == nil {
		return "", nil
	}
	return reply.Text, nil
}

// Parse decodes a model reply into the typed document for t. Surrounding
// markdown code fences are tolerated; anything other than a JSON object is
// rejected.
func Parse(t Type, text string) (any, error) {
	body := stripFences(text)
	if !strings.HasPrefix(body, "{") {
		return nil, errors.New("reply is not a JSON object")
	}

	var target any
	switch t {
	case LeanCanvas:
		target = &LeanCanvasData{}
	case GTMPlan:
		target = &GTMPlanData{}
	case OnePager:
		target = &OnePagerData{}
	default:
		_, err := ParseType(string(t))
		return nil, err
	}
	if err := json.Unmarshal([]byte(body), target); err != nil {
		return nil, errors.Wrapf(err, "reply does not match %s shape", t)
	}
	return target, nil
}

func stripFences(text string) string {
	body := strings.TrimSpace(text)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "```")
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

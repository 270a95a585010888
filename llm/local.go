package llm

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/m4xw311/brainstorm/session"
)

// seedIdeas are the fixed prompts every local reply suggests.
var seedIdeas = []string{
	"List assumptions and unknowns; plan quick validations.",
	"Generate 3-5 user stories; identify core job-to-be-done.",
	"Map solution variants from scrappy to polished; compare trade-offs.",
	"Enumerate risks (technical, market, execution) and mitigations.",
	"Draft a one-pager: problem, audience, value, differentiation, next steps.",
}

// LocalLLMClient is a deterministic, offline generator. It never fails and
// never touches the network.
type LocalLLMClient struct {
	name string
}

func NewLocalLLMClient() *LocalLLMClient {
	return &LocalLLMClient{name: "Local Brainstormer"}
}

func (l *LocalLLMClient) Name() string { return l.name }

func (l *LocalLLMClient) Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error) {
	lines := []string{
		"Brainstorming on: " + prompt,
		"",
		"Consider:",
	}
	for _, s := range seedIdeas {
		lines = append(lines, "- "+s)
	}

	recent := append(slices.Clone(history), session.Message{Role: session.RoleUser, Text: prompt})
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	lines = append(lines, "", "Context: ")
	for i, m := range recent {
		lines = append(lines, fmt.Sprintf("- Related note %d: %s", i+1, m.Text))
	}

	lines = append(lines, "", "Next: choose one path and ask me to expand or prioritize.")
	return assistantReply(strings.Join(lines, "\n")), nil
}

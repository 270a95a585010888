package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m4xw311/brainstorm/agent"
	"github.com/m4xw311/brainstorm/session"
)

// Terminal handles the terminal/CLI interaction mode for the agent
type Terminal struct {
	agent *agent.Agent
	in    io.Reader
	out   io.Writer
}

// New creates a new Terminal reading input from in and writing to out
func New(a *agent.Agent, in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		agent: a,
		in:    in,
		out:   out,
	}
}

// Run starts the interactive terminal session. End of input is treated
// like /exit.
func (t *Terminal) Run(ctx context.Context, initialPrompt string) error {
	fmt.Fprintf(t.out, "Brainstorming: %s (%s)\n", t.agent.Session.Title, t.agent.Session.ID)
	fmt.Fprintf(t.out, "Stage: %s. Type /help for commands.\n", t.agent.Session.Stage.Label())

	// If there's an initial prompt from the command line, use it first
	if initialPrompt != "" {
		exit, err := t.processTurn(ctx, initialPrompt)
		if err != nil {
			fmt.Fprintf(t.out, "Error: %v\n", err)
		}
		if exit {
			return nil
		}
	}

	scanner := bufio.NewScanner(t.in)
	for {
		fmt.Fprint(t.out, "You: ")
		if !scanner.Scan() {
			break
		}
		exit, err := t.processTurn(ctx, scanner.Text())
		if err != nil {
			fmt.Fprintf(t.out, "Error: %v\n", err)
		}
		if exit {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	fmt.Fprintln(t.out)

	if err := scanner.Err(); err != nil {
		return err
	}
	_, err := t.processTurn(ctx, "/exit")
	return err
}

// processTurn handles a single user input turn
func (t *Terminal) processTurn(ctx context.Context, userInput string) (bool, error) {
	callbacks := agent.ProcessCallbacks{
		OnAssistantMessage: func(message string) {
			fmt.Fprintf(t.out, "\nAssistant:\n%s\n\n", message)
		},
		OnInfo: func(message string) {
			fmt.Fprintln(t.out, message)
		},
		OnWarning: func(warning string) {
			fmt.Fprintf(t.out, "Warning: %s\n", warning)
		},
		OnArtifact: func(a session.Artifact, path string) {
			fmt.Fprintf(t.out, "Generated %s from %s.\n", a.Type, a.Source)
			if a.Summary != "" {
				fmt.Fprintf(t.out, "Note: %s\n", firstLine(a.Summary))
			}
			if path != "" {
				fmt.Fprintf(t.out, "Exported to %s.{json,md}\n", path)
			}
		},
	}

	return t.agent.ProcessUserInput(ctx, userInput, callbacks)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

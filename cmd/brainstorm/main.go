package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/m4xw311/brainstorm/agent"
	"github.com/m4xw311/brainstorm/agent/terminal"
	"github.com/m4xw311/brainstorm/session"
)

var Version = "dev"

const defaultTitle = "Brainstorm Session"

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brainstorm [prompt]",
		Short: "Brainstorm - an interactive partner for turning ideas into plans",
		Long: `Brainstorm runs an interactive session that helps move a business idea from
concept to investor package. Conversations are saved as JSON and Markdown,
and structured artifacts (lean canvas, GTM plan, one-pager) can be generated
at any point.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runInteractive,
	}

	pf := cmd.PersistentFlags()
	pf.StringP("model", "m", "", "Model name for the selected provider")
	pf.Bool("local", false, "Use the offline local generator")
	pf.String("llm", "", "LLM provider: local, openai, anthropic, gemini or bedrock")
	pf.String("sessions-dir", "", "Directory holding saved sessions")

	f := cmd.Flags()
	f.StringP("prompt", "p", "", "Initial prompt, also used as the session title")
	f.StringP("resume", "r", "", "Resume a saved session by id")
	f.String("title", "", "Session title")

	cmd.AddCommand(listCmd())
	cmd.AddCommand(showCmd())
	cmd.AddCommand(artifactCmd())
	cmd.AddCommand(stageCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(mcpCmd())
	return cmd
}

func runInteractive(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}

	prompt, _ := cmd.Flags().GetString("prompt")
	resume, _ := cmd.Flags().GetString("resume")
	title, _ := cmd.Flags().GetString("title")
	if prompt == "" && len(args) > 0 {
		prompt = joinArgs(args)
	}

	out := cmd.OutOrStdout()
	var sess *session.Session
	if resume != "" {
		sess, err = app.store.Load(resume)
		if err != nil {
			return err
		}
		if title != "" {
			sess.Title = title
		}
		fmt.Fprintf(out, "Resuming session: %s\n", sess.ID)
	} else {
		if title == "" {
			title = prompt
		}
		if title == "" {
			title = defaultTitle
		}
		sess = session.New(title)
	}

	client := app.client(cmd.Context())
	fmt.Fprintf(out, "Using %s\n", client.Name())

	a := agent.New(app.cfg, sess, app.store, client, app.logger)
	return terminal.New(a, cmd.InOrStdin(), out).Run(cmd.Context(), prompt)
}

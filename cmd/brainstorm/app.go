package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m4xw311/brainstorm/config"
	"github.com/m4xw311/brainstorm/llm"
	"github.com/m4xw311/brainstorm/session"
)

// app holds what every subcommand needs: the resolved configuration, the
// diagnostics logger and the session store.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *session.Store
}

// loadApp loads configuration and applies command-line flags on top of it.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model, _ = flags.GetString("model")
	}
	if flags.Changed("local") {
		cfg.Local, _ = flags.GetBool("local")
	}
	if flags.Changed("llm") {
		cfg.LLMClient, _ = flags.GetString("llm")
	}
	if flags.Changed("sessions-dir") {
		cfg.SessionsDir, _ = flags.GetString("sessions-dir")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.NewLogger(os.Stderr)
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  session.NewStore(cfg.SessionsDir, logger),
	}, nil
}

func (a *app) client(ctx context.Context) llm.LLMClient {
	return llm.Select(ctx, a.cfg, a.logger)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

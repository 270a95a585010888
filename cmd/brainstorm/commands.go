package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/m4xw311/brainstorm/agent/wsserver"
	"github.com/m4xw311/brainstorm/artifact"
	"github.com/m4xw311/brainstorm/mcpserver"
	"github.com/m4xw311/brainstorm/session"
	"github.com/m4xw311/brainstorm/stage"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			filter, _ := cmd.Flags().GetString("filter")
			asJSON, _ := cmd.Flags().GetBool("json")

			var summaries []session.Summary
			if filter != "" {
				summaries, err = app.store.Find(filter)
			} else {
				summaries, err = app.store.List()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if summaries == nil {
					summaries = []session.Summary{}
				}
				return writeJSON(out, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No saved sessions.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSTAGE\tTITLE")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Stage, s.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().String("filter", "", "Glob matched against titles, e.g. '*drone*'")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved session as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.store.Load(args[0])
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), sess)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), session.ToMarkdown(sess))
			return err
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	return cmd
}

func artifactCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "artifact <id> <lean-canvas|gtm-plan|one-pager>",
		Short: "Generate an artifact for a saved session and export it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := artifact.ParseType(args[1])
			if err != nil {
				return err
			}
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.store.Load(args[0])
			if err != nil {
				return err
			}

			gen := artifact.NewGenerator(app.client(cmd.Context()))
			art, err := gen.Generate(cmd.Context(), t, sess)
			if err != nil {
				return err
			}
			sess.AddArtifact(*art)
			md, err := artifact.RenderMarkdown(*art, sess.Topic())
			if err != nil {
				return err
			}
			base, err := app.store.SaveArtifact(sess.ID, *art, md)
			if err != nil {
				return err
			}
			if err := app.store.Save(sess); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %s from %s.\n", art.Type, art.Source)
			if art.Summary != "" {
				fmt.Fprintf(out, "Note: %s\n", art.Summary)
			}
			fmt.Fprintf(out, "Exported to %s.{json,md}\n", base)
			return nil
		},
	}
}

func stageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stage <id> [stage]",
		Short: "Show or set the stage of a saved session",
		Long:  "Show or set the stage of a saved session. Stages: " + strings.Join(stage.Names(), ", "),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.store.Load(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				fmt.Fprintf(out, "%s (%s)\n", sess.Stage, sess.Stage.Label())
				return nil
			}
			st, err := stage.Parse(args[1])
			if err != nil {
				return err
			}
			if err := sess.SetStage(st); err != nil {
				return err
			}
			if err := app.store.Save(sess); err != nil {
				return err
			}
			fmt.Fprintf(out, "Stage set to %s (%s)\n", st, st.Label())
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve brainstorm sessions over a websocket at /ws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			addr := app.cfg.ServeAddr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			srv := wsserver.New(app.cfg, app.store, app.client(cmd.Context()), app.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "WebSocket server running on ws://%s/ws\n", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, localhost:8080)")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run a Model Context Protocol server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(cmd)
			if err != nil {
				return err
			}
			srv := mcpserver.New(app.store, app.client(cmd.Context()), app.logger, Version)
			return srv.Run(cmd.Context())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

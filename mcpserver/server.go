// Package mcpserver exposes the session store to Model Context Protocol
// clients over stdio, so editors and assistants can browse brainstorm
// sessions, move them between stages and generate artifacts.
package mcpserver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/m4xw311/brainstorm/artifact"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/llm"
	"github.com/m4xw311/brainstorm/session"
	"github.com/m4xw311/brainstorm/stage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "brainstorm"

type Server struct {
	store     *session.Store
	artifacts *artifact.Generator
	logger    *slog.Logger
	server    *mcp.Server
}

// New builds the server and registers its tools.
func New(store *session.Store, client llm.LLMClient, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		store:     store,
		artifacts: artifact.NewGenerator(client),
		logger:    logger,
		server:    mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sessions",
		Description: "Lists saved brainstorm sessions, newest first. An optional glob filters by title.",
	}, s.listSessions)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_session",
		Description: "Returns a saved session rendered as Markdown",
	}, s.getSession)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_stage",
		Description: "Moves a session to another stage: " + strings.Join(stage.Names(), ", "),
	}, s.setStage)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_artifact",
		Description: "Generates a lean-canvas, gtm-plan or one-pager for a session and exports it",
	}, s.generateArtifact)
	return s
}

// Run serves MCP over stdin/stdout until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

type SessionInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Stage     string `json:"stage"`
	CreatedAt string `json:"createdAt"`
}

type ListSessionsInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"optional glob matched against session titles, e.g. *drone*"`
}

type ListSessionsResult struct {
	Sessions []SessionInfo `json:"sessions"`
}

func (s *Server) listSessions(ctx context.Context, _ *mcp.CallToolRequest, input ListSessionsInput) (*mcp.CallToolResult, ListSessionsResult, error) {
	var (
		summaries []session.Summary
		err       error
	)
	if input.Filter != "" {
		summaries, err = s.store.Find(input.Filter)
	} else {
		summaries, err = s.store.List()
	}
	if err != nil {
		return nil, ListSessionsResult{}, err
	}

	result := ListSessionsResult{Sessions: make([]SessionInfo, 0, len(summaries))}
	for _, sum := range summaries {
		result.Sessions = append(result.Sessions, SessionInfo{
			ID:        sum.ID,
			Title:     sum.Title,
			Stage:     string(sum.Stage),
			CreatedAt: sum.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil, result, nil
}

type GetSessionInput struct {
	ID string `json:"id" jsonschema:"session id"`
}

type GetSessionResult struct {
	ID       string `json:"id"`
	Markdown string `json:"markdown"`
}

func (s *Server) getSession(ctx context.Context, _ *mcp.CallToolRequest, input GetSessionInput) (*mcp.CallToolResult, GetSessionResult, error) {
	sess, err := s.store.Load(input.ID)
	if err != nil {
		return nil, GetSessionResult{}, err
	}
	md := session.ToMarkdown(sess)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: md}},
	}, GetSessionResult{ID: sess.ID, Markdown: md}, nil
}

type SetStageInput struct {
	ID    string `json:"id" jsonschema:"session id"`
	Stage string `json:"stage" jsonschema:"target stage name"`
}

type SetStageResult struct {
	ID       string `json:"id"`
	Previous string `json:"previous"`
	Stage    string `json:"stage"`
	Label    string `json:"label"`
}

func (s *Server) setStage(ctx context.Context, _ *mcp.CallToolRequest, input SetStageInput) (*mcp.CallToolResult, SetStageResult, error) {
	st, err := stage.Parse(input.Stage)
	if err != nil {
		return nil, SetStageResult{}, err
	}
	sess, err := s.store.Load(input.ID)
	if err != nil {
		return nil, SetStageResult{}, err
	}
	prev := sess.Stage
	if err := sess.SetStage(st); err != nil {
		return nil, SetStageResult{}, err
	}
	if err := s.store.Save(sess); err != nil {
		return nil, SetStageResult{}, err
	}
	s.logger.Info("stage changed", "session", sess.ID, "from", prev, "to", st)
	return nil, SetStageResult{ID: sess.ID, Previous: string(prev), Stage: string(st), Label: st.Label()}, nil
}

type GenerateArtifactInput struct {
	ID   string `json:"id" jsonschema:"session id"`
	Type string `json:"type" jsonschema:"artifact type: lean-canvas, gtm-plan or one-pager"`
}

type GenerateArtifactResult struct {
	ArtifactID string `json:"artifactId"`
	Type       string `json:"type"`
	Source     string `json:"source"`
	Summary    string `json:"summary,omitempty"`
	Path       string `json:"path"`
	Markdown   string `json:"markdown"`
}

func (s *Server) generateArtifact(ctx context.Context, _ *mcp.CallToolRequest, input GenerateArtifactInput) (*mcp.CallToolResult, GenerateArtifactResult, error) {
	t, err := artifact.ParseType(input.Type)
	if err != nil {
		return nil, GenerateArtifactResult{}, err
	}
	sess, err := s.store.Load(input.ID)
	if err != nil {
		return nil, GenerateArtifactResult{}, err
	}

	art, err := s.artifacts.Generate(ctx, t, sess)
	if err != nil {
		return nil, GenerateArtifactResult{}, err
	}
	sess.AddArtifact(*art)
	md, err := artifact.RenderMarkdown(*art, sess.Topic())
	if err != nil {
		return nil, GenerateArtifactResult{}, err
	}
	base, err := s.store.SaveArtifact(sess.ID, *art, md)
	if err != nil {
		return nil, GenerateArtifactResult{}, err
	}
	if err := s.store.Save(sess); err != nil {
		return nil, GenerateArtifactResult{}, errors.Wrapf(err, "artifact exported to %s but session not saved", base)
	}

	return nil, GenerateArtifactResult{
		ArtifactID: art.ID,
		Type:       art.Type,
		Source:     art.Source,
		Summary:    art.Summary,
		Path:       base,
		Markdown:   md,
	}, nil
}

// Package wsserver exposes the brainstorming agent over websockets.
//
// Every connection to /ws gets its own session and agent. Each text frame is
// one line of input; output is sent back as JSON frames of the form
// {"type": "assistant"|"info"|"warning"|"artifact", "data": ...}. The session
// is saved when the connection closes. The endpoint has no authentication and
// is meant to be bound to localhost.
package wsserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m4xw311/brainstorm/agent"
	"github.com/m4xw311/brainstorm/config"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/llm"
	"github.com/m4xw311/brainstorm/session"
)

const (
	FrameAssistant = "assistant"
	FrameInfo      = "info"
	FrameWarning   = "warning"
	FrameArtifact  = "artifact"
)

// Frame is one outgoing websocket message.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ArtifactData is the payload of an artifact frame.
type ArtifactData struct {
	Artifact session.Artifact `json:"artifact"`
	Path     string           `json:"path,omitempty"`
}

type Server struct {
	Config   *config.Config
	Store    *session.Store
	Client   llm.LLMClient
	Logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(cfg *config.Config, store *session.Store, client llm.LLMClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		Config: cfg,
		Store:  store,
		Client: client,
		Logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("websocket server listening", "addr", "ws://"+addr+"/ws")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "websocket server failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// openSession resumes ?session=<id> when given, otherwise starts a new
// session titled by ?title=.
func (s *Server) openSession(r *http.Request) (*session.Session, error) {
	q := r.URL.Query()
	if id := q.Get("session"); id != "" {
		return s.Store.Load(id)
	}
	return session.New(q.Get("title")), nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.openSession(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errors.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}

	// Upgrade to WebSocket
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	a := agent.New(s.Config, sess, s.Store, s.Client, s.Logger)
	log := s.Logger.With("session", sess.ID, "remote", r.RemoteAddr)
	log.Info("websocket session started")

	send := func(typ string, data any) {
		if err := conn.WriteJSON(Frame{Type: typ, Data: data}); err != nil {
			log.Debug("websocket write failed", "error", err)
		}
	}
	callbacks := agent.ProcessCallbacks{
		OnAssistantMessage: func(text string) { send(FrameAssistant, text) },
		OnInfo:             func(text string) { send(FrameInfo, text) },
		OnWarning:          func(text string) { send(FrameWarning, text) },
		OnArtifact: func(art session.Artifact, path string) {
			send(FrameArtifact, ArtifactData{Artifact: art, Path: path})
		},
	}

	send(FrameInfo, "Session "+sess.ID+" started. Stage: "+sess.Stage.Label()+".")

	ctx := r.Context()
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read ended", "error", err)
			}
			break
		}
		if msgType != websocket.TextMessage {
			send(FrameWarning, "only text frames are accepted")
			continue
		}

		exit, err := a.ProcessUserInput(ctx, string(msg), callbacks)
		if err != nil {
			send(FrameWarning, err.Error())
		}
		if exit {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
			log.Info("websocket session ended")
			return
		}
	}

	if err := a.Save(); err != nil {
		log.Warn("could not save session on disconnect", "error", err)
		return
	}
	log.Info("websocket session saved", "path", a.SavedPath())
}

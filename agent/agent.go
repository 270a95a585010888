package agent

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/m4xw311/brainstorm/artifact"
	"github.com/m4xw311/brainstorm/config"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/llm"
	"github.com/m4xw311/brainstorm/session"
	"github.com/m4xw311/brainstorm/stage"
)

// ProcessCallbacks lets each front end decide how agent output is shown.
// Any callback may be nil.
type ProcessCallbacks struct {
	OnAssistantMessage func(text string)
	OnInfo             func(text string)
	OnWarning          func(text string)
	// OnArtifact receives a generated artifact and the base path of its
	// exported .json/.md files.
	OnArtifact func(a session.Artifact, path string)
}

func (c ProcessCallbacks) assistant(text string) {
	if c.OnAssistantMessage != nil {
		c.OnAssistantMessage(text)
	}
}

func (c ProcessCallbacks) info(format string, a ...any) {
	if c.OnInfo != nil {
		c.OnInfo(fmt.Sprintf(format, a...))
	}
}

func (c ProcessCallbacks) warn(format string, a ...any) {
	if c.OnWarning != nil {
		c.OnWarning(fmt.Sprintf(format, a...))
	}
}

func (c ProcessCallbacks) artifact(a session.Artifact, path string) {
	if c.OnArtifact != nil {
		c.OnArtifact(a, path)
	}
}

type Agent struct {
	Config    *config.Config
	Session   *session.Session
	Store     *session.Store
	LLMClient llm.LLMClient
	Artifacts *artifact.Generator
	Logger    *slog.Logger
}

func New(cfg *config.Config, sess *session.Session, store *session.Store, client llm.LLMClient, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Agent{
		Config:    cfg,
		Session:   sess,
		Store:     store,
		LLMClient: client,
		Artifacts: artifact.NewGenerator(client),
		Logger:    logger,
	}
}

type handler func(a *Agent, ctx context.Context, args string, cb ProcessCallbacks) (bool, error)

var commands map[string]handler

func init() {
	commands = map[string]handler{
		"/exit":       (*Agent).cmdExit,
		"/quit":       (*Agent).cmdExit,
		"/save":       (*Agent).cmdSave,
		"/help":       (*Agent).cmdHelp,
		"/stage":      (*Agent).cmdStage,
		"/next":       (*Agent).cmdNext,
		"/artifact":   (*Agent).cmdArtifact,
		"/idea":       (*Agent).cmdIdea,
		"/ideas":      (*Agent).cmdIdeas,
		"/experiment": (*Agent).cmdExperiment,
		"/competitor": (*Agent).cmdCompetitor,
		"/score":      (*Agent).cmdScore,
		"/title":      (*Agent).cmdTitle,
		"/sessions":   (*Agent).cmdSessions,
	}
}

const helpText = `Commands:
  /help                               show this help
  /save                               save the session
  /exit, /quit                        save and leave
  /stage [name]                       show or set the stage
  /next                               advance to the next stage
  /artifact <lean-canvas|gtm-plan|one-pager>
                                      generate and export an artifact
  /idea <text>                        record an idea
  /ideas                              list recorded ideas
  /experiment <hypothesis> [| metric] record an experiment
  /competitor <name> [| notes]        record a competitor
  /score <impact> <confidence> <ease> set the ICE score (1-10 each)
  /title <text>                       rename the session
  /sessions                           list saved sessions
Anything else is sent to the brainstorming partner.`

// ProcessUserInput handles one line of input. It reports true when the
// user asked to leave. Returned errors are failures of a chat turn or of
// the final save; command misuse is reported through OnWarning.
func (a *Agent) ProcessUserInput(ctx context.Context, input string, cb ProcessCallbacks) (bool, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false, nil
	}
	if !strings.HasPrefix(input, "/") {
		return false, a.chat(ctx, input, cb)
	}

	name, args, _ := strings.Cut(input, " ")
	h, ok := commands[strings.ToLower(name)]
	if !ok {
		cb.warn("unknown command %s (try /help)", name)
		return false, nil
	}
	a.Logger.Debug("command", "name", name, "session", a.Session.ID)
	return h(a, ctx, strings.TrimSpace(args), cb)
}

func (a *Agent) chat(ctx context.Context, input string, cb ProcessCallbacks) error {
	history := slices.Clone(a.Session.Messages)
	a.Session.AddMessage(session.RoleUser, input)

	reply, err := a.LLMClient.Chat(ctx, input, history)
	if err != nil {
		return errors.Wrapf(err, "generation failed")
	}
	if reply == nil {
		return errors.New("generation returned no reply")
	}
	reply.Role = session.RoleAssistant
	a.Session.Append(*reply)
	cb.assistant(reply.Text)

	a.autosave(cb)
	return nil
}

// SavedPath describes where the session files live.
func (a *Agent) SavedPath() string {
	return filepath.Join(a.Store.Dir(), a.Session.ID) + ".{json,md}"
}

// Save writes the session to the store.
func (a *Agent) Save() error {
	return a.Store.Save(a.Session)
}

func (a *Agent) autosave(cb ProcessCallbacks) {
	if a.Config != nil && !a.Config.Autosave {
		return
	}
	if err := a.Save(); err != nil {
		a.Logger.Warn("autosave failed", "session", a.Session.ID, "error", err)
		cb.warn("failed to save session: %v", err)
	}
}

func (a *Agent) cmdExit(ctx context.Context, _ string, cb ProcessCallbacks) (bool, error) {
	if err := a.Save(); err != nil {
		return true, err
	}
	cb.info("Saved to %s", a.SavedPath())
	return true, nil
}

func (a *Agent) cmdSave(ctx context.Context, _ string, cb ProcessCallbacks) (bool, error) {
	if err := a.Save(); err != nil {
		cb.warn("failed to save session: %v", err)
		return false, nil
	}
	cb.info("Saved to %s", a.SavedPath())
	return false, nil
}

func (a *Agent) cmdHelp(ctx context.Context, _ string, cb ProcessCallbacks) (bool, error) {
	cb.info("%s", helpText)
	return false, nil
}

func (a *Agent) cmdStage(ctx context.Context, args string, cb ProcessCallbacks) (bool, error) {
	if args == "" {
		cb.info("Stage: %s (%s)", a.Session.Stage, a.Session.Stage.Label())
		return false, nil
	}
	st, err := stage.Parse(args)
	if err != nil {
		cb.warn("%v", err)
		return false, nil
	}
	if err := a.Session.SetStage(st); err != nil {
		cb.warn("%v", err)
		return false, nil
	}
	cb.info("Stage set to %s (%s)", st, st.Label())
	a.autosave(cb)
	return false, nil
}

func (a *Agent) cmdNext(ctx context.Context, _ string, cb ProcessCallbacks) (bool, error) {
	next, ok := a.Session.AdvanceStage()
	if !ok {
		cb.info("Already at the final stage: %s (%s)", next, next.Label())
		return false, nil
	}
	cb.info("Advanced to %s (%s)", next, next.Label())
	a.autosave(cb)
	return false, nil
}

func (a *Agent) cmdArtifact(ctx context.Context, args string, cb ProcessCallbacks) (bool, error) {
	if args == "" {
		cb.warn("usage: /artifact <%s>", strings.Join(typeNames(), "|"))
		return false, nil
	}
	t, err := artifact.ParseType(args)
	if err != nil {
		cb.warn("%v", err)
		return false, nil
	}

	art, err := a.Artifacts.Generate(ctx, t, a.Session)
	if err != nil {
		cb.warn("artifact generation failed: %v", err)
		return false, nil
	}
	a.Session.AddArtifact(*art)

	md, err := artifact.RenderMarkdown(*art, a.Session.Topic())
	if err != nil {
		cb.warn("could not render %s: %v", t, err)
		return false, nil
	}
	base, err := a.Store.SaveArtifact(a.Session.ID, *art, md)
	if err != nil {
		cb.warn("could not export %s: %v", t, err)
	}
	if err := a.Save(); err != nil {
		cb.warn("failed to save session: %v", err)
	}
	cb.artifact(*art, base)
	return false, nil
}

func (a *Agent) cmdIdea(ctx context.Context, args string, cb ProcessCallbacks) (bool, error) {
	if args == "" {
		cb.warn("usage: /idea <text>")
		return false, nil
	}
	a.Session.AddIdea(args)
	cb.info("Idea #%d recorded", len(a.Session.Ideas))
	a.autosave(cb)
	return false, nil
}

func (a *Agent) cmdIdeas(ctx context.Context, _ string, cb ProcessCallbacks) (bool, error) {
	if len(a.Session.Ideas) == 0 {
		cb.info("No ideas recorded yet.")
		return false, nil
	}
	lines := make([]string, len(a.Session.Ideas))
	for i, idea := range a.Session.Ideas {
		lines[i] = fmt.Sprintf("%d. %s", i+1, idea.Text)
	}
	cb.info("%s", strings.Join(lines, "\n"))
	return false, nil
}

func (a *Agent) cmdExperiment(ctx context.Context, args string, cb ProcessCallbacks) (bool, error) {
	hypothesis, metric, _ := strings.Cut(args, "|")
	hypothesis = strings.TrimSpace(hypothesis)
	if hypothesis == "" {
		cb.warn("usage: /experiment <hypothesis> [| metric]")
		return false, nil
	}
	exp := a.Session.AddExperiment(hypothesis, strings.TrimSpace(metric))
	cb.info("Experiment recorded (%s)", exp.Status)
	a.autosave(cb)
	return false, nil
}

func (a *Agent) cmdCompetitor(ctx context.Context, args string, cb ProcessCallbacks) (bool, error) {
	name, notes, _ := strings.Cut(args, "|")
	name = strings.TrimSpace(name)
	if name == "" {
		cb.warn("usage: /competitor <name> [| notes]")
		return false, nil
	}
	a.Session.AddCompetitor(name, strings.TrimSpace(notes))
	cb.info("Competitor %s recorded", name)
	a.autosave(cb)
	return false, nil
}

func (a *Agent) cmdScore(ctx context.Context, args string, cb ProcessCallbacks) (bool, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		cb.warn("usage: /score <impact> <confidence> <ease>")
		return false, nil
	}
	var v [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			cb.warn("score %q is not a number", f)
			return false, nil
		}
		v[i] = n
	}
	sc, err := a.Session.SetScoring(v[0], v[1], v[2])
	if err != nil {
		cb.warn("%v", err)
		return false, nil
	}
	cb.info("ICE score: %.1f", sc.ICE)
	a.autosave(cb)
	return false, nil
}

func (a *Agent) cmdTitle(ctx context.Context, args string, cb ProcessCallbacks) (bool, error) {
	if args == "" {
		cb.info("Title: %s", a.Session.Title)
		return false, nil
	}
	a.Session.Title = args
	cb.info("Title set to %s", args)
	a.autosave(cb)
	return false, nil
}

func (a *Agent) cmdSessions(ctx context.Context, _ string, cb ProcessCallbacks) (bool, error) {
	summaries, err := a.Store.List()
	if err != nil {
		cb.warn("could not list sessions: %v", err)
		return false, nil
	}
	if len(summaries) == 0 {
		cb.info("No saved sessions.")
		return false, nil
	}
	lines := make([]string, len(summaries))
	for i, s := range summaries {
		lines[i] = fmt.Sprintf("%s  %s  [%s]  %s", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Stage, s.Title)
	}
	cb.info("%s", strings.Join(lines, "\n"))
	return false, nil
}

func typeNames() []string {
	var names []string
	for _, t := range artifact.Types() {
		names = append(names, string(t))
	}
	return names
}

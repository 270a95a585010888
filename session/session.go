package session

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/stage"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	DefaultTitle = "Untitled"
	DefaultTopic = "Business idea"
)

type Message struct {
	ID   string `json:"id,omitempty"`
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

type Idea struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Experiment struct {
	ID         string `json:"id"`
	Hypothesis string `json:"hypothesis"`
	Metric     string `json:"metric,omitempty"`
	Status     string `json:"status"`
}

type Competitor struct {
	Name  string `json:"name"`
	Notes string `json:"notes,omitempty"`
}

// Scoring is an ICE score; each input is on a 1..10 scale.
type Scoring struct {
	Impact     int     `json:"impact"`
	Confidence int     `json:"confidence"`
	Ease       int     `json:"ease"`
	ICE        float64 `json:"ice"`
}

// Artifact is a structured planning document derived from a session.
type Artifact struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data,omitempty"`
	Summary   string          `json:"summary"`
}

type Session struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Stage       stage.Stage  `json:"stage"`
	Messages    []Message    `json:"messages"`
	Ideas       []Idea       `json:"ideas"`
	Artifacts   []Artifact   `json:"artifacts"`
	Experiments []Experiment `json:"experiments"`
	Competitors []Competitor `json:"competitors"`
	Scoring     *Scoring     `json:"scoring"`
}

// Summary is the listing view of a stored session.
type Summary struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Stage     stage.Stage `json:"stage"`
	CreatedAt time.Time   `json:"createdAt"`
}

// now is swapped in tests.
var now = time.Now

// New creates an empty session in the default stage.
func New(title string) *Session {
	if title == "" {
		title = DefaultTitle
	}
	return &Session{
		ID:          uuid.NewString(),
		Title:       title,
		CreatedAt:   now().UTC(),
		Stage:       stage.Default,
		Messages:    []Message{},
		Ideas:       []Idea{},
		Artifacts:   []Artifact{},
		Experiments: []Experiment{},
		Competitors: []Competitor{},
	}
}

// AddMessage appends a message to the session history and returns it.
func (s *Session) AddMessage(role, text string) Message {
	msg := Message{ID: uuid.NewString(), Role: role, Text: text}
	s.Messages = append(s.Messages, msg)
	return msg
}

// Append adds an already-built message, assigning an id if it has none.
func (s *Session) Append(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	s.Messages = append(s.Messages, msg)
}

func (s *Session) AddIdea(text string) Idea {
	idea := Idea{ID: uuid.NewString(), Text: text, CreatedAt: now().UTC()}
	s.Ideas = append(s.Ideas, idea)
	return idea
}

func (s *Session) AddExperiment(hypothesis, metric string) Experiment {
	exp := Experiment{ID: uuid.NewString(), Hypothesis: hypothesis, Metric: metric, Status: "planned"}
	s.Experiments = append(s.Experiments, exp)
	return exp
}

func (s *Session) AddCompetitor(name, notes string) Competitor {
	c := Competitor{Name: name, Notes: notes}
	s.Competitors = append(s.Competitors, c)
	return c
}

func (s *Session) AddArtifact(a Artifact) {
	s.Artifacts = append(s.Artifacts, a)
}

// SetScoring records an ICE score. Each input must be between 1 and 10.
func (s *Session) SetScoring(impact, confidence, ease int) (*Scoring, error) {
	scores := []struct {
		name string
		v    int
	}{{"impact", impact}, {"confidence", confidence}, {"ease", ease}}
	for _, sc := range scores {
		if sc.v < 1 || sc.v > 10 {
			return nil, errors.New("%s must be between 1 and 10, got %d", sc.name, sc.v)
		}
	}
	s.Scoring = &Scoring{
		Impact:     impact,
		Confidence: confidence,
		Ease:       ease,
		ICE:        float64(impact*confidence*ease) / 10,
	}
	return s.Scoring, nil
}

func (s *Session) SetStage(st stage.Stage) error {
	if !stage.IsValid(st) {
		return errors.New("invalid stage %q", st)
	}
	s.Stage = st
	return nil
}

// AdvanceStage moves to the next stage. It reports false when the session is
// already in the final stage.
func (s *Session) AdvanceStage() (stage.Stage, bool) {
	cur := s.Stage
	if cur == "" {
		cur = stage.Default
	}
	next, ok := cur.Next()
	s.Stage = next
	return next, ok
}

// Topic is the subject used to seed artifact prompts.
func (s *Session) Topic() string {
	if s.Title != "" {
		return s.Title
	}
	if len(s.Messages) > 0 && s.Messages[0].Text != "" {
		return s.Messages[0].Text
	}
	return DefaultTopic
}

// Recent returns up to the last n messages.
func (s *Session) Recent(n int) []Message {
	if n <= 0 {
		return nil
	}
	if len(s.Messages) <= n {
		return slices.Clone(s.Messages)
	}
	return slices.Clone(s.Messages[len(s.Messages)-n:])
}

func (s *Session) Summary() Summary {
	return Summary{ID: s.ID, Title: s.Title, Stage: s.Stage, CreatedAt: s.CreatedAt}
}

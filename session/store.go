package session

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/stage"
)

// DefaultDir is where sessions are stored relative to the working directory.
const DefaultDir = "sessions"

// Store persists sessions as paired <id>.json and <id>.md files.
type Store struct {
	dir    string
	logger *slog.Logger
}

func NewStore(dir string, logger *slog.Logger) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{dir: dir, logger: logger}
}

func (s *Store) Dir() string { return s.dir }

// Paths returns the JSON and Markdown file paths for a session id.
func (s *Store) Paths(id string) (jsonPath, mdPath string) {
	base := filepath.Join(s.dir, id)
	return base + ".json", base + ".md"
}

// Save writes the session to disk as JSON and Markdown.
func (s *Store) Save(sess *Session) error {
	if err := validateID(sess.ID); err != nil {
		return err
	}
	if err := s.ensureDir(s.dir); err != nil {
		return err
	}
	sess.UpdatedAt = now().UTC()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to serialize session %s", sess.ID)
	}
	jsonPath, mdPath := s.Paths(sess.ID)
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return errors.Wrapf(err, "could not write session file %s", jsonPath)
	}
	if err := os.WriteFile(mdPath, []byte(ToMarkdown(sess)), 0644); err != nil {
		return errors.Wrapf(err, "could not write session file %s", mdPath)
	}
	return nil
}

// Load reads a session by id. A missing session yields errors.ErrNotFound.
func (s *Store) Load(id string) (*Session, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	jsonPath, _ := s.Paths(id)
	data, err := os.ReadFile(jsonPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read session file %s", jsonPath)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrapf(err, "could not parse session file %s", jsonPath)
	}
	sess.normalize()
	return &sess, nil
}

// List returns summaries of every readable session, newest first. Files that
// fail to parse are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Summary{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read session directory %s", s.dir)
	}

	summaries := []Summary{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skipping unreadable session file", "path", path, "error", err)
			continue
		}
		var sum Summary
		if err := json.Unmarshal(data, &sum); err != nil || sum.ID == "" {
			s.logger.Warn("skipping unparsable session file", "path", path, "error", err)
			continue
		}
		summaries = append(summaries, sum)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Find lists sessions whose title matches a doublestar glob, ignoring case.
// Titles are not paths, so '*' also matches '/'. An empty pattern matches
// everything.
func (s *Store) Find(pattern string) ([]Summary, error) {
	all, err := s.List()
	if err != nil || pattern == "" {
		return all, err
	}
	glob := flattenSlashes(strings.ToLower(pattern))
	if !doublestar.ValidatePattern(glob) {
		return nil, errors.New("invalid filter pattern '%s'", pattern)
	}

	matched := []Summary{}
	for _, sum := range all {
		ok, err := doublestar.Match(glob, flattenSlashes(strings.ToLower(sum.Title)))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid filter pattern '%s'", pattern)
		}
		if ok {
			matched = append(matched, sum)
		}
	}
	return matched, nil
}

// Delete removes both files of a session.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	jsonPath, mdPath := s.Paths(id)
	if _, err := os.Stat(jsonPath); errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(errors.ErrNotFound, "session %s", id)
	}
	var errs []error
	for _, p := range []string{jsonPath, mdPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SaveArtifact exports one artifact next to the sessions as
// artifacts/<sessionID>/<type>-<artifactID>.{json,md} and returns the base path.
func (s *Store) SaveArtifact(sessionID string, a Artifact, markdown string) (string, error) {
	if err := validateID(sessionID); err != nil {
		return "", err
	}
	if err := validateID(a.ID); err != nil {
		return "", err
	}
	dir := filepath.Join(s.dir, "artifacts", sessionID)
	if err := s.ensureDir(dir); err != nil {
		return "", err
	}
	base := filepath.Join(dir, fmt.Sprintf("%s-%s", a.Type, a.ID))

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "failed to serialize artifact %s", a.ID)
	}
	if err := os.WriteFile(base+".json", data, 0644); err != nil {
		return "", errors.Wrapf(err, "could not write artifact file")
	}
	if err := os.WriteFile(base+".md", []byte(markdown), 0644); err != nil {
		return "", errors.Wrapf(err, "could not write artifact file")
	}
	return base, nil
}

func (s *Store) ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "could not create directory %s", dir)
	}
	return nil
}

func validateID(id string) error {
	if id == "" {
		return errors.New("empty id")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return errors.New("invalid id %q", id)
	}
	return nil
}

// normalize fills in collections that older files may have left null.
func (s *Session) normalize() {
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if s.Stage == "" {
		s.Stage = stage.Default
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	if s.Ideas == nil {
		s.Ideas = []Idea{}
	}
	if s.Artifacts == nil {
		s.Artifacts = []Artifact{}
	}
	if s.Experiments == nil {
		s.Experiments = []Experiment{}
	}
	if s.Competitors == nil {
		s.Competitors = []Competitor{}
	}
}

// flattenSlashes replaces '/' so doublestar does not treat it as a
// separator.
func flattenSlashes(s string) string {
	return strings.ReplaceAll(s, "/", "\x00")
}

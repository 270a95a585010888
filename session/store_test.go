package session

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/stage"
)

func TestStoreSaveLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "sessions"), nil)

	s := New("Pet insurance for hamsters")
	s.AddMessage(RoleUser, "What about hamsters?")
	s.AddMessage(RoleAssistant, "Consider the market size.")
	s.AddArtifact(Artifact{
		ID:        "art-1",
		Type:      "one-pager",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Source:    "Local Brainstormer",
		Data:      json.RawMessage(`{"problem":"x"}`),
	})

	if err := store.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	jsonPath, mdPath := store.Paths(s.ID)
	for _, p := range []string{jsonPath, mdPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}

	loaded, err := store.Load(s.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := cmp.Options{
		cmpopts.EquateApproxTime(time.Millisecond),
		cmp.Comparer(func(a, b json.RawMessage) bool { return compactJSON(t, a) == compactJSON(t, b) }),
	}
	if diff := cmp.Diff(s, loaded, opts); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func compactJSON(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		t.Fatalf("compact %s: %v", raw, err)
	}
	return buf.String()
}

func TestStoreWritesOriginalKeys(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	s := New("keys")
	if err := store.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	jsonPath, _ := store.Paths(s.ID)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "title", "createdAt", "stage", "messages", "ideas", "artifacts", "experiments", "competitors", "scoring"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if raw["scoring"] != nil {
		t.Errorf("scoring should serialize as null, got %v", raw["scoring"])
	}
	if !strings.Contains(string(data), "\n  \"id\"") {
		t.Error("expected two-space indented JSON")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	_, err := store.Load("does-not-exist")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRejectsTraversal(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	for _, id := range []string{"", "../etc/passwd", `a\b`, "x/y"} {
		if _, err := store.Load(id); err == nil {
			t.Errorf("Load(%q) expected error", id)
		}
	}
	if err := store.Save(&Session{ID: "../escape"}); err == nil {
		t.Error("Save with traversal id expected error")
	}
}

func TestStoreLoadLegacyFile(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	legacy := `{"id":"legacy","title":"Old","createdAt":"2024-05-01T10:00:00.000Z","stage":"gtm","messages":[{"role":"user","text":"hi"}],"ideas":[],"artifacts":[],"experiments":[],"competitors":[],"scoring":null}`
	if err := os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := store.Load("legacy")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Stage != stage.GTM || len(s.Messages) != 1 || s.Messages[0].Text != "hi" {
		t.Errorf("unexpected legacy session: %+v", s)
	}
}

func TestStoreListAndFind(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	titles := []string{"Hamster insurance", "Drone/delivery for farms", "Hamster gyms"}
	for i, title := range titles {
		s := New(title)
		s.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := store.Save(s); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	// Garbage and non-json files are skipped.
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var got []string
	for _, s := range list {
		got = append(got, s.Title)
	}
	want := []string{"Hamster gyms", "Drone/delivery for farms", "Hamster insurance"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}

	found, err := store.Find("HAMSTER*")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("Find(HAMSTER*) = %d results, want 2", len(found))
	}

	for _, pattern := range []string{"*drone*", "*/delivery*", "*farms"} {
		found, err := store.Find(pattern)
		if err != nil {
			t.Fatalf("Find(%s): %v", pattern, err)
		}
		if len(found) != 1 || found[0].Title != "Drone/delivery for farms" {
			t.Errorf("Find(%s) = %+v, want the drone session", pattern, found)
		}
	}

	if _, err := store.Find("[unclosed"); err == nil {
		t.Error("Find with invalid pattern expected error")
	}
}

func TestStoreListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"), nil)
	list, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %v", list)
	}
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	s := New("to delete")
	if err := store.Save(s); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	jsonPath, mdPath := store.Paths(s.ID)
	for _, p := range []string{jsonPath, mdPath} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be removed", p)
		}
	}
	if err := store.Delete(s.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second Delete expected ErrNotFound, got %v", err)
	}
}

func TestStoreSaveArtifact(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	art := Artifact{ID: "a1", Type: "gtm-plan", Data: json.RawMessage(`{}`)}

	base, err := store.SaveArtifact("sess-1", art, "# GTM Plan\n")
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if want := filepath.Join(dir, "artifacts", "sess-1", "gtm-plan-a1"); base != want {
		t.Errorf("base = %q, want %q", base, want)
	}
	md, err := os.ReadFile(base + ".md")
	if err != nil || string(md) != "# GTM Plan\n" {
		t.Errorf("markdown = %q, err %v", md, err)
	}
	if _, err := os.Stat(base + ".json"); err != nil {
		t.Errorf("json export missing: %v", err)
	}

	// Exports must not show up as sessions.
	list, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("artifact exports leaked into List: %v", list)
	}
}

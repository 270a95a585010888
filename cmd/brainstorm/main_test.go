package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/m4xw311/brainstorm/session"
)

// run executes the root command with isolated config and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"BRAINSTORM_LLM", "BRAINSTORM_MODEL", "BRAINSTORM_SESSIONS_DIR", "BRAINSTORM_LOCAL", "OPENAI_API_KEY"} {
		t.Setenv(k, "")
	}

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func listSessions(t *testing.T, dir string) []session.Summary {
	t.Helper()
	out, err := run(t, "", "list", "--json", "--sessions-dir", dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var summaries []session.Summary
	if err := json.Unmarshal([]byte(out), &summaries); err != nil {
		t.Fatalf("decode list output %q: %v", out, err)
	}
	return summaries
}

func TestInteractiveSession(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "/idea pay-per-charge\n/exit\n", "--local", "--sessions-dir", dir, "-p", "Solar kiosks")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	for _, want := range []string{"Using Local Brainstormer", "Brainstorming on: Solar kiosks", "Idea #1 recorded", "Saved to "} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	summaries := listSessions(t, dir)
	if len(summaries) != 1 || summaries[0].Title != "Solar kiosks" {
		t.Fatalf("summaries = %+v", summaries)
	}

	out, err = run(t, "", "--local", "--sessions-dir", dir, "-r", summaries[0].ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !strings.Contains(out, "Resuming session: "+summaries[0].ID) {
		t.Errorf("resume output:\n%s", out)
	}
}

func TestPositionalPrompt(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "/exit\n", "--local", "--sessions-dir", dir, "hamster", "gyms")
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Brainstorming on: hamster gyms") {
		t.Errorf("output missing prompt reply:\n%s", out)
	}
	summaries := listSessions(t, dir)
	if len(summaries) != 1 || summaries[0].Title != "hamster gyms" {
		t.Errorf("summaries = %+v", summaries)
	}
}

func TestListEmpty(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "", "list", "--sessions-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "No saved sessions." {
		t.Errorf("output = %q", out)
	}
	if got := listSessions(t, dir); len(got) != 0 {
		t.Errorf("expected empty JSON list, got %+v", got)
	}
}

func TestSubcommands(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "", "--local", "--sessions-dir", dir, "--title", "Drone delivery"); err != nil {
		t.Fatal(err)
	}
	id := listSessions(t, dir)[0].ID

	out, err := run(t, "", "show", id, "--sessions-dir", dir)
	if err != nil || !strings.HasPrefix(out, "# Brainstorm: Drone delivery") {
		t.Errorf("show: err=%v out=%q", err, out)
	}

	out, err = run(t, "", "stage", id, "pitch", "--sessions-dir", dir)
	if err != nil || !strings.Contains(out, "Stage set to pitch (Pitch)") {
		t.Errorf("stage set: err=%v out=%q", err, out)
	}
	out, err = run(t, "", "stage", id, "--sessions-dir", dir)
	if err != nil || strings.TrimSpace(out) != "pitch (Pitch)" {
		t.Errorf("stage get: err=%v out=%q", err, out)
	}
	if _, err := run(t, "", "stage", id, "unicorn", "--sessions-dir", dir); err == nil {
		t.Error("expected error for invalid stage")
	}

	out, err = run(t, "", "artifact", id, "lean-canvas", "--local", "--sessions-dir", dir)
	if err != nil || !strings.Contains(out, "Generated lean-canvas from Local Brainstormer.") {
		t.Errorf("artifact: err=%v out=%q", err, out)
	}
	if _, err := run(t, "", "artifact", id, "deck", "--local", "--sessions-dir", dir); err == nil {
		t.Error("expected error for unknown artifact type")
	}

	out, err = run(t, "", "show", id, "--json", "--sessions-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	var sess session.Session
	if err := json.Unmarshal([]byte(out), &sess); err != nil {
		t.Fatal(err)
	}
	if sess.Stage != "pitch" || len(sess.Artifacts) != 1 {
		t.Errorf("stored session: stage=%s artifacts=%d", sess.Stage, len(sess.Artifacts))
	}

	if _, err := run(t, "", "show", "missing", "--sessions-dir", dir); err == nil {
		t.Error("expected error for a missing session")
	}
}

func TestInvalidProvider(t *testing.T) {
	if _, err := run(t, "", "list", "--llm", "skynet", "--sessions-dir", t.TempDir()); err == nil {
		t.Error("expected error for an unknown provider")
	}
}

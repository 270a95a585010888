package artifact

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/llm"
	"github.com/m4xw311/brainstorm/session"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

// cannedClient replies with a fixed text or error and records the prompt.
type cannedClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (c *cannedClient) Name() string { return "Canned" }

func (c *cannedClient) Chat(ctx context.Context, prompt string, history []session.Message) (*session.Message, error) {
	c.lastPrompt = prompt
	if c.err != nil {
		return nil, c.err
	}
	return &session.Message{Role: session.RoleAssistant, Text: c.reply}, nil
}

func newTestGenerator(client llm.LLMClient) *Generator {
	g := NewGenerator(client)
	g.now = func() time.Time { return fixedNow }
	return g
}

func testSession() *session.Session {
	s := session.New("Hamster gyms")
	s.AddMessage(session.RoleUser, "tiny treadmills")
	return s
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"lean-canvas", "GTM-PLAN", " one-pager "} {
		if _, err := ParseType(name); err != nil {
			t.Errorf("ParseType(%q): %v", name, err)
		}
	}
	_, err := ParseType("pitch-deck")
	if err == nil || !strings.Contains(err.Error(), "unknown artifact type: pitch-deck") {
		t.Errorf("ParseType(pitch-deck) error = %v", err)
	}
}

func TestPromptContents(t *testing.T) {
	s := session.New("Hamster gyms")
	for i := 0; i < 8; i++ {
		s.AddMessage(session.RoleUser, "note "+string(rune('a'+i)))
	}

	lean, err := Prompt(LeanCanvas, s)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Return ONLY a JSON object", `"uniqueValueProp": string;`, "Idea/context: Hamster gyms", "- (user) note h", "- (user) note c"} {
		if !strings.Contains(lean, want) {
			t.Errorf("lean canvas prompt missing %q:\n%s", want, lean)
		}
	}
	if strings.Contains(lean, "note b") {
		t.Error("only the last six notes should be quoted")
	}

	gtm, err := Prompt(GTMPlan, s)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gtm, "betSize: 'small'|'medium'|'large'") || !strings.Contains(gtm, "Recent notes:") {
		t.Errorf("unexpected gtm prompt:\n%s", gtm)
	}

	one, err := Prompt(OnePager, s)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(one, "Recent notes") || !strings.HasSuffix(one, "Idea/context: Hamster gyms") {
		t.Errorf("unexpected one-pager prompt:\n%s", one)
	}

	if _, err := Prompt("deck", s); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestGenerateParsesJSONReply(t *testing.T) {
	client := &cannedClient{reply: "```json\n{\"problem\":\"p\",\"audience\":\"a\",\"solution\":\"s\",\"whyNow\":\"w\",\"differentiation\":\"d\",\"nextSteps\":[\"ship\"]}\n```"}
	art, err := newTestGenerator(client).Generate(context.Background(), OnePager, testSession())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Summary != "" {
		t.Errorf("Summary = %q, want empty on success", art.Summary)
	}
	if art.Source != "Canned" || art.Type != "one-pager" || !art.CreatedAt.Equal(fixedNow) || art.ID == "" {
		t.Errorf("unexpected metadata: %+v", art)
	}
	var got OnePagerData
	if err := json.Unmarshal(art.Data, &got); err != nil {
		t.Fatal(err)
	}
	want := OnePagerData{Problem: "p", Audience: "a", Solution: "s", WhyNow: "w", Differentiation: "d", NextSteps: []string{"ship"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(client.lastPrompt, "Draft a crisp one-pager") {
		t.Errorf("unexpected prompt: %q", client.lastPrompt)
	}
}

func TestGenerateFallsBackOnProse(t *testing.T) {
	client := &cannedClient{reply: "Here are some thoughts about your canvas..."}
	art, err := newTestGenerator(client).Generate(context.Background(), LeanCanvas, testSession())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if art.Summary != client.reply {
		t.Errorf("Summary = %q, want raw reply", art.Summary)
	}
	var got LeanCanvasData
	if err := json.Unmarshal(art.Data, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(heuristicLeanCanvas("Hamster gyms"), got); diff != "" {
		t.Errorf("heuristic mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateFallsBackOnError(t *testing.T) {
	client := &cannedClient{err: errors.New("quota exceeded")}
	art, err := newTestGenerator(client).Generate(context.Background(), GTMPlan, testSession())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(art.Summary, "Generation failed, using heuristic: ") || !strings.Contains(art.Summary, "quota exceeded") {
		t.Errorf("Summary = %q", art.Summary)
	}
	var got GTMPlanData
	if err := json.Unmarshal(art.Data, &got); err != nil {
		t.Fatal(err)
	}
	wantDates := []string{"2026-10-22T12:00:00Z", "2026-11-15T12:00:00Z"}
	var gotDates []string
	for _, m := range got.Milestones {
		gotDates = append(gotDates, m.TargetDate)
	}
	if diff := cmp.Diff(wantDates, gotDates); diff != "" {
		t.Errorf("milestone dates mismatch (-want +got):\n%s", diff)
	}
	if got.Positioning.Statement != "For builders, Hamster gyms accelerates going from idea to plan with actionable artifacts" {
		t.Errorf("statement = %q", got.Positioning.Statement)
	}
}

func TestGenerateUnwrapsFallback(t *testing.T) {
	primary := &cannedClient{err: errors.New("remote down")}
	wrapped := &llm.FallbackLLMClient{Primary: primary, Secondary: llm.NewLocalLLMClient()}
	art, err := newTestGenerator(wrapped).Generate(context.Background(), OnePager, testSession())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(art.Summary, "remote down") {
		t.Errorf("remote failure should surface in summary, got %q", art.Summary)
	}
}

func TestGenerateWithoutClient(t *testing.T) {
	art, err := newTestGenerator(nil).Generate(context.Background(), OnePager, testSession())
	if err != nil {
		t.Fatal(err)
	}
	if art.Source != "unknown" || !strings.HasPrefix(art.Summary, "Generation failed") {
		t.Errorf("unexpected artifact: %+v", art)
	}
}

func TestGenerateUnknownType(t *testing.T) {
	if _, err := newTestGenerator(&cannedClient{}).Generate(context.Background(), "deck", testSession()); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, reply := range []string{"", "null", "[1,2]", `"text"`, `{"problem": 5}`, "{} trailing"} {
		if _, err := Parse(OnePager, reply); err == nil {
			t.Errorf("Parse(%q) expected error", reply)
		}
	}
	if _, err := Parse(LeanCanvas, "```\n{\"problem\":[\"x\"]}\n```"); err != nil {
		t.Errorf("fenced JSON should parse: %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	data, _ := json.Marshal(heuristicGTMPlan("Drones", fixedNow))
	art := session.Artifact{ID: "a1", Type: "gtm-plan", CreatedAt: fixedNow, Source: "Local Brainstormer", Data: data, Summary: "line one\nline two"}

	md, err := RenderMarkdown(art, "Drones")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	for _, want := range []string{
		"# GTM Plan: Drones\n",
		"_Generated 2026-10-01 12:00 UTC by Local Brainstormer_",
		"> line one\n> line two",
		"| Content | SEO and templates attract intent | medium |",
		"- MVP with Lean Canvas + GTM (2026-10-22T12:00:00Z)",
		"## Risks\n\n- LLM reliability\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	piped, _ := json.Marshal(GTMPlanData{Channels: []Channel{{Name: "Ads | retargeting", Hypothesis: "clicks\nconvert", BetSize: "small"}}})
	md, err = RenderMarkdown(session.Artifact{Type: "gtm-plan", Data: piped}, "Drones")
	if err != nil {
		t.Fatal(err)
	}
	if want := `| Ads \| retargeting | clicks convert | small |`; !strings.Contains(md, want) {
		t.Errorf("channel row not escaped, want %q:\n%s", want, md)
	}

	lean, _ := json.Marshal(heuristicLeanCanvas("Drones"))
	md, err = RenderMarkdown(session.Artifact{Type: "lean-canvas", Data: lean}, "Drones")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "## Unique Value Proposition\n\nFaster path to clarity for Drones with actionable outputs") {
		t.Errorf("lean canvas markdown:\n%s", md)
	}

	if _, err := RenderMarkdown(session.Artifact{Type: "one-pager", Data: []byte("[")}, "x"); err == nil {
		t.Error("expected error for malformed data")
	}
	if _, err := RenderMarkdown(session.Artifact{Type: "deck"}, "x"); err == nil {
		t.Error("expected error for unknown type")
	}
}

package artifact

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/m4xw311/brainstorm/errors"
	"github.com/m4xw311/brainstorm/session"
)

// RenderMarkdown renders an artifact as a standalone document titled after
// the session topic.
func RenderMarkdown(a session.Artifact, topic string) (string, error) {
	t, err := ParseType(a.Type)
	if err != nil {
		return "", err
	}

	var w mdWriter
	w.line(fmt.Sprintf("# %s: %s", t.Title(), topic), "")
	w.line(fmt.Sprintf("_Generated %s by %s_", a.CreatedAt.UTC().Format("2006-01-02 15:04 MST"), a.Source), "")
	if a.Summary != "" {
		w.line("> "+strings.ReplaceAll(a.Summary, "\n", "\n> "), "")
	}

	switch t {
	case LeanCanvas:
		var d LeanCanvasData
		if err := decode(a, &d); err != nil {
			return "", err
		}
		w.list("Problem", d.Problem)
		w.list("Customer Segments", d.CustomerSegments)
		w.list("Existing Alternatives", d.ExistingAlternatives)
		w.list("Solution", d.Solution)
		w.text("Unique Value Proposition", d.UniqueValueProp)
		w.text("Unfair Advantage", d.UnfairAdvantage)
		w.list("Channels", d.Channels)
		w.list("Key Metrics", d.KeyMetrics)
		w.list("Cost Structure", d.CostStructure)
		w.list("Revenue Streams", d.RevenueStreams)
		w.list("Top Assumptions", d.TopAssumptions)

	case GTMPlan:
		var d GTMPlanData
		if err := decode(a, &d); err != nil {
			return "", err
		}
		w.line("## Ideal Customer Profile", "")
		w.line("- Persona: "+d.ICP.Persona, "- Company: "+d.ICP.CompanyProfile, "")
		w.list("Pain Points", d.ICP.PainPoints)
		w.text("Positioning", d.Positioning.Statement)
		w.list("Key Benefits", d.Positioning.KeyBenefits)
		if len(d.Channels) > 0 {
			w.line("## Channels", "", "| Channel | Hypothesis | Bet |", "|---|---|---|")
			for _, c := range d.Channels {
				w.line(fmt.Sprintf("| %s | %s | %s |", cell(c.Name), cell(c.Hypothesis), cell(c.BetSize)))
			}
			w.line("")
		}
		w.line("## Pricing", "", fmt.Sprintf("%s at %s", d.Pricing.Model, d.Pricing.InitialPrice), "")
		w.list("Pricing Assumptions", d.Pricing.Assumptions)
		if len(d.Milestones) > 0 {
			w.line("## Milestones", "")
			for _, m := range d.Milestones {
				w.line(fmt.Sprintf("- %s (%s)", m.Name, m.TargetDate))
			}
			w.line("")
		}
		w.list("Metrics", d.Metrics)
		w.list("Risks", d.Risks)

	case OnePager:
		var d OnePagerData
		if err := decode(a, &d); err != nil {
			return "", err
		}
		w.text("Problem", d.Problem)
		w.text("Audience", d.Audience)
		w.text("Solution", d.Solution)
		w.text("Why Now", d.WhyNow)
		w.text("Differentiation", d.Differentiation)
		w.list("Next Steps", d.NextSteps)
	}

	return w.String(), nil
}

func decode(a session.Artifact, v any) error {
	if len(a.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(a.Data, v); err != nil {
		return errors.Wrapf(err, "artifact %s has malformed %s data", a.ID, a.Type)
	}
	return nil
}

type mdWriter struct {
	lines []string
}

func (w *mdWriter) line(l ...string) { w.lines = append(w.lines, l...) }

func (w *mdWriter) text(heading, body string) {
	if body == "" {
		return
	}
	w.line("## "+heading, "", body, "")
}

func (w *mdWriter) list(heading string, items []string) {
	if len(items) == 0 {
		return
	}
	w.line("## "+heading, "")
	for _, it := range items {
		w.line("- " + it)
	}
	w.line("")
}

func (w *mdWriter) String() string { return strings.Join(w.lines, "\n") }

// cell escapes a value for a Markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

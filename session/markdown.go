package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const artifactTimeLayout = "2006-01-02 15:04:05"

// ToMarkdown renders a human-readable transcript of the session.
func ToMarkdown(s *Session) string {
	var lines []string
	add := func(l ...string) { lines = append(lines, l...) }

	title := s.Title
	if title == "" {
		title = s.ID
	}
	st := s.Stage
	if st == "" {
		st = "concept"
	}
	add(fmt.Sprintf("# Brainstorm: %s", title), "")
	add(fmt.Sprintf("Stage: %s", st), "")

	for _, msg := range s.Messages {
		speaker := "You"
		if msg.Role == RoleAssistant {
			speaker = "Assistant"
		}
		add("## "+speaker, "", msg.Text, "")
	}

	if len(s.Ideas) > 0 {
		add("## Ideas", "")
		for _, idea := range s.Ideas {
			add("- " + idea.Text)
		}
		add("")
	}

	if len(s.Experiments) > 0 {
		add("## Experiments", "")
		for _, exp := range s.Experiments {
			line := fmt.Sprintf("- [%s] %s", exp.Status, exp.Hypothesis)
			if exp.Metric != "" {
				line += fmt.Sprintf(" (metric: %s)", exp.Metric)
			}
			add(line)
		}
		add("")
	}

	if len(s.Competitors) > 0 {
		add("## Competitors", "")
		for _, c := range s.Competitors {
			if c.Notes != "" {
				add(fmt.Sprintf("- %s: %s", c.Name, c.Notes))
			} else {
				add("- " + c.Name)
			}
		}
		add("")
	}

	if s.Scoring != nil {
		add("## Scoring", "")
		add(fmt.Sprintf("Impact %d, Confidence %d, Ease %d (ICE %.1f)",
			s.Scoring.Impact, s.Scoring.Confidence, s.Scoring.Ease, s.Scoring.ICE), "")
	}

	if len(s.Artifacts) > 0 {
		add("---", "", "## Artifacts", "")
		for _, art := range s.Artifacts {
			add(fmt.Sprintf("### %s (%s)", art.Type, art.CreatedAt.Local().Format(artifactTimeLayout)))
			if art.Summary != "" {
				add("", art.Summary, "")
			}
			if len(art.Data) > 0 {
				add("", "```json", indentJSON(art.Data), "```", "")
			}
		}
	}

	return strings.Join(lines, "\n")
}

func indentJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

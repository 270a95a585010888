package artifact

import (
	"strings"
	"text/template"

	"github.com/m4xw311/brainstorm/session"
)

// recentNotes is how many trailing messages are quoted into prompts.
const recentNotes = 6

const leanCanvasPrompt = `Create a Lean Canvas for the idea described below. Return ONLY a JSON object matching this TypeScript type:
  {
    "problem": string[];
    "customerSegments": string[];
    "existingAlternatives": string[];
    "solution": string[];
    "uniqueValueProp": string;
    "unfairAdvantage": string;
    "channels": string[];
    "keyMetrics": string[];
    "costStructure": string[];
    "revenueStreams": string[];
    "topAssumptions": string[];
  }
  Idea/context: {{.Topic}}
  Recent notes:
{{range .Notes}}  - ({{.Role}}) {{.Text}}
{{end}}`

const gtmPlanPrompt = `Create a concise GTM plan for the idea below. Return ONLY JSON:
  {
    "icp": { "persona": string, "companyProfile": string, "painPoints": string[] },
    "positioning": { "statement": string, "keyBenefits": string[] },
    "channels": Array<{ name: string, hypothesis: string, betSize: 'small'|'medium'|'large' }>,
    "pricing": { "model": string, "initialPrice": string, "assumptions": string[] },
    "milestones": Array<{ name: string, targetDate: string }>,
    "metrics": string[],
    "risks": string[]
  }
  Idea/context: {{.Topic}}
  Recent notes:
{{range .Notes}}  - ({{.Role}}) {{.Text}}
{{end}}`

const onePagerPrompt = `Draft a crisp one-pager. Return ONLY JSON:
  {
    "problem": string,
    "audience": string,
    "solution": string,
    "whyNow": string,
    "differentiation": string,
    "nextSteps": string[]
  }
  Idea/context: {{.Topic}}`

var prompts = map[Type]*template.Template{
	LeanCanvas: template.Must(template.New(string(LeanCanvas)).Parse(leanCanvasPrompt)),
	GTMPlan:    template.Must(template.New(string(GTMPlan)).Parse(gtmPlanPrompt)),
	OnePager:   template.Must(template.New(string(OnePager)).Parse(onePagerPrompt)),
}

type promptData struct {
	Topic string
	Notes []session.Message
}

// Prompt renders the generation request for an artifact type.
func Prompt(t Type, sess *session.Session) (string, error) {
	tmpl, ok := prompts[t]
	if !ok {
		_, err := ParseType(string(t))
		return "", err
	}
	var b strings.Builder
	data := promptData{Topic: sess.Topic(), Notes: sess.Recent(recentNotes)}
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

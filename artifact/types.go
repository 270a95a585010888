// Package artifact turns a brainstorm session into structured planning
// documents: a Lean Canvas, a go-to-market plan and a one-pager.
//
// Each artifact is requested from the session's generator as JSON. When the
// generator fails or answers with something that is not the expected JSON, a
// fixed heuristic document seeded with the session topic is used instead, so
// generation always yields an artifact.
package artifact

import (
	"slices"
	"strings"

	"github.com/m4xw311/brainstorm/errors"
)

type Type string

const (
	LeanCanvas Type = "lean-canvas"
	GTMPlan    Type = "gtm-plan"
	OnePager   Type = "one-pager"
)

var types = []Type{LeanCanvas, GTMPlan, OnePager}

// Types returns every supported artifact type.
func Types() []Type { return slices.Clone(types) }

// ParseType validates an artifact type name.
func ParseType(name string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(types, t) {
		names := make([]string, len(types))
		for i, v := range types {
			names[i] = string(v)
		}
		return "", errors.New("unknown artifact type: %s (valid: %s)", name, strings.Join(names, ", "))
	}
	return t, nil
}

func (t Type) Title() string {
	switch t {
	case LeanCanvas:
		return "Lean Canvas"
	case GTMPlan:
		return "GTM Plan"
	case OnePager:
		return "One-Pager"
	}
	return string(t)
}

type LeanCanvasData struct {
	Problem              []string `json:"problem"`
	CustomerSegments     []string `json:"customerSegments"`
	ExistingAlternatives []string `json:"existingAlternatives"`
	Solution             []string `json:"solution"`
	UniqueValueProp      string   `json:"uniqueValueProp"`
	UnfairAdvantage      string   `json:"unfairAdvantage"`
	Channels             []string `json:"channels"`
	KeyMetrics           []string `json:"keyMetrics"`
	CostStructure        []string `json:"costStructure"`
	RevenueStreams       []string `json:"revenueStreams"`
	TopAssumptions       []string `json:"topAssumptions"`
}

type ICP struct {
	Persona        string   `json:"persona"`
	CompanyProfile string   `json:"companyProfile"`
	PainPoints     []string `json:"painPoints"`
}

type Positioning struct {
	Statement   string   `json:"statement"`
	KeyBenefits []string `json:"keyBenefits"`
}

// Channel is a go-to-market bet. BetSize is "small", "medium" or "large".
type Channel struct {
	Name       string `json:"name"`
	Hypothesis string `json:"hypothesis"`
	BetSize    string `json:"betSize"`
}

type Pricing struct {
	Model        string   `json:"model"`
	InitialPrice string   `json:"initialPrice"`
	Assumptions  []string `json:"assumptions"`
}

type Milestone struct {
	Name       string `json:"name"`
	TargetDate string `json:"targetDate"`
}

type GTMPlanData struct {
	ICP         ICP         `json:"icp"`
	Positioning Positioning `json:"positioning"`
	Channels    []Channel   `json:"channels"`
	Pricing     Pricing     `json:"pricing"`
	Milestones  []Milestone `json:"milestones"`
	Metrics     []string    `json:"metrics"`
	Risks       []string    `json:"risks"`
}

type OnePagerData struct {
	Problem         string   `json:"problem"`
	Audience        string   `json:"audience"`
	Solution        string   `json:"solution"`
	WhyNow          string   `json:"whyNow"`
	Differentiation string   `json:"differentiation"`
	NextSteps       []string `json:"nextSteps"`
}

package artifact

import (
	"time"
)

const day = 24 * time.Hour

func heuristicLeanCanvas(topic string) LeanCanvasData {
	return LeanCanvasData{
		Problem: []string{
			"Time-consuming workflows around " + topic,
			"High uncertainty about market and ICP for " + topic,
		},
		CustomerSegments:     []string{"Early adopters", "SMB teams", "Indie makers"},
		ExistingAlternatives: []string{"Generic tools", "Manual processes", "Spreadsheets"},
		Solution:             []string{"A focused solution targeting core jobs related to " + topic},
		UniqueValueProp:      "Faster path to clarity for " + topic + " with actionable outputs",
		UnfairAdvantage:      "Opinionated workflow and fast iteration",
		Channels:             []string{"Communities", "Content", "Founder-led sales"},
		KeyMetrics:           []string{"Activation", "Weekly active users", "Retention D30"},
		CostStructure:        []string{"Hosting", "LLM usage", "Founder time"},
		RevenueStreams:       []string{"Subscriptions", "Consulting add-ons"},
		TopAssumptions:       []string{"ICP willingness to pay", "Channel ROI"},
	}
}

func heuristicGTMPlan(topic string, now time.Time) GTMPlanData {
	return GTMPlanData{
		ICP: ICP{
			Persona:        "Founder or PM at early-stage startup",
			CompanyProfile: "SaaS or tooling, 2–20 people",
			PainPoints:     []string{"Unclear positioning", "Slow validation", "Ad hoc planning"},
		},
		Positioning: Positioning{
			Statement:   "For builders, " + topic + " accelerates going from idea to plan with actionable artifacts",
			KeyBenefits: []string{"Structure", "Speed", "Shareable outputs"},
		},
		Channels: []Channel{
			{Name: "Communities", Hypothesis: "Reach ICP where they hang", BetSize: "small"},
			{Name: "Content", Hypothesis: "SEO and templates attract intent", BetSize: "medium"},
			{Name: "Founder-led sales", Hypothesis: "High signal early feedback", BetSize: "small"},
		},
		Pricing: Pricing{
			Model:        "Freemium → Pro subscription",
			InitialPrice: "$15–$29/mo",
			Assumptions:  []string{"Activation to paid > 5%"},
		},
		Milestones: []Milestone{
			{Name: "MVP with Lean Canvas + GTM", TargetDate: now.Add(21 * day).UTC().Format(time.RFC3339)},
			{Name: "Public launch", TargetDate: now.Add(45 * day).UTC().Format(time.RFC3339)},
		},
		Metrics: []string{"WAU", "Activation rate", "Export count/user"},
		Risks:   []string{"LLM reliability", "Narrow TAM if too niche"},
	}
}

func heuristicOnePager(topic string) OnePagerData {
	return OnePagerData{
		Problem:         "Turning " + topic + " from concept into an executable plan is slow and unstructured",
		Audience:        "Solo founders and small product teams",
		Solution:        "A guided workspace that produces Lean Canvas, GTM plan, and exportable docs",
		WhyNow:          "LLMs enable fast structured drafting; many new builders entering market",
		Differentiation: "Opinionated workflow + high-quality exports; local-first",
		NextSteps:       []string{"Ship MVP", "Run 5 founder interviews", "Launch in communities"},
	}
}

// Heuristic returns the fallback document for t.
func Heuristic(t Type, topic string, now time.Time) any {
	switch t {
	case LeanCanvas:
		return heuristicLeanCanvas(topic)
	case GTMPlan:
		return heuristicGTMPlan(topic, now)
	case OnePager:
		return heuristicOnePager(topic)
	}
	return nil
}

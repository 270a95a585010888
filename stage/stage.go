// Package stage defines the ordered planning stages a brainstorm session moves
// through, from a raw concept to an investor-ready package.
package stage

import (
	"strings"

	"github.com/m4xw311/brainstorm/errors"
)

type Stage string

const (
	Concept            Stage = "concept"
	ProblemSolutionFit Stage = "problem_solution_fit"
	GTM                Stage = "gtm"
	Pitch              Stage = "pitch"
	InvestorPackage    Stage = "investor_package"
)

// Default is the stage every new session starts in.
const Default = Concept

var ordered = []Stage{Concept, ProblemSolutionFit, GTM, Pitch, InvestorPackage}

var labels = map[Stage]string{
	Concept:            "Concept",
	ProblemSolutionFit: "Problem/Solution Fit",
	GTM:                "Go-To-Market",
	Pitch:              "Pitch",
	InvestorPackage:    "Investor Package",
}

// All returns the stages in order.
func All() []Stage {
	out := make([]Stage, len(ordered))
	copy(out, ordered)
	return out
}

func IsValid(s Stage) bool {
	return s.Index() >= 0
}

// Parse accepts a stage value case-insensitively, allowing '-' or ' ' in
// place of '_'.
func Parse(text string) (Stage, error) {
	norm := strings.ToLower(strings.TrimSpace(text))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	s := Stage(norm)
	if !IsValid(s) {
		return "", errors.New("unknown stage %q (valid: %s)", text, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names returns the string values of all stages in order.
func Names() []string {
	names := make([]string, len(ordered))
	for i, s := range ordered {
		names[i] = string(s)
	}
	return names
}

// Index returns the position of s in the stage order, or -1.
func (s Stage) Index() int {
	for i, o := range ordered {
		if o == s {
			return i
		}
	}
	return -1
}

// Next returns the stage after s. The last stage returns itself and false.
func (s Stage) Next() (Stage, bool) {
	i := s.Index()
	if i < 0 || i == len(ordered)-1 {
		return s, false
	}
	return ordered[i+1], true
}

func (s Stage) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

func (s Stage) String() string { return string(s) }

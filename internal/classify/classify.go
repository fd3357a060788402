// Package classify assigns a problem type to raw problem text using an
// ordered chain of pattern rules.
package classify

import (
	"regexp"
	"strings"

	"github.com/abhisek/mathstep/internal/problem"
)

// Rule recognizes one problem type.
type Rule interface {
	Name() string
	Type() problem.Type
	// Match is called with the lower-cased problem text.
	Match(lower string) bool
}

// PatternRule matches when any of its patterns occurs in the text.
type PatternRule struct {
	RuleName string
	Target   problem.Type
	Patterns []*regexp.Regexp
}

func (r *PatternRule) Name() string       { return r.RuleName }
func (r *PatternRule) Type() problem.Type { return r.Target }

func (r *PatternRule) Match(lower string) bool {
	for _, p := range r.Patterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// DefaultRules returns the rules in priority order. Integration is checked
// first so "∫x dx = ..." is never mistaken for an equation, and algebra comes
// last because '=' shows up in every other category's phrasing.
func DefaultRules() []Rule {
	return []Rule{
		&PatternRule{
			RuleName: "integration",
			Target:   problem.TypeIntegration,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`integrate|∫|integral`),
				regexp.MustCompile(`\bint\(.*\)`),
				regexp.MustCompile(`(?:find|compute|evaluate) the integral`),
			},
		},
		&PatternRule{
			RuleName: "differentiation",
			Target:   problem.TypeDifferentiation,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`derivative|differentiate`),
				regexp.MustCompile(`d/d[a-z]`),
				regexp.MustCompile(`′|\b[a-z]'+\s*\(`),
				regexp.MustCompile(`\bdiff\(.*\)`),
			},
		},
		&PatternRule{
			RuleName: "limit",
			Target:   problem.TypeLimit,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`limit|\blim\s*\(`),
				regexp.MustCompile(`\blim(?:_|\s+[a-z]\s*(?:->|→))`),
			},
		},
		&PatternRule{
			RuleName: "algebra",
			Target:   problem.TypeAlgebra,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`solve|=`),
			},
		},
	}
}

var defaultRules = DefaultRules()

// Run returns the type of the first matching rule and that rule's name.
// When nothing matches the problem is arithmetic and the name is empty.
func Run(rules []Rule, text string) (problem.Type, string) {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.Match(lower) {
			return r.Type(), r.Name()
		}
	}
	return problem.TypeArithmetic, ""
}

// Classify runs the default rule chain.
func Classify(text string) problem.Type {
	t, _ := Run(defaultRules, text)
	return t
}

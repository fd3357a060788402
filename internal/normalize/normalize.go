// Package normalize rewrites free-form math notation into the canonical
// syntax the engine parses: diff(E,V), integrate(E,V), limit(E,V,A), ASCII
// operators, no whitespace.
package normalize

import (
	"regexp"
	"strings"
)

// Rule is one rewrite step. Rules run in the order Rules returns them.
type Rule struct {
	Name   string
	Intent string
	Apply  func(string) string
}

var rules = []Rule{
	{
		Name:   "collapse-whitespace",
		Intent: "join lines and collapse whitespace runs so phrase patterns see single spaces",
		Apply:  collapseWhitespace,
	},
	{
		Name:   "derivative",
		Intent: "rewrite d/dx(E), d/dx[E] and 'derivative of E with respect to V' into diff(E,V)",
		Apply:  rewriteDerivatives,
	},
	{
		Name:   "integral",
		Intent: "rewrite ∫E dV and 'integral of E with respect to V' into integrate(E,V)",
		Apply:  rewriteIntegrals,
	},
	{
		Name:   "limit",
		Intent: "rewrite 'limit of E as V approaches A', lim V→A E and lim(E,V→A) into limit(E,V,A)",
		Apply:  rewriteLimits,
	},
	{
		Name:   "operators",
		Intent: "map ×, ÷, ·, superscript powers and unicode minus signs to ASCII; x between two numbers is multiplication",
		Apply:  normalizeOperators,
	},
	{
		Name:   "trailing-period",
		Intent: "drop sentence punctuation at the end",
		Apply:  stripTrailingPeriod,
	},
	{
		Name:   "strip-whitespace",
		Intent: "remove all remaining whitespace",
		Apply:  stripWhitespace,
	},
}

// Rules returns the normalization rules in application order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Normalize applies every rule in order, repeating the whole list until the
// text stops changing, so it never fails and is idempotent.
func Normalize(raw string) string {
	s := raw
	for i := 0; i < maxPasses; i++ {
		next := s
		for _, r := range rules {
			next = r.Apply(next)
		}
		if next == s {
			break
		}
		s = next
	}
	return s
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	derivOpenRe   = regexp.MustCompile(`d\s*/\s*d\s*([a-zA-Z])\s*([(\[])`)
	derivBareRe   = regexp.MustCompile(`^d\s*/\s*d\s*([a-zA-Z])\s+(.+)$`)
	derivPhraseRe = regexp.MustCompile(`(?i)^(?:(?:find|compute|calculate|evaluate|what\s+is)\s+)?(?:the\s+)?(?:derivative\s+of|differentiate)\s+(.+?)(?:\s+(?:with\s+respect\s+to|wrt)\s+([a-zA-Z]))?\s*[.?]?$`)

	integralSymbolRe = regexp.MustCompile(`∫\s*(.+?)\s*d([a-zA-Z])\b`)
	integralBareRe   = regexp.MustCompile(`∫\s*([^∫]+)$`)
	integralPhraseRe = regexp.MustCompile(`(?i)^(?:(?:find|compute|calculate|evaluate|what\s+is)\s+)?(?:the\s+)?(?:integral\s+of|integrate)\s+(.+?)(?:\s*\bd([a-zA-Z])|\s+(?:with\s+respect\s+to|wrt)\s+([a-zA-Z]))?\s*[.?]?$`)

	limitPhraseRe = regexp.MustCompile(`(?i)^(?:(?:find|compute|calculate|evaluate|what\s+is)\s+)?(?:the\s+)?limit\s+of\s+(.+?)\s+as\s+([a-zA-Z])\s+(?:approaches|tends\s+to|goes\s+to|->|→)\s+(.+?)\s*[.?]?$`)
	limitArrowRe  = regexp.MustCompile(`(?i)^lim_?\{?\s*([a-zA-Z])\s*(?:->|→)\s*([^}\s]+)\s*\}?\s*(.+)$`)
	limitCallRe   = regexp.MustCompile(`^lim\s*\((.+),\s*([a-zA-Z])\s*(?:->|→)\s*([^)]+)\)$`)

	numericTimesRe = regexp.MustCompile(`(\d)\s*[xX]\s*(\d)`)
	minusRe        = regexp.MustCompile(`[−–—‒﹣－]`)
	trailingRe     = regexp.MustCompile(`[.\s]+$`)

	ocrOperatorRe = regexp.MustCompile(`\s*([+\-*/^])\s*`)
	ocrEqualsRe   = regexp.MustCompile(`\s*=\s*`)
)

const (
	maxRewrites = 32
	maxPasses   = 4
)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func rewriteDerivatives(s string) string {
	for i := 0; i < maxRewrites; i++ {
		loc := derivOpenRe.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		v := s[loc[2]:loc[3]]
		open := loc[4]
		end := matchBracket(s, open)
		if end < 0 {
			break
		}
		body := s[open+1 : end]
		s = s[:loc[0]] + "diff(" + body + "," + v + ")" + s[end+1:]
	}
	if m := derivBareRe.FindStringSubmatch(s); m != nil {
		s = "diff(" + m[2] + "," + m[1] + ")"
	}
	if m := derivPhraseRe.FindStringSubmatch(s); m != nil {
		s = "diff(" + m[1] + "," + orDefault(m[2], "x") + ")"
	}
	return s
}

// matchBracket returns the index of the bracket closing the one at open, or
// -1 if the nesting never balances.
func matchBracket(s string, open int) int {
	opener := s[open]
	closer := byte(')')
	if opener == '[' {
		closer = ']'
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func rewriteIntegrals(s string) string {
	for i := 0; i < maxRewrites && strings.Contains(s, "∫"); i++ {
		next := integralSymbolRe.ReplaceAllString(s, "integrate($1,$2)")
		if next == s {
			next = integralBareRe.ReplaceAllString(s, "integrate($1,x)")
		}
		if next == s {
			break
		}
		s = next
	}
	if m := integralPhraseRe.FindStringSubmatch(s); m != nil {
		v := orDefault(m[2], orDefault(m[3], "x"))
		s = "integrate(" + m[1] + "," + v + ")"
	}
	return s
}

func rewriteLimits(s string) string {
	s = strings.ReplaceAll(s, "∞", "Infinity")
	if m := limitPhraseRe.FindStringSubmatch(s); m != nil {
		return "limit(" + m[1] + "," + m[2] + "," + m[3] + ")"
	}
	if m := limitArrowRe.FindStringSubmatch(s); m != nil {
		return "limit(" + m[3] + "," + m[1] + "," + m[2] + ")"
	}
	if m := limitCallRe.FindStringSubmatch(s); m != nil {
		return "limit(" + m[1] + "," + m[2] + "," + strings.TrimSpace(m[3]) + ")"
	}
	return s
}

func normalizeOperators(s string) string {
	s = strings.NewReplacer("×", "*", "÷", "/", "·", "*", "∙", "*", "²", "^2", "³", "^3").Replace(s)
	s = minusRe.ReplaceAllString(s, "-")
	for i := 0; i < maxRewrites; i++ {
		next := numericTimesRe.ReplaceAllString(s, "$1*$2")
		if next == s {
			break
		}
		s = next
	}
	return s
}

func stripTrailingPeriod(s string) string {
	return trailingRe.ReplaceAllString(s, "")
}

func stripWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(s, "")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// CleanOCRText tidies text read from an image before classification:
// whitespace is collapsed, spaces around operators between digits and
// around '=' are removed, and square or curly brackets become parentheses.
func CleanOCRText(text string) string {
	s := tightenOperators(collapseWhitespace(text))
	s = ocrEqualsRe.ReplaceAllString(s, "=")
	return strings.NewReplacer("[", "(", "{", "(", "]", ")", "}", ")").Replace(s)
}

// tightenOperators drops the spaces around an operator that sits between
// two digits. Digits are never part of a match, so in 2 + 3 * 4 the 3
// serves both operators.
func tightenOperators(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range ocrOperatorRe.FindAllStringSubmatchIndex(s, -1) {
		if m[0] == 0 || m[1] == len(s) || !isDigit(s[m[0]-1]) || !isDigit(s[m[1]]) {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(s[m[2]:m[3]])
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

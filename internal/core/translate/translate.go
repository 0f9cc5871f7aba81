package translate

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// Rule and Translator Types
// =============================================================================

// Rule pairs a phrase pattern with a command template.
// Template uses regexp.Expand syntax, e.g. "docker logs ${container}".
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Exclude  *regexp.Regexp // Phrases matching this are skipped even if Pattern matches
	Template string
}

// NewRule compiles pattern as a case-insensitive, fully anchored expression.
// It panics if the pattern does not compile, like regexp.MustCompile.
func NewRule(name, pattern, template string) Rule {
	return Rule{
		Name:     name,
		Pattern:  regexp.MustCompile(`(?i)^(?:` + pattern + `)$`),
		Template: template,
	}
}

// Unless returns a copy of r that skips phrases matching pattern. The
// pattern is case-insensitive and unanchored.
func (r Rule) Unless(pattern string) Rule {
	r.Exclude = regexp.MustCompile(`(?i)` + pattern)
	return r
}

// matches reports whether r accepts phrase and returns the submatch indexes.
func (r Rule) matches(phrase string) []int {
	if r.Exclude != nil && r.Exclude.MatchString(phrase) {
		return nil
	}
	return r.Pattern.FindStringSubmatchIndex(phrase)
}

// Translation is the result of a successful match.
type Translation struct {
	Phrase  string `json:"phrase"`  // Normalized input, or the trimmed command for passthrough
	Rule    string `json:"rule"`    // Name of the rule that matched
	Command string `json:"command"` // Synthesized command line
}

// Translator runs an ordered cascade of rules. The first matching rule wins.
type Translator struct {
	rules []Rule
}

// New creates a translator over the given rules, tried in order.
func New(rules ...Rule) *Translator {
	return &Translator{rules: rules}
}

// Default returns a translator over the built-in phrase table.
func Default() *Translator {
	return New(DefaultRules()...)
}

// Rules returns a copy of the cascade in match order.
func (t *Translator) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// =============================================================================
// Translation
// =============================================================================

// Translate normalizes phrase and expands the template of the first rule
// that matches it. A phrase that already starts with "docker" is returned
// as the command with its quoting, spacing and punctuation untouched.
//
// Example:
//
//	tr, _ := Default().Translate("show the last 50 logs for web")
//	// tr.Command == "docker logs --tail 50 web"
func (t *Translator) Translate(phrase string) (Translation, error) {
	raw := strings.TrimSpace(phrase)
	if loc := passthroughPrefix.FindStringIndex(raw); loc != nil {
		return Translation{Phrase: raw, Rule: PassthroughRule, Command: "docker " + raw[loc[1]:]}, nil
	}

	normalized := Normalize(phrase)
	if normalized == "" {
		return Translation{}, ErrEmptyPhrase
	}

	for _, rule := range t.rules {
		match := rule.matches(normalized)
		if match == nil {
			continue
		}
		cmd := rule.Pattern.ExpandString(nil, rule.Template, normalized, match)
		return Translation{
			Phrase:  normalized,
			Rule:    rule.Name,
			Command: collapseSpaces(string(cmd)),
		}, nil
	}

	return Translation{}, &NoMatchError{Phrase: normalized}
}

// =============================================================================
// Normalization
// =============================================================================

// PassthroughRule names the rule reported for phrases that are already
// docker commands.
const PassthroughRule = "passthrough"

// passthroughPrefix matches the leading "docker" of a trimmed phrase that
// has at least one more word.
var passthroughPrefix = regexp.MustCompile(`(?i)^docker\s+`)

var (
	politePrefix = regexp.MustCompile(`(?i)^(?:(?:please|can you|could you|would you)\s+)+`)
	whitespace   = regexp.MustCompile(`\s+`)
	quoteFolding = strings.NewReplacer("‘", "'", "’", "'", "“", `"`, "”", `"`)
)

// Normalize prepares a phrase for matching: NFKC folding, straight quotes,
// collapsed whitespace, no polite prefix and no trailing ? or !.
// A single trailing period is dropped only when it ends a word, so a
// build context of "." survives.
func Normalize(phrase string) string {
	s := norm.NFKC.String(phrase)
	s = quoteFolding.Replace(s)
	s = collapseSpaces(s)
	s = strings.TrimRight(s, "?! ")
	if n := len(s); n >= 2 && s[n-1] == '.' && isWordByte(s[n-2]) {
		s = s[:n-1]
	}
	s = politePrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

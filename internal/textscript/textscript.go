// Package textscript analyzes source-script text for the translation
// pipeline: script character counting, parenthesized span extraction,
// preservation measurement, format-compliance rules, and Unicode
// normalization. The script table is a parameter so the pipeline can be
// pointed at a different writing system without code changes; the default
// deployment targets Tibetan.
package textscript

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Analyzer provides script-aware text analysis for one writing system.
type Analyzer struct {
	table *unicode.RangeTable
}

// NewAnalyzer creates an Analyzer for the given script table.
func NewAnalyzer(table *unicode.RangeTable) *Analyzer {
	return &Analyzer{table: table}
}

// NewTibetanAnalyzer creates the default Analyzer for Tibetan script.
func NewTibetanAnalyzer() *Analyzer {
	return NewAnalyzer(unicode.Tibetan)
}

// IsScript reports whether r belongs to the analyzer's script.
func (a *Analyzer) IsScript(r rune) bool {
	return unicode.Is(a.table, r)
}

// CountScript returns the number of script runes in s.
func (a *Analyzer) CountScript(s string) int {
	count := 0
	for _, r := range s {
		if a.IsScript(r) {
			count++
		}
	}
	return count
}

// ScriptRatio returns the fraction of non-whitespace runes in s that belong
// to the script. An empty or all-whitespace string yields 0.
func (a *Analyzer) ScriptRatio(s string) float64 {
	total := 0
	script := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if a.IsScript(r) {
			script++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(script) / float64(total)
}

// ParenthesizedSpans returns the contents of every balanced top-level
// parenthesized span in s, in order of appearance. Nested parentheses are
// kept inside their outermost span.
func ParenthesizedSpans(s string) []string {
	var spans []string
	depth := 0
	var current strings.Builder
	for _, r := range s {
		switch {
		case r == '(':
			if depth > 0 {
				current.WriteRune(r)
			}
			depth++
		case r == ')':
			depth--
			if depth == 0 {
				spans = append(spans, current.String())
				current.Reset()
			} else if depth > 0 {
				current.WriteRune(r)
			} else {
				depth = 0
			}
		case depth > 0:
			current.WriteRune(r)
		}
	}
	return spans
}

// BalancedParens reports whether every parenthesis in s is matched.
func BalancedParens(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// ScriptInParens reports whether any parenthesized span in s contains at
// least one script rune.
func (a *Analyzer) ScriptInParens(s string) bool {
	for _, span := range ParenthesizedSpans(s) {
		if a.CountScript(span) > 0 {
			return true
		}
	}
	return false
}

// PreservedRatio returns the fraction of script runes from source that are
// reproduced inside parenthesized spans of output. Rune occurrences are
// counted as a multiset so repeated syllables must be repeated to count.
// Returns 1.0 when source contains no script runes.
func (a *Analyzer) PreservedRatio(source, output string) float64 {
	sourceCounts := make(map[rune]int)
	total := 0
	for _, r := range source {
		if a.IsScript(r) {
			sourceCounts[r]++
			total++
		}
	}
	if total == 0 {
		return 1.0
	}

	outputCounts := make(map[rune]int)
	for _, span := range ParenthesizedSpans(output) {
		for _, r := range span {
			if a.IsScript(r) {
				outputCounts[r]++
			}
		}
	}

	preserved := 0
	for r, want := range sourceCounts {
		have := outputCounts[r]
		if have > want {
			have = want
		}
		preserved += have
	}
	return float64(preserved) / float64(total)
}

// refusalPhrases are substrings that indicate a model declined to translate
// rather than producing a translation. Matched case-insensitively.
var refusalPhrases = []string{
	"i cannot translate",
	"i can't translate",
	"i'm unable to translate",
	"i am unable to translate",
	"i cannot assist",
	"i can't assist",
	"as an ai language model",
	"i'm sorry, but i",
	"i am sorry, but i",
}

// ContainsRefusal reports whether s contains a known refusal phrase, and
// returns the first phrase matched.
func ContainsRefusal(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// FormatCompliant reports whether a translation follows the expected output
// format: at least one parenthesized span, script text inside a parenthesis,
// every script rune wrapped in parentheses, balanced parentheses,
// translation text outside the parentheses, and no refusal phrase.
func (a *Analyzer) FormatCompliant(translation string) bool {
	if _, refused := ContainsRefusal(translation); refused {
		return false
	}
	if !BalancedParens(translation) {
		return false
	}
	spans := ParenthesizedSpans(translation)
	if len(spans) == 0 {
		return false
	}
	if !a.ScriptInParens(translation) {
		return false
	}

	// Every script rune must live inside a parenthesized span, and the
	// spans must be paired with translation text outside them.
	inParens := 0
	for _, span := range spans {
		inParens += a.CountScript(span)
	}
	if inParens < a.CountScript(translation) {
		return false
	}
	outside := stripParenthesized(translation)
	return strings.TrimSpace(outside) != ""
}

// stripParenthesized removes every parenthesized span (including the
// parentheses) from s.
func stripParenthesized(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripParenthesized returns s with all parenthesized spans removed. Useful
// for analyzing only the translated portion of an output.
func StripParenthesized(s string) string {
	return stripParenthesized(s)
}

// NormalizeNFC returns s in Unicode canonical composition form. The
// operation is idempotent: normalizing an already-normalized string returns
// it unchanged.
func NormalizeNFC(s string) string {
	return norm.NFC.String(s)
}

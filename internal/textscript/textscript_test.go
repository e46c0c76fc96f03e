package textscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const refuge = "སངས་རྒྱས་ཆོས་དང་ཚོགས་ཀྱི་མཆོག་རྣམས་ལ།"

func TestScriptRatio(t *testing.T) {
	a := NewTibetanAnalyzer()

	assert.Equal(t, 1.0, a.ScriptRatio(refuge))
	assert.Equal(t, 0.0, a.ScriptRatio("plain english"))
	assert.Equal(t, 0.0, a.ScriptRatio("   "))
	assert.InDelta(t, 0.5, a.ScriptRatio("ab"+"ཀཁ"), 1e-9)

	// Whitespace never counts toward the total.
	assert.Equal(t, 1.0, a.ScriptRatio("ཀ ཁ ག"))
}

func TestParenthesizedSpans(t *testing.T) {
	spans := ParenthesizedSpans("one (ཀཁ) two (ག) three")
	assert.Equal(t, []string{"ཀཁ", "ག"}, spans)

	assert.Empty(t, ParenthesizedSpans("no spans here"))

	// Nested parens capture the outer span.
	spans = ParenthesizedSpans("x (a (b) c) y")
	assert.Equal(t, []string{"a (b) c"}, spans)
}

func TestBalancedParens(t *testing.T) {
	assert.True(t, BalancedParens("a (b) c"))
	assert.True(t, BalancedParens("no parens"))
	assert.False(t, BalancedParens("a (b c"))
	assert.False(t, BalancedParens("a b) c"))
	assert.False(t, BalancedParens(")("))
}

func TestPreservedRatio(t *testing.T) {
	a := NewTibetanAnalyzer()

	assert.Equal(t, 1.0, a.PreservedRatio(refuge, "I take refuge ("+refuge+")"))
	assert.Equal(t, 0.0, a.PreservedRatio(refuge, "I take refuge"))
	assert.Equal(t, 1.0, a.PreservedRatio("no script source", "anything"), "script-free sources are fully preserved")

	// Partial reproduction counts rune by rune.
	partial := a.PreservedRatio(refuge, "refuge (སངས)")
	assert.Greater(t, partial, 0.0)
	assert.Less(t, partial, 0.5)

	// Script outside parentheses does not count as preserved.
	assert.Equal(t, 0.0, a.PreservedRatio(refuge, refuge))
}

func TestContainsRefusal(t *testing.T) {
	phrase, found := ContainsRefusal("I cannot translate this text.")
	assert.True(t, found)
	assert.NotEmpty(t, phrase)

	_, found = ContainsRefusal("I take refuge in the Buddha ("+refuge+")")
	assert.False(t, found)
}

func TestFormatCompliant(t *testing.T) {
	a := NewTibetanAnalyzer()

	assert.True(t, a.FormatCompliant("I take refuge ("+refuge+")"))
	assert.False(t, a.FormatCompliant("no span at all"))
	assert.False(t, a.FormatCompliant("unbalanced (ཀཁ"))
	assert.False(t, a.FormatCompliant("empty span () only"))
	assert.False(t, a.FormatCompliant("I cannot translate this ("+refuge+")"))
}

func TestStripParenthesized(t *testing.T) {
	assert.Equal(t, "refuge ", StripParenthesized("refuge ("+refuge+")"))
	assert.Equal(t, "nothing to strip", StripParenthesized("nothing to strip"))
}

func TestNormalizeNFCIdempotent(t *testing.T) {
	once := NormalizeNFC(refuge)
	assert.Equal(t, once, NormalizeNFC(once))
}

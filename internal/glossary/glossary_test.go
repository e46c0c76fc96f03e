package glossary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTerms = []Term{
	{Source: "སངས་རྒྱས", English: "Buddha"},
	{Source: "ཆོས", English: "Dharma"},
	{Source: "དགེ་འདུན", English: "Sangha"},
}

func TestStaticSourceTermsFor(t *testing.T) {
	source := NewStaticSource(sampleTerms)

	terms, err := source.TermsFor(context.Background(), "སངས་རྒྱས་ཆོས་དང་")
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "Buddha", terms[0].English)
	assert.Equal(t, "Dharma", terms[1].English)

	terms, err = source.TermsFor(context.Background(), "no matches here")
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestStaticSourceIgnoresEmptySourceExpressions(t *testing.T) {
	source := NewStaticSource([]Term{{Source: "", English: "Everything"}})

	terms, err := source.TermsFor(context.Background(), "any text at all")
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestStaticSourceAdd(t *testing.T) {
	source := NewStaticSource(nil)
	source.Add(Term{Source: "བླ་མ", English: "lama"})

	terms, err := source.TermsFor(context.Background(), "བླ་མ་ལ་")
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "lama", terms[0].English)
}

func TestCoverageRatio(t *testing.T) {
	terms := sampleTerms

	assert.Equal(t, 1.0, CoverageRatio(terms, "I take refuge in the Buddha, the Dharma, and the Sangha."))
	assert.InDelta(t, 2.0/3.0, CoverageRatio(terms, "the buddha taught the dharma"), 1e-9)
	assert.Equal(t, 0.0, CoverageRatio(terms, "nothing relevant"))
	assert.Equal(t, 0.0, CoverageRatio(nil, "anything"))
}

func TestCoverageRatioCaseInsensitive(t *testing.T) {
	terms := []Term{{Source: "ཆོས", English: "Dharma"}}
	assert.Equal(t, 1.0, CoverageRatio(terms, "the DHARMA endures"))
}

func TestCoverageRatioSkipsEmptyGlosses(t *testing.T) {
	terms := []Term{{Source: "ཆོས", English: ""}}
	assert.Equal(t, 0.0, CoverageRatio(terms, "any translation"))
}

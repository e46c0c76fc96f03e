package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunksShortText(t *testing.T) {
	chunks := SplitChunks("a short text", 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].PageNumber)
	assert.Equal(t, "a short text", chunks[0].Content)
	assert.Empty(t, chunks[0].Context)
}

func TestSplitChunksZeroMaxNeverSplits(t *testing.T) {
	chunks := SplitChunks(strings.Repeat("x ", 500), 0)
	require.Len(t, chunks, 1)
}

func TestSplitChunksPrefersParagraphBoundary(t *testing.T) {
	first := "First paragraph with several words in it."
	second := "Second paragraph continues the document."
	text := first + "\n\n" + second

	chunks := SplitChunks(text, len([]rune(text))-5)

	require.Len(t, chunks, 2)
	assert.Equal(t, first, chunks[0].Content)
	assert.Equal(t, second, chunks[1].Content)
}

func TestSplitChunksFallsBackToSentenceBoundary(t *testing.T) {
	text := "One sentence here. Another sentence follows it right after."

	chunks := SplitChunks(text, 30)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "One sentence here.", chunks[0].Content)
}

func TestSplitChunksTibetanShadBoundary(t *testing.T) {
	text := "སངས་རྒྱས་ཆོས་དང་ཚོགས་ཀྱི་མཆོག་རྣམས་ལ། བྱང་ཆུབ་བར་དུ་བདག་ནི་སྐྱབས་སུ་མཆི།"

	chunks := SplitChunks(text, len([]rune(text))-5)

	require.Len(t, chunks, 2)
	assert.True(t, strings.HasSuffix(chunks[0].Content, "།"))
	assert.Equal(t, "བྱང་ཆུབ་བར་དུ་བདག་ནི་སྐྱབས་སུ་མཆི།", chunks[1].Content)
}

func TestSplitChunksHardCutWithoutWhitespace(t *testing.T) {
	text := strings.Repeat("a", 250)

	chunks := SplitChunks(text, 100)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk.Content)), 100)
	}
}

func TestSplitChunksPageNumbersAndContext(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("continuing words flow onward ", 60))

	chunks := SplitChunks(text, 200)

	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.Equal(t, i+1, chunk.PageNumber)
		assert.NotEmpty(t, chunk.Content)
		if i == 0 {
			assert.Empty(t, chunk.Context)
		} else {
			assert.NotEmpty(t, chunk.Context)
			// Context is the tail of the previous chunk, bounded in size.
			assert.LessOrEqual(t, len(strings.Fields(chunk.Context)), defaultContextWords)
			assert.True(t, strings.HasSuffix(chunks[i-1].Content, chunk.Context))
		}
	}
}

package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "word%d", i)
	}
	return b.String()
}

func TestChunkEmptyInput(t *testing.T) {
	assert.Empty(t, Chunk("", 500))
	assert.Empty(t, Chunk("   \t\n  ", 500))
}

func TestChunkSingleWindow(t *testing.T) {
	chunks := Chunk("one two three", 500)
	require.Len(t, chunks, 1)
	assert.Equal(t, "one two three", chunks[0])
}

func TestChunkExactWindows(t *testing.T) {
	chunks := Chunk(words(1000), 500)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Len(t, strings.Fields(c), 500)
	}
}

func TestChunkFinalWindowShorter(t *testing.T) {
	chunks := Chunk(words(1200), 500)
	require.Len(t, chunks, 3)
	assert.Len(t, strings.Fields(chunks[0]), 500)
	assert.Len(t, strings.Fields(chunks[1]), 500)
	assert.Len(t, strings.Fields(chunks[2]), 200)
}

// Rejoining the chunks with single spaces must reproduce the original word
// sequence, with chunk count ceil(words/size).
func TestChunkPreservesWordSequence(t *testing.T) {
	sizes := []int{1, 3, 7, 100, 500}
	counts := []int{1, 2, 99, 500, 501, 1200}
	for _, size := range sizes {
		for _, n := range counts {
			text := words(n)
			chunks := Chunk(text, size)

			wantChunks := (n + size - 1) / size
			assert.Len(t, chunks, wantChunks, "size=%d words=%d", size, n)

			rejoined := strings.Join(chunks, " ")
			assert.Equal(t, text, rejoined, "size=%d words=%d", size, n)
		}
	}
}

func TestChunkNormalizesWhitespace(t *testing.T) {
	chunks := Chunk("alpha\t\tbeta\n\ngamma   delta", 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, "alpha beta", chunks[0])
	assert.Equal(t, "gamma delta", chunks[1])
}

func TestChunkDefaultSize(t *testing.T) {
	chunks := Chunk(words(501), 0)
	require.Len(t, chunks, 2)
	assert.Len(t, strings.Fields(chunks[1]), 1)
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("  \n "))
	assert.Equal(t, 3, CountWords("a  b\tc"))
	assert.Equal(t, 1200, CountWords(words(1200)))
}

package chunker

import "strings"

const DefaultChunkSize = 500

// Chunk splits text on whitespace and groups the words into consecutive
// windows of size words each; the final window may be shorter. Empty input
// yields no chunks.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chunks := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		end := min(i+size, len(words))
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}

// CountWords reports the word count of the original text. Chunking normalizes
// whitespace, so metadata must be counted here rather than on the chunks.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

package evidence

import "strings"

// Truncate30Words implements the spec §4.7 30-word truncation rule, ported
// from evidence_aggregator.py's _truncate_to_30_words: plain rune/byte
// scanning (stdlib-only, matching the teacher's own chunker.go
// splitBySentences — no NLP tokenizer appears anywhere in the pack).
//
//  1. If the text has <=30 words, return it (trimmed) unchanged.
//  2. Otherwise take the first 30 words and find the last sentence
//     terminator (. ! ?) inside that window.
//  3. If that terminator lies after word 20, cut there; otherwise cut at
//     word 30 and append "...".
func Truncate30Words(text string) string {
	words := strings.Fields(text)
	if len(words) <= 30 {
		return strings.TrimSpace(text)
	}

	truncatedWords := words[:30]
	truncatedText := strings.Join(truncatedWords, " ")

	lastBoundary := -1
	for _, b := range []byte{'.', '!', '?'} {
		if pos := strings.LastIndexByte(truncatedText, b); pos > lastBoundary {
			lastBoundary = pos
		}
	}

	word20Prefix := strings.Join(words[:20], " ")
	if lastBoundary > len(word20Prefix) {
		return strings.TrimSpace(truncatedText[:lastBoundary+1])
	}
	return strings.TrimSpace(truncatedText) + "..."
}

// WordCount counts words the same way Truncate30Words does, so callers
// (notably the schema validator and gate G2/G7) agree on what "<=30 words"
// means.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

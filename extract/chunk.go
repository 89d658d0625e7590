package extract

import (
	"fmt"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/canon"
)

// ChunkPages slides a fixed-size, overlapping window over each RawPage's
// text, producing spec §4.2's Chunk sequence. Unlike the teacher's
// chunker.go (which splits hierarchically on paragraph/sentence boundaries
// to respect a token budget), this pipeline's chunk_size/overlap contract
// is a flat character window — so the window-advance and overlap-carry
// logic is adapted from chunker.go's splitContent/extractOverlap idiom but
// driven by rune counts instead of estimated tokens.
func ChunkPages(pages []RawPage, docID, orgID string, year, chunkSize, overlap int, sourceURL string) []esgevidence.Chunk {
	if chunkSize <= 0 {
		chunkSize = 1600
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var out []esgevidence.Chunk
	seq := 0
	for _, page := range pages {
		cleaned := ValidateAndClean(page.Text)
		if cleaned.Text == "" {
			continue
		}
		runes := []rune(cleaned.Text)
		step := chunkSize - overlap
		if step <= 0 {
			step = chunkSize
		}

		for start := 0; start < len(runes); start += step {
			end := start + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			text := string(runes[start:end])
			if text == "" {
				break
			}

			chunkID := fmt.Sprintf("%s_p%d_c%d", docID, page.Page, seq)
			quality := QualityScore(text)
			status := string(cleaned.Status)

			out = append(out, esgevidence.Chunk{
				ChunkID:    chunkID,
				DocID:      docID,
				OrgID:      orgID,
				Year:       year,
				Page:       page.Page,
				Text:       text,
				CharStart:  start,
				CharEnd:    end,
				SHA256:     canon.HashString(text),
				SourceURL:  sourceURL,
				Quality:    quality,
				CleanState: status,
			})
			seq++

			if end >= len(runes) {
				break
			}
		}
	}
	return out
}

// PageFromOffset estimates a 1-based page number from a character offset
// when the source format exposes no native pagination (spec §4.2 "Page
// inferred as floor(offset/page_char_estimate)+1").
func PageFromOffset(offset, pageCharEstimate int) int {
	if pageCharEstimate <= 0 {
		pageCharEstimate = 3000
	}
	return offset/pageCharEstimate + 1
}

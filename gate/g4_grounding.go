package gate

import (
	"fmt"
	"strings"

	"github.com/brunobiangulo/esgevidence"
)

// G4Grounding evaluates spec §4.8 G4: every Evidence item's (doc_id, page)
// must resolve to a Silver chunk whose text contains the evidence's
// extract (after whitespace normalization and NFC folding on both sides,
// case folding when foldCase is set), with matching page numbers when both
// are present. FAIL cites the first 80 normalized characters of the
// evidence and the first 200 of the candidate Silver chunk text.
func G4Grounding(docID string, items []esgevidence.Evidence, silverChunks []esgevidence.Chunk, foldCase bool) esgevidence.GateReport {
	byDoc := make(map[string][]esgevidence.Chunk)
	for _, c := range silverChunks {
		byDoc[c.DocID] = append(byDoc[c.DocID], c)
	}

	for _, e := range items {
		candidates := byDoc[e.DocID]
		if len(candidates) == 0 {
			return fail(docID, e, "", fmt.Sprintf("no silver chunks found for doc_id %q", e.DocID), foldCase)
		}

		normalizedExtract := normalizeForCompare(e.Extract30w, foldCase)
		var found bool
		var bestChunkText string
		for _, c := range candidates {
			if e.Page != nil && c.Page != *e.Page {
				continue
			}
			bestChunkText = c.Text
			normalizedChunk := normalizeForCompare(c.Text, foldCase)
			if normalizedExtract == "" || containsSubstring(normalizedChunk, normalizedExtract) {
				found = true
				break
			}
		}
		if !found {
			return fail(docID, e, bestChunkText, "evidence text not substring-present in matching silver chunk", foldCase)
		}
	}

	return report("G4_grounding", docID, "", esgevidence.VerdictPass, diagnostics("evidence_checked", len(items)))
}

func fail(docID string, e esgevidence.Evidence, chunkText, reason string, foldCase bool) esgevidence.GateReport {
	evNorm := normalizeForCompare(e.Extract30w, foldCase)
	chunkNorm := normalizeForCompare(chunkText, foldCase)
	diag := diagnostics(
		"evidence_id", e.EvidenceID,
		"reason", reason,
		"evidence_prefix", firstNChars(evNorm, 80),
		"silver_chunk_prefix", firstNChars(chunkNorm, 200),
	)
	if e.Page != nil {
		diag["evidence_page"] = *e.Page
	}
	return report("G4_grounding", docID, "", esgevidence.VerdictFail, diag)
}

func containsSubstring(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(haystack, needle)
}

func firstNChars(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}

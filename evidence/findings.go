package evidence

import "github.com/brunobiangulo/esgevidence"

// FromChunks derives Findings from a document's Silver chunks, tagging
// each with the acquisition provider as its source_id so source-priority
// sorting (sec_edgar < cdp < pdf/IR) has something to key on. This is the
// pipeline's default source-specific-extractor stand-in: spec §3 leaves
// Finding production to "source-specific extractors" without prescribing
// their internals, and each Chunk already carries doc_id/page/char-span/
// theme provenance, so treating a themed chunk as a Finding satisfies the
// Finding n-1 Chunk relationship (spec §3) without inventing a second NLP
// extraction pass this repository has no model for (spec §1 Non-goals).
func FromChunks(chunks []esgevidence.Chunk, providerSourceID string) []esgevidence.Finding {
	var findings []esgevidence.Finding
	for _, c := range chunks {
		if c.Theme == "" {
			continue
		}
		page := c.Page
		findings = append(findings, esgevidence.Finding{
			Text:      c.Text,
			Theme:     c.Theme,
			SourceID:  providerSourceID,
			DocID:     c.DocID,
			Page:      &page,
			CharStart: c.CharStart,
			CharEnd:   c.CharEnd,
			OrgID:     c.OrgID,
			Year:      c.Year,
		})
	}
	return findings
}

package gate

import (
	"fmt"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/extract"
)

// G5Alignment evaluates spec §4.8 G5, the optional alignment gate for
// paginated sources: for each quoted Evidence with a page number, it
// re-extracts that page directly from the source PDF and asserts the
// quote is present exactly, or with a fuzzy prefix match of at least
// fuzzyPrefixChars characters (SPEC_FULL §F.3, default 80, recorded on
// every report this gate produces). A missing PDF skips the document with
// a recorded reason rather than failing it; a present PDF with a failing
// quote fails the run.
func G5Alignment(docID, pdfPath string, items []esgevidence.Evidence, fuzzyPrefixChars int, foldCase bool) esgevidence.GateReport {
	paginated := make([]esgevidence.Evidence, 0, len(items))
	for _, e := range items {
		if e.Page != nil {
			paginated = append(paginated, e)
		}
	}
	if len(paginated) == 0 {
		return report("G5_alignment", docID, "", esgevidence.VerdictPass, diagnostics("paginated_evidence_count", 0))
	}
	if pdfPath == "" {
		return skipped("G5_alignment", docID, "", "no_pdf_available")
	}

	for _, e := range paginated {
		pageText, ok, err := extract.PageText(pdfPath, *e.Page)
		if err != nil {
			return skipped("G5_alignment", docID, "", fmt.Sprintf("pdf_read_error: %v", err))
		}
		if !ok {
			return skipped("G5_alignment", docID, "", fmt.Sprintf("page %d not present in pdf", *e.Page))
		}

		normPage := normalizeForCompare(pageText, foldCase)
		normQuote := normalizeForCompare(e.Extract30w, foldCase)

		exact := containsSubstring(normPage, normQuote)
		fuzzy := false
		if !exact && len(normQuote) >= fuzzyPrefixChars {
			fuzzy = containsSubstring(normPage, normQuote[:fuzzyPrefixChars])
		}

		if !exact && !fuzzy {
			return report("G5_alignment", docID, "", esgevidence.VerdictFail, diagnostics(
				"evidence_id", e.EvidenceID,
				"page", *e.Page,
				"fuzzy_prefix_chars", fuzzyPrefixChars,
				"reason", "quote not found on source page (exact or fuzzy prefix)",
			))
		}
	}

	return report("G5_alignment", docID, "", esgevidence.VerdictPass, diagnostics(
		"paginated_evidence_count", len(paginated),
		"fuzzy_prefix_chars", fuzzyPrefixChars,
	))
}

package gate

import (
	"sort"

	"github.com/brunobiangulo/esgevidence"
)

// G2EvidenceQuality evaluates spec §4.8 G2, the adaptive-span evidence
// quality gate, for one (doc, theme). Per SPEC_FULL §F.2 (resolving the
// open question), the per-page cap is applied *before* distinct_pages and
// page_span are computed: trimmed is the post-cap evidence set the caller
// should retain for grounding/export.
//
// Evidence items with no page number (non-paginated sources, e.g. SEC
// filings) are exempt from the cap and excluded from the distinct-pages/
// span computation, since spec §4.7 explicitly allows page to be null for
// those sources.
func G2EvidenceQuality(docID, theme string, totalPages int, items []esgevidence.Evidence, cfg esgevidence.Config) (esgevidence.GateReport, []esgevidence.Evidence) {
	trimmed := applyPerPageCap(items, cfg.PerPageCap)

	var pages []int
	for _, e := range trimmed {
		if e.Page != nil && *e.Page > 0 {
			pages = append(pages, *e.Page)
		}
	}

	distinctPages := distinctInts(pages)
	pageSpan := 0
	if len(pages) > 0 {
		min, max := pages[0], pages[0]
		for _, p := range pages {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
		}
		pageSpan = max - min
	}

	threshold := cfg.PageSpanThreshold(totalPages)

	distinctOK := len(distinctPages) >= cfg.DistinctPagesMin
	spanOK := pageSpan >= threshold

	diag := diagnostics(
		"distinct_pages", len(distinctPages),
		"page_span", pageSpan,
		"threshold", threshold,
		"distinct_pages_min", cfg.DistinctPagesMin,
		"total_pages", totalPages,
		"per_page_cap", cfg.PerPageCap,
	)
	if !distinctOK || !spanOK {
		var failing []string
		if !distinctOK {
			failing = append(failing, "distinct_pages")
		}
		if !spanOK {
			failing = append(failing, "page_span")
		}
		diag["failing_gates"] = failing
		return report("G2_evidence_quality", docID, theme, esgevidence.VerdictFail, diag), trimmed
	}
	return report("G2_evidence_quality", docID, theme, esgevidence.VerdictPass, diag), trimmed
}

// applyPerPageCap trims evidence so no more than cap items come from any
// single page, preserving retrieval rank order (the input slice's order)
// and dropping the lowest-ranked excess items from each over-represented
// page (spec §4.8 "excess items from the same page are trimmed, preserving
// retrieval rank order").
func applyPerPageCap(items []esgevidence.Evidence, cap int) []esgevidence.Evidence {
	if cap <= 0 {
		return items
	}
	perPage := make(map[int]int)
	out := make([]esgevidence.Evidence, 0, len(items))
	for _, e := range items {
		if e.Page == nil || *e.Page <= 0 {
			out = append(out, e)
			continue
		}
		if perPage[*e.Page] >= cap {
			continue
		}
		perPage[*e.Page]++
		out = append(out, e)
	}
	return out
}

func distinctInts(in []int) []int {
	seen := map[int]bool{}
	for _, v := range in {
		seen[v] = true
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Package evidence implements C7, the Evidence Aggregator: groups Findings
// by canonical theme code, selects the top sources by priority, truncates
// each to a <=30-word sentence-bounded quote, and attaches full provenance
// (spec §4.7). Ported from original_source/agents/scoring/evidence_aggregator.py's
// select_evidence/truncate/sort-by-priority pipeline, rendered in the
// teacher's sentence-splitting idiom (chunker/chunker.go).
package evidence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/canon"
)

// ThemeMapping is the fixed finding-theme -> rubric-theme-code table (spec
// §4.7 "this mapping is data and must not be implicit in code paths").
// Grounded on evidence_aggregator.py's theme_mapping dict.
var ThemeMapping = map[string]string{
	"TSP":                         "TSP",
	"Target Setting & Planning":   "TSP",
	"Climate":                     "TSP",
	"OSP":                         "OSP",
	"Operations":                  "OSP",
	"Governance":                  "OSP",
	"DM":                          "DM",
	"Data":                        "DM",
	"GHG":                         "GHG",
	"Emissions":                   "GHG",
	"RD":                          "RD",
	"Reporting":                   "RD",
	"Disclosure":                  "RD",
	"EI":                          "EI",
	"Energy":                      "EI",
	"RMM":                         "RMM",
	"Risk":                        "RMM",
}

// CanonicalTheme resolves a finding's raw theme label to a rubric theme
// code via ThemeMapping, passing unknown themes through unchanged (spec
// §4.7 "unknown themes pass through").
func CanonicalTheme(theme string) string {
	if code, ok := ThemeMapping[theme]; ok {
		return code
	}
	return theme
}

// sourcePriority orders findings within a theme (spec §4.7, §D "explicit
// sourcePriority table, not just a comment"): SEC EDGAR is most
// authoritative, CDP is standardized, PDF/IR is comprehensive but least
// authoritative. Unrecognized sources sort last.
func sourcePriority(sourceID string) int {
	switch sourceID {
	case "sec_edgar":
		return 1
	case "cdp", "cdp_climate_change":
		return 2
	case "pdf", "apple_sustainability_pdf":
		return 3
	default:
		return 99
	}
}

// SelectEvidence runs the C7 contract: group findings by canonical theme,
// sort each group by source priority, select the top minPerTheme (fewer
// only if fewer exist), and emit provenance-carrying Evidence records in
// theme-then-sequence order (spec §4.7).
func SelectEvidence(findings []esgevidence.Finding, minPerTheme int) []esgevidence.Evidence {
	if len(findings) == 0 {
		return nil
	}

	grouped := groupByTheme(findings)

	themes := make([]string, 0, len(grouped))
	for t := range grouped {
		themes = append(themes, t)
	}
	sort.Strings(themes)

	var out []esgevidence.Evidence
	for _, theme := range themes {
		group := grouped[theme]
		sort.SliceStable(group, func(i, j int) bool {
			return sourcePriority(group[i].SourceID) < sourcePriority(group[j].SourceID)
		})

		n := minPerTheme
		if len(group) < n {
			n = len(group)
		}
		for idx := 0; idx < n; idx++ {
			out = append(out, newEvidenceRecord(group[idx], theme, idx+1))
		}
	}
	return out
}

func groupByTheme(findings []esgevidence.Finding) map[string][]esgevidence.Finding {
	grouped := make(map[string][]esgevidence.Finding)
	for _, f := range findings {
		theme := f.Theme
		if theme == "" {
			theme = "Unknown"
		}
		code := CanonicalTheme(theme)
		grouped[code] = append(grouped[code], f)
	}
	return grouped
}

func newEvidenceRecord(f esgevidence.Finding, themeCode string, sequence int) esgevidence.Evidence {
	extract := Truncate30Words(f.Text)

	srcPrefix := f.SourceID
	if len(srcPrefix) > 3 {
		srcPrefix = srcPrefix[:3]
	}
	if srcPrefix == "" {
		srcPrefix = "unk"
	}
	evidenceID := fmt.Sprintf("ev-%s-%s-%03d", themeCode, srcPrefix, sequence)

	spanEnd := f.CharEnd
	if spanEnd == 0 {
		spanEnd = len(f.Text)
	}

	return esgevidence.Evidence{
		EvidenceID: evidenceID,
		DocID:      f.DocID,
		ThemeCode:  themeCode,
		Extract30w: extract,
		Page:       f.Page,
		SpanStart:  f.CharStart,
		SpanEnd:    spanEnd,
		SHA256:     canon.HashString(extract),
		OrgID:      f.OrgID,
		Year:       f.Year,
	}
}

// sourceOf infers an evidence record's originating provider from its
// doc_id, matching evidence_aggregator.py's aggregate_by_source heuristic
// (spec §D "additive reporting, not required by a spec invariant").
func sourceOf(docID string) string {
	switch {
	case strings.Contains(docID, "sec-edgar"), strings.Contains(docID, "sec_edgar"):
		return "sec_edgar"
	case strings.Contains(docID, "cdp"):
		return "cdp"
	case strings.Contains(docID, "pdf"), strings.Contains(docID, "apple"):
		return "pdf"
	default:
		return "unknown"
	}
}

// AggregateBySource groups an evidence set by inferred source for the
// Gold-Lite bundle's per-source audit view (spec §D supplemented feature;
// additive, never gates pass/fail).
func AggregateBySource(ev []esgevidence.Evidence) map[string][]esgevidence.Evidence {
	out := make(map[string][]esgevidence.Evidence)
	for _, e := range ev {
		src := sourceOf(e.DocID)
		out[src] = append(out[src], e)
	}
	return out
}

package esgevidence

import "strings"

// themeKeywords is the fixed, data-driven keyword table the pipeline
// orchestrator uses to assign one of the 7 rubric theme codes to a chunk
// of extracted text before Bronze partitioning, since neither the Bronze
// partition key (org_id, year, theme) nor any upstream stage otherwise
// produces a theme for a freshly extracted chunk. Mirrors the
// design-note idiom of evidence.ThemeMapping (spec §4.7 "this mapping is
// data and must not be implicit in code paths") applied one stage
// earlier, at Bronze-partition time rather than Evidence-selection time.
var themeKeywords = map[string][]string{
	"TSP": {"target", "science-based", "net-zero", "net zero", "2030", "2050", "commitment"},
	"OSP": {"governance", "board", "oversight", "committee", "policy", "management system"},
	"DM":  {"data quality", "data maturity", "data management", "data collection", "traceability"},
	"GHG": {"scope 1", "scope 2", "scope 3", "ghg", "greenhouse gas", "emissions", "co2", "carbon"},
	"RD":  {"disclosure", "reporting", "tcfd", "cdp", "sasb", "gri", "annual report"},
	"EI":  {"renewable", "energy efficiency", "energy consumption", "energy intensity", "kwh", "megawatt"},
	"RMM": {"risk management", "climate risk", "physical risk", "transition risk", "mitigation"},
}

// themeOrder fixes iteration order over themeKeywords so classification
// is deterministic when a chunk's text matches more than one theme's
// keywords: the first match in FixedThemeCodes order wins.
var themeOrder = append([]string(nil), FixedThemeCodes...)

// ClassifyTheme assigns the first matching rubric theme code to text by
// case-insensitive keyword search, in FixedThemeCodes order for
// determinism. Returns "unclassified" when no keyword matches.
func ClassifyTheme(text string) string {
	lower := strings.ToLower(text)
	for _, theme := range themeOrder {
		for _, kw := range themeKeywords[theme] {
			if strings.Contains(lower, kw) {
				return theme
			}
		}
	}
	return "unclassified"
}

package gate

import (
	"fmt"
	"sort"

	"github.com/brunobiangulo/esgevidence"
)

// G3Parity evaluates spec §4.8 G3, the dual parity gate: evidence_ids must
// be a subset of fused_topk_ids (coverage == 1.0), and the nonempty guard
// (topk must be nonempty unless evidence is itself empty) must hold.
// Ported from original_source/agents/scoring/parity_validator.py's
// validate(): set difference for violations, set intersection for
// coverage, vacuous-truth handling for the empty-evidence case.
func G3Parity(docID, theme string, evidenceIDs, fusedTopKIDs []string) esgevidence.GateReport {
	evidenceSet := toSet(evidenceIDs)
	topKSet := toSet(fusedTopKIDs)

	var violations []string
	for id := range evidenceSet {
		if !topKSet[id] {
			violations = append(violations, id)
		}
	}
	sort.Strings(violations)

	coverage := 1.0
	if len(evidenceSet) > 0 {
		var valid int
		for id := range evidenceSet {
			if topKSet[id] {
				valid++
			}
		}
		coverage = float64(valid) / float64(len(evidenceSet))
	}

	subsetOK := len(violations) == 0
	nonemptyGuardOK := len(topKSet) > 0 || len(evidenceSet) == 0

	diag := diagnostics(
		"coverage", coverage,
		"evidence_count", len(evidenceSet),
		"topk_count", len(topKSet),
		"fused_nonempty_or_no_evidence", nonemptyGuardOK,
		"violations", violations,
	)

	if subsetOK && nonemptyGuardOK {
		return report("G3_parity", docID, theme, esgevidence.VerdictPass, diag)
	}

	var reasons []string
	if !subsetOK {
		reasons = append(reasons, fmt.Sprintf("%d evidence id(s) not in fused top-k", len(violations)))
	}
	if !nonemptyGuardOK {
		reasons = append(reasons, "fused top-k is empty but evidence is nonempty")
	}
	diag["failure_reasons"] = reasons
	return report("G3_parity", docID, theme, esgevidence.VerdictFail, diag)
}

// G3ByTheme runs G3 once per theme in addition to the overall document-
// level check, for richer output_contract.json diagnostics (SPEC_FULL §D,
// parity_validator.py's validate_by_theme).
func G3ByTheme(docID string, evidenceByTheme map[string][]string, topKByTheme map[string][]string) []esgevidence.GateReport {
	themes := make([]string, 0, len(evidenceByTheme))
	for t := range evidenceByTheme {
		themes = append(themes, t)
	}
	sort.Strings(themes)

	reports := make([]esgevidence.GateReport, 0, len(themes))
	for _, theme := range themes {
		reports = append(reports, G3Parity(docID, theme, evidenceByTheme[theme], topKByTheme[theme]))
	}
	return reports
}

func toSet(ids []string) map[string]bool {
	s := make(map[string]bool, len(ids))
	for _, id := range ids {
		s[id] = true
	}
	return s
}

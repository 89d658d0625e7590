package gate

import (
	"fmt"

	"github.com/brunobiangulo/esgevidence"
)

// G7Rubric evaluates spec §4.8 G7, rubric compliance, for one document's
// ScoreSet against the Rubric it was scored under: every theme the rubric
// declares must appear in the output; each scored theme's stage must be
// numeric and within [0, len(stages)-1] (a nil stage is accepted only when
// it carries a nullification reason); each scored theme, nullified or not,
// must cite at least evidenceMinPerStageClaim Evidence items. Grounded on
// original_source/libs/scoring/evidence_gate.py's
// enforce_evidence_min_per_theme nullification-with-reason shape.
func G7Rubric(docID string, rubric esgevidence.Rubric, scores esgevidence.ScoreSet, evidenceMinPerStageClaim int) esgevidence.GateReport {
	scoredByTheme := make(map[string]esgevidence.ThemeScore, len(scores.Scores))
	for _, s := range scores.Scores {
		scoredByTheme[s.Theme] = s
	}

	var missingThemes []string
	var outOfRange []string
	var nonNumeric []string
	var insufficientEvidence []string

	maxStage := len(esgevidence.ExpectedStages) - 1

	for _, rt := range rubric.Themes {
		ts, ok := scoredByTheme[rt.Code]
		if !ok {
			missingThemes = append(missingThemes, rt.Code)
			continue
		}
		if len(ts.Evidence) < evidenceMinPerStageClaim {
			insufficientEvidence = append(insufficientEvidence, fmt.Sprintf("%s(%d<%d)", rt.Code, len(ts.Evidence), evidenceMinPerStageClaim))
		}
		if ts.Stage == nil {
			if ts.Reason == "" {
				nonNumeric = append(nonNumeric, rt.Code)
			}
			continue
		}
		if *ts.Stage < 0 || *ts.Stage > maxStage {
			outOfRange = append(outOfRange, fmt.Sprintf("%s=%d", rt.Code, *ts.Stage))
		}
	}

	ok := len(missingThemes) == 0 && len(outOfRange) == 0 && len(nonNumeric) == 0 && len(insufficientEvidence) == 0

	diag := diagnostics(
		"missing_themes", missingThemes,
		"out_of_range_stages", outOfRange,
		"non_numeric_stages", nonNumeric,
		"insufficient_evidence", insufficientEvidence,
		"evidence_min_per_stage_claim", evidenceMinPerStageClaim,
	)
	if ok {
		return report("G7_rubric", docID, "", esgevidence.VerdictPass, diag)
	}
	return report("G7_rubric", docID, "", esgevidence.VerdictFail, diag)
}

// NullifyInsufficientEvidence applies the evidence-first scoring guard
// (evidence_gate.py's enforce_evidence_min_per_theme) as a pure function:
// any theme score backed by fewer than evidenceMin Evidence items is
// replaced with a nil stage and a machine-readable reason, matching the
// original's f"insufficient_evidence({n}<{min})" format exactly (spec §8
// scenario 6).
func NullifyInsufficientEvidence(scores esgevidence.ScoreSet, evidenceMin int) esgevidence.ScoreSet {
	out := esgevidence.ScoreSet{DocID: scores.DocID, Scores: make([]esgevidence.ThemeScore, len(scores.Scores))}
	for i, s := range scores.Scores {
		if len(s.Evidence) < evidenceMin {
			out.Scores[i] = esgevidence.ThemeScore{
				Theme:    s.Theme,
				Stage:    nil,
				Reason:   fmt.Sprintf("insufficient_evidence(%d<%d)", len(s.Evidence), evidenceMin),
				Evidence: s.Evidence,
			}
			continue
		}
		out.Scores[i] = s
	}
	return out
}

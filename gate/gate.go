// Package gate implements C8, the Gate Engine: seven independent,
// composable checkers (G1-G7) each producing a GateReport, the heart of
// the pipeline's core (spec §4.8). Grounded on
// original_source/agents/scoring/parity_validator.py (G3) and
// original_source/libs/scoring/evidence_gate.py (G7); G1/G2/G4/G5/G6 have
// no direct original_source counterpart and are grounded on spec §4.8/§8
// directly, rendered in the teacher's typed-result idiom (errors.go).
package gate

import "github.com/brunobiangulo/esgevidence"

// diagnostics is a small constructor helper so every gate builds its
// map[string]interface{} the same way.
func diagnostics(kv ...interface{}) map[string]interface{} {
	d := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		d[key] = kv[i+1]
	}
	return d
}

func report(gateName, docID, theme string, verdict esgevidence.GateVerdict, diag map[string]interface{}) esgevidence.GateReport {
	return esgevidence.GateReport{
		Gate:        gateName,
		DocID:       docID,
		Theme:       theme,
		Verdict:     verdict,
		Diagnostics: diag,
	}
}

func skipped(gateName, docID, theme, reason string) esgevidence.GateReport {
	return esgevidence.GateReport{
		Gate:       gateName,
		DocID:      docID,
		Theme:      theme,
		Verdict:    esgevidence.VerdictSkipped,
		SkipReason: reason,
	}
}

// AllPass reports whether every non-SKIPPED report in reports is a PASS
// (spec §4.8 "A pipeline run is PASS iff all mandatory gates PASS for all
// non-skipped documents"; SKIPPED "does not contribute to aggregate PASS
// but is not counted as FAIL").
func AllPass(reports []esgevidence.GateReport) bool {
	for _, r := range reports {
		if r.Verdict == esgevidence.VerdictFail {
			return false
		}
	}
	return true
}

// FailingReports filters reports down to the FAIL verdicts, used to build
// matrix_contract.json's blocking-documents list (spec §7).
func FailingReports(reports []esgevidence.GateReport) []esgevidence.GateReport {
	var out []esgevidence.GateReport
	for _, r := range reports {
		if r.Verdict == esgevidence.VerdictFail {
			out = append(out, r)
		}
	}
	return out
}

package gate

import (
	"sort"

	"github.com/brunobiangulo/esgevidence"
)

// G1Determinism evaluates spec §4.8 G1: PASS iff the N run-hashes from the
// Determinism Harness collapse to a single distinct value. On FAIL,
// diagnostics list every distinct hash and the index of the first differing
// byte between the two lowest-sorted distinct hashes.
func G1Determinism(docID string, hashes []string) esgevidence.GateReport {
	distinct := distinctSorted(hashes)
	if len(distinct) <= 1 {
		return report("G1_determinism", docID, "", esgevidence.VerdictPass, diagnostics(
			"distinct_hashes", distinct,
			"run_count", len(hashes),
		))
	}

	diag := map[string]interface{}{
		"distinct_hashes": distinct,
		"run_count":       len(hashes),
	}
	if len(distinct) >= 2 {
		diag["first_diff_byte_index"] = firstDiffByteIndex(distinct[0], distinct[1])
	}
	return report("G1_determinism", docID, "", esgevidence.VerdictFail, diag)
}

func distinctSorted(hashes []string) []string {
	seen := map[string]bool{}
	for _, h := range hashes {
		seen[h] = true
	}
	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// firstDiffByteIndex returns the index of the first byte at which a and b
// differ; if one is a prefix of the other it returns the shorter length,
// and -1 if they are equal.
func firstDiffByteIndex(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}

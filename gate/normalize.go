package gate

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeForCompare applies Unicode NFC normalization (so visually
// identical text that differs only in combining-character decomposition
// compares equal) and collapses whitespace runs to a single space, per
// spec §4.8 G4 "after whitespace normalization on both sides". Case
// folding is applied only when foldCase is set (SPEC_FULL wires
// golang.org/x/text/unicode/norm here rather than the hand-rolled
// whitespace-only comparison a stdlib-only grounding gate would need).
func normalizeForCompare(s string, foldCase bool) string {
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	if foldCase {
		s = strings.ToLower(s)
	}
	return s
}

package evidence

import (
	"fmt"

	"github.com/brunobiangulo/esgevidence"
)

// ValidationError names which Evidence record and which invariant failed,
// mirroring evidence_aggregator.py's validate_evidence_schema boolean check
// but surfaced as a named, actionable error per spec §7 "typed, named
// failures".
type ValidationError struct {
	EvidenceID string
	Reason     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("evidence %q: %s", e.EvidenceID, e.Reason)
}

// ValidateSchema rejects any Evidence missing a required field, whose
// sha256 is not 64 hex chars, or whose word count exceeds 30 (spec §4.7
// "the aggregator exposes a validator"). Returns every violation found,
// not just the first.
func ValidateSchema(items []esgevidence.Evidence) []error {
	var errs []error
	for _, e := range items {
		id := e.EvidenceID
		if id == "" {
			errs = append(errs, &ValidationError{EvidenceID: "(missing)", Reason: "evidence_id is required"})
		}
		if e.DocID == "" {
			errs = append(errs, &ValidationError{EvidenceID: id, Reason: "doc_id is required"})
		}
		if e.ThemeCode == "" {
			errs = append(errs, &ValidationError{EvidenceID: id, Reason: "theme_code is required"})
		}
		if e.Extract30w == "" {
			errs = append(errs, &ValidationError{EvidenceID: id, Reason: "extract_30w is required"})
		}
		if len(e.SHA256) != 64 {
			errs = append(errs, &ValidationError{EvidenceID: id, Reason: fmt.Sprintf("sha256 must be 64 hex chars, got %d", len(e.SHA256))})
		}
		if wc := WordCount(e.Extract30w); wc > 30 {
			errs = append(errs, &ValidationError{EvidenceID: id, Reason: fmt.Sprintf("word_count %d exceeds 30", wc)})
		}
	}
	return errs
}

package esgevidence

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// LoadRubric decodes and structurally validates a rubric JSON document
// (spec §6 "Rubric (JSON)"). This is a thin encoding/json decode plus a
// handful of structural checks — stdlib only, documented in DESIGN.md,
// because the rubric is a fixed, versioned schema with no parsing
// ambiguity a third-party schema library would meaningfully improve.
//
// It enforces spec §6's "exactly 7 themes required (TSP, OSP, DM, GHG, RD,
// EI, RMM), each with exactly 5 stages (0-4)" invariant, resolving
// SPEC_FULL §F.1's open question: the stage-key convention is fixed at
// load time to "0".."4", and any rubric whose stage key set differs is
// rejected rather than silently coerced.
func LoadRubric(r io.Reader) (Rubric, error) {
	var rubric Rubric
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rubric); err != nil {
		return Rubric{}, NewPipelineError(KindConfigError, "rubric is not valid JSON", err)
	}
	if err := ValidateRubric(rubric); err != nil {
		return Rubric{}, err
	}
	return rubric, nil
}

// ValidateRubric checks the §6 theme/stage shape invariants against an
// already-decoded Rubric; LoadRubric calls it after decoding, and callers
// that build a Rubric programmatically can call it without re-serializing.
func ValidateRubric(rubric Rubric) error {
	if len(rubric.Themes) != len(FixedThemeCodes) {
		return NewPipelineError(KindConfigError,
			fmt.Sprintf("rubric must declare exactly %d themes, got %d", len(FixedThemeCodes), len(rubric.Themes)),
			ErrRubricInvalid)
	}

	want := make(map[string]bool, len(FixedThemeCodes))
	for _, c := range FixedThemeCodes {
		want[c] = true
	}
	seen := make(map[string]bool, len(rubric.Themes))
	for _, t := range rubric.Themes {
		if !want[t.Code] {
			return NewPipelineError(KindConfigError,
				fmt.Sprintf("rubric theme code %q is not one of the 7 fixed theme codes", t.Code),
				ErrRubricInvalid)
		}
		if seen[t.Code] {
			return NewPipelineError(KindConfigError,
				fmt.Sprintf("rubric theme code %q declared more than once", t.Code),
				ErrRubricInvalid)
		}
		seen[t.Code] = true

		if err := validateStages(t.Code, t.Stages); err != nil {
			return err
		}
	}
	return nil
}

func validateStages(themeCode string, stages map[string]RubricStage) error {
	if len(stages) != len(ExpectedStages) {
		return NewPipelineError(KindConfigError,
			fmt.Sprintf("theme %q must declare exactly %d stages, got %d", themeCode, len(ExpectedStages), len(stages)),
			ErrRubricInvalid)
	}
	for _, key := range ExpectedStages {
		if _, ok := stages[key]; !ok {
			return NewPipelineError(KindConfigError,
				fmt.Sprintf("theme %q is missing stage key %q (expected stage convention %v)", themeCode, key, ExpectedStages),
				ErrRubricInvalid)
		}
	}
	return nil
}

// ThemeCodesSorted returns the rubric's declared theme codes in sorted
// order, for callers that need a stable theme iteration order.
func ThemeCodesSorted(rubric Rubric) []string {
	codes := make([]string, 0, len(rubric.Themes))
	for _, t := range rubric.Themes {
		codes = append(codes, t.Code)
	}
	sort.Strings(codes)
	return codes
}

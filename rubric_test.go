package esgevidence

import (
	"strings"
	"testing"
)

func validRubricJSON() string {
	return `{
		"version": 1,
		"themes": [
			{"code":"TSP","name":"Target Setting","stages":{"0":{"descriptor":"none"},"1":{"descriptor":"a"},"2":{"descriptor":"b"},"3":{"descriptor":"c"},"4":{"descriptor":"d"}}},
			{"code":"OSP","name":"Governance","stages":{"0":{"descriptor":"none"},"1":{"descriptor":"a"},"2":{"descriptor":"b"},"3":{"descriptor":"c"},"4":{"descriptor":"d"}}},
			{"code":"DM","name":"Data","stages":{"0":{"descriptor":"none"},"1":{"descriptor":"a"},"2":{"descriptor":"b"},"3":{"descriptor":"c"},"4":{"descriptor":"d"}}},
			{"code":"GHG","name":"Emissions","stages":{"0":{"descriptor":"none"},"1":{"descriptor":"a"},"2":{"descriptor":"b"},"3":{"descriptor":"c"},"4":{"descriptor":"d"}}},
			{"code":"RD","name":"Disclosure","stages":{"0":{"descriptor":"none"},"1":{"descriptor":"a"},"2":{"descriptor":"b"},"3":{"descriptor":"c"},"4":{"descriptor":"d"}}},
			{"code":"EI","name":"Energy","stages":{"0":{"descriptor":"none"},"1":{"descriptor":"a"},"2":{"descriptor":"b"},"3":{"descriptor":"c"},"4":{"descriptor":"d"}}},
			{"code":"RMM","name":"Risk","stages":{"0":{"descriptor":"none"},"1":{"descriptor":"a"},"2":{"descriptor":"b"},"3":{"descriptor":"c"},"4":{"descriptor":"d"}}}
		],
		"scoring_rules": {"evidence_min_per_stage_claim": 2}
	}`
}

func TestLoadRubricValid(t *testing.T) {
	rubric, err := LoadRubric(strings.NewReader(validRubricJSON()))
	if err != nil {
		t.Fatalf("LoadRubric: %v", err)
	}
	if len(rubric.Themes) != 7 {
		t.Fatalf("expected 7 themes, got %d", len(rubric.Themes))
	}
	if rubric.ScoringRules.EvidenceMinPerStageClaim != 2 {
		t.Fatalf("expected evidence_min_per_stage_claim=2, got %d", rubric.ScoringRules.EvidenceMinPerStageClaim)
	}
}

func TestLoadRubricRejectsWrongThemeCount(t *testing.T) {
	bad := `{"version":1,"themes":[{"code":"TSP","name":"x","stages":{"0":{},"1":{},"2":{},"3":{},"4":{}}}],"scoring_rules":{"evidence_min_per_stage_claim":1}}`
	if _, err := LoadRubric(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected error for wrong theme count")
	}
}

func TestLoadRubricRejectsMissingStageKey(t *testing.T) {
	bad := `{"version":1,"themes":[` +
		`{"code":"TSP","name":"x","stages":{"0":{},"1":{},"2":{},"3":{}}},` +
		`{"code":"OSP","name":"x","stages":{"0":{},"1":{},"2":{},"3":{},"4":{}}},` +
		`{"code":"DM","name":"x","stages":{"0":{},"1":{},"2":{},"3":{},"4":{}}},` +
		`{"code":"GHG","name":"x","stages":{"0":{},"1":{},"2":{},"3":{},"4":{}}},` +
		`{"code":"RD","name":"x","stages":{"0":{},"1":{},"2":{},"3":{},"4":{}}},` +
		`{"code":"EI","name":"x","stages":{"0":{},"1":{},"2":{},"3":{},"4":{}}},` +
		`{"code":"RMM","name":"x","stages":{"0":{},"1":{},"2":{},"3":{},"4":{}}}` +
		`],"scoring_rules":{"evidence_min_per_stage_claim":1}}`
	if _, err := LoadRubric(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected error for theme missing a stage key")
	}
}

func TestLoadRubricRejectsUnknownThemeCode(t *testing.T) {
	bad := strings.Replace(validRubricJSON(), `"code":"RMM"`, `"code":"BOGUS"`, 1)
	if _, err := LoadRubric(strings.NewReader(bad)); err == nil {
		t.Fatalf("expected error for unknown theme code")
	}
}

func TestThemeCodesSortedIsSorted(t *testing.T) {
	rubric, err := LoadRubric(strings.NewReader(validRubricJSON()))
	if err != nil {
		t.Fatalf("LoadRubric: %v", err)
	}
	codes := ThemeCodesSorted(rubric)
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}

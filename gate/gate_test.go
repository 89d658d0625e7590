package gate

import (
	"testing"

	"github.com/brunobiangulo/esgevidence"
)

func intPtr(v int) *int { return &v }

func TestG1DeterminismPassOnSingleHash(t *testing.T) {
	r := G1Determinism("doc1", []string{"abc", "abc", "abc"})
	if r.Verdict != esgevidence.VerdictPass {
		t.Fatalf("expected PASS, got %s: %+v", r.Verdict, r.Diagnostics)
	}
}

func TestG1DeterminismFailOnDivergentHash(t *testing.T) {
	r := G1Determinism("doc1", []string{"abc", "abd", "abc"})
	if r.Verdict != esgevidence.VerdictFail {
		t.Fatalf("expected FAIL, got %s", r.Verdict)
	}
	if r.Diagnostics["first_diff_byte_index"] != 2 {
		t.Fatalf("expected first diff at byte 2, got %v", r.Diagnostics["first_diff_byte_index"])
	}
}

func TestG2AdaptiveSpanShortDocPass(t *testing.T) {
	// spec §8 scenario 2: 8-page PDF, evidence pages {2, 4, 7} -> PASS
	// (distinct=3, span=5, threshold=3 for <10-page docs).
	cfg := esgevidence.DefaultConfig()
	items := []esgevidence.Evidence{
		{EvidenceID: "e1", Page: intPtr(2)},
		{EvidenceID: "e2", Page: intPtr(4)},
		{EvidenceID: "e3", Page: intPtr(7)},
	}
	r, _ := G2EvidenceQuality("doc1", "TSP", 8, items, cfg)
	if r.Verdict != esgevidence.VerdictPass {
		t.Fatalf("expected PASS, got %s: %+v", r.Verdict, r.Diagnostics)
	}
	if r.Diagnostics["page_span"] != 5 {
		t.Fatalf("expected span=5, got %v", r.Diagnostics["page_span"])
	}
}

func TestG2AdaptiveSpanShortDocFail(t *testing.T) {
	// same scenario, pages changed to {2,3,4}: span=2 < threshold=3 -> FAIL.
	cfg := esgevidence.DefaultConfig()
	items := []esgevidence.Evidence{
		{EvidenceID: "e1", Page: intPtr(2)},
		{EvidenceID: "e2", Page: intPtr(3)},
		{EvidenceID: "e3", Page: intPtr(4)},
	}
	r, _ := G2EvidenceQuality("doc1", "TSP", 8, items, cfg)
	if r.Verdict != esgevidence.VerdictFail {
		t.Fatalf("expected FAIL, got %s", r.Verdict)
	}
	if r.Diagnostics["page_span"] != 2 {
		t.Fatalf("expected span=2, got %v", r.Diagnostics["page_span"])
	}
}

func TestG2BoundaryTenPagesUsesLongThreshold(t *testing.T) {
	cfg := esgevidence.DefaultConfig()
	if got := cfg.PageSpanThreshold(10); got != cfg.PageSpanThresholdLong {
		t.Fatalf("expected long threshold at exactly 10 pages, got %d", got)
	}
	if got := cfg.PageSpanThreshold(9); got != cfg.PageSpanThresholdShort {
		t.Fatalf("expected short threshold below 10 pages, got %d", got)
	}
}

func TestG2PerPageCapTrimsExcess(t *testing.T) {
	cfg := esgevidence.DefaultConfig()
	var items []esgevidence.Evidence
	for i := 0; i < 7; i++ {
		items = append(items, esgevidence.Evidence{EvidenceID: "e", Page: intPtr(1)})
	}
	_, trimmed := G2EvidenceQuality("doc1", "TSP", 20, items, cfg)
	if len(trimmed) != cfg.PerPageCap {
		t.Fatalf("expected trim to per-page cap %d, got %d", cfg.PerPageCap, len(trimmed))
	}
}

func TestG3ParityNonemptyGuardFail(t *testing.T) {
	// spec §8 scenario 3: evidence_ids=[a,b], fused_topk_ids=[] -> FAIL.
	r := G3Parity("doc1", "TSP", []string{"a", "b"}, nil)
	if r.Verdict != esgevidence.VerdictFail {
		t.Fatalf("expected FAIL, got %s: %+v", r.Verdict, r.Diagnostics)
	}
	if r.Diagnostics["fused_nonempty_or_no_evidence"] != false {
		t.Fatalf("expected nonempty guard false, got %v", r.Diagnostics["fused_nonempty_or_no_evidence"])
	}
}

func TestG3ParityVacuousPass(t *testing.T) {
	r := G3Parity("doc1", "TSP", nil, nil)
	if r.Verdict != esgevidence.VerdictPass {
		t.Fatalf("expected vacuous PASS, got %s", r.Verdict)
	}
}

func TestG3ParitySubsetPass(t *testing.T) {
	r := G3Parity("doc1", "TSP", []string{"a"}, []string{"a", "b", "c"})
	if r.Verdict != esgevidence.VerdictPass {
		t.Fatalf("expected PASS, got %s: %+v", r.Verdict, r.Diagnostics)
	}
}

func TestG4GroundingFailsOnMismatch(t *testing.T) {
	chunks := []esgevidence.Chunk{
		{ChunkID: "c1", DocID: "doc1", Page: 1, Text: "the company reduced emissions by ten percent"},
	}
	ev := []esgevidence.Evidence{
		{EvidenceID: "e1", DocID: "doc1", Page: intPtr(1), Extract30w: "the company reduced emissions by twenty percent"},
	}
	r := G4Grounding("doc1", ev, chunks, false)
	if r.Verdict != esgevidence.VerdictFail {
		t.Fatalf("expected FAIL, got %s", r.Verdict)
	}
}

func TestG4GroundingPassesOnSubstringMatch(t *testing.T) {
	chunks := []esgevidence.Chunk{
		{ChunkID: "c1", DocID: "doc1", Page: 1, Text: "The company reduced emissions by ten percent in 2023."},
	}
	ev := []esgevidence.Evidence{
		{EvidenceID: "e1", DocID: "doc1", Page: intPtr(1), Extract30w: "reduced emissions by ten percent"},
	}
	r := G4Grounding("doc1", ev, chunks, true)
	if r.Verdict != esgevidence.VerdictPass {
		t.Fatalf("expected PASS, got %s: %+v", r.Verdict, r.Diagnostics)
	}
}

func TestG6AuthenticityPassesOnCleanTree(t *testing.T) {
	dir := t.TempDir()
	r := G6Authenticity("doc1", dir)
	if r.Verdict != esgevidence.VerdictPass {
		t.Fatalf("expected PASS on empty tree, got %s: %+v", r.Verdict, r.Diagnostics)
	}
}

func TestEnsureWithinWorkspaceRejectsEscape(t *testing.T) {
	root := t.TempDir()
	if err := EnsureWithinWorkspace(root, root+"/../escaped"); err == nil {
		t.Fatalf("expected path-escape rejection")
	}
}

func TestG7RubricFlagsInsufficientEvidence(t *testing.T) {
	// spec §8 scenario 6: evidence_min_per_stage_claim=2, TSP has 1 evidence.
	rubric := esgevidence.Rubric{
		Themes: []esgevidence.RubricTheme{{Code: "TSP", Name: "Target Setting"}},
	}
	scores := esgevidence.ScoreSet{
		DocID: "doc1",
		Scores: []esgevidence.ThemeScore{
			{Theme: "TSP", Stage: intPtr(2), Evidence: []string{"ev-TSP-sec-001"}},
		},
	}
	r := G7Rubric("doc1", rubric, scores, 2)
	if r.Verdict != esgevidence.VerdictFail {
		t.Fatalf("expected FAIL, got %s: %+v", r.Verdict, r.Diagnostics)
	}
}

func TestNullifyInsufficientEvidenceReasonFormat(t *testing.T) {
	scores := esgevidence.ScoreSet{
		DocID: "doc1",
		Scores: []esgevidence.ThemeScore{
			{Theme: "TSP", Stage: intPtr(3), Evidence: []string{"ev-1"}},
		},
	}
	out := NullifyInsufficientEvidence(scores, 2)
	if out.Scores[0].Stage != nil {
		t.Fatalf("expected nullified stage")
	}
	if out.Scores[0].Reason != "insufficient_evidence(1<2)" {
		t.Fatalf("unexpected reason: %q", out.Scores[0].Reason)
	}
}

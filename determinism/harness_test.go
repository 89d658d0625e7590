package determinism

import (
	"errors"
	"testing"
)

func TestRunNTimesAllIdentical(t *testing.T) {
	base := t.TempDir()
	report, err := RunNTimes(func(runDir string) (interface{}, error) {
		return map[string]interface{}{"doc_id": "acme_2024", "status": "ok"}, nil
	}, Options{N: 3, Seed: 42, HashSeed: 0, BaseDir: base})
	if err != nil {
		t.Fatalf("RunNTimes: %v", err)
	}
	if !report.Identical {
		t.Fatalf("expected identical hashes, got %v", report.Hashes)
	}
	if len(report.Hashes) != 3 {
		t.Fatalf("expected 3 hashes, got %d", len(report.Hashes))
	}
}

func TestRunNTimesDivergentOutput(t *testing.T) {
	base := t.TempDir()
	call := 0
	report, err := RunNTimes(func(runDir string) (interface{}, error) {
		call++
		return map[string]interface{}{"run": call}, nil
	}, Options{N: 3, BaseDir: base})
	if err != nil {
		t.Fatalf("RunNTimes: %v", err)
	}
	if report.Identical {
		t.Fatalf("expected non-identical hashes across divergent runs")
	}
	if len(report.Hashes) != 3 {
		t.Fatalf("expected 3 hashes, got %d", len(report.Hashes))
	}
}

func TestRunNTimesDefaultsToThreeRuns(t *testing.T) {
	base := t.TempDir()
	n := 0
	report, err := RunNTimes(func(runDir string) (interface{}, error) {
		n++
		return "x", nil
	}, Options{BaseDir: base})
	if err != nil {
		t.Fatalf("RunNTimes: %v", err)
	}
	if n != 3 || report.N != 3 {
		t.Fatalf("expected default N=3, ran %d times, report.N=%d", n, report.N)
	}
}

func TestRunNTimesPropagatesRunError(t *testing.T) {
	base := t.TempDir()
	wantErr := errors.New("boom")
	_, err := RunNTimes(func(runDir string) (interface{}, error) {
		return nil, wantErr
	}, Options{N: 2, BaseDir: base})
	if err == nil {
		t.Fatalf("expected error to propagate")
	}
}

func TestMinReproducibleDiffPointer(t *testing.T) {
	idx := MinReproducibleDiffPointer([]string{"abcdef", "abcXef"})
	if idx != 3 {
		t.Fatalf("expected diff at index 3, got %d", idx)
	}
	if got := MinReproducibleDiffPointer([]string{"same", "same"}); got != -1 {
		t.Fatalf("expected -1 for identical hashes, got %d", got)
	}
}

// Package determinism implements C10, the Determinism Harness: runs the
// Silver->Gold portion of the pipeline N times under pinned seeds and
// timestamps into isolated sibling output directories, then canonical-JSON
// hashes each run's output set and verifies all N hashes are identical
// (spec §4.10). Grounded on original_source/libs/utils/determinism.py's
// seed/hash-seed environment contract; the "run N times into isolated
// dirs, hash, compare" control flow has no original_source counterpart
// and is grounded directly on spec §4.10/§5 ("Multi-run parallelism... is
// permitted only across isolated output directories").
package determinism

import (
	"fmt"
	"path/filepath"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/canon"
)

// RunFunc executes one full pipeline run into runDir and returns whatever
// output value should be hashed for comparison (e.g. the union of every
// artifact this run produced). It must not mutate any state shared across
// runs — the Harness's only concurrency guarantee is isolation by runDir.
type RunFunc func(runDir string) (interface{}, error)

// Options configures one Harness invocation.
type Options struct {
	N            int
	Seed         int
	HashSeed     int
	BaseDir      string // parent directory under which run_1..run_N sibling dirs are created
}

// RunNTimes runs fn Options.N times (default 3 if N <= 0), once per
// sibling directory baseDir/run_{i}, and returns a DeterminismReport
// comparing the canonical-JSON SHA-256 hash of each run's returned output
// (spec §4.10 "Compare: canonical-JSON-serializes each run's output set
// and SHA-256-hashes; reports identical iff all N hashes equal").
func RunNTimes(fn RunFunc, opts Options) (esgevidence.DeterminismReport, error) {
	n := opts.N
	if n <= 0 {
		n = 3
	}

	hashes := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		runDir := filepath.Join(opts.BaseDir, fmt.Sprintf("run_%d", i))
		output, err := fn(runDir)
		if err != nil {
			return esgevidence.DeterminismReport{}, fmt.Errorf("determinism: run %d: %w", i, err)
		}
		hash, err := canon.Hash(output)
		if err != nil {
			return esgevidence.DeterminismReport{}, fmt.Errorf("determinism: hashing run %d output: %w", i, err)
		}
		hashes = append(hashes, hash)
	}

	return esgevidence.DeterminismReport{
		Hashes:    hashes,
		Identical: allEqual(hashes),
		Seed:      opts.Seed,
		HashSeed:  opts.HashSeed,
		N:         n,
	}, nil
}

func allEqual(hashes []string) bool {
	if len(hashes) == 0 {
		return true
	}
	first := hashes[0]
	for _, h := range hashes[1:] {
		if h != first {
			return false
		}
	}
	return true
}

// MinReproducibleDiffPointer returns a human-readable pointer to the first
// byte at which two non-identical run hashes diverge, for the
// DeterminismReport's "minimum-reproducible diff pointer" diagnostic (spec
// §4.10 "Failure"). Returns -1 if fewer than two distinct hashes exist.
func MinReproducibleDiffPointer(hashes []string) int {
	distinct := make(map[string]bool)
	var first, second string
	for _, h := range hashes {
		if !distinct[h] {
			distinct[h] = true
			if first == "" {
				first = h
			} else if second == "" {
				second = h
			}
		}
	}
	if first == "" || second == "" {
		return -1
	}
	n := len(first)
	if len(second) < n {
		n = len(second)
	}
	for i := 0; i < n; i++ {
		if first[i] != second[i] {
			return i
		}
	}
	return n
}

package gate

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/brunobiangulo/esgevidence"
)

// authenticity anti-patterns (spec §4.8 G6 "code-scan taxonomy"): each
// entry names the regex and the human-readable rule it enforces. This is
// data, not a switch statement, so adding a rule never touches control flow.
var authenticityPatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"unseeded_rng", regexp.MustCompile(`rand\.New\(rand\.NewSource\(time\.Now\(\)`)},
	{"unseeded_rng_global", regexp.MustCompile(`math/rand/v2"`)},
	{"silent_swallow", regexp.MustCompile(`(?m)^\s*_\s*=\s*err\b`)},
	{"empty_catch", regexp.MustCompile(`(?s)if err != nil \{\s*\}`)},
}

// Violation names one authenticity-rule hit at a specific file:line.
type Violation struct {
	Rule string
	Path string
	Line int
}

// ScanSourceTree walks root for .go files (skipping vendor/ and hidden
// dirs) and flags every authenticity-pattern match (spec §4.8 G6). It is a
// static lint pass, not a runtime check: it is meant to run once over the
// repository's production source, not per pipeline run.
func ScanSourceTree(root string) ([]Violation, error) {
	var violations []Violation
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == "vendor" || base == "_examples" || strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		content := string(data)
		for _, pat := range authenticityPatterns {
			for _, loc := range pat.re.FindAllStringIndex(content, -1) {
				violations = append(violations, Violation{
					Rule: pat.name,
					Path: path,
					Line: 1 + strings.Count(content[:loc[0]], "\n"),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return violations, nil
}

// EnsureWithinWorkspace enforces the "no path escape outside the workspace
// root" authenticity rule at runtime: every artifact write site can call
// this before touching disk. Returns an error when candidate, once
// resolved against root, would land outside root.
func EnsureWithinWorkspace(root, candidate string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absCandidate, err := filepath.Abs(candidate)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(absRoot, absCandidate)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return esgevidence.NewPipelineError(esgevidence.KindAuthenticityViolation,
			"path escapes workspace root: "+candidate, esgevidence.ErrAuthenticityViolation)
	}
	return nil
}

// G6Authenticity runs the static scan over workspaceRoot and reports PASS
// iff no violations were found.
func G6Authenticity(docID, workspaceRoot string) esgevidence.GateReport {
	violations, err := ScanSourceTree(workspaceRoot)
	if err != nil {
		return report("G6_authenticity", docID, "", esgevidence.VerdictFail, diagnostics(
			"error", err.Error(),
		))
	}
	if len(violations) == 0 {
		return report("G6_authenticity", docID, "", esgevidence.VerdictPass, diagnostics("violations", 0))
	}

	formatted := make([]string, len(violations))
	for i, v := range violations {
		formatted[i] = v.Rule + " at " + v.Path
	}
	return report("G6_authenticity", docID, "", esgevidence.VerdictFail, diagnostics(
		"violations", formatted,
		"violation_count", len(violations),
	))
}

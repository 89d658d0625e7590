// Package export implements C9, the Gold-Lite Exporter: produces a
// deployable bundle (scores.jsonl, evidence_bundle.json, summary.csv,
// index.html, SUCCESS_PIN.json) from the Silver tables, Evidence set, and
// GateReport set (spec §4.9). Grounded on
// original_source/scripts/refresh_gold_lite.py's aggregate-and-flatten
// shape, rendered in the teacher's JSON output-struct idiom
// (goreason.go's Answer/Source structs).
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/evidence"
)

// ScoresLine is one scores.jsonl record (spec §4.9).
type ScoresLine struct {
	Company string                  `json:"company"`
	Year    int                     `json:"year"`
	DocID   string                  `json:"doc_id"`
	Scores  []esgevidence.ThemeScore `json:"scores"`
}

// EvidenceAudit is one evidence_bundle.json entry: a single Evidence item
// plus its inferred source, the "_source" field spec §4.9 requires.
type EvidenceAudit struct {
	esgevidence.Evidence
	Source string `json:"_source"`
}

// SuccessPin is SUCCESS_PIN.json, the canonical "did this release
// reproduce" artifact (spec §4.9).
type SuccessPin struct {
	Seed          int                          `json:"seed"`
	HashSeed      int                          `json:"hash_seed"`
	Pins          map[string]esgevidence.DeterminismReport `json:"determinism_pins"`
	AllIdentical  bool                         `json:"all_identical"`
	GeneratedAt   time.Time                    `json:"generated_at"`
}

// BuildScores aggregates one ScoresLine per document from its ScoreSet.
func BuildScores(company string, year int, docID string, scores esgevidence.ScoreSet) ScoresLine {
	return ScoresLine{Company: company, Year: year, DocID: docID, Scores: scores.Scores}
}

// WriteScoresJSONL writes one JSON object per line, sorted by doc_id for
// determinism (spec §8 "rebuilding Gold-Lite... yields byte-identical
// scores.jsonl").
func WriteScoresJSONL(w io.Writer, lines []ScoresLine) error {
	sorted := make([]ScoresLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DocID < sorted[j].DocID })

	enc := jsonlEncoder(w)
	for _, line := range sorted {
		if err := enc(line); err != nil {
			return fmt.Errorf("export: writing scores.jsonl line for %s: %w", line.DocID, err)
		}
	}
	return nil
}

// BuildEvidenceBundle concatenates every document's evidence into one
// audit list tagged with its inferred source (spec §4.9
// "evidence_bundle.json... concatenation of all per-document evidence
// audits with a _source field").
func BuildEvidenceBundle(ev []esgevidence.Evidence) []EvidenceAudit {
	bySource := evidence.AggregateBySource(ev)
	sources := make([]string, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	var out []EvidenceAudit
	for _, src := range sources {
		items := bySource[src]
		sort.Slice(items, func(i, j int) bool { return items[i].EvidenceID < items[j].EvidenceID })
		for _, e := range items {
			out = append(out, EvidenceAudit{Evidence: e, Source: src})
		}
	}
	return out
}

// WriteEvidenceBundleJSON writes the evidence bundle as one canonical JSON
// array.
func WriteEvidenceBundleJSON(w io.Writer, bundle []EvidenceAudit) error {
	return writeJSON(w, bundle)
}

// summaryColumns is the stable column order for summary.csv (spec §4.9
// "stable column order").
var summaryColumns = []string{"company", "year", "doc_id", "theme", "stage", "evidence_count", "reason"}

// WriteSummaryCSV flattens every document's ScoresLine into one row per
// (doc, theme), in the fixed column order, sorted by (doc_id, theme) for
// determinism.
func WriteSummaryCSV(w io.Writer, lines []ScoresLine) error {
	type row struct {
		company, docID, theme, reason string
		year, evidenceCount           int
		stage                         *int
	}
	var rows []row
	for _, l := range lines {
		for _, s := range l.Scores {
			rows = append(rows, row{
				company:       l.Company,
				docID:         l.DocID,
				year:          l.Year,
				theme:         s.Theme,
				stage:         s.Stage,
				reason:        s.Reason,
				evidenceCount: len(s.Evidence),
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].docID != rows[j].docID {
			return rows[i].docID < rows[j].docID
		}
		return rows[i].theme < rows[j].theme
	})

	cw := csv.NewWriter(w)
	if err := cw.Write(summaryColumns); err != nil {
		return fmt.Errorf("export: writing summary.csv header: %w", err)
	}
	for _, r := range rows {
		stageStr := ""
		if r.stage != nil {
			stageStr = strconv.Itoa(*r.stage)
		}
		rec := []string{r.company, strconv.Itoa(r.year), r.docID, r.theme, stageStr, strconv.Itoa(r.evidenceCount), r.reason}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: writing summary.csv row for %s: %w", r.docID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// BuildSuccessPin assembles the release reproducibility pin (spec §4.9).
func BuildSuccessPin(seed, hashSeed int, pins map[string]esgevidence.DeterminismReport, now time.Time) SuccessPin {
	allIdentical := true
	for _, p := range pins {
		if !p.Identical {
			allIdentical = false
			break
		}
	}
	return SuccessPin{Seed: seed, HashSeed: hashSeed, Pins: pins, AllIdentical: allIdentical, GeneratedAt: now}
}

// WriteSuccessPinJSON writes the SUCCESS_PIN.json artifact.
func WriteSuccessPinJSON(w io.Writer, pin SuccessPin) error {
	return writeJSON(w, pin)
}

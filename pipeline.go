// Pipeline wires C1 (Acquirer) through C9 (Gold-Lite Exporter) into one
// per-document orchestration, plus the cross-document matrix rollup (spec
// §5 "Pipeline Orchestration", §7). Each stage is still a standalone
// package with its own tests; this file only sequences their already-typed
// contracts — no stage's internals are duplicated here.
package esgevidence

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/brunobiangulo/esgevidence/acquire"
	"github.com/brunobiangulo/esgevidence/bronze"
	"github.com/brunobiangulo/esgevidence/determinism"
	"github.com/brunobiangulo/esgevidence/evidence"
	"github.com/brunobiangulo/esgevidence/extract"
	"github.com/brunobiangulo/esgevidence/gate"
	"github.com/brunobiangulo/esgevidence/index"
	"github.com/brunobiangulo/esgevidence/retrieve"
	"github.com/brunobiangulo/esgevidence/silver"
)

// Dirs names every output root the orchestrator writes under, matching
// spec §6's outbound artifact path convention one directory per tier.
type Dirs struct {
	RawDir      string // acquired source documents (C1)
	BronzeDir   string // bronze/org_id={}/year={}/theme={} partitions (C3)
	SilverDir   string // org_id={}/year={} consolidated tables (C4)
	IndexDBPath string // sqlite index database (C5)
	MatrixDir   string // artifacts/matrix/{doc_id}/output_contract.json (§6)
}

// Pipeline is the long-lived orchestrator: one Pipeline serves every
// document in an org catalog run, holding the provider/parser registries
// and index connection each document's processing shares.
type Pipeline struct {
	cfg        Config
	dirs       Dirs
	acquireReg *acquire.Registry
	extractReg *extract.Registry
	scorer     Scorer
}

// NewPipeline constructs a Pipeline. scorer is the out-of-scope Scorer
// interface boundary (spec §1, §6, E): callers supply the actual
// classification model; this repository never implements one.
func NewPipeline(cfg Config, dirs Dirs, client *http.Client, scorer Scorer) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		dirs:       dirs,
		acquireReg: acquire.NewRegistry(cfg, client),
		extractReg: extract.NewRegistry(),
		scorer:     scorer,
	}
}

// ProcessDocument runs C1-C9 once for a single org-catalog entry against
// rubric, returning its OutputContract. It does not evaluate gate G1
// (determinism), which is inherently a multi-run property; see
// RunDeterminismHarness.
func (p *Pipeline) ProcessDocument(ctx context.Context, entry OrgEntry, rubric Rubric) (OutputContract, error) {
	now := p.cfg.Now()
	docID := entry.DocID()
	runStart := time.Now()

	// C1: Acquirer.
	url := entry.SourceURL
	if url == "" {
		url = entry.PDFPath
	}
	destDir := filepath.Join(p.dirs.RawDir, entry.OrgID, fmt.Sprintf("%d", entry.Year))
	slog.Info("pipeline: acquiring document", "doc_id", docID, "provider", entry.Provider)
	acquireStart := time.Now()
	rawDoc, err := acquire.Acquire(ctx, p.acquireReg, entry.OrgID, entry.Year, string(entry.Provider), url, destDir)
	if err != nil {
		slog.Warn("pipeline: acquisition failed", "doc_id", docID, "provider", entry.Provider, "error", err)
		return OutputContract{}, fmt.Errorf("pipeline: acquiring %s: %w", docID, err)
	}
	slog.Info("pipeline: acquisition complete",
		"doc_id", docID, "sha256", rawDoc.SHA256, "size", rawDoc.Size,
		"elapsed", time.Since(acquireStart).Round(time.Millisecond))

	// C2: Extractor.
	slog.Info("pipeline: extracting chunks", "doc_id", docID, "path", rawDoc.LocalPath)
	extractStart := time.Now()
	chunks, err := extract.Extract(ctx, p.extractReg, rawDoc.LocalPath, docID, entry.OrgID, entry.Year, p.cfg.ChunkSize, p.cfg.Overlap, rawDoc.SourceURL)
	if err != nil {
		slog.Warn("pipeline: extraction failed", "doc_id", docID, "error", err)
		return OutputContract{}, fmt.Errorf("pipeline: extracting %s: %w", docID, err)
	}
	for i := range chunks {
		if chunks[i].Theme == "" {
			chunks[i].Theme = ClassifyTheme(chunks[i].Text)
		}
	}
	slog.Info("pipeline: extraction complete",
		"doc_id", docID, "chunks", len(chunks),
		"elapsed", time.Since(extractStart).Round(time.Millisecond))

	// C3: Bronze Writer, one partition per theme present in this document.
	byTheme := make(map[string][]Chunk)
	for _, c := range chunks {
		byTheme[c.Theme] = append(byTheme[c.Theme], c)
	}
	themes := make([]string, 0, len(byTheme))
	for t := range byTheme {
		themes = append(themes, t)
	}
	sort.Strings(themes)
	slog.Info("pipeline: writing bronze partitions", "doc_id", docID, "themes", len(themes))
	for _, theme := range themes {
		if _, err := bronze.Write(p.dirs.BronzeDir, entry.OrgID, entry.Year, theme, byTheme[theme], []string{rawDoc.SHA256}, true, now); err != nil {
			slog.Warn("pipeline: bronze write failed", "doc_id", docID, "theme", theme, "error", err)
			return OutputContract{}, fmt.Errorf("pipeline: writing bronze partition %s/%s: %w", docID, theme, err)
		}
	}
	slog.Info("pipeline: bronze partitions written", "doc_id", docID, "themes", len(themes))

	// C4: Silver Consolidator.
	slog.Info("pipeline: consolidating silver", "doc_id", docID)
	silverStart := time.Now()
	if _, err := silver.Consolidate(p.dirs.BronzeDir, p.dirs.SilverDir, entry.OrgID, entry.Year, true, now); err != nil {
		slog.Warn("pipeline: silver consolidation failed", "doc_id", docID, "error", err)
		return OutputContract{}, fmt.Errorf("pipeline: consolidating silver for %s: %w", docID, err)
	}
	silverChunks, err := silver.LoadBronzePartitions(p.dirs.BronzeDir, entry.OrgID, entry.Year)
	if err != nil {
		return OutputContract{}, fmt.Errorf("pipeline: reloading silver chunks for %s: %w", docID, err)
	}
	slog.Info("pipeline: silver consolidation complete",
		"doc_id", docID, "chunks", len(silverChunks),
		"elapsed", time.Since(silverStart).Round(time.Millisecond))

	// C5: Embedder/Indexer.
	store, err := index.New(p.dirs.IndexDBPath, p.cfg.EmbeddingDim)
	if err != nil {
		slog.Warn("pipeline: opening index failed", "doc_id", docID, "error", err)
		return OutputContract{}, fmt.Errorf("pipeline: opening index for %s: %w", docID, err)
	}
	defer store.Close()

	slog.Info("pipeline: indexing and embedding chunks", "doc_id", docID, "chunks", len(silverChunks))
	indexStart := time.Now()
	embedder := index.NewDeterministicEmbedder(p.cfg.EmbeddingDim)
	for _, c := range silverChunks {
		rowid, err := store.UpsertChunk(ctx, c, nil)
		if err != nil {
			slog.Warn("pipeline: indexing chunk failed", "doc_id", docID, "chunk_id", c.ChunkID, "error", err)
			return OutputContract{}, fmt.Errorf("pipeline: indexing chunk %s: %w", c.ChunkID, err)
		}
		emb := embedder.EmbedChunk(c)
		if err := store.InsertEmbedding(ctx, rowid, emb.Vector); err != nil {
			slog.Warn("pipeline: embedding chunk failed", "doc_id", docID, "chunk_id", c.ChunkID, "error", err)
			return OutputContract{}, fmt.Errorf("pipeline: embedding chunk %s: %w", c.ChunkID, err)
		}
	}
	slog.Info("pipeline: indexing complete",
		"doc_id", docID, "chunks", len(silverChunks),
		"elapsed", time.Since(indexStart).Round(time.Millisecond))

	// C6: Retriever, once per theme this document actually produced
	// evidence candidates for.
	retriever := retrieve.New(store, embedder, p.cfg)
	topKByTheme := make(map[string][]string)
	slog.Info("pipeline: retrieving fused top-k", "doc_id", docID, "themes", len(themes))
	for _, theme := range themes {
		if theme == "unclassified" {
			continue
		}
		ids, _, err := retriever.Retrieve(ctx, retrieve.Options{
			OrgID: entry.OrgID,
			Year:  entry.Year,
			Theme: theme,
			Query: themeQuery(theme),
			K:     p.cfg.PerPageCap * p.cfg.DistinctPagesMin,
		})
		if err != nil {
			slog.Warn("pipeline: retrieval failed", "doc_id", docID, "theme", theme, "error", err)
			return OutputContract{}, fmt.Errorf("pipeline: retrieving theme %s for %s: %w", theme, docID, err)
		}
		topKByTheme[theme] = ids
	}
	slog.Info("pipeline: retrieval complete", "doc_id", docID, "themes", len(topKByTheme))

	// C7: Evidence Aggregator.
	findings := evidence.FromChunks(silverChunks, providerSourceID(entry.Provider))
	evidenceItems := evidence.SelectEvidence(findings, p.cfg.EvidenceMinPerTheme)
	slog.Info("pipeline: evidence selected",
		"doc_id", docID, "findings", len(findings), "evidence", len(evidenceItems))

	evidenceByTheme := make(map[string][]string)
	for _, e := range evidenceItems {
		evidenceByTheme[e.ThemeCode] = append(evidenceByTheme[e.ThemeCode], e.EvidenceID)
	}

	// C8: Gate Engine, G2-G7 (G1 is evaluated only by RunDeterminismHarness).
	slog.Info("pipeline: evaluating gates", "doc_id", docID)
	var reports []GateReport
	totalPages := maxPage(silverChunks)

	for _, theme := range ThemeCodesFor(evidenceByTheme) {
		g2, trimmed := gate.G2EvidenceQuality(docID, theme, totalPages, evidenceForTheme(evidenceItems, theme), p.cfg)
		reports = append(reports, g2)
		evidenceByTheme[theme] = idsOf(trimmed)
	}
	reports = append(reports, gate.G3ByTheme(docID, evidenceByTheme, topKByTheme)...)
	reports = append(reports, gate.G4Grounding(docID, evidenceItems, silverChunks, false))

	pdfPath := ""
	if strings.EqualFold(filepath.Ext(rawDoc.LocalPath), ".pdf") {
		pdfPath = rawDoc.LocalPath
	}
	reports = append(reports, gate.G5Alignment(docID, pdfPath, evidenceItems, p.cfg.AlignmentFuzzyPrefixChars, false))
	reports = append(reports, gate.G6Authenticity(docID, p.cfg.WorkspaceRoot))

	var scores ScoreSet
	if p.scorer != nil {
		scores, err = p.scorer.Score(rubric, evidenceItems)
		if err != nil {
			slog.Warn("pipeline: scoring failed", "doc_id", docID, "error", err)
			return OutputContract{}, fmt.Errorf("pipeline: scoring %s: %w", docID, err)
		}
	} else {
		slog.Info("pipeline: no scorer configured, emitting empty score set", "doc_id", docID)
		scores = ScoreSet{DocID: docID}
	}
	scores = gate.NullifyInsufficientEvidence(scores, rubric.ScoringRules.EvidenceMinPerStageClaim)
	reports = append(reports, gate.G7Rubric(docID, rubric, scores, rubric.ScoringRules.EvidenceMinPerStageClaim))

	contract := buildOutputContract(docID, entry.OrgID, entry.Year, reports, scores, len(evidenceItems), now)
	if contract.Status == "blocked" {
		slog.Warn("pipeline: gate failures blocked document",
			"doc_id", docID, "blocking_gates", contract.BlockingGates)
	} else {
		slog.Info("pipeline: gate evaluation complete", "doc_id", docID, "gates", len(reports))
	}

	if p.dirs.MatrixDir != "" {
		if err := writeOutputContract(p.dirs.MatrixDir, contract); err != nil {
			return OutputContract{}, fmt.Errorf("pipeline: writing output contract for %s: %w", docID, err)
		}
	}

	slog.Info("pipeline: document ready",
		"doc_id", docID, "status", contract.Status,
		"elapsed", time.Since(runStart).Round(time.Millisecond))
	return contract, nil
}

// withDirs returns a shallow copy of p rooted at different output
// directories, reusing the same provider/parser registries and scorer — the
// Determinism Harness's isolation unit is the output tree, not the
// in-memory pipeline state (spec §4.10 "isolated output directories").
func (p *Pipeline) withDirs(dirs Dirs) *Pipeline {
	clone := *p
	clone.dirs = dirs
	return &clone
}

// RunDeterminismHarness implements C10 for a single document: runs
// ProcessDocument n times (default 3) into sibling directories under
// baseDir, canonical-JSON-hashes each run's OutputContract, and evaluates
// gate G1 over the resulting hash set (spec §4.10).
func (p *Pipeline) RunDeterminismHarness(ctx context.Context, entry OrgEntry, rubric Rubric, n int, baseDir string) (DeterminismReport, GateReport, error) {
	docID := entry.DocID()
	slog.Info("pipeline: running determinism harness", "doc_id", docID, "n", n)
	runFn := func(runDir string) (interface{}, error) {
		runDirs := Dirs{
			RawDir:      filepath.Join(runDir, "raw"),
			BronzeDir:   filepath.Join(runDir, "bronze"),
			SilverDir:   filepath.Join(runDir, "silver"),
			IndexDBPath: filepath.Join(runDir, "index.db"),
			MatrixDir:   filepath.Join(runDir, "matrix"),
		}
		return p.withDirs(runDirs).ProcessDocument(ctx, entry, rubric)
	}

	report, err := determinism.RunNTimes(runFn, determinism.Options{
		N:        n,
		Seed:     p.cfg.Seed,
		HashSeed: p.cfg.HashSeed,
		BaseDir:  baseDir,
	})
	if err != nil {
		slog.Warn("pipeline: determinism harness failed", "doc_id", docID, "error", err)
		return DeterminismReport{}, GateReport{}, fmt.Errorf("pipeline: determinism harness for %s: %w", docID, err)
	}
	g1 := gate.G1Determinism(docID, report.Hashes)
	if report.Identical {
		slog.Info("pipeline: determinism harness complete", "doc_id", docID, "n", n, "identical", true)
	} else {
		slog.Warn("pipeline: determinism harness found divergent hashes",
			"doc_id", docID, "n", n, "hashes", report.Hashes)
	}
	return report, g1, nil
}

// buildOutputContract derives the blocked/ok verdict from the gate report
// set: any FAIL blocks the document (spec §4.8 "a document is blocked if
// any gate FAILs"; SKIPPED is not a failure).
func buildOutputContract(docID, orgID string, year int, reports []GateReport, scores ScoreSet, evidenceCount int, now time.Time) OutputContract {
	status := "ok"
	var blocking []string
	for _, r := range reports {
		if r.Verdict == VerdictFail {
			status = "blocked"
			blocking = append(blocking, r.Gate)
		}
	}
	return OutputContract{
		DocID:         docID,
		OrgID:         orgID,
		Year:          year,
		Status:        status,
		BlockingGates: blocking,
		GateReports:   reports,
		Scores:        scores,
		EvidenceCount: evidenceCount,
		GeneratedAt:   now,
	}
}

// RunMatrix processes every org-catalog entry and rolls the results up
// into a MatrixContract (spec §7), writing matrix_contract.json alongside
// the per-document output_contract.json files.
func (p *Pipeline) RunMatrix(ctx context.Context, catalog OrgCatalog, rubric Rubric) (MatrixContract, []OutputContract, error) {
	slog.Info("pipeline: running matrix", "orgs", len(catalog.Orgs))
	contracts := make([]OutputContract, 0, len(catalog.Orgs))
	for _, entry := range catalog.Orgs {
		contract, err := p.ProcessDocument(ctx, entry, rubric)
		if err != nil {
			slog.Warn("pipeline: matrix document failed", "doc_id", entry.DocID(), "error", err)
			return MatrixContract{}, nil, fmt.Errorf("pipeline: processing %s: %w", entry.DocID(), err)
		}
		contracts = append(contracts, contract)
	}

	matrix := BuildMatrixContract(contracts, p.cfg.Now())
	if p.dirs.MatrixDir != "" {
		if err := writeMatrixContract(p.dirs.MatrixDir, matrix); err != nil {
			return MatrixContract{}, nil, fmt.Errorf("pipeline: writing matrix contract: %w", err)
		}
	}
	slog.Info("pipeline: matrix complete", "orgs", len(contracts), "status", matrix.MatrixStatus)
	return matrix, contracts, nil
}

func providerSourceID(p Provider) string {
	return string(p)
}

func themeQuery(theme string) string {
	kws, ok := themeKeywords[theme]
	if !ok || len(kws) == 0 {
		return theme
	}
	return strings.Join(kws, " OR ")
}

func maxPage(chunks []Chunk) int {
	max := 0
	for _, c := range chunks {
		if c.Page > max {
			max = c.Page
		}
	}
	return max
}

func evidenceForTheme(items []Evidence, theme string) []Evidence {
	var out []Evidence
	for _, e := range items {
		if e.ThemeCode == theme {
			out = append(out, e)
		}
	}
	return out
}

func idsOf(items []Evidence) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.EvidenceID
	}
	return out
}

// ThemeCodesFor returns the sorted theme keys of a map, used wherever gate
// evaluation must iterate themes in a fixed, reproducible order.
func ThemeCodesFor(byTheme map[string][]string) []string {
	out := make([]string, 0, len(byTheme))
	for t := range byTheme {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func writeOutputContract(matrixDir string, contract OutputContract) error {
	dir := filepath.Join(matrixDir, contract.DocID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return atomicWriteJSON(filepath.Join(dir, "output_contract.json"), contract)
}

func writeMatrixContract(matrixDir string, matrix MatrixContract) error {
	if err := os.MkdirAll(matrixDir, 0o755); err != nil {
		return err
	}
	return atomicWriteJSON(filepath.Join(matrixDir, "matrix_contract.json"), matrix)
}

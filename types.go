// Package esgevidence implements the ESG evidence pipeline: a staged,
// leaves-first DAG that acquires corporate sustainability disclosures,
// extracts page-tagged evidence, consolidates it through a Bronze/Silver/
// Gold-Lite content-addressed storage tier, indexes and retrieves it with
// hybrid lexical/vector fusion, and validates that every scored claim is
// grounded in a verifiable, hashed quote.
package esgevidence

import "time"

// RawDocument is an immutable, content-addressed fetch result owned
// exclusively by the Acquirer. It is never mutated after acquisition.
type RawDocument struct {
	LocalPath   string            `json:"local_path"`
	SourceURL   string            `json:"source_url"`
	SHA256      string            `json:"sha256"`
	Size        int64             `json:"size"`
	FetchedAt   time.Time         `json:"fetched_at"`
	Provider    string            `json:"provider"`
	HTTPHeaders map[string]string `json:"http_headers,omitempty"`
}

// Chunk is a single page-tagged, content-addressed unit of extracted text.
type Chunk struct {
	ChunkID    string `json:"chunk_id"`
	DocID      string `json:"doc_id"`
	OrgID      string `json:"org_id"`
	Year       int    `json:"year"`
	Page       int    `json:"page"` // >= 1
	Section    string `json:"section,omitempty"`
	Text       string `json:"text"`
	CharStart  int    `json:"char_start"`
	CharEnd    int    `json:"char_end"`
	SHA256     string `json:"sha256"`
	SourceURL  string `json:"source_url,omitempty"`
	Theme      string `json:"theme,omitempty"`
	Quality    float64 `json:"quality"`
	CleanState string `json:"clean_state,omitempty"` // "ok" | "cleaned" | "suspect" | "empty"
}

// BronzePartition is the (org_id, year, theme)-addressed immutable
// partition produced by the Bronze Writer.
type BronzePartition struct {
	OrgID    string  `json:"org_id"`
	Year     int     `json:"year"`
	Theme    string  `json:"theme"`
	Chunks   []Chunk `json:"-"`
	Manifest PartitionManifest `json:"manifest"`
}

// PartitionManifest is the Bronze partition sidecar (spec §4.3).
type PartitionManifest struct {
	OrgID           string    `json:"org_id"`
	Year            int       `json:"year"`
	Theme           string    `json:"theme"`
	RowCount        int       `json:"row_count"`
	SchemaVersion   int       `json:"schema_version"`
	SourceSHA256    []string  `json:"source_sha256"`
	PartitionSHA256 string    `json:"partition_sha256"`
	CreatedAt       time.Time `json:"created_at"`
}

// SilverTable is the per-(org_id, year) consolidated, deterministically
// sorted chunk table (spec §4.4).
type SilverTable struct {
	OrgID    string            `json:"org_id"`
	Year     int               `json:"year"`
	Chunks   []Chunk           `json:"-"`
	Manifest SilverManifest    `json:"manifest"`
}

// SilverManifest is the Silver consolidation sidecar.
type SilverManifest struct {
	OrgID         string    `json:"org_id"`
	Year          int       `json:"year"`
	RecordCount   int       `json:"record_count"`
	SchemaVersion int       `json:"schema_version"`
	Themes        []string  `json:"themes"`
	DataHash      string    `json:"data_hash"`
	ParquetFile   string    `json:"parquet_file"`
	JSONLFile     string    `json:"jsonl_file"`
	SourceLayer   string    `json:"source_layer"`
	Transformation string   `json:"transformation"`
	CreatedAt     time.Time `json:"created_at"`
}

// Embedding is a single deterministic vector attached to a chunk.
type Embedding struct {
	ChunkID   string    `json:"chunk_id"`
	SHA256    string    `json:"sha256"`
	ModelID   string    `json:"model_id"`
	Vector    []float32 `json:"vector"`
	TextLen   int       `json:"text_len"`
	CreatedAt time.Time `json:"created_at"`
}

// Finding is a source-specific intermediate record, the input to evidence
// selection (spec §4.7).
type Finding struct {
	Text       string   `json:"text"`
	Theme      string   `json:"theme"`
	SourceID   string   `json:"source_id"`
	DocID      string   `json:"doc_id"`
	Page       *int     `json:"page_no,omitempty"`
	CharStart  int      `json:"char_start"`
	CharEnd    int      `json:"char_end"`
	Entities   []string `json:"entities,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
	OrgID      string   `json:"org_id,omitempty"`
	Year       int      `json:"year,omitempty"`
}

// Evidence is a <=30-word quote with full provenance supporting a single
// theme claim (spec §4.7, §8).
type Evidence struct {
	EvidenceID string `json:"evidence_id"`
	DocID      string `json:"doc_id"`
	ThemeCode  string `json:"theme_code"`
	Extract30w string `json:"extract_30w"`
	Page       *int   `json:"page_no,omitempty"`
	SpanStart  int    `json:"span_start"`
	SpanEnd    int    `json:"span_end"`
	SHA256     string `json:"sha256"`
	OrgID      string `json:"org_id,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// RetrievalResult is a single fused retrieval hit (spec §3, §4.6).
type RetrievalResult struct {
	ChunkID    string  `json:"chunk_id"`
	Score      float64 `json:"fused_score"`
	LexScore   float64 `json:"lex_score"`
	VecScore   float64 `json:"vec_score"`
}

// GateVerdict is the tri-state outcome of a gate evaluation (spec §4.8).
type GateVerdict string

const (
	VerdictPass    GateVerdict = "PASS"
	VerdictFail    GateVerdict = "FAIL"
	VerdictSkipped GateVerdict = "SKIPPED"
)

// GateReport is the outcome of a single gate evaluation for a (doc, theme).
type GateReport struct {
	Gate        string                 `json:"gate"`
	DocID       string                 `json:"doc_id"`
	Theme       string                 `json:"theme,omitempty"`
	Verdict     GateVerdict            `json:"verdict"`
	SkipReason  string                 `json:"skip_reason,omitempty"`
	Diagnostics map[string]interface{} `json:"diagnostics,omitempty"`
}

// DeterminismReport is the output of the Determinism Harness (spec §4.10).
type DeterminismReport struct {
	Hashes     []string `json:"hashes"`
	Identical  bool     `json:"identical"`
	Seed       int      `json:"seed"`
	HashSeed   int      `json:"hash_seed"`
	N          int      `json:"n"`
}

// Manifest is the generic immutable artifact sidecar (spec §3).
type Manifest struct {
	ArtifactSHA256 string    `json:"artifact_sha256"`
	SourceInputs   []string  `json:"source_inputs"`
	Parameters     map[string]interface{} `json:"parameters,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	SchemaVersion  int       `json:"schema_version"`
}

// Rubric is the external, immutable scoring configuration (spec §6).
// The pipeline only validates its shape; it never interprets scoring rules.
type Rubric struct {
	Version      int                    `json:"version"`
	Themes       []RubricTheme          `json:"themes"`
	ScoringRules RubricScoringRules     `json:"scoring_rules"`
}

// RubricTheme names one of the 7 fixed theme codes and its 5 maturity stages.
type RubricTheme struct {
	Code   string                    `json:"code"`
	Name   string                    `json:"name"`
	Stages map[string]RubricStage    `json:"stages"` // keys "0".."4"
}

// RubricStage is a single maturity-stage descriptor.
type RubricStage struct {
	Descriptor string `json:"descriptor"`
}

// RubricScoringRules carries the evidence-sufficiency knob consumed by G7.
type RubricScoringRules struct {
	EvidenceMinPerStageClaim int `json:"evidence_min_per_stage_claim"`
}

// ThemeScore is a single scored theme entry consumed by gate G7. Stage is
// nil when the theme was nullified for insufficient evidence.
type ThemeScore struct {
	Theme    string   `json:"theme"`
	Stage    *int     `json:"stage"`
	Reason   string   `json:"reason,omitempty"`
	Evidence []string `json:"evidence"` // evidence_ids cited
}

// ScoreSet is the external scorer's output for one document — the pipeline
// treats its producer as an out-of-scope pure function (spec §1, §6).
type ScoreSet struct {
	DocID  string       `json:"doc_id"`
	Scores []ThemeScore `json:"scores"`
}

// Scorer is the out-of-scope interface boundary: the LLM-backed
// classification model is never implemented in this repository.
type Scorer interface {
	Score(rubric Rubric, evidence []Evidence) (ScoreSet, error)
}

// FixedThemeCodes are the 7 theme codes recognized by the pipeline
// (spec GLOSSARY). This is data, consulted by ValidateRubric and
// ClassifyTheme, not hard-coded into control flow.
var FixedThemeCodes = []string{"TSP", "OSP", "DM", "GHG", "RD", "EI", "RMM"}

// ExpectedStages is the fixed stage-key convention resolved at load time
// (spec §9 Open Questions): "0" through "4", five stages exactly.
var ExpectedStages = []string{"0", "1", "2", "3", "4"}

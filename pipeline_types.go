package esgevidence

import "time"

// OutputContract is the per-document artifact written to
// artifacts/matrix/{doc_id}/output_contract.json (spec §6): the full
// record of what the pipeline produced and gated for one document, so a
// downstream consumer never has to re-derive pass/fail from raw gate
// reports.
type OutputContract struct {
	DocID         string       `json:"doc_id"`
	OrgID         string       `json:"org_id"`
	Year          int          `json:"year"`
	Status        string       `json:"status"` // "ok" | "blocked"
	BlockingGates []string     `json:"blocking_gates,omitempty"`
	GateReports   []GateReport `json:"gate_reports"`
	Scores        ScoreSet     `json:"scores"`
	EvidenceCount int          `json:"evidence_count"`
	GeneratedAt   time.Time    `json:"generated_at"`
}

// MatrixContract is matrix_contract.json (spec §7): the across-document
// rollup a release gate reads to decide whether the whole matrix run is
// deployable.
type MatrixContract struct {
	MatrixStatus      string   `json:"matrix_status"` // "ok" | "blocked"
	BlockingDocuments []string `json:"blocking_documents,omitempty"`
	DocumentCount     int      `json:"document_count"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// BuildMatrixContract derives the matrix-level pass/fail rollup from a set
// of per-document OutputContracts: blocked iff any document is blocked
// (spec §7 "matrix_status ∈ {ok, blocked}").
func BuildMatrixContract(contracts []OutputContract, now time.Time) MatrixContract {
	var blocking []string
	for _, c := range contracts {
		if c.Status == "blocked" {
			blocking = append(blocking, c.DocID)
		}
	}
	status := "ok"
	if len(blocking) > 0 {
		status = "blocked"
	}
	return MatrixContract{
		MatrixStatus:      status,
		BlockingDocuments: blocking,
		DocumentCount:     len(contracts),
		GeneratedAt:       now,
	}
}

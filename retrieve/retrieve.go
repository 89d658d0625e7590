// Package retrieve implements C6, the Retriever: a two-tier query over the
// Silver index — an equality prefilter, then lexical+vector fusion over
// the prefiltered set — returning a fully ordered top-K list of chunk_ids
// (spec §4.6). Adapted from the teacher's retrieval/retrieval.go: the
// concurrent fan-out and SearchTrace diagnostics shape survive, but
// identifier detection, graph search, and cross-language query translation
// are dropped — this pipeline has no knowledge graph and no multilingual
// query requirement.
package retrieve

import (
	"context"
	"fmt"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/index"
)

// Backend is the subset of *index.Store the Retriever depends on, so
// retrieve can be tested against a fake without a real SQLite file.
type Backend interface {
	PrefilterByOrgThemeYear(ctx context.Context, orgID string, year int, theme string, k int) ([]string, error)
	VectorSearch(ctx context.Context, queryEmbedding []float32, k int) ([]esgevidence.RetrievalResult, error)
	FTSSearch(ctx context.Context, query string, limit int) ([]esgevidence.RetrievalResult, error)
	Count(ctx context.Context) (int, error)
}

var _ Backend = (*index.Store)(nil)

// Embedder is the subset of *index.DeterministicEmbedder the Retriever
// needs to embed a query string.
type Embedder interface {
	Embed(text string) []float32
}

// Options tunes one retrieval call.
type Options struct {
	OrgID  string
	Year   int
	Theme  string
	Query  string
	K      int
	Strict bool // if true, an empty index is a hard error rather than []
}

// Trace records per-method contributions for diagnostics (kept from the
// teacher's SearchTrace, trimmed to the fields this pipeline's two-tier
// fusion actually produces).
type Trace struct {
	LexResults   []esgevidence.RetrievalResult
	VecResults   []esgevidence.RetrievalResult
	Prefiltered  []string
	FusedResults []esgevidence.RetrievalResult
	WeightLex    float64
	WeightVec    float64
	PerResult    map[string]FusedResultInfo
}

// Retriever runs the two-tier prefilter-then-fuse contract.
type Retriever struct {
	backend  Backend
	embedder Embedder
	cfg      esgevidence.Config
}

// New constructs a Retriever bound to a Silver index and query embedder.
func New(backend Backend, embedder Embedder, cfg esgevidence.Config) *Retriever {
	return &Retriever{backend: backend, embedder: embedder, cfg: cfg}
}

// Retrieve runs C6: prefilter by (org, theme, year) equality ordered by
// recency, then lexical/vector fusion over the query, returning at most
// opts.K chunk_ids in fully deterministic order (spec §4.6, §5 "retrieval
// top-K fully ordered by (fused_score DESC, chunk_id ASC)").
func (r *Retriever) Retrieve(ctx context.Context, opts Options) ([]string, *Trace, error) {
	if opts.K == 0 {
		return nil, &Trace{}, nil
	}

	count, err := r.backend.Count(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve: counting index: %w", err)
	}
	if count == 0 {
		if opts.Strict {
			return nil, nil, esgevidence.NewPipelineError(esgevidence.KindInputMissing, "index is empty", esgevidence.ErrNoIndex)
		}
		return nil, &Trace{}, nil
	}

	prefiltered, err := r.backend.PrefilterByOrgThemeYear(ctx, opts.OrgID, opts.Year, opts.Theme, opts.K*4)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve: prefilter: %w", err)
	}
	prefilterSet := make(map[string]bool, len(prefiltered))
	for _, id := range prefiltered {
		prefilterSet[id] = true
	}

	type lexOut struct {
		results []esgevidence.RetrievalResult
		err     error
	}
	type vecOut struct {
		results []esgevidence.RetrievalResult
		err     error
	}
	lexCh := make(chan lexOut, 1)
	vecCh := make(chan vecOut, 1)

	go func() {
		res, err := r.backend.FTSSearch(ctx, opts.Query, opts.K*4)
		lexCh <- lexOut{res, err}
	}()
	go func() {
		queryVec := r.embedder.Embed(opts.Query)
		res, err := r.backend.VectorSearch(ctx, queryVec, opts.K*4)
		vecCh <- vecOut{res, err}
	}()

	lex := <-lexCh
	vec := <-vecCh
	if lex.err != nil {
		return nil, nil, fmt.Errorf("retrieve: lexical search: %w", lex.err)
	}
	if vec.err != nil {
		return nil, nil, fmt.Errorf("retrieve: vector search: %w", vec.err)
	}

	lexFiltered := filterToPrefilter(lex.results, prefilterSet)
	vecFiltered := filterToPrefilter(vec.results, prefilterSet)

	fused, perResult := Fuse(lexFiltered, vecFiltered, r.cfg.WeightLexical, r.cfg.WeightVector, opts.K)

	ids := make([]string, len(fused))
	for i, f := range fused {
		ids[i] = f.ChunkID
	}

	trace := &Trace{
		LexResults:   lexFiltered,
		VecResults:   vecFiltered,
		Prefiltered:  prefiltered,
		FusedResults: fused,
		WeightLex:    r.cfg.WeightLexical,
		WeightVec:    r.cfg.WeightVector,
		PerResult:    perResult,
	}
	return ids, trace, nil
}

func filterToPrefilter(results []esgevidence.RetrievalResult, allowed map[string]bool) []esgevidence.RetrievalResult {
	if len(allowed) == 0 {
		return results
	}
	var out []esgevidence.RetrievalResult
	for _, r := range results {
		if allowed[r.ChunkID] {
			out = append(out, r)
		}
	}
	return out
}

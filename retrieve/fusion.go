package retrieve

import (
	"sort"

	"github.com/brunobiangulo/esgevidence"
)

// FusedResultInfo holds per-result method contribution metadata, kept from
// the teacher's retrieval/rrf.go FusedResultInfo shape but trimmed to the
// two signals this pipeline's fusion actually has (no graph rank: spec §4.6
// fuses lexical + vector only).
type FusedResultInfo struct {
	Methods []string `json:"methods"`
	LexRank int      `json:"lex_rank,omitempty"` // 1-based, 0 = not present
	VecRank int      `json:"vec_rank,omitempty"` // 1-based, 0 = not present
}

// Fuse combines lexical and vector result sets into one deterministically
// ordered top-K list (spec §4.6): each tier's scores are min-max normalized
// independently, then combined by a fixed convex weight. Unlike the
// teacher's Reciprocal Rank Fusion (retrieval/rrf.go), this is not rank-based
// — it normalizes the raw per-tier scores, matching the spec's "min-max
// normalized per tier and combined with a fixed convex weight" wording.
// Ties break by chunk_id ascending (spec §4.6, §5).
func Fuse(lex, vec []esgevidence.RetrievalResult, weightLex, weightVec float64, k int) ([]esgevidence.RetrievalResult, map[string]FusedResultInfo) {
	lexNorm := minMaxNormalize(lex, func(r esgevidence.RetrievalResult) float64 { return r.LexScore })
	vecNorm := minMaxNormalize(vec, func(r esgevidence.RetrievalResult) float64 { return r.VecScore })

	type fusedEntry struct {
		chunkID string
		lexS    float64
		vecS    float64
		score   float64
		info    FusedResultInfo
	}
	fused := make(map[string]*fusedEntry)

	for rank, r := range lex {
		e, ok := fused[r.ChunkID]
		if !ok {
			e = &fusedEntry{chunkID: r.ChunkID}
			fused[r.ChunkID] = e
		}
		e.lexS = lexNorm[r.ChunkID]
		e.info.Methods = append(e.info.Methods, "lexical")
		e.info.LexRank = rank + 1
	}
	for rank, r := range vec {
		e, ok := fused[r.ChunkID]
		if !ok {
			e = &fusedEntry{chunkID: r.ChunkID}
			fused[r.ChunkID] = e
		}
		e.vecS = vecNorm[r.ChunkID]
		e.info.Methods = append(e.info.Methods, "vector")
		e.info.VecRank = rank + 1
	}

	entries := make([]*fusedEntry, 0, len(fused))
	for _, e := range fused {
		e.score = weightLex*e.lexS + weightVec*e.vecS
		entries = append(entries, e)
	}

	// Deterministic tie-break: fused_score DESC, chunk_id ASC (spec §4.6, §5).
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].chunkID < entries[j].chunkID
	})

	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}

	results := make([]esgevidence.RetrievalResult, len(entries))
	info := make(map[string]FusedResultInfo, len(entries))
	for i, e := range entries {
		results[i] = esgevidence.RetrievalResult{
			ChunkID:  e.chunkID,
			Score:    e.score,
			LexScore: e.lexS,
			VecScore: e.vecS,
		}
		info[e.chunkID] = e.info
	}
	return results, info
}

// minMaxNormalize rescales a tier's raw scores to [0, 1]. A single-element
// or constant-score set normalizes to 1.0 for all members (degenerate range
// has no meaningful spread to preserve).
func minMaxNormalize(results []esgevidence.RetrievalResult, score func(esgevidence.RetrievalResult) float64) map[string]float64 {
	out := make(map[string]float64, len(results))
	if len(results) == 0 {
		return out
	}
	min, max := score(results[0]), score(results[0])
	for _, r := range results {
		if score(r) < min {
			min = score(r)
		}
		if score(r) > max {
			max = score(r)
		}
	}
	spread := max - min
	for _, r := range results {
		if spread == 0 {
			out[r.ChunkID] = 1.0
			continue
		}
		out[r.ChunkID] = (score(r) - min) / spread
	}
	return out
}

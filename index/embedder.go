package index

import (
	"crypto/md5"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/canon"
)

// DeterministicEmbedder produces fixed-dimension, L2-normalized
// hash-term-frequency vectors: no model, no randomness, bit-identical
// across runs and platforms. Ported from original_source/libs/embedding/
// deterministic_embedder.py: lowercase-and-split tokenization, an MD5 hash
// of each term folded into one of Dim buckets by count, then L2
// normalization. Terms are iterated in sorted order so floating-point
// summation order — and therefore the resulting vector — is itself
// deterministic (spec §4.5 "fixed hash fn, sorted term iteration").
type DeterministicEmbedder struct {
	Dim   int
	Model string
}

// NewDeterministicEmbedder constructs the default embedder for a given
// dimension (spec §4.5 "Default hash-TF over L2-normalized buckets").
func NewDeterministicEmbedder(dim int) *DeterministicEmbedder {
	if dim <= 0 {
		dim = 128
	}
	return &DeterministicEmbedder{Dim: dim, Model: "hash-tf-v1"}
}

// Embed returns a Dim-length, L2-normalized term-frequency vector for
// text. The zero vector is returned for empty input.
func (e *DeterministicEmbedder) Embed(text string) []float32 {
	vec := make([]float32, e.Dim)
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return vec
	}

	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}

	terms := make([]string, 0, len(tf))
	for t := range tf {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	for _, term := range terms {
		bucket := md5Bucket(term, e.Dim)
		vec[bucket] += float32(tf[term])
	}

	var normSq float64
	for _, v := range vec {
		normSq += float64(v) * float64(v)
	}
	if normSq > 0 {
		norm := math.Sqrt(normSq)
		for i, v := range vec {
			vec[i] = float32(float64(v) / norm)
		}
	}
	return vec
}

// md5Bucket folds an MD5 hash of term into [0, dim), matching
// deterministic_embedder.py's `int(md5(term).hexdigest(), 16) % dim`.
func md5Bucket(term string, dim int) int {
	sum := md5.Sum([]byte(term))
	n := new(big.Int).SetBytes(sum[:])
	d := big.NewInt(int64(dim))
	mod := new(big.Int).Mod(n, d)
	return int(mod.Int64())
}

// EmbedChunk produces the Embedding record for one chunk, recording the
// text's SHA-256 beside the vector. Embed is a pure function of the text,
// so unchanged content yields the same vector; no cache is kept.
func (e *DeterministicEmbedder) EmbedChunk(c esgevidence.Chunk) esgevidence.Embedding {
	vec := e.Embed(c.Text)
	return esgevidence.Embedding{
		ChunkID: c.ChunkID,
		SHA256:  canon.HashString(c.Text),
		ModelID: e.Model,
		Vector:  vec,
		TextLen: len([]rune(c.Text)),
	}
}

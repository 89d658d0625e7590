//go:build cgo

package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/brunobiangulo/esgevidence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, 4) // dim=4 for test vectors
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleChunk(chunkID, text string, page int, theme string) esgevidence.Chunk {
	return esgevidence.Chunk{
		ChunkID: chunkID,
		DocID:   "aapl_2023",
		OrgID:   "aapl",
		Year:    2023,
		Page:    page,
		Theme:   theme,
		Text:    text,
		SHA256:  "deadbeef",
	}
}

// ---------------------------------------------------------------------------
// Schema / construction
// ---------------------------------------------------------------------------

func TestNewCreatesParentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "dir")
	dbPath := filepath.Join(dir, "test.db")
	s, err := New(dbPath, 4)
	if err != nil {
		t.Fatalf("creating store in nested dir: %v", err)
	}
	s.Close()
}

// ---------------------------------------------------------------------------
// Chunk upsert
// ---------------------------------------------------------------------------

func TestUpsertChunkIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := sampleChunk("aapl_2023_p1_c0", "original text", 1, "TSP")
	rowid1, err := s.UpsertChunk(ctx, c, nil)
	if err != nil {
		t.Fatalf("upsert chunk: %v", err)
	}

	c.Text = "updated text"
	rowid2, err := s.UpsertChunk(ctx, c, nil)
	if err != nil {
		t.Fatalf("re-upsert chunk: %v", err)
	}
	if rowid1 != rowid2 {
		t.Fatalf("expected stable rowid across upserts, got %d then %d", rowid1, rowid2)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one row after re-upserting the same chunk_id, got %d", n)
	}
}

func TestRowID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := sampleChunk("aapl_2023_p1_c0", "some text", 1, "TSP")
	rowid, err := s.UpsertChunk(ctx, c, nil)
	if err != nil {
		t.Fatalf("upsert chunk: %v", err)
	}

	got, err := s.RowID(ctx, c.ChunkID)
	if err != nil {
		t.Fatalf("rowid lookup: %v", err)
	}
	if got != rowid {
		t.Fatalf("RowID returned %d, want %d", got, rowid)
	}
}

// ---------------------------------------------------------------------------
// Count / parity invariants (spec §4.5)
// ---------------------------------------------------------------------------

// TestParityNoOrphans covers all three §4.5 parity invariants directly
// against the index: |docs| == |embeddings|, no orphan doc without an
// embedding, no orphan embedding without a doc.
func TestParityNoOrphans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []esgevidence.Chunk{
		sampleChunk("aapl_2023_p1_c0", "alpha content", 1, "TSP"),
		sampleChunk("aapl_2023_p2_c0", "beta content", 2, "TSP"),
		sampleChunk("aapl_2023_p3_c0", "gamma content", 3, "GHG"),
	}

	rowids := make([]int64, 0, len(chunks))
	for _, c := range chunks {
		rowid, err := s.UpsertChunk(ctx, c, nil)
		if err != nil {
			t.Fatalf("upsert chunk %s: %v", c.ChunkID, err)
		}
		rowids = append(rowids, rowid)
	}

	docCount, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count docs: %v", err)
	}
	if docCount != len(chunks) {
		t.Fatalf("expected %d chunks indexed, got %d", len(chunks), docCount)
	}

	embedder := NewDeterministicEmbedder(4)
	for i, c := range chunks {
		emb := embedder.EmbedChunk(c)
		if err := s.InsertEmbedding(ctx, rowids[i], emb.Vector); err != nil {
			t.Fatalf("insert embedding for %s: %v", c.ChunkID, err)
		}
	}

	embeddingCount := countEmbeddings(t, s)
	if embeddingCount != docCount {
		t.Fatalf("parity invariant |docs| == |embeddings| violated: docs=%d embeddings=%d", docCount, embeddingCount)
	}

	for _, rowid := range rowids {
		if !embeddingExists(t, s, rowid) {
			t.Fatalf("orphan doc without embedding: rowid %d", rowid)
		}
	}

	orphanRowids := orphanEmbeddingRowids(t, s)
	if len(orphanRowids) != 0 {
		t.Fatalf("orphan embedding(s) without a doc: rowids %v", orphanRowids)
	}
}

// TestParityDetectsOrphanEmbedding confirms the invariant check actually
// catches a violation: an embedding inserted against a rowid with no
// matching chunk row is an orphan embedding.
func TestParityDetectsOrphanEmbedding(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const orphanRowid = int64(999)
	if err := s.InsertEmbedding(ctx, orphanRowid, []float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("insert orphan embedding: %v", err)
	}

	orphans := orphanEmbeddingRowids(t, s)
	if len(orphans) != 1 || orphans[0] != orphanRowid {
		t.Fatalf("expected orphan embedding rowid %d, got %v", orphanRowid, orphans)
	}
}

func countEmbeddings(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vec_chunks").Scan(&n); err != nil {
		t.Fatalf("counting embeddings: %v", err)
	}
	return n
}

func embeddingExists(t *testing.T, s *Store, rowid int64) bool {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vec_chunks WHERE rowid = ?", rowid).Scan(&n); err != nil {
		t.Fatalf("checking embedding existence: %v", err)
	}
	return n > 0
}

func orphanEmbeddingRowids(t *testing.T, s *Store) []int64 {
	t.Helper()
	rows, err := s.db.Query(`
		SELECT v.rowid FROM vec_chunks v
		LEFT JOIN chunks c ON c.rowid = v.rowid
		WHERE c.rowid IS NULL
	`)
	if err != nil {
		t.Fatalf("querying orphan embeddings: %v", err)
	}
	defer rows.Close()

	var orphans []int64
	for rows.Next() {
		var rowid int64
		if err := rows.Scan(&rowid); err != nil {
			t.Fatalf("scanning orphan rowid: %v", err)
		}
		orphans = append(orphans, rowid)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterating orphan embeddings: %v", err)
	}
	return orphans
}

// ---------------------------------------------------------------------------
// Vector search
// ---------------------------------------------------------------------------

func TestInsertEmbeddingAndVectorSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alpha := sampleChunk("aapl_2023_p1_c0", "alpha content", 1, "TSP")
	beta := sampleChunk("aapl_2023_p2_c0", "beta content", 2, "TSP")

	rowidAlpha, err := s.UpsertChunk(ctx, alpha, nil)
	if err != nil {
		t.Fatalf("upsert alpha: %v", err)
	}
	rowidBeta, err := s.UpsertChunk(ctx, beta, nil)
	if err != nil {
		t.Fatalf("upsert beta: %v", err)
	}

	// Orthogonal embeddings so nearest-neighbor ordering is unambiguous.
	if err := s.InsertEmbedding(ctx, rowidAlpha, []float32{1, 0, 0, 0}); err != nil {
		t.Fatalf("embedding alpha: %v", err)
	}
	if err := s.InsertEmbedding(ctx, rowidBeta, []float32{0, 1, 0, 0}); err != nil {
		t.Fatalf("embedding beta: %v", err)
	}

	results, err := s.VectorSearch(ctx, []float32{1, 0, 0, 0}, 2)
	if err != nil {
		t.Fatalf("vector search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ChunkID != alpha.ChunkID {
		t.Errorf("expected nearest result to be %q, got %q", alpha.ChunkID, results[0].ChunkID)
	}
	if results[0].VecScore <= results[1].VecScore {
		t.Errorf("expected first result score (%f) > second (%f)", results[0].VecScore, results[1].VecScore)
	}
}

func TestVectorSearchTopK(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []esgevidence.Chunk{
		sampleChunk("c1", "c1 text", 1, "TSP"),
		sampleChunk("c2", "c2 text", 1, "TSP"),
		sampleChunk("c3", "c3 text", 1, "TSP"),
	}
	vectors := [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}

	for i, c := range chunks {
		rowid, err := s.UpsertChunk(ctx, c, nil)
		if err != nil {
			t.Fatalf("upsert %s: %v", c.ChunkID, err)
		}
		if err := s.InsertEmbedding(ctx, rowid, vectors[i]); err != nil {
			t.Fatalf("embed %s: %v", c.ChunkID, err)
		}
	}

	results, err := s.VectorSearch(ctx, []float32{0, 0, 1, 0}, 1)
	if err != nil {
		t.Fatalf("vector search k=1: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ChunkID != "c3" {
		t.Errorf("expected c3, got %q", results[0].ChunkID)
	}
}

func TestVectorSearchZeroKReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	results, err := s.VectorSearch(context.Background(), []float32{1, 0, 0, 0}, 0)
	if err != nil {
		t.Fatalf("vector search k=0: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results for k=0, got %d", len(results))
	}
}

// ---------------------------------------------------------------------------
// FTS search
// ---------------------------------------------------------------------------

func TestFTSSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chunks := []esgevidence.Chunk{
		sampleChunk("c1", "the quick brown fox jumps over the lazy dog", 1, "TSP"),
		sampleChunk("c2", "artificial intelligence and machine learning", 1, "TSP"),
		sampleChunk("c3", "quantum computing uses qubits", 1, "TSP"),
	}
	for _, c := range chunks {
		if _, err := s.UpsertChunk(ctx, c, nil); err != nil {
			t.Fatalf("upsert %s: %v", c.ChunkID, err)
		}
	}

	results, err := s.FTSSearch(ctx, "artificial intelligence", 10)
	if err != nil {
		t.Fatalf("fts search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one FTS result")
	}
	if results[0].ChunkID != "c2" {
		t.Errorf("top FTS result: got %q, want c2", results[0].ChunkID)
	}
	if results[0].LexScore <= 0 {
		t.Errorf("expected positive lexical score, got %f", results[0].LexScore)
	}
}

func TestFTSSearchNoMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := sampleChunk("c1", "hello world", 1, "TSP")
	if _, err := s.UpsertChunk(ctx, c, nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := s.FTSSearch(ctx, "zzzyyyxxx", 10)
	if err != nil {
		t.Fatalf("fts search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

// ---------------------------------------------------------------------------
// Prefilter (org/theme/year equality + published_at ordering)
// ---------------------------------------------------------------------------

func TestPrefilterByOrgThemeYear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tsp1 := sampleChunk("aapl_2023_p1_c0", "tsp text 1", 1, "TSP")
	tsp2 := sampleChunk("aapl_2023_p2_c0", "tsp text 2", 2, "TSP")
	ghg := sampleChunk("aapl_2023_p3_c0", "ghg text", 3, "GHG")
	otherOrg := esgevidence.Chunk{
		ChunkID: "msft_2023_p1_c0", DocID: "msft_2023", OrgID: "msft",
		Year: 2023, Page: 1, Theme: "TSP", Text: "msft text", SHA256: "deadbeef",
	}

	for _, c := range []esgevidence.Chunk{tsp1, tsp2, ghg, otherOrg} {
		if _, err := s.UpsertChunk(ctx, c, nil); err != nil {
			t.Fatalf("upsert %s: %v", c.ChunkID, err)
		}
	}

	ids, err := s.PrefilterByOrgThemeYear(ctx, "aapl", 2023, "TSP", 10)
	if err != nil {
		t.Fatalf("prefilter: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 TSP chunks for aapl/2023, got %d: %v", len(ids), ids)
	}
	for _, id := range ids {
		if id != tsp1.ChunkID && id != tsp2.ChunkID {
			t.Errorf("unexpected chunk in prefilter result: %s", id)
		}
	}
}

func TestPrefilterZeroKReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	ids, err := s.PrefilterByOrgThemeYear(context.Background(), "aapl", 2023, "TSP", 0)
	if err != nil {
		t.Fatalf("prefilter k=0: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no results for k=0, got %d", len(ids))
	}
}

// ---------------------------------------------------------------------------
// Count
// ---------------------------------------------------------------------------

func TestCountEmptyIndex(t *testing.T) {
	s := newTestStore(t)
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty index to count 0, got %d", n)
	}
}

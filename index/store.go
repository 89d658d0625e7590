// Package index implements C5, the Embedder/Indexer: builds the hybrid
// lexical/vector search index the Retriever queries, and produces the
// fixed-dimension deterministic embeddings that back it. The storage
// engine is adapted directly from the teacher's store/schema.go and
// store/store.go — same sqlite-vec vec0 + FTS5 shape, re-keyed from
// documents/chunks to a single chunks table addressed by the spec's
// string chunk_id, and with the knowledge-graph tables (entities,
// relationships, entity_chunks, communities, query_log) dropped: nothing
// in this pipeline's retrieval contract (spec §4.6) needs them.
package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brunobiangulo/esgevidence"
)

func init() {
	sqlite_vec.Auto()
}

// schemaSQL returns the DDL for the chunks table plus its vec0 and FTS5
// mirrors, parameterized by embeddingDim the way the teacher's schema.go
// parameterizes vec_chunks.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS chunks (
    rowid INTEGER PRIMARY KEY,
    chunk_id TEXT NOT NULL UNIQUE,
    doc_id TEXT NOT NULL,
    org_id TEXT NOT NULL,
    year INTEGER NOT NULL,
    page INTEGER NOT NULL,
    theme TEXT,
    text TEXT NOT NULL,
    source_url TEXT,
    sha256 TEXT NOT NULL,
    published_at DATETIME,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    rowid INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    text,
    content='chunks',
    content_rowid='rowid',
    tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
    INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
END;
CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
END;
CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
    INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.rowid, old.text);
    INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
END;

CREATE INDEX IF NOT EXISTS idx_chunks_org_year ON chunks(org_id, year);
CREATE INDEX IF NOT EXISTS idx_chunks_theme ON chunks(theme);
CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);
`, embeddingDim)
}

// Store wraps the SQLite database backing the Silver index: one row per
// chunk, mirrored into a vec0 vector table and an FTS5 lexical table.
type Store struct {
	db           *sql.DB
	embeddingDim int
}

// New opens (or creates) the index database at dbPath, matching the
// teacher's New(dbPath, embeddingDim) connection-pool and pragma settings.
func New(dbPath string, embeddingDim int) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("index: creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("index: opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		db.Close()
		return nil, fmt.Errorf("index: creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, embeddingDim: embeddingDim}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// UpsertChunk inserts or replaces one chunk row, keyed by its unique
// chunk_id (the spec's content-addressed identifier, not an autoincrement
// surrogate — so re-indexing the same chunk_id is idempotent).
func (s *Store) UpsertChunk(ctx context.Context, c esgevidence.Chunk, publishedAt *time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chunks (chunk_id, doc_id, org_id, year, page, theme, text, source_url, sha256, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			text = excluded.text,
			theme = excluded.theme,
			source_url = excluded.source_url,
			sha256 = excluded.sha256,
			published_at = excluded.published_at
	`, c.ChunkID, c.DocID, c.OrgID, c.Year, c.Page, c.Theme, c.Text, c.SourceURL, c.SHA256, publishedAt)
	if err != nil {
		return 0, fmt.Errorf("index: upsert chunk %s: %w", c.ChunkID, err)
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		return id, nil
	}
	var rowid int64
	if err := s.db.QueryRowContext(ctx, "SELECT rowid FROM chunks WHERE chunk_id = ?", c.ChunkID).Scan(&rowid); err != nil {
		return 0, fmt.Errorf("index: resolving rowid for %s: %w", c.ChunkID, err)
	}
	return rowid, nil
}

// RowID looks up the internal rowid for a chunk_id, used to address the
// vec0 table which is keyed by rowid, not chunk_id.
func (s *Store) RowID(ctx context.Context, chunkID string) (int64, error) {
	var rowid int64
	err := s.db.QueryRowContext(ctx, "SELECT rowid FROM chunks WHERE chunk_id = ?", chunkID).Scan(&rowid)
	if err != nil {
		return 0, fmt.Errorf("index: rowid for %s: %w", chunkID, err)
	}
	return rowid, nil
}

// InsertEmbedding stores a chunk's vector in the vec0 table (teacher's
// InsertEmbedding, re-keyed from an int64 chunk_id FK to this store's
// internal rowid).
func (s *Store) InsertEmbedding(ctx context.Context, rowid int64, embedding []float32) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO vec_chunks (rowid, embedding) VALUES (?, ?)",
		rowid, serializeFloat32(embedding))
	if err != nil {
		return fmt.Errorf("index: insert embedding: %w", err)
	}
	return nil
}

// VectorSearch runs a KNN query against the vec0 table, converting cosine
// distance to a similarity score (1 - distance), exactly as the teacher's
// VectorSearch does.
func (s *Store) VectorSearch(ctx context.Context, queryEmbedding []float32, k int) ([]esgevidence.RetrievalResult, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.chunk_id, v.distance
		FROM vec_chunks v
		JOIN chunks c ON c.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(queryEmbedding), k)
	if err != nil {
		return nil, fmt.Errorf("index: vector search: %w", err)
	}
	defer rows.Close()

	var results []esgevidence.RetrievalResult
	for rows.Next() {
		var chunkID string
		var distance float64
		if err := rows.Scan(&chunkID, &distance); err != nil {
			return nil, fmt.Errorf("index: scanning vector result: %w", err)
		}
		results = append(results, esgevidence.RetrievalResult{ChunkID: chunkID, VecScore: 1.0 - distance})
	}
	return results, rows.Err()
}

// FTSSearch runs an FTS5 BM25-ranked lexical query, converting FTS5's
// negative rank (lower is better) to a positive score, exactly as the
// teacher's FTSSearch does.
func (s *Store) FTSSearch(ctx context.Context, query string, limit int) ([]esgevidence.RetrievalResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.chunk_id, f.rank
		FROM chunks_fts f
		JOIN chunks c ON c.rowid = f.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY f.rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: fts search: %w", err)
	}
	defer rows.Close()

	var results []esgevidence.RetrievalResult
	for rows.Next() {
		var chunkID string
		var rank float64
		if err := rows.Scan(&chunkID, &rank); err != nil {
			return nil, fmt.Errorf("index: scanning fts result: %w", err)
		}
		results = append(results, esgevidence.RetrievalResult{ChunkID: chunkID, LexScore: -rank})
	}
	return results, rows.Err()
}

// PrefilterByOrgThemeYear implements the Retriever's prefilter tier (spec
// §4.6): equality match on org/theme, ordered by published_at DESC NULLS
// LAST then chunk_id ascending, capped at k.
func (s *Store) PrefilterByOrgThemeYear(ctx context.Context, orgID string, year int, theme string, k int) ([]string, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id FROM chunks
		WHERE org_id = ? AND year = ? AND (? = '' OR theme = ?)
		ORDER BY published_at IS NULL, published_at DESC, chunk_id ASC
		LIMIT ?
	`, orgID, year, theme, theme, k)
	if err != nil {
		return nil, fmt.Errorf("index: prefilter: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("index: scanning prefilter result: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of indexed chunks, used by the Retriever to
// distinguish "empty index" from "zero results for this query" (spec §4.6
// "empty index strict mode -> no_index").
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("index: counting chunks: %w", err)
	}
	return n, nil
}

// serializeFloat32 converts a float32 slice to little-endian bytes for
// sqlite-vec, exactly as the teacher's serializeFloat32 does.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

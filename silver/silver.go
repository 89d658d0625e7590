// Package silver implements C4, the Silver Consolidator: discovers a
// document's theme-partitioned Bronze files, concatenates and re-sorts
// them into one canonical table, and writes both parquet and jsonl
// representations plus a manifest (spec §4.4). Ported from
// original_source/scripts/bronze_to_silver.py's discover/load/hash/write
// pipeline into the teacher's atomic-write idiom.
package silver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/bronze"
	"github.com/brunobiangulo/esgevidence/canon"
)

const schemaVersion = 1

// Root computes the canonical silver directory for (org, year).
func Root(baseDir, orgID string, year int) string {
	return filepath.Join(baseDir, fmt.Sprintf("org_id=%s", orgID), fmt.Sprintf("year=%d", year))
}

// DiscoverThemePartitions globs bronze/org_id={X}/year={Y}/theme=*/*.parquet
// and returns the partition file paths in sorted order, matching
// bronze_to_silver.py's load_bronze_partitions "sorted(files)" determinism
// guarantee.
func DiscoverThemePartitions(bronzeBaseDir, orgID string, year int) ([]string, error) {
	pattern := filepath.Join(bronzeBaseDir, fmt.Sprintf("org_id=%s", orgID), fmt.Sprintf("year=%d", year), "theme=*", "*.parquet")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("silver: globbing bronze partitions: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadBronzePartitions reads every discovered partition file (in sorted
// path order) and concatenates their chunks, then re-sorts the combined
// table by evidence_id-equivalent key (chunk_id, since this pipeline's
// Chunk has no evidence_id until the Evidence Aggregator runs) and finally
// by chunk_id as the tiebreak (spec §4.4 "Merge").
func LoadBronzePartitions(bronzeBaseDir, orgID string, year int) ([]esgevidence.Chunk, error) {
	files, err := DiscoverThemePartitions(bronzeBaseDir, orgID, year)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, esgevidence.NewPipelineError(esgevidence.KindInputMissing,
			fmt.Sprintf("no bronze partitions found for org=%s year=%d", orgID, year), esgevidence.ErrNoBronzeData)
	}

	var all []esgevidence.Chunk
	for _, f := range files {
		chunks, err := bronze.Read(f)
		if err != nil {
			// A single unreadable theme partition is logged and skipped,
			// not fatal, matching bronze_to_silver.py's per-file try/except.
			slog.Warn("silver: skipping unreadable bronze partition", "file", f, "error", err)
			continue
		}
		all = append(all, chunks...)
	}
	if len(all) == 0 {
		return nil, esgevidence.NewPipelineError(esgevidence.KindInputMissing,
			fmt.Sprintf("no valid bronze data loaded for org=%s year=%d", orgID, year), esgevidence.ErrNoBronzeData)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ChunkID < all[j].ChunkID })
	return all, nil
}

// Consolidate runs the full C4 contract: discover, load, concat, sort,
// hash, and write both parquet and jsonl plus a manifest.
func Consolidate(bronzeBaseDir, silverBaseDir, orgID string, year int, overwrite bool, now time.Time) (esgevidence.SilverManifest, error) {
	chunks, err := LoadBronzePartitions(bronzeBaseDir, orgID, year)
	if err != nil {
		return esgevidence.SilverManifest{}, err
	}

	dir := Root(silverBaseDir, orgID, year)
	baseName := fmt.Sprintf("%s_%d_chunks", orgID, year)
	parquetPath := filepath.Join(dir, baseName+".parquet")
	jsonlPath := filepath.Join(dir, baseName+".jsonl")
	manifestPath := filepath.Join(dir, "ingestion_manifest.json")

	if !overwrite {
		if _, err := os.Stat(parquetPath); err == nil {
			return esgevidence.SilverManifest{}, esgevidence.NewPipelineError(esgevidence.KindIntegrityError,
				fmt.Sprintf("silver table already exists for org=%s year=%d (overwrite not requested)", orgID, year), nil)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return esgevidence.SilverManifest{}, fmt.Errorf("silver: mkdir %s: %w", dir, err)
	}

	if err := writeSilverParquetAtomic(dir, parquetPath, chunks); err != nil {
		return esgevidence.SilverManifest{}, err
	}
	if err := writeSilverJSONLAtomic(dir, jsonlPath, chunks); err != nil {
		return esgevidence.SilverManifest{}, err
	}

	hash, err := canon.HashRecords(chunks)
	if err != nil {
		return esgevidence.SilverManifest{}, fmt.Errorf("silver: hashing consolidated table: %w", err)
	}

	manifest := esgevidence.SilverManifest{
		OrgID:          orgID,
		Year:           year,
		RecordCount:    len(chunks),
		SchemaVersion:  schemaVersion,
		Themes:         distinctSortedThemes(chunks),
		DataHash:       hash,
		ParquetFile:    filepath.Base(parquetPath),
		JSONLFile:      filepath.Base(jsonlPath),
		SourceLayer:    "bronze",
		Transformation: "bronze_to_silver_consolidation",
		CreatedAt:      now,
	}

	if err := writeManifestAtomic(dir, manifestPath, manifest); err != nil {
		return esgevidence.SilverManifest{}, err
	}

	return manifest, nil
}

func distinctSortedThemes(chunks []esgevidence.Chunk) []string {
	seen := map[string]bool{}
	for _, c := range chunks {
		if c.Theme != "" {
			seen[c.Theme] = true
		}
	}
	themes := make([]string, 0, len(seen))
	for t := range seen {
		themes = append(themes, t)
	}
	sort.Strings(themes)
	return themes
}

func writeManifestAtomic(dir, finalPath string, manifest esgevidence.SilverManifest) error {
	data, err := canon.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("silver: marshal manifest: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-manifest-*")
	if err != nil {
		return fmt.Errorf("silver: create temp manifest: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("silver: write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("silver: close temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("silver: rename manifest into place: %w", err)
	}
	return nil
}

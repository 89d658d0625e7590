// Package bronze implements C3, the Bronze Writer: writes a theme-scoped
// partition of chunks to bronze/org_id={X}/year={Y}/theme={T}/ with
// temp-path-then-move atomicity and a sidecar manifest (spec §4.3).
package bronze

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/brunobiangulo/esgevidence"
	"github.com/brunobiangulo/esgevidence/canon"
)

const schemaVersion = 1

// Root computes the canonical bronze partition directory for (org, year,
// theme), matching spec §6's outbound artifact path convention.
func Root(baseDir, orgID string, year int, theme string) string {
	return filepath.Join(baseDir, fmt.Sprintf("org_id=%s", orgID), fmt.Sprintf("year=%d", year), fmt.Sprintf("theme=%s", theme))
}

// Write atomically persists one theme partition: the partition file is
// built in a temp path inside the target directory and renamed into place
// only once fully written, so a partition is always either fully present
// or fully absent (spec §4.3 "Atomicity"). overwrite=false refuses to
// replace an existing, already-committed partition (spec §4.3
// "Immutability").
func Write(baseDir, orgID string, year int, theme string, chunks []esgevidence.Chunk, sourceSHA256 []string, overwrite bool, now time.Time) (esgevidence.PartitionManifest, error) {
	dir := Root(baseDir, orgID, year, theme)
	partitionPath := filepath.Join(dir, fmt.Sprintf("%s_%d_%s.parquet", orgID, year, theme))
	manifestPath := filepath.Join(dir, "manifest.json")

	if !overwrite {
		if _, err := os.Stat(partitionPath); err == nil {
			return esgevidence.PartitionManifest{}, esgevidence.NewPipelineError(
				esgevidence.KindIntegrityError,
				fmt.Sprintf("bronze partition already exists for org=%s year=%d theme=%s (overwrite not requested)", orgID, year, theme),
				nil,
			)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return esgevidence.PartitionManifest{}, fmt.Errorf("bronze: mkdir %s: %w", dir, err)
	}

	sorted := make([]esgevidence.Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ChunkID < sorted[j].ChunkID })

	if err := writePartitionAtomic(dir, partitionPath, sorted); err != nil {
		return esgevidence.PartitionManifest{}, err
	}

	hash, err := canon.HashRecords(sorted)
	if err != nil {
		return esgevidence.PartitionManifest{}, fmt.Errorf("bronze: hashing partition: %w", err)
	}

	manifest := esgevidence.PartitionManifest{
		OrgID:           orgID,
		Year:            year,
		Theme:           theme,
		RowCount:        len(sorted),
		SchemaVersion:   schemaVersion,
		SourceSHA256:    sortedCopy(sourceSHA256),
		PartitionSHA256: hash,
		CreatedAt:       now,
	}

	if err := writeManifestAtomic(dir, manifestPath, manifest); err != nil {
		return esgevidence.PartitionManifest{}, err
	}

	return manifest, nil
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// writeManifestAtomic mirrors the temp-path-then-move discipline used for
// the partition file itself, so a crash between writing the partition and
// writing its manifest never leaves a manifest pointing at a half-written
// partition.
func writeManifestAtomic(dir, finalPath string, manifest esgevidence.PartitionManifest) error {
	data, err := canon.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("bronze: marshal manifest: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-manifest-*")
	if err != nil {
		return fmt.Errorf("bronze: create temp manifest: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("bronze: write temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("bronze: close temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("bronze: rename manifest into place: %w", err)
	}
	return nil
}

// Read loads a committed partition's chunks back from disk, used by Silver
// consolidation (spec §4.4 "Discover theme=* partitions").
func Read(partitionPath string) ([]esgevidence.Chunk, error) {
	return readPartition(partitionPath)
}

// ManifestPath returns the sidecar manifest path for a partition directory.
func ManifestPath(dir string) string {
	return filepath.Join(dir, "manifest.json")
}

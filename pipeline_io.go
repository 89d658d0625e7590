package esgevidence

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brunobiangulo/esgevidence/canon"
)

// atomicWriteJSON canonical-JSON-encodes v and writes it to finalPath via
// the same temp-file-then-rename discipline bronze.Write and
// silver.Consolidate use for their manifests, so a crash mid-write never
// leaves a partial output_contract.json or matrix_contract.json behind.
func atomicWriteJSON(finalPath string, v interface{}) error {
	data, err := canon.Marshal(v)
	if err != nil {
		return fmt.Errorf("pipeline: marshal %s: %w", finalPath, err)
	}
	dir := filepath.Dir(finalPath)
	tmp, err := os.CreateTemp(dir, ".tmp-contract-*")
	if err != nil {
		return fmt.Errorf("pipeline: create temp file for %s: %w", finalPath, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("pipeline: write temp file for %s: %w", finalPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pipeline: close temp file for %s: %w", finalPath, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pipeline: rename into place %s: %w", finalPath, err)
	}
	return nil
}

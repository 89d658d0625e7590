package silver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ActiveBackend reports the configured extraction backend ("docling" or
// "default"), read from the pipeline Config rather than an environment
// variable directly (ported from original_source/libs/retrieval/
// silver_locator.py:get_active_backend).
func ActiveBackend(parserBackend string) string {
	b := strings.ToLower(strings.TrimSpace(parserBackend))
	if b == "docling" {
		return "docling"
	}
	return "default"
}

// LocateChunksParquet resolves the path to a doc's consolidated chunk
// table, preferring the alternate-backend mirror (silver_docling/) when
// the docling backend is active and falling back to the standard silver/
// location otherwise (spec §6 "silver_docling/... alternate-backend
// mirror... locator prefers it, falls back to silver/"). Returns "" if
// neither location has the file.
func LocateChunksParquet(silverBaseDir, silverDoclingBaseDir, docID, orgID string, year int, parserBackend string) string {
	filename := fmt.Sprintf("%s_chunks.parquet", docID)

	if ActiveBackend(parserBackend) == "docling" && silverDoclingBaseDir != "" {
		candidate := filepath.Join(Root(silverDoclingBaseDir, orgID, year), filename)
		if fileExists(candidate) {
			return candidate
		}
	}

	candidate := filepath.Join(Root(silverBaseDir, orgID, year), filename)
	if fileExists(candidate) {
		return candidate
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package silver

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/brunobiangulo/esgevidence"
)

// parquetRow mirrors bronze's flat chunk projection; kept as a distinct
// type (rather than importing bronze's unexported parquetChunk) since the
// Silver table is a separately schema-versioned artifact (spec §4.4).
type parquetRow struct {
	ChunkID    string  `parquet:"name=chunk_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DocID      string  `parquet:"name=doc_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	OrgID      string  `parquet:"name=org_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Year       int32   `parquet:"name=year, type=INT32"`
	Page       int32   `parquet:"name=page, type=INT32"`
	Section    string  `parquet:"name=section, type=BYTE_ARRAY, convertedtype=UTF8"`
	Text       string  `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8"`
	CharStart  int32   `parquet:"name=char_start, type=INT32"`
	CharEnd    int32   `parquet:"name=char_end, type=INT32"`
	SHA256     string  `parquet:"name=sha256, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	SourceURL  string  `parquet:"name=source_url, type=BYTE_ARRAY, convertedtype=UTF8"`
	Theme      string  `parquet:"name=theme, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Quality    float64 `parquet:"name=quality, type=DOUBLE"`
	CleanState string  `parquet:"name=clean_state, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func toRow(c esgevidence.Chunk) parquetRow {
	return parquetRow{
		ChunkID: c.ChunkID, DocID: c.DocID, OrgID: c.OrgID, Year: int32(c.Year),
		Page: int32(c.Page), Section: c.Section, Text: c.Text,
		CharStart: int32(c.CharStart), CharEnd: int32(c.CharEnd), SHA256: c.SHA256,
		SourceURL: c.SourceURL, Theme: c.Theme, Quality: c.Quality, CleanState: c.CleanState,
	}
}

// writeSilverParquetAtomic writes the consolidated table to parquet via a
// temp-path-then-move, matching the Bronze Writer's atomicity discipline
// (spec §4.4 inherits §4.3's "never partially written" guarantee).
func writeSilverParquetAtomic(dir, finalPath string, chunks []esgevidence.Chunk) error {
	tmpPath := filepath.Join(dir, fmt.Sprintf(".tmp-%s", filepath.Base(finalPath)))
	defer os.Remove(tmpPath)

	fw, err := local.NewLocalFileWriter(tmpPath)
	if err != nil {
		return fmt.Errorf("silver: open parquet temp file: %w", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(parquetRow), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("silver: new parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, c := range chunks {
		if err := pw.Write(toRow(c)); err != nil {
			pw.WriteStop()
			fw.Close()
			return fmt.Errorf("silver: write parquet row %s: %w", c.ChunkID, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("silver: finalize parquet writer: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("silver: close parquet temp file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("silver: rename parquet into place: %w", err)
	}
	return nil
}

// writeSilverJSONLAtomic writes the same consolidated table as JSONL, one
// encoding/json object per line (Chunk struct field order), for manual
// inspection (spec §4.4 "Writes
// BOTH parquet + jsonl with identical content").
func writeSilverJSONLAtomic(dir, finalPath string, chunks []esgevidence.Chunk) error {
	tmpPath := filepath.Join(dir, fmt.Sprintf(".tmp-%s", filepath.Base(finalPath)))
	defer os.Remove(tmpPath)

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("silver: create jsonl temp file: %w", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, c := range chunks {
		if err := enc.Encode(c); err != nil {
			f.Close()
			return fmt.Errorf("silver: encode jsonl row %s: %w", c.ChunkID, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("silver: flush jsonl: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("silver: close jsonl temp file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("silver: rename jsonl into place: %w", err)
	}
	return nil
}

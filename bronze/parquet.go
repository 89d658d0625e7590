package bronze

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/brunobiangulo/esgevidence"
)

// parquetChunk is the flat, columnar-friendly projection of
// esgevidence.Chunk written to a bronze partition's parquet file.
type parquetChunk struct {
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

func toParquetChunk(c esgevidence.Chunk) parquetChunk {
	return parquetChunk{
		ChunkID:    c.ChunkID,
		DocID:      c.DocID,
		OrgID:      c.OrgID,
		Year:       int32(c.Year),
		Page:       int32(c.Page),
		Section:    c.Section,
		Text:       c.Text,
		CharStart:  int32(c.CharStart),
		CharEnd:    int32(c.CharEnd),
		SHA256:     c.SHA256,
		SourceURL:  c.SourceURL,
		Theme:      c.Theme,
		Quality:    c.Quality,
		CleanState: c.CleanState,
	}
}

func fromParquetChunk(p parquetChunk) esgevidence.Chunk {
	return esgevidence.Chunk{
		ChunkID:    p.ChunkID,
		DocID:      p.DocID,
		OrgID:      p.OrgID,
		Year:       int(p.Year),
		Page:       int(p.Page),
		Section:    p.Section,
		Text:       p.Text,
		CharStart:  int(p.CharStart),
		CharEnd:    int(p.CharEnd),
		SHA256:     p.SHA256,
		SourceURL:  p.SourceURL,
		Theme:      p.Theme,
		Quality:    p.Quality,
		CleanState: p.CleanState,
	}
}

// writePartitionAtomic writes chunks as parquet rows to a temp file in dir,
// then renames into place, so partitionPath only ever exists fully formed
// (spec §4.3 "temp-path-then-move").
func writePartitionAtomic(dir, partitionPath string, chunks []esgevidence.Chunk) error {
	tmpPath := filepath.Join(dir, fmt.Sprintf(".tmp-%s", filepath.Base(partitionPath)))
	defer os.Remove(tmpPath)

	fw, err := local.NewLocalFileWriter(tmpPath)
	if err != nil {
		return fmt.Errorf("bronze: open parquet temp file: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(parquetChunk), 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("bronze: new parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, c := range chunks {
		row := toParquetChunk(c)
		if err := pw.Write(row); err != nil {
			pw.WriteStop()
			fw.Close()
			return fmt.Errorf("bronze: write parquet row %s: %w", c.ChunkID, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("bronze: finalize parquet writer: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("bronze: close parquet temp file: %w", err)
	}

	if err := os.Rename(tmpPath, partitionPath); err != nil {
		return fmt.Errorf("bronze: rename parquet into place: %w", err)
	}
	return nil
}

// readPartition loads every row of a committed bronze partition file.
func readPartition(partitionPath string) ([]esgevidence.Chunk, error) {
	fr, err := local.NewLocalFileReader(partitionPath)
	if err != nil {
		return nil, fmt.Errorf("bronze: open parquet file %s: %w", partitionPath, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(parquetChunk), 4)
	if err != nil {
		return nil, fmt.Errorf("bronze: new parquet reader %s: %w", partitionPath, err)
	}
	defer pr.ReadStop()

	num := int(pr.GetNumRows())
	rows := make([]parquetChunk, num)
	if num > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("bronze: reading parquet rows %s: %w", partitionPath, err)
		}
	}

	out := make([]esgevidence.Chunk, num)
	for i, r := range rows {
		out[i] = fromParquetChunk(r)
	}
	return out, nil
}

package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVParser renders a CSV file as markdown-table-style text, one RawPage
// for the whole file (no native pagination in row-oriented formats). The
// pack carries no CSV library more capable than encoding/csv for this
// line-oriented record format (DESIGN.md).
type CSVParser struct{}

func (p *CSVParser) SupportedFormats() []string { return []string{"csv"} }

func (p *CSVParser) Parse(ctx context.Context, path string) ([]RawPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: opening CSV: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("extract: reading CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("extract: empty CSV")
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(row, " | "))
		b.WriteString(" |\n")
	}

	return []RawPage{{Page: 1, Text: b.String()}}, nil
}

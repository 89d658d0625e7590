package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXParser extracts company-IR workbooks (sustainability data frequently
// ships as spreadsheets alongside PDFs), rendering each sheet as one
// markdown-table-style page. Kept nearly as-is from the teacher's
// parser/xlsx.go, the only adaptation being the RawPage output shape in
// place of parser.Section.
type XLSXParser struct{}

func (p *XLSXParser) SupportedFormats() []string { return []string{"xlsx", "xls"} }

func (p *XLSXParser) Parse(ctx context.Context, path string) ([]RawPage, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: opening XLSX: %w", err)
	}
	defer f.Close()

	var pages []RawPage
	pageNum := 1
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}

		var b strings.Builder
		b.WriteString(sheet)
		b.WriteString("\n\n")
		for _, row := range rows {
			b.WriteString("| ")
			b.WriteString(strings.Join(row, " | "))
			b.WriteString(" |\n")
		}

		pages = append(pages, RawPage{Page: pageNum, Text: b.String()})
		pageNum++
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("extract: no data found in XLSX")
	}
	return pages, nil
}

package extract

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser extracts page-ordered text from a PDF, one RawPage per page
// number. Adapted from the teacher's parser/pdf.go: keeps the
// extractPageTextOrdered visual-line-grouping algorithm (PDF object order
// does not always match visual top-to-bottom order), drops image
// extraction and heading/section classification, which have no consumer
// in this pipeline's flat chunking contract (spec §4.2).
type PDFParser struct{}

func (p *PDFParser) SupportedFormats() []string { return []string{"pdf"} }

func (p *PDFParser) Parse(ctx context.Context, path string) ([]RawPage, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: opening PDF: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	var pages []RawPage

	for i := 1; i <= totalPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := extractPageTextOrdered(page)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		pages = append(pages, RawPage{Page: i, Text: text})
	}

	if len(pages) == 0 {
		pages = append(pages, RawPage{Page: 1, Text: "Unable to extract text from PDF"})
	}

	return pages, nil
}

// extractPageTextOrdered groups a page's Content().Text elements into
// visual lines by Y proximity, then sorts those lines by Y descending (PDF
// coordinate origin is bottom-left, so higher Y is higher on the page),
// exactly as the teacher's parser/pdf.go does.
func extractPageTextOrdered(page pdf.Page) (string, error) {
	content := page.Content()
	if len(content.Text) == 0 {
		return page.GetPlainText(nil)
	}

	const lineTolerance = 3.0

	type visualLine struct {
		y   float64
		buf strings.Builder
	}

	var lines []*visualLine
	var cur *visualLine

	for _, t := range content.Text {
		if cur == nil || math.Abs(t.Y-cur.y) > lineTolerance {
			lines = append(lines, &visualLine{y: t.Y})
			cur = lines[len(lines)-1]
		}
		cur.buf.WriteString(t.S)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})

	var parts []string
	for _, l := range lines {
		text := strings.TrimSpace(l.buf.String())
		if text != "" {
			parts = append(parts, text)
		}
	}

	result := strings.Join(parts, "\n")
	if strings.TrimSpace(result) == "" {
		return page.GetPlainText(nil)
	}
	return result, nil
}

// PageText re-extracts the raw text of one page directly from a source
// PDF, without chunking, for gate G5's alignment audit (spec §4.8 "extract
// the raw page text from the source PDF"). ok is false when the PDF has no
// such page.
func PageText(path string, page int) (text string, ok bool, err error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("extract: opening PDF: %w", err)
	}
	defer f.Close()

	if page < 1 || page > reader.NumPage() {
		return "", false, nil
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		return "", false, nil
	}
	txt, err := extractPageTextOrdered(p)
	if err != nil {
		return "", false, fmt.Errorf("extract: extracting page %d: %w", page, err)
	}
	return strings.TrimSpace(txt), true, nil
}

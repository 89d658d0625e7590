// Package extract implements C2, the Extractor: turns a raw acquired
// document into an ordered list of page-tagged Chunk values, via a
// format-specific capability interface selected by a data-driven registry
// (spec §4.2, §9 "mixin-like extractor classes -> capability interface").
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brunobiangulo/esgevidence"
)

// RawPage is the intermediate, format-agnostic unit a format parser
// produces before chunking: a contiguous run of text tagged with the page
// it came from (1 for formats with no native pagination).
type RawPage struct {
	Page int
	Text string
}

// FormatParser extracts ordered, page-tagged text from one file format.
type FormatParser interface {
	Parse(ctx context.Context, path string) ([]RawPage, error)
	SupportedFormats() []string
}

// Registry maps a lowercase file extension to the parser that handles it.
type Registry struct {
	parsers map[string]FormatParser
}

// NewRegistry wires every format this pipeline supports: PDF, HTML, TXT,
// CSV, JSONL (spec §4.2 Inputs) plus XLSX (SPEC_FULL §B supplemental
// company-IR workbook format).
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]FormatParser)}
	for _, p := range []FormatParser{
		&PDFParser{},
		&XLSXParser{},
		&HTMLParser{},
		&TXTParser{},
		&CSVParser{},
		&JSONLParser{},
	} {
		for _, f := range p.SupportedFormats() {
			r.parsers[f] = p
		}
	}
	return r
}

// Register adds or overrides the parser for a format.
func (r *Registry) Register(format string, p FormatParser) {
	r.parsers[format] = p
}

// Get resolves a parser by file extension, without the leading dot.
func (r *Registry) Get(format string) (FormatParser, error) {
	p, ok := r.parsers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("extract: no parser for format %q", format)
	}
	return p, nil
}

// formatOf derives the registry key from a file path's extension.
func formatOf(path string) string {
	ext := filepath.Ext(path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Extract runs the full C2 contract: resolve the file's parser by
// extension, extract raw pages, then chunk them with the sliding-window
// chunker (spec §4.2). docID, chunkSize and overlap come from the caller
// (the pipeline orchestrator); sourceURL and org/year are stamped onto
// every resulting chunk for downstream provenance.
func Extract(ctx context.Context, reg *Registry, path, docID, orgID string, year, chunkSize, overlap int, sourceURL string) ([]esgevidence.Chunk, error) {
	format := formatOf(path)
	parser, err := reg.Get(format)
	if err != nil {
		return nil, err
	}

	pages, err := parser.Parse(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract: parsing %s: %w", path, err)
	}

	return ChunkPages(pages, docID, orgID, year, chunkSize, overlap, sourceURL), nil
}

package extract

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// JSONLParser treats each line of a JSONL file as one record, rendering it
// back to compact canonical-order-independent text for chunking. No
// third-party JSONL library appears anywhere in the pack; encoding/json's
// line-oriented decode is sufficient (DESIGN.md).
type JSONLParser struct{}

func (p *JSONLParser) SupportedFormats() []string { return []string{"jsonl"} }

func (p *JSONLParser) Parse(ctx context.Context, path string) ([]RawPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: opening JSONL: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lineNo++
		var rec interface{}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("extract: JSONL line %d: %w", lineNo, err)
		}
		pretty, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("extract: re-marshal JSONL line %d: %w", lineNo, err)
		}
		b.Write(pretty)
		b.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("extract: scanning JSONL: %w", err)
	}
	if lineNo == 0 {
		return nil, fmt.Errorf("extract: empty JSONL")
	}

	return []RawPage{{Page: 1, Text: b.String()}}, nil
}

package extract

import (
	"context"
	"fmt"
	"os"
)

// TXTParser passes a plain-text file through as a single RawPage.
type TXTParser struct{}

func (p *TXTParser) SupportedFormats() []string { return []string{"txt"} }

func (p *TXTParser) Parse(ctx context.Context, path string) ([]RawPage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: reading TXT: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("extract: empty TXT file")
	}
	return []RawPage{{Page: 1, Text: string(data)}}, nil
}

package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// HTMLParser extracts visible text from CDP web responses and IR HTML
// pages (spec §4.2 Inputs). One RawPage is emitted for the whole document;
// pagination over HTML has no native concept, so every chunk of an HTML
// document carries page 1.
type HTMLParser struct{}

func (p *HTMLParser) SupportedFormats() []string { return []string{"html", "htm"} }

func (p *HTMLParser) Parse(ctx context.Context, path string) ([]RawPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: opening HTML: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("extract: parsing HTML: %w", err)
	}

	var b strings.Builder
	extractVisibleText(doc, &b)

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, fmt.Errorf("extract: no text content in HTML")
	}
	return []RawPage{{Page: 1, Text: text}}, nil
}

// extractVisibleText walks the DOM tree collecting text node content,
// skipping <script> and <style> subtrees.
func extractVisibleText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	if n.Type == html.TextNode {
		trimmed := strings.TrimSpace(n.Data)
		if trimmed != "" {
			b.WriteString(trimmed)
			b.WriteString("\n")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractVisibleText(c, b)
	}
}

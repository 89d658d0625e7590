package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// binaryThreshold is the control-character ratio above which text is
// treated as binary-like (text_clean.py's is_binaryish default).
const binaryThreshold = 0.15

var multiSpace = regexp.MustCompile(` +`)
var multiNewline = regexp.MustCompile(`\n{3,}`)

// isBinaryLike reports whether text looks like it is binary data rather
// than prose: either it contains a null byte, or more than threshold of
// its runes are control/non-printable (text_clean.py:is_binaryish).
func isBinaryLike(text string) bool {
	if text == "" {
		return true // text_clean.py's is_binary_like alias treats empty as binary.
	}
	if strings.ContainsRune(text, 0) {
		return true
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return true
	}
	var bad int
	for _, r := range runes {
		if isControlOrNonPrintable(r) {
			bad++
		}
	}
	return float64(bad)/float64(len(runes)) > binaryThreshold
}

func isControlOrNonPrintable(r rune) bool {
	if r == '\n' || r == '\r' || r == '\t' {
		return false
	}
	if unicode.IsControl(r) {
		return true
	}
	return !unicode.IsPrint(r) && !unicode.IsSpace(r)
}

// cleanText strips null bytes, strips control characters other than
// \n\r\t, collapses runs of spaces to one, and collapses 3+ consecutive
// newlines to exactly two (text_clean.py:clean_text, preserve_newlines=True).
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 {
			continue
		}
		if isControlOrNonPrintable(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	out = multiSpace.ReplaceAllString(out, " ")
	out = multiNewline.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// CleanStatus is the text-quality triage state carried alongside a chunk
// (SPEC_FULL §D, text_clean.py:validate_and_clean's four-way status).
type CleanStatus string

const (
	StatusOK      CleanStatus = "ok"
	StatusCleaned CleanStatus = "cleaned"
	StatusSuspect CleanStatus = "suspect"
	StatusEmpty   CleanStatus = "empty"
)

// CleanResult is the outcome of validating and cleaning one chunk's raw
// text.
type CleanResult struct {
	Text    string
	Status  CleanStatus
	Quality float64
}

// ValidateAndClean ports text_clean.py:validate_and_clean. It always
// returns cleaned text; Status records how much work that took, and
// whether the result still looks suspect.
func ValidateAndClean(raw string) CleanResult {
	if strings.TrimSpace(raw) == "" {
		return CleanResult{Text: "", Status: StatusEmpty, Quality: 0}
	}

	if isBinaryLike(raw) {
		cleaned := cleanText(raw)
		status := StatusCleaned
		if isBinaryLike(cleaned) {
			status = StatusSuspect
		}
		return CleanResult{Text: cleaned, Status: status, Quality: QualityScore(cleaned)}
	}

	cleaned := cleanText(raw)
	status := StatusOK
	if len(raw) > 0 && float64(len(cleaned)) <= 0.8*float64(len(raw)) {
		status = StatusCleaned
	}
	return CleanResult{Text: cleaned, Status: status, Quality: QualityScore(cleaned)}
}

// QualityScore is the fraction-printable quality measure in [0, 1], halved
// if the text is binary-like (spec §4.2, text_clean.py:get_text_quality_score).
func QualityScore(text string) float64 {
	if text == "" {
		return 0
	}
	runes := []rune(text)
	var printable int
	for _, r := range runes {
		if !isControlOrNonPrintable(r) || r == '\n' || r == '\t' || r == '\r' {
			printable++
		}
	}
	score := float64(printable) / float64(len(runes))
	if isBinaryLike(text) {
		score *= 0.5
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// ExtractCleanQuote returns a cleaned, length-capped excerpt of text,
// truncating with "..." when it exceeds maxLength (text_clean.py:
// extract_clean_quote).
func ExtractCleanQuote(text string, maxLength int) string {
	cleaned := cleanText(text)
	if maxLength <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxLength {
		return cleaned
	}
	return string(runes[:maxLength]) + "..."
}

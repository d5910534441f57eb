package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/bryanwahyu/maturity-report/internal/domain/report"
)

// Extractor implements report.TextExtractor on top of ledongthuc/pdf.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract pulls plain text out of PDF bytes. A well-formed PDF with no text
// layer yields report.NoExtractableTextError; unreadable bytes yield a
// wrapped parse error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (extracted report.ExtractedText, err error) {
	if err := ctx.Err(); err != nil {
		return report.ExtractedText{}, err
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return report.ExtractedText{}, fmt.Errorf("opening PDF: %w", err)
	}

	pages := reader.NumPage()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return report.ExtractedText{}, fmt.Errorf("extracting plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return report.ExtractedText{}, fmt.Errorf("reading text buffer: %w", err)
	}

	result := report.ExtractedText{Text: buf.String(), Pages: pages}
	if result.Empty() {
		return report.ExtractedText{}, &report.NoExtractableTextError{Pages: pages}
	}
	return result, nil
}

package report

import (
	"fmt"
	"regexp"
	"strings"
)

// UploadedDocument is the raw request-scoped upload. It is discarded after
// text extraction and never persisted.
type UploadedDocument struct {
	FileName    string
	ContentType string
	Size        int64
	Data        []byte
}

// ExtractedText is the plain text pulled out of an uploaded document.
type ExtractedText struct {
	Text  string
	Pages int
}

// Empty reports whether extraction produced no usable text.
func (e ExtractedText) Empty() bool {
	return strings.TrimSpace(e.Text) == ""
}

// TruncationNotice is appended whenever document text is cut to the input
// budget. Idempotency of TruncateForAnalysis depends on this exact suffix.
const TruncationNotice = "\n\n[Texto truncado para ajustarse al límite de tokens. Análisis basado en las primeras secciones del documento.]"

// TruncateForAnalysis cuts text to at most maxChars characters and appends
// TruncationNotice. Applying it twice with the same budget is a no-op on the
// second pass.
func TruncateForAnalysis(text string, maxChars int) string {
	if maxChars <= 0 || strings.HasSuffix(text, TruncationNotice) {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + TruncationNotice
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// SanitizeFileName replaces every character outside [A-Za-z0-9.-] with '_'.
func SanitizeFileName(name string) string {
	return unsafeFileChars.ReplaceAllString(name, "_")
}

// ArtifactKey derives the stored object name for one rendered artifact:
// report_<epochMillis>_<sanitizedBase>.<ext>
func ArtifactKey(epochMillis int64, base, ext string) string {
	return fmt.Sprintf("report_%d_%s.%s", epochMillis, SanitizeFileName(base), ext)
}

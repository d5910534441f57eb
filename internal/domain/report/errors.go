package report

import "fmt"

// ValidationError rejects malformed request input (missing file, wrong media
// type, unparseable body). Maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// PayloadTooLargeError rejects uploads past the configured ceiling. Maps to 413.
type PayloadTooLargeError struct {
	LimitMB int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("file too large, maximum size is %dMB", e.LimitMB)
}

// NoExtractableTextError means extraction ran but yielded no text. This is a
// user-actionable failure, distinct from a corrupt or unsupported file.
type NoExtractableTextError struct {
	Pages int
}

func (e *NoExtractableTextError) Error() string {
	return "PDF contains no extractable text"
}

// Type is the machine-readable tag surfaced in the error envelope details.
func (e *NoExtractableTextError) Type() string { return "PDF_NO_TEXT" }

// Suggestions enumerates likely remediations for the client.
func (e *NoExtractableTextError) Suggestions() []string {
	return []string{
		"The PDF may contain only scanned images; run OCR before uploading",
		"Export the document again as a text-based PDF",
		"Verify the file is not corrupted or password-protected",
	}
}

// MissingFieldError names the first absent required top-level field of an
// AnalysisResult-shaped body. Maps to 400.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// Violation is one field-level schema failure.
type Violation struct {
	Path       string `json:"path"`
	Constraint string `json:"constraint"`
	Actual     string `json:"actual,omitempty"`
}

// SchemaValidationError carries every violation found, not just the first.
type SchemaValidationError struct {
	Violations []Violation
}

func (e *SchemaValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "analysis result does not match schema"
	}
	v := e.Violations[0]
	return fmt.Sprintf("analysis result does not match schema: %d violation(s), first at %q: %s",
		len(e.Violations), v.Path, v.Constraint)
}

// AnalysisError wraps any failure of the analysis stage: transport errors,
// empty completions, unparseable or schema-invalid replies. Maps to 502.
// The upstream cause is logged server-side, never echoed verbatim with secrets.
type AnalysisError struct {
	Cause error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("failed to analyze document with AI: %v", e.Cause)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// RenderError is a fatal artifact-generation failure. Maps to 500.
type RenderError struct {
	Artifact string // "HTML" or "Word"
	Cause    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s artifact: %v", e.Artifact, e.Cause)
}

func (e *RenderError) Unwrap() error { return e.Cause }

// StorageError is a fatal persistence failure. The message names the logical
// artifact, never credentials. Maps to 500.
type StorageError struct {
	Artifact string // "HTML", "JSON" or "Word"
	Cause    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to upload %s artifact to storage", e.Artifact)
}

func (e *StorageError) Unwrap() error { return e.Cause }

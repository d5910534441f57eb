package report

import (
	"context"
	"time"
)

// RenderMeta carries display-only parameters into the renderers.
type RenderMeta struct {
	SourceFileName string
	GeneratedAt    time.Time
}

// TextExtractor port (PDF-to-text collaborator)
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (ExtractedText, error)
}

// Analyzer port (LLM collaborator). Returns the raw JSON completion; the
// orchestrator validates it against the schema.
type Analyzer interface {
	Analyze(ctx context.Context, documentText string) (string, error)
}

// HTMLRenderer port
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, res *AnalysisResult, meta RenderMeta) ([]byte, error)
}

// WordRenderer port
type WordRenderer interface {
	RenderWord(ctx context.Context, res *AnalysisResult, meta RenderMeta) ([]byte, error)
}

// ArtifactStore port (object-storage collaborator)
type ArtifactStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Clock abstraction so timestamped filenames are testable
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

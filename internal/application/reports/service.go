package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanwahyu/maturity-report/internal/domain/report"
)

// Content types of the produced artifacts.
const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
	// ContentTypeWord is exported for the attachment response headers.
	ContentTypeWord = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const acceptedUploadType = "application/pdf"

// Timeouts bound each pipeline stage. Zero disables the bound for that stage.
type Timeouts struct {
	Extract time.Duration
	Analyze time.Duration
	Render  time.Duration
	Upload  time.Duration
}

// Service coordinates the request-scoped pipeline:
// RECEIVED → EXTRACTING → ANALYZING → RENDERING → PERSISTING → COMPLETED.
// It is stateless across requests and safe for concurrent use.
type Service struct {
	Extractor report.TextExtractor
	Analyzer  report.Analyzer
	Validator *report.Validator
	HTML      report.HTMLRenderer
	Word      report.WordRenderer
	Artifacts report.ArtifactStore
	Clock     report.Clock
	Logger    zerolog.Logger

	MaxFileSizeMB int
	MaxInputChars int
	Timeouts      Timeouts
}

// GenerateReportResult is the success payload of the full upload pipeline.
type GenerateReportResult struct {
	ReportURL string                 `json:"reportUrl"`
	JSONURL   string                 `json:"jsonUrl"`
	Analysis  *report.AnalysisResult `json:"analysis"`
}

// FullReportResult is the success payload of the pre-analyzed full pipeline.
type FullReportResult struct {
	HTMLURL  string                 `json:"htmlUrl"`
	JSONURL  string                 `json:"jsonUrl"`
	WordURL  string                 `json:"wordUrl"`
	Analysis *report.AnalysisResult `json:"analysis"`
}

// WordExport is a rendered .docx plus its download filename.
type WordExport struct {
	FileName string
	Data     []byte
}

// GenerateReport runs the complete pipeline for one uploaded document.
func (s *Service) GenerateReport(ctx context.Context, upload report.UploadedDocument) (*GenerateReportResult, error) {
	if err := s.checkUpload(upload); err != nil {
		return nil, err
	}

	log := s.Logger.With().
		Str("fileName", upload.FileName).
		Int64("fileSize", upload.Size).
		Logger()
	log.Info().Msg("processing report generation request")

	extracted, err := s.extract(ctx, upload.Data)
	if err != nil {
		log.Error().Err(err).Str("stage", "extracting").Msg("text extraction failed")
		return nil, err
	}
	log.Info().Int("pages", extracted.Pages).Int("textLength", len(extracted.Text)).Msg("PDF text extracted")

	analysis, err := s.analyze(ctx, extracted.Text)
	if err != nil {
		log.Error().Err(err).Str("stage", "analyzing").Msg("analysis failed")
		return nil, err
	}
	log.Info().Float64("overallScore", analysis.ResultadoGlobal.PuntuacionTotal).Msg("analysis completed")

	htmlBytes, err := s.renderHTML(ctx, analysis, upload.FileName)
	if err != nil {
		log.Error().Err(err).Str("stage", "rendering").Msg("dashboard rendering failed")
		return nil, err
	}

	ts := s.Clock.Now().UnixMilli()
	reportURL, err := s.upload(ctx, "HTML", report.ArtifactKey(ts, upload.FileName, "html"), htmlBytes, contentTypeHTML)
	if err != nil {
		log.Error().Err(err).Str("stage", "persisting").Msg("HTML upload failed")
		return nil, err
	}
	jsonURL, err := s.uploadJSON(ctx, ts, upload.FileName, analysis)
	if err != nil {
		log.Error().Err(err).Str("stage", "persisting").Msg("JSON upload failed")
		return nil, err
	}

	log.Info().Str("reportUrl", reportURL).Str("jsonUrl", jsonURL).Msg("report generated")
	return &GenerateReportResult{ReportURL: reportURL, JSONURL: jsonURL, Analysis: analysis}, nil
}

// ExportWord validates a caller-supplied analysis body and renders it to a
// Word document without touching extraction, analysis or storage.
func (s *Service) ExportWord(ctx context.Context, body []byte) (*WordExport, error) {
	analysis, err := s.validateBody(body)
	if err != nil {
		return nil, err
	}

	data, err := s.renderWord(ctx, analysis)
	if err != nil {
		s.Logger.Error().Err(err).Str("stage", "rendering").Msg("word rendering failed")
		return nil, err
	}

	name := report.ArtifactKey(s.Clock.Now().UnixMilli(), analysis.Cliente, "docx")
	return &WordExport{FileName: name, Data: data}, nil
}

// GenerateFullReport validates a caller-supplied analysis body, renders every
// artifact and persists all three.
func (s *Service) GenerateFullReport(ctx context.Context, body []byte) (*FullReportResult, error) {
	analysis, err := s.validateBody(body)
	if err != nil {
		return nil, err
	}

	log := s.Logger.With().Str("client", analysis.Cliente).Logger()

	htmlBytes, err := s.renderHTML(ctx, analysis, "")
	if err != nil {
		log.Error().Err(err).Str("stage", "rendering").Msg("dashboard rendering failed")
		return nil, err
	}
	wordBytes, err := s.renderWord(ctx, analysis)
	if err != nil {
		log.Error().Err(err).Str("stage", "rendering").Msg("word rendering failed")
		return nil, err
	}

	ts := s.Clock.Now().UnixMilli()
	base := analysis.Cliente
	htmlURL, err := s.upload(ctx, "HTML", report.ArtifactKey(ts, base, "html"), htmlBytes, contentTypeHTML)
	if err != nil {
		log.Error().Err(err).Str("stage", "persisting").Msg("HTML upload failed")
		return nil, err
	}
	jsonURL, err := s.uploadJSON(ctx, ts, base, analysis)
	if err != nil {
		log.Error().Err(err).Str("stage", "persisting").Msg("JSON upload failed")
		return nil, err
	}
	wordURL, err := s.upload(ctx, "Word", report.ArtifactKey(ts, base, "docx"), wordBytes, ContentTypeWord)
	if err != nil {
		log.Error().Err(err).Str("stage", "persisting").Msg("Word upload failed")
		return nil, err
	}

	log.Info().Str("htmlUrl", htmlURL).Str("wordUrl", wordURL).Msg("full report generated")
	return &FullReportResult{HTMLURL: htmlURL, JSONURL: jsonURL, WordURL: wordURL, Analysis: analysis}, nil
}

//
// ==== stages ====
//

func (s *Service) checkUpload(upload report.UploadedDocument) error {
	if len(upload.Data) == 0 {
		return &report.ValidationError{Message: "No file uploaded. Please provide a PDF file."}
	}
	if mediaType(upload.ContentType) != acceptedUploadType {
		return &report.ValidationError{Message: "Only PDF files are allowed"}
	}
	if upload.Size > int64(s.MaxFileSizeMB)*1024*1024 {
		return &report.PayloadTooLargeError{LimitMB: s.MaxFileSizeMB}
	}
	return nil
}

func (s *Service) extract(ctx context.Context, data []byte) (report.ExtractedText, error) {
	ctx, cancel := stageContext(ctx, s.Timeouts.Extract)
	defer cancel()

	extracted, err := s.Extractor.Extract(ctx, data)
	if err != nil {
		var noText *report.NoExtractableTextError
		if errors.As(err, &noText) {
			return report.ExtractedText{}, err
		}
		return report.ExtractedText{}, &report.ValidationError{
			Message: "Unable to extract text from PDF. Please ensure the file is not corrupted or password-protected.",
		}
	}
	return extracted, nil
}

func (s *Service) analyze(ctx context.Context, text string) (*report.AnalysisResult, error) {
	ctx, cancel := stageContext(ctx, s.Timeouts.Analyze)
	defer cancel()

	truncated := report.TruncateForAnalysis(text, s.MaxInputChars)
	if len(truncated) != len(text) {
		s.Logger.Warn().
			Int("originalLength", len(text)).
			Int("truncatedLength", len(truncated)).
			Msg("document text truncated to input budget")
	}

	raw, err := s.Analyzer.Analyze(ctx, truncated)
	if err != nil {
		return nil, &report.AnalysisError{Cause: err}
	}
	analysis, err := s.Validator.Validate([]byte(raw))
	if err != nil {
		return nil, &report.AnalysisError{Cause: err}
	}
	return analysis, nil
}

// validateBody runs the export-path validation: required-field presence
// first (naming the first missing field), then full schema validation.
func (s *Service) validateBody(body []byte) (*report.AnalysisResult, error) {
	if err := s.Validator.CheckRequiredFields(body); err != nil {
		return nil, err
	}
	return s.Validator.Validate(body)
}

func (s *Service) renderHTML(ctx context.Context, analysis *report.AnalysisResult, sourceFile string) ([]byte, error) {
	ctx, cancel := stageContext(ctx, s.Timeouts.Render)
	defer cancel()

	meta := report.RenderMeta{SourceFileName: sourceFile, GeneratedAt: s.Clock.Now()}
	data, err := s.HTML.RenderHTML(ctx, analysis, meta)
	if err != nil {
		return nil, &report.RenderError{Artifact: "HTML", Cause: err}
	}
	return data, nil
}

func (s *Service) renderWord(ctx context.Context, analysis *report.AnalysisResult) ([]byte, error) {
	ctx, cancel := stageContext(ctx, s.Timeouts.Render)
	defer cancel()

	meta := report.RenderMeta{GeneratedAt: s.Clock.Now()}
	data, err := s.Word.RenderWord(ctx, analysis, meta)
	if err != nil {
		return nil, &report.RenderError{Artifact: "Word", Cause: err}
	}
	return data, nil
}

func (s *Service) upload(ctx context.Context, artifact, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := stageContext(ctx, s.Timeouts.Upload)
	defer cancel()

	url, err := s.Artifacts.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", &report.StorageError{Artifact: artifact, Cause: err}
	}
	return url, nil
}

func (s *Service) uploadJSON(ctx context.Context, ts int64, base string, analysis *report.AnalysisResult) (string, error) {
	payload := struct {
		SchemaVersion string `json:"schemaVersion"`
		*report.AnalysisResult
	}{report.SchemaVersion, analysis}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", &report.StorageError{Artifact: "JSON", Cause: err}
	}
	return s.upload(ctx, "JSON", report.ArtifactKey(ts, base, "json"), data, contentTypeJSON)
}

func stageContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// mediaType strips any parameters from a Content-Type header value.
func mediaType(ct string) string {
	base, _, _ := strings.Cut(ct, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

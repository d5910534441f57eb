package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/maturity-report/internal/application/reports"
	"github.com/bryanwahyu/maturity-report/internal/domain/report"
	"github.com/bryanwahyu/maturity-report/internal/middleware"
)

// Options carry the request-surface limits into the router.
type Options struct {
	MaxFileSizeMB int
	Version       string
}

type Router struct {
	svc  *reports.Service
	opts Options
	log  zerolog.Logger
}

// NewRouter builds the HTTP surface around the report service.
func NewRouter(svc *reports.Service, opts Options, log zerolog.Logger) http.Handler {
	r := &Router{svc: svc, opts: opts, log: log}
	mux := chi.NewRouter()

	mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, errorEnvelope{Status: "error", Message: "Route not found"})
	})

	mux.Get("/health", middleware.HealthHandler(opts.Version))
	mux.Get("/api/status", middleware.StatusHandler(opts.Version))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/generate-report", r.wrap(r.handleGenerateReport))
		rt.Post("/export-word", r.wrap(r.handleExportWord))
		rt.Post("/generate-full-report", r.wrap(r.handleGenerateFullReport))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type successEnvelope struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// wrap maps every stage-level error to exactly one HTTP response. Full
// diagnostic detail goes to the log only; clients never see stack traces.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		status, envelope := mapError(err, r.opts.MaxFileSizeMB)
		if status >= http.StatusInternalServerError {
			r.log.Error().Err(err).Str("path", req.URL.Path).Msg("request failed")
		} else {
			r.log.Warn().Err(err).Str("path", req.URL.Path).Msg("request rejected")
		}
		middleware.IncrementReportsFailed()
		writeError(w, status, envelope)
	}
}

func mapError(err error, maxFileSizeMB int) (int, errorEnvelope) {
	var (
		validationErr *report.ValidationError
		tooLargeErr   *report.PayloadTooLargeError
		maxBytesErr   *http.MaxBytesError
		noTextErr     *report.NoExtractableTextError
		missingErr    *report.MissingFieldError
		schemaErr     *report.SchemaValidationError
		analysisErr   *report.AnalysisError
		renderErr     *report.RenderError
		storageErr    *report.StorageError
	)

	switch {
	case errors.As(err, &noTextErr):
		return http.StatusBadRequest, errorEnvelope{
			Status:  "error",
			Message: "The PDF contains no extractable text",
			Details: map[string]any{
				"type":        noTextErr.Type(),
				"suggestions": noTextErr.Suggestions(),
			},
		}
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge, errorEnvelope{
			Status:  "error",
			Message: fmt.Sprintf("File too large. Maximum size is %dMB", tooLargeErr.LimitMB),
		}
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, errorEnvelope{
			Status:  "error",
			Message: fmt.Sprintf("File too large. Maximum size is %dMB", maxFileSizeMB),
		}
	case errors.As(err, &missingErr):
		return http.StatusBadRequest, errorEnvelope{
			Status:  "error",
			Message: fmt.Sprintf("Missing required field: %s", missingErr.Field),
		}
	// Checked before the schema case: an AnalysisError may wrap a
	// SchemaValidationError, and an invalid completion is the upstream's
	// fault, not the client's. Violations from the LLM stay in the log.
	case errors.As(err, &analysisErr):
		return http.StatusBadGateway, errorEnvelope{
			Status:  "error",
			Message: "Failed to analyze document with AI",
		}
	case errors.As(err, &schemaErr):
		return http.StatusBadRequest, errorEnvelope{
			Status:  "error",
			Message: "Analysis data does not match the expected schema",
			Details: map[string]any{"violations": schemaErr.Violations},
		}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, errorEnvelope{
			Status:  "error",
			Message: validationErr.Message,
		}
	case errors.As(err, &renderErr):
		return http.StatusInternalServerError, errorEnvelope{
			Status:  "error",
			Message: fmt.Sprintf("Failed to generate %s report", renderErr.Artifact),
		}
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, errorEnvelope{
			Status:  "error",
			Message: fmt.Sprintf("Failed to upload %s artifact to storage", storageErr.Artifact),
		}
	default:
		return http.StatusInternalServerError, errorEnvelope{
			Status:  "error",
			Message: "Internal server error",
		}
	}
}

// POST /api/generate-report (multipart form, field "file")
func (r *Router) handleGenerateReport(w http.ResponseWriter, req *http.Request) error {
	maxBytes := int64(r.opts.MaxFileSizeMB)*1024*1024 + 1<<20 // limit plus multipart overhead
	req.Body = http.MaxBytesReader(w, req.Body, maxBytes)

	file, header, err := req.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &report.PayloadTooLargeError{LimitMB: r.opts.MaxFileSizeMB}
		}
		return &report.ValidationError{Message: "No file uploaded. Please provide a PDF file."}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &report.PayloadTooLargeError{LimitMB: r.opts.MaxFileSizeMB}
		}
		return err
	}

	upload := report.UploadedDocument{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}

	result, err := r.svc.GenerateReport(req.Context(), upload)
	if err != nil {
		return err
	}

	middleware.IncrementReportsGenerated()
	return writeJSON(w, http.StatusOK, successEnvelope{Status: "success", Data: result})
}

// POST /api/export-word (JSON body = analysis-result object)
func (r *Router) handleExportWord(w http.ResponseWriter, req *http.Request) error {
	body, err := readJSONBody(w, req)
	if err != nil {
		return err
	}

	export, err := r.svc.ExportWord(req.Context(), body)
	if err != nil {
		return err
	}

	middleware.IncrementWordExports()
	w.Header().Set("Content-Type", reports.ContentTypeWord)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(export.Data)
	return err
}

// POST /api/generate-full-report (JSON body = analysis-result object)
func (r *Router) handleGenerateFullReport(w http.ResponseWriter, req *http.Request) error {
	body, err := readJSONBody(w, req)
	if err != nil {
		return err
	}

	result, err := r.svc.GenerateFullReport(req.Context(), body)
	if err != nil {
		return err
	}

	middleware.IncrementReportsGenerated()
	return writeJSON(w, http.StatusOK, successEnvelope{Status: "success", Data: result})
}

func readJSONBody(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	const maxJSONBody = 4 << 20
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxJSONBody))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, &report.ValidationError{Message: "Request body is required"}
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, envelope errorEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope)
}

package reports

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/maturity-report/internal/domain/report"
)

//
// ==== port fakes ====
//

type fakeExtractor struct {
	text report.ExtractedText
	err  error
	seen []byte
}

func (f *fakeExtractor) Extract(_ context.Context, data []byte) (report.ExtractedText, error) {
	f.seen = data
	return f.text, f.err
}

type fakeAnalyzer struct {
	reply string
	err   error
	seen  string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, documentText string) (string, error) {
	f.seen = documentText
	return f.reply, f.err
}

type fakeHTMLRenderer struct{ err error }

func (f fakeHTMLRenderer) RenderHTML(context.Context, *report.AnalysisResult, report.RenderMeta) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("<!DOCTYPE html><html></html>"), nil
}

type fakeWordRenderer struct{ err error }

func (f fakeWordRenderer) RenderWord(context.Context, *report.AnalysisResult, report.RenderMeta) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PK\x03\x04docx"), nil
}

// deadlineRenderer records whether the render stage handed it a bounded context.
type deadlineRenderer struct{ hasDeadline bool }

func (d *deadlineRenderer) RenderHTML(ctx context.Context, _ *report.AnalysisResult, _ report.RenderMeta) ([]byte, error) {
	_, d.hasDeadline = ctx.Deadline()
	return []byte("<html></html>"), nil
}

func (d *deadlineRenderer) RenderWord(ctx context.Context, _ *report.AnalysisResult, _ report.RenderMeta) ([]byte, error) {
	_, d.hasDeadline = ctx.Deadline()
	return []byte("PK\x03\x04docx"), nil
}

type fakeStore struct {
	err          error
	failOnSuffix string
	keys         []string
	contentTypes map[string]string
}

func (f *fakeStore) Upload(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	if f.err != nil && (f.failOnSuffix == "" || strings.HasSuffix(key, f.failOnSuffix)) {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	if f.contentTypes == nil {
		f.contentTypes = make(map[string]string)
	}
	f.contentTypes[key] = contentType
	return "https://blobs.test/devopsbireports/" + key, nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

//
// ==== fixtures ====
//

// makeValidAnalysis mirrors a consistent analyzer reply: bands match scores,
// the plan totals 399 hours and role summaries derive from the task list.
func makeValidAnalysis() report.AnalysisResult {
	tasks := []report.Task{
		{ID: "T1", Descripcion: "Definir landing zone", HorasEstimadas: 100, Rol: report.RoleArquitecto, Fase: "Fase 1"},
		{ID: "T2", Descripcion: "Pipelines CI/CD", HorasEstimadas: 150, Dependencia: "T1", Rol: report.RoleDevOps, Fase: "Fase 2"},
		{ID: "T3", Descripcion: "Pruebas automatizadas", HorasEstimadas: 99, Dependencia: "T1, T2", Rol: report.RoleQA, Fase: "Fase 3"},
		{ID: "T4", Descripcion: "Gestión del plan", HorasEstimadas: 50, Rol: report.RolePM, Fase: "Fase 1"},
	}
	plan := report.WorkPlan{HorasMaximas: report.DefaultMaxPlanHours, TareasDetalladas: tasks}
	total := plan.TotalHours()
	for _, role := range []report.Role{report.RoleArquitecto, report.RoleDevOps, report.RoleQA, report.RolePM} {
		hours := plan.HoursByRole()[role]
		plan.ResumenRoles = append(plan.ResumenRoles, report.RoleSummary{
			Rol: role, Horas: hours, Porcentaje: hours / total * 100,
		})
	}
	return report.AnalysisResult{
		Cliente:         "Acme Corp",
		Evaluador:       "Equipo DevOps BI",
		FechaAssessment: "2026-08-15",
		ResumenEjecutivo: report.ExecutiveSummary{
			Diagnostico:          "Madurez intermedia",
			HallazgosPrincipales: []string{"Sin IaC"},
			ImpactoNegocio:       "Riesgo moderado",
		},
		ResultadoGlobal: report.GlobalResult{
			PuntuacionTotal:   45,
			NivelPredominante: report.LevelGestionado,
			AreasCriticas:     []string{"Excelencia operativa"},
			AreasFuertes:      []string{"Seguridad"},
		},
		CapacidadWAF: []report.Pillar{
			{Pilar: "Fiabilidad", Puntaje: 45, Nivel: report.LevelGestionado, Observaciones: "Sin pruebas de resiliencia"},
			{Pilar: "Seguridad", Puntaje: 86, Nivel: report.LevelOptimizado, Observaciones: "Identidades administradas"},
		},
		Recomendaciones: []report.Recommendation{
			{ID: "R1", Descripcion: "Adoptar Bicep", ServicioAzure: "Azure Resource Manager", Prioridad: report.PriorityAlta, Esfuerzo: report.EffortAlto, ImpactoEsperado: "Despliegues reproducibles"},
		},
		PlanTrabajo: plan,
	}
}

func validReply(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(makeValidAnalysis())
	require.NoError(t, err)
	return string(raw)
}

func newService(t *testing.T, extractor *fakeExtractor, analyzer *fakeAnalyzer, store *fakeStore) *Service {
	t.Helper()
	validator, err := report.NewValidator(0)
	require.NoError(t, err)
	return &Service{
		Extractor:     extractor,
		Analyzer:      analyzer,
		Validator:     validator,
		HTML:          fakeHTMLRenderer{},
		Word:          fakeWordRenderer{},
		Artifacts:     store,
		Clock:         fixedClock{at: time.UnixMilli(1700000000123)},
		Logger:        zerolog.Nop(),
		MaxFileSizeMB: 20,
		MaxInputChars: 50000,
	}
}

func pdfUpload(name string, data []byte) report.UploadedDocument {
	return report.UploadedDocument{
		FileName:    name,
		ContentType: "application/pdf",
		Size:        int64(len(data)),
		Data:        data,
	}
}

//
// ==== GenerateReport ====
//

func TestGenerateReportSuccess(t *testing.T) {
	store := &fakeStore{}
	svc := newService(t,
		&fakeExtractor{text: report.ExtractedText{Text: "contenido del assessment", Pages: 3}},
		&fakeAnalyzer{reply: validReply(t)},
		store,
	)

	res, err := svc.GenerateReport(context.Background(), pdfUpload("assessment final.pdf", []byte("%PDF-1.7")))
	require.NoError(t, err)

	assert.Equal(t, "https://blobs.test/devopsbireports/report_1700000000123_assessment_final.pdf.html", res.ReportURL)
	assert.Equal(t, "https://blobs.test/devopsbireports/report_1700000000123_assessment_final.pdf.json", res.JSONURL)
	assert.Equal(t, "Acme Corp", res.Analysis.Cliente)
	require.Len(t, store.keys, 2)
	assert.Equal(t, "text/html; charset=utf-8", store.contentTypes[store.keys[0]])
	assert.Equal(t, "application/json", store.contentTypes[store.keys[1]])
}

func TestGenerateReportRejectsEmptyUpload(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, &fakeStore{})

	_, err := svc.GenerateReport(context.Background(), report.UploadedDocument{ContentType: "application/pdf"})
	var ve *report.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "No file uploaded. Please provide a PDF file.", ve.Message)
}

func TestGenerateReportRejectsWrongContentType(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, &fakeStore{})

	upload := pdfUpload("image.png", []byte("fake"))
	upload.ContentType = "image/png"
	_, err := svc.GenerateReport(context.Background(), upload)
	var ve *report.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Only PDF files are allowed", ve.Message)
}

func TestGenerateReportAcceptsContentTypeWithParameters(t *testing.T) {
	store := &fakeStore{}
	svc := newService(t,
		&fakeExtractor{text: report.ExtractedText{Text: "texto", Pages: 1}},
		&fakeAnalyzer{reply: validReply(t)},
		store,
	)

	upload := pdfUpload("doc.pdf", []byte("%PDF"))
	upload.ContentType = "Application/PDF; charset=binary"
	_, err := svc.GenerateReport(context.Background(), upload)
	assert.NoError(t, err)
}

func TestGenerateReportRejectsOversizeUpload(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, &fakeStore{})
	svc.MaxFileSizeMB = 1

	upload := pdfUpload("big.pdf", []byte("%PDF"))
	upload.Size = 2 * 1024 * 1024
	_, err := svc.GenerateReport(context.Background(), upload)
	var tooLarge *report.PayloadTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 1, tooLarge.LimitMB)
}

func TestGenerateReportPassesThroughNoTextError(t *testing.T) {
	svc := newService(t,
		&fakeExtractor{err: &report.NoExtractableTextError{Pages: 4}},
		&fakeAnalyzer{}, &fakeStore{},
	)

	_, err := svc.GenerateReport(context.Background(), pdfUpload("scanned.pdf", []byte("%PDF")))
	var noText *report.NoExtractableTextError
	require.ErrorAs(t, err, &noText)
	assert.Equal(t, 4, noText.Pages)
}

func TestGenerateReportMapsCorruptPDFToValidation(t *testing.T) {
	svc := newService(t,
		&fakeExtractor{err: errors.New("xref table broken")},
		&fakeAnalyzer{}, &fakeStore{},
	)

	_, err := svc.GenerateReport(context.Background(), pdfUpload("broken.pdf", []byte("%PDF")))
	var ve *report.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "Unable to extract text from PDF")
}

func TestGenerateReportWrapsSchemaInvalidReply(t *testing.T) {
	bad := makeValidAnalysis()
	bad.ResultadoGlobal.PuntuacionTotal = 150
	raw, err := json.Marshal(bad)
	require.NoError(t, err)

	svc := newService(t,
		&fakeExtractor{text: report.ExtractedText{Text: "texto", Pages: 1}},
		&fakeAnalyzer{reply: string(raw)},
		&fakeStore{},
	)

	_, err = svc.GenerateReport(context.Background(), pdfUpload("doc.pdf", []byte("%PDF")))
	var ae *report.AnalysisError
	require.ErrorAs(t, err, &ae)
	var sve *report.SchemaValidationError
	assert.ErrorAs(t, err, &sve)
}

func TestGenerateReportWrapsAnalyzerFailure(t *testing.T) {
	svc := newService(t,
		&fakeExtractor{text: report.ExtractedText{Text: "texto", Pages: 1}},
		&fakeAnalyzer{err: errors.New("upstream 429")},
		&fakeStore{},
	)

	_, err := svc.GenerateReport(context.Background(), pdfUpload("doc.pdf", []byte("%PDF")))
	var ae *report.AnalysisError
	require.ErrorAs(t, err, &ae)
}

func TestGenerateReportTruncatesLongText(t *testing.T) {
	analyzer := &fakeAnalyzer{reply: validReply(t)}
	svc := newService(t,
		&fakeExtractor{text: report.ExtractedText{Text: strings.Repeat("a", 60000), Pages: 200}},
		analyzer,
		&fakeStore{},
	)

	_, err := svc.GenerateReport(context.Background(), pdfUpload("long.pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(analyzer.seen, report.TruncationNotice))
	assert.Equal(t, strings.Repeat("a", 50000)+report.TruncationNotice, analyzer.seen)
}

func TestGenerateReportStorageFailure(t *testing.T) {
	svc := newService(t,
		&fakeExtractor{text: report.ExtractedText{Text: "texto", Pages: 1}},
		&fakeAnalyzer{reply: validReply(t)},
		&fakeStore{err: errors.New("connection refused"), failOnSuffix: ".html"},
	)

	_, err := svc.GenerateReport(context.Background(), pdfUpload("doc.pdf", []byte("%PDF")))
	var se *report.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "HTML", se.Artifact)
	assert.NotContains(t, se.Error(), "connection refused")
}

//
// ==== ExportWord ====
//

func TestExportWordSuccess(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, &fakeStore{})

	export, err := svc.ExportWord(context.Background(), []byte(validReply(t)))
	require.NoError(t, err)
	assert.Equal(t, "report_1700000000123_Acme_Corp.docx", export.FileName)
	assert.NotEmpty(t, export.Data)
}

func TestExportWordMissingField(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, &fakeStore{})

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(validReply(t)), &body))
	delete(body, "recomendaciones")
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	_, err = svc.ExportWord(context.Background(), raw)
	var mfe *report.MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, "recomendaciones", mfe.Field)
}

func TestRenderStageAppliesConfiguredTimeout(t *testing.T) {
	htmlRenderer := &deadlineRenderer{}
	wordRenderer := &deadlineRenderer{}
	svc := newService(t,
		&fakeExtractor{text: report.ExtractedText{Text: "texto", Pages: 1}},
		&fakeAnalyzer{reply: validReply(t)},
		&fakeStore{},
	)
	svc.HTML = htmlRenderer
	svc.Word = wordRenderer
	svc.Timeouts.Render = 30 * time.Second

	_, err := svc.GenerateReport(context.Background(), pdfUpload("doc.pdf", []byte("%PDF")))
	require.NoError(t, err)
	assert.True(t, htmlRenderer.hasDeadline, "HTML renderer should see the render deadline")

	_, err = svc.ExportWord(context.Background(), []byte(validReply(t)))
	require.NoError(t, err)
	assert.True(t, wordRenderer.hasDeadline, "Word renderer should see the render deadline")
}

func TestExportWordRenderFailure(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, &fakeStore{})
	svc.Word = fakeWordRenderer{err: errors.New("template broken")}

	_, err := svc.ExportWord(context.Background(), []byte(validReply(t)))
	var re *report.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Word", re.Artifact)
}

//
// ==== GenerateFullReport ====
//

func TestGenerateFullReportSuccess(t *testing.T) {
	store := &fakeStore{}
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, store)

	res, err := svc.GenerateFullReport(context.Background(), []byte(validReply(t)))
	require.NoError(t, err)
	assert.Contains(t, res.HTMLURL, "report_1700000000123_Acme_Corp.html")
	assert.Contains(t, res.JSONURL, "report_1700000000123_Acme_Corp.json")
	assert.Contains(t, res.WordURL, "report_1700000000123_Acme_Corp.docx")
	require.Len(t, store.keys, 3)
	assert.Equal(t, ContentTypeWord, store.contentTypes[store.keys[2]])
}

func TestGenerateFullReportWordUploadFailure(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{},
		&fakeStore{err: errors.New("bucket gone"), failOnSuffix: ".docx"})

	_, err := svc.GenerateFullReport(context.Background(), []byte(validReply(t)))
	var se *report.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Word", se.Artifact)
}

func TestGenerateFullReportRejectsInvalidBody(t *testing.T) {
	svc := newService(t, &fakeExtractor{}, &fakeAnalyzer{}, &fakeStore{})

	_, err := svc.GenerateFullReport(context.Background(), []byte(`{"cliente":"Acme"}`))
	var mfe *report.MissingFieldError
	require.ErrorAs(t, err, &mfe)
}

package render

import (
	"context"
	"fmt"
	"os"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"github.com/bryanwahyu/maturity-report/internal/domain/report"
)

// WordRenderer produces the .docx report artifact.
type WordRenderer struct{}

func NewWordRenderer() *WordRenderer {
	return &WordRenderer{}
}

// RenderWord builds the full maturity report document and returns its bytes.
func (r *WordRenderer) RenderWord(ctx context.Context, res *report.AnalysisResult, meta report.RenderMeta) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	r.addCover(doc, res, meta)
	r.addExecutiveSummary(doc, res)
	r.addGlobalResult(doc, res)
	r.addPillars(doc, res)
	r.addRecommendations(doc, res)
	r.addWorkPlan(doc, res)
	r.addConclusion(doc, res)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return saveToBytes(doc)
}

func (r *WordRenderer) addCover(doc *docx.RootDoc, res *report.AnalysisResult, meta report.RenderMeta) {
	doc.AddParagraph("Informe de Madurez DevOps").Style("Title")
	doc.AddParagraph(res.Cliente).Style("Heading1")
	doc.AddEmptyParagraph()
	doc.AddParagraph(fmt.Sprintf("Evaluador: %s", res.Evaluador))
	doc.AddParagraph(fmt.Sprintf("Fecha del assessment: %s", res.FechaAssessment))
	doc.AddParagraph(fmt.Sprintf("Generado el: %s", meta.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC")))
	if meta.SourceFileName != "" {
		doc.AddParagraph(fmt.Sprintf("Documento origen: %s", meta.SourceFileName))
	}
	doc.AddEmptyParagraph()
}

func (r *WordRenderer) addExecutiveSummary(doc *docx.RootDoc, res *report.AnalysisResult) {
	doc.AddParagraph("Resumen Ejecutivo").Style("Heading1")
	doc.AddParagraph(res.ResumenEjecutivo.Diagnostico)
	if len(res.ResumenEjecutivo.HallazgosPrincipales) > 0 {
		doc.AddParagraph("Hallazgos principales:").Style("Heading2")
		for _, h := range res.ResumenEjecutivo.HallazgosPrincipales {
			doc.AddParagraph("• " + h)
		}
	}
	doc.AddParagraph("Impacto en el negocio:").Style("Heading2")
	doc.AddParagraph(res.ResumenEjecutivo.ImpactoNegocio)
}

func (r *WordRenderer) addGlobalResult(doc *docx.RootDoc, res *report.AnalysisResult) {
	doc.AddParagraph("Resultado Global").Style("Heading1")
	doc.AddParagraph(fmt.Sprintf("Puntuación total: %.0f / 100", res.ResultadoGlobal.PuntuacionTotal))
	doc.AddParagraph(fmt.Sprintf("Nivel de madurez predominante: %s", res.ResultadoGlobal.NivelPredominante))
	if len(res.ResultadoGlobal.AreasCriticas) > 0 {
		doc.AddParagraph("Áreas críticas:").Style("Heading2")
		for _, a := range res.ResultadoGlobal.AreasCriticas {
			doc.AddParagraph("• " + a)
		}
	}
	if len(res.ResultadoGlobal.AreasFuertes) > 0 {
		doc.AddParagraph("Áreas fuertes:").Style("Heading2")
		for _, a := range res.ResultadoGlobal.AreasFuertes {
			doc.AddParagraph("• " + a)
		}
	}
}

func (r *WordRenderer) addPillars(doc *docx.RootDoc, res *report.AnalysisResult) {
	doc.AddParagraph("Evaluación por Pilar (Well-Architected)").Style("Heading1")
	table := doc.AddTable()
	table.Style("LightList-Accent1")
	header := table.AddRow()
	header.AddCell().AddParagraph("Pilar")
	header.AddCell().AddParagraph("Puntaje")
	header.AddCell().AddParagraph("Nivel")
	header.AddCell().AddParagraph("Observaciones")
	for _, p := range res.CapacidadWAF {
		row := table.AddRow()
		row.AddCell().AddParagraph(p.Pilar)
		row.AddCell().AddParagraph(fmt.Sprintf("%.0f", p.Puntaje))
		row.AddCell().AddParagraph(string(p.Nivel))
		row.AddCell().AddParagraph(p.Observaciones)
	}
	doc.AddEmptyParagraph()
	for _, p := range res.CapacidadWAF {
		if p.Recomendaciones == "" {
			continue
		}
		doc.AddParagraph(p.Pilar).Style("Heading2")
		doc.AddParagraph(p.Recomendaciones)
	}
}

func (r *WordRenderer) addRecommendations(doc *docx.RootDoc, res *report.AnalysisResult) {
	doc.AddParagraph("Recomendaciones Priorizadas").Style("Heading1")
	table := doc.AddTable()
	table.Style("LightList-Accent1")
	header := table.AddRow()
	header.AddCell().AddParagraph("ID")
	header.AddCell().AddParagraph("Descripción")
	header.AddCell().AddParagraph("Servicio Azure")
	header.AddCell().AddParagraph("Prioridad")
	header.AddCell().AddParagraph("Esfuerzo")
	header.AddCell().AddParagraph("Impacto esperado")
	for _, rec := range res.Recomendaciones {
		row := table.AddRow()
		row.AddCell().AddParagraph(rec.ID)
		row.AddCell().AddParagraph(rec.Descripcion)
		row.AddCell().AddParagraph(rec.ServicioAzure)
		row.AddCell().AddParagraph(string(rec.Prioridad))
		row.AddCell().AddParagraph(string(rec.Esfuerzo))
		row.AddCell().AddParagraph(rec.ImpactoEsperado)
	}
	doc.AddEmptyParagraph()
}

func (r *WordRenderer) addWorkPlan(doc *docx.RootDoc, res *report.AnalysisResult) {
	plan := res.PlanTrabajo
	doc.AddParagraph("Plan de Trabajo").Style("Heading1")
	doc.AddParagraph(fmt.Sprintf("Total estimado: %.0f horas (máximo %.0f)", plan.TotalHours(), plan.HorasMaximas))

	if len(plan.ResumenRoles) > 0 {
		doc.AddParagraph("Distribución por rol").Style("Heading2")
		roles := doc.AddTable()
		roles.Style("LightList-Accent1")
		header := roles.AddRow()
		header.AddCell().AddParagraph("Rol")
		header.AddCell().AddParagraph("Horas")
		header.AddCell().AddParagraph("Porcentaje")
		for _, rs := range plan.ResumenRoles {
			row := roles.AddRow()
			row.AddCell().AddParagraph(string(rs.Rol))
			row.AddCell().AddParagraph(fmt.Sprintf("%.0f", rs.Horas))
			row.AddCell().AddParagraph(fmt.Sprintf("%.1f%%", rs.Porcentaje))
		}
		doc.AddEmptyParagraph()
	}

	doc.AddParagraph("Tareas detalladas").Style("Heading2")
	tasks := doc.AddTable()
	tasks.Style("LightList-Accent1")
	header := tasks.AddRow()
	header.AddCell().AddParagraph("ID")
	header.AddCell().AddParagraph("Tarea")
	header.AddCell().AddParagraph("Horas")
	header.AddCell().AddParagraph("Dependencia")
	header.AddCell().AddParagraph("Rol")
	header.AddCell().AddParagraph("Fase")
	for _, t := range plan.TareasDetalladas {
		row := tasks.AddRow()
		row.AddCell().AddParagraph(t.ID)
		row.AddCell().AddParagraph(t.Descripcion)
		row.AddCell().AddParagraph(fmt.Sprintf("%.0f", t.HorasEstimadas))
		row.AddCell().AddParagraph(t.Dependencia)
		row.AddCell().AddParagraph(string(t.Rol))
		row.AddCell().AddParagraph(t.Fase)
	}
	doc.AddEmptyParagraph()
}

func (r *WordRenderer) addConclusion(doc *docx.RootDoc, res *report.AnalysisResult) {
	doc.AddParagraph("Conclusión").Style("Heading1")
	doc.AddParagraph(fmt.Sprintf(
		"La organización %s se encuentra en un nivel de madurez %s con una puntuación de %.0f/100. "+
			"El plan de trabajo propuesto de %.0f horas aborda las áreas críticas detectadas y establece "+
			"una ruta de adopción incremental de prácticas DevOps sobre Microsoft Azure.",
		res.Cliente,
		res.ResultadoGlobal.NivelPredominante,
		res.ResultadoGlobal.PuntuacionTotal,
		res.PlanTrabajo.TotalHours(),
	))
}

// saveToBytes writes the document through a temp file; the docx writer is
// path-oriented while the upload path wants bytes.
func saveToBytes(doc *docx.RootDoc) ([]byte, error) {
	tmp, err := os.CreateTemp("", "report-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := doc.SaveTo(path); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return os.ReadFile(path)
}

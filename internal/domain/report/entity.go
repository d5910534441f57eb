package report

import "strings"

// SchemaVersion tags the JSON artifact so readers know which shape they hold.
const SchemaVersion = "1.0"

// Level enum (CMMI maturity, localized values as emitted by the analyzer)
type Level string

const (
	LevelInicial    Level = "INICIAL"
	LevelGestionado Level = "GESTIONADO"
	LevelDefinido   Level = "DEFINIDO"
	LevelOptimizado Level = "OPTIMIZADO"
)

// LevelBand maps a maturity level to its inclusive score range.
type LevelBand struct {
	Level Level
	Min   float64
	Max   float64
}

// LevelBands is the single threshold table shared by the validator and the
// renderers. Renderers must never re-derive their own buckets.
func LevelBands() []LevelBand {
	return []LevelBand{
		{LevelInicial, 0, 30},
		{LevelGestionado, 31, 60},
		{LevelDefinido, 61, 85},
		{LevelOptimizado, 86, 100},
	}
}

// LevelForScore buckets a 0-100 score into its maturity level.
func LevelForScore(score float64) Level {
	switch {
	case score <= 30:
		return LevelInicial
	case score <= 60:
		return LevelGestionado
	case score <= 85:
		return LevelDefinido
	default:
		return LevelOptimizado
	}
}

func (l Level) Valid() bool {
	switch l {
	case LevelInicial, LevelGestionado, LevelDefinido, LevelOptimizado:
		return true
	}
	return false
}

// Priority enum for recommendations
type Priority string

const (
	PriorityAlta  Priority = "ALTA"
	PriorityMedia Priority = "MEDIA"
	PriorityBaja  Priority = "BAJA"
)

// Effort enum for recommendations
type Effort string

const (
	EffortAlto  Effort = "ALTO"
	EffortMedio Effort = "MEDIO"
	EffortBajo  Effort = "BAJO"
)

// Role enum for work-plan tasks
type Role string

const (
	RoleArquitecto Role = "Arquitecto Cloud"
	RoleDevOps     Role = "Ingeniero DevOps"
	RoleQA         Role = "Ingeniero QA"
	RolePM         Role = "PM"
)

// ExecutiveSummary value object
type ExecutiveSummary struct {
	Diagnostico          string   `json:"diagnostico"`
	HallazgosPrincipales []string `json:"hallazgosPrincipales"`
	ImpactoNegocio       string   `json:"impactoNegocio"`
}

// GlobalResult value object
type GlobalResult struct {
	PuntuacionTotal   float64  `json:"puntuacionTotal"`
	NivelPredominante Level    `json:"nivelPredominante"`
	AreasCriticas     []string `json:"areasCriticas"`
	AreasFuertes      []string `json:"areasFuertes"`
}

// Pillar is one scored Well-Architected dimension of the assessment.
type Pillar struct {
	Pilar           string  `json:"pilar"`
	Puntaje         float64 `json:"puntaje"`
	Nivel           Level   `json:"nivel"`
	Observaciones   string  `json:"observaciones"`
	Recomendaciones string  `json:"recomendaciones"`
}

// Recommendation is one prioritized improvement item.
type Recommendation struct {
	ID              string   `json:"id"`
	Descripcion     string   `json:"descripcion"`
	ServicioAzure   string   `json:"servicioAzure"`
	Prioridad       Priority `json:"prioridad"`
	Esfuerzo        Effort   `json:"esfuerzo"`
	ImpactoEsperado string   `json:"impactoEsperado"`
}

// RoleSummary aggregates work-plan hours per role.
type RoleSummary struct {
	Rol        Role    `json:"rol"`
	Horas      float64 `json:"horas"`
	Porcentaje float64 `json:"porcentaje"`
}

// Task is one work-plan entry. Dependencia is a comma-separated list of
// earlier task ids, or empty.
type Task struct {
	ID             string  `json:"id_tarea"`
	Descripcion    string  `json:"descripcion"`
	HorasEstimadas float64 `json:"horas_estimadas"`
	Dependencia    string  `json:"dependencia"`
	Rol            Role    `json:"rol"`
	Fase           string  `json:"fase"`
}

// Dependencies splits the comma-separated prerequisite list.
func (t Task) Dependencies() []string {
	if strings.TrimSpace(t.Dependencia) == "" {
		return nil
	}
	parts := strings.Split(t.Dependencia, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WorkPlan value object
type WorkPlan struct {
	HorasMaximas     float64       `json:"horasMaximas"`
	ResumenRoles     []RoleSummary `json:"resumenRoles"`
	TareasDetalladas []Task        `json:"tareasDetalladas"`
}

// TotalHours sums estimated hours over all tasks.
func (w WorkPlan) TotalHours() float64 {
	var total float64
	for _, t := range w.TareasDetalladas {
		total += t.HorasEstimadas
	}
	return total
}

// HoursByRole sums estimated hours per role.
func (w WorkPlan) HoursByRole() map[Role]float64 {
	out := make(map[Role]float64)
	for _, t := range w.TareasDetalladas {
		out[t.Rol] += t.HorasEstimadas
	}
	return out
}

// AnalysisResult is the canonical validated output of the analysis stage.
// It is immutable after validation; renderers only read it.
type AnalysisResult struct {
	Cliente          string           `json:"cliente"`
	Evaluador        string           `json:"evaluador"`
	FechaAssessment  string           `json:"fechaAssessment"`
	ResumenEjecutivo ExecutiveSummary `json:"resumenEjecutivo"`
	ResultadoGlobal  GlobalResult     `json:"resultadoGlobal"`
	CapacidadWAF     []Pillar         `json:"capacidadWAF"`
	Recomendaciones  []Recommendation `json:"recomendaciones"`
	PlanTrabajo      WorkPlan         `json:"planTrabajo"`
}

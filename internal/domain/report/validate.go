package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

// DefaultMaxPlanHours is the work-plan ceiling: total task hours must stay
// strictly below this value.
const DefaultMaxPlanHours = 400

// percentTolerance absorbs rounding in analyzer-reported role percentages.
const percentTolerance = 0.5

// hoursTolerance absorbs float noise when comparing hour sums.
const hoursTolerance = 0.01

// RequiredTopLevelFields lists the fields the export endpoints check before
// running full validation, in reporting order.
func RequiredTopLevelFields() []string {
	return []string{
		"cliente",
		"evaluador",
		"fechaAssessment",
		"resumenEjecutivo",
		"resultadoGlobal",
		"capacidadWAF",
		"recomendaciones",
		"planTrabajo",
	}
}

// Validator turns untyped JSON into a validated AnalysisResult. It is pure
// and safe for concurrent use.
type Validator struct {
	schema       *jsonschema.Schema
	maxPlanHours float64
}

// NewValidator compiles the embedded schema. maxPlanHours <= 0 falls back to
// DefaultMaxPlanHours.
func NewValidator(maxPlanHours float64) (*Validator, error) {
	if maxPlanHours <= 0 {
		maxPlanHours = DefaultMaxPlanHours
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis-result.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("analysis-result.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema, maxPlanHours: maxPlanHours}, nil
}

// MaxPlanHours returns the configured work-plan ceiling.
func (v *Validator) MaxPlanHours() float64 { return v.maxPlanHours }

// CheckRequiredFields verifies every required top-level field is present and
// non-null, returning a MissingFieldError naming the first absent one.
func (v *Validator) CheckRequiredFields(raw []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return &ValidationError{Message: "request body must be a JSON object"}
	}
	for _, field := range RequiredTopLevelFields() {
		val, ok := top[field]
		if !ok || string(bytes.TrimSpace(val)) == "null" {
			return &MissingFieldError{Field: field}
		}
	}
	return nil
}

// Validate checks raw JSON against the schema and the cross-field business
// rules, collecting every violation. On success the returned AnalysisResult
// satisfies all invariants and must be treated as immutable.
func (v *Validator) Validate(raw []byte) (*AnalysisResult, error) {
	var untyped any
	if err := json.Unmarshal(raw, &untyped); err != nil {
		return nil, &SchemaValidationError{Violations: []Violation{{
			Path:       "/",
			Constraint: "body must be valid JSON",
			Actual:     err.Error(),
		}}}
	}

	var violations []Violation
	if err := v.schema.Validate(untyped); err != nil {
		var ve *jsonschema.ValidationError
		if ok := asValidationError(err, &ve); ok {
			violations = append(violations, flattenSchemaError(ve, untyped)...)
		} else {
			violations = append(violations, Violation{Path: "/", Constraint: err.Error()})
		}
	}

	var result AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		violations = append(violations, Violation{
			Path:       "/",
			Constraint: "body must decode into an analysis result",
			Actual:     err.Error(),
		})
		return nil, &SchemaValidationError{Violations: violations}
	}

	violations = append(violations, v.checkLevels(&result)...)
	violations = append(violations, v.checkWorkPlan(&result.PlanTrabajo)...)
	violations = append(violations, checkRecommendationIDs(result.Recomendaciones)...)

	if len(violations) > 0 {
		return nil, &SchemaValidationError{Violations: violations}
	}
	return &result, nil
}

// checkLevels enforces agreement between every score and its paired level
// using the fixed threshold table.
func (v *Validator) checkLevels(res *AnalysisResult) []Violation {
	var out []Violation
	if res.ResultadoGlobal.NivelPredominante.Valid() {
		want := LevelForScore(res.ResultadoGlobal.PuntuacionTotal)
		if res.ResultadoGlobal.NivelPredominante != want {
			out = append(out, Violation{
				Path:       "/resultadoGlobal/nivelPredominante",
				Constraint: fmt.Sprintf("level must be %s for score %g", want, res.ResultadoGlobal.PuntuacionTotal),
				Actual:     string(res.ResultadoGlobal.NivelPredominante),
			})
		}
	}
	for i, p := range res.CapacidadWAF {
		if !p.Nivel.Valid() {
			continue // shape violation already reported by the schema
		}
		want := LevelForScore(p.Puntaje)
		if p.Nivel != want {
			out = append(out, Violation{
				Path:       fmt.Sprintf("/capacidadWAF/%d/nivel", i),
				Constraint: fmt.Sprintf("level must be %s for score %g", want, p.Puntaje),
				Actual:     string(p.Nivel),
			})
		}
	}
	return out
}

// checkWorkPlan enforces the hour ceiling, aggregate consistency and the
// total dependency order.
func (v *Validator) checkWorkPlan(plan *WorkPlan) []Violation {
	var out []Violation

	total := plan.TotalHours()
	if total >= v.maxPlanHours {
		out = append(out, Violation{
			Path:       "/planTrabajo/tareasDetalladas",
			Constraint: fmt.Sprintf("total task hours must be strictly below %g", v.maxPlanHours),
			Actual:     fmt.Sprintf("%g", total),
		})
	}

	// Task ids must be unique and dependencies must point at earlier tasks.
	index := make(map[string]int, len(plan.TareasDetalladas))
	for i, t := range plan.TareasDetalladas {
		if t.ID == "" {
			continue
		}
		if _, dup := index[t.ID]; dup {
			out = append(out, Violation{
				Path:       fmt.Sprintf("/planTrabajo/tareasDetalladas/%d/id_tarea", i),
				Constraint: "task id must be unique",
				Actual:     t.ID,
			})
			continue
		}
		index[t.ID] = i
	}
	for i, t := range plan.TareasDetalladas {
		for _, dep := range t.Dependencies() {
			j, ok := index[dep]
			if !ok {
				out = append(out, Violation{
					Path:       fmt.Sprintf("/planTrabajo/tareasDetalladas/%d/dependencia", i),
					Constraint: "dependency must reference an existing task id",
					Actual:     dep,
				})
				continue
			}
			if j >= i {
				out = append(out, Violation{
					Path:       fmt.Sprintf("/planTrabajo/tareasDetalladas/%d/dependencia", i),
					Constraint: "dependency must reference an earlier task",
					Actual:     dep,
				})
			}
		}
	}

	// Role summary must agree with the task list.
	byRole := plan.HoursByRole()
	seen := make(map[Role]bool, len(plan.ResumenRoles))
	for i, rs := range plan.ResumenRoles {
		seen[rs.Rol] = true
		wantHours := byRole[rs.Rol]
		if math.Abs(rs.Horas-wantHours) > hoursTolerance {
			out = append(out, Violation{
				Path:       fmt.Sprintf("/planTrabajo/resumenRoles/%d/horas", i),
				Constraint: fmt.Sprintf("hours for role %q must equal task-list sum %g", rs.Rol, wantHours),
				Actual:     fmt.Sprintf("%g", rs.Horas),
			})
		}
		if total > 0 {
			wantPct := wantHours / total * 100
			if math.Abs(rs.Porcentaje-wantPct) > percentTolerance {
				out = append(out, Violation{
					Path:       fmt.Sprintf("/planTrabajo/resumenRoles/%d/porcentaje", i),
					Constraint: fmt.Sprintf("percentage for role %q must be %.2f", rs.Rol, wantPct),
					Actual:     fmt.Sprintf("%g", rs.Porcentaje),
				})
			}
		}
	}
	for role := range byRole {
		if !seen[role] {
			out = append(out, Violation{
				Path:       "/planTrabajo/resumenRoles",
				Constraint: fmt.Sprintf("role %q has tasks but no summary entry", role),
			})
		}
	}
	return out
}

func checkRecommendationIDs(recs []Recommendation) []Violation {
	var out []Violation
	seen := make(map[string]bool, len(recs))
	for i, r := range recs {
		if r.ID == "" {
			continue
		}
		if seen[r.ID] {
			out = append(out, Violation{
				Path:       fmt.Sprintf("/recomendaciones/%d/id", i),
				Constraint: "recommendation id must be unique",
				Actual:     r.ID,
			})
		}
		seen[r.ID] = true
	}
	return out
}

// flattenSchemaError walks the cause tree and keeps only the leaves, one
// violation per concrete failure. Each leaf is paired with the offending
// instance value resolved from the decoded document.
func flattenSchemaError(ve *jsonschema.ValidationError, doc any) []Violation {
	if len(ve.Causes) == 0 {
		path := ve.InstanceLocation
		if path == "" {
			path = "/"
		}
		return []Violation{{Path: path, Constraint: ve.Message, Actual: instanceValue(doc, ve.InstanceLocation)}}
	}
	var out []Violation
	for _, c := range ve.Causes {
		out = append(out, flattenSchemaError(c, doc)...)
	}
	return out
}

// instanceValueMaxLen caps the reported value so a failing free-text field
// does not blow up the error envelope.
const instanceValueMaxLen = 120

// instanceValue resolves a JSON pointer against the decoded document and
// renders the value it points at. The whole-document pointer and unresolvable
// pointers (a missing required property points at its parent) yield "".
func instanceValue(doc any, pointer string) string {
	if pointer == "" {
		return ""
	}
	cur := doc
	for _, token := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[token]
			if !ok {
				return ""
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(token)
			if err != nil || i < 0 || i >= len(node) {
				return ""
			}
			cur = node[i]
		default:
			return ""
		}
	}
	raw, err := json.Marshal(cur)
	if err != nil {
		return ""
	}
	s := string(raw)
	if len(s) > instanceValueMaxLen {
		s = s[:instanceValueMaxLen] + "..."
	}
	return s
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

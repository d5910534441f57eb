package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/bryanwahyu/maturity-report/internal/domain/report"
)

//go:embed templates/dashboard.html.tmpl templates/dashboard.css
var templateFS embed.FS

// HTMLRenderer produces the dashboard artifact. Output is deterministic for
// identical input aside from the labeled "Generado el" timestamp, which is
// supplied through RenderMeta.
type HTMLRenderer struct {
	tmpl *template.Template
	css  template.CSS
}

// NewHTMLRenderer parses the embedded template and stylesheet. A missing or
// empty stylesheet is a hard failure; the dashboard never renders unstyled.
func NewHTMLRenderer() (*HTMLRenderer, error) {
	css, err := templateFS.ReadFile("templates/dashboard.css")
	if err != nil {
		return nil, fmt.Errorf("dashboard stylesheet: %w", err)
	}
	if len(bytes.TrimSpace(css)) == 0 {
		return nil, fmt.Errorf("dashboard stylesheet is empty")
	}

	tmpl, err := template.New("dashboard.html.tmpl").Funcs(template.FuncMap{
		"levelClass": levelClass,
	}).ParseFS(templateFS, "templates/dashboard.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}

	return &HTMLRenderer{tmpl: tmpl, css: template.CSS(css)}, nil
}

type dashboardData struct {
	A           *report.AnalysisResult
	CSS         template.CSS
	SourceFile  string
	GeneratedAt string
	Levels      []report.LevelBand
}

// RenderHTML templates one validated AnalysisResult into the dashboard.
// All free-text fields pass through html/template's contextual escaping.
func (r *HTMLRenderer) RenderHTML(ctx context.Context, res *report.AnalysisResult, meta report.RenderMeta) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := dashboardData{
		A:           res,
		CSS:         r.css,
		SourceFile:  meta.SourceFileName,
		GeneratedAt: meta.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Levels:      report.LevelBands(),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute dashboard template: %w", err)
	}
	return buf.Bytes(), nil
}

func levelClass(l report.Level) string {
	return "level-" + strings.ToLower(string(l))
}

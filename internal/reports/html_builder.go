package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"gridmix/internal/config"
	"gridmix/internal/models"
)

// HTMLBuilder handles HTML generation with goldmark
type HTMLBuilder struct {
	templateLoader *TemplateLoader
	goldmark       goldmark.Markdown
}

// NewHTMLBuilder creates an HTML builder
func NewHTMLBuilder() *HTMLBuilder {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	return &HTMLBuilder{
		templateLoader: NewTemplateLoader(),
		goldmark:       md,
	}
}

// TemplateData represents the data structure for the HTML template
type TemplateData struct {
	Title       string
	GeneratedAt string
	Version     string
	Intro       template.HTML
	Styles      string
	Metrics     []Metric
	Sections    []SectionView
	Summary     []SummaryRow
	SummaryFile string
}

// SectionView is a section prepared for the page template
type SectionView struct {
	Key     string
	Title   string
	Chart   string
	Image   string
	Notes   template.HTML
	Message string
	Level   Level
}

// SummaryRow is one year of the summary table, formatted for display
type SummaryRow struct {
	Year       int
	Total      string
	Clean      string
	Renewables string
	Fossil     string
}

func summaryRows(summaries []models.YearSummary) []SummaryRow {
	rows := make([]SummaryRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, SummaryRow{
			Year:       s.Year,
			Total:      formatValue(s.Total, "%.0f TWh"),
			Clean:      formatValue(s.Share.Clean, "%.1f%%"),
			Renewables: formatValue(s.Share.Renewables, "%.1f%%"),
			Fossil:     formatValue(s.Share.Fossil, "%.1f%%"),
		})
	}
	return rows
}

func formatValue(v models.Value, format string) string {
	f, ok := v.Get()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf(format, f)
}

// ConvertMarkdownToHTML converts markdown to HTML using goldmark
func (h *HTMLBuilder) ConvertMarkdownToHTML(markdownContent string) (string, error) {
	var buf bytes.Buffer
	if err := h.goldmark.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// BuildCompleteHTML renders the dashboard page. images maps section keys to
// static chart files placed next to the page; it may be nil.
func (h *HTMLBuilder) BuildCompleteHTML(dash *Dashboard, images map[string]string) (string, error) {
	intro, err := h.renderIntro(dash)
	if err != nil {
		return "", err
	}

	styles, err := h.templateLoader.LoadCSSStyles()
	if err != nil {
		return "", err
	}

	data := TemplateData{
		Title:       fmt.Sprintf("%s electricity dashboard", dash.EntityCode),
		GeneratedAt: dash.GeneratedAt.Format("2006-01-02 15:04:05 UTC"),
		Version:     config.GetVersion(),
		Intro:       template.HTML(intro),
		Styles:      styles,
		Metrics:     dash.Metrics,
		Summary:     summaryRows(dash.Summary),
	}
	// the summary file only exists next to a stored snapshot
	if images != nil && len(dash.Summary) > 0 {
		data.SummaryFile = SummaryFile
	}
	for _, s := range dash.Sections {
		view := SectionView{
			Key:     s.Key,
			Title:   s.Title,
			Notes:   s.Notes,
			Message: s.Message,
			Level:   s.Level,
			Image:   images[s.Key],
		}
		if s.OK() {
			view.Chart = s.Chart.HTML
		}
		data.Sections = append(data.Sections, view)
	}

	return h.executeTemplate(data)
}

// renderIntro fills the intro markdown and converts it to HTML
func (h *HTMLBuilder) renderIntro(dash *Dashboard) (string, error) {
	source, err := h.templateLoader.LoadIntro()
	if err != nil {
		return "", err
	}
	source = strings.ReplaceAll(source, "{{.EntityCode}}", dash.EntityCode)
	return h.ConvertMarkdownToHTML(source)
}

// executeTemplate executes the HTML template with the provided data
func (h *HTMLBuilder) executeTemplate(data TemplateData) (string, error) {
	htmlTemplate, err := h.templateLoader.LoadHTMLTemplate()
	if err != nil {
		return "", fmt.Errorf("failed to load HTML template: %w", err)
	}

	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"safeCSS": func(s string) template.CSS {
			return template.CSS(s)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

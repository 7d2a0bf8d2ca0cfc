package reports

import (
	"embed"
	"fmt"
)

//go:embed templates/*
var templateFS embed.FS

// TemplateLoader handles loading HTML templates and CSS styles
type TemplateLoader struct{}

// NewTemplateLoader creates a new template loader
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{}
}

// LoadHTMLTemplate loads the dashboard page template
func (t *TemplateLoader) LoadHTMLTemplate() (string, error) {
	return t.load("templates/dashboard.html")
}

// LoadCSSStyles loads the stylesheet inlined into every page
func (t *TemplateLoader) LoadCSSStyles() (string, error) {
	return t.load("templates/styles.css")
}

// LoadIntro loads the markdown introduction shown above the charts
func (t *TemplateLoader) LoadIntro() (string, error) {
	return t.load("templates/intro.md")
}

func (t *TemplateLoader) load(name string) (string, error) {
	content, err := templateFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(content), nil
}

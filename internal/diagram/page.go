package diagram

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates
var content embed.FS

var pageTemplate = template.Must(template.ParseFS(content, "templates/page.html"))

// Mermaid themes accepted by the page.
const (
	ThemeDefault = "default"
	ThemeDark    = "dark"
	ThemeForest  = "forest"
	ThemeNeutral = "neutral"
)

// PageOptions controls the standalone HTML page.
type PageOptions struct {
	Title string
	Theme string // unknown values fall back to ThemeDark
}

type pageData struct {
	Title      string
	Theme      string
	Background string
	Foreground string
	Diagram    string
}

// NormalizeTheme returns theme when Mermaid knows it, ThemeDark otherwise.
func NormalizeTheme(theme string) string {
	switch theme {
	case ThemeDefault, ThemeDark, ThemeForest, ThemeNeutral:
		return theme
	default:
		return ThemeDark
	}
}

// WritePage writes a self-contained HTML page that renders diagram source
// with mermaid.js, with pan and zoom enabled.
func WritePage(w io.Writer, diagram string, opts PageOptions) error {
	data := pageData{
		Title:      opts.Title,
		Theme:      NormalizeTheme(opts.Theme),
		Background: "#1e1e1e",
		Foreground: "#ddd",
		Diagram:    diagram,
	}
	if data.Title == "" {
		data.Title = "Floxy Flow"
	}
	if data.Theme != ThemeDark {
		data.Background = "#ffffff"
		data.Foreground = "#222"
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("diagram: render page: %w", err)
	}
	return nil
}

// RenderPage is WritePage into a byte slice.
func RenderPage(diagram string, opts PageOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePage(&buf, diagram, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

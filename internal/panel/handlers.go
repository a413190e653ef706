package panel

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/rendis/floxyview/internal/diagram"
	"github.com/rendis/floxyview/internal/logging"
	"github.com/rendis/floxyview/pkg/schema"
)

// handleExample serves the placeholder diagram page.
func (s *PanelServer) handleExample(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, diagram.Placeholder, "Floxy Flow")
}

// handleExampleSource returns the placeholder diagram source.
func (s *PanelServer) handleExampleSource(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, diagram.Placeholder)
}

// handleRender translates the request body and serves it as a page.
func (s *PanelServer) handleRender(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.renderPage(w, r, s.translate(r, body, isYAMLRequest(r)), "Floxy Flow")
}

// handleMermaid translates the request body and returns the diagram source.
func (s *PanelServer) handleMermaid(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, s.translate(r, body, isYAMLRequest(r)))
}

// handleFile renders a JSON document from the configured root directory.
func (s *PanelServer) handleFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("path")
	isYAML := schema.IsYAMLName(name)
	if !isYAML && !strings.EqualFold(path.Ext(name), ".json") {
		writeProblem(w, r, http.StatusBadRequest, "unsupported-file", "only .json, .yaml and .yml files can be rendered")
		return
	}

	data, err := readInRoot(s.deps.Root, name, s.deps.MaxBodyBytes)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeProblem(w, r, http.StatusNotFound, "not-found", "file not found")
			return
		}
		if errors.Is(err, errFileTooLarge) {
			writeProblem(w, r, http.StatusRequestEntityTooLarge, "body-too-large", "file too large")
			return
		}
		logging.LogWith(r.Context(), s.deps.Logger).Warn("read flow file failed", "file", name, "error", err)
		writeProblem(w, r, http.StatusBadRequest, "unreadable-file", "cannot read file")
		return
	}

	r = r.WithContext(logging.WithSource(r.Context(), name))
	s.renderPage(w, r, s.translate(r, data, isYAML), path.Base(name))
}

// translate mirrors diagram.Translate, logging documents that fall back to
// an error diagram.
func (s *PanelServer) translate(r *http.Request, body []byte, isYAML bool) string {
	if len(body) == 0 {
		return diagram.Placeholder
	}
	build := diagram.FromJSON
	if isYAML {
		build = diagram.FromYAML
	}
	model, err := build(body)
	if err != nil {
		s.deps.Logger.InfoContext(r.Context(), "document not rendered", "error", err)
		return diagram.ErrorDiagram(err)
	}
	return diagram.RenderMermaid(model)
}

// renderPage writes the HTML page for diagram source.
func (s *PanelServer) renderPage(w http.ResponseWriter, r *http.Request, source, title string) {
	theme := s.deps.Theme
	if q := r.URL.Query().Get("theme"); q != "" {
		theme = q
	}

	page, err := diagram.RenderPage(source, diagram.PageOptions{Title: title, Theme: theme})
	if err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "page render error", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// readBody reads the request body up to the configured limit.
func (s *PanelServer) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.deps.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeProblem(w, r, http.StatusRequestEntityTooLarge, "body-too-large", "request body too large")
			return nil, false
		}
		writeProblem(w, r, http.StatusBadRequest, "unreadable-body", "cannot read request body")
		return nil, false
	}
	return body, true
}

// isYAMLRequest reports whether the request body is declared as YAML.
func isYAMLRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}

// errFileTooLarge is returned by readInRoot for files over the size limit.
var errFileTooLarge = errors.New("panel: file too large")

// readInRoot reads name inside root without following paths out of it.
func readInRoot(root, name string, limit int64) ([]byte, error) {
	f, err := os.OpenInRoot(root, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errFileTooLarge
	}
	return data, nil
}

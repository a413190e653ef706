package panel

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rendis/floxyview/internal/diagram"
	"github.com/rendis/floxyview/internal/logging"
)

const defaultMaxBodyBytes = 4 << 20

// PanelDeps holds the dependencies for the panel server.
type PanelDeps struct {
	// Root is the directory served under /files/. Empty disables the route.
	Root         string
	Theme        string
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// PanelServer serves rendered flow diagrams as HTML pages.
type PanelServer struct {
	deps PanelDeps
}

// NewPanelServer creates a new PanelServer.
func NewPanelServer(deps PanelDeps) *PanelServer {
	if deps.Logger == nil {
		deps.Logger = slog.New(logging.NewCorrelationHandler(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = defaultMaxBodyBytes
	}
	deps.Theme = diagram.NormalizeTheme(deps.Theme)
	return &PanelServer{deps: deps}
}

// Handler returns the HTTP handler for the panel routes.
func (s *PanelServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages.
	mux.HandleFunc("GET /{$}", s.handleExample)
	mux.HandleFunc("POST /render", s.handleRender)
	if s.deps.Root != "" {
		mux.HandleFunc("GET /files/{path...}", s.handleFile)
	}

	// Diagram source.
	mux.HandleFunc("POST /api/mermaid", s.handleMermaid)
	mux.HandleFunc("GET /api/example", s.handleExampleSource)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s.withRequestID(mux)
}

// withRequestID tags each request with an ID, echoes it in X-Request-ID
// and logs the request once it completes.
func (s *PanelServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		ctx := logging.WithRequestID(logging.WithSource(r.Context(), "http"), id)
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.deps.Logger.DebugContext(ctx, "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

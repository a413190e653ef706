package panel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/moogar0880/problems"
)

// problemTypeBase prefixes the type URI of every problem response.
const problemTypeBase = "https://floxyview.dev/problems/"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeProblem writes an RFC 7807 problem response for the request.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, kind, detail string) {
	problem := problems.NewStatusProblem(status).
		WithInstance(r.URL.Path).
		WithType(problemTypeBase + kind).
		WithError(errors.New(detail))

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(problem)
}

// writeText writes a plain-text response.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"aigateway/apierror"
	"aigateway/metrics"
)

// NewRouter mounts every route under basePath and wraps the result with the
// gateway middleware.
func NewRouter(basePath string, gen *GenerationHandler, wf *WorkflowHandler) http.Handler {
	root := mux.NewRouter()
	root.NotFoundHandler = http.HandlerFunc(notFound)
	root.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := root
	if basePath != "" {
		api = root.PathPrefix(basePath).Subrouter()
		api.NotFoundHandler = root.NotFoundHandler
		api.MethodNotAllowedHandler = root.MethodNotAllowedHandler
	}
	api.Use(routeLabel)

	api.HandleFunc("/ollama/generate", gen.Generate).Methods(http.MethodPost)
	api.HandleFunc("/whisper/transcribe", gen.Transcribe).Methods(http.MethodPost)
	api.HandleFunc("/document/extract", gen.Extract).Methods(http.MethodPost)
	api.HandleFunc("/tts/generate", gen.Speak).Methods(http.MethodPost)

	api.HandleFunc("/webhook/{workflow_id}", wf.Trigger).Methods(http.MethodPost)
	api.HandleFunc("/workflows", wf.List).Methods(http.MethodGet)
	api.HandleFunc("/workflow/{id}/execute", wf.Execute).Methods(http.MethodPost)
	api.HandleFunc("/execution/{id}/status", wf.Status).Methods(http.MethodGet)

	api.HandleFunc("/health", health).Methods(http.MethodGet)
	api.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return serve(root)
}

func health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, apierror.Envelope{Error: "Not found"})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, apierror.Envelope{Error: "Method not allowed"})
}

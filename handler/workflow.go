package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"aigateway/apierror"
	"aigateway/workflow"
)

// WorkflowHandler serves the n8n routes.
type WorkflowHandler struct {
	svc       *workflow.Service
	maxMemory int64
}

func NewWorkflowHandler(svc *workflow.Service, maxMemory int64) *WorkflowHandler {
	return &WorkflowHandler{svc: svc, maxMemory: maxMemory}
}

// Trigger handles POST /webhook/{workflow_id}. JSON bodies are forwarded as
// JSON, everything else as url-encoded form fields.
func (h *WorkflowHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["workflow_id"]

	var payload workflow.Payload
	if isJSON(r) {
		body, err := io.ReadAll(r.Body)
		if err != nil || !json.Valid(body) {
			logAndReturnError(w, r, apierror.ClientInput("Invalid JSON in request body"))
			return
		}
		payload = workflow.JSONPayload(body)
	} else {
		form, err := h.formValues(r)
		if err != nil {
			log.Debugf("unreadable webhook form: %v", err)
			logAndReturnError(w, r, apierror.ClientInput("Invalid form data in request body"))
			return
		}
		payload = workflow.FormPayload(form)
	}

	answer, err := h.svc.Trigger(r.Context(), id, payload)
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// List handles GET /workflows.
func (h *WorkflowHandler) List(w http.ResponseWriter, r *http.Request) {
	workflows, err := h.svc.List(r.Context())
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkflowsResponse{Workflows: workflows})
}

// Execute handles POST /workflow/{id}/execute.
func (h *WorkflowHandler) Execute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logAndReturnError(w, r, apierror.ClientInput("Invalid JSON in request body"))
		return
	}

	exec, err := h.svc.Execute(r.Context(), mux.Vars(r)["id"], body)
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exec)
}

// Status handles GET /execution/{id}/status.
func (h *WorkflowHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// formValues returns the posted form fields. Multipart bodies contribute
// their text fields; uploaded files are not forwarded.
func (h *WorkflowHandler) formValues(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()
	return url.Values(r.MultipartForm.Value), nil
}

// isJSON reports an application/json or +json content type.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}

package handler

import (
	"errors"
	"io"
	"net/http"

	"aigateway/apierror"
	"aigateway/generation"
)

// GenerationHandler serves the Ollama and local tool routes.
type GenerationHandler struct {
	svc       *generation.Service
	maxMemory int64
}

func NewGenerationHandler(svc *generation.Service, maxMemory int64) *GenerationHandler {
	return &GenerationHandler{svc: svc, maxMemory: maxMemory}
}

// Generate handles POST /ollama/generate.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logAndReturnError(w, r, apierror.ClientInput("Missing prompt in request"))
		return
	}
	if err := validateBody(generateValidator, body, "Missing prompt in request"); err != nil {
		logAndReturnError(w, r, err)
		return
	}

	var req GenerateRequest
	if err := decodeJSON(body, &req); err != nil {
		logAndReturnError(w, r, err)
		return
	}
	model := h.svc.DefaultModel()
	if m, ok := req.Model.(string); ok {
		model = m
	}

	answer, err := h.svc.Generate(r.Context(), model, req.Prompt)
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(answer)
}

// Transcribe handles POST /whisper/transcribe.
func (h *GenerationHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := h.formFile(r, "audio", "No audio file provided")
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	defer cleanup()

	text, err := h.svc.Transcribe(r.Context(), upload)
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TranscriptionResponse{Transcription: text})
}

// Extract handles POST /document/extract.
func (h *GenerationHandler) Extract(w http.ResponseWriter, r *http.Request) {
	upload, cleanup, err := h.formFile(r, "document", "No document file provided")
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	defer cleanup()

	text, err := h.svc.Extract(r.Context(), upload)
	if err != nil {
		logAndReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ExtractionResponse{ExtractedText: text})
}

// Speak handles POST /tts/generate.
func (h *GenerationHandler) Speak(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logAndReturnError(w, r, apierror.ClientInput("Missing text in request"))
		return
	}
	if err := validateBody(speechValidator, body, "Missing text in request"); err != nil {
		logAndReturnError(w, r, err)
		return
	}

	var req SpeechRequest
	if err := decodeJSON(body, &req); err != nil {
		logAndReturnError(w, r, err)
		return
	}

	if err := h.svc.Speak(r.Context(), req.Text); err != nil {
		logAndReturnError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: generation.SpeechGenerated})
}

// formFile pulls one uploaded file out of a multipart body. The returned
// cleanup releases the part and any spooled form data.
func (h *GenerationHandler) formFile(r *http.Request, field, missing string) (generation.Upload, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		log.Debugf("unreadable multipart body: %v", err)
		return generation.Upload{}, noop, apierror.ClientInput(missing)
	}
	form := r.MultipartForm

	file, header, err := r.FormFile(field)
	if err != nil {
		form.RemoveAll()
		// a part sent without a filename and without a Content-Type is
		// parsed as a plain value
		if errors.Is(err, http.ErrMissingFile) && len(form.Value[field]) > 0 {
			return generation.Upload{}, noop, apierror.ClientInput("No file selected")
		}
		return generation.Upload{}, noop, apierror.ClientInput(missing)
	}
	if header.Filename == "" {
		file.Close()
		form.RemoveAll()
		return generation.Upload{}, noop, apierror.ClientInput("No file selected")
	}

	cleanup := func() {
		file.Close()
		form.RemoveAll()
	}
	return generation.Upload{Filename: header.Filename, Content: file}, cleanup, nil
}

package handler

import "aigateway/workflow"

// GenerateRequest is the body of POST /ollama/generate. Model is left
// untyped: an absent or non-string model selects the default, an empty
// string is passed through.
type GenerateRequest struct {
	Model  any    `json:"model"`
	Prompt string `json:"prompt"`
}

// SpeechRequest is the body of POST /tts/generate.
type SpeechRequest struct {
	Text string `json:"text"`
}

type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
}

type ExtractionResponse struct {
	ExtractedText string `json:"extracted_text"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type WorkflowsResponse struct {
	Workflows []workflow.Summary `json:"workflows"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"aigateway/apierror"
	"aigateway/metrics"
)

// GenerateRequest is the body the gateway sends to Ollama's /api/generate.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// DefaultModel is the model used when a request names none.
func (s *Service) DefaultModel() string {
	return s.cfg.DefaultModel
}

// Generate sends prompt to model and returns Ollama's JSON answer untouched.
// The model name is sent as given, even when empty.
func (s *Service) Generate(ctx context.Context, model, prompt string) (json.RawMessage, error) {
	payload, err := json.Marshal(GenerateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return nil, apierror.Internal(err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	resp, err := s.ollama.Forward(ctx, http.MethodPost, "", headers, bytes.NewReader(payload))
	if err != nil {
		metrics.ObserveUpstream("ollama", "unreachable")
		return nil, apierror.Connectivity("Failed to connect to Ollama", err)
	}

	if !resp.OK() {
		metrics.ObserveUpstream("ollama", "error_status")
		log.Warnf("Ollama returned %s for model %s", resp.Status, model)
		return nil, apierror.Upstream("Ollama API error", resp.Text())
	}
	metrics.ObserveUpstream("ollama", "ok")

	// a 200 that isn't JSON means something other than Ollama answered
	if !json.Valid(resp.Body) {
		return nil, apierror.Connectivity("Failed to connect to Ollama",
			fmt.Errorf("invalid JSON in response: %.200s", resp.Text()))
	}

	return json.RawMessage(resp.Body), nil
}

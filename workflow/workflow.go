// Package workflow proxies webhook calls and management API requests to an
// n8n server.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"aigateway/apierror"
	"aigateway/backend"
	"aigateway/config"
	"aigateway/logging"
	"aigateway/metrics"
)

var log *logrus.Logger

func init() {
	log = logging.GetLogger()
}

const (
	apiKeyHeader = "X-N8N-API-KEY"
	upstreamName = "n8n"
)

// Service talks to a single n8n instance.
type Service struct {
	n8n *backend.Client
	cfg config.N8NConfig
}

func NewService(cfg *config.Config) *Service {
	return &Service{
		n8n: backend.NewBackendClient(cfg.N8N.URL, 0),
		cfg: cfg.N8N,
	}
}

// Payload is a webhook body together with its encoding.
type Payload struct {
	Body        []byte
	ContentType string
}

// JSONPayload wraps an already validated JSON document.
func JSONPayload(body []byte) Payload {
	return Payload{Body: body, ContentType: "application/json"}
}

// FormPayload url-encodes the first value of every field.
func FormPayload(form url.Values) Payload {
	flat := url.Values{}
	for key, values := range form {
		if len(values) > 0 {
			flat.Set(key, values[0])
		}
	}
	return Payload{Body: []byte(flat.Encode()), ContentType: "application/x-www-form-urlencoded"}
}

// Trigger posts payload to the workflow's webhook. A JSON answer is returned
// as is; anything else is wrapped as {"message": <text>}.
func (s *Service) Trigger(ctx context.Context, workflowID string, payload Payload) (any, error) {
	ctx, cancel := withTimeout(ctx, s.cfg.WebhookTimeout)
	defer cancel()

	headers := http.Header{}
	headers.Set("Content-Type", payload.ContentType)

	path := "/webhook/" + url.PathEscape(workflowID)
	resp, err := s.n8n.Forward(ctx, http.MethodPost, path, headers, bytes.NewReader(payload.Body))
	if err != nil {
		metrics.ObserveUpstream(upstreamName, "unreachable")
		return nil, apierror.Connectivity("Failed to connect to N8N", err)
	}

	if !resp.OK() {
		metrics.ObserveUpstream(upstreamName, "error_status")
		log.Warnf("webhook %s returned %s", workflowID, resp.Status)
		return nil, apierror.RelayedUpstream("N8N workflow execution failed", resp.StatusCode, resp.Text())
	}
	metrics.ObserveUpstream(upstreamName, "ok")

	if json.Valid(resp.Body) {
		return json.RawMessage(resp.Body), nil
	}
	return map[string]string{"message": resp.Text()}, nil
}

// api performs one authenticated management API call and relays any non-200
// answer under failure.
func (s *Service) api(ctx context.Context, method, path string, body []byte, timeout time.Duration, failure string) (*backend.Response, error) {
	if s.cfg.APIKey == "" {
		return nil, apierror.Configuration("N8N API key not configured")
	}

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	headers := http.Header{}
	headers.Set(apiKeyHeader, s.cfg.APIKey)
	headers.Set("Content-Type", "application/json")

	resp, err := s.n8n.Forward(ctx, method, path, headers, bytes.NewReader(body))
	if err != nil {
		metrics.ObserveUpstream(upstreamName, "unreachable")
		return nil, apierror.Connectivity("Failed to connect to N8N API", err)
	}

	if !resp.OK() {
		metrics.ObserveUpstream(upstreamName, "error_status")
		log.Warnf("%s %s returned %s", method, path, resp.Status)
		return nil, apierror.RelayedUpstream(failure, resp.StatusCode, resp.Text())
	}
	metrics.ObserveUpstream(upstreamName, "ok")

	return resp, nil
}

// decodeData unmarshals the answer and returns its "data" member. A missing,
// null or non-object member yields an empty map.
func decodeData(resp *backend.Response) (map[string]any, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, apierror.Internal(fmt.Errorf("n8n returned an unexpected body: %w", err))
	}

	data := map[string]any{}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			log.Debugf("ignoring non-object data in n8n response: %v", err)
			data = map[string]any{}
		}
		if data == nil {
			data = map[string]any{}
		}
	}
	return data, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

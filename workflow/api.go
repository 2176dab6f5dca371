package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"aigateway/apierror"
)

// Summary is the reduced view of a workflow returned by List. Fields missing
// upstream are reported as null.
type Summary struct {
	ID     any `json:"id"`
	Name   any `json:"name"`
	Active any `json:"active"`
}

// List returns every workflow known to n8n.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	resp, err := s.api(ctx, http.MethodGet, "/api/v1/workflows", nil, s.cfg.APITimeout, "Failed to fetch workflows")
	if err != nil {
		return nil, err
	}

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, apierror.Internal(fmt.Errorf("n8n returned an unexpected workflow list: %w", err))
	}

	workflows := make([]Summary, 0, len(body.Data))
	for _, wf := range body.Data {
		workflows = append(workflows, Summary{
			ID:     wf["id"],
			Name:   wf["name"],
			Active: wf["active"],
		})
	}
	return workflows, nil
}

// ExecuteRequest is the body sent to n8n's execute endpoint.
type ExecuteRequest struct {
	WorkflowData struct {
		ID string `json:"id"`
	} `json:"workflowData"`
	InputData json.RawMessage `json:"inputData"`
}

// Execution acknowledges a started run.
type Execution struct {
	ExecutionID any    `json:"execution_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// Execute starts workflowID with input as its input data. Falsy input (empty,
// null, false, 0, "", [] or {}) is sent as an empty object.
func (s *Service) Execute(ctx context.Context, workflowID string, input []byte) (*Execution, error) {
	inputData, err := NormalizeInput(input)
	if err != nil {
		return nil, err
	}

	var req ExecuteRequest
	req.WorkflowData.ID = workflowID
	req.InputData = inputData

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	path := fmt.Sprintf("/api/v1/workflows/%s/execute", url.PathEscape(workflowID))
	resp, err := s.api(ctx, http.MethodPost, path, payload, s.cfg.ExecuteTimeout, "Workflow execution failed")
	if err != nil {
		return nil, err
	}

	data, err := decodeData(resp)
	if err != nil {
		return nil, err
	}

	log.Infof("workflow %s started as execution %v", workflowID, data["executionId"])

	return &Execution{
		ExecutionID: data["executionId"],
		Status:      "started",
		Message:     "Workflow execution initiated",
	}, nil
}

// ExecutionStatus reports the progress of a run.
type ExecutionStatus struct {
	ExecutionID string         `json:"execution_id"`
	Status      string         `json:"status"`
	StartTime   any            `json:"start_time"`
	EndTime     any            `json:"end_time"`
	Data        map[string]any `json:"data"`
}

// Status looks up an execution. It is "completed" once n8n marks it
// finished and "running" otherwise.
func (s *Service) Status(ctx context.Context, executionID string) (*ExecutionStatus, error) {
	path := "/api/v1/executions/" + url.PathEscape(executionID)
	resp, err := s.api(ctx, http.MethodGet, path, nil, s.cfg.APITimeout, "Failed to fetch execution status")
	if err != nil {
		return nil, err
	}

	data, err := decodeData(resp)
	if err != nil {
		return nil, err
	}

	status := "running"
	if truthy(data["finished"]) {
		status = "completed"
	}

	return &ExecutionStatus{
		ExecutionID: executionID,
		Status:      status,
		StartTime:   data["startedAt"],
		EndTime:     data["stoppedAt"],
		Data:        data,
	}, nil
}

// NormalizeInput validates a caller's input data and replaces falsy values
// with an empty object.
func NormalizeInput(body []byte) (json.RawMessage, error) {
	empty := json.RawMessage(`{}`)
	if len(bytes.TrimSpace(body)) == 0 {
		return empty, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, apierror.ClientInput("Invalid JSON in request body")
	}
	if !truthy(v) {
		return empty, nil
	}
	return json.RawMessage(body), nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

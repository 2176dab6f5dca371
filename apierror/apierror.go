// Package apierror holds the closed set of failure kinds the gateway reports
// and their mapping onto HTTP status codes and the JSON error envelope.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	KindInternal Kind = iota
	KindClientInput
	KindUpstream
	KindConnectivity
	KindTimeout
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindUpstream:
		return "upstream"
	case KindConnectivity:
		return "connectivity"
	case KindTimeout:
		return "timeout"
	case KindConfiguration:
		return "configuration"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message becomes the envelope's "error" key,
// Details the optional "details" key. UpstreamStatus is set when the failure
// relays a non-200 answer from an upstream service.
type Error struct {
	Kind           Kind
	Message        string
	Details        string
	UpstreamStatus int
	// Relay makes the HTTP status equal UpstreamStatus instead of 500.
	Relay bool
	Err   error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode is the HTTP status the envelope is written with.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindClientInput:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusRequestTimeout
	case KindUpstream:
		if e.Relay && e.UpstreamStatus > 0 {
			return e.UpstreamStatus
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the JSON body of every error response.
type Envelope struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Envelope renders e for the wire.
func (e *Error) Envelope() Envelope {
	return Envelope{
		Error:      e.Message,
		StatusCode: e.UpstreamStatus,
		Details:    e.Details,
	}
}

func ClientInput(msg string) *Error {
	return &Error{Kind: KindClientInput, Message: msg}
}

// Upstream reports a failing tool or service with its captured diagnostic.
func Upstream(msg, details string) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Details: details}
}

// RelayedUpstream reports a non-200 upstream answer whose status is passed
// through to the caller.
func RelayedUpstream(msg string, status int, body string) *Error {
	return &Error{
		Kind:           KindUpstream,
		Message:        msg,
		Details:        body,
		UpstreamStatus: status,
		Relay:          true,
	}
}

func Connectivity(msg string, err error) *Error {
	return &Error{Kind: KindConnectivity, Message: msg, Details: errString(err), Err: err}
}

func Timeout(msg string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: msg, Err: err}
}

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Details: errString(err), Err: err}
}

// From classifies an arbitrary error. Anything not already an *Error is
// reported as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

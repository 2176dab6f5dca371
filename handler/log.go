package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"aigateway/apierror"
)

func logRequest(req *http.Request, status int, elapsed time.Duration) {
	entry := log.WithField("request_id", requestID(req))
	msg := "%s -- %s -- %s -- %d -- %s"
	args := []any{req.RemoteAddr, req.Method, req.URL.Path, status, elapsed.Round(time.Millisecond)}
	if status >= http.StatusInternalServerError {
		entry.Warnf(msg, args...)
		return
	}
	entry.Infof(msg, args...)
}

// logAndReturnError classifies err, logs it with its diagnostic details and
// writes the JSON envelope.
func logAndReturnError(w http.ResponseWriter, req *http.Request, err error) {
	apiErr := apierror.From(err)
	status := apiErr.StatusCode()

	entry := log.WithFields(logrus.Fields{
		"request_id": requestID(req),
		"kind":       apiErr.Kind.String(),
		"status":     status,
	})
	if apiErr.Details != "" {
		entry = entry.WithField("details", apiErr.Details)
	}
	switch {
	case apiErr.Kind == apierror.KindClientInput:
		entry.Debugln(apiErr.Message)
	case status >= http.StatusInternalServerError:
		entry.Errorln(apiErr.Message)
	default:
		entry.Warnln(apiErr.Message)
	}

	writeJSON(w, status, apiErr.Envelope())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to write response: %v", err)
	}
}

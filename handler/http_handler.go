package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"aigateway/apierror"
	"aigateway/metrics"
)

type contextKey string

const requestIDKey = contextKey("requestID")

const requestIDHeader = "X-Request-ID"

// routeUnmatched labels requests that never reached a registered route.
const routeUnmatched = "unmatched"

// statusRecorder remembers what was written so the outer middleware can log
// and count the response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
	route  string
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.wrote {
		return
	}
	r.status = code
	r.wrote = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wrote {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

func requestID(req *http.Request) string {
	if id, ok := req.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// serve wraps the router with request ids, panic recovery, logging and
// metrics. It sits outside the router so 404 and 405 answers are covered too.
func serve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()

		id := req.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		req = req.WithContext(context.WithValue(req.Context(), requestIDKey, id))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK, route: routeUnmatched}

		defer func() {
			if p := recover(); p != nil {
				log.WithField("request_id", id).Errorf("panic handling %s %s: %v\n%s", req.Method, req.URL.Path, p, debug.Stack())
				if !rec.wrote {
					logAndReturnError(rec, req, apierror.Internal(fmt.Errorf("%v", p)))
				}
			}

			elapsed := time.Since(start)
			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, rec.route, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(req.Method, rec.route).Observe(elapsed.Seconds())
			logRequest(req, rec.status, elapsed)
		}()

		next.ServeHTTP(rec, req)
	})
}

// routeLabel records the matched route template on the outer recorder.
func routeLabel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if rec, ok := w.(*statusRecorder); ok {
			if route := mux.CurrentRoute(req); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					rec.route = tpl
				}
			}
		}
		next.ServeHTTP(w, req)
	})
}

package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpPanics = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gradecast",
	Subsystem: "http",
	Name:      "panics_total",
	Help:      "Total handler panics recovered",
})

type panicBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// Recovery answers a handler panic with a JSON 500 carrying the request ID,
// so a client report can be matched to the logged stack.
// http.ErrAbortHandler is re-raised for net/http to handle.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				httpPanics.Inc()
				// Logging runs inside Recovery, so the ID is only on the response.
				id := RequestID(r.Context())
				if id == "" {
					id = w.Header().Get(RequestIDHeader)
				}
				logger.Error("handler panic",
					"panic", fmt.Sprint(rec),
					"request_id", id,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(panicBody{Error: "internal server error", RequestID: id})
			}()

			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"net/http"
)

// MaxBodySize is the default request body limit. Grade and attendance
// payloads are a few hundred bytes.
const MaxBodySize = 64 << 10

// MaxBody limits the body of POST, PUT and PATCH requests. A declared
// Content-Length over the limit is refused before the handler runs; bodies of
// unknown length are cut off by http.MaxBytesReader. A maxSize of 0 uses
// MaxBodySize.
func MaxBody(maxSize int64) Middleware {
	if maxSize <= 0 {
		maxSize = MaxBodySize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				if r.ContentLength > maxSize {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusRequestEntityTooLarge)
					w.Write([]byte(`{"error":"request body too large"}`))
					return
				}
				r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			}
			next.ServeHTTP(w, r)
		})
	}
}

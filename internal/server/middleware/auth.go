package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthConfig holds Basic Auth credentials.
type AuthConfig struct {
	Enabled  bool
	User     string
	Password string
}

type userKey struct{}

// User returns the authenticated user name stored by Auth, or "".
func User(ctx context.Context) string {
	u, _ := ctx.Value(userKey{}).(string)
	return u
}

// Auth creates a Basic Auth middleware.
// Paths in excludePaths will be excluded from authentication.
// Paths ending with "*" are treated as prefixes (e.g., "/v1/*" matches "/v1/model").
func Auth(config AuthConfig, excludePaths ...string) Middleware {
	exactExcludes := make(map[string]bool)
	var prefixExcludes []string

	for _, path := range excludePaths {
		if strings.HasSuffix(path, "*") {
			prefixExcludes = append(prefixExcludes, strings.TrimSuffix(path, "*"))
		} else {
			exactExcludes[path] = true
		}
	}

	excluded := func(path string) bool {
		if exactExcludes[path] {
			return true
		}
		for _, prefix := range prefixExcludes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		if !config.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok {
				unauthorized(w)
				return
			}

			// Constant time comparison to prevent timing attacks
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(config.User)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(config.Password)) == 1

			if !userMatch || !passMatch {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="gradecast"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

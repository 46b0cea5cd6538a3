package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ticketon/ticketon/internal/token"
)

const bearerPrefix = "Bearer "

// BearerAuth validates the Authorization header against the access key and
// stores the principal in the request context. Any failure, including a
// missing header, lets the request through anonymously; role checks in the
// handlers decide what anonymous callers may do.
func BearerAuth(codec *token.Codec, keys token.Keys) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimPrefix(header, bearerPrefix)
			if !codec.Validate(raw, keys.Access) {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := codec.Decode(raw, keys.Access)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			p := Principal{Login: claims.Subject, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// RequestLogger logs method, path, status and latency for every request.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("took", time.Since(start)))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

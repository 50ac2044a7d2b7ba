package web

import (
	"net/http"
	"time"

	appLog "festcal/internal/log"
)

// loggingWriter captures status code and size for the request log.
type loggingWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *loggingWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggingWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// requestLogger logs method, path, status, duration and size of every
// request at debug level; error responses are logged at warn.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrap := &loggingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrap, r)

		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrap.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"size", wrap.size,
		}
		if wrap.status >= 400 {
			appLog.Warn("request", kv...)
			return
		}
		appLog.Debug("request", kv...)
	})
}

package httpapi

import (
	"net/http"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *statusWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (s *Server) withObservability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}

		pattern := r.Pattern
		if pattern == "" {
			pattern = r.Method + " " + r.URL.Path
		}
		s.metrics.incRequest(pattern, status)

		if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
			return
		}
		// Never log the query string.
		s.opt.Logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"pattern", pattern,
			"status", status,
			"duration", time.Since(start).Round(time.Millisecond),
			"bytes", sw.bytes,
		)
	})
}

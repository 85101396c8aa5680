package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// instrument records request metrics for endpoint and logs the request at debug.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(wrapped, r)

		elapsed := since(start)
		status := strconv.Itoa(wrapped.statusCode)
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(endpoint, r.Method, status, elapsed)
		}
		s.logger.Debug("http request",
			zap.String("endpoint", endpoint),
			zap.String("method", r.Method),
			zap.Int("status", wrapped.statusCode),
			zap.Float64("duration_ms", elapsed),
		)
	}
}

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

package providers

import (
	"net/http"
	"time"
)

// responseRecorder remembers the status code and body size of a response.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// endpointLabel prefers the matched ServeMux pattern so record ids in the
// path do not explode label cardinality.
func endpointLabel(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return "unmatched"
}

func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newResponseRecorder(w)

		next.ServeHTTP(rec, r)

		endpoint := endpointLabel(r)
		metrics.IncRequestsTotal(endpoint, rec.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}

// AccessLogMiddleware writes one line per request into the read or write
// access log. Server errors are logged at error level, client errors at warn.
func AccessLogMiddleware(logger Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newResponseRecorder(w)

		next.ServeHTTP(rec, r)

		logf := logger.Infof
		switch {
		case rec.status >= http.StatusInternalServerError:
			logf = logger.Errorf
		case rec.status >= http.StatusBadRequest:
			logf = logger.Warnf
		}
		logf(GetLogTypeByRequestType(r.Method), "%s %s %d %dB %s",
			r.Method, r.URL.RequestURI(), rec.status, rec.bytes, time.Since(start))
	})
}

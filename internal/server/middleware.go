package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"
)

const (
	headerAPIKey       = "X-API-Key"
	headerConversionID = "X-Conversion-Id"
)

// conversionParams are the query parameters that name formats on the
// conversion routes. RequestLogging copies them into the request line.
var conversionParams = []string{"from", "to", "format", "filename"}

// APIKeyAuth returns middleware that guards the conversion routes with the
// X-API-Key header.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	want := []byte(apiKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(headerAPIKey)
			if key == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing API key"})
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), want) != 1 {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid API key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging returns middleware that logs each request. Conversion
// requests also log their formats, the upload and document sizes and the
// conversion id. Server errors are logged at error level.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			}
			attrs = append(attrs, conversionAttrs(r, sw)...)

			level := slog.LevelInfo
			if sw.status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "request", attrs...)
		})
	}
}

func conversionAttrs(r *http.Request, sw *statusWriter) []any {
	var attrs []any
	q := r.URL.Query()
	for _, p := range conversionParams {
		if v := q.Get(p); v != "" {
			attrs = append(attrs, p, v)
		}
	}
	if r.ContentLength > 0 {
		attrs = append(attrs, "upload_bytes", r.ContentLength)
	}
	if id := sw.Header().Get(headerConversionID); id != "" {
		attrs = append(attrs, "conversion_id", id, "document_bytes", sw.written)
	}
	return attrs
}

// CORS adds permissive CORS headers for local development. Browsers may read
// the conversion id of a converted document.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+headerAPIKey)
		w.Header().Set("Access-Control-Expose-Headers", headerConversionID)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter records the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// Flush lets streaming handlers mounted behind the middleware flush.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

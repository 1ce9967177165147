package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/claude/workouthub/internal/storage"
)

type roundTripResponse struct {
	*roundtrip.Report
	Passed bool `json:"passed"`
}

func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	formats := s.registry.Formats()
	infos := make([]ingest.FormatInfo, len(formats))
	for i, f := range formats {
		infos[i] = ingest.Describe(f)
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	from, err := sourceFormat(r, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := ingest.ParseFormat(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	var out bytes.Buffer
	start := time.Now()
	result, err := s.registry.Convert(from, to, body, &out)
	if err != nil {
		s.log.Warn("conversion failed", "from", from, "to", to, "error", err)
		s.record(r.Context(), storage.ConversionLogFromError(storage.KindConvert, from, to, err, time.Since(start)))
		writeError(w, err)
		return
	}
	s.record(r.Context(), storage.ConversionLogFromResult(result, time.Since(start)))

	w.Header().Set("Content-Type", ingest.Describe(to).MediaType)
	w.Header().Set(headerConversionID, result.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := out.WriteTo(w); err != nil {
		s.log.Warn("writing conversion response", "error", err)
	}
}

func (s *Server) handleRoundTrip(w http.ResponseWriter, r *http.Request) {
	format, err := sourceFormat(r, "format")
	if err != nil {
		writeError(w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	start := time.Now()
	report, err := s.registry.RoundTrip(format, body, s.policy)
	if err != nil {
		s.log.Warn("round trip failed", "format", format, "error", err)
		s.record(r.Context(), storage.ConversionLogFromError(storage.KindRoundTrip, format, "", err, time.Since(start)))
		writeError(w, err)
		return
	}
	s.record(r.Context(), storage.ConversionLogFromReport(format, report, time.Since(start)))

	writeJSON(w, http.StatusOK, roundTripResponse{Report: report, Passed: report.Passed()})
}

func (s *Server) handleConversions(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "conversion log is disabled"})
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" {
		f, err := ingest.ParseFormat(format)
		if err != nil {
			writeError(w, err)
			return
		}
		format = string(f)
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	logs, err := s.logs.QueryConversionLogs(r.Context(), format, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.ConversionLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleConversionStats(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "conversion log is disabled"})
		return
	}
	stats, err := s.logs.GetConversionStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// record stores l when a conversion log is configured. Failures are logged
// and never fail the request.
func (s *Server) record(ctx context.Context, l storage.ConversionLog) {
	if s.logs == nil {
		return
	}
	if _, err := s.logs.InsertConversionLog(ctx, l); err != nil {
		s.log.Warn("failed to record conversion", "kind", l.Kind, "error", err)
	}
}

// sourceFormat reads the format from the named query parameter, falling back
// to the extension of the filename parameter.
func sourceFormat(r *http.Request, param string) (ingest.Format, error) {
	q := r.URL.Query()
	if v := q.Get(param); v != "" {
		return ingest.ParseFormat(v)
	}
	if name := q.Get("filename"); name != "" {
		return ingest.FormatFromPath(name)
	}
	return ingest.ParseFormat("")
}

// writeError maps conversion errors to status codes. Structural problems
// answer 422 with every offending field.
func writeError(w http.ResponseWriter, err error) {
	var verrs models.ValidationErrors
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "invalid document",
			"fields": verrs,
		})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/claude/workouthub/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadBytes bounds a single converted or checked file.
const maxUploadBytes = 32 << 20

// ConversionLog persists conversion outcomes. *storage.DB implements it.
type ConversionLog interface {
	InsertConversionLog(ctx context.Context, l storage.ConversionLog) (uuid.UUID, error)
	QueryConversionLogs(ctx context.Context, format string, limit int) ([]storage.ConversionLog, error)
	GetConversionStats(ctx context.Context) (*storage.ConversionStats, error)
}

var _ ConversionLog = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	registry *ingest.Registry
	logs     ConversionLog
	policy   roundtrip.Policy
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. logs may be nil, in
// which case nothing is persisted and the log endpoints answer 503.
func New(registry *ingest.Registry, logs ConversionLog, policy roundtrip.Policy, apiKey string, log *slog.Logger) *Server {
	if policy == nil {
		policy = roundtrip.DefaultPolicy()
	}
	s := &Server{
		registry: registry,
		logs:     logs,
		policy:   policy,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Conversion endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/convert", s.handleConvert)
		r.Post("/api/v1/roundtrip", s.handleRoundTrip)
	})

	// Read-only endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/formats", s.handleFormats)
	s.router.Get("/api/v1/conversions", s.handleConversions)
	s.router.Get("/api/v1/conversions/stats", s.handleConversionStats)
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Mount attaches an extra handler, such as the MCP endpoint, under pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

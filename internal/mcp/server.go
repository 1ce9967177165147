// Package mcp exposes workout conversion as Model Context Protocol tools.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("workouthub", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("workouthub converts structured workouts and recorded activities between FIT (decoded JSON), TCX, ZWO and the canonical KRD document, and checks that a format survives a round trip within tolerance. Pass file contents as text."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListFormats, Handler: h.listFormats},
		server.ServerTool{Tool: toolConvertWorkout, Handler: h.convertWorkout},
		server.ServerTool{Tool: toolValidateRoundTrip, Handler: h.validateRoundTrip},
		server.ServerTool{Tool: toolRecentConversions, Handler: h.recentConversions},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resFormatCatalog, Handler: h.formatCatalog},
		server.ServerResource{Resource: resRecentConversions, Handler: h.recentConversionsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resFormatCatalog = mcp.NewResource(
	"workouthub://formats",
	"Format Catalog",
	mcp.WithResourceDescription("Supported formats with file extensions and media types"),
	mcp.WithMIMEType("application/json"),
)

var resRecentConversions = mcp.NewResource(
	"workouthub://recent_conversions",
	"Recent Conversions",
	mcp.WithResourceDescription("The 20 most recent conversions and round-trip checks"),
	mcp.WithMIMEType("application/json"),
)

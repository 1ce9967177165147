package mcp

import (
	"context"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/mark3labs/mcp-go/mcp"
)

var formatEnum = mcp.Enum(string(ingest.FormatFIT), string(ingest.FormatTCX), string(ingest.FormatZWO), string(ingest.FormatKRD))

// --- Tool definitions ---

var toolListFormats = mcp.NewTool("list_formats",
	mcp.WithDescription("List the formats this server can read and write."),
)

var toolConvertWorkout = mcp.NewTool("convert_workout",
	mcp.WithDescription("Convert a workout or activity file from one format to another. Returns the converted file as text. Structural problems in a canonical document are listed field by field."),
	mcp.WithString("from", mcp.Required(), mcp.Description("Source format"), formatEnum),
	mcp.WithString("to", mcp.Required(), mcp.Description("Target format"), formatEnum),
	mcp.WithString("content", mcp.Required(), mcp.Description("Source file contents (FIT as its decoded JSON message stream)")),
)

var toolValidateRoundTrip = mcp.NewTool("validate_round_trip",
	mcp.WithDescription("Convert a file to the canonical document and back, and report every field that changed beyond its tolerance."),
	mcp.WithString("format", mcp.Required(), mcp.Description("Format of the file"), formatEnum),
	mcp.WithString("content", mcp.Required(), mcp.Description("File contents")),
)

var toolRecentConversions = mcp.NewTool("recent_conversions",
	mcp.WithDescription("List recent conversions and round-trip checks from the conversion log, newest first."),
	mcp.WithString("format", mcp.Description("Only entries with this source format"), formatEnum),
	mcp.WithNumber("limit", mcp.Description("Maximum entries. Defaults to 20.")),
)

// --- Tool handlers ---

func (h *handlers) listFormats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formats, err := h.ds.ListFormats(ctx)
	if err != nil {
		h.log.Error("mcp list_formats", "error", err)
		return mcp.NewToolResultError("listing formats failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(formats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) convertWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := requireFormat(req, "from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := requireFormat(req, "to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content parameter is required"), nil
	}

	conv, err := h.ds.Convert(ctx, from, to, []byte(content))
	if err != nil {
		h.log.Warn("mcp convert_workout", "from", from, "to", to, "error", err)
		return mcp.NewToolResultError("conversion failed: " + err.Error()), nil
	}
	return mcp.NewToolResultText(conv.Output), nil
}

func (h *handlers) validateRoundTrip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := requireFormat(req, "format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content parameter is required"), nil
	}

	report, err := h.ds.RoundTrip(ctx, format, []byte(content))
	if err != nil {
		h.log.Warn("mcp validate_round_trip", "format", format, "error", err)
		return mcp.NewToolResultError("round trip failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"format":     report.Format,
		"compared":   report.Compared,
		"passed":     report.Passed(),
		"violations": report.Violations,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) recentConversions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := req.GetString("format", "")
	limit := req.GetInt("limit", 20)

	logs, err := h.ds.RecentConversions(ctx, format, limit)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func requireFormat(req mcp.CallToolRequest, name string) (ingest.Format, error) {
	v, err := req.RequireString(name)
	if err != nil {
		return "", err
	}
	return ingest.ParseFormat(v)
}

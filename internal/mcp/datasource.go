package mcp

import (
	"bytes"
	"context"
	"errors"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/claude/workouthub/internal/storage"
)

// ErrLogDisabled is returned when no conversion log is configured.
var ErrLogDisabled = errors.New("conversion log is disabled")

// Conversion is a converted document as text.
type Conversion struct {
	ID     string        `json:"id"`
	From   ingest.Format `json:"from"`
	To     ingest.Format `json:"to"`
	Output string        `json:"output"`
}

// DataSource abstracts the conversion layer for MCP tools. Both Local
// (in-process registry) and HTTPClient (remote via REST API) satisfy it.
type DataSource interface {
	ListFormats(ctx context.Context) ([]ingest.FormatInfo, error)
	Convert(ctx context.Context, from, to ingest.Format, content []byte) (*Conversion, error)
	RoundTrip(ctx context.Context, format ingest.Format, content []byte) (*roundtrip.Report, error)
	RecentConversions(ctx context.Context, format string, limit int) ([]storage.ConversionLog, error)
}

// LogReader lists conversion log entries. *storage.DB implements it.
type LogReader interface {
	QueryConversionLogs(ctx context.Context, format string, limit int) ([]storage.ConversionLog, error)
}

// Local runs conversions in-process.
type Local struct {
	registry *ingest.Registry
	policy   roundtrip.Policy
	logs     LogReader
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a Local source. logs may be nil.
func NewLocal(registry *ingest.Registry, policy roundtrip.Policy, logs LogReader) *Local {
	if policy == nil {
		policy = roundtrip.DefaultPolicy()
	}
	return &Local{registry: registry, policy: policy, logs: logs}
}

func (l *Local) ListFormats(context.Context) ([]ingest.FormatInfo, error) {
	formats := l.registry.Formats()
	out := make([]ingest.FormatInfo, len(formats))
	for i, f := range formats {
		out[i] = ingest.Describe(f)
	}
	return out, nil
}

func (l *Local) Convert(_ context.Context, from, to ingest.Format, content []byte) (*Conversion, error) {
	var out bytes.Buffer
	res, err := l.registry.Convert(from, to, bytes.NewReader(content), &out)
	if err != nil {
		return nil, err
	}
	return &Conversion{ID: res.ID, From: from, To: to, Output: out.String()}, nil
}

func (l *Local) RoundTrip(_ context.Context, format ingest.Format, content []byte) (*roundtrip.Report, error) {
	return l.registry.RoundTrip(format, bytes.NewReader(content), l.policy)
}

func (l *Local) RecentConversions(ctx context.Context, format string, limit int) ([]storage.ConversionLog, error) {
	if l.logs == nil {
		return nil, ErrLogDisabled
	}
	return l.logs.QueryConversionLogs(ctx, format, limit)
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/google/uuid"
)

// Conversion log kinds.
const (
	KindConvert   = "convert"
	KindRoundTrip = "roundtrip"
)

// Conversion log statuses. A round trip that ran but found violations is
// StatusFailed; StatusError means the operation itself did not complete.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// ConversionLog records one conversion or round-trip check.
type ConversionLog struct {
	ID           uuid.UUID        `json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	Kind         string           `json:"kind"`
	SourceFormat string           `json:"source_format"`
	TargetFormat string           `json:"target_format,omitempty"`
	DocumentType string           `json:"document_type,omitempty"`
	Status       string           `json:"status"`
	Steps        int              `json:"steps"`
	Records      int              `json:"records"`
	Violations   int              `json:"violations"`
	BytesIn      int64            `json:"bytes_in"`
	BytesOut     int64            `json:"bytes_out"`
	DurationMs   *int             `json:"duration_ms"`
	ErrorMessage *string          `json:"error_message"`
	Metadata     *json.RawMessage `json:"metadata"`
}

// ConversionLogFromResult builds the log entry for a finished conversion.
func ConversionLogFromResult(res *ingest.Result, elapsed time.Duration) ConversionLog {
	id, err := uuid.Parse(res.ID)
	if err != nil {
		id = uuid.New()
	}
	return ConversionLog{
		ID:           id,
		Kind:         KindConvert,
		SourceFormat: string(res.From),
		TargetFormat: string(res.To),
		DocumentType: res.DocumentType,
		Status:       StatusSuccess,
		Steps:        res.Steps,
		Records:      res.Records,
		BytesIn:      res.BytesIn,
		BytesOut:     res.BytesOut,
		DurationMs:   millis(elapsed),
	}
}

// ConversionLogFromReport builds the log entry for a round-trip check. The
// violated field names are kept in Metadata.
func ConversionLogFromReport(format ingest.Format, report *roundtrip.Report, elapsed time.Duration) ConversionLog {
	l := ConversionLog{
		ID:           uuid.New(),
		Kind:         KindRoundTrip,
		SourceFormat: string(format),
		Status:       StatusSuccess,
		Violations:   len(report.Violations),
		DurationMs:   millis(elapsed),
	}
	if !report.Passed() {
		l.Status = StatusFailed
		fields := make([]string, len(report.Violations))
		for i, v := range report.Violations {
			fields[i] = v.Field
		}
		if b, err := json.Marshal(map[string]any{"fields": fields}); err == nil {
			raw := json.RawMessage(b)
			l.Metadata = &raw
		}
	}
	return l
}

// ConversionLogFromError builds the log entry for an operation that failed.
func ConversionLogFromError(kind string, from, to ingest.Format, cause error, elapsed time.Duration) ConversionLog {
	msg := cause.Error()
	return ConversionLog{
		ID:           uuid.New(),
		Kind:         kind,
		SourceFormat: string(from),
		TargetFormat: string(to),
		Status:       StatusError,
		DurationMs:   millis(elapsed),
		ErrorMessage: &msg,
	}
}

func millis(d time.Duration) *int {
	ms := int(d.Milliseconds())
	return &ms
}

// InsertConversionLog stores a log entry. A zero ID is replaced with a new one.
func (db *DB) InsertConversionLog(ctx context.Context, l ConversionLog) (uuid.UUID, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO conversion_logs (id, kind, source_format, target_format, document_type, status,
		 steps, records, violations, bytes_in, bytes_out, duration_ms, error_message, metadata)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		l.ID, l.Kind, l.SourceFormat, l.TargetFormat, l.DocumentType, l.Status,
		l.Steps, l.Records, l.Violations, l.BytesIn, l.BytesOut,
		l.DurationMs, l.ErrorMessage, l.Metadata,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting conversion log: %w", err)
	}
	return l.ID, nil
}

// QueryConversionLogs returns the most recent log entries, newest first.
// An empty format matches every source format.
func (db *DB) QueryConversionLogs(ctx context.Context, format string, limit int) ([]ConversionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, created_at, kind, source_format, target_format, document_type, status,
		 steps, records, violations, bytes_in, bytes_out, duration_ms, error_message, metadata
		 FROM conversion_logs
		 WHERE $1 = '' OR source_format = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		format, limit)
	if err != nil {
		return nil, fmt.Errorf("querying conversion logs: %w", err)
	}
	defer rows.Close()

	var result []ConversionLog
	for rows.Next() {
		var l ConversionLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Kind, &l.SourceFormat, &l.TargetFormat,
			&l.DocumentType, &l.Status, &l.Steps, &l.Records, &l.Violations,
			&l.BytesIn, &l.BytesOut, &l.DurationMs, &l.ErrorMessage, &l.Metadata); err != nil {
			return nil, fmt.Errorf("scanning conversion log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

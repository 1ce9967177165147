package storage

import (
	"context"
	"fmt"
	"time"
)

// ConversionStats holds aggregate statistics over the conversion log.
type ConversionStats struct {
	TotalConversions int64        `json:"total_conversions"`
	TotalRoundTrips  int64        `json:"total_round_trips"`
	FailedRoundTrips int64        `json:"failed_round_trips"`
	Errors           int64        `json:"errors"`
	Earliest         *time.Time   `json:"earliest"`
	Latest           *time.Time   `json:"latest"`
	ByFormat         []FormatStat `json:"by_format"`
}

// FormatStat summarizes the log entries for one source format.
type FormatStat struct {
	Format     string `json:"format"`
	Count      int64  `json:"count"`
	Violations int64  `json:"violations"`
	BytesIn    int64  `json:"bytes_in"`
}

// GetConversionStats returns aggregate statistics for the conversion log.
func (db *DB) GetConversionStats(ctx context.Context) (*ConversionStats, error) {
	stats := &ConversionStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE kind = $1),
		   COUNT(*) FILTER (WHERE kind = $2),
		   COUNT(*) FILTER (WHERE kind = $2 AND status = $3),
		   COUNT(*) FILTER (WHERE status = $4),
		   MIN(created_at), MAX(created_at)
		 FROM conversion_logs`,
		KindConvert, KindRoundTrip, StatusFailed, StatusError,
	).Scan(&stats.TotalConversions, &stats.TotalRoundTrips, &stats.FailedRoundTrips,
		&stats.Errors, &stats.Earliest, &stats.Latest)
	if err != nil {
		return nil, fmt.Errorf("counting conversion logs: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT source_format, COUNT(*), COALESCE(SUM(violations), 0), COALESCE(SUM(bytes_in), 0)
		 FROM conversion_logs
		 GROUP BY source_format
		 ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying conversions by format: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s FormatStat
		if err := rows.Scan(&s.Format, &s.Count, &s.Violations, &s.BytesIn); err != nil {
			return nil, fmt.Errorf("scanning format stat: %w", err)
		}
		stats.ByFormat = append(stats.ByFormat, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

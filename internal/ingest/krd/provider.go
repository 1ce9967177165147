// Package krd reads and writes the canonical document as JSON.
package krd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
)

// Provider is the canonical JSON adapter.
type Provider struct {
	log *slog.Logger
}

// NewProvider creates a new KRD adapter.
func NewProvider(log *slog.Logger) *Provider {
	return &Provider{log: log}
}

func (p *Provider) Format() ingest.Format { return ingest.FormatKRD }

// Decode parses a canonical document, repairs step indices and validates it.
// Structural problems are reported together as models.ValidationErrors.
func (p *Provider) Decode(r io.Reader) (*models.Document, error) {
	doc, err := read(r)
	if err != nil {
		return nil, err
	}
	return normalize(doc)
}

// Encode validates doc and writes it as indented JSON.
func (p *Provider) Encode(w io.Writer, doc *models.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing KRD: %w", err)
	}
	return nil
}

// RoundTrip normalizes the document and compares it with the input. Any
// difference is a step index the input had wrong.
func (p *Provider) RoundTrip(r io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error) {
	doc, err := read(r)
	if err != nil {
		return nil, err
	}
	identity := func(d *models.Document) (*models.Document, error) { return d, nil }
	report, err := roundtrip.Check(doc, normalize, identity, policy)
	if err != nil {
		return nil, err
	}
	report.Format = string(ingest.FormatKRD)
	p.log.Debug("round trip", "format", report.Format, "compared", report.Compared, "violations", len(report.Violations))
	return report, nil
}

// normalize validates doc and returns a copy with its workout reindexed.
func normalize(doc *models.Document) (*models.Document, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	out := *doc
	if w := doc.Workout(); w != nil {
		ext := *doc.Extensions
		ext.Workout = models.ReindexWorkout(w)
		out.Extensions = &ext
	}
	return &out, nil
}

func read(r io.Reader) (*models.Document, error) {
	var doc models.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing KRD: %w", err)
	}
	return &doc, nil
}

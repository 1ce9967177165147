// Package tcx converts TrainingCenterDatabase XML to and from the canonical
// document: structured workouts, and activities with laps and trackpoints.
package tcx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
)

// Provider is the TCX adapter.
type Provider struct {
	conv *Converter
	log  *slog.Logger
}

// NewProvider creates a new TCX adapter.
func NewProvider(opts ingest.Options, log *slog.Logger) *Provider {
	return &Provider{conv: NewConverter(opts, log), log: log}
}

func (p *Provider) Format() ingest.Format { return ingest.FormatTCX }

// Decode parses a TCX document and validates the resulting canonical document.
func (p *Provider) Decode(r io.Reader) (*models.Document, error) {
	db, err := read(r)
	if err != nil {
		return nil, err
	}
	doc, err := p.conv.ToDocument(db)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode writes doc as an indented TCX document.
func (p *Provider) Encode(w io.Writer, doc *models.Document) error {
	db, err := p.conv.FromDocument(doc)
	if err != nil {
		return err
	}
	return write(w, db)
}

// RoundTrip converts the document to canonical and back and compares the
// re-encoded XML with the input as written, so elements and attributes this
// adapter does not read show up as violations.
func (p *Provider) RoundTrip(r io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading TCX: %w", err)
	}
	report, err := roundtrip.CheckBytes(data, parse, p.conv.ToDocument, p.conv.FromDocument, render, roundtrip.XMLTree, policy)
	if err != nil {
		return nil, err
	}
	report.Format = string(ingest.FormatTCX)
	p.log.Debug("round trip", "format", report.Format, "compared", report.Compared, "violations", len(report.Violations))
	return report, nil
}

func read(r io.Reader) (*models.TCXDatabase, error) {
	var db models.TCXDatabase
	if err := xml.NewDecoder(r).Decode(&db); err != nil {
		return nil, fmt.Errorf("parsing TCX: %w", err)
	}
	return &db, nil
}

func write(w io.Writer, db *models.TCXDatabase) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing TCX: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(db); err != nil {
		return fmt.Errorf("writing TCX: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing TCX: %w", err)
	}
	return nil
}

func parse(data []byte) (*models.TCXDatabase, error) {
	return read(bytes.NewReader(data))
}

func render(db *models.TCXDatabase) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, db); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

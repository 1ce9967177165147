// Package zwo converts Zwift workout_file XML to and from the canonical
// structured workout.
package zwo

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

// Provider is the ZWO adapter.
type Provider struct {
	conv *Converter
	log  *slog.Logger
}

// NewProvider creates a new ZWO adapter.
func NewProvider(opts ingest.Options, log *slog.Logger) *Provider {
	return &Provider{conv: NewConverter(opts, log), log: log}
}

func (p *Provider) Format() ingest.Format { return ingest.FormatZWO }

// Decode parses a workout_file and validates the resulting document.
func (p *Provider) Decode(r io.Reader) (*models.Document, error) {
	f, err := read(r)
	if err != nil {
		return nil, err
	}
	doc, err := p.conv.ToDocument(f)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Encode writes the document's workout as an indented workout_file.
func (p *Provider) Encode(w io.Writer, doc *models.Document) error {
	f, err := p.conv.FromDocument(doc)
	if err != nil {
		return err
	}
	return write(w, f)
}

// RoundTrip converts the workout to canonical and back and compares the
// re-encoded XML with the input as written, so elements and attributes this
// adapter does not read show up as violations.
func (p *Provider) RoundTrip(r io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading ZWO: %w", err)
	}
	report, err := roundtrip.CheckBytes(data, parse, p.conv.ToDocument, p.conv.FromDocument, render, roundtrip.XMLTree, policy)
	if err != nil {
		return nil, err
	}
	report.Format = string(ingest.FormatZWO)
	p.log.Debug("round trip", "format", report.Format, "compared", report.Compared, "violations", len(report.Violations))
	return report, nil
}

func read(r io.Reader) (*models.ZWOFile, error) {
	var f models.ZWOFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing ZWO: %w", err)
	}
	return &f, nil
}

func write(w io.Writer, f *models.ZWOFile) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("writing ZWO: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing ZWO: %w", err)
	}
	return nil
}

func parse(data []byte) (*models.ZWOFile, error) {
	return read(bytes.NewReader(data))
}

func render(f *models.ZWOFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := write(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

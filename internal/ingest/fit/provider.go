// Package fit converts decoded FIT message streams to and from the canonical
// document. Byte-level framing is out of scope: input is the decoded message
// stream serialized as JSON.
package fit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
)

// Provider is the FIT adapter.
type Provider struct {
	conv *Converter
	log  *slog.Logger
}

// NewProvider creates a new FIT adapter.
func NewProvider(opts ingest.Options, log *slog.Logger) *Provider {
	return &Provider{conv: NewConverter(opts, log), log: log}
}

func (p *Provider) Format() ingest.Format { return ingest.FormatFIT }

// Decode reads a decoded FIT stream and validates the resulting document.
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

// Encode writes doc as a decoded FIT stream.
func (p *Provider) Encode(w io.Writer, doc *models.Document) error {
	f, err := p.conv.FromDocument(doc)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("writing FIT stream: %w", err)
	}
	return nil
}

// RoundTrip converts the stream to canonical and back and compares the
// re-encoded stream with the input as written, so fields this adapter does
// not read show up as violations.
func (p *Provider) RoundTrip(r io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading FIT stream: %w", err)
	}
	report, err := roundtrip.CheckBytes(data, parse, p.conv.ToDocument, p.conv.FromDocument, render, roundtrip.JSONTree, policy)
	if err != nil {
		return nil, err
	}
	report.Format = string(ingest.FormatFIT)
	p.log.Debug("round trip", "format", report.Format, "compared", report.Compared, "violations", len(report.Violations))
	return report, nil
}

func read(r io.Reader) (*models.FITFile, error) {
	var f models.FITFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing FIT stream: %w", err)
	}
	return &f, nil
}

func parse(data []byte) (*models.FITFile, error) {
	return read(bytes.NewReader(data))
}

func render(f *models.FITFile) ([]byte, error) {
	return json.Marshal(f)
}

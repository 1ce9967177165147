package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
)

// Format names a supported file format.
type Format string

const (
	FormatFIT Format = "fit"
	FormatTCX Format = "tcx"
	FormatZWO Format = "zwo"
	FormatKRD Format = "krd"
)

// FormatInfo describes a format for listings.
type FormatInfo struct {
	Format      Format `json:"format"`
	Extension   string `json:"extension"`
	MediaType   string `json:"media_type"`
	Description string `json:"description"`
}

var formatInfo = map[Format]FormatInfo{
	FormatFIT: {FormatFIT, ".fit.json", "application/json", "FIT message stream decoded to JSON"},
	FormatTCX: {FormatTCX, ".tcx", "application/vnd.garmin.tcx+xml", "Garmin Training Center XML"},
	FormatZWO: {FormatZWO, ".zwo", "application/xml", "Zwift workout"},
	FormatKRD: {FormatKRD, ".krd", "application/json", "canonical workout document"},
}

// Describe returns the listing entry for f.
func Describe(f Format) FormatInfo {
	if info, ok := formatInfo[f]; ok {
		return info
	}
	return FormatInfo{Format: f, MediaType: "application/octet-stream"}
}

// ParseFormat maps a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatFIT, FormatTCX, FormatZWO, FormatKRD:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from a file name. Decoded FIT streams use
// the ".fit.json" suffix and canonical documents ".krd" or ".krd.json". Other
// ".json" files, such as tolerance policies, are not recognised.
func FormatFromPath(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".fit.json"):
		return FormatFIT, nil
	case strings.HasSuffix(name, ".tcx"):
		return FormatTCX, nil
	case strings.HasSuffix(name, ".zwo"):
		return FormatZWO, nil
	case strings.HasSuffix(name, ".krd"), strings.HasSuffix(name, ".krd.json"):
		return FormatKRD, nil
	}
	return "", fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, path)
}

// Adapter converts one format to and from the canonical document.
type Adapter interface {
	Format() Format
	Decode(r io.Reader) (*models.Document, error)
	Encode(w io.Writer, doc *models.Document) error
	RoundTrip(r io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error)
}

// Options carries the defaults adapters fall back on when a source omits a value.
type Options struct {
	DefaultSport models.Sport
	Now          func() time.Time
}

// DefaultOptions returns generic sport and the wall clock.
func DefaultOptions() Options {
	return Options{DefaultSport: models.SportGeneric, Now: time.Now}
}

// Sport returns DefaultSport, or generic when unset.
func (o Options) Sport() models.Sport {
	if o.DefaultSport == "" {
		return models.SportGeneric
	}
	return o.DefaultSport
}

// Created returns the current time as a canonical timestamp.
func (o Options) Created() string {
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// Result holds the outcome of a conversion.
type Result struct {
	ID           string `json:"id"`
	From         Format `json:"from"`
	To           Format `json:"to"`
	DocumentType string `json:"document_type"`

	Workouts int `json:"workouts"`
	Steps    int `json:"steps"`
	Sessions int `json:"sessions"`
	Laps     int `json:"laps"`
	Records  int `json:"records"`
	Events   int `json:"events"`

	BytesIn  int64 `json:"bytes_in"`
	BytesOut int64 `json:"bytes_out"`

	Message string `json:"message,omitempty"`
}

// Count fills the entity counters from doc.
func (r *Result) Count(doc *models.Document) {
	r.DocumentType = string(doc.Type)
	r.Sessions = len(doc.Sessions)
	r.Laps = len(doc.Laps)
	r.Records = len(doc.Records)
	r.Events = len(doc.Events)
	if w := doc.Workout(); w != nil {
		r.Workouts = 1
		r.Steps = w.StepCount()
	}
}

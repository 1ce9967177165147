package models

import (
	"encoding/json"
	"fmt"
)

// CurrentVersion is the canonical document version written by every adapter.
const CurrentVersion = "1.0"

// FileType is the closed set of canonical document kinds.
type FileType string

const (
	FileStructuredWorkout FileType = "structured_workout"
	FileRecordedActivity  FileType = "recorded_activity"
	FileCourse            FileType = "course"
)

// Document is the canonical hub representation every format converts through.
type Document struct {
	Version    string              `json:"version" validate:"required,semver"`
	Type       FileType            `json:"type" validate:"required,oneof=structured_workout recorded_activity course"`
	Metadata   Metadata            `json:"metadata"`
	Extensions *DocumentExtensions `json:"extensions,omitempty"`
	Sessions   []Session           `json:"sessions,omitempty" validate:"dive"`
	Laps       []Lap               `json:"laps,omitempty" validate:"dive"`
	Records    []Record            `json:"records,omitempty" validate:"dive"`
	Events     []Event             `json:"events,omitempty" validate:"dive"`
}

// Metadata describes where and when a document was produced.
type Metadata struct {
	Created      string `json:"created" validate:"required,iso8601"`
	Sport        string `json:"sport" validate:"required"`
	SubSport     string `json:"subSport,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
}

// DocumentExtensions carries the structured workout plus any document-level
// format data. It encodes as one flat object: "workout" plus one key per format.
type DocumentExtensions struct {
	Workout *Workout
	Formats Extensions
}

// Workout returns the structured workout carried by the document, if any.
func (d *Document) Workout() *Workout {
	if d.Extensions == nil {
		return nil
	}
	return d.Extensions.Workout
}

// SetWorkout attaches w, allocating the extensions object if needed.
func (d *Document) SetWorkout(w *Workout) {
	if d.Extensions == nil {
		d.Extensions = &DocumentExtensions{}
	}
	d.Extensions.Workout = w
}

func (e DocumentExtensions) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.Formats)+1)
	for k, v := range e.Formats {
		out[k] = v
	}
	if e.Workout != nil {
		raw, err := json.Marshal(e.Workout)
		if err != nil {
			return nil, fmt.Errorf("encoding workout: %w", err)
		}
		out["workout"] = raw
	}
	return json.Marshal(out)
}

func (e *DocumentExtensions) UnmarshalJSON(data []byte) error {
	var in map[string]json.RawMessage
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = DocumentExtensions{}
	for k, v := range in {
		if k == "workout" {
			var w Workout
			if err := json.Unmarshal(v, &w); err != nil {
				return fmt.Errorf("workout: %w", err)
			}
			e.Workout = &w
			continue
		}
		if e.Formats == nil {
			e.Formats = Extensions{}
		}
		e.Formats[k] = v
	}
	return nil
}

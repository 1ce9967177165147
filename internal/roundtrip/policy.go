// Package roundtrip proves a converter pair is faithful: it decodes a native
// document, re-encodes it, and compares both sides field by field against a
// tolerance policy.
package roundtrip

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tolerance is the allowed deviation for one field. Either bound passing is enough.
type Tolerance struct {
	Absolute   *float64 `json:"absolute,omitempty" yaml:"absolute,omitempty"`
	Percentage *float64 `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	Unit       string   `json:"unit" yaml:"unit"`
}

// Allows reports whether reencoded is within tolerance of original:
// |d| <= absolute OR |d| <= percentage/100 * |original|.
func (t Tolerance) Allows(original, reencoded float64) bool {
	d := math.Abs(original - reencoded)
	if d == 0 {
		return true
	}
	if t.Absolute != nil && d <= *t.Absolute {
		return true
	}
	if t.Percentage != nil && d <= *t.Percentage/100*math.Abs(original) {
		return true
	}
	return false
}

// Policy maps field names or dotted paths to tolerances. Fields without an
// entry must match exactly.
type Policy map[string]Tolerance

var indexPattern = regexp.MustCompile(`\[\d+\]`)

// Lookup finds the tolerance for a flattened path: the full path first, then
// the path without array indices, then the leaf field name. A leaf naming an
// XML attribute matches without its "@".
func (p Policy) Lookup(path string) (Tolerance, bool) {
	if t, ok := p[path]; ok {
		return t, true
	}
	bare := indexPattern.ReplaceAllString(path, "")
	if t, ok := p[bare]; ok {
		return t, true
	}
	leaf := bare
	if i := strings.LastIndexByte(bare, '.'); i >= 0 {
		leaf = bare[i+1:]
	}
	t, ok := p[strings.TrimPrefix(leaf, "@")]
	return t, ok
}

func abs(v float64) *float64 { return &v }

// DefaultPolicy is the shipped tolerance policy. Leaf names cover the
// spellings used by every supported format.
func DefaultPolicy() Policy {
	seconds := Tolerance{Absolute: abs(1), Unit: "s"}
	meters := Tolerance{Absolute: abs(1), Unit: "m"}
	bpm := Tolerance{Absolute: abs(1), Unit: "bpm"}
	rpm := Tolerance{Absolute: abs(1), Unit: "rpm"}
	watts := Tolerance{Absolute: abs(1), Percentage: abs(1), Unit: "W"}
	speed := Tolerance{Absolute: abs(0.01), Unit: "m/s"}

	return Policy{
		"timestamp":        seconds,
		"timeCreated":      seconds,
		"startTime":        seconds,
		"time":             seconds,
		"distance":         meters,
		"totalDistance":    meters,
		"distanceMeters":   meters,
		"altitude":         {Absolute: abs(0.1), Unit: "m"},
		"enhancedAltitude": {Absolute: abs(0.1), Unit: "m"},
		"altitudeMeters":   {Absolute: abs(0.1), Unit: "m"},
		"heartRate":        bpm,
		"avgHeartRate":     bpm,
		"maxHeartRate":     bpm,
		"cadence":          rpm,
		"avgCadence":       rpm,
		"maxCadence":       rpm,
		"power":            watts,
		"avgPower":         watts,
		"maxPower":         watts,
		"speed":            speed,
		"enhancedSpeed":    speed,
		"enhancedAvgSpeed": speed,
		"enhancedMaxSpeed": speed,
		"avgSpeed":         speed,
		"maxSpeed":         speed,
		"positionLat":      {Absolute: abs(1), Unit: "semicircles"},
		"positionLong":     {Absolute: abs(1), Unit: "semicircles"},
		"latitudeDegrees":  {Absolute: abs(0.00001), Unit: "deg"},
		"longitudeDegrees": {Absolute: abs(0.00001), Unit: "deg"},
		"temperature":      {Absolute: abs(1), Unit: "C"},
	}
}

// LoadPolicy reads a tolerance policy side-file. Files ending in .json are
// parsed as JSON; anything else as YAML.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tolerance policy: %w", err)
	}

	p := Policy{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing tolerance policy: %w", err)
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("tolerance policy: %w", err)
	}
	return p, nil
}

func (p Policy) validate() error {
	for field, t := range p {
		if t.Absolute == nil && t.Percentage == nil {
			return fmt.Errorf("%s: absolute or percentage is required", field)
		}
		if (t.Absolute != nil && *t.Absolute < 0) || (t.Percentage != nil && *t.Percentage < 0) {
			return fmt.Errorf("%s: bounds must not be negative", field)
		}
	}
	return nil
}

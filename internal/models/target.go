package models

import (
	"encoding/json"
	"fmt"
)

// TargetType is the discriminant of a Target.
type TargetType string

const (
	TargetPower      TargetType = "power"
	TargetHeartRate  TargetType = "heart_rate"
	TargetCadence    TargetType = "cadence"
	TargetPace       TargetType = "pace"
	TargetStrokeType TargetType = "stroke_type"
	TargetOpen       TargetType = "open"
)

// Unit is the discriminant of a target Value.
type Unit string

const (
	UnitWatts      Unit = "watts"
	UnitPercentFTP Unit = "percent_ftp"
	UnitZone       Unit = "zone"
	UnitRange      Unit = "range"
	UnitBPM        Unit = "bpm"
	UnitPercentMax Unit = "percent_max"
	UnitRPM        Unit = "rpm"
	UnitMPS        Unit = "mps"
	UnitSwimStroke Unit = "swim_stroke"
)

// Value is the payload of a non-open target: either a Scalar or a Range.
type Value interface {
	Unit() Unit
	isValue()
}

// Scalar is a single value in one of the scalar units.
type Scalar struct {
	Kind  Unit    `json:"-"`
	Value float64 `json:"value"`
}

// Range is an inclusive band expressed in the metric's absolute unit
// (watts, bpm, rpm or m/s).
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (s Scalar) Unit() Unit { return s.Kind }
func (Range) Unit() Unit    { return UnitRange }
func (Scalar) isValue()     {}
func (Range) isValue()      {}

func Watts(v float64) Scalar      { return Scalar{Kind: UnitWatts, Value: v} }
func PercentFTP(v float64) Scalar { return Scalar{Kind: UnitPercentFTP, Value: v} }
func Zone(v int) Scalar           { return Scalar{Kind: UnitZone, Value: float64(v)} }
func BPM(v float64) Scalar        { return Scalar{Kind: UnitBPM, Value: v} }
func PercentMax(v float64) Scalar { return Scalar{Kind: UnitPercentMax, Value: v} }
func RPM(v float64) Scalar        { return Scalar{Kind: UnitRPM, Value: v} }
func MPS(v float64) Scalar        { return Scalar{Kind: UnitMPS, Value: v} }
func SwimStroke(v int) Scalar     { return Scalar{Kind: UnitSwimStroke, Value: float64(v)} }

// Target is the intensity goal of a workout step.
type Target interface {
	TargetType() TargetType
	isTarget()
}

type PowerTarget struct {
	Value Value `json:"value"`
}

type HeartRateTarget struct {
	Value Value `json:"value"`
}

type CadenceTarget struct {
	Value Value `json:"value"`
}

type PaceTarget struct {
	Value Value `json:"value"`
}

type StrokeTypeTarget struct {
	Value Value `json:"value"`
}

// OpenTarget leaves intensity unconstrained.
type OpenTarget struct{}

func (PowerTarget) TargetType() TargetType      { return TargetPower }
func (HeartRateTarget) TargetType() TargetType  { return TargetHeartRate }
func (CadenceTarget) TargetType() TargetType    { return TargetCadence }
func (PaceTarget) TargetType() TargetType       { return TargetPace }
func (StrokeTypeTarget) TargetType() TargetType { return TargetStrokeType }
func (OpenTarget) TargetType() TargetType       { return TargetOpen }

func (PowerTarget) isTarget()      {}
func (HeartRateTarget) isTarget()  {}
func (CadenceTarget) isTarget()    {}
func (PaceTarget) isTarget()       {}
func (StrokeTypeTarget) isTarget() {}
func (OpenTarget) isTarget()       {}

// TargetValue returns the value carried by t, or false for the open target.
func TargetValue(t Target) (Value, bool) {
	switch t := t.(type) {
	case PowerTarget:
		return t.Value, t.Value != nil
	case HeartRateTarget:
		return t.Value, t.Value != nil
	case CadenceTarget:
		return t.Value, t.Value != nil
	case PaceTarget:
		return t.Value, t.Value != nil
	case StrokeTypeTarget:
		return t.Value, t.Value != nil
	}
	return nil, false
}

// NewTarget builds the target of the given type. A nil value or the open type
// yields OpenTarget.
func NewTarget(tt TargetType, v Value) Target {
	if v == nil {
		return OpenTarget{}
	}
	switch tt {
	case TargetPower:
		return PowerTarget{Value: v}
	case TargetHeartRate:
		return HeartRateTarget{Value: v}
	case TargetCadence:
		return CadenceTarget{Value: v}
	case TargetPace:
		return PaceTarget{Value: v}
	case TargetStrokeType:
		return StrokeTypeTarget{Value: v}
	default:
		return OpenTarget{}
	}
}

type zoneBounds struct{ min, max int }

// allowedUnits lists the units each target type accepts, with zone bounds
// where zones apply.
var allowedUnits = map[TargetType]map[Unit]*zoneBounds{
	TargetPower: {
		UnitWatts: nil, UnitPercentFTP: nil, UnitRange: nil, UnitZone: {1, 7},
	},
	TargetHeartRate: {
		UnitBPM: nil, UnitPercentMax: nil, UnitRange: nil, UnitZone: {1, 5},
	},
	TargetCadence: {
		UnitRPM: nil, UnitRange: nil,
	},
	TargetPace: {
		UnitMPS: nil, UnitRange: nil, UnitZone: {1, 5},
	},
	TargetStrokeType: {
		UnitSwimStroke: {0, 5},
	},
}

// ValidZone reports whether zone is inside the valid range for the target type.
func ValidZone(tt TargetType, zone int) bool {
	b, ok := allowedUnits[tt][UnitZone]
	if !ok || b == nil {
		return false
	}
	return zone >= b.min && zone <= b.max
}

// CheckTarget reports whether the target's unit is allowed for its type and
// in range.
func CheckTarget(t Target) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if _, ok := t.(OpenTarget); ok {
		return nil
	}
	v, ok := TargetValue(t)
	if !ok {
		return fmt.Errorf("%s target requires a value", t.TargetType())
	}
	units := allowedUnits[t.TargetType()]
	bounds, ok := units[v.Unit()]
	if !ok {
		return fmt.Errorf("unit %q is not allowed for %s targets", v.Unit(), t.TargetType())
	}
	switch v := v.(type) {
	case Range:
		if v.Min > v.Max {
			return fmt.Errorf("range min %v exceeds max %v", v.Min, v.Max)
		}
	case Scalar:
		if bounds != nil {
			n := int(v.Value)
			if float64(n) != v.Value || n < bounds.min || n > bounds.max {
				return fmt.Errorf("%s %v must be an integer in %d-%d", v.Kind, v.Value, bounds.min, bounds.max)
			}
		}
	}
	return nil
}

// MarshalValue encodes v with its "unit" discriminant.
func MarshalValue(v Value) ([]byte, error) {
	return marshalTagged("unit", string(v.Unit()), v)
}

// UnmarshalValue decodes a value object by its "unit" discriminant.
func UnmarshalValue(data []byte) (Value, error) {
	tag, err := peekTag(data, "unit")
	if err != nil {
		return nil, fmt.Errorf("decoding target value: %w", err)
	}
	switch Unit(tag) {
	case UnitRange:
		r, err := decodeAs[Range](data)
		if err != nil {
			return nil, fmt.Errorf("decoding range: %w", err)
		}
		return r, nil
	case UnitWatts, UnitPercentFTP, UnitZone, UnitBPM, UnitPercentMax, UnitRPM, UnitMPS, UnitSwimStroke:
		s, err := decodeAs[Scalar](data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", tag, err)
		}
		s.Kind = Unit(tag)
		return s, nil
	}
	return nil, fmt.Errorf("unknown unit %q", tag)
}

type targetJSON struct {
	Type  TargetType      `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalTarget encodes t with its "type" discriminant. A nil target encodes as open.
func MarshalTarget(t Target) ([]byte, error) {
	if t == nil {
		t = OpenTarget{}
	}
	out := targetJSON{Type: t.TargetType()}
	if v, ok := TargetValue(t); ok {
		raw, err := MarshalValue(v)
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

// UnmarshalTarget decodes a target object by its "type" discriminant.
func UnmarshalTarget(data []byte) (Target, error) {
	var in targetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding target: %w", err)
	}
	switch in.Type {
	case TargetOpen:
		return OpenTarget{}, nil
	case TargetPower, TargetHeartRate, TargetCadence, TargetPace, TargetStrokeType:
	default:
		return nil, fmt.Errorf("unknown target type %q", in.Type)
	}
	if len(in.Value) == 0 {
		return nil, fmt.Errorf("%s target requires a value", in.Type)
	}
	v, err := UnmarshalValue(in.Value)
	if err != nil {
		return nil, err
	}
	return NewTarget(in.Type, v), nil
}

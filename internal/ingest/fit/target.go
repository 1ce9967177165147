package fit

import (
	"math"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// Device offsets for absolute values in the generic target and duration fields.
const (
	hrOffset    = 100
	powerOffset = 1000
)

// FIT target_type names.
const (
	targetSpeed      = "speed"
	targetHeartRate  = "heartRate"
	targetOpen       = "open"
	targetCadence    = "cadence"
	targetPower      = "power"
	targetSwimStroke = "swimStroke"
)

// targetFields is the restorable copy of a step's target fields.
type targetFields struct {
	Type                      string   `json:"type"`
	TargetValue               *float64 `json:"targetValue,omitempty"`
	CustomTargetValueLow      *float64 `json:"customTargetValueLow,omitempty"`
	CustomTargetValueHigh     *float64 `json:"customTargetValueHigh,omitempty"`
	TargetHrZone              *int     `json:"targetHrZone,omitempty"`
	TargetPowerZone           *int     `json:"targetPowerZone,omitempty"`
	TargetSpeedZone           *int     `json:"targetSpeedZone,omitempty"`
	CustomTargetHeartRateLow  *float64 `json:"customTargetHeartRateLow,omitempty"`
	CustomTargetHeartRateHigh *float64 `json:"customTargetHeartRateHigh,omitempty"`
	CustomTargetPowerLow      *float64 `json:"customTargetPowerLow,omitempty"`
	CustomTargetPowerHigh     *float64 `json:"customTargetPowerHigh,omitempty"`
	CustomTargetSpeedLow      *float64 `json:"customTargetSpeedLow,omitempty"`
	CustomTargetSpeedHigh     *float64 `json:"customTargetSpeedHigh,omitempty"`
	CustomTargetCadenceLow    *float64 `json:"customTargetCadenceLow,omitempty"`
	CustomTargetCadenceHigh   *float64 `json:"customTargetCadenceHigh,omitempty"`
}

func targetFieldsOf(s *models.FITWorkoutStep) *targetFields {
	return &targetFields{
		Type:                      s.TargetType,
		TargetValue:               s.TargetValue,
		CustomTargetValueLow:      s.CustomTargetValueLow,
		CustomTargetValueHigh:     s.CustomTargetValueHigh,
		TargetHrZone:              s.TargetHrZone,
		TargetPowerZone:           s.TargetPowerZone,
		TargetSpeedZone:           s.TargetSpeedZone,
		CustomTargetHeartRateLow:  s.CustomTargetHeartRateLow,
		CustomTargetHeartRateHigh: s.CustomTargetHeartRateHigh,
		CustomTargetPowerLow:      s.CustomTargetPowerLow,
		CustomTargetPowerHigh:     s.CustomTargetPowerHigh,
		CustomTargetSpeedLow:      s.CustomTargetSpeedLow,
		CustomTargetSpeedHigh:     s.CustomTargetSpeedHigh,
		CustomTargetCadenceLow:    s.CustomTargetCadenceLow,
		CustomTargetCadenceHigh:   s.CustomTargetCadenceHigh,
	}
}

func (f *targetFields) apply(s *models.FITWorkoutStep) {
	s.TargetType = f.Type
	s.TargetValue = f.TargetValue
	s.CustomTargetValueLow = f.CustomTargetValueLow
	s.CustomTargetValueHigh = f.CustomTargetValueHigh
	s.TargetHrZone = f.TargetHrZone
	s.TargetPowerZone = f.TargetPowerZone
	s.TargetSpeedZone = f.TargetSpeedZone
	s.CustomTargetHeartRateLow = f.CustomTargetHeartRateLow
	s.CustomTargetHeartRateHigh = f.CustomTargetHeartRateHigh
	s.CustomTargetPowerLow = f.CustomTargetPowerLow
	s.CustomTargetPowerHigh = f.CustomTargetPowerHigh
	s.CustomTargetSpeedLow = f.CustomTargetSpeedLow
	s.CustomTargetSpeedHigh = f.CustomTargetSpeedHigh
	s.CustomTargetCadenceLow = f.CustomTargetCadenceLow
	s.CustomTargetCadenceHigh = f.CustomTargetCadenceHigh
}

// metric describes how one target type is read from the step's fields.
type metric struct {
	target models.TargetType
	// low and high select the metric-specific custom range fields.
	low, high func(*models.FITWorkoutStep) *float64
	// zone selects the zone field; nil when the metric has no zones.
	zone func(*models.FITWorkoutStep) *int
	// value interprets the generic target value.
	value func(float64) (models.Value, bool)
	// bound decodes one range bound to the absolute unit. It reports false
	// for bounds that are percentages.
	bound func(float64) (float64, bool)
}

var (
	heartRateMetric = metric{
		target: models.TargetHeartRate,
		low:    func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetHeartRateLow },
		high:   func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetHeartRateHigh },
		zone:   func(s *models.FITWorkoutStep) *int { return s.TargetHrZone },
		value: func(v float64) (models.Value, bool) {
			switch {
			case v > hrOffset:
				return models.BPM(v - hrOffset), true
			case v > 0:
				return models.PercentMax(v), true
			}
			return nil, false
		},
		bound: func(v float64) (float64, bool) { return v - hrOffset, v > hrOffset },
	}

	powerMetric = metric{
		target: models.TargetPower,
		low:    func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetPowerLow },
		high:   func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetPowerHigh },
		zone:   func(s *models.FITWorkoutStep) *int { return s.TargetPowerZone },
		value: func(v float64) (models.Value, bool) {
			switch {
			case v > powerOffset:
				return models.Watts(v - powerOffset), true
			case v > 0:
				return models.PercentFTP(v), true
			}
			return nil, false
		},
		bound: func(v float64) (float64, bool) { return v - powerOffset, v > powerOffset },
	}

	paceMetric = metric{
		target: models.TargetPace,
		low:    func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetSpeedLow },
		high:   func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetSpeedHigh },
		zone:   func(s *models.FITWorkoutStep) *int { return s.TargetSpeedZone },
		value: func(v float64) (models.Value, bool) {
			if v > 0 {
				return models.MPS(v), true
			}
			return nil, false
		},
		bound: func(v float64) (float64, bool) { return v, v >= 0 },
	}

	cadenceMetric = metric{
		target: models.TargetCadence,
		low:    func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetCadenceLow },
		high:   func(s *models.FITWorkoutStep) *float64 { return s.CustomTargetCadenceHigh },
		value: func(v float64) (models.Value, bool) {
			if v > 0 {
				return models.RPM(v), true
			}
			return nil, false
		},
		bound: func(v float64) (float64, bool) { return v, v >= 0 },
	}
)

// resolve applies the priority order: metric range, generic range, zone,
// generic value, open.
func (m metric) resolve(s *models.FITWorkoutStep) (models.Target, ingest.Outcome) {
	if lo, hi := m.low(s), m.high(s); lo != nil && hi != nil {
		return m.rangeTarget(*lo, *hi)
	}
	if s.CustomTargetValueLow != nil && s.CustomTargetValueHigh != nil {
		return m.rangeTarget(*s.CustomTargetValueLow, *s.CustomTargetValueHigh)
	}

	value := s.TargetValue
	if m.zone != nil {
		if z := m.zone(s); z != nil {
			if models.ValidZone(m.target, *z) {
				return models.NewTarget(m.target, models.Zone(*z)), ingest.Mapped
			}
			// Out-of-range zone codes are read as a plain value.
			if value == nil {
				v := float64(*z)
				value = &v
			}
		}
	}

	if value != nil {
		if v, ok := m.value(*value); ok {
			return models.NewTarget(m.target, v), ingest.Mapped
		}
	}
	return models.OpenTarget{}, ingest.Mapped
}

func (m metric) rangeTarget(lo, hi float64) (models.Target, ingest.Outcome) {
	lower, okLo := m.bound(lo)
	upper, okHi := m.bound(hi)
	if !okLo || !okHi {
		// Percentage ranges have no canonical slot.
		return models.OpenTarget{}, ingest.Preserved
	}
	return models.NewTarget(m.target, models.Range{Min: lower, Max: upper}), ingest.Mapped
}

// TargetToCanonical resolves a workout step's target fields to a canonical target.
func TargetToCanonical(s *models.FITWorkoutStep) (models.Target, ingest.Outcome) {
	switch s.TargetType {
	case "", targetOpen:
		return models.OpenTarget{}, ingest.Mapped
	case targetHeartRate:
		return heartRateMetric.resolve(s)
	case targetPower:
		return powerMetric.resolve(s)
	case targetSpeed:
		return paceMetric.resolve(s)
	case targetCadence:
		return cadenceMetric.resolve(s)
	case targetSwimStroke:
		if v := s.TargetValue; v != nil && *v == math.Trunc(*v) && *v >= 0 && *v <= 5 {
			return models.StrokeTypeTarget{Value: models.SwimStroke(int(*v))}, ingest.Mapped
		}
		return models.OpenTarget{}, ingest.Mapped
	default:
		return models.OpenTarget{}, ingest.Unknown
	}
}

// TargetFromCanonical writes t into the target fields of s.
func TargetFromCanonical(t models.Target, s *models.FITWorkoutStep) {
	switch t := t.(type) {
	case models.PowerTarget:
		s.TargetType = targetPower
		writeValue(s, t.Value, powerOffset, &s.TargetPowerZone, &s.CustomTargetPowerLow, &s.CustomTargetPowerHigh)
	case models.HeartRateTarget:
		s.TargetType = targetHeartRate
		writeValue(s, t.Value, hrOffset, &s.TargetHrZone, &s.CustomTargetHeartRateLow, &s.CustomTargetHeartRateHigh)
	case models.PaceTarget:
		s.TargetType = targetSpeed
		writeValue(s, t.Value, 0, &s.TargetSpeedZone, &s.CustomTargetSpeedLow, &s.CustomTargetSpeedHigh)
	case models.CadenceTarget:
		s.TargetType = targetCadence
		writeValue(s, t.Value, 0, nil, &s.CustomTargetCadenceLow, &s.CustomTargetCadenceHigh)
	case models.StrokeTypeTarget:
		s.TargetType = targetSwimStroke
		if v, ok := t.Value.(models.Scalar); ok {
			s.TargetValue = models.Ptr(v.Value)
		}
	default:
		s.TargetType = targetOpen
	}
}

// writeValue encodes a target value. Absolute units get the offset; ranges
// fill both the metric-specific and the generic bounds.
func writeValue(s *models.FITWorkoutStep, v models.Value, offset float64, zone **int, low, high **float64) {
	switch v := v.(type) {
	case models.Range:
		lo, hi := v.Min+offset, v.Max+offset
		*low, *high = models.Ptr(lo), models.Ptr(hi)
		s.CustomTargetValueLow, s.CustomTargetValueHigh = models.Ptr(lo), models.Ptr(hi)
	case models.Scalar:
		switch v.Kind {
		case models.UnitZone:
			if zone != nil {
				*zone = models.Ptr(int(v.Value))
			}
			s.TargetValue = models.Ptr(v.Value)
		case models.UnitWatts, models.UnitBPM:
			s.TargetValue = models.Ptr(v.Value + offset)
		default:
			s.TargetValue = models.Ptr(v.Value)
		}
	}
}

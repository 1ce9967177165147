package tcx

import (
	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// Target_t and zone subtypes.
const (
	targetNone      = "None_t"
	targetHeartRate = "HeartRate_t"
	targetSpeed     = "Speed_t"
	targetCadence   = "Cadence_t"

	zonePredefinedHR    = "PredefinedHeartRateZone_t"
	zoneCustomHR        = "CustomHeartRateZone_t"
	zonePredefinedSpeed = "PredefinedSpeedZone_t"
	zoneCustomSpeed     = "CustomSpeedZone_t"
)

// defaultViewAs is written on custom speed zones unless a preserved value says otherwise.
const defaultViewAs = "Speed"

// TargetToCanonical resolves a step's Target element.
func TargetToCanonical(t *models.TCXTarget) (models.Target, ingest.Outcome) {
	if t == nil {
		return models.OpenTarget{}, ingest.Mapped
	}
	switch t.XSIType {
	case "", targetNone:
		return models.OpenTarget{}, ingest.Mapped
	case targetHeartRate:
		return heartRateTarget(t.HeartRateZone)
	case targetSpeed:
		return speedTarget(t.SpeedZone)
	case targetCadence:
		if t.Low == nil || t.High == nil || *t.Low > *t.High {
			return models.OpenTarget{}, ingest.Preserved
		}
		if *t.Low == *t.High {
			return models.CadenceTarget{Value: models.RPM(*t.Low)}, ingest.Mapped
		}
		return models.CadenceTarget{Value: models.Range{Min: *t.Low, Max: *t.High}}, ingest.Mapped
	}
	return models.OpenTarget{}, ingest.Unknown
}

func heartRateTarget(z *models.TCXZone) (models.Target, ingest.Outcome) {
	if z == nil {
		return models.OpenTarget{}, ingest.Preserved
	}
	switch z.XSIType {
	case zonePredefinedHR:
		if z.Number != nil && models.ValidZone(models.TargetHeartRate, *z.Number) {
			return models.HeartRateTarget{Value: models.Zone(*z.Number)}, ingest.Mapped
		}
		return models.OpenTarget{}, ingest.Preserved
	case zoneCustomHR:
		lo, hi := z.Low, z.High
		if lo == nil || hi == nil || lo.XSIType != hi.XSIType || lo.Value > hi.Value {
			return models.OpenTarget{}, ingest.Preserved
		}
		switch lo.XSIType {
		case hrBPM:
			if lo.Value == hi.Value {
				return models.HeartRateTarget{Value: models.BPM(lo.Value)}, ingest.Mapped
			}
			return models.HeartRateTarget{Value: models.Range{Min: lo.Value, Max: hi.Value}}, ingest.Mapped
		case hrPercentMax:
			// Canonical ranges are absolute, so only a single percentage maps.
			if lo.Value == hi.Value {
				return models.HeartRateTarget{Value: models.PercentMax(lo.Value)}, ingest.Mapped
			}
		}
		return models.OpenTarget{}, ingest.Preserved
	}
	return models.OpenTarget{}, ingest.Unknown
}

func speedTarget(z *models.TCXZone) (models.Target, ingest.Outcome) {
	if z == nil {
		return models.OpenTarget{}, ingest.Preserved
	}
	switch z.XSIType {
	case zonePredefinedSpeed:
		if z.Number != nil && models.ValidZone(models.TargetPace, *z.Number) {
			return models.PaceTarget{Value: models.Zone(*z.Number)}, ingest.Mapped
		}
		return models.OpenTarget{}, ingest.Preserved
	case zoneCustomSpeed:
		lo, hi := z.LowInMetersPerSecond, z.HighInMetersPerSecond
		if lo == nil || hi == nil || *lo < 0 || *lo > *hi {
			return models.OpenTarget{}, ingest.Preserved
		}
		if *lo == *hi {
			return models.PaceTarget{Value: models.MPS(*lo)}, ingest.Mapped
		}
		return models.PaceTarget{Value: models.Range{Min: *lo, Max: *hi}}, ingest.Mapped
	}
	return models.OpenTarget{}, ingest.Unknown
}

// TargetFromCanonical builds the Target element for t. It reports false when
// TCX cannot express the target; the result is then None_t.
func TargetFromCanonical(t models.Target) (*models.TCXTarget, bool) {
	switch t := t.(type) {
	case models.OpenTarget:
		return &models.TCXTarget{XSIType: targetNone}, true
	case models.HeartRateTarget:
		if z, ok := heartRateZone(t.Value); ok {
			return &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: z}, true
		}
	case models.PaceTarget:
		if z, ok := speedZone(t.Value); ok {
			return &models.TCXTarget{XSIType: targetSpeed, SpeedZone: z}, true
		}
	case models.CadenceTarget:
		switch v := t.Value.(type) {
		case models.Range:
			return &models.TCXTarget{XSIType: targetCadence, Low: models.Ptr(v.Min), High: models.Ptr(v.Max)}, true
		case models.Scalar:
			if v.Kind == models.UnitRPM {
				return &models.TCXTarget{XSIType: targetCadence, Low: models.Ptr(v.Value), High: models.Ptr(v.Value)}, true
			}
		}
	}
	return &models.TCXTarget{XSIType: targetNone}, false
}

func customHR(kind string, lo, hi float64) *models.TCXZone {
	return &models.TCXZone{
		XSIType: zoneCustomHR,
		Low:     &models.TCXHeartRateValue{XSIType: kind, Value: lo},
		High:    &models.TCXHeartRateValue{XSIType: kind, Value: hi},
	}
}

func heartRateZone(v models.Value) (*models.TCXZone, bool) {
	switch v := v.(type) {
	case models.Range:
		return customHR(hrBPM, v.Min, v.Max), true
	case models.Scalar:
		switch v.Kind {
		case models.UnitZone:
			return &models.TCXZone{XSIType: zonePredefinedHR, Number: models.Ptr(int(v.Value))}, true
		case models.UnitBPM:
			return customHR(hrBPM, v.Value, v.Value), true
		case models.UnitPercentMax:
			return customHR(hrPercentMax, v.Value, v.Value), true
		}
	}
	return nil, false
}

func speedZone(v models.Value) (*models.TCXZone, bool) {
	switch v := v.(type) {
	case models.Range:
		return &models.TCXZone{
			XSIType:               zoneCustomSpeed,
			ViewAs:                defaultViewAs,
			LowInMetersPerSecond:  models.Ptr(v.Min),
			HighInMetersPerSecond: models.Ptr(v.Max),
		}, true
	case models.Scalar:
		switch v.Kind {
		case models.UnitZone:
			return &models.TCXZone{XSIType: zonePredefinedSpeed, Number: models.Ptr(int(v.Value))}, true
		case models.UnitMPS:
			return &models.TCXZone{
				XSIType:               zoneCustomSpeed,
				ViewAs:                defaultViewAs,
				LowInMetersPerSecond:  models.Ptr(v.Value),
				HighInMetersPerSecond: models.Ptr(v.Value),
			}, true
		}
	}
	return nil, false
}

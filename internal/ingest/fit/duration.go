package fit

import (
	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// FIT wkt_step_duration names.
const (
	durationTime                        = "time"
	durationDistance                    = "distance"
	durationHrLessThan                  = "hrLessThan"
	durationHrGreaterThan               = "hrGreaterThan"
	durationCalories                    = "calories"
	durationOpen                        = "open"
	durationRepeatUntilStepsCmplt       = "repeatUntilStepsCmplt"
	durationRepeatUntilTime             = "repeatUntilTime"
	durationRepeatUntilDistance         = "repeatUntilDistance"
	durationRepeatUntilCalories         = "repeatUntilCalories"
	durationRepeatUntilHrLessThan       = "repeatUntilHrLessThan"
	durationRepeatUntilHrGreaterThan    = "repeatUntilHrGreaterThan"
	durationRepeatUntilPowerLessThan    = "repeatUntilPowerLessThan"
	durationRepeatUntilPowerGreaterThan = "repeatUntilPowerGreaterThan"
	durationPowerLessThan               = "powerLessThan"
	durationPowerGreaterThan            = "powerGreaterThan"
)

// durationFields is the restorable copy of a step's duration fields.
type durationFields struct {
	Type             string   `json:"type"`
	DurationTime     *float64 `json:"durationTime,omitempty"`
	DurationDistance *float64 `json:"durationDistance,omitempty"`
	DurationHr       *float64 `json:"durationHr,omitempty"`
	DurationCalories *float64 `json:"durationCalories,omitempty"`
	DurationPower    *float64 `json:"durationPower,omitempty"`
	DurationStep     *int     `json:"durationStep,omitempty"`
}

func durationFieldsOf(s *models.FITWorkoutStep) *durationFields {
	return &durationFields{
		Type:             s.DurationType,
		DurationTime:     s.DurationTime,
		DurationDistance: s.DurationDistance,
		DurationHr:       s.DurationHr,
		DurationCalories: s.DurationCalories,
		DurationPower:    s.DurationPower,
		DurationStep:     s.DurationStep,
	}
}

func (f *durationFields) apply(s *models.FITWorkoutStep) {
	s.DurationType = f.Type
	s.DurationTime = f.DurationTime
	s.DurationDistance = f.DurationDistance
	s.DurationHr = f.DurationHr
	s.DurationCalories = f.DurationCalories
	s.DurationPower = f.DurationPower
	s.DurationStep = f.DurationStep
}

func positive(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// absolute strips a device offset. Values at or below the offset are
// percentages and have no canonical slot.
func absolute(v *float64, offset float64) (float64, bool) {
	if v == nil || *v <= offset {
		return 0, false
	}
	return *v - offset, true
}

// DurationToCanonical resolves a workout step's duration fields. Repeat steps
// that close a block are grouped by WorkoutToCanonical before this is called.
func DurationToCanonical(s *models.FITWorkoutStep) (models.Duration, ingest.Outcome) {
	from := deref(s.DurationStep)

	switch s.DurationType {
	case "", durationOpen:
		return models.OpenDuration{}, ingest.Mapped
	case durationTime:
		if v, ok := positive(s.DurationTime); ok {
			return models.TimeDuration{Seconds: v}, ingest.Mapped
		}
		return models.OpenDuration{}, ingest.Mapped
	case durationDistance:
		if v, ok := positive(s.DurationDistance); ok {
			return models.DistanceDuration{Meters: v}, ingest.Mapped
		}
		return models.OpenDuration{}, ingest.Mapped
	case durationCalories:
		if v, ok := positive(s.DurationCalories); ok {
			return models.CaloriesDuration{Calories: v}, ingest.Mapped
		}
		return models.OpenDuration{}, ingest.Mapped
	case durationHrLessThan:
		if bpm, ok := absolute(s.DurationHr, hrOffset); ok {
			return models.HeartRateLessThanDuration{BPM: bpm}, ingest.Mapped
		}
	case durationPowerLessThan:
		if w, ok := absolute(s.DurationPower, powerOffset); ok {
			return models.PowerLessThanDuration{Watts: w}, ingest.Mapped
		}
	case durationPowerGreaterThan:
		if w, ok := absolute(s.DurationPower, powerOffset); ok {
			return models.PowerGreaterThanDuration{Watts: w}, ingest.Mapped
		}
	case durationHrGreaterThan, durationRepeatUntilStepsCmplt:
		// No canonical slot.
	case durationRepeatUntilTime:
		return models.RepeatUntilTimeDuration{Seconds: deref(s.DurationTime), RepeatFrom: from}, ingest.Mapped
	case durationRepeatUntilDistance:
		return models.RepeatUntilDistanceDuration{Meters: deref(s.DurationDistance), RepeatFrom: from}, ingest.Mapped
	case durationRepeatUntilCalories:
		return models.RepeatUntilCaloriesDuration{Calories: deref(s.DurationCalories), RepeatFrom: from}, ingest.Mapped
	case durationRepeatUntilHrLessThan:
		if bpm, ok := absolute(s.DurationHr, hrOffset); ok {
			return models.RepeatUntilHeartRateLessThanDuration{BPM: bpm, RepeatFrom: from}, ingest.Mapped
		}
	case durationRepeatUntilHrGreaterThan:
		if bpm, ok := absolute(s.DurationHr, hrOffset); ok {
			return models.RepeatUntilHeartRateGreaterThanDuration{BPM: bpm, RepeatFrom: from}, ingest.Mapped
		}
	case durationRepeatUntilPowerLessThan:
		if w, ok := absolute(s.DurationPower, powerOffset); ok {
			return models.RepeatUntilPowerLessThanDuration{Watts: w, RepeatFrom: from}, ingest.Mapped
		}
	case durationRepeatUntilPowerGreaterThan:
		if w, ok := absolute(s.DurationPower, powerOffset); ok {
			return models.RepeatUntilPowerGreaterThanDuration{Watts: w, RepeatFrom: from}, ingest.Mapped
		}
	default:
		return models.OpenDuration{}, ingest.Unknown
	}
	return models.OpenDuration{}, ingest.Preserved
}

// DurationFromCanonical writes d into the duration fields of s.
func DurationFromCanonical(d models.Duration, s *models.FITWorkoutStep) {
	switch d := d.(type) {
	case models.TimeDuration:
		s.DurationType = durationTime
		s.DurationTime = models.Ptr(d.Seconds)
	case models.DistanceDuration:
		s.DurationType = durationDistance
		s.DurationDistance = models.Ptr(d.Meters)
	case models.CaloriesDuration:
		s.DurationType = durationCalories
		s.DurationCalories = models.Ptr(d.Calories)
	case models.HeartRateLessThanDuration:
		s.DurationType = durationHrLessThan
		s.DurationHr = models.Ptr(d.BPM + hrOffset)
	case models.PowerLessThanDuration:
		s.DurationType = durationPowerLessThan
		s.DurationPower = models.Ptr(d.Watts + powerOffset)
	case models.PowerGreaterThanDuration:
		s.DurationType = durationPowerGreaterThan
		s.DurationPower = models.Ptr(d.Watts + powerOffset)
	case models.RepeatUntilTimeDuration:
		s.DurationType = durationRepeatUntilTime
		s.DurationTime = models.Ptr(d.Seconds)
		s.DurationStep = models.Ptr(d.RepeatFrom)
	case models.RepeatUntilDistanceDuration:
		s.DurationType = durationRepeatUntilDistance
		s.DurationDistance = models.Ptr(d.Meters)
		s.DurationStep = models.Ptr(d.RepeatFrom)
	case models.RepeatUntilCaloriesDuration:
		s.DurationType = durationRepeatUntilCalories
		s.DurationCalories = models.Ptr(d.Calories)
		s.DurationStep = models.Ptr(d.RepeatFrom)
	case models.RepeatUntilHeartRateLessThanDuration:
		s.DurationType = durationRepeatUntilHrLessThan
		s.DurationHr = models.Ptr(d.BPM + hrOffset)
		s.DurationStep = models.Ptr(d.RepeatFrom)
	case models.RepeatUntilHeartRateGreaterThanDuration:
		s.DurationType = durationRepeatUntilHrGreaterThan
		s.DurationHr = models.Ptr(d.BPM + hrOffset)
		s.DurationStep = models.Ptr(d.RepeatFrom)
	case models.RepeatUntilPowerLessThanDuration:
		s.DurationType = durationRepeatUntilPowerLessThan
		s.DurationPower = models.Ptr(d.Watts + powerOffset)
		s.DurationStep = models.Ptr(d.RepeatFrom)
	case models.RepeatUntilPowerGreaterThanDuration:
		s.DurationType = durationRepeatUntilPowerGreaterThan
		s.DurationPower = models.Ptr(d.Watts + powerOffset)
		s.DurationStep = models.Ptr(d.RepeatFrom)
	default:
		s.DurationType = durationOpen
	}
}

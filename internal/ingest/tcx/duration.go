package tcx

import (
	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// Duration_t subtypes.
const (
	durationTime          = "Time_t"
	durationDistance      = "Distance_t"
	durationHrAbove       = "HeartRateAbove_t"
	durationHrBelow       = "HeartRateBelow_t"
	durationCalories      = "CaloriesBurned_t"
	durationUserInitiated = "UserInitiated_t"
)

// Heart rate value subtypes shared by durations and heart rate zones.
const (
	hrBPM        = "HeartRateInBeatsPerMinute_t"
	hrPercentMax = "HeartRateAsPercentOfMax_t"
)

func positive(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

// DurationToCanonical resolves a step's Duration element.
func DurationToCanonical(d *models.TCXDuration) (models.Duration, ingest.Outcome) {
	if d == nil {
		return models.OpenDuration{}, ingest.Mapped
	}
	switch d.XSIType {
	case "", durationUserInitiated:
		return models.OpenDuration{}, ingest.Mapped
	case durationTime:
		if v, ok := positive(d.Seconds); ok {
			return models.TimeDuration{Seconds: v}, ingest.Mapped
		}
		return models.OpenDuration{}, ingest.Mapped
	case durationDistance:
		if v, ok := positive(d.Meters); ok {
			return models.DistanceDuration{Meters: v}, ingest.Mapped
		}
		return models.OpenDuration{}, ingest.Mapped
	case durationCalories:
		if v, ok := positive(d.Calories); ok {
			return models.CaloriesDuration{Calories: v}, ingest.Mapped
		}
		return models.OpenDuration{}, ingest.Mapped
	case durationHrBelow:
		if hr := d.HeartRate; hr != nil && hr.XSIType == hrBPM && hr.Value > 0 {
			return models.HeartRateLessThanDuration{BPM: hr.Value}, ingest.Mapped
		}
		return models.OpenDuration{}, ingest.Preserved
	case durationHrAbove:
		return models.OpenDuration{}, ingest.Preserved
	}
	return models.OpenDuration{}, ingest.Unknown
}

// DurationFromCanonical builds the Duration element for d. It reports false
// when TCX has no equivalent; the result is then UserInitiated_t.
func DurationFromCanonical(d models.Duration) (*models.TCXDuration, bool) {
	switch d := d.(type) {
	case models.TimeDuration:
		return &models.TCXDuration{XSIType: durationTime, Seconds: models.Ptr(d.Seconds)}, true
	case models.DistanceDuration:
		return &models.TCXDuration{XSIType: durationDistance, Meters: models.Ptr(d.Meters)}, true
	case models.CaloriesDuration:
		return &models.TCXDuration{XSIType: durationCalories, Calories: models.Ptr(d.Calories)}, true
	case models.HeartRateLessThanDuration:
		return &models.TCXDuration{
			XSIType:   durationHrBelow,
			HeartRate: &models.TCXHeartRateValue{XSIType: hrBPM, Value: d.BPM},
		}, true
	case models.OpenDuration:
		return &models.TCXDuration{XSIType: durationUserInitiated}, true
	}
	return &models.TCXDuration{XSIType: durationUserInitiated}, false
}

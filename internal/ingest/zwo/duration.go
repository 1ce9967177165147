package zwo

import (
	"github.com/claude/workouthub/internal/models"
)

// durationTypeDistance marks a workout whose Duration attributes are meters.
const durationTypeDistance = "distance"

// DurationToCanonical reads a Duration attribute. Workouts with
// durationType="distance" store meters; all others store seconds. A missing
// or non-positive value is open.
func DurationToCanonical(v *float64, distance bool) models.Duration {
	if v == nil || *v <= 0 {
		return models.OpenDuration{}
	}
	if distance {
		return models.DistanceDuration{Meters: *v}
	}
	return models.TimeDuration{Seconds: *v}
}

// DurationFromCanonical returns the Duration attribute for d. It reports
// false when d has no ZWO form; open durations return nil and true.
func DurationFromCanonical(d models.Duration) (*float64, bool) {
	switch d := d.(type) {
	case models.TimeDuration:
		return models.Ptr(d.Seconds), true
	case models.DistanceDuration:
		return models.Ptr(d.Meters), true
	case models.OpenDuration, nil:
		return nil, true
	}
	return nil, false
}

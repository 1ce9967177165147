package tcx

import (
	"reflect"
	"testing"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

func TestDurationToCanonical(t *testing.T) {
	tests := []struct {
		name     string
		duration *models.TCXDuration
		want     models.Duration
		outcome  ingest.Outcome
	}{
		{"missing", nil, models.OpenDuration{}, ingest.Mapped},
		{"time", &models.TCXDuration{XSIType: durationTime, Seconds: f64(300)}, models.TimeDuration{Seconds: 300}, ingest.Mapped},
		{"zero time", &models.TCXDuration{XSIType: durationTime, Seconds: f64(0)}, models.OpenDuration{}, ingest.Mapped},
		{"distance", &models.TCXDuration{XSIType: durationDistance, Meters: f64(1609)}, models.DistanceDuration{Meters: 1609}, ingest.Mapped},
		{"user initiated", &models.TCXDuration{XSIType: durationUserInitiated}, models.OpenDuration{}, ingest.Mapped},
		{"calories", &models.TCXDuration{XSIType: durationCalories, Calories: f64(120)}, models.CaloriesDuration{Calories: 120}, ingest.Mapped},
		{"hr below bpm", &models.TCXDuration{XSIType: durationHrBelow, HeartRate: hrValue(hrBPM, 120)}, models.HeartRateLessThanDuration{BPM: 120}, ingest.Mapped},
		{"hr below percent", &models.TCXDuration{XSIType: durationHrBelow, HeartRate: hrValue(hrPercentMax, 60)}, models.OpenDuration{}, ingest.Preserved},
		{"hr above", &models.TCXDuration{XSIType: durationHrAbove, HeartRate: hrValue(hrBPM, 165)}, models.OpenDuration{}, ingest.Preserved},
		{"unknown", &models.TCXDuration{XSIType: "Steps_t"}, models.OpenDuration{}, ingest.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, out := DurationToCanonical(tt.duration)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("duration = %#v, want %#v", got, tt.want)
			}
			if out != tt.outcome {
				t.Errorf("outcome = %v, want %v", out, tt.outcome)
			}
		})
	}
}

func TestDurationFromCanonical(t *testing.T) {
	for _, want := range []models.Duration{
		models.TimeDuration{Seconds: 60},
		models.DistanceDuration{Meters: 400},
		models.CaloriesDuration{Calories: 50},
		models.HeartRateLessThanDuration{BPM: 110},
		models.OpenDuration{},
	} {
		native, ok := DurationFromCanonical(want)
		if !ok {
			t.Errorf("%#v reported not expressible", want)
		}
		if got, _ := DurationToCanonical(native); !reflect.DeepEqual(got, want) {
			t.Errorf("round trip of %#v = %#v", want, got)
		}
	}

	got, ok := DurationFromCanonical(models.PowerGreaterThanDuration{Watts: 300})
	if ok || got.XSIType != durationUserInitiated {
		t.Errorf("power threshold = %q %v, want UserInitiated_t false", got.XSIType, ok)
	}
}

package fit

import (
	"reflect"
	"testing"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

func TestDurationToCanonical(t *testing.T) {
	tests := []struct {
		name    string
		step    models.FITWorkoutStep
		want    models.Duration
		outcome ingest.Outcome
	}{
		{"time", models.FITWorkoutStep{DurationType: durationTime, DurationTime: f64(300)}, models.TimeDuration{Seconds: 300}, ingest.Mapped},
		{"zero time is open", models.FITWorkoutStep{DurationType: durationTime, DurationTime: f64(0)}, models.OpenDuration{}, ingest.Mapped},
		{"negative distance is open", models.FITWorkoutStep{DurationType: durationDistance, DurationDistance: f64(-5)}, models.OpenDuration{}, ingest.Mapped},
		{"distance", models.FITWorkoutStep{DurationType: durationDistance, DurationDistance: f64(1000)}, models.DistanceDuration{Meters: 1000}, ingest.Mapped},
		{"open", models.FITWorkoutStep{DurationType: durationOpen}, models.OpenDuration{}, ingest.Mapped},
		{"calories", models.FITWorkoutStep{DurationType: durationCalories, DurationCalories: f64(150)}, models.CaloriesDuration{Calories: 150}, ingest.Mapped},
		{"hr below bpm", models.FITWorkoutStep{DurationType: durationHrLessThan, DurationHr: f64(240)}, models.HeartRateLessThanDuration{BPM: 140}, ingest.Mapped},
		{"hr below percent", models.FITWorkoutStep{DurationType: durationHrLessThan, DurationHr: f64(70)}, models.OpenDuration{}, ingest.Preserved},
		{"hr above", models.FITWorkoutStep{DurationType: durationHrGreaterThan, DurationHr: f64(260)}, models.OpenDuration{}, ingest.Preserved},
		{"power below watts", models.FITWorkoutStep{DurationType: durationPowerLessThan, DurationPower: f64(1150)}, models.PowerLessThanDuration{Watts: 150}, ingest.Mapped},
		{"power above percent", models.FITWorkoutStep{DurationType: durationPowerGreaterThan, DurationPower: f64(110)}, models.OpenDuration{}, ingest.Preserved},
		{"repeat until time", models.FITWorkoutStep{DurationType: durationRepeatUntilTime, DurationTime: f64(1800), DurationStep: iptr(1)}, models.RepeatUntilTimeDuration{Seconds: 1800, RepeatFrom: 1}, ingest.Mapped},
		{"repeat until hr above", models.FITWorkoutStep{DurationType: durationRepeatUntilHrGreaterThan, DurationHr: f64(270), DurationStep: iptr(0)}, models.RepeatUntilHeartRateGreaterThanDuration{BPM: 170}, ingest.Mapped},
		{"repeat until power below", models.FITWorkoutStep{DurationType: durationRepeatUntilPowerLessThan, DurationPower: f64(1100), DurationStep: iptr(2)}, models.RepeatUntilPowerLessThanDuration{Watts: 100, RepeatFrom: 2}, ingest.Mapped},
		{"unknown", models.FITWorkoutStep{DurationType: "trainingPeaksTss"}, models.OpenDuration{}, ingest.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, out := DurationToCanonical(&tt.step)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("duration = %#v, want %#v", got, tt.want)
			}
			if out != tt.outcome {
				t.Errorf("outcome = %v, want %v", out, tt.outcome)
			}
		})
	}
}

// TestDurationRoundTrip converts every canonical duration to FIT and back.
func TestDurationRoundTrip(t *testing.T) {
	durations := []models.Duration{
		models.TimeDuration{Seconds: 600},
		models.DistanceDuration{Meters: 5000},
		models.OpenDuration{},
		models.CaloriesDuration{Calories: 200},
		models.PowerLessThanDuration{Watts: 120},
		models.PowerGreaterThanDuration{Watts: 300},
		models.HeartRateLessThanDuration{BPM: 130},
		models.RepeatUntilTimeDuration{Seconds: 900, RepeatFrom: 1},
		models.RepeatUntilDistanceDuration{Meters: 4000, RepeatFrom: 0},
		models.RepeatUntilCaloriesDuration{Calories: 100, RepeatFrom: 2},
		models.RepeatUntilHeartRateGreaterThanDuration{BPM: 165, RepeatFrom: 1},
		models.RepeatUntilHeartRateLessThanDuration{BPM: 120, RepeatFrom: 1},
		models.RepeatUntilPowerLessThanDuration{Watts: 150, RepeatFrom: 3},
		models.RepeatUntilPowerGreaterThanDuration{Watts: 350, RepeatFrom: 0},
	}
	for _, want := range durations {
		var s models.FITWorkoutStep
		DurationFromCanonical(want, &s)
		got, out := DurationToCanonical(&s)
		if out != ingest.Mapped || !reflect.DeepEqual(got, want) {
			t.Errorf("round trip of %#v = %#v (%v)", want, got, out)
		}
	}
}

package tcx

import (
	"reflect"
	"testing"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func hrValue(kind string, v float64) *models.TCXHeartRateValue {
	return &models.TCXHeartRateValue{XSIType: kind, Value: v}
}

func TestTargetToCanonical(t *testing.T) {
	tests := []struct {
		name    string
		target  *models.TCXTarget
		want    models.Target
		outcome ingest.Outcome
	}{
		{"missing", nil, models.OpenTarget{}, ingest.Mapped},
		{"none", &models.TCXTarget{XSIType: targetNone}, models.OpenTarget{}, ingest.Mapped},
		{"hr zone", &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: &models.TCXZone{XSIType: zonePredefinedHR, Number: iptr(3)}},
			models.HeartRateTarget{Value: models.Zone(3)}, ingest.Mapped},
		{"hr zone out of range", &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: &models.TCXZone{XSIType: zonePredefinedHR, Number: iptr(6)}},
			models.OpenTarget{}, ingest.Preserved},
		{"hr bpm range", &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: &models.TCXZone{XSIType: zoneCustomHR, Low: hrValue(hrBPM, 140), High: hrValue(hrBPM, 155)}},
			models.HeartRateTarget{Value: models.Range{Min: 140, Max: 155}}, ingest.Mapped},
		{"hr bpm single", &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: &models.TCXZone{XSIType: zoneCustomHR, Low: hrValue(hrBPM, 150), High: hrValue(hrBPM, 150)}},
			models.HeartRateTarget{Value: models.BPM(150)}, ingest.Mapped},
		{"hr percent single", &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: &models.TCXZone{XSIType: zoneCustomHR, Low: hrValue(hrPercentMax, 75), High: hrValue(hrPercentMax, 75)}},
			models.HeartRateTarget{Value: models.PercentMax(75)}, ingest.Mapped},
		{"hr percent range", &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: &models.TCXZone{XSIType: zoneCustomHR, Low: hrValue(hrPercentMax, 70), High: hrValue(hrPercentMax, 80)}},
			models.OpenTarget{}, ingest.Preserved},
		{"hr mixed units", &models.TCXTarget{XSIType: targetHeartRate, HeartRateZone: &models.TCXZone{XSIType: zoneCustomHR, Low: hrValue(hrPercentMax, 70), High: hrValue(hrBPM, 160)}},
			models.OpenTarget{}, ingest.Preserved},
		{"speed zone", &models.TCXTarget{XSIType: targetSpeed, SpeedZone: &models.TCXZone{XSIType: zonePredefinedSpeed, Number: iptr(4)}},
			models.PaceTarget{Value: models.Zone(4)}, ingest.Mapped},
		{"speed range", &models.TCXTarget{XSIType: targetSpeed, SpeedZone: &models.TCXZone{XSIType: zoneCustomSpeed, LowInMetersPerSecond: f64(3), HighInMetersPerSecond: f64(3.4)}},
			models.PaceTarget{Value: models.Range{Min: 3, Max: 3.4}}, ingest.Mapped},
		{"speed single", &models.TCXTarget{XSIType: targetSpeed, SpeedZone: &models.TCXZone{XSIType: zoneCustomSpeed, LowInMetersPerSecond: f64(3.2), HighInMetersPerSecond: f64(3.2)}},
			models.PaceTarget{Value: models.MPS(3.2)}, ingest.Mapped},
		{"cadence range", &models.TCXTarget{XSIType: targetCadence, Low: f64(80), High: f64(90)},
			models.CadenceTarget{Value: models.Range{Min: 80, Max: 90}}, ingest.Mapped},
		{"cadence single", &models.TCXTarget{XSIType: targetCadence, Low: f64(90), High: f64(90)},
			models.CadenceTarget{Value: models.RPM(90)}, ingest.Mapped},
		{"cadence inverted", &models.TCXTarget{XSIType: targetCadence, Low: f64(95), High: f64(90)},
			models.OpenTarget{}, ingest.Preserved},
		{"unknown", &models.TCXTarget{XSIType: "Power_t"}, models.OpenTarget{}, ingest.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, out := TargetToCanonical(tt.target)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("target = %#v, want %#v", got, tt.want)
			}
			if out != tt.outcome {
				t.Errorf("outcome = %v, want %v", out, tt.outcome)
			}
		})
	}
}

// TestTargetRoundTrip converts every canonical target TCX can carry to TCX and back.
func TestTargetRoundTrip(t *testing.T) {
	targets := []models.Target{
		models.OpenTarget{},
		models.HeartRateTarget{Value: models.Zone(5)},
		models.HeartRateTarget{Value: models.BPM(145)},
		models.HeartRateTarget{Value: models.PercentMax(80)},
		models.HeartRateTarget{Value: models.Range{Min: 130, Max: 150}},
		models.PaceTarget{Value: models.Zone(1)},
		models.PaceTarget{Value: models.MPS(4.1)},
		models.PaceTarget{Value: models.Range{Min: 3.8, Max: 4.0}},
		models.CadenceTarget{Value: models.RPM(170)},
		models.CadenceTarget{Value: models.Range{Min: 85, Max: 95}},
	}
	for _, want := range targets {
		native, ok := TargetFromCanonical(want)
		if !ok {
			t.Errorf("%#v reported not expressible", want)
			continue
		}
		got, out := TargetToCanonical(native)
		if out != ingest.Mapped || !reflect.DeepEqual(got, want) {
			t.Errorf("round trip of %#v = %#v (%v)", want, got, out)
		}
	}
}

func TestTargetNotExpressible(t *testing.T) {
	for _, target := range []models.Target{
		models.PowerTarget{Value: models.Watts(250)},
		models.StrokeTypeTarget{Value: models.SwimStroke(1)},
	} {
		got, ok := TargetFromCanonical(target)
		if ok || got.XSIType != targetNone {
			t.Errorf("%#v = %q %v, want None_t false", target, got.XSIType, ok)
		}
	}
}

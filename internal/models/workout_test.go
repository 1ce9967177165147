package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestStepJSONShape pins the wire shape of a step.
func TestStepJSONShape(t *testing.T) {
	s := NewStep(0, TimeDuration{Seconds: 300}, PowerTarget{Value: Watts(250)})
	s.Intensity = IntensityActive

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"stepIndex":0,"durationType":"time","duration":{"type":"time","seconds":300},` +
		`"targetType":"power","target":{"type":"power","value":{"unit":"watts","value":250}},"intensity":"active"}`
	if string(data) != want {
		t.Errorf("json =\n%s\nwant\n%s", data, want)
	}
}

// TestStepJSONRange pins the range value shape.
func TestStepJSONRange(t *testing.T) {
	s := NewStep(1, OpenDuration{}, HeartRateTarget{Value: Range{Min: 140, Max: 155}})
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"value":{"unit":"range","min":140,"max":155}`) {
		t.Errorf("json = %s, want range value", data)
	}
	if !strings.Contains(string(data), `"duration":{"type":"open"}`) {
		t.Errorf("json = %s, want open duration", data)
	}
}

// TestMarshalSyncsTags verifies stale tag fields are rewritten from the payloads.
func TestMarshalSyncsTags(t *testing.T) {
	s := &WorkoutStep{
		DurationType: DurationDistance,
		Duration:     TimeDuration{Seconds: 60},
		TargetType:   TargetPower,
		Target:       OpenTarget{},
	}
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"durationType":"time"`) || !strings.Contains(string(data), `"targetType":"open"`) {
		t.Errorf("json = %s, want synced tags", data)
	}
}

// TestWorkoutJSONDetectsBlocks verifies blocks are told apart by repeatCount.
func TestWorkoutJSONDetectsBlocks(t *testing.T) {
	in := `{"sport":"running","steps":[
		{"stepIndex":0,"durationType":"time","duration":{"type":"time","seconds":600},"targetType":"open","target":{"type":"open"}},
		{"repeatCount":4,"steps":[
			{"stepIndex":0,"durationType":"distance","duration":{"type":"distance","meters":400},"targetType":"pace","target":{"type":"pace","value":{"unit":"zone","value":4}}},
			{"stepIndex":1,"durationType":"time","duration":{"type":"time","seconds":90},"targetType":"open","target":{"type":"open"}}
		]}
	]}`

	var w Workout
	if err := json.Unmarshal([]byte(in), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(w.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(w.Steps))
	}
	block, ok := w.Steps[1].(*RepetitionBlock)
	if !ok {
		t.Fatalf("steps[1] = %T, want *RepetitionBlock", w.Steps[1])
	}
	if block.RepeatCount != 4 || len(block.Steps) != 2 {
		t.Errorf("block = %d x %d steps, want 4 x 2", block.RepeatCount, len(block.Steps))
	}
	pace, ok := block.Steps[0].Target.(PaceTarget)
	if !ok {
		t.Fatalf("target = %T, want PaceTarget", block.Steps[0].Target)
	}
	if pace.Value != Zone(4) {
		t.Errorf("pace value = %+v, want zone 4", pace.Value)
	}
	if w.StepCount() != 3 {
		t.Errorf("StepCount = %d, want 3", w.StepCount())
	}
}

// TestStepJSONRejectsMismatchedTag verifies a durationType that disagrees with
// the payload is a decode error.
func TestStepJSONRejectsMismatchedTag(t *testing.T) {
	in := `{"stepIndex":0,"durationType":"distance","duration":{"type":"time","seconds":60},"targetType":"open","target":{"type":"open"}}`
	var s WorkoutStep
	if err := json.Unmarshal([]byte(in), &s); err == nil {
		t.Error("expected error for mismatched durationType")
	}
}

// TestDurationRoundTripExtended covers every extended duration variant.
func TestDurationRoundTripExtended(t *testing.T) {
	tests := []Duration{
		CaloriesDuration{Calories: 200},
		PowerLessThanDuration{Watts: 150},
		PowerGreaterThanDuration{Watts: 300},
		HeartRateLessThanDuration{BPM: 120},
		RepeatUntilTimeDuration{Seconds: 1200, RepeatFrom: 1},
		RepeatUntilDistanceDuration{Meters: 5000, RepeatFrom: 0},
		RepeatUntilCaloriesDuration{Calories: 300, RepeatFrom: 2},
		RepeatUntilHeartRateGreaterThanDuration{BPM: 170, RepeatFrom: 0},
		RepeatUntilHeartRateLessThanDuration{BPM: 110, RepeatFrom: 3},
		RepeatUntilPowerLessThanDuration{Watts: 120, RepeatFrom: 1},
		RepeatUntilPowerGreaterThanDuration{Watts: 320, RepeatFrom: 1},
	}
	for _, d := range tests {
		data, err := MarshalDuration(d)
		if err != nil {
			t.Fatalf("marshal %T: %v", d, err)
		}
		got, err := UnmarshalDuration(data)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if got != d {
			t.Errorf("round trip of %s = %#v, want %#v", data, got, d)
		}
	}
}

// TestUnknownVariants verifies unknown tags are decode errors, not silent defaults.
func TestUnknownVariants(t *testing.T) {
	if _, err := UnmarshalDuration([]byte(`{"type":"laps","count":3}`)); err == nil {
		t.Error("expected error for unknown duration type")
	}
	if _, err := UnmarshalTarget([]byte(`{"type":"grade","value":{"unit":"percent","value":3}}`)); err == nil {
		t.Error("expected error for unknown target type")
	}
	if _, err := UnmarshalValue([]byte(`{"unit":"furlongs","value":3}`)); err == nil {
		t.Error("expected error for unknown unit")
	}
	if _, err := UnmarshalTarget([]byte(`{"type":"power"}`)); err == nil {
		t.Error("expected error for power target without value")
	}
}

// TestCheckTarget covers the per-type unit and zone rules.
func TestCheckTarget(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"power zone 7", PowerTarget{Value: Zone(7)}, false},
		{"power zone 8", PowerTarget{Value: Zone(8)}, true},
		{"hr zone 5", HeartRateTarget{Value: Zone(5)}, false},
		{"hr zone 6", HeartRateTarget{Value: Zone(6)}, true},
		{"pace zone 0", PaceTarget{Value: Zone(0)}, true},
		{"hr watts", HeartRateTarget{Value: Watts(200)}, true},
		{"cadence rpm", CadenceTarget{Value: RPM(90)}, false},
		{"cadence zone", CadenceTarget{Value: Zone(2)}, true},
		{"stroke 0", StrokeTypeTarget{Value: SwimStroke(0)}, false},
		{"stroke 6", StrokeTypeTarget{Value: SwimStroke(6)}, true},
		{"inverted range", PowerTarget{Value: Range{Min: 300, Max: 200}}, true},
		{"open", OpenTarget{}, false},
		{"nil value", PowerTarget{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTarget(tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckTarget = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestExtensionsDecode verifies malformed records report false instead of failing.
func TestExtensionsDecode(t *testing.T) {
	var e Extensions
	if err := e.Set(ExtTCX, map[string]any{"type": "HeartRateAbove_t", "value": 160}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var good struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}
	if !e.Decode(ExtTCX, &good) || good.Value != 160 {
		t.Errorf("Decode = %+v, want value 160", good)
	}

	var wrong struct {
		Value string `json:"value"`
	}
	if e.Decode(ExtTCX, &wrong) {
		t.Error("Decode into mismatched type reported true")
	}
	if e.Decode(ExtFIT, &good) {
		t.Error("Decode of missing key reported true")
	}
}

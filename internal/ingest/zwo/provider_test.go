package zwo

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
)

func newTestProvider() *Provider {
	return NewProvider(ingest.DefaultOptions(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	if err != nil {
		t.Fatalf("opening fixture: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestRoundTripFixtures(t *testing.T) {
	p := newTestProvider()
	for _, name := range []string{"over-unders.zwo", "track.zwo"} {
		t.Run(name, func(t *testing.T) {
			report, err := p.RoundTrip(openFixture(t, name), roundtrip.DefaultPolicy())
			if err != nil {
				t.Fatalf("round trip: %v", err)
			}
			if !report.Passed() {
				t.Errorf("violations: %+v", report.Violations)
			}
			if report.Compared == 0 {
				t.Error("no fields compared")
			}
		})
	}
}

func TestDecodeBikeWorkout(t *testing.T) {
	doc, err := newTestProvider().Decode(openFixture(t, "over-unders.zwo"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Type != models.FileStructuredWorkout || doc.Metadata.Sport != "cycling" {
		t.Errorf("type, sport = %s, %s", doc.Type, doc.Metadata.Sport)
	}
	w := doc.Workout()
	if len(w.Steps) != 8 {
		t.Fatalf("entries = %d, want 8", len(w.Steps))
	}

	warmup := w.Steps[0].(*models.WorkoutStep)
	if warmup.Intensity != models.IntensityWarmup || warmup.Target != (models.PowerTarget{Value: models.PercentFTP(50)}) {
		t.Errorf("warmup = %s %#v", warmup.Intensity, warmup.Target)
	}
	if b, ok := w.Steps[2].(*models.RepetitionBlock); !ok || b.RepeatCount != 3 {
		t.Errorf("entry 2 = %#v, want 3x block", w.Steps[2])
	}
	if ramp := w.Steps[3].(*models.WorkoutStep); ramp.Target != (models.PowerTarget{Value: models.PercentFTP(75)}) {
		t.Errorf("ramp target = %#v", ramp.Target)
	}
	if sprint := w.Steps[5].(*models.WorkoutStep); sprint.Intensity != models.IntensityInterval {
		t.Errorf("max effort intensity = %s", sprint.Intensity)
	}
	if spin := w.Steps[6].(*models.WorkoutStep); spin.Target != (models.CadenceTarget{Value: models.RPM(100)}) {
		t.Errorf("cadence step = %#v", spin.Target)
	}
	if w.Extensions == nil {
		t.Error("author, description and tags not preserved")
	}
}

func TestDecodeRunWorkout(t *testing.T) {
	doc, err := newTestProvider().Decode(openFixture(t, "track.zwo"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	w := doc.Workout()
	if w.Sport != models.SportRunning {
		t.Errorf("sport = %s", w.Sport)
	}
	if len(w.Steps) != 6 {
		t.Fatalf("entries = %d, want 6", len(w.Steps))
	}
	if d := w.Steps[0].(*models.WorkoutStep).Duration; d != (models.DistanceDuration{Meters: 1600}) {
		t.Errorf("first duration = %#v, want 1600 m", d)
	}
	if c := w.Steps[2].(*models.WorkoutStep).Target; c != (models.CadenceTarget{Value: models.RPM(85)}) {
		t.Errorf("run cadence = %#v, want 85 rpm", c)
	}
	if p := w.Steps[3].(*models.WorkoutStep).Target; p != (models.PaceTarget{Value: models.Zone(2)}) {
		t.Errorf("pace = %#v, want zone 2", p)
	}
}

func TestEncode(t *testing.T) {
	p := newTestProvider()
	doc, err := p.Decode(openFixture(t, "over-unders.zwo"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var buf bytes.Buffer
	if err := p.Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`<workout_file>`,
		`<IntervalsT Repeat="3" OnDuration="120" OffDuration="60" OnPower="1.05" OffPower="0.95" Cadence="95" CadenceResting="85"></IntervalsT>`,
		`<textevent timeoffset="10" message="Easy spin to start"></textevent>`,
		`<tag name="FTP"></tag>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestEncodeWithoutWorkout(t *testing.T) {
	doc := &models.Document{Version: models.CurrentVersion, Type: models.FileRecordedActivity}
	err := newTestProvider().Encode(io.Discard, doc)
	if !errors.Is(err, ErrNoWorkout) {
		t.Errorf("err = %v, want ErrNoWorkout", err)
	}
}

// TestRoundTripReportsUnreadAttributes verifies an attribute the adapter does
// not read is a violation rather than vanishing from both sides.
func TestRoundTripReportsUnreadAttributes(t *testing.T) {
	data, err := os.ReadFile("testdata/over-unders.zwo")
	if err != nil {
		t.Fatal(err)
	}
	in := strings.Replace(string(data), `Power="0.88"`, `Power="0.88" Zone="3"`, 1)

	report, err := newTestProvider().RoundTrip(strings.NewReader(in), roundtrip.DefaultPolicy())
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if len(report.Violations) != 1 {
		t.Fatalf("violations = %+v, want one", report.Violations)
	}
	if v := report.Violations[0]; v.Field != "workout_file.workout.steadyState[0].@zone" || v.Original != 3.0 {
		t.Errorf("violation = %+v, want the Zone attribute dropped", v)
	}
}

package krd

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *Provider {
	return NewProvider(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func TestDecode(t *testing.T) {
	doc, err := newTestProvider().Decode(bytes.NewReader(fixture(t, "workout.krd.json")))
	require.NoError(t, err)

	assert.Equal(t, models.FileStructuredWorkout, doc.Type)
	w := doc.Workout()
	require.NotNil(t, w)
	require.Len(t, w.Steps, 3)

	block, ok := w.Steps[1].(*models.RepetitionBlock)
	require.True(t, ok, "entry 1 is %T", w.Steps[1])
	assert.Equal(t, 2, block.RepeatCount)
	assert.Equal(t, models.PowerTarget{Value: models.Range{Min: 250, Max: 270}}, block.Steps[0].Target)
	assert.Equal(t, models.HeartRateTarget{Value: models.Zone(1)}, block.Steps[1].Target)
	assert.Equal(t, []string{models.ExtZwift}, w.Steps[2].(*models.WorkoutStep).Extensions.Formats())
}

func TestDecodeReindexes(t *testing.T) {
	doc, err := newTestProvider().Decode(bytes.NewReader(fixture(t, "misindexed.krd.json")))
	require.NoError(t, err)

	steps := doc.Workout().Steps
	require.Len(t, steps, 2)
	assert.Equal(t, 0, steps[0].(*models.WorkoutStep).StepIndex)
	assert.Equal(t, 1, steps[1].(*models.WorkoutStep).StepIndex)
}

func TestDecodeListsEveryProblem(t *testing.T) {
	in := `{"version": "one", "type": "playlist", "metadata": {"sport": "cycling"}}`
	_, err := newTestProvider().Decode(strings.NewReader(in))

	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs), "err = %v", err)
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{"version", "type", "metadata.created"} {
		assert.True(t, fields[want], "missing %q in %v", want, verrs)
	}
}

func TestDecodeNullBlockChild(t *testing.T) {
	in := `{"version":"1.0","type":"structured_workout","metadata":{"created":"2024-03-01T10:00:00Z","sport":"cycling"},
		"extensions":{"workout":{"sport":"cycling","steps":[{"repeatCount":2,"steps":[null]}]}}}`
	p := newTestProvider()

	_, err := p.Decode(strings.NewReader(in))
	var verrs models.ValidationErrors
	require.True(t, errors.As(err, &verrs), "err = %v", err)
	assert.Contains(t, verrs, models.ValidationError{Field: "extensions.workout.steps[0].steps[0]", Message: "is required"})

	_, err = p.RoundTrip(strings.NewReader(in), roundtrip.DefaultPolicy())
	assert.True(t, errors.As(err, &verrs), "err = %v", err)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := newTestProvider().Decode(strings.NewReader(`{"version": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing KRD")

	in := `{"version":"1.0","type":"structured_workout","metadata":{"created":"2024-03-01T10:00:00Z","sport":"cycling"},
		"extensions":{"workout":{"sport":"cycling","steps":[{"duration":{"type":"warp"},"target":{"type":"open"}}]}}}`
	_, err = newTestProvider().Decode(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warp")
}

func TestEncodeDecode(t *testing.T) {
	p := newTestProvider()
	doc, err := p.Decode(bytes.NewReader(fixture(t, "workout.krd.json")))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf, doc))
	assert.Contains(t, buf.String(), "\n  \"version\": \"1.0\"")

	again, err := p.Decode(&buf)
	require.NoError(t, err)
	report, err := roundtrip.Compare(doc, again, roundtrip.Policy{})
	require.NoError(t, err)
	assert.True(t, report.Passed(), "violations: %+v", report.Violations)
}

func TestEncodeRejectsInvalid(t *testing.T) {
	err := newTestProvider().Encode(io.Discard, &models.Document{Version: "1.0"})
	var verrs models.ValidationErrors
	assert.True(t, errors.As(err, &verrs), "err = %v", err)
}

func TestRoundTrip(t *testing.T) {
	p := newTestProvider()

	report, err := p.RoundTrip(bytes.NewReader(fixture(t, "workout.krd.json")), roundtrip.DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, "krd", report.Format)
	assert.True(t, report.Passed(), "violations: %+v", report.Violations)
	assert.Positive(t, report.Compared)

	report, err = p.RoundTrip(bytes.NewReader(fixture(t, "misindexed.krd.json")), roundtrip.DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Contains(t, report.Violations[0].Field, "stepIndex")
}

package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jsonAdapter reads and writes the canonical document as JSON under any format key.
type jsonAdapter struct {
	format    Format
	encodeErr error
}

func (a jsonAdapter) Format() Format { return a.format }

func (a jsonAdapter) Decode(r io.Reader) (*models.Document, error) {
	var doc models.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (a jsonAdapter) Encode(w io.Writer, doc *models.Document) error {
	if a.encodeErr != nil {
		return a.encodeErr
	}
	return json.NewEncoder(w).Encode(doc)
}

func (a jsonAdapter) RoundTrip(r io.Reader, policy roundtrip.Policy) (*roundtrip.Report, error) {
	doc, err := a.Decode(r)
	if err != nil {
		return nil, err
	}
	report, err := roundtrip.Compare(doc, doc, policy)
	if err != nil {
		return nil, err
	}
	report.Format = string(a.format)
	return report, nil
}

const workoutJSON = `{
  "version": "1.0",
  "type": "structured_workout",
  "metadata": {"created": "2024-03-01T10:00:00Z", "sport": "cycling"},
  "extensions": {"workout": {"sport": "cycling", "steps": [
    {"stepIndex": 0, "durationType": "time", "duration": {"type": "time", "seconds": 600},
     "targetType": "open", "target": {"type": "open"}},
    {"repeatCount": 3, "steps": [
      {"stepIndex": 0, "durationType": "time", "duration": {"type": "time", "seconds": 60},
       "targetType": "power", "target": {"type": "power", "value": {"unit": "watts", "value": 300}}},
      {"stepIndex": 1, "durationType": "open", "duration": {"type": "open"},
       "targetType": "open", "target": {"type": "open"}}
    ]}
  ]}},
  "records": [{"timestamp": "2024-03-01T10:00:00Z"}]
}`

func TestRegistryFormatsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry(jsonAdapter{format: FormatZWO}, jsonAdapter{format: FormatFIT}, jsonAdapter{format: FormatZWO})
	assert.Equal(t, []Format{FormatZWO, FormatFIT}, r.Formats())

	formats := r.Formats()
	formats[0] = "mutated"
	assert.Equal(t, FormatZWO, r.Formats()[0])
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry(jsonAdapter{format: FormatKRD})
	_, err := r.Get(FormatTCX)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestConvertCountsEntities(t *testing.T) {
	r := NewRegistry(jsonAdapter{format: FormatKRD}, jsonAdapter{format: FormatFIT})

	var out bytes.Buffer
	res, err := r.Convert(FormatKRD, FormatFIT, strings.NewReader(workoutJSON), &out)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, FormatKRD, res.From)
	assert.Equal(t, FormatFIT, res.To)
	assert.Equal(t, "structured_workout", res.DocumentType)
	assert.Equal(t, 1, res.Workouts)
	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, 1, res.Records)
	assert.Equal(t, int64(len(workoutJSON)), res.BytesIn)
	assert.Equal(t, int64(out.Len()), res.BytesOut)
}

func TestConvertWritesNothingOnEncodeFailure(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry(jsonAdapter{format: FormatKRD}, jsonAdapter{format: FormatTCX, encodeErr: boom})

	var out bytes.Buffer
	_, err := r.Convert(FormatKRD, FormatTCX, strings.NewReader(workoutJSON), &out)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, out.Len())
}

func TestConvertUnknownFormat(t *testing.T) {
	r := NewRegistry(jsonAdapter{format: FormatKRD})
	_, err := r.Convert(FormatKRD, FormatZWO, strings.NewReader(workoutJSON), io.Discard)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRegistryRoundTrip(t *testing.T) {
	r := NewRegistry(jsonAdapter{format: FormatKRD})
	report, err := r.RoundTrip(FormatKRD, strings.NewReader(workoutJSON), roundtrip.DefaultPolicy())
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, "krd", report.Format)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" TCX ")
	require.NoError(t, err)
	assert.Equal(t, FormatTCX, f)

	_, err = ParseFormat("gpx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"ride.fit.json", FormatFIT},
		{"/tmp/Run.TCX", FormatTCX},
		{"sweet-spot.zwo", FormatZWO},
		{"plan.krd", FormatKRD},
		{"plans/Threshold.KRD.json", FormatKRD},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, path := range []string{"track.gpx", "tolerances.json", "plan.json", "package.json", "ride.fit"} {
		_, err := FormatFromPath(path)
		assert.ErrorIs(t, err, ErrUnknownFormat, path)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	assert.Equal(t, models.SportGeneric, o.Sport())
	assert.NotEmpty(t, o.Created())

	o.DefaultSport = models.SportRunning
	assert.Equal(t, models.SportRunning, o.Sport())
}

func TestDescribe(t *testing.T) {
	for _, f := range []Format{FormatFIT, FormatTCX, FormatZWO, FormatKRD} {
		info := Describe(f)
		assert.Equal(t, f, info.Format)
		assert.NotEmpty(t, info.Extension)
		got, err := FormatFromPath("x" + info.Extension)
		require.NoError(t, err)
		assert.Equal(t, f, got, "extension %s", info.Extension)
	}
	assert.Equal(t, "application/octet-stream", Describe("gpx").MediaType)
}

package roundtrip

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestToleranceOrSemantics(t *testing.T) {
	tol := Tolerance{Absolute: f(2), Percentage: f(5), Unit: "W"}

	// Absolute passes while percentage fails: 2 W off 10 W is 20%.
	assert.True(t, tol.Allows(10, 12))
	// Percentage passes while absolute fails: 4 W off 100 W is 4%.
	assert.True(t, tol.Allows(100, 104))
	// Both fail.
	assert.False(t, tol.Allows(10, 15))

	onlyAbs := Tolerance{Absolute: f(1)}
	assert.True(t, onlyAbs.Allows(100, 101))
	assert.False(t, onlyAbs.Allows(100, 101.5))

	onlyPct := Tolerance{Percentage: f(1)}
	assert.True(t, onlyPct.Allows(300, 303))
	assert.False(t, onlyPct.Allows(300, 304))
}

func TestPolicyLookupOrder(t *testing.T) {
	p := Policy{
		"records[0].power": {Absolute: f(10)},
		"records.power":    {Absolute: f(5)},
		"power":            {Absolute: f(1)},
	}

	tol, ok := p.Lookup("records[0].power")
	require.True(t, ok)
	assert.Equal(t, 10.0, *tol.Absolute)

	tol, ok = p.Lookup("records[3].power")
	require.True(t, ok)
	assert.Equal(t, 5.0, *tol.Absolute)

	tol, ok = p.Lookup("laps[1].power")
	require.True(t, ok)
	assert.Equal(t, 1.0, *tol.Absolute)

	_, ok = p.Lookup("laps[1].calories")
	assert.False(t, ok)
}

type sample struct {
	Name    string    `json:"name"`
	Power   *float64  `json:"power,omitempty"`
	Time    string    `json:"time,omitempty"`
	Samples []float64 `json:"samples,omitempty"`
	Extra   *string   `json:"extra,omitempty"`
}

func TestCompareExactWithoutTolerance(t *testing.T) {
	a := sample{Name: "x", Samples: []float64{1, 2, 3}}
	b := sample{Name: "x", Samples: []float64{1, 2, 3.0001}}

	report, err := Compare(a, b, Policy{})
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "samples[2]", report.Violations[0].Field)
	assert.Nil(t, report.Violations[0].Tolerance)
	assert.False(t, report.Passed())
}

func TestCompareWithinTolerance(t *testing.T) {
	a := sample{Name: "x", Power: f(250)}
	b := sample{Name: "x", Power: f(251)}

	report, err := Compare(a, b, DefaultPolicy())
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, 2, report.Compared)
}

func TestCompareMissingField(t *testing.T) {
	extra := "kept"
	a := sample{Name: "x", Extra: &extra}
	b := sample{Name: "x"}

	report, err := Compare(a, b, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, "extra", v.Field)
	assert.Equal(t, "kept", v.Original)
	assert.Nil(t, v.Reencoded)
}

func TestCompareTimestampStrings(t *testing.T) {
	a := sample{Name: "x", Time: "2024-03-01T10:00:00.400Z"}
	b := sample{Name: "x", Time: "2024-03-01T10:00:00Z"}

	report, err := Compare(a, b, DefaultPolicy())
	require.NoError(t, err)
	assert.True(t, report.Passed(), "sub-second truncation is within the 1 s tolerance")

	report, err = Compare(a, b, Policy{})
	require.NoError(t, err)
	assert.False(t, report.Passed())
}

func TestCompareViolationsSorted(t *testing.T) {
	a := map[string]any{"b": 1.0, "a": 1.0, "c": map[string]any{"z": "q"}}
	b := map[string]any{"b": 2.0, "a": 2.0, "c": map[string]any{"z": "r"}}

	report, err := Compare(a, b, Policy{})
	require.NoError(t, err)
	var fields []string
	for _, v := range report.Violations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"a", "b", "c.z"}, fields)
}

func TestCheckRunsConverterPair(t *testing.T) {
	toCanonical := func(s sample) (float64, error) { return *s.Power, nil }
	fromCanonical := func(p float64) (sample, error) { return sample{Name: "x", Power: f(p + 3)}, nil }

	report, err := Check(sample{Name: "x", Power: f(100)}, toCanonical, fromCanonical, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "power", report.Violations[0].Field)
	require.NotNil(t, report.Violations[0].Tolerance)

	boom := errors.New("boom")
	_, err = Check(sample{}, func(sample) (float64, error) { return 0, boom }, fromCanonical, nil)
	assert.ErrorIs(t, err, boom)
}

func TestLoadPolicyYAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("power:\n  absolute: 2\n  percentage: 5\n  unit: W\n"), 0o644))
	p, err := LoadPolicy(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 2.0, *p["power"].Absolute)
	assert.Equal(t, 5.0, *p["power"].Percentage)
	assert.Equal(t, "W", p["power"].Unit)

	jsonPath := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"heartRate":{"absolute":1,"unit":"bpm"}}`), 0o644))
	p, err = LoadPolicy(jsonPath)
	require.NoError(t, err)
	assert.Nil(t, p["heartRate"].Percentage)
	assert.Equal(t, 1.0, *p["heartRate"].Absolute)

	badPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("power:\n  unit: W\n"), 0o644))
	_, err = LoadPolicy(badPath)
	assert.Error(t, err)

	_, err = LoadPolicy(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

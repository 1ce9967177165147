package models

import (
	"errors"
	"testing"
)

func validDocument() *Document {
	doc := &Document{
		Version: "1.0",
		Type:    FileStructuredWorkout,
		Metadata: Metadata{
			Created: "2024-05-01T08:00:00Z",
			Sport:   "cycling",
		},
	}
	doc.SetWorkout(ReindexWorkout(sampleWorkout()))
	return doc
}

func fieldSet(err error) map[string]bool {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := map[string]bool{}
	for _, e := range verrs {
		out[e.Field] = true
	}
	return out
}

// TestValidateDocumentOK verifies a well-formed document passes.
func TestValidateDocumentOK(t *testing.T) {
	if err := validDocument().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

// TestValidateReportsAllProblems verifies every structural problem is listed
// in one pass rather than stopping at the first.
func TestValidateReportsAllProblems(t *testing.T) {
	doc := validDocument()
	doc.Version = "v1"
	doc.Type = "playlist"
	doc.Metadata.Created = "last tuesday"
	doc.Records = []Record{{Timestamp: ""}}

	fields := fieldSet(doc.Validate())
	for _, want := range []string{"version", "type", "metadata.created", "records[0].timestamp"} {
		if !fields[want] {
			t.Errorf("missing validation error for %q; got %v", want, fields)
		}
	}
}

// TestValidateVersions checks the accepted version shapes.
func TestValidateVersions(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"1.0", true},
		{"2.1.3", true},
		{"1", false},
		{"1.0.0-beta", false},
		{"", false},
	}
	for _, tt := range tests {
		doc := validDocument()
		doc.Version = tt.version
		err := doc.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("version %q: Validate() = %v, want ok=%v", tt.version, err, tt.ok)
		}
	}
}

// TestValidateWorkout covers block and step rules inside the document.
func TestValidateWorkout(t *testing.T) {
	doc := validDocument()
	w := doc.Workout()
	w.Sport = "rowing"
	w.Steps[1].(*RepetitionBlock).RepeatCount = 1
	w.Steps[2].(*WorkoutStep).Target = PowerTarget{Value: Zone(9)}

	fields := fieldSet(doc.Validate())
	for _, want := range []string{
		"extensions.workout.sport",
		"extensions.workout.steps[1].repeatCount",
		"extensions.workout.steps[2].targetType",
		"extensions.workout.steps[2].target.value",
	} {
		if !fields[want] {
			t.Errorf("missing validation error for %q; got %v", want, fields)
		}
	}
}

// TestValidateNonPositiveTime verifies zero-length time durations are rejected.
func TestValidateNonPositiveTime(t *testing.T) {
	w := &Workout{Sport: SportRunning, Steps: []Entry{NewStep(0, TimeDuration{Seconds: 0}, OpenTarget{})}}
	fields := fieldSet(w.Validate())
	if !fields["workout.steps[0].duration"] {
		t.Errorf("fields = %v, want workout.steps[0].duration", fields)
	}
}

package storage

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/roundtrip"
	"github.com/google/uuid"
)

// TestConversionLogFromResult verifies the result id and counters carry over.
func TestConversionLogFromResult(t *testing.T) {
	id := uuid.New()
	res := &ingest.Result{
		ID: id.String(), From: ingest.FormatZWO, To: ingest.FormatFIT,
		DocumentType: "structured_workout", Steps: 7, BytesIn: 900, BytesOut: 2100,
	}
	l := ConversionLogFromResult(res, 1500*time.Millisecond)

	if l.ID != id {
		t.Errorf("id = %s, want %s", l.ID, id)
	}
	if l.Kind != KindConvert || l.Status != StatusSuccess {
		t.Errorf("kind, status = %s, %s", l.Kind, l.Status)
	}
	if l.SourceFormat != "zwo" || l.TargetFormat != "fit" {
		t.Errorf("formats = %s -> %s", l.SourceFormat, l.TargetFormat)
	}
	if l.Steps != 7 || l.BytesIn != 900 || l.BytesOut != 2100 {
		t.Errorf("counters = %+v", l)
	}
	if l.DurationMs == nil || *l.DurationMs != 1500 {
		t.Errorf("duration_ms = %v, want 1500", l.DurationMs)
	}
}

// TestConversionLogFromResultBadID verifies a malformed result id still gets a fresh id.
func TestConversionLogFromResultBadID(t *testing.T) {
	l := ConversionLogFromResult(&ingest.Result{ID: "nope"}, 0)
	if l.ID == uuid.Nil {
		t.Error("expected a generated id")
	}
}

func TestConversionLogFromReport(t *testing.T) {
	passed := ConversionLogFromReport(ingest.FormatTCX, &roundtrip.Report{Format: "tcx", Compared: 40}, time.Second)
	if passed.Status != StatusSuccess || passed.Metadata != nil {
		t.Errorf("passed report = %+v", passed)
	}

	failed := ConversionLogFromReport(ingest.FormatFIT, &roundtrip.Report{
		Format: "fit",
		Violations: []roundtrip.Violation{
			{Field: "records[0].power"},
			{Field: "laps[1].totalDistance"},
		},
	}, time.Second)
	if failed.Status != StatusFailed || failed.Violations != 2 {
		t.Fatalf("failed report = %+v", failed)
	}
	if failed.Metadata == nil {
		t.Fatal("expected violated fields in metadata")
	}
	var meta struct {
		Fields []string `json:"fields"`
	}
	if err := json.Unmarshal(*failed.Metadata, &meta); err != nil {
		t.Fatal(err)
	}
	if len(meta.Fields) != 2 || meta.Fields[0] != "records[0].power" {
		t.Errorf("fields = %v", meta.Fields)
	}
}

func TestConversionLogFromError(t *testing.T) {
	l := ConversionLogFromError(KindConvert, ingest.FormatKRD, ingest.FormatZWO, errors.New("no workout"), 0)
	if l.Status != StatusError {
		t.Errorf("status = %s, want error", l.Status)
	}
	if l.ErrorMessage == nil || *l.ErrorMessage != "no workout" {
		t.Errorf("error_message = %v", l.ErrorMessage)
	}
	if l.TargetFormat != "zwo" {
		t.Errorf("target = %s", l.TargetFormat)
	}
}

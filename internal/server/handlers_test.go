package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/ingest/krd"
	"github.com/claude/workouthub/internal/ingest/zwo"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/storage"
	"github.com/google/uuid"
)

const testKey = "test-key"

// fakeLog is an in-memory ConversionLog.
type fakeLog struct {
	entries []storage.ConversionLog
	err     error
}

func (f *fakeLog) InsertConversionLog(_ context.Context, l storage.ConversionLog) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.entries = append(f.entries, l)
	return l.ID, nil
}

func (f *fakeLog) QueryConversionLogs(_ context.Context, format string, limit int) ([]storage.ConversionLog, error) {
	var out []storage.ConversionLog
	for _, l := range f.entries {
		if format == "" || l.SourceFormat == format {
			out = append(out, l)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLog) GetConversionStats(context.Context) (*storage.ConversionStats, error) {
	return &storage.ConversionStats{TotalConversions: int64(len(f.entries))}, nil
}

func newTestServer(logs ConversionLog) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := ingest.NewRegistry(
		zwo.NewProvider(ingest.DefaultOptions(), log),
		krd.NewProvider(log),
	)
	return New(reg, logs, nil, testKey, log)
}

func fixture(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile("../ingest/" + path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func do(s *Server, method, target string, body []byte, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestHandleFormats verifies registered formats are listed in registration order.
func TestHandleFormats(t *testing.T) {
	rec := do(newTestServer(nil), http.MethodGet, "/api/v1/formats", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var infos []ingest.FormatInfo
	if err := json.NewDecoder(rec.Body).Decode(&infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 2 || infos[0].Format != ingest.FormatZWO || infos[1].Format != ingest.FormatKRD {
		t.Errorf("formats = %+v", infos)
	}
}

// TestHandleConvert verifies a ZWO upload comes back as a canonical document
// and is recorded in the conversion log.
func TestHandleConvert(t *testing.T) {
	logs := &fakeLog{}
	s := newTestServer(logs)

	rec := do(s, http.MethodPost, "/api/v1/convert?from=zwo&to=krd", fixture(t, "zwo/testdata/over-unders.zwo"), testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if id := rec.Header().Get("X-Conversion-Id"); id == "" {
		t.Error("missing X-Conversion-Id")
	}

	var doc models.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if doc.Type != models.FileStructuredWorkout || doc.Workout() == nil {
		t.Errorf("document = %+v", doc)
	}

	if len(logs.entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(logs.entries))
	}
	if l := logs.entries[0]; l.Kind != storage.KindConvert || l.Status != storage.StatusSuccess || l.Steps == 0 {
		t.Errorf("log entry = %+v", l)
	}
}

// TestHandleConvertInfersSource verifies the filename parameter stands in for from.
func TestHandleConvertInfersSource(t *testing.T) {
	rec := do(newTestServer(nil), http.MethodPost, "/api/v1/convert?filename=over-unders.zwo&to=krd",
		fixture(t, "zwo/testdata/over-unders.zwo"), testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
}

// TestHandleConvertValidationErrors verifies a structurally invalid document
// answers 422 with every offending field.
func TestHandleConvertValidationErrors(t *testing.T) {
	logs := &fakeLog{}
	body := []byte(`{"version": "one", "type": "playlist", "metadata": {"sport": "cycling"}}`)
	rec := do(newTestServer(logs), http.MethodPost, "/api/v1/convert?from=krd&to=zwo", body, testKey)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Error  string                  `json:"error"`
		Fields models.ValidationErrors `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Fields) < 3 {
		t.Errorf("fields = %+v, want at least version, type and metadata.created", resp.Fields)
	}
	if len(logs.entries) != 1 || logs.entries[0].Status != storage.StatusError {
		t.Errorf("log entries = %+v", logs.entries)
	}
}

func TestHandleConvertBadRequests(t *testing.T) {
	s := newTestServer(nil)
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"unknown target", "/api/v1/convert?from=krd&to=gpx", "{}"},
		{"unregistered source", "/api/v1/convert?from=fit&to=krd", "{}"},
		{"no source", "/api/v1/convert?to=krd", "{}"},
		{"malformed body", "/api/v1/convert?from=zwo&to=krd", "<workout_file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, http.MethodPost, tt.target, []byte(tt.body), testKey)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}

// TestHandleConvertAuth verifies conversion requires the API key.
func TestHandleConvertAuth(t *testing.T) {
	s := newTestServer(nil)
	if rec := do(s, http.MethodPost, "/api/v1/convert?from=krd&to=zwo", nil, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/api/v1/convert?from=krd&to=zwo", nil, "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}
}

// TestHandleRoundTrip verifies the report is returned for both passing and
// failing inputs and that failures are logged as such.
func TestHandleRoundTrip(t *testing.T) {
	logs := &fakeLog{}
	s := newTestServer(logs)

	rec := do(s, http.MethodPost, "/api/v1/roundtrip?format=zwo", fixture(t, "zwo/testdata/track.zwo"), testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var passed roundTripResponse
	if err := json.NewDecoder(rec.Body).Decode(&passed); err != nil {
		t.Fatal(err)
	}
	if !passed.Passed || passed.Compared == 0 || passed.Format != "zwo" {
		t.Errorf("report = %+v", passed.Report)
	}

	rec = do(s, http.MethodPost, "/api/v1/roundtrip?filename=plan.krd", fixture(t, "krd/testdata/misindexed.krd.json"), testKey)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var failed roundTripResponse
	if err := json.NewDecoder(rec.Body).Decode(&failed); err != nil {
		t.Fatal(err)
	}
	if failed.Passed || len(failed.Violations) != 1 {
		t.Errorf("report = %+v", failed.Report)
	}

	if len(logs.entries) != 2 {
		t.Fatalf("log entries = %d, want 2", len(logs.entries))
	}
	if logs.entries[0].Status != storage.StatusSuccess || logs.entries[1].Status != storage.StatusFailed {
		t.Errorf("statuses = %s, %s", logs.entries[0].Status, logs.entries[1].Status)
	}
}

// TestHandleConversionsDisabled verifies the log endpoints answer 503 without a database.
func TestHandleConversionsDisabled(t *testing.T) {
	s := newTestServer(nil)
	for _, path := range []string{"/api/v1/conversions", "/api/v1/conversions/stats"} {
		if rec := do(s, http.MethodGet, path, nil, ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: status = %d, want 503", path, rec.Code)
		}
	}
}

func TestHandleConversions(t *testing.T) {
	logs := &fakeLog{entries: []storage.ConversionLog{
		{ID: uuid.New(), Kind: storage.KindConvert, SourceFormat: "zwo"},
		{ID: uuid.New(), Kind: storage.KindRoundTrip, SourceFormat: "krd"},
	}}
	s := newTestServer(logs)

	rec := do(s, http.MethodGet, "/api/v1/conversions?format=ZWO&limit=10", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got []storage.ConversionLog
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].SourceFormat != "zwo" {
		t.Errorf("logs = %+v", got)
	}

	if rec := do(s, http.MethodGet, "/api/v1/conversions?format=gpx", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad format: status = %d, want 400", rec.Code)
	}

	rec = do(s, http.MethodGet, "/api/v1/conversions/stats", nil, "")
	if !strings.Contains(rec.Body.String(), `"total_conversions":2`) {
		t.Errorf("stats = %s", rec.Body)
	}
}

// TestRecordFailureDoesNotFailRequest verifies a broken log never breaks conversion.
func TestRecordFailureDoesNotFailRequest(t *testing.T) {
	s := newTestServer(&fakeLog{err: errors.New("db down")})
	rec := do(s, http.MethodPost, "/api/v1/convert?from=zwo&to=krd", fixture(t, "zwo/testdata/track.zwo"), testKey)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMount(t *testing.T) {
	s := newTestServer(nil)
	s.Mount("/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	if rec := do(s, http.MethodPost, "/mcp", nil, ""); rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
}

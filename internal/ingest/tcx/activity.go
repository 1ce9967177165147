package tcx

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/units"
)

func isoOf(field, s string) (string, error) {
	if s == "" {
		return "", models.Missing(field)
	}
	if _, err := units.ParseISO(s); err != nil {
		return "", models.ValidationErrors{{Field: field, Message: "must be an ISO-8601 timestamp"}}
	}
	return s, nil
}

// tcxTime renders a canonical timestamp the way TCX stores it: UTC, whole seconds.
func tcxTime(field, iso string) (string, error) {
	if iso == "" {
		return "", models.Missing(field)
	}
	t, err := units.ParseISO(iso)
	if err != nil {
		return "", models.ValidationErrors{{Field: field, Message: "must be an ISO-8601 timestamp"}}
	}
	return units.FormatISO(t), nil
}

// parseActivityExt reads the ActivityExtension content of a raw Extensions
// element. Prefixes declared on the document root are not resolvable here;
// elements are matched by local name.
func parseActivityExt(e *models.TCXExtensions) (models.TCXActivityExt, bool) {
	var out models.TCXActivityExt
	if e == nil || strings.TrimSpace(e.Inner) == "" {
		return out, false
	}
	if err := xml.Unmarshal([]byte("<Extensions>"+e.Inner+"</Extensions>"), &out); err != nil {
		return out, false
	}
	return out, true
}

type tpxElement struct {
	XMLName xml.Name `xml:"TPX"`
	models.TCXTPX
}

type lxElement struct {
	XMLName xml.Name `xml:"LX"`
	models.TCXLX
}

func marshalExt(v any) (*models.TCXExtensions, error) {
	b, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding activity extension: %w", err)
	}
	return &models.TCXExtensions{Inner: string(b)}, nil
}

// recordExtension is the "tcx" extension record of a trackpoint.
type recordExtension struct {
	Extensions string `json:"extensions,omitempty"`
	// RunCadence marks a cadence read from TPX rather than the Cadence element.
	RunCadence bool   `json:"runCadence,omitempty"`
}

// RecordToCanonical converts one Trackpoint. Speed, power and run cadence
// are read from the TPX extension.
func RecordToCanonical(tp models.TCXTrackpoint) (models.Record, error) {
	ts, err := isoOf("time", tp.Time)
	if err != nil {
		return models.Record{}, err
	}
	out := models.Record{
		Timestamp: ts,
		Altitude:  tp.AltitudeMeters,
		Distance:  tp.DistanceMeters,
		Cadence:   tp.Cadence,
	}
	if tp.HeartRateBpm != nil {
		out.HeartRate = models.Ptr(tp.HeartRateBpm.Value)
	}
	if tp.Position != nil {
		out.Position = &models.Position{Lat: tp.Position.LatitudeDegrees, Lon: tp.Position.LongitudeDegrees}
	}
	if tp.Extensions == nil {
		return out, nil
	}

	ext := recordExtension{Extensions: tp.Extensions.Inner}
	if ax, ok := parseActivityExt(tp.Extensions); ok && ax.TPX != nil {
		out.Speed = ax.TPX.Speed
		out.Power = ax.TPX.Watts
		if out.Cadence == nil && ax.TPX.RunCadence != nil {
			out.Cadence = ax.TPX.RunCadence
			ext.RunCadence = true
		}
	}
	if err := out.Extensions.Set(models.ExtTCX, ext); err != nil {
		return models.Record{}, err
	}
	return out, nil
}

// RecordFromCanonical converts a canonical record. A preserved raw extension
// is written back verbatim; otherwise speed and power go to a new TPX element.
func RecordFromCanonical(r models.Record) (models.TCXTrackpoint, error) {
	ts, err := tcxTime("timestamp", r.Timestamp)
	if err != nil {
		return models.TCXTrackpoint{}, err
	}
	out := models.TCXTrackpoint{
		Time:           ts,
		AltitudeMeters: r.Altitude,
		DistanceMeters: r.Distance,
		Cadence:        r.Cadence,
	}
	if r.HeartRate != nil {
		out.HeartRateBpm = &models.TCXBpm{Value: math.Round(*r.HeartRate)}
	}
	if r.Position != nil {
		out.Position = &models.TCXPosition{LatitudeDegrees: r.Position.Lat, LongitudeDegrees: r.Position.Lon}
	}

	var ext recordExtension
	switch {
	case r.Extensions.Decode(models.ExtTCX, &ext) && ext.Extensions != "":
		out.Extensions = &models.TCXExtensions{Inner: ext.Extensions}
		if ext.RunCadence {
			out.Cadence = nil
		}
	case r.Speed != nil || r.Power != nil:
		tpx := models.TCXTPX{Xmlns: models.TCXActivityExtension, Speed: r.Speed, Watts: r.Power}
		if out.Extensions, err = marshalExt(tpxElement{TCXTPX: tpx}); err != nil {
			return models.TCXTrackpoint{}, err
		}
	}
	return out, nil
}

// RecordsToCanonical converts trackpoints element-wise; the first invalid
// trackpoint fails the batch.
func RecordsToCanonical(in []models.TCXTrackpoint) ([]models.Record, error) {
	return ingest.ConvertBatch(in, RecordToCanonical)
}

func RecordsFromCanonical(in []models.Record) ([]models.TCXTrackpoint, error) {
	return ingest.ConvertBatch(in, RecordFromCanonical)
}

var lapTriggers = map[string]models.LapTrigger{
	"Manual":   models.LapTriggerManual,
	"Distance": models.LapTriggerDistance,
	"Location": models.LapTriggerPositionLap,
	"Time":     models.LapTriggerTime,
}

func triggerMethod(t models.LapTrigger) string {
	switch t {
	case "":
		return ""
	case models.LapTriggerDistance:
		return "Distance"
	case models.LapTriggerTime:
		return "Time"
	case models.LapTriggerPositionStart, models.LapTriggerPositionLap,
		models.LapTriggerPositionWaypoint, models.LapTriggerPositionMarked:
		return "Location"
	}
	return "Manual"
}

// lapExtension is the "tcx" extension record of a lap.
type lapExtension struct {
	TriggerMethod string `json:"triggerMethod,omitempty"`
	Intensity     string `json:"intensity,omitempty"`
	Extensions    string `json:"extensions,omitempty"`
}

// LapToCanonical converts one Lap element without its track.
func (c *Converter) LapToCanonical(l models.TCXLap) (models.Lap, error) {
	start, err := isoOf("startTime", l.StartTime)
	if err != nil {
		return models.Lap{}, err
	}
	out := models.Lap{
		StartTime:      start,
		TotalTimerTime: l.TotalTimeSeconds,
		TotalDistance:  l.DistanceMeters,
		MaxSpeed:       l.MaximumSpeed,
		TotalCalories:  l.Calories,
		AvgCadence:     l.Cadence,
	}
	if l.AverageHeartRateBpm != nil {
		out.AvgHeartRate = models.Ptr(l.AverageHeartRateBpm.Value)
	}
	if l.MaximumHeartRateBpm != nil {
		out.MaxHeartRate = models.Ptr(l.MaximumHeartRateBpm.Value)
	}

	var ext lapExtension
	if l.TriggerMethod != "" {
		if t, ok := lapTriggers[l.TriggerMethod]; ok {
			out.Trigger = t
		} else {
			ext.TriggerMethod = l.TriggerMethod
		}
	}
	switch l.Intensity {
	case "":
	case intensityActive:
		out.Intensity = models.IntensityActive
	case intensityResting:
		out.Intensity = models.IntensityRest
	default:
		ext.Intensity = l.Intensity
		c.log.Warn("unknown lap intensity", "format", ingest.FormatTCX, "intensity", l.Intensity)
	}
	if l.Extensions != nil {
		ext.Extensions = l.Extensions.Inner
		if ax, ok := parseActivityExt(l.Extensions); ok && ax.LX != nil {
			out.AvgSpeed = ax.LX.AvgSpeed
			out.AvgPower = ax.LX.AvgWatts
			out.MaxPower = ax.LX.MaxWatts
		}
	}
	if ext != (lapExtension{}) {
		if err := out.Extensions.Set(models.ExtTCX, ext); err != nil {
			return models.Lap{}, err
		}
	}
	return out, nil
}

// LapFromCanonical converts a canonical lap without its track.
func (c *Converter) LapFromCanonical(l models.Lap) (models.TCXLap, error) {
	start, err := tcxTime("startTime", l.StartTime)
	if err != nil {
		return models.TCXLap{}, err
	}
	out := models.TCXLap{
		StartTime:        start,
		TotalTimeSeconds: l.TotalTimerTime,
		DistanceMeters:   l.TotalDistance,
		MaximumSpeed:     l.MaxSpeed,
		Calories:         l.TotalCalories,
		Cadence:          l.AvgCadence,
		TriggerMethod:    triggerMethod(l.Trigger),
	}
	if l.AvgHeartRate != nil {
		out.AverageHeartRateBpm = &models.TCXBpm{Value: math.Round(*l.AvgHeartRate)}
	}
	if l.MaxHeartRate != nil {
		out.MaximumHeartRateBpm = &models.TCXBpm{Value: math.Round(*l.MaxHeartRate)}
	}
	switch l.Intensity {
	case "":
	case models.IntensityRest, models.IntensityRecovery:
		out.Intensity = intensityResting
	default:
		out.Intensity = intensityActive
	}

	var ext lapExtension
	l.Extensions.Decode(models.ExtTCX, &ext)
	if ext.TriggerMethod != "" {
		out.TriggerMethod = ext.TriggerMethod
	}
	if ext.Intensity != "" {
		out.Intensity = ext.Intensity
	}
	switch {
	case ext.Extensions != "":
		out.Extensions = &models.TCXExtensions{Inner: ext.Extensions}
	case l.AvgSpeed != nil || l.AvgPower != nil || l.MaxPower != nil:
		lx := models.TCXLX{Xmlns: models.TCXActivityExtension, AvgSpeed: l.AvgSpeed, AvgWatts: l.AvgPower, MaxWatts: l.MaxPower}
		if out.Extensions, err = marshalExt(lxElement{TCXLX: lx}); err != nil {
			return models.TCXLap{}, err
		}
	}
	return out, nil
}

// activityExtension is the "tcx" extension record of a session.
type activityExtension struct {
	Sport string `json:"sport,omitempty"`
	ID    string `json:"id,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// ActivityToCanonical converts one Activity to a session plus its laps and
// the records of every lap track, in document order.
func (c *Converter) ActivityToCanonical(a models.TCXActivity) (models.Session, []models.Lap, []models.Record, error) {
	start, err := isoOf("id", a.ID)
	if err != nil {
		return models.Session{}, nil, nil, err
	}
	sport, known := c.sportOf(a.Sport)
	session := models.Session{StartTime: start, Sport: sport}

	ext := activityExtension{Notes: a.Notes}
	if !known {
		ext.Sport = a.Sport
	}
	// Export writes whole seconds; keep any other spelling of the id.
	if id, _ := tcxTime("id", a.ID); id != a.ID {
		ext.ID = a.ID
	}
	if ext != (activityExtension{}) {
		if err := session.Extensions.Set(models.ExtTCX, ext); err != nil {
			return models.Session{}, nil, nil, err
		}
	}

	laps, err := ingest.ConvertBatch(a.Laps, c.LapToCanonical)
	if err != nil {
		return models.Session{}, nil, nil, fmt.Errorf("laps: %w", err)
	}
	var points []models.TCXTrackpoint
	for _, l := range a.Laps {
		if l.Track != nil {
			points = append(points, l.Track.Trackpoints...)
		}
	}
	records, err := RecordsToCanonical(points)
	if err != nil {
		return models.Session{}, nil, nil, fmt.Errorf("trackpoints: %w", err)
	}

	session.TotalTimerTime = sum(laps, func(l models.Lap) *float64 { return l.TotalTimerTime })
	session.TotalDistance = sum(laps, func(l models.Lap) *float64 { return l.TotalDistance })
	session.TotalCalories = sum(laps, func(l models.Lap) *float64 { return l.TotalCalories })
	return session, laps, records, nil
}

// sum adds the present values; nil when none are present.
func sum(laps []models.Lap, field func(models.Lap) *float64) *float64 {
	var total *float64
	for _, l := range laps {
		if v := field(l); v != nil {
			if total == nil {
				total = new(float64)
			}
			*total += *v
		}
	}
	return total
}

// ActivitiesFromCanonical groups the document's laps under its sessions and
// its records under those laps, each by start time.
func (c *Converter) ActivitiesFromCanonical(doc *models.Document) ([]models.TCXActivity, error) {
	if len(doc.Sessions) == 0 && len(doc.Laps) == 0 && len(doc.Records) == 0 {
		return nil, nil
	}

	laps, err := ingest.ConvertBatch(doc.Laps, c.LapFromCanonical)
	if err != nil {
		return nil, fmt.Errorf("laps: %w", err)
	}
	points, err := RecordsFromCanonical(doc.Records)
	if err != nil {
		return nil, fmt.Errorf("records: %w", err)
	}
	if len(laps) == 0 && len(points) > 0 {
		laps = []models.TCXLap{{StartTime: points[0].Time}}
	}

	lapStarts := make([]time.Time, len(laps))
	for i, l := range laps {
		lapStarts[i], _ = units.ParseISO(l.StartTime)
	}
	for _, p := range points {
		t, _ := units.ParseISO(p.Time)
		l := &laps[bucket(lapStarts, t)]
		if l.Track == nil {
			l.Track = &models.TCXTrack{}
		}
		l.Track.Trackpoints = append(l.Track.Trackpoints, p)
	}

	sessions := doc.Sessions
	if len(sessions) == 0 {
		sport, _ := models.ParseSport(doc.Metadata.Sport)
		sessions = []models.Session{{StartTime: doc.Metadata.Created, Sport: sport}}
		if len(laps) > 0 {
			sessions[0].StartTime = laps[0].StartTime
		}
	}

	activities := make([]models.TCXActivity, len(sessions))
	starts := make([]time.Time, len(sessions))
	for i, s := range sessions {
		id, err := tcxTime("startTime", s.StartTime)
		if err != nil {
			return nil, fmt.Errorf("sessions: element %d: %w", i, err)
		}
		starts[i], _ = units.ParseISO(id)
		a := models.TCXActivity{Sport: sportName(s.Sport), ID: id}
		var ext activityExtension
		if s.Extensions.Decode(models.ExtTCX, &ext) {
			if ext.Sport != "" {
				a.Sport = ext.Sport
			}
			if ext.ID != "" {
				a.ID = ext.ID
			}
			a.Notes = ext.Notes
		}
		activities[i] = a
	}
	for i, l := range laps {
		a := &activities[bucket(starts, lapStarts[i])]
		a.Laps = append(a.Laps, l)
	}
	return activities, nil
}

// bucket returns the index of the last start at or before t, or 0 when t
// precedes every start.
func bucket(starts []time.Time, t time.Time) int {
	idx := 0
	for i, s := range starts {
		if !s.After(t) {
			idx = i
		}
	}
	return idx
}

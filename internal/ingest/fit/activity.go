package fit

import (
	"math"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/units"
)

func floatOf(v *int) *float64 {
	if v == nil {
		return nil
	}
	return models.Ptr(float64(*v))
}

func intOf(v *float64) *int {
	if v == nil {
		return nil
	}
	return models.Ptr(int(math.Round(*v)))
}

func isoOf(field string, sec *int64) (string, error) {
	if sec == nil {
		return "", models.Missing(field)
	}
	return units.UnixToISO(*sec), nil
}

func unixOf(field, iso string) (*int64, error) {
	if iso == "" {
		return nil, models.Missing(field)
	}
	sec, err := units.ISOToUnix(iso)
	if err != nil {
		return nil, models.ValidationErrors{{Field: field, Message: "must be an ISO-8601 timestamp"}}
	}
	return &sec, nil
}

// Native field variants for altitude and speed. The zero value means the
// enhanced field alone.
const (
	variantPlain = "plain"
	variantBoth  = "both"
)

// pickVariant takes the enhanced value, falling back to the plain one, and
// names which native fields carried it.
func pickVariant(enhanced, plain *float64) (*float64, string) {
	switch {
	case enhanced != nil && plain != nil:
		return enhanced, variantBoth
	case enhanced != nil:
		return enhanced, ""
	case plain != nil:
		return plain, variantPlain
	}
	return nil, ""
}

// splitVariant writes a canonical value back to the native fields it came from.
func splitVariant(v *float64, variant string) (enhanced, plain *float64) {
	if v == nil {
		return nil, nil
	}
	switch variant {
	case variantPlain:
		return nil, models.Ptr(*v)
	case variantBoth:
		return models.Ptr(*v), models.Ptr(*v)
	}
	return models.Ptr(*v), nil
}

// variantExtension records altitude and speed fields written as the plain
// variant or as both.
type variantExtension struct {
	Altitude string `json:"altitude,omitempty"`
	Speed    string `json:"speed,omitempty"`
	AvgSpeed string `json:"avgSpeed,omitempty"`
	MaxSpeed string `json:"maxSpeed,omitempty"`
}

// RecordToCanonical converts one record message. A record without a
// timestamp is a structural error.
func RecordToCanonical(r models.FITRecord) (models.Record, error) {
	ts, err := isoOf("timestamp", r.Timestamp)
	if err != nil {
		return models.Record{}, err
	}
	var ext variantExtension
	out := models.Record{
		Timestamp:           ts,
		Distance:            r.Distance,
		HeartRate:           floatOf(r.HeartRate),
		Power:               floatOf(r.Power),
		Cadence:             floatOf(r.Cadence),
		Temperature:         floatOf(r.Temperature),
		VerticalOscillation: r.VerticalOscillation,
		StanceTime:          r.StanceTime,
		StepLength:          r.StepLength,
	}
	if r.PositionLat != nil && r.PositionLong != nil {
		out.Position = &models.Position{
			Lat: units.SemicirclesToDegrees(*r.PositionLat),
			Lon: units.SemicirclesToDegrees(*r.PositionLong),
		}
	}
	out.Altitude, ext.Altitude = pickVariant(r.EnhancedAltitude, r.Altitude)
	out.Speed, ext.Speed = pickVariant(r.EnhancedSpeed, r.Speed)
	if ext != (variantExtension{}) {
		if err := out.Extensions.Set(models.ExtFIT, ext); err != nil {
			return models.Record{}, err
		}
	}
	return out, nil
}

// RecordFromCanonical converts a canonical record. Sub-second precision is truncated.
func RecordFromCanonical(r models.Record) (models.FITRecord, error) {
	ts, err := unixOf("timestamp", r.Timestamp)
	if err != nil {
		return models.FITRecord{}, err
	}
	out := models.FITRecord{
		Timestamp:           ts,
		Distance:            r.Distance,
		HeartRate:           intOf(r.HeartRate),
		Power:               intOf(r.Power),
		Cadence:             intOf(r.Cadence),
		Temperature:         intOf(r.Temperature),
		VerticalOscillation: r.VerticalOscillation,
		StanceTime:          r.StanceTime,
		StepLength:          r.StepLength,
	}
	if r.Position != nil {
		out.PositionLat = models.Ptr(units.DegreesToSemicircles(r.Position.Lat))
		out.PositionLong = models.Ptr(units.DegreesToSemicircles(r.Position.Lon))
	}
	var ext variantExtension
	r.Extensions.Decode(models.ExtFIT, &ext)
	out.EnhancedAltitude, out.Altitude = splitVariant(r.Altitude, ext.Altitude)
	out.EnhancedSpeed, out.Speed = splitVariant(r.Speed, ext.Speed)
	return out, nil
}

// RecordsToCanonical converts records element-wise; the first invalid record
// fails the batch.
func RecordsToCanonical(in []models.FITRecord) ([]models.Record, error) {
	return ingest.ConvertBatch(in, RecordToCanonical)
}

func RecordsFromCanonical(in []models.Record) ([]models.FITRecord, error) {
	return ingest.ConvertBatch(in, RecordFromCanonical)
}

var lapTriggers = map[string]models.LapTrigger{
	"manual":           models.LapTriggerManual,
	"time":             models.LapTriggerTime,
	"distance":         models.LapTriggerDistance,
	"positionStart":    models.LapTriggerPositionStart,
	"positionLap":      models.LapTriggerPositionLap,
	"positionWaypoint": models.LapTriggerPositionWaypoint,
	"positionMarked":   models.LapTriggerPositionMarked,
	"sessionEnd":       models.LapTriggerSessionEnd,
	"fitnessEquipment": models.LapTriggerFitnessEquipment,
}

func lapTriggerName(t models.LapTrigger) string {
	for name, v := range lapTriggers {
		if v == t {
			return name
		}
	}
	return ""
}

// lapExtension keeps lap enums with no canonical value and the speed variants.
type lapExtension struct {
	LapTrigger string `json:"lapTrigger,omitempty"`
	Sport      string `json:"sport,omitempty"`
	Intensity  string `json:"intensity,omitempty"`
	variantExtension
}

// LapToCanonical converts one lap message.
func (c *Converter) LapToCanonical(l models.FITLap) (models.Lap, error) {
	start, err := isoOf("startTime", l.StartTime)
	if err != nil {
		return models.Lap{}, err
	}
	out := models.Lap{
		StartTime:        start,
		TotalElapsedTime: l.TotalElapsedTime,
		TotalTimerTime:   l.TotalTimerTime,
		TotalDistance:    l.TotalDistance,
		AvgHeartRate:     floatOf(l.AvgHeartRate),
		MaxHeartRate:     floatOf(l.MaxHeartRate),
		AvgCadence:       floatOf(l.AvgCadence),
		MaxCadence:       floatOf(l.MaxCadence),
		AvgPower:         floatOf(l.AvgPower),
		MaxPower:         floatOf(l.MaxPower),
		TotalCalories:    floatOf(l.TotalCalories),
	}

	var ext lapExtension
	out.AvgSpeed, ext.AvgSpeed = pickVariant(l.EnhancedAvgSpeed, l.AvgSpeed)
	out.MaxSpeed, ext.MaxSpeed = pickVariant(l.EnhancedMaxSpeed, l.MaxSpeed)
	if l.LapTrigger != "" {
		if t, ok := lapTriggers[l.LapTrigger]; ok {
			out.Trigger = t
		} else {
			ext.LapTrigger = l.LapTrigger
			c.log.Warn("unknown lap trigger", "format", ingest.FormatFIT, "lapTrigger", l.LapTrigger)
		}
	}
	if l.Sport != "" {
		if s, ok := models.ParseSport(l.Sport); ok {
			out.Sport = s
		} else {
			ext.Sport = l.Sport
		}
	}
	if l.Intensity != "" {
		if i, ok := models.ParseIntensity(l.Intensity); ok {
			out.Intensity = i
		} else {
			ext.Intensity = l.Intensity
		}
	}
	if ext != (lapExtension{}) {
		if err := out.Extensions.Set(models.ExtFIT, ext); err != nil {
			return models.Lap{}, err
		}
	}
	return out, nil
}

// LapFromCanonical converts a canonical lap.
func (c *Converter) LapFromCanonical(l models.Lap) (models.FITLap, error) {
	start, err := unixOf("startTime", l.StartTime)
	if err != nil {
		return models.FITLap{}, err
	}
	out := models.FITLap{
		StartTime:        start,
		TotalElapsedTime: l.TotalElapsedTime,
		TotalTimerTime:   l.TotalTimerTime,
		TotalDistance:    l.TotalDistance,
		AvgHeartRate:     intOf(l.AvgHeartRate),
		MaxHeartRate:     intOf(l.MaxHeartRate),
		AvgCadence:       intOf(l.AvgCadence),
		MaxCadence:       intOf(l.MaxCadence),
		AvgPower:         intOf(l.AvgPower),
		MaxPower:         intOf(l.MaxPower),
		TotalCalories:    intOf(l.TotalCalories),
		LapTrigger:       lapTriggerName(l.Trigger),
		Sport:            string(l.Sport),
		Intensity:        string(l.Intensity),
	}
	var ext lapExtension
	if l.Extensions.Decode(models.ExtFIT, &ext) {
		if ext.LapTrigger != "" {
			out.LapTrigger = ext.LapTrigger
		}
		if ext.Sport != "" {
			out.Sport = ext.Sport
		}
		if ext.Intensity != "" {
			out.Intensity = ext.Intensity
		}
	}
	out.EnhancedAvgSpeed, out.AvgSpeed = splitVariant(l.AvgSpeed, ext.AvgSpeed)
	out.EnhancedMaxSpeed, out.MaxSpeed = splitVariant(l.MaxSpeed, ext.MaxSpeed)
	return out, nil
}

// eventPair is a FIT (event, event_type) combination.
type eventPair struct {
	Event     string `json:"event"`
	EventType string `json:"eventType,omitempty"`
}

// eventKind maps FIT events to canonical categories. For timer events the
// event type decides.
func eventKind(p eventPair) (models.EventType, bool) {
	switch p.Event {
	case "timer":
		switch p.EventType {
		case "start":
			return models.EventStart, true
		case "stopAll":
			return models.EventStop, true
		case "stop", "stopDisable":
			return models.EventPause, true
		}
		return models.EventTimer, true
	case "lap":
		return models.EventLap, true
	case "marker":
		return models.EventMarker, true
	case "session":
		return models.EventSession, true
	case "workoutStep":
		return models.EventWorkoutStep, true
	}
	return models.EventMarker, false
}

// eventPairOf is the default native pair for a canonical category.
func eventPairOf(t models.EventType) eventPair {
	switch t {
	case models.EventStart, models.EventResume:
		return eventPair{Event: "timer", EventType: "start"}
	case models.EventStop:
		return eventPair{Event: "timer", EventType: "stopAll"}
	case models.EventPause:
		return eventPair{Event: "timer", EventType: "stop"}
	case models.EventTimer:
		return eventPair{Event: "timer"}
	case models.EventLap:
		return eventPair{Event: "lap", EventType: "stop"}
	case models.EventSession:
		return eventPair{Event: "session", EventType: "stop"}
	case models.EventWorkoutStep:
		return eventPair{Event: "workoutStep", EventType: "start"}
	}
	return eventPair{Event: "marker", EventType: "marker"}
}

// EventToCanonical converts one event message. The native pair is kept in
// the extension bag when the canonical category would not reproduce it.
func (c *Converter) EventToCanonical(e models.FITEvent) (models.Event, error) {
	ts, err := isoOf("timestamp", e.Timestamp)
	if err != nil {
		return models.Event{}, err
	}
	pair := eventPair{Event: e.Event, EventType: e.EventType}
	kind, ok := eventKind(pair)
	if !ok {
		c.log.Warn("unknown event", "format", ingest.FormatFIT, "event", e.Event, "eventType", e.EventType)
	}
	out := models.Event{
		Timestamp:  ts,
		EventType:  kind,
		EventGroup: e.EventGroup,
		Data:       e.Data,
	}
	if eventPairOf(kind) != pair {
		if err := out.Extensions.Set(models.ExtFIT, pair); err != nil {
			return models.Event{}, err
		}
	}
	return out, nil
}

// EventFromCanonical converts a canonical event.
func (c *Converter) EventFromCanonical(e models.Event) (models.FITEvent, error) {
	ts, err := unixOf("timestamp", e.Timestamp)
	if err != nil {
		return models.FITEvent{}, err
	}
	pair := eventPairOf(e.EventType)
	var kept eventPair
	if e.Extensions.Decode(models.ExtFIT, &kept) && kept.Event != "" {
		pair = kept
	}
	return models.FITEvent{
		Timestamp:  ts,
		Event:      pair.Event,
		EventType:  pair.EventType,
		EventGroup: e.EventGroup,
		Data:       e.Data,
	}, nil
}

// sessionExtension keeps a session sport with no canonical value and the
// speed variants.
type sessionExtension struct {
	Sport string `json:"sport,omitempty"`
	variantExtension
}

// SessionToCanonical converts one session message. Unknown sports fall back
// to the configured default.
func (c *Converter) SessionToCanonical(s models.FITSession) (models.Session, error) {
	start, err := isoOf("startTime", s.StartTime)
	if err != nil {
		return models.Session{}, err
	}
	out := models.Session{
		StartTime:        start,
		TotalElapsedTime: s.TotalElapsedTime,
		TotalTimerTime:   s.TotalTimerTime,
		TotalDistance:    s.TotalDistance,
		SubSport:         s.SubSport,
		AvgHeartRate:     floatOf(s.AvgHeartRate),
		MaxHeartRate:     floatOf(s.MaxHeartRate),
		AvgPower:         floatOf(s.AvgPower),
		MaxPower:         floatOf(s.MaxPower),
		AvgCadence:       floatOf(s.AvgCadence),
		TotalCalories:    floatOf(s.TotalCalories),
		TotalAscent:      floatOf(s.TotalAscent),
		TotalDescent:     floatOf(s.TotalDescent),
	}
	var ext sessionExtension
	out.AvgSpeed, ext.AvgSpeed = pickVariant(s.EnhancedAvgSpeed, s.AvgSpeed)
	out.MaxSpeed, ext.MaxSpeed = pickVariant(s.EnhancedMaxSpeed, s.MaxSpeed)
	if sport, ok := models.ParseSport(s.Sport); ok {
		out.Sport = sport
	} else {
		out.Sport = c.opts.Sport()
		ext.Sport = s.Sport
	}
	if ext != (sessionExtension{}) {
		if err := out.Extensions.Set(models.ExtFIT, ext); err != nil {
			return models.Session{}, err
		}
	}
	return out, nil
}

// SessionFromCanonical converts a canonical session.
func (c *Converter) SessionFromCanonical(s models.Session) (models.FITSession, error) {
	start, err := unixOf("startTime", s.StartTime)
	if err != nil {
		return models.FITSession{}, err
	}
	out := models.FITSession{
		StartTime:        start,
		TotalElapsedTime: s.TotalElapsedTime,
		TotalTimerTime:   s.TotalTimerTime,
		TotalDistance:    s.TotalDistance,
		Sport:            string(s.Sport),
		SubSport:         s.SubSport,
		AvgHeartRate:     intOf(s.AvgHeartRate),
		MaxHeartRate:     intOf(s.MaxHeartRate),
		AvgPower:         intOf(s.AvgPower),
		MaxPower:         intOf(s.MaxPower),
		AvgCadence:       intOf(s.AvgCadence),
		TotalCalories:    intOf(s.TotalCalories),
		TotalAscent:      intOf(s.TotalAscent),
		TotalDescent:     intOf(s.TotalDescent),
	}
	var ext sessionExtension
	if s.Extensions.Decode(models.ExtFIT, &ext) && ext.Sport != "" {
		out.Sport = ext.Sport
	}
	out.EnhancedAvgSpeed, out.AvgSpeed = splitVariant(s.AvgSpeed, ext.AvgSpeed)
	out.EnhancedMaxSpeed, out.MaxSpeed = splitVariant(s.MaxSpeed, ext.MaxSpeed)
	return out, nil
}

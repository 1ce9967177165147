package models

// Position is a WGS84 coordinate in signed degrees.
type Position struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// Record is one sample of a recorded activity.
type Record struct {
	Timestamp           string     `json:"timestamp" validate:"required,iso8601"`
	Position            *Position  `json:"position,omitempty"`
	Altitude            *float64   `json:"altitude,omitempty"`
	Speed               *float64   `json:"speed,omitempty" validate:"omitempty,gte=0"`
	Distance            *float64   `json:"distance,omitempty" validate:"omitempty,gte=0"`
	HeartRate           *float64   `json:"heartRate,omitempty" validate:"omitempty,gte=0,lte=255"`
	Power               *float64   `json:"power,omitempty" validate:"omitempty,gte=0"`
	Cadence             *float64   `json:"cadence,omitempty" validate:"omitempty,gte=0"`
	Temperature         *float64   `json:"temperature,omitempty"`
	VerticalOscillation *float64   `json:"verticalOscillation,omitempty" validate:"omitempty,gte=0"`
	StanceTime          *float64   `json:"stanceTime,omitempty" validate:"omitempty,gte=0"`
	StepLength          *float64   `json:"stepLength,omitempty" validate:"omitempty,gte=0"`
	Extensions          Extensions `json:"extensions,omitempty"`
}

// LapTrigger records what closed a lap.
type LapTrigger string

const (
	LapTriggerManual           LapTrigger = "manual"
	LapTriggerTime             LapTrigger = "time"
	LapTriggerDistance         LapTrigger = "distance"
	LapTriggerPositionStart    LapTrigger = "position_start"
	LapTriggerPositionLap      LapTrigger = "position_lap"
	LapTriggerPositionWaypoint LapTrigger = "position_waypoint"
	LapTriggerPositionMarked   LapTrigger = "position_marked"
	LapTriggerSessionEnd       LapTrigger = "session_end"
	LapTriggerFitnessEquipment LapTrigger = "fitness_equipment"
)

// Lap summarizes one lap of a recorded activity.
type Lap struct {
	StartTime        string     `json:"startTime" validate:"required,iso8601"`
	TotalElapsedTime *float64   `json:"totalElapsedTime,omitempty" validate:"omitempty,gte=0"`
	TotalTimerTime   *float64   `json:"totalTimerTime,omitempty" validate:"omitempty,gte=0"`
	TotalDistance    *float64   `json:"totalDistance,omitempty" validate:"omitempty,gte=0"`
	AvgHeartRate     *float64   `json:"avgHeartRate,omitempty" validate:"omitempty,gte=0,lte=255"`
	MaxHeartRate     *float64   `json:"maxHeartRate,omitempty" validate:"omitempty,gte=0,lte=255"`
	AvgCadence       *float64   `json:"avgCadence,omitempty" validate:"omitempty,gte=0"`
	MaxCadence       *float64   `json:"maxCadence,omitempty" validate:"omitempty,gte=0"`
	AvgPower         *float64   `json:"avgPower,omitempty" validate:"omitempty,gte=0"`
	MaxPower         *float64   `json:"maxPower,omitempty" validate:"omitempty,gte=0"`
	TotalCalories    *float64   `json:"totalCalories,omitempty" validate:"omitempty,gte=0"`
	AvgSpeed         *float64   `json:"avgSpeed,omitempty" validate:"omitempty,gte=0"`
	MaxSpeed         *float64   `json:"maxSpeed,omitempty" validate:"omitempty,gte=0"`
	Trigger          LapTrigger `json:"trigger,omitempty" validate:"omitempty,oneof=manual time distance position_start position_lap position_waypoint position_marked session_end fitness_equipment"`
	Sport            Sport      `json:"sport,omitempty" validate:"omitempty,oneof=cycling running swimming generic"`
	Intensity        Intensity  `json:"intensity,omitempty" validate:"omitempty,oneof=warmup active cooldown rest recovery interval other"`
	Extensions       Extensions `json:"extensions,omitempty"`
}

// EventType is the closed set of canonical event categories.
type EventType string

const (
	EventStart       EventType = "start"
	EventStop        EventType = "stop"
	EventPause       EventType = "pause"
	EventResume      EventType = "resume"
	EventLap         EventType = "lap"
	EventMarker      EventType = "marker"
	EventTimer       EventType = "timer"
	EventSession     EventType = "session"
	EventWorkoutStep EventType = "workout_step"
)

// Event is a timestamped categorical occurrence during an activity.
type Event struct {
	Timestamp  string     `json:"timestamp" validate:"required,iso8601"`
	EventType  EventType  `json:"eventType" validate:"required,oneof=start stop pause resume lap marker timer session workout_step"`
	EventGroup *int       `json:"eventGroup,omitempty"`
	Data       *int64     `json:"data,omitempty"`
	Extensions Extensions `json:"extensions,omitempty"`
}

// Session summarizes a whole activity.
type Session struct {
	StartTime        string     `json:"startTime" validate:"required,iso8601"`
	TotalElapsedTime *float64   `json:"totalElapsedTime,omitempty" validate:"omitempty,gte=0"`
	TotalTimerTime   *float64   `json:"totalTimerTime,omitempty" validate:"omitempty,gte=0"`
	TotalDistance    *float64   `json:"totalDistance,omitempty" validate:"omitempty,gte=0"`
	Sport            Sport      `json:"sport" validate:"required,oneof=cycling running swimming generic"`
	SubSport         string     `json:"subSport,omitempty"`
	AvgHeartRate     *float64   `json:"avgHeartRate,omitempty" validate:"omitempty,gte=0,lte=255"`
	MaxHeartRate     *float64   `json:"maxHeartRate,omitempty" validate:"omitempty,gte=0,lte=255"`
	AvgPower         *float64   `json:"avgPower,omitempty" validate:"omitempty,gte=0"`
	MaxPower         *float64   `json:"maxPower,omitempty" validate:"omitempty,gte=0"`
	AvgCadence       *float64   `json:"avgCadence,omitempty" validate:"omitempty,gte=0"`
	TotalCalories    *float64   `json:"totalCalories,omitempty" validate:"omitempty,gte=0"`
	TotalAscent      *float64   `json:"totalAscent,omitempty" validate:"omitempty,gte=0"`
	TotalDescent     *float64   `json:"totalDescent,omitempty" validate:"omitempty,gte=0"`
	AvgSpeed         *float64   `json:"avgSpeed,omitempty" validate:"omitempty,gte=0"`
	MaxSpeed         *float64   `json:"maxSpeed,omitempty" validate:"omitempty,gte=0"`
	Extensions       Extensions `json:"extensions,omitempty"`
}

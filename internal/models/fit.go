package models

// FITFile is a decoded FIT message stream. Field and enum names follow the
// FIT SDK's decoded (camelCase) form; timestamps are Unix seconds.
type FITFile struct {
	FileID       FITFileID        `json:"fileId"`
	Workout      *FITWorkout      `json:"workout,omitempty"`
	WorkoutSteps []FITWorkoutStep `json:"workoutSteps,omitempty"`
	Sessions     []FITSession     `json:"sessions,omitempty"`
	Laps         []FITLap         `json:"laps,omitempty"`
	Records      []FITRecord      `json:"records,omitempty"`
	Events       []FITEvent       `json:"events,omitempty"`
}

// FITFileID is the file_id message.
type FITFileID struct {
	Type         string `json:"type"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
	TimeCreated  *int64 `json:"timeCreated,omitempty"`
}

// FITWorkout is the workout message.
type FITWorkout struct {
	WktName       string `json:"wktName,omitempty"`
	Sport         string `json:"sport,omitempty"`
	SubSport      string `json:"subSport,omitempty"`
	NumValidSteps int    `json:"numValidSteps"`
}

// FITWorkoutStep is the workout_step message with its dynamic subfields expanded.
type FITWorkoutStep struct {
	MessageIndex int    `json:"messageIndex"`
	WktStepName  string `json:"wktStepName,omitempty"`

	DurationType     string   `json:"durationType"`
	DurationTime     *float64 `json:"durationTime,omitempty"`
	DurationDistance *float64 `json:"durationDistance,omitempty"`
	DurationHr       *float64 `json:"durationHr,omitempty"`
	DurationCalories *float64 `json:"durationCalories,omitempty"`
	DurationPower    *float64 `json:"durationPower,omitempty"`
	DurationStep     *int     `json:"durationStep,omitempty"`

	TargetType            string   `json:"targetType,omitempty"`
	TargetValue           *float64 `json:"targetValue,omitempty"`
	CustomTargetValueLow  *float64 `json:"customTargetValueLow,omitempty"`
	CustomTargetValueHigh *float64 `json:"customTargetValueHigh,omitempty"`

	TargetHrZone    *int `json:"targetHrZone,omitempty"`
	TargetPowerZone *int `json:"targetPowerZone,omitempty"`
	TargetSpeedZone *int `json:"targetSpeedZone,omitempty"`

	CustomTargetHeartRateLow  *float64 `json:"customTargetHeartRateLow,omitempty"`
	CustomTargetHeartRateHigh *float64 `json:"customTargetHeartRateHigh,omitempty"`
	CustomTargetPowerLow      *float64 `json:"customTargetPowerLow,omitempty"`
	CustomTargetPowerHigh     *float64 `json:"customTargetPowerHigh,omitempty"`
	CustomTargetSpeedLow      *float64 `json:"customTargetSpeedLow,omitempty"`
	CustomTargetSpeedHigh     *float64 `json:"customTargetSpeedHigh,omitempty"`
	CustomTargetCadenceLow    *float64 `json:"customTargetCadenceLow,omitempty"`
	CustomTargetCadenceHigh   *float64 `json:"customTargetCadenceHigh,omitempty"`

	RepeatSteps *int   `json:"repeatSteps,omitempty"`
	Intensity   string `json:"intensity,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Equipment   string `json:"equipment,omitempty"`
}

// FITSession is the session message.
type FITSession struct {
	StartTime        *int64   `json:"startTime,omitempty"`
	TotalElapsedTime *float64 `json:"totalElapsedTime,omitempty"`
	TotalTimerTime   *float64 `json:"totalTimerTime,omitempty"`
	TotalDistance    *float64 `json:"totalDistance,omitempty"`
	Sport            string   `json:"sport,omitempty"`
	SubSport         string   `json:"subSport,omitempty"`
	AvgHeartRate     *int     `json:"avgHeartRate,omitempty"`
	MaxHeartRate     *int     `json:"maxHeartRate,omitempty"`
	AvgPower         *int     `json:"avgPower,omitempty"`
	MaxPower         *int     `json:"maxPower,omitempty"`
	AvgCadence       *int     `json:"avgCadence,omitempty"`
	TotalCalories    *int     `json:"totalCalories,omitempty"`
	TotalAscent      *int     `json:"totalAscent,omitempty"`
	TotalDescent     *int     `json:"totalDescent,omitempty"`
	AvgSpeed         *float64 `json:"avgSpeed,omitempty"`
	MaxSpeed         *float64 `json:"maxSpeed,omitempty"`
	EnhancedAvgSpeed *float64 `json:"enhancedAvgSpeed,omitempty"`
	EnhancedMaxSpeed *float64 `json:"enhancedMaxSpeed,omitempty"`
}

// FITLap is the lap message.
type FITLap struct {
	StartTime        *int64   `json:"startTime,omitempty"`
	TotalElapsedTime *float64 `json:"totalElapsedTime,omitempty"`
	TotalTimerTime   *float64 `json:"totalTimerTime,omitempty"`
	TotalDistance    *float64 `json:"totalDistance,omitempty"`
	AvgHeartRate     *int     `json:"avgHeartRate,omitempty"`
	MaxHeartRate     *int     `json:"maxHeartRate,omitempty"`
	AvgCadence       *int     `json:"avgCadence,omitempty"`
	MaxCadence       *int     `json:"maxCadence,omitempty"`
	AvgPower         *int     `json:"avgPower,omitempty"`
	MaxPower         *int     `json:"maxPower,omitempty"`
	TotalCalories    *int     `json:"totalCalories,omitempty"`
	AvgSpeed         *float64 `json:"avgSpeed,omitempty"`
	MaxSpeed         *float64 `json:"maxSpeed,omitempty"`
	EnhancedAvgSpeed *float64 `json:"enhancedAvgSpeed,omitempty"`
	EnhancedMaxSpeed *float64 `json:"enhancedMaxSpeed,omitempty"`
	LapTrigger       string   `json:"lapTrigger,omitempty"`
	Sport            string   `json:"sport,omitempty"`
	Intensity        string   `json:"intensity,omitempty"`
}

// FITRecord is the record message. Positions are semicircles. Devices write
// altitude and speed as the plain fields, the enhanced ones, or both.
type FITRecord struct {
	Timestamp           *int64   `json:"timestamp,omitempty"`
	PositionLat         *int32   `json:"positionLat,omitempty"`
	PositionLong        *int32   `json:"positionLong,omitempty"`
	Altitude            *float64 `json:"altitude,omitempty"`
	Speed               *float64 `json:"speed,omitempty"`
	EnhancedAltitude    *float64 `json:"enhancedAltitude,omitempty"`
	EnhancedSpeed       *float64 `json:"enhancedSpeed,omitempty"`
	Distance            *float64 `json:"distance,omitempty"`
	HeartRate           *int     `json:"heartRate,omitempty"`
	Power               *int     `json:"power,omitempty"`
	Cadence             *int     `json:"cadence,omitempty"`
	Temperature         *int     `json:"temperature,omitempty"`
	VerticalOscillation *float64 `json:"verticalOscillation,omitempty"`
	StanceTime          *float64 `json:"stanceTime,omitempty"`
	StepLength          *float64 `json:"stepLength,omitempty"`
}

// FITEvent is the event message.
type FITEvent struct {
	Timestamp  *int64 `json:"timestamp,omitempty"`
	Event      string `json:"event"`
	EventType  string `json:"eventType,omitempty"`
	EventGroup *int   `json:"eventGroup,omitempty"`
	Data       *int64 `json:"data,omitempty"`
}

package models

import "encoding/xml"

// TCX namespaces.
const (
	TCXNamespace         = "http://www.garmin.com/xmlschemas/TrainingCenterDatabase/v2"
	TCXActivityExtension = "http://www.garmin.com/xmlschemas/ActivityExtension/v2"
)

// TCXDatabase is the TrainingCenterDatabase root element.
type TCXDatabase struct {
	XMLName    xml.Name       `xml:"TrainingCenterDatabase" json:"-"`
	Xmlns      string         `xml:"xmlns,attr,omitempty" json:"-"`
	Attrs      []xml.Attr     `xml:",any,attr" json:"-"`
	Activities *TCXActivities `xml:"Activities,omitempty" json:"activities,omitempty"`
	Workouts   *TCXWorkouts   `xml:"Workouts,omitempty" json:"workouts,omitempty"`
}

type TCXWorkouts struct {
	Workout []TCXWorkout `xml:"Workout" json:"workout"`
}

type TCXWorkout struct {
	Sport      string         `xml:"Sport,attr" json:"sport"`
	Name       string         `xml:"Name" json:"name"`
	Steps      []TCXStep      `xml:"Step" json:"step"`
	Notes      string         `xml:"Notes,omitempty" json:"notes,omitempty"`
	Extensions *TCXExtensions `xml:"Extensions,omitempty" json:"extensions,omitempty"`
}

// TCXStep is a Step_t or Repeat_t; Child holds the repeated steps.
type TCXStep struct {
	XSIType     string         `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr" json:"type"`
	StepID      int            `xml:"StepId" json:"stepId"`
	Name        string         `xml:"Name,omitempty" json:"name,omitempty"`
	Duration    *TCXDuration   `xml:"Duration,omitempty" json:"duration,omitempty"`
	Intensity   string         `xml:"Intensity,omitempty" json:"intensity,omitempty"`
	Target      *TCXTarget     `xml:"Target,omitempty" json:"target,omitempty"`
	Repetitions int            `xml:"Repetitions,omitempty" json:"repetitions,omitempty"`
	Child       []TCXStep      `xml:"Child,omitempty" json:"child,omitempty"`
	Extensions  *TCXExtensions `xml:"Extensions,omitempty" json:"extensions,omitempty"`
}

type TCXDuration struct {
	XSIType   string             `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr" json:"type"`
	Seconds   *float64           `xml:"Seconds,omitempty" json:"seconds,omitempty"`
	Meters    *float64           `xml:"Meters,omitempty" json:"meters,omitempty"`
	HeartRate *TCXHeartRateValue `xml:"HeartRate,omitempty" json:"heartRate,omitempty"`
	Calories  *float64           `xml:"Calories,omitempty" json:"calories,omitempty"`
}

// TCXHeartRateValue is HeartRateInBeatsPerMinute_t or HeartRateAsPercentOfMax_t.
type TCXHeartRateValue struct {
	XSIType string  `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr" json:"type"`
	Value   float64 `xml:"Value" json:"value"`
}

type TCXTarget struct {
	XSIType       string   `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr" json:"type"`
	HeartRateZone *TCXZone `xml:"HeartRateZone,omitempty" json:"heartRateZone,omitempty"`
	SpeedZone     *TCXZone `xml:"SpeedZone,omitempty" json:"speedZone,omitempty"`
	Low           *float64 `xml:"Low,omitempty" json:"low,omitempty"`
	High          *float64 `xml:"High,omitempty" json:"high,omitempty"`
}

// TCXZone is a predefined or custom heart rate or speed zone.
type TCXZone struct {
	XSIType               string             `xml:"http://www.w3.org/2001/XMLSchema-instance type,attr" json:"type"`
	Number                *int               `xml:"Number,omitempty" json:"number,omitempty"`
	ViewAs                string             `xml:"ViewAs,omitempty" json:"viewAs,omitempty"`
	Low                   *TCXHeartRateValue `xml:"Low,omitempty" json:"low,omitempty"`
	High                  *TCXHeartRateValue `xml:"High,omitempty" json:"high,omitempty"`
	LowInMetersPerSecond  *float64           `xml:"LowInMetersPerSecond,omitempty" json:"lowInMetersPerSecond,omitempty"`
	HighInMetersPerSecond *float64           `xml:"HighInMetersPerSecond,omitempty" json:"highInMetersPerSecond,omitempty"`
}

// TCXExtensions keeps the raw Extensions sub-tree so it can be written back verbatim.
type TCXExtensions struct {
	Inner string `xml:",innerxml" json:"inner"`
}

type TCXActivities struct {
	Activity []TCXActivity `xml:"Activity" json:"activity"`
}

type TCXActivity struct {
	Sport string   `xml:"Sport,attr" json:"sport"`
	ID    string   `xml:"Id" json:"id"`
	Laps  []TCXLap `xml:"Lap" json:"lap"`
	Notes string   `xml:"Notes,omitempty" json:"notes,omitempty"`
}

type TCXLap struct {
	StartTime           string         `xml:"StartTime,attr" json:"startTime"`
	TotalTimeSeconds    *float64       `xml:"TotalTimeSeconds,omitempty" json:"totalTimeSeconds,omitempty"`
	DistanceMeters      *float64       `xml:"DistanceMeters,omitempty" json:"distanceMeters,omitempty"`
	MaximumSpeed        *float64       `xml:"MaximumSpeed,omitempty" json:"maximumSpeed,omitempty"`
	Calories            *float64       `xml:"Calories,omitempty" json:"calories,omitempty"`
	AverageHeartRateBpm *TCXBpm        `xml:"AverageHeartRateBpm,omitempty" json:"averageHeartRateBpm,omitempty"`
	MaximumHeartRateBpm *TCXBpm        `xml:"MaximumHeartRateBpm,omitempty" json:"maximumHeartRateBpm,omitempty"`
	Intensity           string         `xml:"Intensity,omitempty" json:"intensity,omitempty"`
	Cadence             *float64       `xml:"Cadence,omitempty" json:"cadence,omitempty"`
	TriggerMethod       string         `xml:"TriggerMethod,omitempty" json:"triggerMethod,omitempty"`
	Track               *TCXTrack      `xml:"Track,omitempty" json:"track,omitempty"`
	Extensions          *TCXExtensions `xml:"Extensions,omitempty" json:"extensions,omitempty"`
}

type TCXBpm struct {
	Value float64 `xml:"Value" json:"value"`
}

type TCXTrack struct {
	Trackpoints []TCXTrackpoint `xml:"Trackpoint" json:"trackpoint"`
}

type TCXTrackpoint struct {
	Time           string         `xml:"Time" json:"time"`
	Position       *TCXPosition   `xml:"Position,omitempty" json:"position,omitempty"`
	AltitudeMeters *float64       `xml:"AltitudeMeters,omitempty" json:"altitudeMeters,omitempty"`
	DistanceMeters *float64       `xml:"DistanceMeters,omitempty" json:"distanceMeters,omitempty"`
	HeartRateBpm   *TCXBpm        `xml:"HeartRateBpm,omitempty" json:"heartRateBpm,omitempty"`
	Cadence        *float64       `xml:"Cadence,omitempty" json:"cadence,omitempty"`
	Extensions     *TCXExtensions `xml:"Extensions,omitempty" json:"extensions,omitempty"`
}

type TCXPosition struct {
	LatitudeDegrees  float64 `xml:"LatitudeDegrees" json:"latitudeDegrees"`
	LongitudeDegrees float64 `xml:"LongitudeDegrees" json:"longitudeDegrees"`
}

// TCXActivityExt is the ActivityExtension/v2 content of a trackpoint (TPX)
// or lap (LX) Extensions element.
type TCXActivityExt struct {
	TPX *TCXTPX `xml:"TPX,omitempty"`
	LX  *TCXLX  `xml:"LX,omitempty"`
}

type TCXTPX struct {
	Xmlns      string   `xml:"xmlns,attr,omitempty"`
	Speed      *float64 `xml:"Speed,omitempty"`
	RunCadence *float64 `xml:"RunCadence,omitempty"`
	Watts      *float64 `xml:"Watts,omitempty"`
}

type TCXLX struct {
	Xmlns         string   `xml:"xmlns,attr,omitempty"`
	AvgSpeed      *float64 `xml:"AvgSpeed,omitempty"`
	AvgRunCadence *float64 `xml:"AvgRunCadence,omitempty"`
	MaxRunCadence *float64 `xml:"MaxRunCadence,omitempty"`
	AvgWatts      *float64 `xml:"AvgWatts,omitempty"`
	MaxWatts      *float64 `xml:"MaxWatts,omitempty"`
}

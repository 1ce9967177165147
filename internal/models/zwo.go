package models

import "encoding/xml"

// ZWOFile is a Zwift workout_file document.
type ZWOFile struct {
	XMLName      xml.Name   `xml:"workout_file" json:"-"`
	Author       string     `xml:"author,omitempty" json:"author,omitempty"`
	Name         string     `xml:"name" json:"name"`
	Description  string     `xml:"description,omitempty" json:"description,omitempty"`
	SportType    string     `xml:"sportType,omitempty" json:"sportType,omitempty"`
	DurationType string     `xml:"durationType,omitempty" json:"durationType,omitempty"`
	Tags         *ZWOTags   `xml:"tags,omitempty" json:"tags,omitempty"`
	Workout      ZWOWorkout `xml:"workout" json:"workout"`
}

type ZWOTags struct {
	Tag []ZWOTag `xml:"tag" json:"tag"`
}

type ZWOTag struct {
	Name string `xml:"name,attr" json:"name"`
}

// ZWOWorkout captures every child element as a segment, keeping order.
type ZWOWorkout struct {
	Segments []ZWOSegment `xml:",any" json:"segments"`
}

// ZWOSegment is any workout element: SteadyState, Warmup, Cooldown, Ramp,
// IntervalsT, FreeRide or MaxEffort. Power values are FTP ratios.
type ZWOSegment struct {
	XMLName        xml.Name       `json:"element"`
	Duration       *float64       `xml:"Duration,attr,omitempty" json:"duration,omitempty"`
	Power          *float64       `xml:"Power,attr,omitempty" json:"power,omitempty"`
	PowerLow       *float64       `xml:"PowerLow,attr,omitempty" json:"powerLow,omitempty"`
	PowerHigh      *float64       `xml:"PowerHigh,attr,omitempty" json:"powerHigh,omitempty"`
	Repeat         *int           `xml:"Repeat,attr,omitempty" json:"repeat,omitempty"`
	OnDuration     *float64       `xml:"OnDuration,attr,omitempty" json:"onDuration,omitempty"`
	OffDuration    *float64       `xml:"OffDuration,attr,omitempty" json:"offDuration,omitempty"`
	OnPower        *float64       `xml:"OnPower,attr,omitempty" json:"onPower,omitempty"`
	OffPower       *float64       `xml:"OffPower,attr,omitempty" json:"offPower,omitempty"`
	Cadence        *float64       `xml:"Cadence,attr,omitempty" json:"cadence,omitempty"`
	CadenceResting *float64       `xml:"CadenceResting,attr,omitempty" json:"cadenceResting,omitempty"`
	Pace           *int           `xml:"pace,attr,omitempty" json:"pace,omitempty"`
	FlatRoad       *int           `xml:"FlatRoad,attr,omitempty" json:"flatRoad,omitempty"`
	TextEvents     []ZWOTextEvent `xml:"textevent,omitempty" json:"textEvents,omitempty"`
}

type ZWOTextEvent struct {
	TimeOffset float64 `xml:"timeoffset,attr" json:"timeOffset"`
	Message    string  `xml:"message,attr" json:"message"`
}

// ZWO element names.
const (
	ZWOSteadyState = "SteadyState"
	ZWOWarmup      = "Warmup"
	ZWOCooldown    = "Cooldown"
	ZWORamp        = "Ramp"
	ZWOIntervalsT  = "IntervalsT"
	ZWOFreeRide    = "FreeRide"
	ZWOMaxEffort   = "MaxEffort"
)

package models

import (
	"encoding/json"
	"fmt"
)

// DurationType is the discriminant of a Duration.
type DurationType string

const (
	DurationTime                            DurationType = "time"
	DurationDistance                        DurationType = "distance"
	DurationOpen                            DurationType = "open"
	DurationCalories                        DurationType = "calories"
	DurationPowerLessThan                   DurationType = "power_less_than"
	DurationPowerGreaterThan                DurationType = "power_greater_than"
	DurationHeartRateLessThan               DurationType = "heart_rate_less_than"
	DurationRepeatUntilTime                 DurationType = "repeat_until_time"
	DurationRepeatUntilDistance             DurationType = "repeat_until_distance"
	DurationRepeatUntilCalories             DurationType = "repeat_until_calories"
	DurationRepeatUntilHeartRateGreaterThan DurationType = "repeat_until_heart_rate_greater_than"
	DurationRepeatUntilHeartRateLessThan    DurationType = "repeat_until_heart_rate_less_than"
	DurationRepeatUntilPowerLessThan        DurationType = "repeat_until_power_less_than"
	DurationRepeatUntilPowerGreaterThan     DurationType = "repeat_until_power_greater_than"
)

// Duration ends a workout step. Implementations are the value types in this file.
type Duration interface {
	DurationType() DurationType
	isDuration()
}

type TimeDuration struct {
	Seconds float64 `json:"seconds"`
}

type DistanceDuration struct {
	Meters float64 `json:"meters"`
}

// OpenDuration lasts until the athlete presses the lap button.
type OpenDuration struct{}

type CaloriesDuration struct {
	Calories float64 `json:"calories"`
}

type PowerLessThanDuration struct {
	Watts float64 `json:"watts"`
}

type PowerGreaterThanDuration struct {
	Watts float64 `json:"watts"`
}

type HeartRateLessThanDuration struct {
	BPM float64 `json:"bpm"`
}

// RepeatUntilTimeDuration repeats the steps starting at RepeatFrom until
// Seconds have elapsed.
type RepeatUntilTimeDuration struct {
	Seconds    float64 `json:"seconds"`
	RepeatFrom int     `json:"repeatFrom"`
}

type RepeatUntilDistanceDuration struct {
	Meters     float64 `json:"meters"`
	RepeatFrom int     `json:"repeatFrom"`
}

type RepeatUntilCaloriesDuration struct {
	Calories   float64 `json:"calories"`
	RepeatFrom int     `json:"repeatFrom"`
}

type RepeatUntilHeartRateGreaterThanDuration struct {
	BPM        float64 `json:"bpm"`
	RepeatFrom int     `json:"repeatFrom"`
}

type RepeatUntilHeartRateLessThanDuration struct {
	BPM        float64 `json:"bpm"`
	RepeatFrom int     `json:"repeatFrom"`
}

type RepeatUntilPowerLessThanDuration struct {
	Watts      float64 `json:"watts"`
	RepeatFrom int     `json:"repeatFrom"`
}

type RepeatUntilPowerGreaterThanDuration struct {
	Watts      float64 `json:"watts"`
	RepeatFrom int     `json:"repeatFrom"`
}

func (TimeDuration) DurationType() DurationType              { return DurationTime }
func (DistanceDuration) DurationType() DurationType          { return DurationDistance }
func (OpenDuration) DurationType() DurationType              { return DurationOpen }
func (CaloriesDuration) DurationType() DurationType          { return DurationCalories }
func (PowerLessThanDuration) DurationType() DurationType     { return DurationPowerLessThan }
func (PowerGreaterThanDuration) DurationType() DurationType  { return DurationPowerGreaterThan }
func (HeartRateLessThanDuration) DurationType() DurationType { return DurationHeartRateLessThan }
func (RepeatUntilTimeDuration) DurationType() DurationType   { return DurationRepeatUntilTime }
func (RepeatUntilDistanceDuration) DurationType() DurationType {
	return DurationRepeatUntilDistance
}
func (RepeatUntilCaloriesDuration) DurationType() DurationType {
	return DurationRepeatUntilCalories
}
func (RepeatUntilHeartRateGreaterThanDuration) DurationType() DurationType {
	return DurationRepeatUntilHeartRateGreaterThan
}
func (RepeatUntilHeartRateLessThanDuration) DurationType() DurationType {
	return DurationRepeatUntilHeartRateLessThan
}
func (RepeatUntilPowerLessThanDuration) DurationType() DurationType {
	return DurationRepeatUntilPowerLessThan
}
func (RepeatUntilPowerGreaterThanDuration) DurationType() DurationType {
	return DurationRepeatUntilPowerGreaterThan
}

func (TimeDuration) isDuration()                            {}
func (DistanceDuration) isDuration()                        {}
func (OpenDuration) isDuration()                            {}
func (CaloriesDuration) isDuration()                        {}
func (PowerLessThanDuration) isDuration()                   {}
func (PowerGreaterThanDuration) isDuration()                {}
func (HeartRateLessThanDuration) isDuration()               {}
func (RepeatUntilTimeDuration) isDuration()                 {}
func (RepeatUntilDistanceDuration) isDuration()             {}
func (RepeatUntilCaloriesDuration) isDuration()             {}
func (RepeatUntilHeartRateGreaterThanDuration) isDuration() {}
func (RepeatUntilHeartRateLessThanDuration) isDuration()    {}
func (RepeatUntilPowerLessThanDuration) isDuration()        {}
func (RepeatUntilPowerGreaterThanDuration) isDuration()     {}

// IsStandardDuration reports whether d is one of the variants every format can express.
func IsStandardDuration(d Duration) bool {
	switch d.(type) {
	case TimeDuration, DistanceDuration, OpenDuration:
		return true
	}
	return false
}

// MarshalDuration encodes d with its "type" discriminant. A nil duration encodes as open.
func MarshalDuration(d Duration) ([]byte, error) {
	if d == nil {
		d = OpenDuration{}
	}
	return marshalTagged("type", string(d.DurationType()), d)
}

// UnmarshalDuration decodes a duration object by its "type" discriminant.
func UnmarshalDuration(data []byte) (Duration, error) {
	tag, err := peekTag(data, "type")
	if err != nil {
		return nil, fmt.Errorf("decoding duration: %w", err)
	}

	var d Duration
	switch DurationType(tag) {
	case DurationTime:
		d, err = decodeAs[TimeDuration](data)
	case DurationDistance:
		d, err = decodeAs[DistanceDuration](data)
	case DurationOpen:
		d = OpenDuration{}
	case DurationCalories:
		d, err = decodeAs[CaloriesDuration](data)
	case DurationPowerLessThan:
		d, err = decodeAs[PowerLessThanDuration](data)
	case DurationPowerGreaterThan:
		d, err = decodeAs[PowerGreaterThanDuration](data)
	case DurationHeartRateLessThan:
		d, err = decodeAs[HeartRateLessThanDuration](data)
	case DurationRepeatUntilTime:
		d, err = decodeAs[RepeatUntilTimeDuration](data)
	case DurationRepeatUntilDistance:
		d, err = decodeAs[RepeatUntilDistanceDuration](data)
	case DurationRepeatUntilCalories:
		d, err = decodeAs[RepeatUntilCaloriesDuration](data)
	case DurationRepeatUntilHeartRateGreaterThan:
		d, err = decodeAs[RepeatUntilHeartRateGreaterThanDuration](data)
	case DurationRepeatUntilHeartRateLessThan:
		d, err = decodeAs[RepeatUntilHeartRateLessThanDuration](data)
	case DurationRepeatUntilPowerLessThan:
		d, err = decodeAs[RepeatUntilPowerLessThanDuration](data)
	case DurationRepeatUntilPowerGreaterThan:
		d, err = decodeAs[RepeatUntilPowerGreaterThanDuration](data)
	default:
		return nil, fmt.Errorf("unknown duration type %q", tag)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s duration: %w", tag, err)
	}
	return d, nil
}

func decodeAs[T any](data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Sport is the closed set of canonical sports.
type Sport string

const (
	SportCycling  Sport = "cycling"
	SportRunning  Sport = "running"
	SportSwimming Sport = "swimming"
	SportGeneric  Sport = "generic"
)

// ParseSport maps a sport name case-insensitively, reporting false for
// anything outside the canonical set.
func ParseSport(s string) (Sport, bool) {
	switch Sport(strings.ToLower(strings.TrimSpace(s))) {
	case SportCycling:
		return SportCycling, true
	case SportRunning:
		return SportRunning, true
	case SportSwimming:
		return SportSwimming, true
	case SportGeneric:
		return SportGeneric, true
	}
	return "", false
}

// Intensity classifies what a step is for.
type Intensity string

const (
	IntensityWarmup   Intensity = "warmup"
	IntensityActive   Intensity = "active"
	IntensityCooldown Intensity = "cooldown"
	IntensityRest     Intensity = "rest"
	IntensityRecovery Intensity = "recovery"
	IntensityInterval Intensity = "interval"
	IntensityOther    Intensity = "other"
)

// ParseIntensity reports false for names outside the canonical set.
func ParseIntensity(s string) (Intensity, bool) {
	switch i := Intensity(s); i {
	case IntensityWarmup, IntensityActive, IntensityCooldown, IntensityRest,
		IntensityRecovery, IntensityInterval, IntensityOther:
		return i, true
	}
	return "", false
}

// Entry is one element of a workout's step list: a *WorkoutStep or a *RepetitionBlock.
type Entry interface {
	isEntry()
}

// WorkoutStep is a single step of a structured workout.
//
// DurationType and TargetType mirror the tags of Duration and Target. NewStep,
// Sync and JSON decoding keep them equal.
type WorkoutStep struct {
	StepIndex    int
	DurationType DurationType
	Duration     Duration
	TargetType   TargetType
	Target       Target
	Intensity    Intensity
	Name         string
	Notes        string
	Equipment    string
	Extensions   Extensions
}

// NewStep builds a step with its tag fields in sync. Nil duration or target
// become open.
func NewStep(index int, d Duration, t Target) *WorkoutStep {
	s := &WorkoutStep{StepIndex: index, Duration: d, Target: t}
	s.Sync()
	return s
}

// Sync re-derives DurationType and TargetType from the payloads.
func (s *WorkoutStep) Sync() {
	if s.Duration == nil {
		s.Duration = OpenDuration{}
	}
	if s.Target == nil {
		s.Target = OpenTarget{}
	}
	s.DurationType = s.Duration.DurationType()
	s.TargetType = s.Target.TargetType()
}

// RepetitionBlock repeats its steps RepeatCount times. Blocks do not nest.
type RepetitionBlock struct {
	RepeatCount int            `json:"repeatCount"`
	Steps       []*WorkoutStep `json:"steps"`
}

func (*WorkoutStep) isEntry()     {}
func (*RepetitionBlock) isEntry() {}

// Workout is a structured workout definition.
type Workout struct {
	Name       string     `json:"name,omitempty"`
	Sport      Sport      `json:"sport"`
	SubSport   string     `json:"subSport,omitempty"`
	Steps      []Entry    `json:"steps"`
	Extensions Extensions `json:"extensions,omitempty"`
}

// StepCount returns the number of leaf steps, counting each block child once.
func (w *Workout) StepCount() int {
	n := 0
	for _, e := range w.Steps {
		switch e := e.(type) {
		case *WorkoutStep:
			n++
		case *RepetitionBlock:
			n += len(e.Steps)
		}
	}
	return n
}

type stepJSON struct {
	StepIndex    int             `json:"stepIndex"`
	DurationType DurationType    `json:"durationType"`
	Duration     json.RawMessage `json:"duration"`
	TargetType   TargetType      `json:"targetType"`
	Target       json.RawMessage `json:"target"`
	Intensity    Intensity       `json:"intensity,omitempty"`
	Name         string          `json:"name,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Equipment    string          `json:"equipment,omitempty"`
	Extensions   Extensions      `json:"extensions,omitempty"`
}

// MarshalJSON writes the tag fields from the payloads so they cannot drift.
func (s WorkoutStep) MarshalJSON() ([]byte, error) {
	s.Sync()
	d, err := MarshalDuration(s.Duration)
	if err != nil {
		return nil, fmt.Errorf("encoding duration: %w", err)
	}
	t, err := MarshalTarget(s.Target)
	if err != nil {
		return nil, fmt.Errorf("encoding target: %w", err)
	}
	return json.Marshal(stepJSON{
		StepIndex:    s.StepIndex,
		DurationType: s.DurationType,
		Duration:     d,
		TargetType:   s.TargetType,
		Target:       t,
		Intensity:    s.Intensity,
		Name:         s.Name,
		Notes:        s.Notes,
		Equipment:    s.Equipment,
		Extensions:   s.Extensions,
	})
}

func (s *WorkoutStep) UnmarshalJSON(data []byte) error {
	var in stepJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if len(in.Duration) == 0 {
		return fmt.Errorf("duration is required")
	}
	if len(in.Target) == 0 {
		return fmt.Errorf("target is required")
	}
	d, err := UnmarshalDuration(in.Duration)
	if err != nil {
		return err
	}
	t, err := UnmarshalTarget(in.Target)
	if err != nil {
		return err
	}
	if in.DurationType != "" && in.DurationType != d.DurationType() {
		return fmt.Errorf("durationType %q does not match duration type %q", in.DurationType, d.DurationType())
	}
	if in.TargetType != "" && in.TargetType != t.TargetType() {
		return fmt.Errorf("targetType %q does not match target type %q", in.TargetType, t.TargetType())
	}

	*s = WorkoutStep{
		StepIndex:  in.StepIndex,
		Duration:   d,
		Target:     t,
		Intensity:  in.Intensity,
		Name:       in.Name,
		Notes:      in.Notes,
		Equipment:  in.Equipment,
		Extensions: in.Extensions,
	}
	s.Sync()
	return nil
}

type workoutJSON struct {
	Name       string            `json:"name,omitempty"`
	Sport      Sport             `json:"sport"`
	SubSport   string            `json:"subSport,omitempty"`
	Steps      []json.RawMessage `json:"steps"`
	Extensions Extensions        `json:"extensions,omitempty"`
}

func (w Workout) MarshalJSON() ([]byte, error) {
	out := workoutJSON{
		Name:       w.Name,
		Sport:      w.Sport,
		SubSport:   w.SubSport,
		Steps:      make([]json.RawMessage, 0, len(w.Steps)),
		Extensions: w.Extensions,
	}
	for i, e := range w.Steps {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encoding step %d: %w", i, err)
		}
		out.Steps = append(out.Steps, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON tells blocks from steps by the presence of "repeatCount".
func (w *Workout) UnmarshalJSON(data []byte) error {
	var in workoutJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	steps := make([]Entry, 0, len(in.Steps))
	for i, raw := range in.Steps {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if _, ok := fields["repeatCount"]; ok {
			var b RepetitionBlock
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			steps = append(steps, &b)
			continue
		}
		var s WorkoutStep
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		steps = append(steps, &s)
	}
	*w = Workout{
		Name:       in.Name,
		Sport:      in.Sport,
		SubSport:   in.SubSport,
		Steps:      steps,
		Extensions: in.Extensions,
	}
	return nil
}

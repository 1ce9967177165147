package tcx

import (
	"log/slog"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// Step subtypes.
const (
	stepStep   = "Step_t"
	stepRepeat = "Repeat_t"
)

// Step intensities.
const (
	intensityActive  = "Active"
	intensityResting = "Resting"
)

// Converter maps TCX elements to and from the canonical model.
type Converter struct {
	opts ingest.Options
	log  *slog.Logger
}

// NewConverter creates a converter using opts for values the source omits.
func NewConverter(opts ingest.Options, log *slog.Logger) *Converter {
	return &Converter{opts: opts, log: log}
}

// stepExtension is the "tcx" extension record of a workout step.
type stepExtension struct {
	Duration   *models.TCXDuration `json:"duration,omitempty"`
	Target     *models.TCXTarget   `json:"target,omitempty"`
	ViewAs     *string             `json:"viewAs,omitempty"`
	Intensity  string              `json:"intensity,omitempty"`
	Extensions string              `json:"extensions,omitempty"`
}

// workoutExtension is the "tcx" extension record of a workout.
type workoutExtension struct {
	Sport      string `json:"sport,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Extensions string `json:"extensions,omitempty"`
}

var sports = map[string]models.Sport{
	"Biking":  models.SportCycling,
	"Running": models.SportRunning,
	"Other":   models.SportGeneric,
}

// sportName returns the TCX Sport attribute for s. TCX has no swimming value.
func sportName(s models.Sport) string {
	switch s {
	case models.SportCycling:
		return "Biking"
	case models.SportRunning:
		return "Running"
	}
	return "Other"
}

// sportOf maps a Sport attribute, falling back to the configured default. It
// reports false when the native value needs preserving.
func (c *Converter) sportOf(native string) (models.Sport, bool) {
	if s, ok := sports[native]; ok {
		return s, true
	}
	if native != "" {
		c.log.Warn("unknown sport, using default", "format", ingest.FormatTCX, "sport", native, "default", c.opts.Sport())
	}
	return c.opts.Sport(), native == ""
}

// StepToCanonical converts one Step_t element.
func (c *Converter) StepToCanonical(s models.TCXStep) *models.WorkoutStep {
	d, dOut := DurationToCanonical(s.Duration)
	t, tOut := TargetToCanonical(s.Target)

	step := models.NewStep(s.StepID, d, t)
	step.Name = s.Name

	var ext stepExtension
	if dOut.Keep() {
		ext.Duration = s.Duration
		if dOut == ingest.Unknown {
			c.log.Warn("unknown duration type", "format", ingest.FormatTCX, "durationType", s.Duration.XSIType, "stepId", s.StepID)
		}
	}
	if tOut.Keep() {
		ext.Target = s.Target
		if tOut == ingest.Unknown {
			c.log.Warn("unknown target type", "format", ingest.FormatTCX, "targetType", s.Target.XSIType, "stepId", s.StepID)
		}
	}
	if z := speedZoneOf(s.Target); z != nil && z.XSIType == zoneCustomSpeed && z.ViewAs != defaultViewAs {
		ext.ViewAs = models.Ptr(z.ViewAs)
	}
	switch s.Intensity {
	case "":
	case intensityActive:
		step.Intensity = models.IntensityActive
	case intensityResting:
		step.Intensity = models.IntensityRest
	default:
		ext.Intensity = s.Intensity
		c.log.Warn("unknown intensity", "format", ingest.FormatTCX, "intensity", s.Intensity)
	}
	if s.Extensions != nil {
		ext.Extensions = s.Extensions.Inner
	}

	if ext != (stepExtension{}) {
		if err := step.Extensions.Set(models.ExtTCX, ext); err != nil {
			c.log.Warn("dropping step extension", "error", err)
		}
	}
	return step
}

func speedZoneOf(t *models.TCXTarget) *models.TCXZone {
	if t == nil {
		return nil
	}
	return t.SpeedZone
}

// StepFromCanonical converts a canonical step to a Step_t element with the
// given step id. Preserved native elements outrank re-derivation.
func (c *Converter) StepFromCanonical(step *models.WorkoutStep, id int) models.TCXStep {
	out := models.TCXStep{
		XSIType:   stepStep,
		StepID:    id,
		Name:      step.Name,
		Intensity: intensityActive,
	}
	switch step.Intensity {
	case models.IntensityRest, models.IntensityRecovery:
		out.Intensity = intensityResting
	}

	var ext stepExtension
	if !step.Extensions.Decode(models.ExtTCX, &ext) {
		ext = stepExtension{}
	}

	if ext.Duration != nil && ext.Duration.XSIType != "" {
		out.Duration = ext.Duration
	} else {
		d, ok := DurationFromCanonical(step.Duration)
		if !ok {
			c.log.Warn("duration not expressible, writing user initiated", "format", ingest.FormatTCX, "durationType", step.DurationType)
		}
		out.Duration = d
	}

	if ext.Target != nil && ext.Target.XSIType != "" {
		out.Target = ext.Target
	} else {
		t, ok := TargetFromCanonical(step.Target)
		if !ok {
			c.log.Warn("target not expressible, writing none", "format", ingest.FormatTCX, "targetType", step.TargetType)
		}
		out.Target = t
	}
	if z := out.Target.SpeedZone; z != nil && z.XSIType == zoneCustomSpeed && ext.ViewAs != nil {
		z.ViewAs = *ext.ViewAs
	}

	if ext.Intensity != "" {
		out.Intensity = ext.Intensity
	}
	if ext.Extensions != "" {
		out.Extensions = &models.TCXExtensions{Inner: ext.Extensions}
	}
	return out
}

// WorkoutToCanonical converts a Workout element. Repeat_t elements become
// repetition blocks.
func (c *Converter) WorkoutToCanonical(w *models.TCXWorkout) *models.Workout {
	sport, known := c.sportOf(w.Sport)
	out := &models.Workout{Name: w.Name, Sport: sport}

	ext := workoutExtension{Notes: w.Notes}
	if !known {
		ext.Sport = w.Sport
	}
	if w.Extensions != nil {
		ext.Extensions = w.Extensions.Inner
	}
	if ext != (workoutExtension{}) {
		if err := out.Extensions.Set(models.ExtTCX, ext); err != nil {
			c.log.Warn("dropping workout extension", "error", err)
		}
	}

	out.Steps = []models.Entry{}
	for _, s := range w.Steps {
		out.Steps = append(out.Steps, c.entry(s)...)
	}
	return models.ReindexWorkout(out)
}

// entry converts one top-level step. Repeats that cannot form a block are inlined.
func (c *Converter) entry(s models.TCXStep) []models.Entry {
	if s.XSIType != stepRepeat {
		if s.XSIType != stepStep && s.XSIType != "" {
			c.log.Warn("unknown step type, reading as step", "format", ingest.FormatTCX, "type", s.XSIType, "stepId", s.StepID)
		}
		return []models.Entry{c.StepToCanonical(s)}
	}

	children := c.flatten(s.Child)
	nested := false
	for _, child := range s.Child {
		if child.XSIType == stepRepeat {
			nested = true
		}
	}

	switch {
	case len(children) == 0:
		c.log.Warn("repeat has no steps", "format", ingest.FormatTCX, "stepId", s.StepID)
		return nil
	case nested:
		c.log.Warn("nested repeat inlined", "format", ingest.FormatTCX, "stepId", s.StepID)
	case s.Repetitions < 2:
		c.log.Warn("repeat count below 2 inlined", "format", ingest.FormatTCX, "stepId", s.StepID, "count", s.Repetitions)
	default:
		return []models.Entry{&models.RepetitionBlock{RepeatCount: s.Repetitions, Steps: children}}
	}

	entries := make([]models.Entry, len(children))
	for i, child := range children {
		entries[i] = child
	}
	return entries
}

// flatten converts steps depth-first, dropping repeat structure.
func (c *Converter) flatten(steps []models.TCXStep) []*models.WorkoutStep {
	var out []*models.WorkoutStep
	for _, s := range steps {
		if s.XSIType == stepRepeat {
			out = append(out, c.flatten(s.Child)...)
			continue
		}
		out = append(out, c.StepToCanonical(s))
	}
	return out
}

// WorkoutFromCanonical converts a canonical workout. Step ids are 1-based in
// document order with each repeat numbered after its children.
func (c *Converter) WorkoutFromCanonical(w *models.Workout) models.TCXWorkout {
	out := models.TCXWorkout{Sport: sportName(w.Sport), Name: w.Name}
	var ext workoutExtension
	if w.Extensions.Decode(models.ExtTCX, &ext) {
		if ext.Sport != "" {
			out.Sport = ext.Sport
		}
		out.Notes = ext.Notes
		if ext.Extensions != "" {
			out.Extensions = &models.TCXExtensions{Inner: ext.Extensions}
		}
	}
	if w.Sport == models.SportSwimming && ext.Sport == "" {
		c.log.Warn("swimming has no TCX sport, writing Other", "format", ingest.FormatTCX)
	}

	id := 0
	next := func() int {
		id++
		return id
	}
	for _, e := range w.Steps {
		switch e := e.(type) {
		case *models.WorkoutStep:
			out.Steps = append(out.Steps, c.StepFromCanonical(e, next()))
		case *models.RepetitionBlock:
			children := make([]models.TCXStep, 0, len(e.Steps))
			for _, child := range e.Steps {
				children = append(children, c.StepFromCanonical(child, next()))
			}
			out.Steps = append(out.Steps, models.TCXStep{
				XSIType:     stepRepeat,
				StepID:      next(),
				Repetitions: e.RepeatCount,
				Child:       children,
			})
		}
	}
	return out
}

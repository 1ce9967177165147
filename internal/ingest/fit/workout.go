package fit

import (
	"log/slog"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// Converter maps FIT messages to and from the canonical model.
type Converter struct {
	opts ingest.Options
	log  *slog.Logger
}

// NewConverter creates a converter using opts for values the source omits.
func NewConverter(opts ingest.Options, log *slog.Logger) *Converter {
	return &Converter{opts: opts, log: log}
}

// stepExtension is the "fit" extension record of a workout step.
type stepExtension struct {
	Duration  *durationFields `json:"duration,omitempty"`
	Target    *targetFields   `json:"target,omitempty"`
	Intensity string          `json:"intensity,omitempty"`
}

// workoutExtension is the "fit" extension record of a workout.
type workoutExtension struct {
	Sport string `json:"sport,omitempty"`
}

// StepToCanonical converts one workout_step message.
func (c *Converter) StepToCanonical(s models.FITWorkoutStep) *models.WorkoutStep {
	d, dOut := DurationToCanonical(&s)
	t, tOut := TargetToCanonical(&s)

	step := models.NewStep(s.MessageIndex, d, t)
	step.Name = s.WktStepName
	step.Notes = s.Notes
	step.Equipment = s.Equipment

	var ext stepExtension
	if dOut.Keep() {
		ext.Duration = durationFieldsOf(&s)
		if dOut == ingest.Unknown {
			c.log.Warn("unknown duration type", "format", ingest.FormatFIT, "durationType", s.DurationType, "messageIndex", s.MessageIndex)
		}
	}
	if tOut.Keep() {
		ext.Target = targetFieldsOf(&s)
		if tOut == ingest.Unknown {
			c.log.Warn("unknown target type", "format", ingest.FormatFIT, "targetType", s.TargetType, "messageIndex", s.MessageIndex)
		}
	}
	if s.Intensity != "" {
		if i, ok := models.ParseIntensity(s.Intensity); ok {
			step.Intensity = i
		} else {
			ext.Intensity = s.Intensity
			c.log.Warn("unknown intensity", "format", ingest.FormatFIT, "intensity", s.Intensity)
		}
	}
	if ext != (stepExtension{}) {
		if err := step.Extensions.Set(models.ExtFIT, ext); err != nil {
			c.log.Warn("dropping step extension", "error", err)
		}
	}
	return step
}

// StepFromCanonical converts a canonical step to a workout_step message with
// the given message index. Preserved native fields outrank re-derivation.
func (c *Converter) StepFromCanonical(step *models.WorkoutStep, index int) models.FITWorkoutStep {
	out := models.FITWorkoutStep{
		MessageIndex: index,
		WktStepName:  step.Name,
		Notes:        step.Notes,
		Equipment:    step.Equipment,
		Intensity:    string(step.Intensity),
	}

	var ext stepExtension
	if !step.Extensions.Decode(models.ExtFIT, &ext) {
		ext = stepExtension{}
	}
	if ext.Duration != nil && ext.Duration.Type != "" {
		ext.Duration.apply(&out)
	} else {
		DurationFromCanonical(step.Duration, &out)
	}
	if ext.Target != nil && ext.Target.Type != "" {
		ext.Target.apply(&out)
	} else {
		TargetFromCanonical(step.Target, &out)
	}
	if ext.Intensity != "" {
		out.Intensity = ext.Intensity
	}
	return out
}

// WorkoutToCanonical converts the workout message and its steps. Repeat steps
// become repetition blocks over the steps they point back to.
func (c *Converter) WorkoutToCanonical(w *models.FITWorkout, steps []models.FITWorkoutStep) *models.Workout {
	out := &models.Workout{Sport: c.opts.Sport()}
	if w != nil {
		out.Name = w.WktName
		out.SubSport = w.SubSport
		if w.Sport != "" {
			if sport, ok := models.ParseSport(w.Sport); ok {
				out.Sport = sport
			} else {
				c.log.Warn("unknown sport, using default", "format", ingest.FormatFIT, "sport", w.Sport, "default", out.Sport)
				if err := out.Extensions.Set(models.ExtFIT, workoutExtension{Sport: w.Sport}); err != nil {
					c.log.Warn("dropping workout extension", "error", err)
				}
			}
		}
	}

	// origin[i] is the native position of the first step behind entry i.
	var entries []models.Entry
	var origin []int
	for i := range steps {
		s := steps[i]
		if s.DurationType != durationRepeatUntilStepsCmplt {
			entries = append(entries, c.StepToCanonical(s))
			origin = append(origin, i)
			continue
		}

		start := repeatStart(steps[:i], s)
		count := deref(s.RepeatSteps)
		if s.RepeatSteps == nil && s.TargetValue != nil {
			count = int(*s.TargetValue)
		}

		first := len(entries)
		for e := len(entries) - 1; e >= 0 && origin[e] >= start; e-- {
			first = e
		}
		children := make([]*models.WorkoutStep, 0, len(entries)-first)
		for _, e := range entries[first:] {
			if st, ok := e.(*models.WorkoutStep); ok {
				children = append(children, st)
			}
		}

		switch {
		case len(children) == 0:
			c.log.Warn("repeat step has no steps to repeat", "format", ingest.FormatFIT, "messageIndex", s.MessageIndex)
		case len(children) != len(entries)-first:
			c.log.Warn("nested repeat inlined", "format", ingest.FormatFIT, "messageIndex", s.MessageIndex)
		case count < 2:
			c.log.Warn("repeat count below 2 inlined", "format", ingest.FormatFIT, "messageIndex", s.MessageIndex, "count", count)
		default:
			entries = append(entries[:first], &models.RepetitionBlock{RepeatCount: count, Steps: children})
			origin = origin[:first+1]
		}
	}
	out.Steps = entries
	if out.Steps == nil {
		out.Steps = []models.Entry{}
	}
	return models.ReindexWorkout(out)
}

// repeatStart finds the native position a repeat step points back to:
// the step whose message index equals durationStep, else durationStep
// read as a position.
func repeatStart(before []models.FITWorkoutStep, repeat models.FITWorkoutStep) int {
	target := deref(repeat.DurationStep)
	for i, s := range before {
		if s.MessageIndex == target {
			return i
		}
	}
	if target >= 0 && target < len(before) {
		return target
	}
	return len(before)
}

// WorkoutFromCanonical converts a canonical workout to a workout message and
// a flat step list. Blocks become their children followed by a repeat step.
func (c *Converter) WorkoutFromCanonical(w *models.Workout) (*models.FITWorkout, []models.FITWorkoutStep) {
	out := &models.FITWorkout{
		WktName:  w.Name,
		Sport:    string(w.Sport),
		SubSport: w.SubSport,
	}
	var ext workoutExtension
	if w.Extensions.Decode(models.ExtFIT, &ext) && ext.Sport != "" {
		out.Sport = ext.Sport
	}

	var steps []models.FITWorkoutStep
	for _, e := range w.Steps {
		switch e := e.(type) {
		case *models.WorkoutStep:
			steps = append(steps, c.StepFromCanonical(e, len(steps)))
		case *models.RepetitionBlock:
			start := len(steps)
			for _, child := range e.Steps {
				steps = append(steps, c.StepFromCanonical(child, len(steps)))
			}
			count := e.RepeatCount
			steps = append(steps, models.FITWorkoutStep{
				MessageIndex: len(steps),
				DurationType: durationRepeatUntilStepsCmplt,
				DurationStep: models.Ptr(start),
				TargetValue:  models.Ptr(float64(count)),
				RepeatSteps:  models.Ptr(count),
			})
		}
	}
	out.NumValidSteps = len(steps)
	return out, steps
}

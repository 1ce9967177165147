package zwo

import (
	"log/slog"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// Converter maps Zwift workout elements to and from the canonical model.
type Converter struct {
	opts ingest.Options
	log  *slog.Logger
}

// NewConverter creates a converter using opts for values the source omits.
func NewConverter(opts ingest.Options, log *slog.Logger) *Converter {
	return &Converter{opts: opts, log: log}
}

// stepExtension is the "zwift" extension record of a workout step.
type stepExtension struct {
	// Element is the source element when intensity alone does not name it.
	Element    string                `json:"element,omitempty"`
	PowerLow   *float64              `json:"powerLow,omitempty"`
	PowerHigh  *float64              `json:"powerHigh,omitempty"`
	Power      *float64              `json:"power,omitempty"`
	Cadence    *float64              `json:"cadence,omitempty"`
	Pace       *int                  `json:"pace,omitempty"`
	FlatRoad   *int                  `json:"flatRoad,omitempty"`
	Repeat     *int                  `json:"repeat,omitempty"`
	TextEvents []models.ZWOTextEvent `json:"textEvents,omitempty"`
	// Segment holds an unrecognized element verbatim.
	Segment *models.ZWOSegment `json:"segment,omitempty"`
}

func (e stepExtension) empty() bool {
	return e.Element == "" && e.PowerLow == nil && e.PowerHigh == nil && e.Power == nil &&
		e.Cadence == nil && e.Pace == nil && e.FlatRoad == nil && e.Repeat == nil &&
		len(e.TextEvents) == 0 && e.Segment == nil
}

// workoutExtension is the "zwift" extension record of a workout.
type workoutExtension struct {
	Author       string          `json:"author,omitempty"`
	Description  string          `json:"description,omitempty"`
	SportType    *string         `json:"sportType,omitempty"`
	DurationType string          `json:"durationType,omitempty"`
	Tags         []models.ZWOTag `json:"tags,omitempty"`
}

func (e workoutExtension) empty() bool {
	return e.Author == "" && e.Description == "" && e.SportType == nil && e.DurationType == "" && len(e.Tags) == 0
}

var sportTypes = map[string]models.Sport{
	"bike": models.SportCycling,
	"run":  models.SportRunning,
}

func sportType(s models.Sport) string {
	switch s {
	case models.SportCycling:
		return "bike"
	case models.SportRunning:
		return "run"
	}
	return ""
}

// segment is the reading context shared by every element of one workout.
type segment struct {
	sport    models.Sport
	distance bool
}

func (c *Converter) setExt(step *models.WorkoutStep, ext stepExtension) {
	if ext.empty() {
		return
	}
	if err := step.Extensions.Set(models.ExtZwift, ext); err != nil {
		c.log.Warn("dropping step extension", "error", err)
	}
}

// steady builds a step with a power, cadence or pace target. Attributes that
// lose to a higher-priority one are kept in ext.
func (c *Converter) steady(ctx segment, duration *float64, a attrs, ext *stepExtension) *models.WorkoutStep {
	t, out := TargetToCanonical(a, ctx.sport)
	step := models.NewStep(0, DurationToCanonical(duration, ctx.distance), t)
	switch {
	case a.Power != nil:
		ext.Cadence = a.Cadence
		ext.Pace = a.Pace
	case a.Cadence != nil:
		ext.Pace = a.Pace
	case out.Keep():
		ext.Pace = a.Pace
	}
	return step
}

// SegmentToCanonical converts one workout element. IntervalsT yields a
// repetition block, or its on and off steps when it repeats fewer than twice.
func (c *Converter) SegmentToCanonical(s models.ZWOSegment, ctx segment) []models.Entry {
	name := s.XMLName.Local
	ext := stepExtension{TextEvents: s.TextEvents}

	switch name {
	case models.ZWOSteadyState:
		step := c.steady(ctx, s.Duration, attrs{Power: s.Power, Cadence: s.Cadence, Pace: s.Pace}, &ext)
		step.Intensity = models.IntensityActive
		if step.TargetType == models.TargetOpen {
			ext.Element = name
		}
		c.setExt(step, ext)
		return []models.Entry{step}

	case models.ZWOWarmup, models.ZWOCooldown, models.ZWORamp:
		step := models.NewStep(0, DurationToCanonical(s.Duration, ctx.distance), rampTarget(s.PowerLow, s.PowerHigh, s.Power))
		switch name {
		case models.ZWOWarmup:
			step.Intensity = models.IntensityWarmup
		case models.ZWOCooldown:
			step.Intensity = models.IntensityCooldown
		default:
			step.Intensity = models.IntensityActive
		}
		ext.Element = name
		ext.PowerLow, ext.PowerHigh = s.PowerLow, s.PowerHigh
		if s.PowerLow == nil || s.PowerHigh == nil {
			ext.Power = s.Power
		}
		ext.Cadence, ext.Pace = s.Cadence, s.Pace
		c.setExt(step, ext)
		return []models.Entry{step}

	case models.ZWOIntervalsT:
		return c.intervals(s, ctx)

	case models.ZWOFreeRide:
		step := models.NewStep(0, DurationToCanonical(s.Duration, ctx.distance), models.OpenTarget{})
		step.Intensity = models.IntensityActive
		ext.Element = name
		ext.FlatRoad, ext.Cadence = s.FlatRoad, s.Cadence
		c.setExt(step, ext)
		return []models.Entry{step}

	case models.ZWOMaxEffort:
		step := models.NewStep(0, DurationToCanonical(s.Duration, ctx.distance), models.OpenTarget{})
		step.Intensity = models.IntensityInterval
		ext.Element = name
		c.setExt(step, ext)
		return []models.Entry{step}
	}

	c.log.Warn("unknown workout element", "format", ingest.FormatZWO, "element", name)
	step := models.NewStep(0, DurationToCanonical(s.Duration, ctx.distance), models.OpenTarget{})
	c.setExt(step, stepExtension{Segment: &s})
	return []models.Entry{step}
}

func (c *Converter) intervals(s models.ZWOSegment, ctx segment) []models.Entry {
	var onExt, offExt stepExtension
	on := c.steady(ctx, s.OnDuration, attrs{Power: s.OnPower, Cadence: s.Cadence}, &onExt)
	on.Intensity = models.IntensityActive
	off := c.steady(ctx, s.OffDuration, attrs{Power: s.OffPower, Cadence: s.CadenceResting}, &offExt)
	off.Intensity = models.IntensityRest
	onExt.TextEvents = s.TextEvents

	count := 1
	if s.Repeat != nil {
		count = *s.Repeat
	}
	if count < 2 {
		c.log.Warn("repeat count below 2 inlined", "format", ingest.FormatZWO, "element", models.ZWOIntervalsT, "count", count)
		onExt.Element = models.ZWOIntervalsT
		onExt.Repeat = s.Repeat
		c.setExt(on, onExt)
		c.setExt(off, offExt)
		return []models.Entry{on, off}
	}
	c.setExt(on, onExt)
	c.setExt(off, offExt)
	return []models.Entry{&models.RepetitionBlock{RepeatCount: count, Steps: []*models.WorkoutStep{on, off}}}
}

// WorkoutToCanonical converts a workout_file.
func (c *Converter) WorkoutToCanonical(f *models.ZWOFile) *models.Workout {
	sport, ok := sportTypes[f.SportType]
	if !ok {
		sport = c.opts.Sport()
		if f.SportType != "" {
			c.log.Warn("unknown sport type, using default", "format", ingest.FormatZWO, "sportType", f.SportType, "default", sport)
		}
	}
	out := &models.Workout{Name: f.Name, Sport: sport}

	ext := workoutExtension{Author: f.Author, Description: f.Description, DurationType: f.DurationType}
	if !ok {
		ext.SportType = models.Ptr(f.SportType)
	}
	if f.Tags != nil {
		ext.Tags = f.Tags.Tag
	}
	if !ext.empty() {
		if err := out.Extensions.Set(models.ExtZwift, ext); err != nil {
			c.log.Warn("dropping workout extension", "error", err)
		}
	}

	ctx := segment{sport: sport, distance: f.DurationType == durationTypeDistance}
	out.Steps = []models.Entry{}
	for _, s := range f.Workout.Segments {
		out.Steps = append(out.Steps, c.SegmentToCanonical(s, ctx)...)
	}
	return models.ReindexWorkout(out)
}

// WorkoutFromCanonical converts a canonical workout to a workout_file.
func (c *Converter) WorkoutFromCanonical(w *models.Workout) *models.ZWOFile {
	out := &models.ZWOFile{Name: w.Name, SportType: sportType(w.Sport)}
	var ext workoutExtension
	if w.Extensions.Decode(models.ExtZwift, &ext) {
		out.Author = ext.Author
		out.Description = ext.Description
		out.DurationType = ext.DurationType
		if ext.SportType != nil {
			out.SportType = *ext.SportType
		}
		if len(ext.Tags) > 0 {
			out.Tags = &models.ZWOTags{Tag: ext.Tags}
		}
	}
	if out.DurationType == "" && hasDistance(w) {
		out.DurationType = durationTypeDistance
	}

	ctx := segment{sport: w.Sport, distance: out.DurationType == durationTypeDistance}
	for i := 0; i < len(w.Steps); i++ {
		switch e := w.Steps[i].(type) {
		case *models.WorkoutStep:
			var next *models.WorkoutStep
			if i+1 < len(w.Steps) {
				next, _ = w.Steps[i+1].(*models.WorkoutStep)
			}
			seg, paired := c.StepFromCanonical(e, next, ctx)
			if paired {
				i++
			}
			out.Workout.Segments = append(out.Workout.Segments, seg)
		case *models.RepetitionBlock:
			out.Workout.Segments = append(out.Workout.Segments, c.BlockFromCanonical(e, ctx)...)
		}
	}
	return out
}

func hasDistance(w *models.Workout) bool {
	for _, e := range w.Steps {
		switch e := e.(type) {
		case *models.WorkoutStep:
			if e.DurationType == models.DurationDistance {
				return true
			}
		case *models.RepetitionBlock:
			for _, s := range e.Steps {
				if s.DurationType == models.DurationDistance {
					return true
				}
			}
		}
	}
	return false
}

func (c *Converter) duration(step *models.WorkoutStep, ctx segment) *float64 {
	v, ok := DurationFromCanonical(step.Duration)
	if !ok {
		c.log.Warn("duration not expressible, omitting", "format", ingest.FormatZWO, "durationType", step.DurationType)
	}
	_, isDistance := step.Duration.(models.DistanceDuration)
	if v != nil && isDistance != ctx.distance {
		c.log.Warn("duration unit differs from workout duration type", "format", ingest.FormatZWO, "durationType", step.DurationType)
	}
	return v
}

// stepExt reads a step's extension; a malformed record counts as absent.
func stepExt(step *models.WorkoutStep) stepExtension {
	var ext stepExtension
	if !step.Extensions.Decode(models.ExtZwift, &ext) {
		return stepExtension{}
	}
	return ext
}

// StepFromCanonical converts one step. A step read from an IntervalsT that
// repeated once is rejoined with next; paired reports that next was consumed.
func (c *Converter) StepFromCanonical(step, next *models.WorkoutStep, ctx segment) (seg models.ZWOSegment, paired bool) {
	ext := stepExt(step)
	if ext.Segment != nil {
		return *ext.Segment, false
	}
	if ext.Element == models.ZWOIntervalsT && next != nil {
		iv := c.intervalsFromCanonical(step, next, ctx)
		iv.Repeat = ext.Repeat
		return iv, true
	}

	seg.Duration = c.duration(step, ctx)
	seg.TextEvents = ext.TextEvents

	element := ext.Element
	if element == "" {
		switch step.Intensity {
		case models.IntensityWarmup:
			element = models.ZWOWarmup
		case models.IntensityCooldown:
			element = models.ZWOCooldown
		}
	}

	switch element {
	case models.ZWOWarmup, models.ZWOCooldown, models.ZWORamp:
		seg.XMLName.Local = element
		a, ok := TargetFromCanonical(step.Target, ctx.sport)
		switch {
		case ext.PowerLow != nil || ext.PowerHigh != nil:
			seg.PowerLow, seg.PowerHigh = ext.PowerLow, ext.PowerHigh
		case ext.Element != "":
			seg.Power = ext.Power
		case ok && a.Power != nil:
			seg.PowerLow, seg.PowerHigh = a.Power, a.Power
		default:
			c.log.Warn("ramp without power target", "format", ingest.FormatZWO, "targetType", step.TargetType)
		}
		seg.Cadence, seg.Pace = ext.Cadence, ext.Pace
		return seg, false

	case models.ZWOFreeRide:
		seg.XMLName.Local = element
		seg.FlatRoad, seg.Cadence = ext.FlatRoad, ext.Cadence
		return seg, false

	case models.ZWOMaxEffort:
		seg.XMLName.Local = element
		return seg, false
	}

	a, ok := TargetFromCanonical(step.Target, ctx.sport)
	switch {
	case !ok:
		c.log.Warn("target not expressible, writing free ride", "format", ingest.FormatZWO, "targetType", step.TargetType)
		seg.XMLName.Local = models.ZWOFreeRide
	case step.TargetType == models.TargetOpen && element != models.ZWOSteadyState:
		seg.XMLName.Local = models.ZWOFreeRide
		if step.Intensity == models.IntensityInterval {
			seg.XMLName.Local = models.ZWOMaxEffort
		}
	default:
		seg.XMLName.Local = models.ZWOSteadyState
		seg.Power, seg.Cadence, seg.Pace = a.Power, a.Cadence, a.Pace
		if seg.Cadence == nil {
			seg.Cadence = ext.Cadence
		}
		if seg.Pace == nil {
			seg.Pace = ext.Pace
		}
	}
	return seg, false
}

// steadyAttrs returns the power and cadence attributes of one half of an interval.
func (c *Converter) steadyAttrs(step *models.WorkoutStep, ctx segment) (power, cadence *float64) {
	a, ok := TargetFromCanonical(step.Target, ctx.sport)
	if !ok || a.Pace != nil {
		c.log.Warn("interval target not expressible, omitting", "format", ingest.FormatZWO, "targetType", step.TargetType)
	}
	cadence = a.Cadence
	if cadence == nil {
		cadence = stepExt(step).Cadence
	}
	return a.Power, cadence
}

func (c *Converter) intervalsFromCanonical(on, off *models.WorkoutStep, ctx segment) models.ZWOSegment {
	seg := models.ZWOSegment{
		OnDuration:  c.duration(on, ctx),
		OffDuration: c.duration(off, ctx),
		TextEvents:  stepExt(on).TextEvents,
	}
	seg.XMLName.Local = models.ZWOIntervalsT
	seg.OnPower, seg.Cadence = c.steadyAttrs(on, ctx)
	seg.OffPower, seg.CadenceResting = c.steadyAttrs(off, ctx)
	return seg
}

// BlockFromCanonical converts a repetition block. Two-step blocks become
// IntervalsT; other shapes are unrolled.
func (c *Converter) BlockFromCanonical(b *models.RepetitionBlock, ctx segment) []models.ZWOSegment {
	if len(b.Steps) == 2 {
		seg := c.intervalsFromCanonical(b.Steps[0], b.Steps[1], ctx)
		seg.Repeat = models.Ptr(b.RepeatCount)
		return []models.ZWOSegment{seg}
	}
	c.log.Warn("block is not an on/off pair, unrolling", "format", ingest.FormatZWO, "steps", len(b.Steps), "count", b.RepeatCount)
	var out []models.ZWOSegment
	for range b.RepeatCount {
		for _, s := range b.Steps {
			seg, _ := c.StepFromCanonical(s, nil, ctx)
			out = append(out, seg)
		}
	}
	return out
}

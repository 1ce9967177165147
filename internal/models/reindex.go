package models

// ReindexWorkout returns a deep copy of w with step indices repaired.
// Top-level steps are numbered 0..n-1 skipping blocks; each block's children
// get their own sequence from 0. Nil entries are kept in place for
// validation to report. The input is never modified.
func ReindexWorkout(w *Workout) *Workout {
	if w == nil {
		return nil
	}
	out := &Workout{
		Name:       w.Name,
		Sport:      w.Sport,
		SubSport:   w.SubSport,
		Extensions: w.Extensions.Clone(),
		Steps:      make([]Entry, 0, len(w.Steps)),
	}

	next := 0
	for _, e := range w.Steps {
		switch e := e.(type) {
		case *WorkoutStep:
			if e == nil {
				out.Steps = append(out.Steps, e)
				continue
			}
			s := cloneStep(e)
			s.StepIndex = next
			next++
			out.Steps = append(out.Steps, s)
		case *RepetitionBlock:
			if e == nil {
				out.Steps = append(out.Steps, e)
				continue
			}
			b := &RepetitionBlock{
				RepeatCount: e.RepeatCount,
				Steps:       make([]*WorkoutStep, 0, len(e.Steps)),
			}
			for i, child := range e.Steps {
				if child == nil {
					b.Steps = append(b.Steps, nil)
					continue
				}
				s := cloneStep(child)
				s.StepIndex = i
				b.Steps = append(b.Steps, s)
			}
			out.Steps = append(out.Steps, b)
		}
	}
	return out
}

// cloneStep copies a step. Duration and Target variants are value types, so
// copying the interface values is enough.
func cloneStep(s *WorkoutStep) *WorkoutStep {
	c := *s
	c.Extensions = s.Extensions.Clone()
	c.Sync()
	return &c
}

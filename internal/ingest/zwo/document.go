package zwo

import (
	"errors"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
)

// ErrNoWorkout is returned when a document without a structured workout is
// encoded as ZWO.
var ErrNoWorkout = errors.New("document has no structured workout")

// ToDocument wraps a workout_file in a canonical structured-workout document.
func (c *Converter) ToDocument(f *models.ZWOFile) (*models.Document, error) {
	w := c.WorkoutToCanonical(f)
	doc := &models.Document{
		Version: models.CurrentVersion,
		Type:    models.FileStructuredWorkout,
		Metadata: models.Metadata{
			Created: c.opts.Created(),
			Sport:   string(w.Sport),
		},
	}
	doc.SetWorkout(w)
	return doc, nil
}

// FromDocument returns the document's workout as a workout_file. Recorded
// activity data has no ZWO form and is dropped.
func (c *Converter) FromDocument(doc *models.Document) (*models.ZWOFile, error) {
	w := doc.Workout()
	if w == nil {
		return nil, ErrNoWorkout
	}
	if n := len(doc.Sessions) + len(doc.Laps) + len(doc.Records) + len(doc.Events); n > 0 {
		c.log.Warn("dropping activity data", "format", ingest.FormatZWO, "items", n)
	}
	return c.WorkoutFromCanonical(w), nil
}

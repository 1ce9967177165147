package tcx

import (
	"encoding/xml"
	"fmt"

	"github.com/claude/workouthub/internal/models"
)

// rootAttr is an attribute of the TrainingCenterDatabase element other than
// the default namespace, such as a prefixed namespace declaration.
type rootAttr struct {
	Space string `json:"space,omitempty"`
	Local string `json:"local"`
	Value string `json:"value"`
}

// documentExtension keeps document-level content with no canonical slot.
type documentExtension struct {
	Workouts []models.TCXWorkout `json:"workouts,omitempty"`
	Attrs    []rootAttr          `json:"attrs,omitempty"`
}

// ToDocument converts a TrainingCenterDatabase to a canonical document. The
// first workout becomes the structured workout; further workouts are kept
// verbatim in the extension bag.
func (c *Converter) ToDocument(db *models.TCXDatabase) (*models.Document, error) {
	doc := &models.Document{Version: models.CurrentVersion, Type: models.FileRecordedActivity}

	var ext documentExtension
	for _, a := range db.Attrs {
		ext.Attrs = append(ext.Attrs, rootAttr{Space: a.Name.Space, Local: a.Name.Local, Value: a.Value})
	}

	if db.Workouts != nil && len(db.Workouts.Workout) > 0 {
		doc.SetWorkout(c.WorkoutToCanonical(&db.Workouts.Workout[0]))
		ext.Workouts = db.Workouts.Workout[1:]
		if len(ext.Workouts) == 0 {
			ext.Workouts = nil
		}
	}

	if db.Activities != nil {
		for i, a := range db.Activities.Activity {
			session, laps, records, err := c.ActivityToCanonical(a)
			if err != nil {
				return nil, fmt.Errorf("activity %d: %w", i, err)
			}
			doc.Sessions = append(doc.Sessions, session)
			doc.Laps = append(doc.Laps, laps...)
			doc.Records = append(doc.Records, records...)
		}
	}
	if len(doc.Sessions) == 0 && doc.Workout() != nil {
		doc.Type = models.FileStructuredWorkout
	}

	if ext.Workouts != nil || ext.Attrs != nil {
		if doc.Extensions == nil {
			doc.Extensions = &models.DocumentExtensions{}
		}
		if err := doc.Extensions.Formats.Set(models.ExtTCX, ext); err != nil {
			return nil, err
		}
	}

	doc.Metadata.Created = c.opts.Created()
	if len(doc.Sessions) > 0 {
		doc.Metadata.Created = doc.Sessions[0].StartTime
	}
	switch {
	case doc.Workout() != nil:
		doc.Metadata.Sport = string(doc.Workout().Sport)
	case len(doc.Sessions) > 0:
		doc.Metadata.Sport = string(doc.Sessions[0].Sport)
	default:
		doc.Metadata.Sport = string(c.opts.Sport())
	}
	return doc, nil
}

// FromDocument converts a canonical document to a TrainingCenterDatabase.
func (c *Converter) FromDocument(doc *models.Document) (*models.TCXDatabase, error) {
	db := &models.TCXDatabase{Xmlns: models.TCXNamespace}

	var ext documentExtension
	if doc.Extensions != nil {
		doc.Extensions.Formats.Decode(models.ExtTCX, &ext)
	}
	for _, a := range ext.Attrs {
		name := xml.Name{Space: a.Space, Local: a.Local}
		// Namespace declarations are written literally; encoding/xml would
		// otherwise treat "xmlns" as a namespace URL.
		if a.Space == "xmlns" {
			name = xml.Name{Local: "xmlns:" + a.Local}
		}
		db.Attrs = append(db.Attrs, xml.Attr{Name: name, Value: a.Value})
	}

	if w := doc.Workout(); w != nil || len(ext.Workouts) > 0 {
		db.Workouts = &models.TCXWorkouts{}
		if w != nil {
			db.Workouts.Workout = append(db.Workouts.Workout, c.WorkoutFromCanonical(w))
		}
		db.Workouts.Workout = append(db.Workouts.Workout, ext.Workouts...)
	}

	activities, err := c.ActivitiesFromCanonical(doc)
	if err != nil {
		return nil, err
	}
	if len(activities) > 0 {
		db.Activities = &models.TCXActivities{Activity: activities}
	}
	return db, nil
}

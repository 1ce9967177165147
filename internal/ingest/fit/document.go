package fit

import (
	"fmt"

	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/units"
)

// FIT file types.
const (
	fileWorkout  = "workout"
	fileActivity = "activity"
	fileCourse   = "course"
)

// documentExtension keeps file_id values with no canonical slot.
type documentExtension struct {
	FileType string `json:"fileType,omitempty"`
}

// ToDocument converts a decoded FIT stream to a canonical document.
func (c *Converter) ToDocument(f *models.FITFile) (*models.Document, error) {
	doc := &models.Document{
		Version: models.CurrentVersion,
		Metadata: models.Metadata{
			Manufacturer: f.FileID.Manufacturer,
			Product:      f.FileID.Product,
			SerialNumber: f.FileID.SerialNumber,
		},
	}

	switch f.FileID.Type {
	case fileWorkout:
		doc.Type = models.FileStructuredWorkout
	case fileActivity:
		doc.Type = models.FileRecordedActivity
	case fileCourse:
		doc.Type = models.FileCourse
	default:
		doc.Type = models.FileRecordedActivity
		if f.Workout != nil || len(f.WorkoutSteps) > 0 {
			doc.Type = models.FileStructuredWorkout
		}
		if f.FileID.Type != "" {
			c.log.Warn("unknown file type", "format", ingest.FormatFIT, "type", f.FileID.Type, "using", doc.Type)
			doc.Extensions = &models.DocumentExtensions{}
			if err := doc.Extensions.Formats.Set(models.ExtFIT, documentExtension{FileType: f.FileID.Type}); err != nil {
				return nil, err
			}
		}
	}

	if f.FileID.TimeCreated != nil {
		doc.Metadata.Created = units.UnixToISO(*f.FileID.TimeCreated)
	} else {
		doc.Metadata.Created = c.opts.Created()
	}

	if f.Workout != nil || len(f.WorkoutSteps) > 0 {
		doc.SetWorkout(c.WorkoutToCanonical(f.Workout, f.WorkoutSteps))
	}

	var err error
	if doc.Sessions, err = ingest.ConvertBatch(f.Sessions, c.SessionToCanonical); err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	if doc.Laps, err = ingest.ConvertBatch(f.Laps, c.LapToCanonical); err != nil {
		return nil, fmt.Errorf("laps: %w", err)
	}
	if doc.Records, err = RecordsToCanonical(f.Records); err != nil {
		return nil, fmt.Errorf("records: %w", err)
	}
	if doc.Events, err = ingest.ConvertBatch(f.Events, c.EventToCanonical); err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	switch {
	case doc.Workout() != nil:
		doc.Metadata.Sport = string(doc.Workout().Sport)
		doc.Metadata.SubSport = doc.Workout().SubSport
	case len(doc.Sessions) > 0:
		doc.Metadata.Sport = string(doc.Sessions[0].Sport)
		doc.Metadata.SubSport = doc.Sessions[0].SubSport
	default:
		doc.Metadata.Sport = string(c.opts.Sport())
	}
	return doc, nil
}

// FromDocument converts a canonical document to a FIT message stream.
func (c *Converter) FromDocument(doc *models.Document) (*models.FITFile, error) {
	f := &models.FITFile{
		FileID: models.FITFileID{
			Manufacturer: doc.Metadata.Manufacturer,
			Product:      doc.Metadata.Product,
			SerialNumber: doc.Metadata.SerialNumber,
		},
	}

	switch doc.Type {
	case models.FileStructuredWorkout:
		f.FileID.Type = fileWorkout
	case models.FileCourse:
		f.FileID.Type = fileCourse
	default:
		f.FileID.Type = fileActivity
	}
	if doc.Extensions != nil {
		var ext documentExtension
		if doc.Extensions.Formats.Decode(models.ExtFIT, &ext) && ext.FileType != "" {
			f.FileID.Type = ext.FileType
		}
	}

	if doc.Metadata.Created != "" {
		sec, err := units.ISOToUnix(doc.Metadata.Created)
		if err != nil {
			return nil, models.ValidationErrors{{Field: "metadata.created", Message: "must be an ISO-8601 timestamp"}}
		}
		f.FileID.TimeCreated = &sec
	}

	if w := doc.Workout(); w != nil {
		f.Workout, f.WorkoutSteps = c.WorkoutFromCanonical(w)
	}

	var err error
	if f.Sessions, err = ingest.ConvertBatch(doc.Sessions, c.SessionFromCanonical); err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	if f.Laps, err = ingest.ConvertBatch(doc.Laps, c.LapFromCanonical); err != nil {
		return nil, fmt.Errorf("laps: %w", err)
	}
	if f.Records, err = RecordsFromCanonical(doc.Records); err != nil {
		return nil, fmt.Errorf("records: %w", err)
	}
	if f.Events, err = ingest.ConvertBatch(doc.Events, c.EventFromCanonical); err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	return f, nil
}

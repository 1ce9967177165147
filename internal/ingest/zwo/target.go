package zwo

import (
	"github.com/claude/workouthub/internal/ingest"
	"github.com/claude/workouthub/internal/models"
	"github.com/claude/workouthub/internal/units"
)

// Pace zones Zwift knows: 1 mile, 5k, 10k, half marathon, marathon.
const (
	minPaceZone = 1
	maxPaceZone = 5
)

// attrs is the target-bearing subset of a segment's attributes.
type attrs struct {
	Power   *float64
	Cadence *float64
	Pace    *int
}

// TargetToCanonical resolves a steady segment's target. Power outranks
// cadence, which outranks the pace zone. Cadence is stored per foot for
// running and halved to rpm.
func TargetToCanonical(a attrs, sport models.Sport) (models.Target, ingest.Outcome) {
	switch {
	case a.Power != nil:
		return models.PowerTarget{Value: models.PercentFTP(units.FTPRatioToPercent(*a.Power))}, ingest.Mapped
	case a.Cadence != nil:
		return models.CadenceTarget{Value: models.RPM(units.FromNativeCadence(*a.Cadence, string(sport)))}, ingest.Mapped
	case a.Pace != nil:
		if *a.Pace < minPaceZone || *a.Pace > maxPaceZone {
			return models.OpenTarget{}, ingest.Preserved
		}
		return models.PaceTarget{Value: models.Zone(*a.Pace)}, ingest.Mapped
	}
	return models.OpenTarget{}, ingest.Mapped
}

// rampTarget is the midpoint of a PowerLow..PowerHigh ramp as percent of FTP.
// A lone Power attribute is used as is.
func rampTarget(low, high, power *float64) models.Target {
	switch {
	case low != nil && high != nil:
		return models.PowerTarget{Value: models.PercentFTP(units.FTPRatioToPercent((*low + *high) / 2))}
	case power != nil:
		return models.PowerTarget{Value: models.PercentFTP(units.FTPRatioToPercent(*power))}
	}
	return models.OpenTarget{}
}

// TargetFromCanonical returns the attributes expressing t. It reports false
// when t has no steady-segment form; open targets return empty attrs and true.
func TargetFromCanonical(t models.Target, sport models.Sport) (attrs, bool) {
	switch t := t.(type) {
	case models.OpenTarget, nil:
		return attrs{}, true
	case models.PowerTarget:
		if s, ok := t.Value.(models.Scalar); ok && s.Kind == models.UnitPercentFTP {
			return attrs{Power: models.Ptr(units.PercentToFTPRatio(s.Value))}, true
		}
	case models.CadenceTarget:
		if s, ok := t.Value.(models.Scalar); ok && s.Kind == models.UnitRPM {
			return attrs{Cadence: models.Ptr(units.ToNativeCadence(s.Value, string(sport)))}, true
		}
	case models.PaceTarget:
		if s, ok := t.Value.(models.Scalar); ok && s.Kind == models.UnitZone {
			return attrs{Pace: models.Ptr(int(s.Value))}, true
		}
	}
	return attrs{}, false
}

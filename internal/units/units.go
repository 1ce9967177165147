// Package units holds the numeric conversions shared by every format adapter.
package units

import (
	"math"
	"strings"
	"time"
)

// semicircleScale is 2^31 / 180.
const semicircleScale = 2147483648.0 / 180.0

// SemicirclesToDegrees converts a FIT semicircle coordinate to signed degrees.
func SemicirclesToDegrees(s int32) float64 {
	return float64(s) / semicircleScale
}

// DegreesToSemicircles converts signed degrees to a FIT semicircle coordinate.
// Values outside the int32 range are clamped.
func DegreesToSemicircles(deg float64) int32 {
	v := math.Round(deg * semicircleScale)
	switch {
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

func isRunning(sport string) bool {
	return strings.EqualFold(sport, "running")
}

// ToNativeCadence converts revolutions per minute to the native unit for the
// sport. Running cadence is stored as steps per minute, two per revolution.
func ToNativeCadence(rpm float64, sport string) float64 {
	if isRunning(sport) {
		return rpm * 2
	}
	return rpm
}

// FromNativeCadence is the inverse of ToNativeCadence.
func FromNativeCadence(native float64, sport string) float64 {
	if isRunning(sport) {
		return native / 2
	}
	return native
}

// FTPRatioToPercent converts an FTP ratio (1.0 = 100%) to a percentage.
func FTPRatioToPercent(ratio float64) float64 {
	return Round(ratio*100, 2)
}

// PercentToFTPRatio converts an FTP percentage to a ratio.
func PercentToFTPRatio(percent float64) float64 {
	return Round(percent/100, 4)
}

// PaceToSpeed converts seconds per kilometer to meters per second.
// It reports false for zero, negative or NaN input.
func PaceToSpeed(secPerKm float64) (float64, bool) {
	if math.IsNaN(secPerKm) || secPerKm <= 0 {
		return 0, false
	}
	return 1000 / secPerKm, true
}

// SpeedToPace converts meters per second to seconds per kilometer.
// It reports false for zero, negative or NaN input.
func SpeedToPace(mps float64) (float64, bool) {
	if math.IsNaN(mps) || mps <= 0 {
		return 0, false
	}
	return 1000 / mps, true
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// UnixToISO formats Unix seconds as an RFC 3339 UTC timestamp.
func UnixToISO(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(time.RFC3339)
}

// ISOToUnix parses an ISO-8601 timestamp and returns whole Unix seconds.
// Sub-second precision is truncated.
func ISOToUnix(s string) (int64, error) {
	t, err := ParseISO(s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// ParseISO parses the ISO-8601 forms seen in workout files: RFC 3339 with or
// without fractional seconds, and local date-times without an offset (read as UTC).
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.Parse("2006-01-02T15:04:05", s); err2 == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

// FormatISO renders t as an RFC 3339 UTC timestamp without fractional seconds.
func FormatISO(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

package roundtrip

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"time"
)

// Violation is one field that differs beyond its tolerance. A nil side means
// the field is absent there.
type Violation struct {
	Field     string     `json:"field"`
	Original  any        `json:"original"`
	Reencoded any        `json:"reencoded"`
	Tolerance *Tolerance `json:"tolerance,omitempty"`
}

// Report is the outcome of a round trip. An empty Violations list means the
// converter pair is faithful.
type Report struct {
	Format     string      `json:"format"`
	Compared   int         `json:"compared"`
	Violations []Violation `json:"violations"`
}

// Passed reports whether no field exceeded its tolerance.
func (r *Report) Passed() bool {
	return len(r.Violations) == 0
}

// Check decodes original to the canonical form, re-encodes it, and compares
// the two native values under policy.
func Check[T, C any](original T, toCanonical func(T) (C, error), fromCanonical func(C) (T, error), policy Policy) (*Report, error) {
	canonical, err := toCanonical(original)
	if err != nil {
		return nil, fmt.Errorf("to canonical: %w", err)
	}
	reencoded, err := fromCanonical(canonical)
	if err != nil {
		return nil, fmt.Errorf("from canonical: %w", err)
	}
	return Compare(original, reencoded, policy)
}

// Compare flattens both values through their JSON form and checks every leaf.
func Compare(original, reencoded any, policy Policy) (*Report, error) {
	a, err := Flatten(original)
	if err != nil {
		return nil, fmt.Errorf("flattening original: %w", err)
	}
	b, err := Flatten(reencoded)
	if err != nil {
		return nil, fmt.Errorf("flattening re-encoded: %w", err)
	}

	keys := map[string]struct{}{}
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}

	report := &Report{Violations: []Violation{}}
	for _, field := range slices.Sorted(maps.Keys(keys)) {
		report.Compared++
		av, aok := a[field]
		bv, bok := b[field]
		if !aok || !bok {
			report.Violations = append(report.Violations, Violation{Field: field, Original: av, Reencoded: bv})
			continue
		}
		tol, hasTol := policy.Lookup(field)
		if equalWithin(av, bv, tol, hasTol) {
			continue
		}
		v := Violation{Field: field, Original: av, Reencoded: bv}
		if hasTol {
			v.Tolerance = &tol
		}
		report.Violations = append(report.Violations, v)
	}
	return report, nil
}

func equalWithin(a, b any, tol Tolerance, hasTol bool) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return false
		}
		if !hasTol {
			return av == bv
		}
		return tol.Allows(av, bv)
	case string:
		bv, ok := b.(string)
		if !ok {
			return false
		}
		if av == bv {
			return true
		}
		if !hasTol {
			return false
		}
		// Timestamps in text formats compare as seconds.
		ta, errA := time.Parse(time.RFC3339Nano, av)
		tb, errB := time.Parse(time.RFC3339Nano, bv)
		if errA != nil || errB != nil {
			return false
		}
		return tol.Allows(float64(ta.UnixNano())/1e9, float64(tb.UnixNano())/1e9)
	}
	return a == b
}

// Flatten maps every JSON leaf of v to a dotted path, with array indices in
// brackets: "laps[0].totalDistance". Nulls, empty objects and empty arrays
// yield no leaves.
func Flatten(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out := map[string]any{}
	flatten("", tree, out)
	return out, nil
}

func flatten(prefix string, v any, out map[string]any) {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			p := k
			if prefix != "" {
				p = prefix + "." + k
			}
			flatten(p, child, out)
		}
	case []any:
		for i, child := range v {
			flatten(prefix+"["+strconv.Itoa(i)+"]", child, out)
		}
	case nil:
	default:
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return
		}
		out[prefix] = v
	}
}

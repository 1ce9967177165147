package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Format keys of the extension bag.
const (
	ExtFIT   = "fit"
	ExtTCX   = "tcx"
	ExtZwift = "zwift"
)

// Extensions holds format-scoped data the canonical model has no slot for,
// keyed by format. Values are opaque to everything but the owning adapter.
type Extensions map[string]json.RawMessage

// Set stores v under the format key, allocating the bag if needed.
func (e *Extensions) Set(format string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s extension: %w", format, err)
	}
	if *e == nil {
		*e = Extensions{}
	}
	(*e)[format] = raw
	return nil
}

// Decode unmarshals the record stored under format into v. It reports false
// when the record is missing or does not fit v; callers then fall back to
// re-deriving the native value.
func (e Extensions) Decode(format string, v any) bool {
	raw, ok := e[format]
	if !ok || len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// Clone returns an independent copy of the bag.
func (e Extensions) Clone() Extensions {
	if e == nil {
		return nil
	}
	out := make(Extensions, len(e))
	for k, v := range e {
		out[k] = slices.Clone(v)
	}
	return out
}

// Formats lists the keys present, sorted.
func (e Extensions) Formats() []string {
	return slices.Sorted(maps.Keys(e))
}

package ingest

// Outcome reports how a disambiguator resolved a native field.
type Outcome int

const (
	// Mapped means the canonical slot holds the value.
	Mapped Outcome = iota
	// Preserved means the value has no canonical slot but is restorable: the
	// canonical field gets the default and the native fields go to the
	// extension bag.
	Preserved
	// Unknown means the encoding was not recognized. It is handled like
	// Preserved and additionally logged.
	Unknown
)

// Keep reports whether the native fields belong in the extension bag.
func (o Outcome) Keep() bool {
	return o != Mapped
}

func (o Outcome) String() string {
	switch o {
	case Mapped:
		return "mapped"
	case Preserved:
		return "preserved"
	case Unknown:
		return "unknown"
	}
	return "invalid"
}

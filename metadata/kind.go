package metadata

import (
	"fmt"
	"strings"

	"github.com/mtgeo/mtseries/errs"
)

// ChannelKind is the static tagged union of the three channel categories.
// Each kind maps at compile time to its record type via NewChannelRecord.
type ChannelKind uint8

const (
	KindElectric ChannelKind = iota
	KindMagnetic
	KindAuxiliary
)

func (k ChannelKind) String() string {
	switch k {
	case KindElectric:
		return "electric"
	case KindMagnetic:
		return "magnetic"
	case KindAuxiliary:
		return "auxiliary"
	default:
		return "unknown"
	}
}

// ParseChannelKind resolves a kind name, case-insensitively.
// Returns errs.ErrInvalidChannelKind for anything that is not electric,
// magnetic or auxiliary.
func ParseChannelKind(name string) (ChannelKind, error) {
	switch strings.ToLower(name) {
	case "electric":
		return KindElectric, nil
	case "magnetic":
		return KindMagnetic, nil
	case "auxiliary":
		return KindAuxiliary, nil
	default:
		return 0, fmt.Errorf("%w: %q, must be [ electric | magnetic | auxiliary ]",
			errs.ErrInvalidChannelKind, name)
	}
}

// ValidComponent reports whether a component name's leading character is
// allowed for this kind: electric components start with "e", magnetic with
// "h" or "b", auxiliary with anything that does not collide with the other
// two.
func (k ChannelKind) ValidComponent(component string) bool {
	if component == "" {
		return false
	}

	prefix := strings.ToLower(component[:1])
	switch k {
	case KindElectric:
		return prefix == "e"
	case KindMagnetic:
		return prefix == "h" || prefix == "b"
	case KindAuxiliary:
		return prefix != "e" && prefix != "h" && prefix != "b"
	default:
		return false
	}
}

// KindForComponent classifies a component name by its leading character
// using the exchange-format rules: e and q map to electric, h, b and f to
// magnetic, everything else to auxiliary.
func KindForComponent(component string) ChannelKind {
	if component == "" {
		return KindAuxiliary
	}

	switch strings.ToLower(component[:1]) {
	case "e", "q":
		return KindElectric
	case "h", "b", "f":
		return KindMagnetic
	default:
		return KindAuxiliary
	}
}

// KindForRecordedComponent classifies a component name for the run-level
// channels-recorded lists: e maps to electric, h and b to magnetic,
// everything else to auxiliary.
func KindForRecordedComponent(component string) ChannelKind {
	if component == "" {
		return KindAuxiliary
	}

	switch strings.ToLower(component[:1]) {
	case "e":
		return KindElectric
	case "h", "b":
		return KindMagnetic
	default:
		return KindAuxiliary
	}
}

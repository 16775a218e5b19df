package metadata

import "fmt"

// Channel holds the fields shared by all three channel record kinds.
type Channel struct {
	Component     string
	ChannelNumber int
	SampleRate    float64
	Units         string
	TimePeriod    TimePeriod
}

// ChannelRecord is the validated record attached to a ChannelSeries. The
// three implementations form a closed set: Electric, Magnetic and
// Auxiliary, one per ChannelKind.
type ChannelRecord interface {
	// Kind returns the record's channel kind tag.
	Kind() ChannelKind

	// Base returns the shared channel fields for in-place update.
	Base() *Channel

	// ToMap flattens the record into dotted field paths.
	ToMap() map[string]any

	// FromMap fills the record from dotted field paths, unwrapping a map
	// nested under the kind's name first. Unknown keys are ignored.
	FromMap(m map[string]any) error

	// AttributeByPath returns a single field by its dotted path.
	AttributeByPath(path string) (any, error)

	// Clone returns an independent deep copy.
	Clone() ChannelRecord
}

// NewChannelRecord returns a fresh record of the given kind. This is the
// compile-time kind-to-record table; there is no runtime registry.
func NewChannelRecord(kind ChannelKind) ChannelRecord {
	switch kind {
	case KindElectric:
		return &Electric{}
	case KindMagnetic:
		return &Magnetic{}
	default:
		return &Auxiliary{}
	}
}

func (c *Channel) toMap(kind ChannelKind) map[string]any {
	m := map[string]any{
		"type":           kind.String(),
		"component":      c.Component,
		"channel_number": float64(c.ChannelNumber),
		"sample_rate":    c.SampleRate,
		"units":          c.Units,
	}
	c.TimePeriod.toMap(m, "")

	return m
}

func (c *Channel) fromMap(m map[string]any) error {
	for key, v := range m {
		var err error
		switch key {
		case "component":
			c.Component, err = coerceString(v)
		case "channel_number":
			var f float64
			f, err = coerceFloat(v)
			c.ChannelNumber = int(f)
		case "sample_rate":
			c.SampleRate, err = coerceFloat(v)
		case "units":
			c.Units, err = coerceString(v)
		}
		if err != nil {
			return fmt.Errorf("channel field %q: %w", key, err)
		}
	}

	return c.TimePeriod.fromMap(m, "")
}

// Electric is the record type for electric field channels.
type Electric struct {
	Channel
	DipoleLength float64
}

func (e *Electric) Kind() ChannelKind { return KindElectric }
func (e *Electric) Base() *Channel    { return &e.Channel }

func (e *Electric) ToMap() map[string]any {
	m := e.toMap(KindElectric)
	m["dipole_length"] = e.DipoleLength

	return m
}

func (e *Electric) FromMap(m map[string]any) error {
	m = unwrapKey(m, "electric")
	if v, ok := m["dipole_length"]; ok {
		f, err := coerceFloat(v)
		if err != nil {
			return fmt.Errorf("electric field \"dipole_length\": %w", err)
		}
		e.DipoleLength = f
	}

	return e.fromMap(m)
}

func (e *Electric) AttributeByPath(path string) (any, error) {
	return attributeByPath(e.ToMap(), path)
}

func (e *Electric) Clone() ChannelRecord {
	out := *e

	return &out
}

// Magnetic is the record type for magnetic field channels.
type Magnetic struct {
	Channel
	SensorID           string
	SensorManufacturer string
}

func (mg *Magnetic) Kind() ChannelKind { return KindMagnetic }
func (mg *Magnetic) Base() *Channel    { return &mg.Channel }

func (mg *Magnetic) ToMap() map[string]any {
	m := mg.toMap(KindMagnetic)
	m["sensor.id"] = mg.SensorID
	m["sensor.manufacturer"] = mg.SensorManufacturer

	return m
}

func (mg *Magnetic) FromMap(m map[string]any) error {
	m = unwrapKey(m, "magnetic")
	for key, target := range map[string]*string{
		"sensor.id":           &mg.SensorID,
		"sensor.manufacturer": &mg.SensorManufacturer,
	} {
		if v, ok := m[key]; ok {
			s, err := coerceString(v)
			if err != nil {
				return fmt.Errorf("magnetic field %q: %w", key, err)
			}
			*target = s
		}
	}

	return mg.fromMap(m)
}

func (mg *Magnetic) AttributeByPath(path string) (any, error) {
	return attributeByPath(mg.ToMap(), path)
}

func (mg *Magnetic) Clone() ChannelRecord {
	out := *mg

	return &out
}

// Auxiliary is the record type for any channel that is neither electric nor
// magnetic, e.g. temperature or battery voltage.
type Auxiliary struct {
	Channel
}

func (a *Auxiliary) Kind() ChannelKind { return KindAuxiliary }
func (a *Auxiliary) Base() *Channel    { return &a.Channel }

func (a *Auxiliary) ToMap() map[string]any {
	return a.toMap(KindAuxiliary)
}

func (a *Auxiliary) FromMap(m map[string]any) error {
	m = unwrapKey(m, "auxiliary")

	return a.fromMap(m)
}

func (a *Auxiliary) AttributeByPath(path string) (any, error) {
	return attributeByPath(a.ToMap(), path)
}

func (a *Auxiliary) Clone() ChannelRecord {
	out := *a

	return &out
}

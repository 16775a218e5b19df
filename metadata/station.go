package metadata

import (
	"fmt"
	"strings"
)

// FDSN identifies the station within the FDSN exchange namespace.
type FDSN struct {
	ID      string
	Network string
}

// Location is a geographic position in decimal degrees and meters.
type Location struct {
	Latitude  float64
	Longitude float64
	Elevation float64
}

// Station describes the station a channel or run belongs to. Attached to
// every channel so an extracted channel stays self-describing.
type Station struct {
	ID               string
	FDSN             FDSN
	Location         Location
	TimePeriod       TimePeriod
	ChannelsRecorded []string
}

// NewStation creates an empty station record.
func NewStation() *Station {
	return &Station{}
}

// ToMap flattens the record into dotted field paths, e.g.
// "time_period.start" and "fdsn.id".
func (s *Station) ToMap() map[string]any {
	m := map[string]any{
		"id":                 s.ID,
		"fdsn.id":            s.FDSN.ID,
		"fdsn.network":       s.FDSN.Network,
		"location.latitude":  s.Location.Latitude,
		"location.longitude": s.Location.Longitude,
		"location.elevation": s.Location.Elevation,
		"channels_recorded":  append([]string(nil), s.ChannelsRecorded...),
	}
	s.TimePeriod.toMap(m, "")

	return m
}

// FromMap fills the record from dotted field paths, ignoring unknown keys.
// A map nested under a "station" key is unwrapped first.
func (s *Station) FromMap(m map[string]any) error {
	m = unwrapKey(m, "station")

	for key, v := range m {
		var err error
		switch key {
		case "id":
			s.ID, err = coerceString(v)
		case "fdsn.id":
			s.FDSN.ID, err = coerceString(v)
		case "fdsn.network":
			s.FDSN.Network, err = coerceString(v)
		case "location.latitude":
			s.Location.Latitude, err = coerceFloat(v)
		case "location.longitude":
			s.Location.Longitude, err = coerceFloat(v)
		case "location.elevation":
			s.Location.Elevation, err = coerceFloat(v)
		case "channels_recorded":
			s.ChannelsRecorded, err = coerceStrings(v)
		}
		if err != nil {
			return fmt.Errorf("station field %q: %w", key, err)
		}
	}

	return s.TimePeriod.fromMap(m, "")
}

// AttributeByPath returns a single field by its dotted path.
func (s *Station) AttributeByPath(path string) (any, error) {
	return attributeByPath(s.ToMap(), path)
}

// Clone returns an independent deep copy.
func (s *Station) Clone() *Station {
	out := *s
	out.ChannelsRecorded = append([]string(nil), s.ChannelsRecorded...)

	return &out
}

// unwrapKey strips a single enclosing {"station": {...}}-style wrapper,
// matching the key case-insensitively. Flat maps pass through unchanged.
func unwrapKey(m map[string]any, key string) map[string]any {
	if len(m) != 1 {
		return m
	}
	for k, inner := range m {
		if strings.EqualFold(k, key) {
			if im, ok := inner.(map[string]any); ok {
				return im
			}
		}
	}

	return m
}

func attributeByPath(m map[string]any, path string) (any, error) {
	if v, ok := m[path]; ok {
		return v, nil
	}

	return nil, fmt.Errorf("no attribute at path %q", path)
}

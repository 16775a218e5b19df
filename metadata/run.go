package metadata

import "fmt"

// Run describes one continuous acquisition session. The channels-recorded
// lists are maintained by RunSeries.ValidateMetadata and classify every
// component name by kind.
type Run struct {
	ID         string
	DataType   string
	SampleRate float64
	TimePeriod TimePeriod

	ChannelsRecordedElectric  []string
	ChannelsRecordedMagnetic  []string
	ChannelsRecordedAuxiliary []string
}

// NewRun creates an empty run record.
func NewRun() *Run {
	return &Run{}
}

// ToMap flattens the record into dotted field paths.
func (r *Run) ToMap() map[string]any {
	m := map[string]any{
		"id":                          r.ID,
		"data_type":                   r.DataType,
		"sample_rate":                 r.SampleRate,
		"channels_recorded_electric":  append([]string(nil), r.ChannelsRecordedElectric...),
		"channels_recorded_magnetic":  append([]string(nil), r.ChannelsRecordedMagnetic...),
		"channels_recorded_auxiliary": append([]string(nil), r.ChannelsRecordedAuxiliary...),
	}
	r.TimePeriod.toMap(m, "")

	return m
}

// FromMap fills the record from dotted field paths, ignoring unknown keys.
// A map nested under a "run" key is unwrapped first.
func (r *Run) FromMap(m map[string]any) error {
	m = unwrapKey(m, "run")

	for key, v := range m {
		var err error
		switch key {
		case "id":
			r.ID, err = coerceString(v)
		case "data_type":
			r.DataType, err = coerceString(v)
		case "sample_rate":
			r.SampleRate, err = coerceFloat(v)
		case "channels_recorded_electric":
			r.ChannelsRecordedElectric, err = coerceStrings(v)
		case "channels_recorded_magnetic":
			r.ChannelsRecordedMagnetic, err = coerceStrings(v)
		case "channels_recorded_auxiliary":
			r.ChannelsRecordedAuxiliary, err = coerceStrings(v)
		}
		if err != nil {
			return fmt.Errorf("run field %q: %w", key, err)
		}
	}

	return r.TimePeriod.fromMap(m, "")
}

// AttributeByPath returns a single field by its dotted path.
func (r *Run) AttributeByPath(path string) (any, error) {
	return attributeByPath(r.ToMap(), path)
}

// Clone returns an independent deep copy.
func (r *Run) Clone() *Run {
	out := *r
	out.ChannelsRecordedElectric = append([]string(nil), r.ChannelsRecordedElectric...)
	out.ChannelsRecordedMagnetic = append([]string(nil), r.ChannelsRecordedMagnetic...)
	out.ChannelsRecordedAuxiliary = append([]string(nil), r.ChannelsRecordedAuxiliary...)

	return &out
}

package timeseries

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/mtgeo/mtseries/errs"
	"github.com/mtgeo/mtseries/internal/options"
	"github.com/mtgeo/mtseries/metadata"
	"github.com/mtgeo/mtseries/trace"
	"github.com/mtgeo/mtseries/tsindex"
)

// fallbackStart labels data loaded before a start time has been set.
var fallbackStart = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// ChannelSeries is one channel's sample vector on a synthesized uniform
// time axis, carrying three layered metadata records (channel, station,
// run) so the channel stays self-describing when extracted standalone.
//
// Derived quantities follow a two-state rule: while samples are present,
// sample rate and time bounds are read from the axis and mirrored into the
// channel metadata after every mutation; without samples they fall back to
// the values stored in the metadata record.
type ChannelSeries struct {
	kind    metadata.ChannelKind
	samples []float64
	index   *tsindex.TimeIndex

	meta     metadata.ChannelRecord
	station  *metadata.Station
	run      *metadata.Run
	response *metadata.ChannelResponse

	logger *zap.Logger
}

// ChannelOption configures a ChannelSeries during construction.
type ChannelOption = options.Option[*ChannelSeries]

// WithChannelMetadata attaches channel metadata, given either as a record
// of the channel's kind or as a raw attribute map (flat, or nested under
// the kind's name). Any other shape fails with errs.ErrMetadataType.
func WithChannelMetadata(meta any) ChannelOption {
	return options.New(func(cs *ChannelSeries) error {
		switch mv := meta.(type) {
		case metadata.ChannelRecord:
			if mv.Kind() != cs.kind {
				return fmt.Errorf("%w: %s metadata on a %s channel",
					errs.ErrMetadataType, mv.Kind(), cs.kind)
			}

			return cs.meta.FromMap(mv.ToMap())
		case map[string]any:
			return cs.meta.FromMap(mv)
		default:
			return fmt.Errorf("%w: channel metadata must be a %s record or a map, not %T",
				errs.ErrMetadataType, cs.kind, meta)
		}
	})
}

// WithStationMetadata attaches station metadata, given as a *Station record
// or a raw attribute map.
func WithStationMetadata(meta any) ChannelOption {
	return options.New(func(cs *ChannelSeries) error {
		switch mv := meta.(type) {
		case *metadata.Station:
			return cs.station.FromMap(mv.ToMap())
		case map[string]any:
			return cs.station.FromMap(mv)
		default:
			return fmt.Errorf("%w: station metadata must be *metadata.Station or a map, not %T",
				errs.ErrMetadataType, meta)
		}
	})
}

// WithRunMetadata attaches run metadata, given as a *Run record or a raw
// attribute map.
func WithRunMetadata(meta any) ChannelOption {
	return options.New(func(cs *ChannelSeries) error {
		switch mv := meta.(type) {
		case *metadata.Run:
			return cs.run.FromMap(mv.ToMap())
		case map[string]any:
			return cs.run.FromMap(mv)
		default:
			return fmt.Errorf("%w: run metadata must be *metadata.Run or a map, not %T",
				errs.ErrMetadataType, meta)
		}
	})
}

// WithResponse attaches the instrument response filter chain.
func WithResponse(response *metadata.ChannelResponse) ChannelOption {
	return options.NoError(func(cs *ChannelSeries) {
		cs.response = response.Clone()
	})
}

// WithChannelLogger routes the channel's advisory warnings to the given
// logger. The default is a no-op logger.
func WithChannelLogger(logger *zap.Logger) ChannelOption {
	return options.NoError(func(cs *ChannelSeries) {
		cs.logger = logger.With(zap.String("component", "channel_series"))
	})
}

// NewChannelSeries creates a channel of the given kind ("electric",
// "magnetic" or "auxiliary"), optionally loading an initial sample vector.
// data may be nil for a metadata-only channel.
//
// Returns errs.ErrInvalidChannelKind for an unrecognized kind,
// errs.ErrMetadataType when a metadata option carries the wrong record
// type, and errs.ErrComponentKindMismatch when the metadata names a
// component belonging to a different kind.
func NewChannelSeries(kind string, data []float64, opts ...ChannelOption) (*ChannelSeries, error) {
	k, err := metadata.ParseChannelKind(kind)
	if err != nil {
		return nil, err
	}

	cs := &ChannelSeries{
		kind:    k,
		meta:    metadata.NewChannelRecord(k),
		station: metadata.NewStation(),
		run:     metadata.NewRun(),
		logger:  zap.NewNop(),
	}

	if err := options.Apply(cs, opts...); err != nil {
		return nil, err
	}

	// the import classification (e/q, h/b/f) is accepted alongside the
	// strict prefix rule so trace-derived components survive construction
	if comp := cs.meta.Base().Component; comp != "" &&
		!cs.kind.ValidComponent(comp) && metadata.KindForComponent(comp) != cs.kind {
		return nil, fmt.Errorf("%w: component %q on a %s channel",
			errs.ErrComponentKindMismatch, comp, cs.kind)
	}

	if data != nil {
		if err := cs.SetSamples(data); err != nil {
			return nil, err
		}
	}

	cs.syncMetadata()

	return cs, nil
}

// Kind returns the channel's kind tag.
func (cs *ChannelSeries) Kind() metadata.ChannelKind {
	return cs.kind
}

// ChannelMetadata returns the channel-kind record. The series retains
// ownership; it is re-synchronized from the data after every mutation.
func (cs *ChannelSeries) ChannelMetadata() metadata.ChannelRecord {
	return cs.meta
}

// StationMetadata returns the layered station record.
func (cs *ChannelSeries) StationMetadata() *metadata.Station {
	return cs.station
}

// RunMetadata returns the layered run record.
func (cs *ChannelSeries) RunMetadata() *metadata.Run {
	return cs.run
}

// Response returns the instrument response filter chain, or nil.
func (cs *ChannelSeries) Response() *metadata.ChannelResponse {
	return cs.response
}

// Samples returns the raw sample vector. The series retains ownership.
func (cs *ChannelSeries) Samples() []float64 {
	return cs.samples
}

// TimeIndex returns the synthesized time axis, or nil when no data is
// loaded.
func (cs *ChannelSeries) TimeIndex() *tsindex.TimeIndex {
	return cs.index
}

// HasData reports whether a sample vector with a valid axis is loaded.
func (cs *ChannelSeries) HasData() bool {
	return cs.index != nil && len(cs.samples) > 0
}

// NSamples returns the number of loaded samples.
func (cs *ChannelSeries) NSamples() int {
	return len(cs.samples)
}

// SetNSamples is a no-op: the sample count is derived from the data. Use
// Resample or GetSlice instead. Logged as a warning.
func (cs *ChannelSeries) SetNSamples(int) {
	cs.logger.Warn("cannot set n_samples; use Resample or GetSlice")
}

// Component returns the component name, e.g. "ex".
func (cs *ChannelSeries) Component() string {
	return cs.meta.Base().Component
}

// SetComponent sets the component name after validating its leading
// character against the channel kind. Returns errs.ErrComponentKindMismatch
// when the name belongs to a different kind; create a new ChannelSeries
// instead of repurposing one across kinds.
func (cs *ChannelSeries) SetComponent(component string) error {
	if !cs.kind.ValidComponent(component) {
		return fmt.Errorf("%w: component %q on a %s channel",
			errs.ErrComponentKindMismatch, component, cs.kind)
	}

	cs.meta.Base().Component = component
	cs.syncMetadata()

	return nil
}

// SetKind converts the channel to another kind, rebuilding the metadata
// record. Shared base fields carry over; kind-specific fields such as a
// dipole length or sensor id do not survive the conversion. The current
// component must be acceptable for the new kind, under the same rule as
// construction, or errs.ErrComponentKindMismatch is returned.
func (cs *ChannelSeries) SetKind(kind string) error {
	k, err := metadata.ParseChannelKind(kind)
	if err != nil {
		return err
	}
	if k == cs.kind {
		return nil
	}

	if comp := cs.meta.Base().Component; comp != "" &&
		!k.ValidComponent(comp) && metadata.KindForComponent(comp) != k {
		return fmt.Errorf("%w: component %q on a %s channel",
			errs.ErrComponentKindMismatch, comp, k)
	}

	meta := metadata.NewChannelRecord(k)
	*meta.Base() = *cs.meta.Base()
	cs.kind = k
	cs.meta = meta
	cs.syncMetadata()

	return nil
}

// SampleRate returns the sample rate derived from the time axis, falling
// back to the metadata record when no data is loaded.
func (cs *ChannelSeries) SampleRate() float64 {
	if cs.HasData() {
		return cs.index.SampleRate()
	}

	return cs.meta.Base().SampleRate
}

// SetSampleRate stores a sample rate in the channel metadata. It never
// resamples loaded data; changing the effective rate of existing samples
// requires Resample. With data present the stored value is advisory only
// and a warning is logged.
func (cs *ChannelSeries) SetSampleRate(rate float64) {
	if cs.HasData() {
		cs.logger.Warn("data is loaded; stored sample rate does not resample it, use Resample",
			zap.Float64("axis_rate", cs.index.SampleRate()),
			zap.Float64("requested_rate", rate))
	}

	cs.meta.Base().SampleRate = rate
}

// Start returns the first axis instant, falling back to the metadata record
// when no data is loaded.
func (cs *ChannelSeries) Start() time.Time {
	if cs.HasData() {
		return cs.index.Start()
	}

	return cs.meta.Base().TimePeriod.Start
}

// SetStart moves the series start. With data loaded and a start that
// differs from the current first instant, the whole axis is regenerated
// from the new start: samples keep their order and are relabeled, not
// shifted. Without data only the metadata is updated.
func (cs *ChannelSeries) SetStart(start time.Time) error {
	start = start.UTC()
	cs.meta.Base().TimePeriod.Start = start

	if cs.HasData() && !start.Equal(cs.index.Start()) {
		ix, err := tsindex.New(start, cs.index.SampleRate(), cs.index.Len())
		if err != nil {
			return err
		}
		cs.index = ix
	}

	cs.syncMetadata()

	return nil
}

// End returns the last axis instant, falling back to the metadata record
// when no data is loaded. End is derived and cannot be set; see SetEnd.
func (cs *ChannelSeries) End() time.Time {
	if cs.HasData() {
		return cs.index.End()
	}

	return cs.meta.Base().TimePeriod.End
}

// SetEnd is a no-op: the end instant is derived from start, rate and sample
// count. Use GetSlice for a window. Logged as a warning.
func (cs *ChannelSeries) SetEnd(time.Time) {
	cs.logger.Warn("cannot set end; use GetSlice to select a window")
}

// SetSamples replaces the sample vector and regenerates the time axis.
//
// Accepted shapes:
//   - []float64: axis synthesized from the current start and sample rate
//   - *Frame: the "data" column, with the frame's own axis when present
//   - *DataArray: axis taken as-is, attrs imported into channel metadata
//
// Anything else fails with errs.ErrUnsupportedSampleInput. Input samples
// are copied; the series never aliases caller arrays. Metadata time bounds
// and sample rate are re-synchronized afterward.
func (cs *ChannelSeries) SetSamples(input any) error {
	switch v := input.(type) {
	case []float64:
		return cs.loadVector(v)

	case *Frame:
		data, ok := v.Columns["data"]
		if !ok {
			return fmt.Errorf("%w: frame needs a column named \"data\"",
				errs.ErrUnsupportedSampleInput)
		}
		if v.Index != nil {
			return cs.loadAligned(data, v.Index)
		}

		return cs.loadVector(data)

	case *DataArray:
		if v.Attrs != nil {
			if err := cs.meta.FromMap(v.Attrs); err != nil {
				return err
			}
		}

		return cs.loadAligned(v.Data, v.Index)

	default:
		return fmt.Errorf("%w: %T, samples must be []float64, *Frame or *DataArray",
			errs.ErrUnsupportedSampleInput, input)
	}
}

// loadVector synthesizes the axis from the current start and sample rate,
// warning and substituting defaults when either is unset.
func (cs *ChannelSeries) loadVector(data []float64) error {
	rate := cs.SampleRate()
	if rate <= 0 {
		cs.logger.Warn("no valid sample rate set, assuming 1 sample/second",
			zap.Float64("sample_rate", rate))
		rate = 1
	}

	start := cs.Start()
	if start.IsZero() {
		cs.logger.Warn("no start time set, assuming 1980-01-01T00:00:00+00:00")
		start = fallbackStart
	}

	ix, err := tsindex.New(start, rate, len(data))
	if err != nil {
		return err
	}

	cs.samples = append([]float64(nil), data...)
	cs.index = ix
	cs.syncMetadata()

	return nil
}

// loadAligned adopts an existing axis, which must label every sample.
func (cs *ChannelSeries) loadAligned(data []float64, ix *tsindex.TimeIndex) error {
	if ix == nil {
		return cs.loadVector(data)
	}
	if ix.Len() != len(data) {
		return fmt.Errorf("%w: axis has %d points for %d samples",
			errs.ErrUnsupportedSampleInput, ix.Len(), len(data))
	}

	cs.samples = append([]float64(nil), data...)
	cs.index = ix
	cs.syncMetadata()

	return nil
}

// syncMetadata mirrors the derived time bounds and sample rate into the
// channel metadata. One-way: data wins whenever samples are present.
func (cs *ChannelSeries) syncMetadata() {
	if !cs.HasData() {
		return
	}

	base := cs.meta.Base()
	base.SampleRate = cs.index.SampleRate()
	base.TimePeriod.Start = cs.index.Start()
	base.TimePeriod.End = cs.index.End()
}

// GetSlice returns the sub-series with instants in the closed interval
// [start, end]. Boundary instants absent from the axis select the nearest
// in-range point, so the result's first instant is always >= start and its
// last <= end.
func (cs *ChannelSeries) GetSlice(start, end time.Time) (*ChannelSeries, error) {
	if !cs.HasData() {
		return nil, fmt.Errorf("%w: no data to slice", errs.ErrEmptyTimeIndex)
	}

	lo, hi, err := cs.index.SliceRange(start, end)
	if err != nil {
		return nil, err
	}

	return cs.sliceByIndex(lo, hi)
}

// GetSliceN returns the sub-series of n samples beginning at the first axis
// instant at or after start.
func (cs *ChannelSeries) GetSliceN(start time.Time, n int) (*ChannelSeries, error) {
	if !cs.HasData() {
		return nil, fmt.Errorf("%w: no data to slice", errs.ErrEmptyTimeIndex)
	}

	lo, hi, err := cs.index.SliceN(start, n)
	if err != nil {
		return nil, err
	}

	return cs.sliceByIndex(lo, hi)
}

func (cs *ChannelSeries) sliceByIndex(lo, hi int) (*ChannelSeries, error) {
	ix, err := cs.index.Slice(lo, hi)
	if err != nil {
		return nil, err
	}

	out := cs.clone()
	out.samples = append([]float64(nil), cs.samples[lo:hi+1]...)
	out.index = ix
	out.syncMetadata()

	return out, nil
}

// Resample decimates the series to SampleRate()/factor using a
// nearest-neighbor reducer at the new rate. The reduction is lossy and is
// not inverted by resampling back.
//
// With inPlace the receiver is mutated and returned; otherwise the receiver
// is untouched and a new series is returned.
func (cs *ChannelSeries) Resample(factor float64, inPlace bool) (*ChannelSeries, error) {
	if !cs.HasData() {
		return nil, fmt.Errorf("%w: no data to resample", errs.ErrEmptyTimeIndex)
	}

	newIndex, err := cs.index.Decimate(factor)
	if err != nil {
		return nil, err
	}

	decimated := make([]float64, newIndex.Len())
	for i := range decimated {
		decimated[i] = cs.samples[cs.index.Nearest(newIndex.At(i))]
	}

	target := cs
	if !inPlace {
		target = cs.clone()
	}

	target.samples = decimated
	target.index = newIndex
	target.syncMetadata()

	return target, nil
}

// ToTrace exports the channel as a generic exchange trace.
func (cs *ChannelSeries) ToTrace() *trace.Trace {
	station := cs.station.FDSN.ID
	if station == "" {
		station = cs.station.ID
	}

	return &trace.Trace{
		Data:         append([]float64(nil), cs.samples...),
		Channel:      cs.Component(),
		StartTime:    cs.Start(),
		SamplingRate: cs.SampleRate(),
		Station:      station,
		Network:      cs.station.FDSN.Network,
	}
}

// FromTrace builds a channel from a generic exchange trace, inferring the
// kind from the component code's first letter (e/q electric, h/b/f
// magnetic, anything else auxiliary) and tagging the units as "counts".
//
// Returns errs.ErrUnsupportedTraceType for a nil trace.
func FromTrace(tr *trace.Trace, opts ...ChannelOption) (*ChannelSeries, error) {
	if tr == nil {
		return nil, fmt.Errorf("%w: nil trace", errs.ErrUnsupportedTraceType)
	}

	kind := metadata.KindForComponent(tr.Channel)
	cs, err := NewChannelSeries(kind.String(), nil, opts...)
	if err != nil {
		return nil, err
	}

	base := cs.meta.Base()
	base.Component = tr.Channel
	base.SampleRate = tr.SamplingRate
	base.TimePeriod.Start = tr.StartTime.UTC()
	base.Units = "counts"

	cs.station.FDSN.ID = tr.Station
	cs.station.FDSN.Network = tr.Network
	cs.station.ID = tr.Station

	if tr.Data != nil {
		if err := cs.SetSamples(tr.Data); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

// Equal reports whether two series carry equal channel metadata and equal
// aligned sample arrays. NaN gap markers compare equal to each other.
func (cs *ChannelSeries) Equal(other *ChannelSeries) bool {
	if other == nil {
		return false
	}
	if cs.kind != other.kind {
		return false
	}
	if !reflect.DeepEqual(cs.meta.ToMap(), other.meta.ToMap()) {
		return false
	}
	if !samplesEqual(cs.samples, other.samples) {
		return false
	}

	return cs.index.Equal(other.index)
}

// Before orders two series by start time. The ordering is deliberately
// partial: series with differing sample rates are unordered and Before
// reports false.
func (cs *ChannelSeries) Before(other *ChannelSeries) bool {
	if other == nil || cs.SampleRate() != other.SampleRate() {
		return false
	}

	return cs.Start().Before(other.Start())
}

// clone returns a deep copy sharing nothing mutable with the receiver.
// The time axis is shared; TimeIndex is immutable.
func (cs *ChannelSeries) clone() *ChannelSeries {
	out := &ChannelSeries{
		kind:    cs.kind,
		index:   cs.index,
		meta:    cs.meta.Clone(),
		station: cs.station.Clone(),
		run:     cs.run.Clone(),
		logger:  cs.logger,
	}
	out.samples = append([]float64(nil), cs.samples...)
	if cs.response != nil {
		out.response = cs.response.Clone()
	}

	return out
}

func samplesEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}

	return true
}

// String renders a short human-readable summary.
func (cs *ChannelSeries) String() string {
	return fmt.Sprintf(
		"Channel Summary:\n"+
			"\tStation:      %s\n"+
			"\tRun:          %s\n"+
			"\tChannel Type: %s\n"+
			"\tComponent:    %s\n"+
			"\tSample Rate:  %g\n"+
			"\tStart:        %s\n"+
			"\tEnd:          %s\n"+
			"\tN Samples:    %d",
		cs.station.ID, cs.run.ID, cs.kind, cs.Component(), cs.SampleRate(),
		metadata.FormatTime(cs.Start()), metadata.FormatTime(cs.End()), cs.NSamples())
}

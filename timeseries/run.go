package timeseries

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mtgeo/mtseries/errs"
	"github.com/mtgeo/mtseries/internal/options"
	"github.com/mtgeo/mtseries/metadata"
	"github.com/mtgeo/mtseries/trace"
	"github.com/mtgeo/mtseries/tsindex"
)

// RunSeries owns a set of channels aligned onto one shared time axis, keyed
// by lowercase component name, plus layered run and station metadata.
//
// All channels in a run report the same sample rate; combining differing
// rates is a hard error. The run's effective start, end and sample rate are
// derived from the shared axis while channels are present and fall back to
// the stored metadata otherwise.
type RunSeries struct {
	channels map[string]*ChannelSeries
	index    *tsindex.TimeIndex

	run     *metadata.Run
	station *metadata.Station

	logger *zap.Logger
}

// RunOption configures a RunSeries during construction.
type RunOption = options.Option[*RunSeries]

// WithRunSeriesMetadata attaches run metadata, given as a *Run record or a
// raw attribute map (flat, or nested under a "run" key).
func WithRunSeriesMetadata(meta any) RunOption {
	return options.New(func(rs *RunSeries) error {
		switch mv := meta.(type) {
		case *metadata.Run:
			return rs.run.FromMap(mv.ToMap())
		case map[string]any:
			return rs.run.FromMap(mv)
		default:
			return fmt.Errorf("%w: run metadata must be *metadata.Run or a map, not %T",
				errs.ErrMetadataType, meta)
		}
	})
}

// WithRunStationMetadata attaches station metadata, given as a *Station
// record or a raw attribute map.
func WithRunStationMetadata(meta any) RunOption {
	return options.New(func(rs *RunSeries) error {
		switch mv := meta.(type) {
		case *metadata.Station:
			return rs.station.FromMap(mv.ToMap())
		case map[string]any:
			return rs.station.FromMap(mv)
		default:
			return fmt.Errorf("%w: station metadata must be *metadata.Station or a map, not %T",
				errs.ErrMetadataType, meta)
		}
	})
}

// WithRunLogger routes the run's advisory warnings to the given logger.
// The default is a no-op logger.
func WithRunLogger(logger *zap.Logger) RunOption {
	return options.NoError(func(rs *RunSeries) {
		rs.logger = logger.With(zap.String("component", "run_series"))
	})
}

// NewRunSeries creates an empty run. Channels are attached afterward with
// SetDataset or AddChannel.
func NewRunSeries(opts ...RunOption) (*RunSeries, error) {
	rs := &RunSeries{
		channels: make(map[string]*ChannelSeries),
		run:      metadata.NewRun(),
		station:  metadata.NewStation(),
		logger:   zap.NewNop(),
	}

	if err := options.Apply(rs, opts...); err != nil {
		return nil, err
	}

	return rs, nil
}

// RunMetadata returns the run record. The series retains ownership;
// ValidateMetadata re-derives its data-coupled fields on demand.
func (rs *RunSeries) RunMetadata() *metadata.Run {
	return rs.run
}

// StationMetadata returns the layered station record.
func (rs *RunSeries) StationMetadata() *metadata.Station {
	return rs.station
}

// TimeIndex returns the shared aligned axis, or nil while the run is empty.
func (rs *RunSeries) TimeIndex() *tsindex.TimeIndex {
	return rs.index
}

// HasData reports whether any channels are attached.
func (rs *RunSeries) HasData() bool {
	return len(rs.channels) > 0
}

// Channels returns the sorted lowercase component names of the attached
// channels.
func (rs *RunSeries) Channels() []string {
	names := make([]string, 0, len(rs.channels))
	for name := range rs.channels {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Channel returns the channel recorded under the given component name,
// case-insensitively. The run retains ownership of the returned series.
//
// Returns errs.ErrChannelNotFound when the component is not in the run.
func (rs *RunSeries) Channel(component string) (*ChannelSeries, error) {
	if ch, ok := rs.channels[strings.ToLower(component)]; ok {
		return ch, nil
	}

	return nil, fmt.Errorf("%w: %q, recorded channels are [%s]",
		errs.ErrChannelNotFound, component, strings.Join(rs.Channels(), ", "))
}

// SampleRate returns the shared axis sample rate, falling back to the run
// metadata while the run is empty.
func (rs *RunSeries) SampleRate() float64 {
	if rs.HasData() && rs.index != nil {
		return rs.index.SampleRate()
	}

	return rs.run.SampleRate
}

// Start returns the first shared-axis instant, falling back to the run
// metadata while the run is empty.
func (rs *RunSeries) Start() time.Time {
	if rs.HasData() && rs.index != nil {
		return rs.index.Start()
	}

	return rs.run.TimePeriod.Start
}

// End returns the last shared-axis instant, falling back to the run
// metadata while the run is empty.
func (rs *RunSeries) End() time.Time {
	if rs.HasData() && rs.index != nil {
		return rs.index.End()
	}

	return rs.run.TimePeriod.End
}

// SetDataset replaces the run's channel set. Every channel's declared
// sample rate must match exactly; on mismatch the run is left untouched and
// the error enumerates the per-channel rates. Channel axes are reconciled
// onto one shared axis per the align policy, with NaN marking instants a
// channel did not cover. ValidateMetadata runs on the result, and the run's
// station and run records are layered onto every attached channel.
func (rs *RunSeries) SetDataset(channels []*ChannelSeries, policy tsindex.Policy) error {
	if len(channels) == 0 {
		return fmt.Errorf("%w: no channels given", errs.ErrEmptyTimeIndex)
	}

	rates := make(map[string]float64, len(channels))
	indexes := make([]*tsindex.TimeIndex, 0, len(channels))
	distinct := make(map[float64]struct{})
	for i, ch := range channels {
		if ch == nil {
			return fmt.Errorf("%w: channel entry %d is nil", errs.ErrUnsupportedSampleInput, i)
		}
		if !ch.HasData() {
			return fmt.Errorf("%w: channel %q has no data", errs.ErrEmptyTimeIndex, ch.Component())
		}
		rates[ch.Component()] = ch.SampleRate()
		distinct[ch.SampleRate()] = struct{}{}
		indexes = append(indexes, ch.TimeIndex())
	}

	if len(distinct) != 1 {
		return fmt.Errorf("%w: %s", errs.ErrSampleRateMismatch, formatRates(rates))
	}

	joint, err := tsindex.Align(policy, indexes...)
	if err != nil {
		return err
	}

	aligned := make(map[string]*ChannelSeries, len(channels))
	for _, ch := range channels {
		aligned[strings.ToLower(ch.Component())] = rs.reindex(ch, joint)
	}

	rs.channels = aligned
	rs.index = joint
	rs.ValidateMetadata()
	rs.stampChannels()

	return nil
}

// AddChannel inserts one channel, keyed by its lowercase component name.
// The channel's sample rate must match the run's current rate. The run's
// axis is not re-aligned; the incoming channel is reindexed onto the
// existing axis, NaN-filled where its extent does not match, and clipped
// where it overruns.
//
// An empty run adopts the channel's axis.
func (rs *RunSeries) AddChannel(ch *ChannelSeries) error {
	if ch == nil {
		return fmt.Errorf("%w: nil channel", errs.ErrUnsupportedSampleInput)
	}
	if !ch.HasData() {
		return fmt.Errorf("%w: channel %q has no data", errs.ErrEmptyTimeIndex, ch.Component())
	}

	if rs.HasData() {
		if current := rs.SampleRate(); ch.SampleRate() != current {
			return fmt.Errorf("%w: run is %g samples/s, channel %q is %g samples/s",
				errs.ErrSampleRateMismatch, current, ch.Component(), ch.SampleRate())
		}
		rs.channels[strings.ToLower(ch.Component())] = rs.reindex(ch, rs.index)
		rs.stampChannels()

		return nil
	}

	rs.channels[strings.ToLower(ch.Component())] = rs.reindex(ch, ch.TimeIndex())
	rs.index = ch.TimeIndex()
	rs.stampChannels()

	return nil
}

// stampChannels layers the run's station and run records onto every attached
// channel so each stays self-describing when extracted standalone.
func (rs *RunSeries) stampChannels() {
	for _, ch := range rs.channels {
		ch.station = rs.station.Clone()
		ch.run = rs.run.Clone()
	}
}

// ValidateMetadata re-derives the data-coupled run metadata from the
// attached channels: sample rate, time bounds, and the three
// channels-recorded lists classified by component prefix. Mismatches are
// logged and overwritten; this is advisory self-repair and never fails.
// One-way only: data always wins over stored metadata.
//
// Idempotent: a second call with unchanged data changes nothing.
func (rs *RunSeries) ValidateMetadata() {
	if !rs.HasData() {
		return
	}

	if sr := rs.SampleRate(); rs.run.SampleRate != sr {
		rs.logger.Warn("run metadata sample rate does not match dataset, updating",
			zap.Float64("metadata_rate", rs.run.SampleRate),
			zap.Float64("dataset_rate", sr))
		rs.run.SampleRate = sr
	}

	if start := rs.Start(); !rs.run.TimePeriod.Start.Equal(start) {
		rs.logger.Warn("run metadata start does not match dataset, updating",
			zap.String("metadata_start", metadata.FormatTime(rs.run.TimePeriod.Start)),
			zap.String("dataset_start", metadata.FormatTime(start)))
		rs.run.TimePeriod.Start = start
	}

	if end := rs.End(); !rs.run.TimePeriod.End.Equal(end) {
		rs.logger.Warn("run metadata end does not match dataset, updating",
			zap.String("metadata_end", metadata.FormatTime(rs.run.TimePeriod.End)),
			zap.String("dataset_end", metadata.FormatTime(end)))
		rs.run.TimePeriod.End = end
	}

	rs.run.ChannelsRecordedElectric = nil
	rs.run.ChannelsRecordedMagnetic = nil
	rs.run.ChannelsRecordedAuxiliary = nil
	for _, name := range rs.Channels() {
		switch metadata.KindForRecordedComponent(name) {
		case metadata.KindElectric:
			rs.run.ChannelsRecordedElectric = append(rs.run.ChannelsRecordedElectric, name)
		case metadata.KindMagnetic:
			rs.run.ChannelsRecordedMagnetic = append(rs.run.ChannelsRecordedMagnetic, name)
		default:
			rs.run.ChannelsRecordedAuxiliary = append(rs.run.ChannelsRecordedAuxiliary, name)
		}
	}
}

// GetSlice returns a new run over the closed interval [start, end], each
// channel sliced with the same nearest-in-range boundary semantics as the
// channel-level slice.
func (rs *RunSeries) GetSlice(start, end time.Time) (*RunSeries, error) {
	if !rs.HasData() {
		return nil, fmt.Errorf("%w: no data to slice", errs.ErrEmptyTimeIndex)
	}

	lo, hi, err := rs.index.SliceRange(start, end)
	if err != nil {
		return nil, err
	}

	return rs.sliceByIndex(lo, hi)
}

// GetSliceN returns a new run of n samples per channel beginning at the
// first shared-axis instant at or after start.
func (rs *RunSeries) GetSliceN(start time.Time, n int) (*RunSeries, error) {
	if !rs.HasData() {
		return nil, fmt.Errorf("%w: no data to slice", errs.ErrEmptyTimeIndex)
	}

	lo, hi, err := rs.index.SliceN(start, n)
	if err != nil {
		return nil, err
	}

	return rs.sliceByIndex(lo, hi)
}

func (rs *RunSeries) sliceByIndex(lo, hi int) (*RunSeries, error) {
	out, err := NewRunSeries(
		WithRunSeriesMetadata(rs.run),
		WithRunStationMetadata(rs.station),
	)
	if err != nil {
		return nil, err
	}
	out.logger = rs.logger

	ix, err := rs.index.Slice(lo, hi)
	if err != nil {
		return nil, err
	}

	out.index = ix
	for name, ch := range rs.channels {
		sliced, err := ch.sliceByIndex(lo, hi)
		if err != nil {
			return nil, err
		}
		out.channels[name] = sliced
	}
	out.ValidateMetadata()
	out.stampChannels()

	return out, nil
}

// Filters returns the union of every channel's response filter stages,
// keyed by stage name.
func (rs *RunSeries) Filters() map[string]*metadata.PoleZeroFilter {
	out := make(map[string]*metadata.PoleZeroFilter)
	for _, name := range rs.Channels() {
		response := rs.channels[name].Response()
		if response == nil {
			continue
		}
		for _, f := range response.Filters {
			out[f.Name] = f
		}
	}

	return out
}

// SummarizeMetadata flattens every channel's metadata into one map keyed by
// "component.field_path".
func (rs *RunSeries) SummarizeMetadata() map[string]any {
	out := make(map[string]any)
	for _, name := range rs.Channels() {
		for key, v := range rs.channels[name].ChannelMetadata().ToMap() {
			out[name+"."+key] = v
		}
	}

	return out
}

// ToStream exports every channel as a generic exchange trace, ordered by
// component name.
func (rs *RunSeries) ToStream() *trace.Stream {
	st := trace.NewStream()
	for _, name := range rs.Channels() {
		st.Traces = append(st.Traces, rs.channels[name].ToTrace())
	}

	return st
}

// FromStream rebuilds the run from a generic exchange stream: one channel
// per trace, classified by component code, aligned with the union policy.
// The station id is the first non-empty station code in trace order; when
// the traces carry conflicting codes, or none at all, a warning is logged
// and the import proceeds with the first (or an empty) id.
//
// Returns errs.ErrUnsupportedTraceType for a nil stream.
func (rs *RunSeries) FromStream(st *trace.Stream) error {
	if st == nil {
		return fmt.Errorf("%w: nil stream", errs.ErrUnsupportedTraceType)
	}

	channels := make([]*ChannelSeries, 0, st.Len())
	station := ""
	conflicts := make([]string, 0)
	for _, tr := range st.Traces {
		ch, err := FromTrace(tr)
		if err != nil {
			return err
		}
		if id := ch.StationMetadata().FDSN.ID; id != "" {
			switch {
			case station == "":
				station = id
			case id != station:
				conflicts = append(conflicts, id)
			}
		}
		channels = append(channels, ch)
	}

	if station == "" {
		rs.logger.Warn("could not resolve a station name from the stream")
	} else if len(conflicts) > 0 {
		rs.logger.Warn("stream traces carry conflicting station names, using the first",
			zap.String("station", station),
			zap.Strings("conflicting", conflicts))
	}
	rs.station.FDSN.ID = station
	rs.station.ID = station

	return rs.SetDataset(channels, tsindex.AlignUnion)
}

// reindexOnto places a channel's samples onto the target axis, NaN-filling
// instants the channel does not cover and dropping samples that fall off
// the target grid. Returns the reindexed channel and the number of source
// samples that landed on the target. The incoming channel is never mutated.
func reindexOnto(ch *ChannelSeries, target *tsindex.TimeIndex) (*ChannelSeries, int) {
	out := ch.clone()

	if ch.TimeIndex().Equal(target) {
		out.index = target
		out.syncMetadata()

		return out, ch.NSamples()
	}

	samples := make([]float64, target.Len())
	for i := range samples {
		samples[i] = math.NaN()
	}

	kept := 0
	src := ch.TimeIndex()
	for i := 0; i < src.Len(); i++ {
		if pos, ok := target.Contains(src.At(i)); ok {
			samples[pos] = ch.samples[i]
			kept++
		}
	}

	out.samples = samples
	out.index = target
	out.syncMetadata()

	return out, kept
}

// reindex aligns one channel onto the target axis, warning when samples did
// not land on the target grid. A channel offset from the shared axis by a
// sub-sample amount can lose every point this way; the drop is advisory
// rather than fatal, matching the other metadata/data reconciliations.
func (rs *RunSeries) reindex(ch *ChannelSeries, target *tsindex.TimeIndex) *ChannelSeries {
	out, kept := reindexOnto(ch, target)
	if dropped := ch.NSamples() - kept; dropped > 0 {
		rs.logger.Warn("channel samples do not land on the shared axis and were dropped",
			zap.String("channel", ch.Component()),
			zap.Int("dropped", dropped),
			zap.Int("kept", kept))
	}

	return out
}

func formatRates(rates map[string]float64) string {
	names := make([]string, 0, len(rates))
	for name := range rates {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, rates[name])
	}

	return "sample rates are not all the same {" + strings.Join(parts, ", ") + "}"
}

// String renders a short human-readable summary.
func (rs *RunSeries) String() string {
	return fmt.Sprintf(
		"RunSeries Summary:\n"+
			"\tStation:     %s\n"+
			"\tRun:         %s\n"+
			"\tStart:       %s\n"+
			"\tEnd:         %s\n"+
			"\tSample Rate: %g\n"+
			"\tComponents:  [%s]",
		rs.station.ID, rs.run.ID,
		metadata.FormatTime(rs.Start()), metadata.FormatTime(rs.End()),
		rs.SampleRate(), strings.Join(rs.Channels(), ", "))
}

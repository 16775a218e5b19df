// Package mtseries archives multi-channel magnetotelluric survey recordings
// as time-aligned series containers with layered, self-describing metadata.
//
// The core abstraction is a two-level composition:
//
//   - ChannelSeries wraps one channel's sample vector, a synthesized
//     uniform time axis, and three layered metadata records (station, run,
//     channel kind) so a channel extracted on its own stays fully
//     described.
//   - RunSeries collects named ChannelSeries onto one shared time axis,
//     reconciling differing extents with a selectable align policy and
//     keeping run-level metadata synchronized with the aligned data.
//
// # Basic Usage
//
// Building a five-channel run at 8 samples/second:
//
//	import (
//	    "github.com/mtgeo/mtseries"
//	    "github.com/mtgeo/mtseries/tsindex"
//	)
//
//	start, _ := mtseries.ParseTime("2015-01-08T19:49:18+00:00")
//	var channels []*mtseries.ChannelSeries
//	for _, comp := range []string{"ex", "ey", "hx", "hy", "hz"} {
//	    kind := "electric"
//	    if comp[0] == 'h' {
//	        kind = "magnetic"
//	    }
//	    ch, _ := mtseries.NewChannelSeries(kind, samples[comp],
//	        mtseries.WithChannelMetadata(map[string]any{
//	            "component":         comp,
//	            "sample_rate":       8.0,
//	            "time_period.start": "2015-01-08T19:49:18+00:00",
//	        }))
//	    channels = append(channels, ch)
//	}
//
//	run, _ := mtseries.NewRunSeries()
//	_ = run.SetDataset(channels, tsindex.AlignUnion)
//
// Slicing, decimation and exchange-format conversion are methods on the
// containers; see the timeseries package for the full surface.
//
// # Package Structure
//
// This package re-exports the common entry points. For fine-grained
// control use the sub-packages directly: timeseries for the containers,
// tsindex for time-axis arithmetic, metadata for the record types, trace
// for the exchange format, and snapshot for the binary container.
package mtseries

import (
	"time"

	"github.com/mtgeo/mtseries/metadata"
	"github.com/mtgeo/mtseries/snapshot"
	"github.com/mtgeo/mtseries/timeseries"
	"github.com/mtgeo/mtseries/trace"
)

// ChannelSeries is one channel's samples on a synthesized time axis.
type ChannelSeries = timeseries.ChannelSeries

// RunSeries is a set of channels aligned onto one shared time axis.
type RunSeries = timeseries.RunSeries

// NewChannelSeries creates a channel of the given kind ("electric",
// "magnetic" or "auxiliary") with an optional initial sample vector.
func NewChannelSeries(kind string, data []float64, opts ...timeseries.ChannelOption) (*ChannelSeries, error) {
	return timeseries.NewChannelSeries(kind, data, opts...)
}

// WithChannelMetadata attaches channel metadata given as a record of the
// channel's kind or a raw attribute map.
func WithChannelMetadata(meta any) timeseries.ChannelOption {
	return timeseries.WithChannelMetadata(meta)
}

// WithStationMetadata attaches station metadata to a channel.
func WithStationMetadata(meta any) timeseries.ChannelOption {
	return timeseries.WithStationMetadata(meta)
}

// WithRunMetadata attaches run metadata to a channel.
func WithRunMetadata(meta any) timeseries.ChannelOption {
	return timeseries.WithRunMetadata(meta)
}

// NewRunSeries creates an empty run.
func NewRunSeries(opts ...timeseries.RunOption) (*RunSeries, error) {
	return timeseries.NewRunSeries(opts...)
}

// FromTrace builds a channel from a generic exchange trace, inferring the
// channel kind from the component code.
func FromTrace(tr *trace.Trace, opts ...timeseries.ChannelOption) (*ChannelSeries, error) {
	return timeseries.FromTrace(tr, opts...)
}

// FromStream builds a run from a generic exchange stream, one channel per
// trace, aligned with the union policy.
func FromStream(st *trace.Stream, opts ...timeseries.RunOption) (*RunSeries, error) {
	run, err := timeseries.NewRunSeries(opts...)
	if err != nil {
		return nil, err
	}
	if err := run.FromStream(st); err != nil {
		return nil, err
	}

	return run, nil
}

// EncodeSnapshot serializes a run into the binary snapshot container with
// default settings.
func EncodeSnapshot(run *RunSeries, opts ...snapshot.EncoderOption) ([]byte, error) {
	encoder, err := snapshot.NewEncoder(opts...)
	if err != nil {
		return nil, err
	}

	return encoder.Encode(run)
}

// DecodeSnapshot rebuilds a run from snapshot bytes.
func DecodeSnapshot(data []byte) (*RunSeries, error) {
	return snapshot.Decode(data)
}

// ParseTime parses an ISO-8601 timestamp into a UTC instant.
func ParseTime(s string) (time.Time, error) {
	return metadata.ParseTime(s)
}

// FormatTime serializes an instant as ISO-8601 UTC with nanosecond
// precision.
func FormatTime(t time.Time) string {
	return metadata.FormatTime(t)
}

// Package trace defines the generic seismic-style exchange representation:
// a Trace is one channel's samples plus the minimal identification needed
// to rebuild it elsewhere, and a Stream is an ordered collection of traces.
//
// The types carry no behavior beyond construction; conversion logic lives
// with ChannelSeries and RunSeries so the exchange surface stays free of
// mtseries internals.
package trace

import "time"

// Trace is a single-channel exchange record.
type Trace struct {
	// Data is the raw sample array.
	Data []float64

	// Channel is the component code, e.g. "ex" or "hz".
	Channel string

	// StartTime is the instant of the first sample, UTC.
	StartTime time.Time

	// SamplingRate is in samples per second.
	SamplingRate float64

	// Station and Network identify the recording site in the exchange
	// namespace.
	Station string
	Network string
}

// Stream is an ordered multi-trace collection.
type Stream struct {
	Traces []*Trace
}

// NewStream creates a stream over the given traces.
func NewStream(traces ...*Trace) *Stream {
	return &Stream{Traces: traces}
}

// Len returns the number of traces in the stream.
func (s *Stream) Len() int {
	return len(s.Traces)
}

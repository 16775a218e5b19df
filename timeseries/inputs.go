package timeseries

import "github.com/mtgeo/mtseries/tsindex"

// Frame is a tabular sample input: named columns of equal length, with an
// optional time axis. SetSamples reads the column named "data"; when Index
// is nil the axis is synthesized from the channel's current start and
// sample rate.
type Frame struct {
	Columns map[string][]float64
	Index   *tsindex.TimeIndex
}

// NewFrame creates a frame with a single "data" column.
func NewFrame(data []float64) *Frame {
	return &Frame{Columns: map[string][]float64{"data": data}}
}

// DataArray is an aligned sample input: samples already labeled by their
// own time axis, plus a flat attribute map imported into the channel
// metadata on ingestion. It is the exchange shape the persistence layer
// produces when reading a channel back out of a container node.
type DataArray struct {
	Data  []float64
	Index *tsindex.TimeIndex
	Attrs map[string]any
}

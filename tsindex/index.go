package tsindex

import (
	"fmt"
	"math"
	"time"

	"github.com/mtgeo/mtseries/errs"
)

// TimeIndex is a uniformly spaced, strictly increasing time axis at
// nanosecond resolution, fully determined by a start instant, a sample rate
// in samples per second, and a point count.
//
// Points are computed on demand rather than materialized, so an index over
// millions of samples costs the same as one over ten. All instants are UTC.
type TimeIndex struct {
	start time.Time
	rate  float64
	n     int
}

// New creates a time index of n points starting at start, spaced 1/rate
// seconds apart.
//
// Returns errs.ErrInvalidSampleRate when rate is not positive and
// errs.ErrEmptyTimeIndex when n is less than one.
func New(start time.Time, rate float64, n int) (*TimeIndex, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidSampleRate, rate)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: n_samples=%d", errs.ErrEmptyTimeIndex, n)
	}

	return &TimeIndex{start: start.UTC(), rate: rate, n: n}, nil
}

// Start returns the first instant of the axis.
func (ix *TimeIndex) Start() time.Time {
	return ix.start
}

// End returns the last instant of the axis, start + (n-1)/rate seconds.
func (ix *TimeIndex) End() time.Time {
	return ix.At(ix.n - 1)
}

// SampleRate returns the axis sample rate in samples per second.
func (ix *TimeIndex) SampleRate() float64 {
	return ix.rate
}

// Len returns the number of points on the axis.
func (ix *TimeIndex) Len() int {
	return ix.n
}

// At returns the i-th instant. The offset is computed from the start for
// every i, so fractional-nanosecond steps do not accumulate drift.
func (ix *TimeIndex) At(i int) time.Time {
	offset := time.Duration(math.Round(float64(i) * 1e9 / ix.rate))

	return ix.start.Add(offset)
}

// Nearest returns the index of the axis point closest to t, clamped to
// [0, Len()-1].
func (ix *TimeIndex) Nearest(t time.Time) int {
	pos := float64(t.Sub(ix.start)) * ix.rate / 1e9
	i := int(math.Round(pos))
	if i < 0 {
		return 0
	}
	if i >= ix.n {
		return ix.n - 1
	}

	return i
}

// fractional index position of t on the axis grid.
func (ix *TimeIndex) position(t time.Time) float64 {
	return float64(t.Sub(ix.start)) * ix.rate / 1e9
}

// positionEps absorbs nanosecond rounding when deciding whether an instant
// sits on a grid point.
const positionEps = 1e-6

// SliceRange returns the low and high point indexes covering the closed
// interval [start, end]. The first selected instant is never before start
// and the last never after end; instants absent from the axis snap to the
// nearest in-range point.
//
// Returns errs.ErrEmptyTimeIndex when the interval contains no axis points.
func (ix *TimeIndex) SliceRange(start, end time.Time) (int, int, error) {
	lo := int(math.Ceil(ix.position(start) - positionEps))
	hi := int(math.Floor(ix.position(end) + positionEps))

	if lo < 0 {
		lo = 0
	}
	if hi >= ix.n {
		hi = ix.n - 1
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: no samples in [%s, %s]",
			errs.ErrEmptyTimeIndex,
			start.UTC().Format(time.RFC3339Nano),
			end.UTC().Format(time.RFC3339Nano))
	}

	return lo, hi, nil
}

// SliceN returns the low and high point indexes for a window of n points
// beginning at the first axis point at or after start.
func (ix *TimeIndex) SliceN(start time.Time, n int) (int, int, error) {
	if n < 1 {
		return 0, 0, fmt.Errorf("%w: n_samples=%d", errs.ErrEmptyTimeIndex, n)
	}

	lo := int(math.Ceil(ix.position(start) - positionEps))
	if lo < 0 {
		lo = 0
	}
	if lo >= ix.n {
		return 0, 0, fmt.Errorf("%w: start %s is past the end of the axis",
			errs.ErrEmptyTimeIndex, start.UTC().Format(time.RFC3339Nano))
	}

	hi := lo + n - 1
	if hi >= ix.n {
		hi = ix.n - 1
	}

	return lo, hi, nil
}

// Slice returns a sub-axis spanning point indexes [lo, hi].
func (ix *TimeIndex) Slice(lo, hi int) (*TimeIndex, error) {
	if lo < 0 || hi >= ix.n || lo > hi {
		return nil, fmt.Errorf("%w: slice [%d, %d] outside axis of %d points",
			errs.ErrEmptyTimeIndex, lo, hi, ix.n)
	}

	return &TimeIndex{start: ix.At(lo), rate: ix.rate, n: hi - lo + 1}, nil
}

// Decimate returns the axis produced by reducing the sample rate by factor:
// same start, rate/factor, and however many of the new points land within
// the original span.
func (ix *TimeIndex) Decimate(factor float64) (*TimeIndex, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: decimation factor %v", errs.ErrInvalidSampleRate, factor)
	}

	newRate := ix.rate / factor
	span := float64(ix.End().Sub(ix.start)) / 1e9
	n := int(math.Floor(span*newRate+positionEps)) + 1

	return New(ix.start, newRate, n)
}

// Equal reports whether two axes describe the same instants.
func (ix *TimeIndex) Equal(other *TimeIndex) bool {
	if ix == nil || other == nil {
		return ix == other
	}

	return ix.n == other.n && ix.rate == other.rate && ix.start.Equal(other.start)
}

// Contains reports whether t lies on the axis grid, with the index of the
// matching point. Instants more than a rounding tolerance away from every
// grid point report false.
func (ix *TimeIndex) Contains(t time.Time) (int, bool) {
	pos := ix.position(t)
	i := int(math.Round(pos))
	if i < 0 || i >= ix.n {
		return 0, false
	}
	if math.Abs(pos-float64(i)) > positionEps {
		return 0, false
	}

	return i, true
}

// Timestamps materializes every instant of the axis. Intended for interop
// export and tests; prefer At for single-point access.
func (ix *TimeIndex) Timestamps() []time.Time {
	out := make([]time.Time, ix.n)
	for i := range out {
		out[i] = ix.At(i)
	}

	return out
}

func (ix *TimeIndex) String() string {
	return fmt.Sprintf("TimeIndex{start=%s, rate=%g, n=%d}",
		ix.start.Format(time.RFC3339Nano), ix.rate, ix.n)
}

package tsindex

import (
	"fmt"
	"math"

	"github.com/mtgeo/mtseries/errs"
)

// Policy selects the join semantics used to reconcile differing time axes
// when channels are combined into a run.
type Policy uint8

const (
	// AlignUnion spans from the earliest start to the latest end of all axes.
	AlignUnion Policy = iota
	// AlignIntersection spans only the interval covered by every axis.
	AlignIntersection
	// AlignLeft adopts the first axis.
	AlignLeft
	// AlignRight adopts the last axis.
	AlignRight
	// AlignExact requires all axes to be identical and fails otherwise.
	AlignExact
	// AlignOverride adopts the first axis, requiring all axes to have the
	// same length.
	AlignOverride
)

func (p Policy) String() string {
	switch p {
	case AlignUnion:
		return "union"
	case AlignIntersection:
		return "intersection"
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignExact:
		return "exact"
	case AlignOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Align reconciles the given axes into one shared axis per the policy.
// All axes must share the same sample rate; rate validation belongs to the
// caller, which can report per-channel detail.
//
// Returns errs.ErrExactAlign when AlignExact finds differing axes,
// errs.ErrOverrideSize when AlignOverride finds differing lengths, and
// errs.ErrEmptyTimeIndex when AlignIntersection finds no common span or no
// axes are given.
func Align(policy Policy, indexes ...*TimeIndex) (*TimeIndex, error) {
	if len(indexes) == 0 {
		return nil, fmt.Errorf("%w: no axes to align", errs.ErrEmptyTimeIndex)
	}

	first := indexes[0]

	switch policy {
	case AlignLeft:
		return first, nil

	case AlignRight:
		return indexes[len(indexes)-1], nil

	case AlignExact:
		for _, ix := range indexes[1:] {
			if !first.Equal(ix) {
				return nil, fmt.Errorf("%w: %s vs %s", errs.ErrExactAlign, first, ix)
			}
		}

		return first, nil

	case AlignOverride:
		for _, ix := range indexes[1:] {
			if ix.Len() != first.Len() {
				return nil, fmt.Errorf("%w: %d vs %d points",
					errs.ErrOverrideSize, first.Len(), ix.Len())
			}
		}

		return first, nil

	case AlignUnion:
		start, end := first.Start(), first.End()
		for _, ix := range indexes[1:] {
			if ix.Start().Before(start) {
				start = ix.Start()
			}
			if ix.End().After(end) {
				end = ix.End()
			}
		}

		rate := first.SampleRate()
		n := int(math.Round(float64(end.Sub(start))*rate/1e9)) + 1

		return New(start, rate, n)

	case AlignIntersection:
		start, end := first.Start(), first.End()
		for _, ix := range indexes[1:] {
			if ix.Start().After(start) {
				start = ix.Start()
			}
			if ix.End().Before(end) {
				end = ix.End()
			}
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: axes share no common span", errs.ErrEmptyTimeIndex)
		}

		rate := first.SampleRate()
		n := int(math.Round(float64(end.Sub(start))*rate/1e9)) + 1

		return New(start, rate, n)

	default:
		return nil, fmt.Errorf("invalid align policy: %d", policy)
	}
}

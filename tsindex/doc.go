// Package tsindex implements the uniform time axis shared by every channel
// in a run.
//
// A TimeIndex is fully determined by its start instant, sample rate and
// point count, which keeps axis arithmetic exact: slicing, decimation and
// alignment all reduce to index math instead of timestamp list
// manipulation. Align implements the join policies used when channels with
// differing extents are combined onto one shared axis.
package tsindex

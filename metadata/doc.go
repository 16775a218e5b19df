// Package metadata defines the validated records layered onto every channel
// and run: Station, Run, and the closed set of channel records (Electric,
// Magnetic, Auxiliary) selected by ChannelKind.
//
// Every record round-trips through a flat map keyed by dotted field paths
// such as "time_period.start", which is the exchange representation the
// persistence layer consumes. Timestamps serialize as ISO-8601 UTC with
// nanosecond precision.
package metadata

// Package snapshot serializes a RunSeries into a compact, self-describing
// binary container and back.
//
// A snapshot stores the shared time axis once in a fixed-size header,
// followed by fixed-size channel index entries keyed by xxHash64 channel
// IDs, the channel name bytes, one compressed sample payload per channel,
// and a compressed JSON payload carrying the run, station and per-channel
// metadata maps. Payload compression is selectable (None, Zstd, S2, LZ4).
//
// Snapshots are the hand-off format between the in-memory containers and
// persistence collaborators: everything a consumer needs to rebuild the run
// is inside the bytes. Decode materializes the whole run in one step; Open
// returns a Handle for lazy per-channel access that fails fast once closed.
package snapshot

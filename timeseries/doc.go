// Package timeseries implements the two composed containers at the heart
// of mtseries: ChannelSeries, one channel's samples on a synthesized
// uniform time axis with layered station/run/channel metadata, and
// RunSeries, a set of channels reconciled onto one shared axis.
//
// The discipline throughout is a one-way metadata synchronization: while
// data is loaded, sample rate and time bounds are derived from the axis and
// mirrored into the metadata records after every mutation; stored metadata
// is only authoritative while no data is present. RunSeries.ValidateMetadata
// extends the same rule to the run level as advisory self-repair.
package timeseries

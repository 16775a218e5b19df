package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/mtgeo/mtseries/compress"
	"github.com/mtgeo/mtseries/endian"
	"github.com/mtgeo/mtseries/errs"
	"github.com/mtgeo/mtseries/internal/hash"
	"github.com/mtgeo/mtseries/timeseries"
	"github.com/mtgeo/mtseries/tsindex"
)

// Handle is an open snapshot: header, index and metadata are parsed once,
// sample payloads are decompressed lazily per channel. Every accessor
// checks validity, so a Handle kept past Close fails with
// errs.ErrHandleClosed instead of reading stale bytes.
//
// A Handle is read-only and safe to discard without Close; Close exists to
// make end-of-life explicit for callers that hold handles long-term.
type Handle struct {
	data    []byte
	engine  endian.EndianEngine
	codec   compress.Codec
	header  header
	entries []indexEntry
	names   []string
	offsets []int
	attrs   snapshotAttrs
	index   *tsindex.TimeIndex
	closed  bool
}

// Open parses the snapshot's header, index entries, channel names and
// metadata attrs, validating the layout without touching the sample
// payloads.
//
// Returns errs.ErrInvalidMagicNumber when the data does not open with the
// snapshot magic, errs.ErrInvalidHeader for a truncated or inconsistent
// header, and errs.ErrInvalidPayload when index entries and payloads do not
// agree.
func Open(data []byte) (*Handle, error) {
	engine := endian.GetLittleEndianEngine()

	h, err := parseHeader(data, engine)
	if err != nil {
		return nil, err
	}

	codec, err := compress.GetCodec(h.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidHeader, err)
	}

	indexEnd := headerSize + h.numChannels*indexEntrySize
	if len(data) < indexEnd {
		return nil, fmt.Errorf("%w: truncated index, %d bytes for %d channels",
			errs.ErrInvalidHeader, len(data), h.numChannels)
	}

	entries := make([]indexEntry, h.numChannels)
	namesLen, payloadsLen := 0, 0
	for i := range entries {
		entries[i] = parseIndexEntry(data[headerSize+i*indexEntrySize:], engine)
		namesLen += entries[i].nameLen
		payloadsLen += entries[i].payloadLen
	}

	if len(data) != indexEnd+namesLen+payloadsLen+h.attrsLen {
		return nil, fmt.Errorf("%w: %d bytes, index entries describe %d",
			errs.ErrInvalidPayload, len(data), indexEnd+namesLen+payloadsLen+h.attrsLen)
	}

	names := make([]string, h.numChannels)
	pos := indexEnd
	for i, entry := range entries {
		names[i] = string(data[pos : pos+entry.nameLen])
		pos += entry.nameLen
		if hash.ChannelID(names[i]) != entry.channelID {
			return nil, fmt.Errorf("%w: channel %q does not match its index entry ID",
				errs.ErrInvalidPayload, names[i])
		}
	}

	offsets := make([]int, h.numChannels)
	for i, entry := range entries {
		offsets[i] = pos
		pos += entry.payloadLen
	}

	rawAttrs, err := codec.Decompress(data[len(data)-h.attrsLen:])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress metadata attrs: %w", err)
	}
	var attrs snapshotAttrs
	if err := json.Unmarshal(rawAttrs, &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode metadata attrs: %w", err)
	}

	ix, err := tsindex.New(h.start, h.sampleRate, h.numSamples)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidHeader, err)
	}

	return &Handle{
		data:    data,
		engine:  engine,
		codec:   codec,
		header:  h,
		entries: entries,
		names:   names,
		offsets: offsets,
		attrs:   attrs,
		index:   ix,
	}, nil
}

// Close invalidates the handle. Further accessors fail with
// errs.ErrHandleClosed. Closing twice is a no-op.
func (h *Handle) Close() error {
	h.closed = true
	h.data = nil

	return nil
}

func (h *Handle) check() error {
	if h.closed {
		return fmt.Errorf("%w: snapshot handle", errs.ErrHandleClosed)
	}

	return nil
}

// Channels returns the stored channel names in index order.
func (h *Handle) Channels() ([]string, error) {
	if err := h.check(); err != nil {
		return nil, err
	}

	return append([]string(nil), h.names...), nil
}

// TimeIndex returns the shared axis every stored channel is aligned on.
func (h *Handle) TimeIndex() (*tsindex.TimeIndex, error) {
	if err := h.check(); err != nil {
		return nil, err
	}

	return h.index, nil
}

// Channel decompresses and rebuilds one stored channel, case-insensitively
// by component name, without materializing the rest of the run.
//
// Returns errs.ErrChannelNotFound when the component is not in the
// snapshot and errs.ErrHandleClosed after Close.
func (h *Handle) Channel(component string) (*timeseries.ChannelSeries, error) {
	if err := h.check(); err != nil {
		return nil, err
	}

	for i, name := range h.names {
		if strings.EqualFold(name, component) {
			return h.channelAt(i)
		}
	}

	return nil, fmt.Errorf("%w: %q, snapshot holds [%s]",
		errs.ErrChannelNotFound, component, strings.Join(h.names, ", "))
}

func (h *Handle) channelAt(i int) (*timeseries.ChannelSeries, error) {
	name := h.names[i]
	entry := h.entries[i]

	raw, err := h.codec.Decompress(h.data[h.offsets[i] : h.offsets[i]+entry.payloadLen])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %q sample payload: %w", name, err)
	}

	if len(raw) != 8*h.header.numSamples {
		return nil, fmt.Errorf("%w: channel %q has %d payload bytes for %d samples",
			errs.ErrInvalidPayload, name, len(raw), h.header.numSamples)
	}

	samples := make([]float64, h.header.numSamples)
	for j := range samples {
		samples[j] = math.Float64frombits(h.engine.Uint64(raw[8*j:]))
	}

	kind := h.attrs.Kinds[name]
	if kind == "" {
		kind = "auxiliary"
	}

	opts := []timeseries.ChannelOption{
		timeseries.WithChannelMetadata(h.attrs.Channels[name]),
	}
	if h.attrs.Station != nil {
		opts = append(opts, timeseries.WithStationMetadata(h.attrs.Station))
	}
	if h.attrs.Run != nil {
		opts = append(opts, timeseries.WithRunMetadata(h.attrs.Run))
	}

	ch, err := timeseries.NewChannelSeries(kind, nil, opts...)
	if err != nil {
		return nil, err
	}
	if err := ch.SetSamples(&timeseries.DataArray{Data: samples, Index: h.index}); err != nil {
		return nil, err
	}

	return ch, nil
}

// Run materializes the whole snapshot as a RunSeries.
func (h *Handle) Run() (*timeseries.RunSeries, error) {
	if err := h.check(); err != nil {
		return nil, err
	}

	channels := make([]*timeseries.ChannelSeries, 0, len(h.names))
	for i := range h.names {
		ch, err := h.channelAt(i)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}

	run, err := timeseries.NewRunSeries(
		timeseries.WithRunSeriesMetadata(h.attrs.Run),
		timeseries.WithRunStationMetadata(h.attrs.Station),
	)
	if err != nil {
		return nil, err
	}
	if err := run.SetDataset(channels, tsindex.AlignExact); err != nil {
		return nil, err
	}

	return run, nil
}

// Decode rebuilds a RunSeries from snapshot bytes in one step. It is
// shorthand for Open followed by Run.
func Decode(data []byte) (*timeseries.RunSeries, error) {
	h, err := Open(data)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	return h.Run()
}

package snapshot

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mtgeo/mtseries/compress"
	"github.com/mtgeo/mtseries/endian"
	"github.com/mtgeo/mtseries/errs"
	"github.com/mtgeo/mtseries/internal/hash"
	"github.com/mtgeo/mtseries/internal/options"
	"github.com/mtgeo/mtseries/timeseries"
)

// Encoder serializes a RunSeries into a self-describing snapshot: header,
// channel index entries, name bytes, per-channel compressed sample
// payloads, and a compressed metadata attrs payload.
type Encoder struct {
	compression compress.Type
	codec       compress.Codec
	engine      endian.EndianEngine
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*Encoder]

// WithCompression selects the payload compression algorithm. The default
// is S2.
func WithCompression(t compress.Type) EncoderOption {
	return options.New(func(e *Encoder) error {
		codec, err := compress.GetCodec(t)
		if err != nil {
			return err
		}
		e.compression = t
		e.codec = codec

		return nil
	})
}

// NewEncoder creates a snapshot encoder.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	e := &Encoder{
		compression: compress.TypeS2,
		codec:       compress.NewS2Codec(),
		engine:      endian.GetLittleEndianEngine(),
	}

	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// snapshotAttrs is the metadata side of a snapshot, carried as one
// compressed JSON payload keyed by the flat dotted-path maps every record
// round-trips through.
type snapshotAttrs struct {
	Run      map[string]any            `json:"run"`
	Station  map[string]any            `json:"station"`
	Kinds    map[string]string         `json:"channel_kinds"`
	Channels map[string]map[string]any `json:"channels"`
}

// Encode serializes the run. Every channel in a run shares one aligned
// axis, so the axis is stored once in the header and only sample payloads
// repeat per channel.
//
// Returns errs.ErrNoChannelsAdded for an empty run.
func (e *Encoder) Encode(run *timeseries.RunSeries) ([]byte, error) {
	names := run.Channels()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: run has no channels", errs.ErrNoChannelsAdded)
	}

	ix := run.TimeIndex()

	attrs := snapshotAttrs{
		Run:      run.RunMetadata().ToMap(),
		Station:  run.StationMetadata().ToMap(),
		Kinds:    make(map[string]string, len(names)),
		Channels: make(map[string]map[string]any, len(names)),
	}

	payloads := make([][]byte, 0, len(names))
	entries := make([]indexEntry, 0, len(names))
	for _, name := range names {
		ch, err := run.Channel(name)
		if err != nil {
			return nil, err
		}

		attrs.Kinds[name] = ch.Kind().String()
		attrs.Channels[name] = ch.ChannelMetadata().ToMap()

		raw := make([]byte, 0, 8*ch.NSamples())
		for _, v := range ch.Samples() {
			raw = e.engine.AppendUint64(raw, math.Float64bits(v))
		}

		payload, err := e.codec.Compress(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to compress %q sample payload: %w", name, err)
		}

		payloads = append(payloads, payload)
		entries = append(entries, indexEntry{
			channelID:  hash.ChannelID(name),
			payloadLen: len(payload),
			nameLen:    len(name),
		})
	}

	rawAttrs, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata attrs: %w", err)
	}
	attrsPayload, err := e.codec.Compress(rawAttrs)
	if err != nil {
		return nil, fmt.Errorf("failed to compress metadata attrs: %w", err)
	}

	h := header{
		compression: e.compression,
		numChannels: len(names),
		start:       ix.Start(),
		sampleRate:  ix.SampleRate(),
		numSamples:  ix.Len(),
		attrsLen:    len(attrsPayload),
	}

	size := headerSize + len(entries)*indexEntrySize + len(attrsPayload)
	for i, entry := range entries {
		size += entry.nameLen + len(payloads[i])
	}

	buf := make([]byte, 0, size)
	buf = h.append(buf, e.engine)
	for _, entry := range entries {
		buf = entry.append(buf, e.engine)
	}
	for _, name := range names {
		buf = append(buf, name...)
	}
	for _, payload := range payloads {
		buf = append(buf, payload...)
	}
	buf = append(buf, attrsPayload...)

	return buf, nil
}

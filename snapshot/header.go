package snapshot

import (
	"fmt"
	"math"
	"time"

	"github.com/mtgeo/mtseries/compress"
	"github.com/mtgeo/mtseries/endian"
	"github.com/mtgeo/mtseries/errs"
)

const (
	// MagicNumber opens every snapshot: "MTS" plus the container revision.
	MagicNumber uint32 = 0x4D545331

	// Version is the current container revision.
	Version uint8 = 1

	headerSize     = 36
	indexEntrySize = 16
)

// header is the fixed-size region that opens a snapshot. All multi-byte
// fields are little-endian.
//
// Layout:
//
//	offset  size  field
//	0       4     magic number
//	4       1     version
//	5       1     compression type
//	6       2     reserved
//	8       4     channel count
//	12      8     start time, Unix nanoseconds
//	20      8     sample rate, IEEE 754 bits
//	28      4     samples per channel
//	32      4     compressed attrs payload length
type header struct {
	compression compress.Type
	numChannels int
	start       time.Time
	sampleRate  float64
	numSamples  int
	attrsLen    int
}

func (h header) append(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint32(buf, MagicNumber)
	buf = append(buf, Version, byte(h.compression), 0, 0)
	buf = engine.AppendUint32(buf, uint32(h.numChannels))
	buf = engine.AppendUint64(buf, uint64(h.start.UnixNano()))
	buf = engine.AppendUint64(buf, math.Float64bits(h.sampleRate))
	buf = engine.AppendUint32(buf, uint32(h.numSamples))
	buf = engine.AppendUint32(buf, uint32(h.attrsLen))

	return buf
}

func parseHeader(data []byte, engine endian.EndianEngine) (header, error) {
	var h header

	if len(data) < headerSize {
		return h, fmt.Errorf("%w: %d bytes, need at least %d", errs.ErrInvalidHeader, len(data), headerSize)
	}
	if magic := engine.Uint32(data[0:4]); magic != MagicNumber {
		return h, fmt.Errorf("%w: 0x%08X", errs.ErrInvalidMagicNumber, magic)
	}
	if version := data[4]; version != Version {
		return h, fmt.Errorf("%w: unsupported version %d", errs.ErrInvalidHeader, version)
	}

	h.compression = compress.Type(data[5])
	h.numChannels = int(engine.Uint32(data[8:12]))
	h.start = time.Unix(0, int64(engine.Uint64(data[12:20]))).UTC()
	h.sampleRate = math.Float64frombits(engine.Uint64(data[20:28]))
	h.numSamples = int(engine.Uint32(data[28:32]))
	h.attrsLen = int(engine.Uint32(data[32:36]))

	if h.numChannels == 0 {
		return h, fmt.Errorf("%w: zero channels", errs.ErrInvalidHeader)
	}
	if h.sampleRate <= 0 || math.IsNaN(h.sampleRate) {
		return h, fmt.Errorf("%w: sample rate %v", errs.ErrInvalidHeader, h.sampleRate)
	}
	if h.numSamples < 1 {
		return h, fmt.Errorf("%w: %d samples per channel", errs.ErrInvalidHeader, h.numSamples)
	}

	return h, nil
}

// indexEntry locates one channel's compressed sample payload. Entries are
// fixed-size and follow the header in channel-name order; the name bytes
// and payloads follow in the same order.
//
// Layout: channel ID (xxHash64 of the lowercase component name, 8 bytes),
// payload length (4 bytes), name length (4 bytes).
type indexEntry struct {
	channelID  uint64
	payloadLen int
	nameLen    int
}

func (e indexEntry) append(buf []byte, engine endian.EndianEngine) []byte {
	buf = engine.AppendUint64(buf, e.channelID)
	buf = engine.AppendUint32(buf, uint32(e.payloadLen))
	buf = engine.AppendUint32(buf, uint32(e.nameLen))

	return buf
}

func parseIndexEntry(data []byte, engine endian.EndianEngine) indexEntry {
	return indexEntry{
		channelID:  engine.Uint64(data[0:8]),
		payloadLen: int(engine.Uint32(data[8:12])),
		nameLen:    int(engine.Uint32(data[12:16])),
	}
}

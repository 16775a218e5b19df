package compress

import "fmt"

// Type identifies a compression algorithm used for snapshot payloads.
type Type uint8

const (
	TypeNone Type = 0x1 // TypeNone stores payloads uncompressed.
	TypeZstd Type = 0x2 // TypeZstd uses Zstandard compression.
	TypeS2   Type = 0x3 // TypeS2 uses S2 (Snappy-compatible) compression.
	TypeLZ4  Type = 0x4 // TypeLZ4 uses LZ4 block compression.
)

func (t Type) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeZstd:
		return "Zstd"
	case TypeS2:
		return "S2"
	case TypeLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Compressor compresses a complete payload, typically one channel's raw
// sample bytes or a flattened metadata attribute payload.
//
// The returned slice is newly allocated and owned by the caller; the input
// slice is never modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor of the same algorithm. It returns an
// error when the input is corrupted or was produced by a different
// algorithm.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions of one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[Type]Codec{
	TypeNone: NewNoOpCodec(),
	TypeZstd: NewZstdCodec(),
	TypeS2:   NewS2Codec(),
	TypeLZ4:  NewLZ4Codec(),
}

// GetCodec returns the built-in Codec for the given compression type.
func GetCodec(t Type) (Codec, error) {
	if codec, ok := builtinCodecs[t]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", t)
}

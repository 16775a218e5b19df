package compress

// NoOpCodec bypasses compression entirely. It is the right choice when the
// snapshot is short-lived or the payloads are small enough that codec
// overhead dominates.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a codec that passes data through untouched.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns the input slice as-is. The result aliases the input.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is. The result aliases the input.
func (c NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

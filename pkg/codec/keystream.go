package codec

// Keystream constants. These are part of the record format: a different pair
// produces a stream that never validates a single real record.
const (
	streamMul = 0x41C64E6D
	streamAdd = 0x00006073
)

// nextSeed advances the keystream by one step. Pure; callers own the evolving
// seed and must advance exactly once per 16-bit word in offset order.
func nextSeed(seed uint32) uint32 {
	return seed*streamMul + streamAdd
}

// xorMask returns the 16-bit XOR mask carried by an advanced seed.
func xorMask(seed uint32) uint16 {
	return uint16(seed >> 16)
}

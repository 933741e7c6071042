package codec

// blockOrders holds all 24 distinct permutations of the four payload blocks,
// in lexicographic order. blockOrders[sel][logical] is the position of the
// logical block within the shuffled payload. The table must stay complete and
// duplicate-free: a padded or repeated entry reorders some seeds incorrectly
// while still looking well-formed.
var blockOrders = [24][4]int{
	{0, 1, 2, 3}, {0, 1, 3, 2}, {0, 2, 1, 3}, {0, 2, 3, 1}, {0, 3, 1, 2}, {0, 3, 2, 1},
	{1, 0, 2, 3}, {1, 0, 3, 2}, {1, 2, 0, 3}, {1, 2, 3, 0}, {1, 3, 0, 2}, {1, 3, 2, 0},
	{2, 0, 1, 3}, {2, 0, 3, 1}, {2, 1, 0, 3}, {2, 1, 3, 0}, {2, 3, 0, 1}, {2, 3, 1, 0},
	{3, 0, 1, 2}, {3, 0, 2, 1}, {3, 1, 0, 2}, {3, 1, 2, 0}, {3, 2, 0, 1}, {3, 2, 1, 0},
}

// orderCount is the number of block orders; selectors are reduced mod this.
const orderCount = uint32(len(blockOrders))

// unshufflePayload restores the canonical block order 0,1,2,3 in place.
// The payload must be exactly PayloadSize bytes.
func unshufflePayload(payload []byte, selector uint32) {
	order := blockOrders[selector%orderCount]

	var tmp [PayloadSize]byte
	copy(tmp[:], payload)
	for logical, pos := range order {
		copy(payload[logical*BlockSize:(logical+1)*BlockSize], tmp[pos*BlockSize:(pos+1)*BlockSize])
	}
}

// shufflePayload applies the block order for selector in place; it is the
// inverse of unshufflePayload and exists for the encoder.
func shufflePayload(payload []byte, selector uint32) {
	order := blockOrders[selector%orderCount]

	var tmp [PayloadSize]byte
	copy(tmp[:], payload)
	for logical, pos := range order {
		copy(payload[pos*BlockSize:(pos+1)*BlockSize], tmp[logical*BlockSize:(logical+1)*BlockSize])
	}
}

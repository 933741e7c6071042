package codec

import (
	"bytes"
	"testing"
)

func TestBlockOrders_Properties(t *testing.T) {
	if len(blockOrders) != 24 {
		t.Fatalf("Expected 24 block orders, got %d", len(blockOrders))
	}

	seen := make(map[[BlockCount]int]bool, len(blockOrders))
	for i, order := range blockOrders {
		var hits [BlockCount]bool
		for _, pos := range order {
			if pos < 0 || pos >= BlockCount {
				t.Fatalf("Order %d contains out-of-range position %d", i, pos)
			}
			if hits[pos] {
				t.Fatalf("Order %d repeats position %d", i, pos)
			}
			hits[pos] = true
		}

		if seen[order] {
			t.Errorf("Order %d duplicates an earlier entry: %v", i, order)
		}
		seen[order] = true
	}

	if blockOrders[0] != [BlockCount]int{0, 1, 2, 3} {
		t.Errorf("Selector 0 must keep the canonical order, got %v", blockOrders[0])
	}
}

func TestShuffleUnshuffle_Inverse(t *testing.T) {
	original := make([]byte, PayloadSize)
	for i := range original {
		original[i] = byte(i * 7)
	}

	for selector := uint32(0); selector < orderCount; selector++ {
		payload := make([]byte, PayloadSize)
		copy(payload, original)

		shufflePayload(payload, selector)
		unshufflePayload(payload, selector)

		if !bytes.Equal(payload, original) {
			t.Errorf("Selector %d: unshuffle did not invert shuffle", selector)
		}
	}
}

func TestUnshuffle_MovesWholeBlocks(t *testing.T) {
	// Fill each canonical block with its own index, shuffle, and check the
	// blocks land exactly where the order table says.
	payload := make([]byte, PayloadSize)
	for block := 0; block < BlockCount; block++ {
		for i := 0; i < BlockSize; i++ {
			payload[block*BlockSize+i] = byte(block)
		}
	}

	const selector = 5 // order {0, 3, 2, 1}
	shufflePayload(payload, selector)

	order := blockOrders[selector]
	for logical, pos := range order {
		for i := 0; i < BlockSize; i++ {
			if payload[pos*BlockSize+i] != byte(logical) {
				t.Fatalf("Block %d not found at shuffled position %d", logical, pos)
			}
		}
	}

	unshufflePayload(payload, selector)
	for block := 0; block < BlockCount; block++ {
		if payload[block*BlockSize] != byte(block) {
			t.Errorf("Block %d not restored to canonical position", block)
		}
	}
}

func TestUnshuffle_SelectorWraps(t *testing.T) {
	a := make([]byte, PayloadSize)
	b := make([]byte, PayloadSize)
	for i := range a {
		a[i] = byte(i)
		b[i] = byte(i)
	}

	unshufflePayload(a, 7)
	unshufflePayload(b, 7+orderCount)

	if !bytes.Equal(a, b) {
		t.Error("Selectors congruent mod 24 must pick the same order")
	}
}

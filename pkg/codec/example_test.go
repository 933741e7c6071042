package codec_test

import (
	"fmt"
	"log"

	"github.com/MouseMan32/PokHo/pkg/codec"
)

// ExampleRecordCodec_basic demonstrates basic record encoding and decoding
func ExampleRecordCodec_basic() {
	c := codec.NewRecordCodec()

	// Build a valid ciphertext record from plaintext fields
	raw := c.Encode(codec.Fields{
		IdentityCode:     25,
		NatureIndex:      10,
		PersonalityValue: 0x2E4D9C71,
		TrainerID:        51342,
		SecretID:         18076,
	}, 0x1B2E4D5C)

	// Decode it back
	record, err := c.Decode(raw)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Encoded %d bytes\n", len(raw))
	fmt.Printf("Species code: %d\n", record.IdentityCode)
	fmt.Printf("Checksum ok: %t\n", record.ChecksumOK)
	fmt.Printf("Present: %t\n", record.Present())
	fmt.Printf("Rare: %t\n", record.Rare)

	// Output:
	// Encoded 232 bytes
	// Species code: 25
	// Checksum ok: true
	// Present: true
	// Rare: false
}

// ExampleRecordCodec_errorHandling demonstrates the length contract
func ExampleRecordCodec_errorHandling() {
	c := codec.NewRecordCodec()

	// Anything but exactly 232 bytes is rejected
	_, err := c.Decode([]byte{0x01, 0x02, 0x03})
	if err != nil {
		fmt.Printf("Decode error: %v\n", err)
	}

	// Output:
	// Decode error: codec: record must be exactly 232 bytes
}

// ExampleRecord_Present demonstrates the plausibility filter
func ExampleRecord_Present() {
	c := codec.NewRecordCodec()

	// An all-zero slot decodes cleanly but holds no creature
	blank, err := c.Decode(c.Encode(codec.Fields{}, 0x77))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Blank slot present: %t\n", blank.Present())

	occupied, err := c.Decode(c.Encode(codec.Fields{
		IdentityCode:     151,
		PersonalityValue: 0xA1B2C3D4,
	}, 0x77))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Occupied slot present: %t\n", occupied.Present())

	// Output:
	// Blank slot present: false
	// Occupied slot present: true
}

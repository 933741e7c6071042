// Package codec decrypts and decodes the 232-byte creature records stored
// in PC box regions of supported save dumps.
//
// # Record Format
//
// A record is a fixed 232-byte unit:
//
//	[Seed(4)][Reserved(2)][Checksum(2)][Payload(224)]
//
// Fields:
//   - Seed: 32-bit value (little-endian, stored in the clear) that drives both
//     the decryption keystream and the block-order selection
//   - Reserved: 16 bits, not interpreted
//   - Checksum: 16-bit sum (little-endian) of the decrypted payload words
//   - Payload: 224 bytes, encrypted and block-shuffled
//
// # Encryption
//
// The payload is encrypted word-by-word with a linear congruential keystream
// seeded from the record seed:
//
//	seed' = seed*0x41C64E6D + 0x6073 (mod 2^32)
//
// Each 16-bit little-endian word is XORed with the upper 16 bits of the
// advanced seed. The stream advances exactly once per word, in increasing
// offset order, and is never reset mid-record.
//
// # Block Shuffling
//
// The decrypted payload is four 56-byte blocks stored in one of the 24
// possible orders. The order is selected by seed mod 24 against a fixed table
// of all 24 distinct permutations of four elements; decoding restores the
// canonical order 0,1,2,3 before any field is read.
//
// # Checksum
//
// The declared checksum is compared against the sum of the 112 decrypted
// 16-bit words mod 65536. Block shuffling moves whole words, so the sum is
// identical before and after unshuffling. A mismatch marks the record as
// garbage; it is not an error.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//	rec, err := c.Decode(raw)
//	if err != nil {
//	    return err // raw was not 232 bytes
//	}
//	if rec.Present() {
//	    fmt.Println(rec.IdentityCode)
//	}
package codec

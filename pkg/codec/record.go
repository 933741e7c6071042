package codec

import (
	"encoding/binary"
	"errors"
)

// Record geometry. Region layouts elsewhere in the module are derived from
// RecordSize and must never drift from it.
const (
	RecordSize  = 232 // full encrypted record
	HeaderSize  = 8   // seed + reserved + checksum, stored in the clear
	PayloadSize = 224 // four shuffled blocks
	BlockSize   = 56
	BlockCount  = 4
)

// Header offsets within a raw record.
const (
	seedOffset     = 0x00
	checksumOffset = 0x06
)

// Field offsets within the canonical (decrypted, unshuffled) record. All of
// them land in logical block 0.
const (
	identityOffset    = 0x08
	trainerIDOffset   = 0x0C
	secretIDOffset    = 0x0E
	personalityOffset = 0x18
	natureOffset      = 0x1C
)

// Species codes the format can actually store. Anything outside the range is
// garbage regardless of checksum.
const (
	MinSpeciesCode = 1
	MaxSpeciesCode = 809
)

// NatureCount is the number of nature indexes the format defines.
const NatureCount = 25

// rareThreshold is the exclusive upper bound of the identity XOR fold for the
// rare variant: 16 of 65536 outcomes, fixed by identity data at creation.
const rareThreshold = 16

// ErrRecordLength is returned by Decode for input that is not exactly
// RecordSize bytes. It is the only way Decode fails.
var ErrRecordLength = errors.New("codec: record must be exactly 232 bytes")

// Record is the decoded view of one creature record. It is a plain value:
// built once per Decode call and never mutated afterwards.
type Record struct {
	Seed             uint32
	DeclaredChecksum uint16
	ComputedChecksum uint16
	ChecksumOK       bool
	IdentityCode     uint16
	NatureIndex      uint8
	PersonalityValue uint32
	TrainerID        uint16
	SecretID         uint16
	Rare             bool
}

// Present reports whether the record passes the plausibility filter: checksum
// valid, identity code in the species range and a nonzero personality value.
// Checksum-passing garbage fails this and must be treated as absent.
func (r *Record) Present() bool {
	return r.ChecksumOK && SpeciesInRange(r.IdentityCode) && r.PersonalityValue != 0
}

// SpeciesInRange reports whether code is a species the format defines.
func SpeciesInRange(code uint16) bool {
	return code >= MinSpeciesCode && code <= MaxSpeciesCode
}

// Fields holds the plaintext field values used to build a record with Encode.
type Fields struct {
	IdentityCode     uint16
	NatureIndex      uint8
	PersonalityValue uint32
	TrainerID        uint16
	SecretID         uint16
}

// RecordCodec encrypts and decrypts creature records. It is stateless and
// safe for concurrent use.
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance.
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Decode decrypts, checksums and unshuffles one raw record. It fails only on
// malformed length; every other byte pattern decodes to a Record whose
// ChecksumOK reflects whether the declared checksum matched. Callers scoring
// noisy data rely on that: garbage is a classification, not an error.
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	if len(data) != RecordSize {
		return nil, ErrRecordLength
	}

	seed := binary.LittleEndian.Uint32(data[seedOffset:])
	declared := binary.LittleEndian.Uint16(data[checksumOffset:])

	// Decrypt word-by-word, summing as we go. The sum is over decrypted
	// words and is independent of the block order.
	payload := make([]byte, PayloadSize)
	stream := seed
	var sum uint16
	for i := 0; i < PayloadSize; i += 2 {
		stream = nextSeed(stream)
		word := binary.LittleEndian.Uint16(data[HeaderSize+i:]) ^ xorMask(stream)
		binary.LittleEndian.PutUint16(payload[i:], word)
		sum += word
	}

	unshufflePayload(payload, seed)

	r := &Record{
		Seed:             seed,
		DeclaredChecksum: declared,
		ComputedChecksum: sum,
		ChecksumOK:       sum == declared,
		IdentityCode:     binary.LittleEndian.Uint16(payload[identityOffset-HeaderSize:]),
		NatureIndex:      payload[natureOffset-HeaderSize],
		PersonalityValue: binary.LittleEndian.Uint32(payload[personalityOffset-HeaderSize:]),
		TrainerID:        binary.LittleEndian.Uint16(payload[trainerIDOffset-HeaderSize:]),
		SecretID:         binary.LittleEndian.Uint16(payload[secretIDOffset-HeaderSize:]),
	}
	r.Rare = rareFold(r.PersonalityValue, r.TrainerID, r.SecretID) < rareThreshold

	return r, nil
}

// Encode builds a valid ciphertext record from plaintext fields: canonical
// layout, checksum, shuffle by seed, then encrypt. The inverse of Decode for
// well-formed input; used by fixtures and round-trip tests.
func (c *RecordCodec) Encode(f Fields, seed uint32) []byte {
	payload := make([]byte, PayloadSize)
	binary.LittleEndian.PutUint16(payload[identityOffset-HeaderSize:], f.IdentityCode)
	binary.LittleEndian.PutUint16(payload[trainerIDOffset-HeaderSize:], f.TrainerID)
	binary.LittleEndian.PutUint16(payload[secretIDOffset-HeaderSize:], f.SecretID)
	binary.LittleEndian.PutUint32(payload[personalityOffset-HeaderSize:], f.PersonalityValue)
	payload[natureOffset-HeaderSize] = f.NatureIndex

	var sum uint16
	for i := 0; i < PayloadSize; i += 2 {
		sum += binary.LittleEndian.Uint16(payload[i:])
	}

	shufflePayload(payload, seed)

	out := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(out[seedOffset:], seed)
	binary.LittleEndian.PutUint16(out[checksumOffset:], sum)

	stream := seed
	for i := 0; i < PayloadSize; i += 2 {
		stream = nextSeed(stream)
		word := binary.LittleEndian.Uint16(payload[i:]) ^ xorMask(stream)
		binary.LittleEndian.PutUint16(out[HeaderSize+i:], word)
	}

	return out
}

// rareFold collapses the identity values into the 16-bit fold the rare check
// thresholds against.
func rareFold(pv uint32, trainerID, secretID uint16) uint16 {
	return uint16(pv>>16) ^ uint16(pv) ^ trainerID ^ secretID
}

//go:build bench
// +build bench

package codec

import (
	"testing"
)

func BenchmarkRecordCodec_Decode(b *testing.B) {
	codec := NewRecordCodec()

	benchmarks := []struct {
		name string
		seed uint32
	}{
		{
			name: "identity order",
			seed: 0,
		},
		{
			name: "mid order",
			seed: 11,
		},
		{
			name: "reversed order",
			seed: 23,
		},
	}

	fields := Fields{
		IdentityCode:     25,
		NatureIndex:      10,
		PersonalityValue: 0x87654321,
		TrainerID:        0x1234,
		SecretID:         0xABCD,
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			encoded := codec.Encode(fields, bm.seed)

			b.SetBytes(RecordSize)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, err := codec.Decode(encoded)
				if err != nil {
					b.Fatalf("Decode failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkRecordCodec_Encode(b *testing.B) {
	codec := NewRecordCodec()
	fields := Fields{
		IdentityCode:     493,
		NatureIndex:      12,
		PersonalityValue: 0x12345678,
		TrainerID:        0x1234,
		SecretID:         0x5678,
	}

	b.SetBytes(RecordSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = codec.Encode(fields, uint32(i))
	}
}

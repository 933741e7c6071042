package region

import (
	"github.com/MouseMan32/PokHo/pkg/codec"
)

// Score weights. The formula is shared by every caller that compares
// candidates, so these must never vary per call site.
const (
	validWeight     = 2.0
	plausibleWeight = 1.0
	rareWeight      = 0.25
	invalidPenalty  = 0.5
	oobPenalty      = 10.0
)

var recordCodec = codec.NewRecordCodec()

// Score evaluates every slot of the region at offset and returns the scored
// candidate. Empty slots are recognized before any decode work; slots past
// the end of the blob each charge a heavy penalty and stop the scan.
func Score(blob []byte, offset int) Candidate {
	return scanRegion(blob, offset, 1, 0)
}

// ScoreSampled is the cheap sweep variant of Score: it visits every stride-th
// slot and stops early after badRunLimit consecutive invalid slots. A
// badRunLimit of zero disables the early exit. Counts reflect only the slots
// actually visited, so sampled scores are comparable to each other but not to
// full scores.
func ScoreSampled(blob []byte, offset, stride, badRunLimit int) Candidate {
	if stride < 1 {
		stride = 1
	}
	return scanRegion(blob, offset, stride, badRunLimit)
}

func scanRegion(blob []byte, offset, stride, badRunLimit int) Candidate {
	cand := Candidate{Offset: offset}

	missing := 0
	badRun := 0
	for slot := 0; slot < SlotCount; slot += stride {
		start := offset + slot*codec.RecordSize
		end := start + codec.RecordSize
		if start < 0 || end > len(blob) {
			// Running past the blob is strong evidence against this
			// offset. Charge every unread slot on the lattice and stop.
			missing = (SlotCount - slot + stride - 1) / stride
			break
		}

		slice := blob[start:end]
		if allZero(slice) {
			// Empty slots are neutral: no decode, no effect on the
			// bad run.
			cand.EmptyCount++
			continue
		}

		record, err := recordCodec.Decode(slice)
		if err == nil && record.ChecksumOK && codec.SpeciesInRange(record.IdentityCode) {
			cand.ValidCount++
			if record.Rare {
				cand.RareCount++
			}
			badRun = 0
			continue
		}

		cand.InvalidCount++
		if err == nil && codec.SpeciesInRange(record.IdentityCode) {
			// Failed checksum but a believable species code: weak
			// positive evidence that records live here.
			cand.PlausibleIdentityCount++
		}
		badRun++
		if badRunLimit > 0 && badRun >= badRunLimit {
			break
		}
	}

	cand.Score = validWeight*float64(cand.ValidCount) +
		plausibleWeight*float64(cand.PlausibleIdentityCount) +
		rareWeight*float64(cand.RareCount) -
		invalidPenalty*float64(cand.InvalidCount) -
		oobPenalty*float64(missing)

	return cand
}

// allZero reports whether every byte of b is zero.
func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

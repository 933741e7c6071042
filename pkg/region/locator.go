package region

import (
	"sort"

	"github.com/MouseMan32/PokHo/pkg/codec"
)

// halfSlotShift absorbs the common half-record misalignment seen in save
// dumps: exports produced by some tools start 116 bytes into the first slot.
const halfSlotShift = codec.RecordSize / 2

// Locate sweeps the whole blob for record regions with no prior hint. It
// runs a coarse sampled sweep, re-sweeps finely around the survivors, fully
// re-scores the finalists and returns up to TopN candidates ranked best
// first. ErrNoRegion is returned when nothing clears the thresholds.
//
// Locate is deterministic: byte-identical blobs and equal params always
// produce the same candidates in the same order.
func Locate(blob []byte, p ScanParams) ([]Candidate, error) {
	p = p.withDefaults()

	var coarse []Candidate
	for off := 0; off < len(blob); off += p.CoarseStride {
		c := ScoreSampled(blob, off, p.SampleStride, p.BadRunLimit)
		if qualifies(c, p) {
			coarse = append(coarse, c)
		}
	}
	if len(coarse) == 0 {
		return nil, ErrNoRegion
	}

	// Fine pass: re-sweep a tight lattice around each survivor. The span is
	// rounded to the stride so the survivor offset itself is always re-hit.
	span := (p.FineRadius / p.FineStride) * p.FineStride
	visited := make(map[int]bool)
	var fine []Candidate
	for _, c := range coarse {
		for off := c.Offset - span; off <= c.Offset+span; off += p.FineStride {
			if off < 0 || visited[off] {
				continue
			}
			visited[off] = true
			fc := ScoreSampled(blob, off, p.SampleStride, p.BadRunLimit)
			if qualifies(fc, p) {
				fine = append(fine, fc)
			}
		}
	}
	if len(fine) == 0 {
		return nil, ErrNoRegion
	}
	sortCandidates(fine)
	if len(fine) > p.RefineCount {
		fine = fine[:p.RefineCount]
	}

	// Full-precision pass over the finalists only; sampled scores got them
	// here but the returned ranking must reflect every slot.
	refined := make([]Candidate, 0, len(fine))
	for _, c := range fine {
		fc := Score(blob, c.Offset)
		if qualifies(fc, p) {
			refined = append(refined, fc)
		}
	}
	if len(refined) == 0 {
		return nil, ErrNoRegion
	}
	sortCandidates(refined)
	if len(refined) > p.TopN {
		refined = refined[:p.TopN]
	}
	return refined, nil
}

// Autopick resolves the region offset near a caller-supplied hint. It sweeps
// a bounded window around the hint and around the hint shifted a half slot
// either way, fully re-scores the best coarse candidates and returns the
// winner plus the refined ranking for diagnostics. Unlike Locate it applies
// no score threshold while sweeping; the hint is trusted enough that the best
// decodable region in the window wins. ErrNoRegion is returned when not even
// one record decodes anywhere in the window.
func Autopick(blob []byte, hint int, p ScanParams) (Candidate, []Candidate, error) {
	p = p.withDefaults()

	bases := []int{hint, hint - halfSlotShift, hint + halfSlotShift}
	visited := make(map[int]bool)
	var coarse []Candidate
	for _, base := range bases {
		lo := base - p.WindowRadius
		if lo < 0 {
			lo = 0
		}
		hi := base + p.WindowRadius
		if hi > len(blob)-1 {
			hi = len(blob) - 1
		}
		for off := lo; off <= hi; off += p.CoarseStride {
			if visited[off] {
				continue
			}
			visited[off] = true
			coarse = append(coarse, ScoreSampled(blob, off, p.SampleStride, p.BadRunLimit))
		}
	}
	if len(coarse) == 0 {
		return Candidate{}, nil, ErrNoRegion
	}

	sortCandidates(coarse)
	if len(coarse) > p.RefineCount {
		coarse = coarse[:p.RefineCount]
	}

	refined := make([]Candidate, len(coarse))
	for i, c := range coarse {
		refined[i] = Score(blob, c.Offset)
	}
	sortCandidates(refined)

	best := refined[0]
	if best.ValidCount < p.minValid() {
		return Candidate{}, nil, ErrNoRegion
	}
	return best, refined, nil
}

// qualifies applies the sweep thresholds. A candidate that decoded nothing
// never qualifies, whatever the configured minimums.
func qualifies(c Candidate, p ScanParams) bool {
	return c.ValidCount >= p.minValid() && c.Score >= p.MinScore
}

// sortCandidates orders best first: score descending, invalid count
// ascending, offset ascending. The comparison is total, which keeps rankings
// reproducible across runs.
func sortCandidates(list []Candidate) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.InvalidCount != b.InvalidCount {
			return a.InvalidCount < b.InvalidCount
		}
		return a.Offset < b.Offset
	})
}

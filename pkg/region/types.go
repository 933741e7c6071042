package region

import "errors"

// Sentinel errors returned by the locator and the export path.
var (
	// ErrNoRegion means no candidate offset cleared the plausibility
	// threshold anywhere in the search space.
	ErrNoRegion = errors.New("region: no plausible record region found")

	// ErrEmptySlot means the requested slot holds no creature. Empty and
	// garbage slots both report it; neither has content worth exporting.
	ErrEmptySlot = errors.New("region: slot has no content")

	// ErrOutOfRange means the requested slot range extends past the end of
	// the blob.
	ErrOutOfRange = errors.New("region: slot range extends past the end of the blob")

	// ErrBadSlot means the box or slot index falls outside the 31x30 grid.
	ErrBadSlot = errors.New("region: box or slot index out of range")
)

// Candidate is the scored evaluation of one region offset. Candidates order
// by score descending, then invalid count ascending, then offset ascending,
// so a ranking is always total and reproducible.
type Candidate struct {
	Offset                 int     `json:"offset"`
	Score                  float64 `json:"score"`
	ValidCount             int     `json:"valid_count"`
	EmptyCount             int     `json:"empty_count"`
	InvalidCount           int     `json:"invalid_count"`
	RareCount              int     `json:"rare_count"`
	PlausibleIdentityCount int     `json:"plausible_identity_count"`
}

// ScanParams bound the cost and selectivity of a locator run. The zero value
// of any geometry field falls back to its default; thresholds are taken as
// given, except that a candidate must always decode at least one valid record
// to qualify.
type ScanParams struct {
	// CoarseStride is the step between candidate offsets in the first
	// sweep across the blob or hint window.
	CoarseStride int

	// FineStride and FineRadius control the second sweep around each
	// coarse survivor.
	FineStride int
	FineRadius int

	// WindowRadius bounds the hint window swept by Autopick, in bytes to
	// each side of a base offset.
	WindowRadius int

	// SampleStride is the slot step used by the sampled scorer during
	// sweeps. 1 scores every slot.
	SampleStride int

	// BadRunLimit stops a sampled scan after this many consecutive
	// invalid slots.
	BadRunLimit int

	// MinValid and MinScore gate which candidates survive a sweep.
	MinValid int
	MinScore float64

	// RefineCount is how many sweep survivors get a full re-score.
	RefineCount int

	// TopN caps the ranked list Locate returns.
	TopN int
}

// DefaultScanParams returns the scan parameters used when a caller supplies
// none. The strides and radii are tuned so a full-save sweep stays cheap
// while still landing on the true offset in practice.
func DefaultScanParams() ScanParams {
	return ScanParams{
		CoarseStride: 64,
		FineStride:   2,
		FineRadius:   64,
		WindowRadius: 16384,
		SampleStride: 31,
		BadRunLimit:  24,
		MinValid:     1,
		MinScore:     1.5,
		RefineCount:  15,
		TopN:         10,
	}
}

// withDefaults fills nonpositive geometry fields from DefaultScanParams so a
// zero ScanParams is usable and no stride can stall a sweep.
func (p ScanParams) withDefaults() ScanParams {
	def := DefaultScanParams()
	if p.CoarseStride <= 0 {
		p.CoarseStride = def.CoarseStride
	}
	if p.FineStride <= 0 {
		p.FineStride = def.FineStride
	}
	if p.FineRadius <= 0 {
		p.FineRadius = def.FineRadius
	}
	if p.WindowRadius <= 0 {
		p.WindowRadius = def.WindowRadius
	}
	if p.SampleStride <= 0 {
		p.SampleStride = def.SampleStride
	}
	if p.BadRunLimit <= 0 {
		p.BadRunLimit = def.BadRunLimit
	}
	if p.RefineCount <= 0 {
		p.RefineCount = def.RefineCount
	}
	if p.TopN <= 0 {
		p.TopN = def.TopN
	}
	return p
}

// minValid is the effective valid-slot floor: the locator never reports a
// region it could not decode a single record from, whatever the thresholds.
func (p ScanParams) minValid() int {
	if p.MinValid < 1 {
		return 1
	}
	return p.MinValid
}

// Package region locates and walks the 31x30 record grid inside a raw save
// blob.
//
// # Region Layout
//
// A region is a contiguous run of 930 record slots, 232 bytes each:
//
//	offset + 0*232    box  0, slot  0
//	offset + 1*232    box  0, slot  1
//	...
//	offset + 29*232   box  0, slot 29
//	offset + 30*232   box  1, slot  0
//	...
//	offset + 929*232  box 30, slot 29
//
// The full region is therefore exactly 215,760 bytes. Nothing in the blob
// marks where it starts; the locator finds the offset by scoring candidate
// positions.
//
// # Scoring
//
// Score decodes every slot at a candidate offset and classifies it as empty
// (all zero bytes), valid (checksum passes and the species code is in range)
// or invalid. The score is
//
//	2*valid + 1*plausibleIdentity + 0.25*rare - 0.5*invalid
//
// where plausibleIdentity counts slots that fail the checksum but still carry
// an in-range species code. Slots past the end of the blob add a heavy
// penalty each and stop the scan. ScoreSampled is the cheap variant used
// during sweeps: it visits every Nth slot and bails out after a run of
// consecutive invalid slots.
//
// # Locating
//
// Locate sweeps the whole blob coarsely, re-sweeps finely around surviving
// candidates and fully re-scores the finalists. Autopick does the same inside
// a bounded window around a caller-supplied hint offset, absorbing the common
// half-record misalignment. Both are pure functions of their inputs: the same
// blob and parameters always produce the same ranking.
package region

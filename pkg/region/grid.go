package region

import (
	"github.com/MouseMan32/PokHo/pkg/codec"
)

// SlotClass classifies one grid slot.
type SlotClass uint8

const (
	// SlotEmpty marks an all-zero or unreadable slot.
	SlotEmpty SlotClass = iota
	// SlotGarbage marks a nonzero slot that failed the plausibility
	// filter. Callers display it as empty; it exists so diagnostics can
	// tell noise from true emptiness.
	SlotGarbage
	// SlotValid marks a slot holding a decodable, plausible record.
	SlotValid
)

func (c SlotClass) String() string {
	switch c {
	case SlotEmpty:
		return "empty"
	case SlotGarbage:
		return "garbage"
	case SlotValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Slot is one classified grid position. Offset is the absolute byte offset of
// the slot's record in the blob and stays exact whether or not the grid was
// trimmed.
type Slot struct {
	Box    int
	Index  int
	Offset int
	Class  SlotClass
	Record *codec.Record // set only for SlotValid
}

// Present reports whether the slot holds a creature a caller should show.
func (s *Slot) Present() bool {
	return s.Class == SlotValid
}

// Grid is the assembled box view of one region. Trailing boxes without a
// single valid slot are trimmed, but never below one box.
type Grid struct {
	Offset int
	Boxes  [][]Slot
}

// ValidCount returns the number of valid slots across all retained boxes.
func (g *Grid) ValidCount() int {
	n := 0
	for _, box := range g.Boxes {
		for i := range box {
			if box[i].Class == SlotValid {
				n++
			}
		}
	}
	return n
}

// Assemble walks all 930 slots at offset and builds the box view. Slots that
// fall outside the blob read as empty; garbage never shows as a filled slot.
func Assemble(blob []byte, offset int) *Grid {
	boxes := make([][]Slot, BoxCount)
	keep := 1
	for box := 0; box < BoxCount; box++ {
		row := make([]Slot, SlotsPerBox)
		hasValid := false
		for idx := 0; idx < SlotsPerBox; idx++ {
			slotOffset := offset + (box*SlotsPerBox+idx)*codec.RecordSize
			row[idx] = classifySlot(blob, box, idx, slotOffset)
			if row[idx].Class == SlotValid {
				hasValid = true
			}
		}
		boxes[box] = row
		if hasValid {
			keep = box + 1
		}
	}
	return &Grid{Offset: offset, Boxes: boxes[:keep]}
}

func classifySlot(blob []byte, box, idx, offset int) Slot {
	s := Slot{Box: box, Index: idx, Offset: offset}

	end := offset + codec.RecordSize
	if offset < 0 || end > len(blob) {
		return s
	}

	slice := blob[offset:end]
	if allZero(slice) {
		return s
	}

	record, err := recordCodec.Decode(slice)
	if err != nil || !record.Present() {
		s.Class = SlotGarbage
		return s
	}

	s.Class = SlotValid
	s.Record = record
	return s
}

// ExportSlot returns a copy of the raw 232 record bytes at grid position
// (box, idx) relative to offset. Only valid slots export; empty and garbage
// slots return ErrEmptySlot so callers never receive 232 bytes of nothing.
func ExportSlot(blob []byte, offset, box, idx int) ([]byte, error) {
	if box < 0 || box >= BoxCount || idx < 0 || idx >= SlotsPerBox {
		return nil, ErrBadSlot
	}

	slotOffset := offset + (box*SlotsPerBox+idx)*codec.RecordSize
	end := slotOffset + codec.RecordSize
	if slotOffset < 0 || end > len(blob) {
		return nil, ErrOutOfRange
	}

	slice := blob[slotOffset:end]
	if allZero(slice) {
		return nil, ErrEmptySlot
	}
	record, err := recordCodec.Decode(slice)
	if err != nil || !record.Present() {
		return nil, ErrEmptySlot
	}

	out := make([]byte, codec.RecordSize)
	copy(out, slice)
	return out, nil
}

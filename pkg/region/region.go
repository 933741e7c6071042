package region

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MouseMan32/PokHo/pkg/codec"
)

// Grid geometry. RegionSize is derived, never hand-written, so it cannot
// drift from the record size.
const (
	BoxCount    = 31
	SlotsPerBox = 30
	SlotCount   = BoxCount * SlotsPerBox
	RegionSize  = SlotCount * codec.RecordSize
)

// IsRegionLength reports whether n is exactly one full region. Used to
// recognize bare region dumps without running the locator.
func IsRegionLength(n int) bool {
	return n == RegionSize
}

// ParseOffset parses a user-supplied offset override. Decimal and 0x-prefixed
// hex are accepted; anything negative or non-numeric is rejected.
func ParseOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("region: empty offset")
	}

	base := 10
	digits := s
	if len(s) > 2 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		base = 16
		digits = s[2:]
	}

	n, err := strconv.ParseUint(digits, base, 63)
	if err != nil {
		return 0, fmt.Errorf("region: parse offset %q: %w", s, err)
	}
	return int(n), nil
}

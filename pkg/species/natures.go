package species

import "github.com/MouseMan32/PokHo/pkg/codec"

// natureNames is the fixed table addressed by nature index (personality
// value mod 25). The order is part of the record format and never changes.
var natureNames = [codec.NatureCount]string{
	"Hardy", "Lonely", "Brave", "Adamant", "Naughty",
	"Bold", "Docile", "Relaxed", "Impish", "Lax",
	"Timid", "Hasty", "Serious", "Jolly", "Naive",
	"Modest", "Mild", "Quiet", "Bashful", "Rash",
	"Calm", "Gentle", "Sassy", "Careful", "Quirky",
}

// NatureName returns the display name for a nature index.
func NatureName(index uint8) (string, bool) {
	if int(index) >= len(natureNames) {
		return "", false
	}
	return natureNames[index], true
}

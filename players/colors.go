package players

import (
	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

// ColorAllocator picks profile colors for joining players. Availability
// is recomputed from current membership on every call, so there is no
// allocator state to drift from the player table.
type ColorAllocator struct{}

// Assign returns a color held by no player in current. Which free color
// wins is unspecified. When all colors are taken the room is already
// over capacity and ErrColorsExhausted is returned.
func (ColorAllocator) Assign(current []domain.Player) (domain.ProfileColor, error) {
	used := make(map[domain.ProfileColor]bool, len(current))
	for _, player := range current {
		used[player.ProfileColor] = true
	}

	for _, color := range domain.PlayerColors {
		if !used[color] {
			return color, nil
		}
	}
	return domain.ColorUnassigned, domain.ErrColorsExhausted
}

package rooms

import (
	"fmt"
	"unicode/utf8"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

// Capacity values a room type accepts from callers. Single-player rooms
// request one slot; the coordinator widens them to two when it seats
// the bot.
func roomTypeCapacities(roomType domain.RoomType) ([]int, error) {
	switch roomType {
	case domain.RoomTypeSinglePlayer:
		return []int{1}, nil
	case domain.RoomTypeMatch:
		return []int{2, 4}, nil
	case domain.RoomTypeTournament:
		return []int{4, 8, 16}, nil
	default:
		return nil, domain.NewValidationError("roomType", fmt.Sprintf("invalid room type: %d", roomType))
	}
}

func validateStringLength(field, value string, min, max int) error {
	if length := utf8.RuneCountInString(value); length < min || length > max {
		return domain.NewValidationError(field, fmt.Sprintf("value must have between %d and %d characters", min, max))
	}
	return nil
}

func validateIntOneOf(field string, value int, allowed []int) error {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return domain.NewValidationError(field, "is not a valid size of players")
}

func validateMaxPlayers(roomType domain.RoomType, maxPlayers int) error {
	allowed, err := roomTypeCapacities(roomType)
	if err != nil {
		return err
	}
	return validateIntOneOf("maxAmountOfPlayers", maxPlayers, allowed)
}

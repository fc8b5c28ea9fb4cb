package domain

import "time"

type RoomType int

const (
	RoomTypeSinglePlayer RoomType = iota
	RoomTypeMatch
	RoomTypeTournament
)

func (t RoomType) Valid() bool {
	return t >= RoomTypeSinglePlayer && t <= RoomTypeTournament
}

type RoomStatus int

const (
	RoomStatusOpen RoomStatus = iota
	RoomStatusReadyForStart
	RoomStatusInProgress
	RoomStatusFinished
)

type Room struct {
	Code               string
	Name               string
	Type               RoomType
	MaxAmountOfPlayers int
	AmountOfPlayers    int
	PrivateRoom        bool
	Status             RoomStatus
	CreatedBy          string
	CreatedAt          time.Time
}

// Match is a scheduled game inside a room, addressed externally by GameId.
type Match struct {
	Id       string
	GameId   string
	RoomCode string
}

// MatchPlayer records a player's seat within one match. Position is a
// bracket slot in 0..4.
type MatchPlayer struct {
	MatchId  string
	PlayerId string
	Position int
}

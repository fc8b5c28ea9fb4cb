package players

import (
	"context"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

type PlayerStore interface {
	CreatePlayer(ctx context.Context, player domain.Player) error
	GetPlayer(ctx context.Context, id string) (domain.Player, error)
	ListPlayers(ctx context.Context, roomCode string) ([]domain.Player, error)
	UpdatePlayer(ctx context.Context, player domain.Player) error
	DeletePlayer(ctx context.Context, id string) error
	DeletePlayers(ctx context.Context, roomCode string) error
}

type RoomGetter interface {
	GetRoom(ctx context.Context, code string) (domain.Room, error)
}

type MatchStore interface {
	GetMatchByGameId(ctx context.Context, gameId string) (domain.Match, error)
	ListMatchPlayers(ctx context.Context, matchId string) ([]domain.Player, error)
}

// ScoreUpdater is the room-level orchestration of a score change; the
// handler goes through it so the update is published to the match
// topic after it commits.
type ScoreUpdater interface {
	UpdateScore(ctx context.Context, roomCode string, color domain.ProfileColor) (domain.Player, error)
}

package rooms

import (
	"context"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

type RoomStore interface {
	CreateRoom(ctx context.Context, room domain.Room) error
	GetRoom(ctx context.Context, code string) (domain.Room, error)
	UpdateRoom(ctx context.Context, room domain.Room) error
	DeleteRoom(ctx context.Context, code string) error
	ListPublicRooms(ctx context.Context, filterLabel string, offset, limit int) ([]domain.Room, int, error)
}

// PlayerRegistry is the player side of a room mutation. Calls made
// under a room's critical section stay atomic as a unit with the room
// counter updates the coordinator performs.
type PlayerRegistry interface {
	Add(ctx context.Context, roomCode, name string) (domain.Player, error)
	Get(ctx context.Context, id string) (domain.Player, error)
	Remove(ctx context.Context, id string) error
	RemoveByRoom(ctx context.Context, roomCode string) error
	ListByRoom(ctx context.Context, roomCode string) ([]domain.Player, error)
	IncrementScore(ctx context.Context, roomCode string, color domain.ProfileColor) (domain.Player, error)
}

// Publisher pushes an event to the subscribers of a topic. Publishing
// is fire-and-forget: it happens after the mutation committed and its
// outcome never affects the originating request.
type Publisher interface {
	Publish(topic string, event any)
}

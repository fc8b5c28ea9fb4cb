package rooms

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

const (
	roomCodeLength      = 6
	codeGenerationTries = 5
)

var errCodeGenerationExhausted = errors.New("room-code-generation-exhausted")

// Registry owns the room-code → room mapping through the store. It is
// single-room scoped; cross-room invariants live in the coordinator.
type Registry struct {
	store RoomStore
}

func NewRegistry(store RoomStore) *Registry {
	return &Registry{store: store}
}

func newRoomCode() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(token[:roomCodeLength])
}

// Create persists a new open room under a freshly generated code,
// regenerating on the rare collision with an existing room.
func (r *Registry) Create(ctx context.Context, name string, roomType domain.RoomType, maxPlayers int, private bool) (domain.Room, error) {
	room := domain.Room{
		Name:               name,
		Type:               roomType,
		MaxAmountOfPlayers: maxPlayers,
		PrivateRoom:        private,
		Status:             domain.RoomStatusOpen,
		CreatedAt:          time.Now(),
	}

	for range codeGenerationTries {
		room.Code = newRoomCode()
		err := r.store.CreateRoom(ctx, room)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, domain.ErrRoomCodeTaken) {
			return domain.Room{}, err
		}
	}
	return domain.Room{}, errCodeGenerationExhausted
}

func (r *Registry) Find(ctx context.Context, code string) (domain.Room, error) {
	return r.store.GetRoom(ctx, code)
}

func (r *Registry) Save(ctx context.Context, room domain.Room) error {
	return r.store.UpdateRoom(ctx, room)
}

// Delete removes the room record. Cascading the room's players is the
// coordinator's job, so the publish-then-delete ordering stays in one
// place.
func (r *Registry) Delete(ctx context.Context, code string) error {
	return r.store.DeleteRoom(ctx, code)
}

func (r *Registry) ListPublic(ctx context.Context, filterLabel string, offset, limit int) ([]domain.Room, int, error) {
	return r.store.ListPublicRooms(ctx, filterLabel, offset, limit)
}

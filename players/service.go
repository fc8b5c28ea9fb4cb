package players

import (
	"context"
	"fmt"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

// DefaultPlayerName is used when a join request carries no name.
const DefaultPlayerName = "Senhor Bolinha"

const (
	minNameLength = 3
	maxNameLength = 100
)

// Registry owns the players of rooms: creation with color assignment,
// removal, listing and score changes. It performs no room-level
// locking; the room coordinator serializes calls per room.
type Registry struct {
	store   PlayerStore
	matches MatchStore
	colors  ColorAllocator
}

func NewRegistry(store PlayerStore, matches MatchStore) *Registry {
	return &Registry{store: store, matches: matches}
}

func validatePlayerName(name string) (string, error) {
	if name == "" {
		name = DefaultPlayerName
	}
	if length := utf8.RuneCountInString(name); length < minNameLength || length > maxNameLength {
		return "", domain.NewValidationError("playerName", "value must have between 3 and 100 characters")
	}
	return name, nil
}

func randomProfileImage() string {
	return fmt.Sprintf("/assets/img/%d.png", 1+rand.Intn(2))
}

// Add creates a player in roomCode with a color no current member
// holds. The caller must hold the room's critical section so the
// list-then-assign pair is atomic.
func (r *Registry) Add(ctx context.Context, roomCode, name string) (domain.Player, error) {
	name, err := validatePlayerName(name)
	if err != nil {
		return domain.Player{}, err
	}

	current, err := r.store.ListPlayers(ctx, roomCode)
	if err != nil {
		return domain.Player{}, err
	}

	color, err := r.colors.Assign(current)
	if err != nil {
		return domain.Player{}, err
	}

	player := domain.Player{
		Id:              uuid.NewString(),
		Name:            name,
		RoomCode:        roomCode,
		ProfileColor:    color,
		UrlProfileImage: randomProfileImage(),
		CreatedAt:       time.Now(),
	}

	if err := r.store.CreatePlayer(ctx, player); err != nil {
		return domain.Player{}, err
	}
	return player, nil
}

func (r *Registry) Get(ctx context.Context, id string) (domain.Player, error) {
	return r.store.GetPlayer(ctx, id)
}

func (r *Registry) Remove(ctx context.Context, id string) error {
	return r.store.DeletePlayer(ctx, id)
}

func (r *Registry) RemoveByRoom(ctx context.Context, roomCode string) error {
	return r.store.DeletePlayers(ctx, roomCode)
}

func (r *Registry) ListByRoom(ctx context.Context, roomCode string) ([]domain.Player, error) {
	return r.store.ListPlayers(ctx, roomCode)
}

// IncrementScore adds one point to the room's player holding color and
// returns the updated player, or ErrPlayerNotFound when no member holds
// that color.
func (r *Registry) IncrementScore(ctx context.Context, roomCode string, color domain.ProfileColor) (domain.Player, error) {
	current, err := r.store.ListPlayers(ctx, roomCode)
	if err != nil {
		return domain.Player{}, err
	}

	for _, player := range current {
		if player.ProfileColor != color {
			continue
		}
		player.Score++
		if err := r.store.UpdatePlayer(ctx, player); err != nil {
			return domain.Player{}, err
		}
		return player, nil
	}
	return domain.Player{}, domain.ErrPlayerNotFound
}

// ListByMatch resolves a match by its external game id and returns the
// players seated in it.
func (r *Registry) ListByMatch(ctx context.Context, gameId string) ([]domain.Player, error) {
	match, err := r.matches.GetMatchByGameId(ctx, gameId)
	if err != nil {
		return nil, err
	}
	return r.matches.ListMatchPlayers(ctx, match.Id)
}

package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

// MemoryRepo is an in-process store with per-row atomicity, used when
// no database is configured and throughout the test suites. Cross-row
// atomicity is the coordinator's job, exactly as with the postgres
// store.
type MemoryRepo struct {
	roomsMu sync.RWMutex
	rooms   map[string]domain.Room

	playersMu sync.RWMutex
	players   map[string]domain.Player

	matchesMu    sync.RWMutex
	matches      map[string]domain.Match
	matchPlayers map[string][]domain.MatchPlayer
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		rooms:        make(map[string]domain.Room),
		players:      make(map[string]domain.Player),
		matches:      make(map[string]domain.Match),
		matchPlayers: make(map[string][]domain.MatchPlayer),
	}
}

func (m *MemoryRepo) CreateRoom(ctx context.Context, room domain.Room) error {
	m.roomsMu.Lock()
	defer m.roomsMu.Unlock()
	if _, exists := m.rooms[room.Code]; exists {
		return domain.ErrRoomCodeTaken
	}
	m.rooms[room.Code] = room
	return nil
}

func (m *MemoryRepo) GetRoom(ctx context.Context, code string) (domain.Room, error) {
	m.roomsMu.RLock()
	defer m.roomsMu.RUnlock()
	room, ok := m.rooms[code]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return room, nil
}

func (m *MemoryRepo) UpdateRoom(ctx context.Context, room domain.Room) error {
	m.roomsMu.Lock()
	defer m.roomsMu.Unlock()
	if _, ok := m.rooms[room.Code]; !ok {
		return domain.ErrRoomNotFound
	}
	m.rooms[room.Code] = room
	return nil
}

func (m *MemoryRepo) DeleteRoom(ctx context.Context, code string) error {
	m.roomsMu.Lock()
	defer m.roomsMu.Unlock()
	if _, ok := m.rooms[code]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(m.rooms, code)
	return nil
}

// ListPublicRooms returns joinable public rooms ordered by name, after
// an optional case-insensitive name/code filter. limit <= 0 returns
// only the total.
func (m *MemoryRepo) ListPublicRooms(ctx context.Context, filterLabel string, offset, limit int) ([]domain.Room, int, error) {
	m.roomsMu.RLock()
	defer m.roomsMu.RUnlock()

	label := strings.ToLower(filterLabel)
	matching := make([]domain.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		if room.PrivateRoom || room.AmountOfPlayers >= room.MaxAmountOfPlayers || room.Status >= domain.RoomStatusReadyForStart {
			continue
		}
		if label != "" &&
			!strings.Contains(strings.ToLower(room.Name), label) &&
			!strings.Contains(strings.ToLower(room.Code), label) {
			continue
		}
		matching = append(matching, room)
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].Name < matching[j].Name })

	total := len(matching)
	if limit <= 0 {
		return nil, total, nil
	}
	if offset >= total {
		return []domain.Room{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matching[offset:end], total, nil
}

func (m *MemoryRepo) CreatePlayer(ctx context.Context, player domain.Player) error {
	m.playersMu.Lock()
	defer m.playersMu.Unlock()
	m.players[player.Id] = player
	return nil
}

func (m *MemoryRepo) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	m.playersMu.RLock()
	defer m.playersMu.RUnlock()
	player, ok := m.players[id]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return player, nil
}

// ListPlayers returns the room's players ordered by creation time, so
// callers deriving join order get a stable view.
func (m *MemoryRepo) ListPlayers(ctx context.Context, roomCode string) ([]domain.Player, error) {
	m.playersMu.RLock()
	defer m.playersMu.RUnlock()

	result := make([]domain.Player, 0)
	for _, player := range m.players {
		if player.RoomCode == roomCode {
			result = append(result, player)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Id < result[j].Id
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryRepo) UpdatePlayer(ctx context.Context, player domain.Player) error {
	m.playersMu.Lock()
	defer m.playersMu.Unlock()
	if _, ok := m.players[player.Id]; !ok {
		return domain.ErrPlayerNotFound
	}
	m.players[player.Id] = player
	return nil
}

func (m *MemoryRepo) DeletePlayer(ctx context.Context, id string) error {
	m.playersMu.Lock()
	defer m.playersMu.Unlock()
	if _, ok := m.players[id]; !ok {
		return domain.ErrPlayerNotFound
	}
	delete(m.players, id)
	return nil
}

func (m *MemoryRepo) DeletePlayers(ctx context.Context, roomCode string) error {
	m.playersMu.Lock()
	defer m.playersMu.Unlock()
	for id, player := range m.players {
		if player.RoomCode == roomCode {
			delete(m.players, id)
		}
	}
	return nil
}

func (m *MemoryRepo) CreateMatch(ctx context.Context, match domain.Match) error {
	m.matchesMu.Lock()
	defer m.matchesMu.Unlock()
	m.matches[match.Id] = match
	return nil
}

func (m *MemoryRepo) GetMatchByGameId(ctx context.Context, gameId string) (domain.Match, error) {
	m.matchesMu.RLock()
	defer m.matchesMu.RUnlock()
	for _, match := range m.matches {
		if match.GameId == gameId {
			return match, nil
		}
	}
	return domain.Match{}, domain.ErrMatchNotFound
}

func (m *MemoryRepo) CreateMatchPlayer(ctx context.Context, matchPlayer domain.MatchPlayer) error {
	m.matchesMu.Lock()
	defer m.matchesMu.Unlock()
	m.matchPlayers[matchPlayer.MatchId] = append(m.matchPlayers[matchPlayer.MatchId], matchPlayer)
	return nil
}

func (m *MemoryRepo) ListMatchPlayers(ctx context.Context, matchId string) ([]domain.Player, error) {
	m.matchesMu.RLock()
	seats := append([]domain.MatchPlayer(nil), m.matchPlayers[matchId]...)
	m.matchesMu.RUnlock()

	sort.Slice(seats, func(i, j int) bool { return seats[i].Position < seats[j].Position })
	playerIds := make([]string, 0, len(seats))
	for _, seat := range seats {
		playerIds = append(playerIds, seat.PlayerId)
	}

	result := make([]domain.Player, 0, len(playerIds))
	for _, id := range playerIds {
		player, err := m.GetPlayer(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, player)
	}
	return result, nil
}

package rooms

import (
	"context"
	"log/slog"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
	"github.com/Meia-noite-eu-te-conto/User-Session/realtime"
)

// BotPlayerName is the name of the player seated by the coordinator in
// single-player rooms.
const BotPlayerName = "Bot"

type CreateRoomRequest struct {
	RoomName    string
	CreatedBy   string
	RoomType    domain.RoomType
	MaxPlayers  int
	PrivateRoom bool
}

type RoomDetailPlayer struct {
	Id              string
	Name            string
	ProfileColor    domain.ProfileColor
	UrlProfileImage string
	Owner           bool
}

type RoomDetail struct {
	Room    domain.Room
	Players []RoomDetailPlayer
	IsOwner bool
}

type ListParams struct {
	CurrentPage int
	PageSize    int
	FilterLabel string
}

type RoomPage struct {
	CurrentPage     int
	PageSize        int
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
	Rooms           []domain.Room
}

// service is the single authority over a room's composite state. Every
// mutation of membership, capacity counters or ownership runs under the
// room's critical section; notifications go out after the mutation
// committed and never fail the request.
type service struct {
	registry  *Registry
	players   PlayerRegistry
	publisher Publisher
	locks     *roomLocks
}

func NewService(registry *Registry, players PlayerRegistry, publisher Publisher) *service {
	return &service{
		registry:  registry,
		players:   players,
		publisher: publisher,
		locks:     newRoomLocks(),
	}
}

// Create validates the type/capacity pair, creates the room with its
// owning player, and seats a bot in single-player rooms so play can
// proceed without a second human. The room is publicly listed as soon
// as the row exists, so the seating runs under the room's lock and any
// failure past that point tears the room down again.
func (s *service) Create(ctx context.Context, req CreateRoomRequest) (domain.Room, domain.Player, error) {
	if err := validateStringLength("roomName", req.RoomName, 1, 100); err != nil {
		return domain.Room{}, domain.Player{}, err
	}
	// Owner name obeys the player-name rule; checking it here keeps the
	// room row from ever existing for input the seat would reject.
	if err := validateStringLength("createdBy", req.CreatedBy, 3, 100); err != nil {
		return domain.Room{}, domain.Player{}, err
	}
	if err := validateMaxPlayers(req.RoomType, req.MaxPlayers); err != nil {
		return domain.Room{}, domain.Player{}, err
	}

	room, err := s.registry.Create(ctx, req.RoomName, req.RoomType, req.MaxPlayers, req.PrivateRoom)
	if err != nil {
		return domain.Room{}, domain.Player{}, err
	}

	unlock := s.locks.acquire(room.Code)
	defer unlock()

	owner, err := s.players.Add(ctx, room.Code, req.CreatedBy)
	if err != nil {
		s.abortCreate(ctx, room.Code)
		return domain.Room{}, domain.Player{}, err
	}
	room.CreatedBy = owner.Id
	room.AmountOfPlayers++

	if room.Type == domain.RoomTypeSinglePlayer {
		if _, err := s.players.Add(ctx, room.Code, BotPlayerName); err != nil {
			s.abortCreate(ctx, room.Code)
			return domain.Room{}, domain.Player{}, err
		}
		room.MaxAmountOfPlayers++
		room.AmountOfPlayers++
	}

	if err := s.registry.Save(ctx, room); err != nil {
		s.abortCreate(ctx, room.Code)
		return domain.Room{}, domain.Player{}, err
	}
	return room, owner, nil
}

// abortCreate removes a half-built room and whatever players it got.
// The caller still holds the room's lock and reports its own error;
// cleanup failures are only logged.
func (s *service) abortCreate(ctx context.Context, roomCode string) {
	if err := s.players.RemoveByRoom(ctx, roomCode); err != nil {
		slog.Error("failed to remove players of aborted room", "room_code", roomCode, "error", err)
	}
	if err := s.registry.Delete(ctx, roomCode); err != nil {
		slog.Error("failed to delete aborted room", "room_code", roomCode, "error", err)
	}
	s.locks.forget(roomCode)
}

// Join seats a new player in the room. The capacity check and the
// player creation with its color assignment run atomically under the
// room's lock, so two racing joins can never overshoot capacity or
// share a color.
func (s *service) Join(ctx context.Context, roomCode, playerName string) (domain.Player, error) {
	unlock := s.locks.acquire(roomCode)
	defer unlock()

	room, err := s.registry.Find(ctx, roomCode)
	if err != nil {
		return domain.Player{}, err
	}

	if room.AmountOfPlayers >= room.MaxAmountOfPlayers {
		return domain.Player{}, domain.ErrRoomFull
	}

	player, err := s.players.Add(ctx, roomCode, playerName)
	if err != nil {
		return domain.Player{}, err
	}

	room.AmountOfPlayers++
	if err := s.registry.Save(ctx, room); err != nil {
		return domain.Player{}, err
	}

	s.publisher.Publish(realtime.RoomTopic(roomCode), realtime.PlayerListUpdate(""))
	return player, nil
}

// Leave removes a player from the room, voluntarily or as a kick.
// Single-player rooms reject removal. Subscribers are told which player
// is going before the record disappears so they can reconcile. When the
// owner departs, ownership moves to the earliest-created remaining
// player; when the last player departs, the room is deleted.
func (s *service) Leave(ctx context.Context, roomCode, playerId string) error {
	unlock := s.locks.acquire(roomCode)
	defer unlock()

	room, err := s.registry.Find(ctx, roomCode)
	if err != nil {
		return err
	}

	if room.Type == domain.RoomTypeSinglePlayer {
		return domain.ErrInvalidOperation
	}

	player, err := s.players.Get(ctx, playerId)
	if err != nil {
		return err
	}
	if player.RoomCode != roomCode {
		return domain.ErrPlayerNotFound
	}

	s.publisher.Publish(realtime.RoomTopic(roomCode), realtime.PlayerListUpdate(playerId))

	if err := s.players.Remove(ctx, playerId); err != nil {
		return err
	}
	room.AmountOfPlayers--

	remaining, err := s.players.ListByRoom(ctx, roomCode)
	if err != nil {
		return err
	}

	if len(remaining) == 0 {
		s.publisher.Publish(realtime.RoomTopic(roomCode), realtime.DeleteRoom())
		if err := s.registry.Delete(ctx, roomCode); err != nil {
			return err
		}
		s.locks.forget(roomCode)
		slog.Info("room emptied, deleted", "room_code", roomCode)
		return nil
	}

	if room.CreatedBy == playerId {
		successor := remaining[0]
		for _, candidate := range remaining[1:] {
			if candidate.CreatedAt.Before(successor.CreatedAt) {
				successor = candidate
			}
		}
		room.CreatedBy = successor.Id
		slog.Info("room ownership transferred", "room_code", roomCode, "new_owner", successor.Id)
	}

	return s.registry.Save(ctx, room)
}

// Delete removes the room and all its players. Only the owner may do
// this.
func (s *service) Delete(ctx context.Context, roomCode, requesterId string) error {
	unlock := s.locks.acquire(roomCode)
	defer unlock()

	room, err := s.registry.Find(ctx, roomCode)
	if err != nil {
		return err
	}

	if requesterId != room.CreatedBy {
		return domain.ErrForbidden
	}

	s.publisher.Publish(realtime.RoomTopic(roomCode), realtime.DeleteRoom())

	if err := s.players.RemoveByRoom(ctx, roomCode); err != nil {
		return err
	}
	if err := s.registry.Delete(ctx, roomCode); err != nil {
		return err
	}
	s.locks.forget(roomCode)
	return nil
}

// UpdateScore adds one point to the room's player holding color and
// announces the new score on the room's match topic.
func (s *service) UpdateScore(ctx context.Context, roomCode string, color domain.ProfileColor) (domain.Player, error) {
	unlock := s.locks.acquire(roomCode)
	defer unlock()

	player, err := s.players.IncrementScore(ctx, roomCode, color)
	if err != nil {
		return domain.Player{}, err
	}

	s.publisher.Publish(realtime.MatchTopic(roomCode), realtime.UpdateScore(int(player.ProfileColor), player.Score))
	return player, nil
}

// Detail returns the room with its player list. Requesters who are not
// members are refused; player ids are redacted unless the requester
// owns the room.
func (s *service) Detail(ctx context.Context, roomCode, requesterId string) (RoomDetail, error) {
	room, err := s.registry.Find(ctx, roomCode)
	if err != nil {
		return RoomDetail{}, err
	}

	members, err := s.players.ListByRoom(ctx, roomCode)
	if err != nil {
		return RoomDetail{}, err
	}

	requesterIsMember := false
	for _, member := range members {
		if member.Id == requesterId {
			requesterIsMember = true
			break
		}
	}
	if !requesterIsMember {
		return RoomDetail{}, domain.ErrForbidden
	}

	isOwner := requesterId == room.CreatedBy
	detail := RoomDetail{Room: room, IsOwner: isOwner, Players: make([]RoomDetailPlayer, 0, len(members))}
	for _, member := range members {
		entry := RoomDetailPlayer{
			Name:            member.Name,
			ProfileColor:    member.ProfileColor,
			UrlProfileImage: member.UrlProfileImage,
			Owner:           member.Id == room.CreatedBy,
		}
		if isOwner {
			entry.Id = member.Id
		}
		detail.Players = append(detail.Players, entry)
	}
	detail.Room.AmountOfPlayers = len(members)
	return detail, nil
}

// Status returns the room's lifecycle status.
func (s *service) Status(ctx context.Context, roomCode string) (domain.RoomStatus, error) {
	room, err := s.registry.Find(ctx, roomCode)
	if err != nil {
		return 0, err
	}
	return room.Status, nil
}

// ListPublic pages through joinable public rooms. An out-of-range page
// snaps to the nearest valid one.
func (s *service) ListPublic(ctx context.Context, params ListParams) (RoomPage, error) {
	if params.PageSize < 1 {
		params.PageSize = 10
	}
	if params.CurrentPage < 1 {
		params.CurrentPage = 1
	}

	_, total, err := s.registry.ListPublic(ctx, params.FilterLabel, 0, 0)
	if err != nil {
		return RoomPage{}, err
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	if totalPages > 0 && params.CurrentPage > totalPages {
		params.CurrentPage = totalPages
	}

	offset := (params.CurrentPage - 1) * params.PageSize
	pageRooms, _, err := s.registry.ListPublic(ctx, params.FilterLabel, offset, params.PageSize)
	if err != nil {
		return RoomPage{}, err
	}

	return RoomPage{
		CurrentPage:     params.CurrentPage,
		PageSize:        params.PageSize,
		TotalPages:      totalPages,
		HasNextPage:     params.CurrentPage < totalPages,
		HasPreviousPage: params.CurrentPage > 1,
		Rooms:           pageRooms,
	}, nil
}

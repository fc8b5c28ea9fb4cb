package rooms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
	"github.com/Meia-noite-eu-te-conto/User-Session/players"
	"github.com/Meia-noite-eu-te-conto/User-Session/realtime"
	"github.com/Meia-noite-eu-te-conto/User-Session/storage"
)

type coordinatorFixture struct {
	service   *service
	store     *storage.MemoryRepo
	publisher *recordingPublisher
	registry  *players.Registry
}

func newCoordinatorFixture() coordinatorFixture {
	store := storage.NewMemoryRepo()
	publisher := &recordingPublisher{}
	registry := players.NewRegistry(store, store)
	svc := NewService(NewRegistry(store), registry, publisher)
	return coordinatorFixture{service: svc, store: store, publisher: publisher, registry: registry}
}

// countersMatch asserts the room's counter equals the player rows
// referencing it.
func countersMatch(t *testing.T, f coordinatorFixture, roomCode string) {
	t.Helper()
	room, err := f.store.GetRoom(context.Background(), roomCode)
	require.NoError(t, err)
	members, err := f.store.ListPlayers(context.Background(), roomCode)
	require.NoError(t, err)
	assert.Equal(t, len(members), room.AmountOfPlayers)
}

func TestCreate_MatchRoomScenario(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, alice, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, room.AmountOfPlayers)
	assert.Equal(t, 2, room.MaxAmountOfPlayers)
	assert.Equal(t, alice.Id, room.CreatedBy)
	assert.True(t, alice.ProfileColor.Valid())
	countersMatch(t, f, room.Code)

	bob, err := f.service.Join(ctx, room.Code, "Bob")
	require.NoError(t, err)
	assert.True(t, bob.ProfileColor.Valid())
	assert.NotEqual(t, alice.ProfileColor, bob.ProfileColor)
	countersMatch(t, f, room.Code)

	_, err = f.service.Join(ctx, room.Code, "Carol")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
	countersMatch(t, f, room.Code)
}

func TestCreate_SinglePlayerInjectsBot(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, owner, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "solo run", CreatedBy: "Alice", RoomType: domain.RoomTypeSinglePlayer, MaxPlayers: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, room.MaxAmountOfPlayers)
	assert.Equal(t, 2, room.AmountOfPlayers)

	members, err := f.store.ListPlayers(ctx, room.Code)
	require.NoError(t, err)
	require.Len(t, members, 2)

	names := []string{members[0].Name, members[1].Name}
	assert.Contains(t, names, "Alice")
	assert.Contains(t, names, BotPlayerName)
	assert.NotEqual(t, members[0].ProfileColor, members[1].ProfileColor)
	assert.Equal(t, owner.Id, room.CreatedBy)
	countersMatch(t, f, room.Code)
}

func TestCreate_ValidationFailures(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	testCases := []struct {
		desc string
		req  CreateRoomRequest
	}{
		{desc: "tournament capacity 5", req: CreateRoomRequest{RoomName: "cup", CreatedBy: "Alice", RoomType: domain.RoomTypeTournament, MaxPlayers: 5}},
		{desc: "match capacity 3", req: CreateRoomRequest{RoomName: "cup", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 3}},
		{desc: "unknown room type", req: CreateRoomRequest{RoomName: "cup", CreatedBy: "Alice", RoomType: domain.RoomType(9), MaxPlayers: 2}},
		{desc: "empty room name", req: CreateRoomRequest{RoomName: "", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2}},
		{desc: "empty creator", req: CreateRoomRequest{RoomName: "cup", CreatedBy: "", RoomType: domain.RoomTypeMatch, MaxPlayers: 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, _, err := f.service.Create(ctx, tc.req)
			assert.True(t, domain.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestCreate_RejectedOwnerNameLeavesNoRoom(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	_, _, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Al", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	assert.True(t, domain.IsValidation(err), "owner names follow the player-name rule, got %v", err)

	rooms, total, err := f.store.ListPublicRooms(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total, "rejected create must not leave a room behind")
	assert.Empty(t, rooms)
}

// botFailSeats fails the bot seat so the single-player rollback path
// can be exercised.
type botFailSeats struct {
	*players.Registry
}

func (s botFailSeats) Add(ctx context.Context, roomCode, name string) (domain.Player, error) {
	if name == BotPlayerName {
		return domain.Player{}, errors.New("seat-unavailable")
	}
	return s.Registry.Add(ctx, roomCode, name)
}

func TestCreate_FailedBotSeatTearsRoomDown(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryRepo()
	svc := NewService(NewRegistry(store), botFailSeats{players.NewRegistry(store, store)}, &recordingPublisher{})
	ctx := context.Background()

	_, _, err := svc.Create(ctx, CreateRoomRequest{
		RoomName: "solo run", CreatedBy: "Alice", RoomType: domain.RoomTypeSinglePlayer, MaxPlayers: 1,
	})
	require.Error(t, err)

	rooms, total, err := store.ListPublicRooms(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rooms)
}

// hookedSeats runs a hook once, right after the owner is seated, while
// the coordinator still holds the room's lock.
type hookedSeats struct {
	*players.Registry
	onOwnerSeat func(roomCode string)
}

func (s *hookedSeats) Add(ctx context.Context, roomCode, name string) (domain.Player, error) {
	player, err := s.Registry.Add(ctx, roomCode, name)
	if err == nil && s.onOwnerSeat != nil {
		hook := s.onOwnerSeat
		s.onOwnerSeat = nil
		hook(roomCode)
	}
	return player, err
}

func TestCreate_JoinDuringCreateKeepsCountersConsistent(t *testing.T) {
	t.Parallel()
	store := storage.NewMemoryRepo()
	publisher := &recordingPublisher{}
	seats := &hookedSeats{Registry: players.NewRegistry(store, store)}
	svc := NewService(NewRegistry(store), seats, publisher)
	ctx := context.Background()

	joinErr := make(chan error, 1)
	seats.onOwnerSeat = func(roomCode string) {
		go func() {
			_, err := svc.Join(ctx, roomCode, "Bob")
			joinErr <- err
		}()
		// Give the join time to block on the room's lock.
		time.Sleep(50 * time.Millisecond)
	}

	room, _, err := svc.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)
	require.NoError(t, <-joinErr)

	updated, err := store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	members, err := store.ListPlayers(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, len(members), updated.AmountOfPlayers, "join racing create must not be overwritten")
	assert.Equal(t, 2, updated.AmountOfPlayers)
}

func TestJoin_RoomNotFound(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()

	_, err := f.service.Join(context.Background(), "NOCODE", "Bob")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestJoin_PublishesPlayerListUpdate(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, _, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 4,
	})
	require.NoError(t, err)
	require.Empty(t, f.publisher.Events(), "create must not broadcast, there are no subscribers yet")

	_, err = f.service.Join(ctx, room.Code, "Bob")
	require.NoError(t, err)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.RoomTopic(room.Code), events[0].topic)
	assert.Equal(t, realtime.PlayerListUpdate(""), events[0].event)
}

func TestJoin_ConcurrentLastSlot(t *testing.T) {
	t.Parallel()

	// One free slot, two racing joins: exactly one wins.
	for i := 0; i < 25; i++ {
		f := newCoordinatorFixture()
		ctx := context.Background()

		room, _, err := f.service.Create(ctx, CreateRoomRequest{
			RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		results := make([]error, 2)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				_, results[slot] = f.service.Join(ctx, room.Code, "Racer")
			}(j)
		}
		wg.Wait()

		winners := 0
		for _, err := range results {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, domain.ErrRoomFull)
			}
		}
		assert.Equal(t, 1, winners)
		countersMatch(t, f, room.Code)

		members, err := f.store.ListPlayers(ctx, room.Code)
		require.NoError(t, err)
		colors := map[domain.ProfileColor]bool{}
		for _, member := range members {
			assert.False(t, colors[member.ProfileColor], "duplicate color %v", member.ProfileColor)
			colors[member.ProfileColor] = true
		}
	}
}

func TestLeave_SinglePlayerRoomRejected(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, owner, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "solo run", CreatedBy: "Alice", RoomType: domain.RoomTypeSinglePlayer, MaxPlayers: 1,
	})
	require.NoError(t, err)

	err = f.service.Leave(ctx, room.Code, owner.Id)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	countersMatch(t, f, room.Code)

	members, err := f.store.ListPlayers(ctx, room.Code)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestLeave_PublishesRemovedPlayerBeforeDeletion(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, _, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)
	bob, err := f.service.Join(ctx, room.Code, "Bob")
	require.NoError(t, err)

	f.publisher.OnPublish = func(topic string, event any) {
		update, ok := event.(realtime.PlayerListUpdateEvent)
		if !ok || update.UserRemoved == "" {
			return
		}
		// The leaving player's row must still exist at publish time.
		_, err := f.store.GetPlayer(ctx, update.UserRemoved)
		assert.NoError(t, err, "player deleted before subscribers were told")
	}

	require.NoError(t, f.service.Leave(ctx, room.Code, bob.Id))

	_, err = f.store.GetPlayer(ctx, bob.Id)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	countersMatch(t, f, room.Code)

	events := f.publisher.Events()
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, realtime.PlayerListUpdate(bob.Id), last.event)
}

func TestLeave_PlayerFromAnotherRoom(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	roomA, _, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "room a", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)
	_, bob, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "room b", CreatedBy: "Bob", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)

	err = f.service.Leave(ctx, roomA.Code, bob.Id)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
	countersMatch(t, f, roomA.Code)
}

func TestLeave_OwnerDepartureTransfersOwnership(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, alice, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 4,
	})
	require.NoError(t, err)
	bob, err := f.service.Join(ctx, room.Code, "Bob")
	require.NoError(t, err)
	_, err = f.service.Join(ctx, room.Code, "Carol")
	require.NoError(t, err)

	require.NoError(t, f.service.Leave(ctx, room.Code, alice.Id))

	updated, err := f.store.GetRoom(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, bob.Id, updated.CreatedBy, "ownership should pass to the earliest remaining player")
	countersMatch(t, f, room.Code)
}

func TestLeave_LastPlayerDeletesRoom(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, alice, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Leave(ctx, room.Code, alice.Id))

	_, err = f.store.GetRoom(ctx, room.Code)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	events := f.publisher.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, realtime.DeleteRoom(), events[len(events)-1].event)
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, _, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)
	bob, err := f.service.Join(ctx, room.Code, "Bob")
	require.NoError(t, err)

	err = f.service.Delete(ctx, room.Code, bob.Id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.store.GetRoom(ctx, room.Code)
	assert.NoError(t, err)
	members, err := f.store.ListPlayers(ctx, room.Code)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestDelete_OwnerRemovesRoomAndPlayers(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, alice, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)
	_, err = f.service.Join(ctx, room.Code, "Bob")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, room.Code, alice.Id))

	_, err = f.store.GetRoom(ctx, room.Code)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	members, err := f.store.ListPlayers(ctx, room.Code)
	require.NoError(t, err)
	assert.Empty(t, members)

	events := f.publisher.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, realtime.DeleteRoom(), events[len(events)-1].event)
	assert.Equal(t, realtime.RoomTopic(room.Code), events[len(events)-1].topic)
}

func TestUpdateScore(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, alice, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)

	t.Run("increments and publishes on the match topic", func(t *testing.T) {
		updated, err := f.service.UpdateScore(ctx, room.Code, alice.ProfileColor)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.Score)

		events := f.publisher.Events()
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, realtime.MatchTopic(room.Code), last.topic)
		assert.Equal(t, realtime.UpdateScore(int(alice.ProfileColor), 1), last.event)
	})

	t.Run("unheld color reports not found, scores untouched", func(t *testing.T) {
		unheld := domain.ColorYellow
		if alice.ProfileColor == unheld {
			unheld = domain.ColorGreen
		}
		_, err := f.service.UpdateScore(ctx, room.Code, unheld)
		assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

		stored, err := f.store.GetPlayer(ctx, alice.Id)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Score)
	})
}

func TestDetail(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, alice, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)
	bob, err := f.service.Join(ctx, room.Code, "Bob")
	require.NoError(t, err)

	t.Run("owner sees ids", func(t *testing.T) {
		detail, err := f.service.Detail(ctx, room.Code, alice.Id)
		require.NoError(t, err)
		assert.True(t, detail.IsOwner)
		require.Len(t, detail.Players, 2)
		for _, player := range detail.Players {
			assert.NotEmpty(t, player.Id)
		}
	})

	t.Run("non-owner member gets redacted ids", func(t *testing.T) {
		detail, err := f.service.Detail(ctx, room.Code, bob.Id)
		require.NoError(t, err)
		assert.False(t, detail.IsOwner)
		for _, player := range detail.Players {
			assert.Empty(t, player.Id)
		}
	})

	t.Run("non-member refused", func(t *testing.T) {
		_, err := f.service.Detail(ctx, room.Code, "someone-else")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing room", func(t *testing.T) {
		_, err := f.service.Detail(ctx, "NOCODE", alice.Id)
		assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	})
}

func TestListPublic(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	for _, name := range []string{"alpha", "bravo", "charlie"} {
		_, _, err := f.service.Create(ctx, CreateRoomRequest{
			RoomName: name, CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 4,
		})
		require.NoError(t, err)
	}
	_, _, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "hidden", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 4, PrivateRoom: true,
	})
	require.NoError(t, err)

	t.Run("private rooms excluded", func(t *testing.T) {
		page, err := f.service.ListPublic(ctx, ListParams{CurrentPage: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, page.TotalPages)
		require.Len(t, page.Rooms, 3)
		assert.Equal(t, "alpha", page.Rooms[0].Name)
	})

	t.Run("pagination clamps out-of-range page", func(t *testing.T) {
		page, err := f.service.ListPublic(ctx, ListParams{CurrentPage: 7, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, page.CurrentPage)
		assert.True(t, page.HasPreviousPage)
		assert.False(t, page.HasNextPage)
		require.Len(t, page.Rooms, 1)
		assert.Equal(t, "charlie", page.Rooms[0].Name)
	})

	t.Run("label filter", func(t *testing.T) {
		page, err := f.service.ListPublic(ctx, ListParams{CurrentPage: 1, PageSize: 10, FilterLabel: "brav"})
		require.NoError(t, err)
		require.Len(t, page.Rooms, 1)
		assert.Equal(t, "bravo", page.Rooms[0].Name)
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()
	f := newCoordinatorFixture()
	ctx := context.Background()

	room, _, err := f.service.Create(ctx, CreateRoomRequest{
		RoomName: "friday night", CreatedBy: "Alice", RoomType: domain.RoomTypeMatch, MaxPlayers: 2,
	})
	require.NoError(t, err)

	status, err := f.service.Status(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusOpen, status)

	_, err = f.service.Status(ctx, "NOCODE")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

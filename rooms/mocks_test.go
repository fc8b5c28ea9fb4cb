package rooms

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

// --- Publisher ---

// recordingPublisher captures published events. Safe for concurrent
// use; OnPublish, when set, runs synchronously inside Publish so tests
// can observe store state at publish time.
type recordingPublisher struct {
	mu        sync.Mutex
	published []publishedEvent
	OnPublish func(topic string, event any)
}

type publishedEvent struct {
	topic string
	event any
}

func (p *recordingPublisher) Publish(topic string, event any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.OnPublish != nil {
		p.OnPublish(topic, event)
	}
	p.published = append(p.published, publishedEvent{topic: topic, event: event})
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.published...)
}

// --- Coordinator ---

type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Create(ctx context.Context, req CreateRoomRequest) (domain.Room, domain.Player, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Room), args.Get(1).(domain.Player), args.Error(2)
}

func (m *MockCoordinator) Join(ctx context.Context, roomCode, playerName string) (domain.Player, error) {
	args := m.Called(ctx, roomCode, playerName)
	return args.Get(0).(domain.Player), args.Error(1)
}

func (m *MockCoordinator) Leave(ctx context.Context, roomCode, playerId string) error {
	args := m.Called(ctx, roomCode, playerId)
	return args.Error(0)
}

func (m *MockCoordinator) Delete(ctx context.Context, roomCode, requesterId string) error {
	args := m.Called(ctx, roomCode, requesterId)
	return args.Error(0)
}

func (m *MockCoordinator) Detail(ctx context.Context, roomCode, requesterId string) (RoomDetail, error) {
	args := m.Called(ctx, roomCode, requesterId)
	return args.Get(0).(RoomDetail), args.Error(1)
}

func (m *MockCoordinator) Status(ctx context.Context, roomCode string) (domain.RoomStatus, error) {
	args := m.Called(ctx, roomCode)
	return args.Get(0).(domain.RoomStatus), args.Error(1)
}

func (m *MockCoordinator) ListPublic(ctx context.Context, params ListParams) (RoomPage, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(RoomPage), args.Error(1)
}

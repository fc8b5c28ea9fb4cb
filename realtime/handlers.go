package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

const pingPeriod = time.Second * 30

type RoomFinder interface {
	Find(ctx context.Context, code string) (domain.Room, error)
}

type subscribeHandler struct {
	hub   *Hub
	rooms RoomFinder
}

func NewSubscribeHandler(hub *Hub, rooms RoomFinder) *subscribeHandler {
	return &subscribeHandler{hub: hub, rooms: rooms}
}

// SubscribeRoomHandler upgrades the request to a websocket and streams
// every event published on the room's topic until the client leaves.
func (sh *subscribeHandler) SubscribeRoomHandler(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")

	_, err := sh.rooms.Find(ctx.Request.Context(), roomCode)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"errorCode": "404", "message": "Room not found"})
			return
		}
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errorCode": "500", "message": "Internal error"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "room_code", roomCode, "error", err)
		return
	}

	topic := RoomTopic(roomCode)
	id, events := sh.hub.Subscribe(topic)
	session := newWebsocketConnection(conn)
	sub := newSubscriber(&session, events)

	slog.Debug("subscriber connected", "topic", topic, "subscriber_id", id)

	go sub.WritePump()
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sub.RequestPing()
			case <-sub.done:
				return
			}
		}
	}()

	sub.ReadPump()

	sh.hub.Unsubscribe(topic, id)
	session.Close("")
	slog.Debug("subscriber disconnected", "topic", topic, "subscriber_id", id)
}

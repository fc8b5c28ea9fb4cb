package players

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

type PlayerService interface {
	Get(ctx context.Context, id string) (domain.Player, error)
	ListByMatch(ctx context.Context, gameId string) ([]domain.Player, error)
}

type playerHandler struct {
	players PlayerService
	rooms   RoomGetter
	scores  ScoreUpdater
}

func NewPlayerHandler(players PlayerService, rooms RoomGetter, scores ScoreUpdater) *playerHandler {
	return &playerHandler{players: players, rooms: rooms, scores: scores}
}

// GetPlayerHandler returns the room a player currently belongs to, or
// an empty response when the player or its room is gone.
func (ph *playerHandler) GetPlayerHandler(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	player, err := ph.players.Get(reqCtx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) {
			ctx.Status(http.StatusNoContent)
			return
		}
		slog.Error("failed to get player", "player_id", id, "error", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errorCode": "500", "message": "Internal error"})
		return
	}

	room, err := ph.rooms.GetRoom(reqCtx, player.RoomCode)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			ctx.Status(http.StatusNoContent)
			return
		}
		slog.Error("failed to get player room", "player_id", id, "room_code", player.RoomCode, "error", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errorCode": "500", "message": "Internal error"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"roomCode":   room.Code,
		"roomType":   room.Type,
		"roomStatus": room.Status,
	})
}

// MatchPlayersHandler returns summaries of the players seated in the
// match identified by the external game id.
func (ph *playerHandler) MatchPlayersHandler(ctx *gin.Context) {
	gameId := ctx.Param("gameId")

	matchPlayers, err := ph.players.ListByMatch(ctx.Request.Context(), gameId)
	if err != nil {
		if errors.Is(err, domain.ErrMatchNotFound) {
			ctx.Status(http.StatusNoContent)
			return
		}
		slog.Error("failed to list match players", "game_id", gameId, "error", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errorCode": "500", "message": "Internal error"})
		return
	}

	playersData := make([]gin.H, 0, len(matchPlayers))
	for _, player := range matchPlayers {
		playersData = append(playersData, gin.H{
			"name":            player.Name,
			"profileColor":    player.ProfileColor,
			"urlProfileImage": player.UrlProfileImage,
			"score":           player.Score,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"players": playersData})
}

// UpdateScoreHandler adds one point to the player of the room holding
// the given color.
func (ph *playerHandler) UpdateScoreHandler(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")

	colorValue, err := strconv.Atoi(ctx.Param("color"))
	if err != nil || !domain.ProfileColor(colorValue).Valid() {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "400", "message": "Invalid player color"})
		return
	}

	_, err = ph.scores.UpdateScore(ctx.Request.Context(), roomCode, domain.ProfileColor(colorValue))
	if err != nil {
		if errors.Is(err, domain.ErrPlayerNotFound) || errors.Is(err, domain.ErrRoomNotFound) {
			ctx.Status(http.StatusNoContent)
			return
		}
		slog.Error("failed to update score", "room_code", roomCode, "color", colorValue, "error", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errorCode": "500", "message": "Internal error"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

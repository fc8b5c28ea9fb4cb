package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Meia-noite-eu-te-conto/User-Session/domain"
)

type Coordinator interface {
	Create(ctx context.Context, req CreateRoomRequest) (domain.Room, domain.Player, error)
	Join(ctx context.Context, roomCode, playerName string) (domain.Player, error)
	Leave(ctx context.Context, roomCode, playerId string) error
	Delete(ctx context.Context, roomCode, requesterId string) error
	Detail(ctx context.Context, roomCode, requesterId string) (RoomDetail, error)
	Status(ctx context.Context, roomCode string) (domain.RoomStatus, error)
	ListPublic(ctx context.Context, params ListParams) (RoomPage, error)
}

type roomHandler struct {
	coordinator Coordinator
}

func NewRoomHandler(coordinator Coordinator) *roomHandler {
	return &roomHandler{coordinator: coordinator}
}

func abortValidation(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "400", "message": fmt.Sprintf("%s.", err)})
}

func abortInternal(ctx *gin.Context, action string, err error) {
	slog.Error("room operation failed", "action", action, "error", err)
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"errorCode": "500", "message": "Internal error"})
}

func (rh *roomHandler) CreateRoomHandler(ctx *gin.Context) {
	var body struct {
		CreatedBy          string `json:"createdBy"`
		RoomName           string `json:"roomName"`
		RoomType           *int   `json:"roomType"`
		PrivateRoom        bool   `json:"privateRoom"`
		MaxAmountOfPlayers *int   `json:"maxAmountOfPlayers"`
	}

	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "401", "message": "Bad Request"})
		return
	}
	if body.CreatedBy == "" || body.RoomName == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "400", "message": "createdBy and roomName fields are mandatory."})
		return
	}
	if body.RoomType == nil {
		abortValidation(ctx, domain.NewValidationError("roomType", "field is mandatory"))
		return
	}
	if body.MaxAmountOfPlayers == nil {
		abortValidation(ctx, domain.NewValidationError("maxAmountOfPlayers", "field is mandatory"))
		return
	}

	room, owner, err := rh.coordinator.Create(ctx.Request.Context(), CreateRoomRequest{
		RoomName:    body.RoomName,
		CreatedBy:   body.CreatedBy,
		RoomType:    domain.RoomType(*body.RoomType),
		MaxPlayers:  *body.MaxAmountOfPlayers,
		PrivateRoom: body.PrivateRoom,
	})
	if err != nil {
		if domain.IsValidation(err) {
			abortValidation(ctx, err)
			return
		}
		abortInternal(ctx, "create", err)
		return
	}

	ctx.Header("Location", fmt.Sprintf("/session/rooms/%s", room.Code))
	ctx.Header("X-User-Id", owner.Id)
	ctx.JSON(http.StatusCreated, gin.H{"roomCode": room.Code, "roomType": room.Type})
}

func (rh *roomHandler) ListRoomsHandler(ctx *gin.Context) {
	currentPage, err := strconv.Atoi(ctx.DefaultQuery("currentPage", "1"))
	if err != nil {
		currentPage = 1
	}
	pageSize, err := strconv.Atoi(ctx.DefaultQuery("pageSize", "10"))
	if err != nil {
		pageSize = 10
	}

	page, err := rh.coordinator.ListPublic(ctx.Request.Context(), ListParams{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		FilterLabel: ctx.Query("filterLabel"),
	})
	if err != nil {
		abortInternal(ctx, "list", err)
		return
	}

	data := make([]gin.H, 0, len(page.Rooms))
	for _, room := range page.Rooms {
		data = append(data, gin.H{
			"roomCode":           room.Code,
			"amountOfPlayers":    room.AmountOfPlayers,
			"maxAmountOfPlayers": room.MaxAmountOfPlayers,
			"roomName":           room.Name,
			"roomType":           room.Type,
		})
	}

	var nextPage, previousPage any
	if page.HasNextPage {
		nextPage = page.CurrentPage + 1
	}
	if page.HasPreviousPage {
		previousPage = page.CurrentPage - 1
	}

	ctx.JSON(http.StatusOK, gin.H{
		"paginatedItems": gin.H{
			"currentPage":     page.CurrentPage,
			"pageSize":        page.PageSize,
			"nextPage":        nextPage,
			"previousPage":    previousPage,
			"hasNextPage":     page.HasNextPage,
			"hasPreviousPage": page.HasPreviousPage,
			"totalPages":      page.TotalPages,
			"Data":            data,
		},
	})
}

func (rh *roomHandler) GetRoomHandler(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")
	requesterId := ctx.GetHeader("X-User-Id")

	detail, err := rh.coordinator.Detail(ctx.Request.Context(), roomCode, requesterId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"errorCode": "404", "message": "Room not found"})
		case errors.Is(err, domain.ErrForbidden):
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"errorCode": "403", "message": "Forbidden"})
		default:
			abortInternal(ctx, "detail", err)
		}
		return
	}

	playersData := make([]gin.H, 0, len(detail.Players))
	for _, player := range detail.Players {
		var id any
		if detail.IsOwner {
			id = player.Id
		}
		playersData = append(playersData, gin.H{
			"id":              id,
			"name":            player.Name,
			"profileColor":    player.ProfileColor,
			"urlProfileImage": player.UrlProfileImage,
			"owner":           player.Owner,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"roomType":           detail.Room.Type,
		"roomCode":           detail.Room.Code,
		"roomName":           detail.Room.Name,
		"maxAmountOfPlayers": detail.Room.MaxAmountOfPlayers,
		"amountOfPlayers":    detail.Room.AmountOfPlayers,
		"createdBy":          detail.Room.CreatedBy,
		"players":            playersData,
		"isOwner":            detail.IsOwner,
	})
}

func (rh *roomHandler) DeleteRoomHandler(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")
	requesterId := ctx.GetHeader("X-User-Id")

	if requesterId == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errorCode": "401", "message": "Unauthorized"})
		return
	}

	err := rh.coordinator.Delete(ctx.Request.Context(), roomCode, requesterId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			// Deleting something already gone is not an error.
			ctx.JSON(http.StatusNoContent, gin.H{})
		case errors.Is(err, domain.ErrForbidden):
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"errorCode": "403", "message": "Forbidden"})
		default:
			abortInternal(ctx, "delete", err)
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{})
}

func (rh *roomHandler) RoomStatusHandler(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")

	status, err := rh.coordinator.Status(ctx.Request.Context(), roomCode)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"errorCode": "404", "message": "Room status not found"})
			return
		}
		abortInternal(ctx, "status", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": strconv.Itoa(int(status))})
}

func (rh *roomHandler) JoinRoomHandler(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")

	var body struct {
		PlayerName string `json:"playerName"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "401", "message": "Bad Request"})
		return
	}

	player, err := rh.coordinator.Join(ctx.Request.Context(), roomCode, body.PlayerName)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			abortValidation(ctx, err)
		case errors.Is(err, domain.ErrRoomNotFound):
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"errorCode": "404", "message": "Room not found"})
		case errors.Is(err, domain.ErrRoomFull):
			ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"errorCode": "409", "message": "Room is full"})
		default:
			abortInternal(ctx, "join", err)
		}
		return
	}

	ctx.Header("Location", fmt.Sprintf("/session/rooms/%s", roomCode))
	ctx.Header("X-User-Id", player.Id)
	ctx.JSON(http.StatusCreated, gin.H{"roomCode": roomCode, "playerId": player.Id})
}

func (rh *roomHandler) LeaveRoomHandler(ctx *gin.Context) {
	roomCode := ctx.Param("roomCode")
	playerId := ctx.Param("playerId")

	err := rh.coordinator.Leave(ctx.Request.Context(), roomCode, playerId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomNotFound):
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"errorCode": "404", "message": "Room not found"})
		case errors.Is(err, domain.ErrPlayerNotFound):
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"errorCode": "404", "message": "Player not found in the room"})
		case errors.Is(err, domain.ErrInvalidOperation):
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "400", "message": "Bad request"})
		default:
			abortInternal(ctx, "leave", err)
		}
		return
	}

	ctx.Header("Location", fmt.Sprintf("/session/rooms/%s/%s", roomCode, playerId))
	ctx.Status(http.StatusNoContent)
}

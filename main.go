package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"

	"github.com/Meia-noite-eu-te-conto/User-Session/config"
	"github.com/Meia-noite-eu-te-conto/User-Session/migrations"
	"github.com/Meia-noite-eu-te-conto/User-Session/players"
	"github.com/Meia-noite-eu-te-conto/User-Session/realtime"
	"github.com/Meia-noite-eu-te-conto/User-Session/rooms"
	"github.com/Meia-noite-eu-te-conto/User-Session/storage"
)

// Store is everything the session service needs from persistence.
type Store interface {
	rooms.RoomStore
	players.PlayerStore
	players.MatchStore
}

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"X-User-Id",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
		ExposeHeaders: []string{"Location", "X-User-Id"},
	}))

	return r
}

func main() {
	cfg := config.Load()

	// logger setup
	if cfg.Debug {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug, AddSource: true})))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Dependencies
	var store Store
	if cfg.PostgresURL != "" {
		migrations.Migrate(cfg.PostgresURL)

		pgRepo, err := storage.NewPostgresRepo(context.Background(), cfg.PostgresURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pgRepo.Close()
		store = pgRepo
	} else {
		slog.Warn("POSTGRES_URL not set, using in-memory store")
		store = storage.NewMemoryRepo()
	}

	hub := realtime.NewHub()
	playerRegistry := players.NewRegistry(store, store)
	roomRegistry := rooms.NewRegistry(store)
	coordinator := rooms.NewService(roomRegistry, playerRegistry, hub)

	roomHandler := rooms.NewRoomHandler(coordinator)
	playerHandler := players.NewPlayerHandler(playerRegistry, store, coordinator)
	subscribeHandler := realtime.NewSubscribeHandler(hub, roomRegistry)

	r := CreateServer(cfg.AllowedOrigins)

	session := r.Group("/session")
	{
		roomGroup := session.Group("/rooms")
		roomGroup.GET("", roomHandler.ListRoomsHandler)
		roomGroup.POST("", roomHandler.CreateRoomHandler)
		roomGroup.GET("/:roomCode", roomHandler.GetRoomHandler)
		roomGroup.DELETE("/:roomCode", roomHandler.DeleteRoomHandler)
		roomGroup.GET("/:roomCode/status", roomHandler.RoomStatusHandler)
		roomGroup.GET("/:roomCode/subscribe", subscribeHandler.SubscribeRoomHandler)
		roomGroup.PUT("/:roomCode/players", roomHandler.JoinRoomHandler)
		roomGroup.DELETE("/:roomCode/players/:playerId", roomHandler.LeaveRoomHandler)
		roomGroup.POST("/:roomCode/players/:color/score", playerHandler.UpdateScoreHandler)

		session.GET("/players/:id", playerHandler.GetPlayerHandler)
		session.GET("/matches/:gameId/players", playerHandler.MatchPlayersHandler)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("session service listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}

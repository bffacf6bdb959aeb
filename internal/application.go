package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/baiyoke1207/spellcast-backend/internal/config"
	"github.com/baiyoke1207/spellcast-backend/internal/dictionary"
	"github.com/baiyoke1207/spellcast-backend/internal/repository"
	"github.com/baiyoke1207/spellcast-backend/internal/repository/storage"
	"github.com/baiyoke1207/spellcast-backend/internal/usecase"
	"github.com/baiyoke1207/spellcast-backend/transport/rest"
	"github.com/baiyoke1207/spellcast-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	words, err := dictionary.LoadFile(conf.DictionaryPath)
	if err != nil {
		return fmt.Errorf("could not load dictionary: %w", err)
	}
	log.Info("dictionary loaded", "words", words.Len())

	sessionRepo := repository.NewSessionRepository(redisStorage.Connection, conf.Game.SessionTTL())
	snapshotRepo := repository.NewRoomSnapshotRepository(redisStorage.Connection)

	hub := websocket.NewHub(logger)
	roomManager := usecase.NewRoomManager(logger, conf.Game, words, sessionRepo, snapshotRepo, hub)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restHandlers := rest.NewHandlers(logger, roomManager)
		if httpErr := rest.Start(ctx, conf.HTTPPort, restHandlers); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, roomManager, hub)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

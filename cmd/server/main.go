package main

import (
	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/httpapi"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/search"
	"chat-relay/services"
	"chat-relay/ws"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes every component and centralizes error reporting, so that
// deferred cleanup (database close, index close) always executes before the
// process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB) & Search Index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	writer, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = writer.Close()
	}()

	// 3. Core components
	monitor := observability.NewManager()
	registry := runtime.NewRegistry()
	messageRepository := repositories.NewMessageRepository(db, log)
	userRepository := repositories.NewUserRepository(db)
	timeline := projection.NewTimeline(config.TimelineSize)
	index := search.NewIndex(writer, log)

	hub := runtime.NewHub(log, monitor, timeline, index)

	commands := make(chan domain.Command, config.BufferSize)
	sanitized := make(chan domain.Command, config.BufferSize)
	coordinator := runtime.NewCoordinator(log, registry, commands)
	hub.SetEvictFunc(coordinator.OnDisconnect)

	// 4. Moderation
	censored, err := moderation.LoadEmbedded()
	if err != nil {
		return fmt.Errorf("loading censored words failed: %w", err)
	}
	log.Info("Moderation wordlists loaded", "languages", censored.Languages)
	censorChar, err := config.CharacterRune()
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(censored.Words, censorChar)
	if err != nil {
		return fmt.Errorf("building moderator failed: %w", err)
	}

	// 5. Supervised workers
	sup := workers.NewSupervisor(log, config.RestartInterval).
		Add(workers.NewModerationWorker(moderator, commands, sanitized, log)).
		Add(workers.NewRelayWorker(log, messageRepository, hub, monitor, sanitized)).
		Add(workers.NewHeartbeatWorker(log, monitor, config.HeartbeatInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 6. HTTP & WebSocket surface
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, tokens)

	mux := http.NewServeMux()
	handler := httpapi.NewHandler(
		log, messageRepository, registry, authService,
		index, timeline, monitor, tokens,
		config.AuthRequired, config.SearchLimit,
	)
	handler.Register(mux)
	mux.Handle("GET /ws", ws.NewServer(log, coordinator, config.ConnectionBufferSize, config.WriteTimeout))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

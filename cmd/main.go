package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-relay/auth"
	"chat-relay/httpapi"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/ws"

	"github.com/Netflix/go-env"
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

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database cleanup included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	censorChar, err := censorRune(config.CensorReplacement)
	if err != nil {
		return err
	}

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Stores, moderation, fan-out
	messageRepository := repositories.NewMessageRepository(db, log)
	roomRepository := repositories.NewRoomRepository(db, log)
	userRepository := repositories.NewUserRepository(db)

	blacklist, err := moderation.LoadWordlists()
	if err != nil {
		return fmt.Errorf("loading moderation wordlists failed: %w", err)
	}
	moderator, err := moderation.NewModerator(blacklist, censorChar)
	if err != nil {
		return fmt.Errorf("building moderator failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded", len(blacklist)))

	router := runtime.NewRouter(log)
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)

	// 4. Services
	authService := services.NewAuthService(userRepository, tokens)
	chatService := services.NewChatService(log, router, roomRepository,
		messageRepository, userRepository, moderator,
		config.HistoryLimit, config.MaxMessageLength)
	roomService := services.NewRoomService(log, router, roomRepository,
		messageRepository, userRepository)
	invitationService := services.NewInvitationService(log, router,
		roomRepository, userRepository)

	// 5. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewReaper(log, roomRepository, config.ReaperInterval, config.TrashRetention))
	sup.Add(workers.NewTelemetryWorker(log, config.TelemetryInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)

	// 6. HTTP server: REST surface + websocket gateway + metrics
	gateway := ws.NewGateway(log, tokens, router, chatService, config.ConnectionBufferSize)
	handler := httpapi.NewHandler(log, tokens, authService, roomService,
		invitationService, chatService, gateway)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func censorRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSOR_REPLACEMENT must be a single character, got %q", str)
	}
	return r[0], nil
}

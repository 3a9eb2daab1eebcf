package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tyrowin/minirpg/internal/room"
	"github.com/Tyrowin/minirpg/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log.Println("Starting Mini RPG server...")

	if err := server.LoadDotEnv(); err != nil {
		log.Fatalf("Error loading .env: %v", err)
	}

	server.SetConfig(server.NewConfigFromEnv())
	config := server.CurrentConfig()

	gateway := server.StartHub(room.New(config.Room))
	httpServer := server.CreateServer(config.Port, server.SetupRoutes(gateway))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := gateway.Hub().Shutdown(shutdownTimeout); err != nil {
		log.Printf("Hub shutdown: %v", err)
	}
}

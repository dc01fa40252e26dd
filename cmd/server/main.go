// cmd/server/main.go
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

	"github.com/jason-s-yu/tabletop/internal/auth"
	"github.com/jason-s-yu/tabletop/internal/config"
	"github.com/jason-s-yu/tabletop/internal/handlers"
	"github.com/jason-s-yu/tabletop/internal/middleware"
	"github.com/jason-s-yu/tabletop/internal/registry"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	if cfg.TicketPrivateKeyPath != "" && cfg.TicketPublicKeyPath != "" {
		if err := auth.InitFromPath(cfg.TicketPrivateKeyPath, cfg.TicketPublicKeyPath, cfg.TicketTTL); err != nil {
			log.Fatalf("failed to load ticket keys: %v", err)
		}
	} else if err := auth.Init(cfg.TicketTTL); err != nil {
		log.Fatalf("failed to init ticket keys: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, mode, err := registry.New(ctx, cfg.Registry, logger)
	if err != nil {
		log.Fatalf("failed to open room registry: %v", err)
	}
	logger.Infof("room registry mode: %s", mode)

	rs := handlers.NewRoomServer(cfg.Room, reg, logger)
	logged := middleware.LogMiddleware(logger)
	cors := middleware.CORS(cfg.CORSOrigins())

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.PingHandler)

	// room endpoints
	mux.Handle("/room/list", logged(cors(handlers.ListRoomsHandler(logger, rs))))
	mux.Handle("/room/ticket", logged(cors(handlers.CreateTicketHandler(logger))))

	// room ws
	mux.Handle("/room/ws/", logged(handlers.RoomWSHandler(logger, rs, handlers.WSOptions{
		OriginPatterns:  cfg.OriginPatterns,
		TicketsRequired: cfg.TicketsRequired,
	})))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: mux,
	}

	go func() {
		logger.Infof("Running on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	rs.Shutdown(shutdownCtx)
	if err := reg.Close(); err != nil {
		logger.Warnf("closing registry: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avelling/codescope/internal/api"
	"github.com/avelling/codescope/internal/config"
	"github.com/avelling/codescope/internal/engine"
	"github.com/avelling/codescope/internal/realtime"
	"github.com/avelling/codescope/internal/service"
	"github.com/avelling/codescope/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run(cfg *config.Config) error {
	hub := realtime.NewHub()
	eng := engine.NewAnalyzer()

	reports, err := storage.NewReportStorage(cfg.Storage.DataDir)
	if err != nil {
		return err
	}

	sessions := service.NewSessionManager(hub, eng, cfg.Analysis.Root)
	defer sessions.Shutdown()

	telemetry := service.NewTelemetryEmitter(hub, sessions, cfg.Telemetry.Interval.Std())

	router := chi.NewRouter()
	router.Use(api.CORS)
	api.NewHandler(cfg, hub, sessions, telemetry, eng, reports).Mount(router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go telemetry.Run(ctx)

	server := &http.Server{
		Addr:        cfg.Server.ListenAddr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", cfg.Server.ListenAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Print("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gridmix/internal/config"
	"gridmix/internal/fetchers"
	"gridmix/internal/logger"
	"gridmix/internal/server"
)

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load(context.Background())
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	log := logger.For(logger.ComponentApp)
	log.Info("Starting gridmix dashboard", logger.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"entity_code": cfg.EntityCode,
		"mockup_mode": cfg.MockupMode,
		"version":     config.GetVersion(),
	})

	srv := server.NewServer(cfg, fetchers.NewSource(cfg))
	httpServer := srv.HTTPServer()

	go func() {
		log.Infof("Server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped")
}

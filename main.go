package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/revealduo/revealserver/config"
	"github.com/revealduo/revealserver/logger"
	"github.com/revealduo/revealserver/persistence"
	"github.com/revealduo/revealserver/server"
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	var store persistence.Store
	if cfg.Database.Enabled {
		store, err = openStore(cfg)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to archive database: %v", err)
		}
		logger.Log.Info("Reveal archive connected.")
		defer store.Close()
	}

	gameServer := server.NewGameServer(cfg, store)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Log.Infof("Received %s, shutting down gracefully", sig)

		done := make(chan struct{})
		go func() {
			gameServer.Shutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			logger.Log.Warn("Forcing shutdown")
		}
		os.Exit(0)
	}()

	logger.Log.Infof("Starting reveal server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}

func openStore(cfg *config.Config) (persistence.Store, error) {
	pg := cfg.Database.Postgres
	if cfg.Database.Driver == "pq" {
		return persistence.NewPQStore(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	}
	return persistence.NewGormPostgres(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/matchflash/internal/api"
	"github.com/vytor/matchflash/internal/auth"
	"github.com/vytor/matchflash/internal/config"
	"github.com/vytor/matchflash/internal/db"
	"github.com/vytor/matchflash/internal/jobs"
	"github.com/vytor/matchflash/internal/logger"
	"github.com/vytor/matchflash/internal/repository/sqlite"
	"github.com/vytor/matchflash/internal/services"
	"github.com/vytor/matchflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("MatchFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	if cfg.UsesDevSecret() {
		log.Warn("TOKEN_SECRET is not set; using the development secret")
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("card_count=%d group_size=%d value_set=%s", cfg.CardCount, cfg.GroupSize, cfg.ValueSet)
	log.Debug("result_worker_count=%d", cfg.ResultWorkerCount)
	log.Debug("result_queue_size=%d", cfg.ResultQueueSize)
	log.Debug("game_idle_ttl=%s sweep_interval=%s", cfg.GameIdleTTL, cfg.SweepInterval)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	resultRepo := sqlite.NewResultRepository(database.DB)
	resultService := services.NewResultService(resultRepo, cfg.LeaderboardLimit)

	resultPool := worker.NewPool(cfg.ResultWorkerCount, cfg.ResultQueueSize)
	jobQueue := jobs.NewWorkerQueue(resultPool, resultService)

	gameService := services.NewGameService(jobQueue, auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL), services.GameServiceOptions{
		Defaults: services.GameDefaults{
			CardCount: cfg.CardCount,
			GroupSize: cfg.GroupSize,
			ValueSet:  cfg.ValueSet,
		},
		IdleTTL: cfg.GameIdleTTL,
	})

	srv := &api.Server{
		DB:            database,
		GameService:   gameService,
		ResultService: resultService,
	}

	resultPool.Start(context.Background())

	sweepCtx, stopSweep := context.WithCancel(logger.NewContext(context.Background(), log.WithPrefix("sweeper")))
	go sweepIdleGames(sweepCtx, gameService, cfg.SweepInterval)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	stopSweep()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Websockets are hijacked, so Shutdown does not wait for them.
	log.Debug("closing %d live games", gameService.Count())
	gameService.Close()

	// Stop drains queued results before returning.
	log.Debug("stopping result pool")
	resultPool.Stop()

	log.Info("===========================================")
	log.Info("MatchFlash Server Stopped")
	log.Info("===========================================")
}

func sweepIdleGames(ctx context.Context, games services.GameService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			games.Sweep(ctx)
		}
	}
}

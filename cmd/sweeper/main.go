package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habitquest/internal/config"
	"habitquest/internal/repository"
	"habitquest/internal/service"
	"habitquest/pkg/db"
	"habitquest/pkg/logger"
	"habitquest/pkg/outbox"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting sweeper service...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("sweep_hour", cfg.Sweep.Hour),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	txManager := repository.NewTxManager(dbConn)
	habitRepo := repository.NewHabitRepository(dbConn, log)
	penaltyRepo := repository.NewPenaltyRepository(dbConn, log)
	outboxRepo := repository.NewOutboxRepository(outbox.NewRepository(dbConn), log)

	sweep := service.NewSweepService(txManager, habitRepo, penaltyRepo, outboxRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run once on startup to catch up after downtime, then daily at the
	// configured hour. Reruns are no-ops thanks to the uniqueness guard.
	go func() {
		if _, err := sweep.SweepYesterday(ctx); err != nil {
			log.Error("Startup sweep failed", zap.Error(err))
		}

		for {
			next := nextRunAt(time.Now(), cfg.Sweep.Hour)
			log.Info("Next sweep scheduled", zap.Time("at", next))

			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Until(next)):
				if _, err := sweep.SweepYesterday(ctx); err != nil {
					log.Error("Sweep failed", zap.Error(err))
				}
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Sweeper shutting down")
}

// nextRunAt returns the next occurrence of hour (local time) strictly after
// now.
func nextRunAt(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

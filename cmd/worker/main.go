package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	contracts "habitquest/contracts/mq"
	"habitquest/internal/config"
	"habitquest/internal/mqhandler"
	"habitquest/internal/repository"
	"habitquest/internal/service"
	"habitquest/pkg/db"
	"habitquest/pkg/logger"
	"habitquest/pkg/mq"
	"habitquest/pkg/outbox"
	"habitquest/pkg/redis"
	"habitquest/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting worker service...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, 24*time.Hour, log)

	// repositories and services
	txManager := repository.NewTxManager(dbConn)
	userRepo := repository.NewUserRepository(dbConn, log)
	achievementRepo := repository.NewAchievementRepository(dbConn, log)
	skillRepo := repository.NewSkillRepository(dbConn, log)
	completionRepo := repository.NewCompletionRepository(dbConn, log)
	rewardRepo := repository.NewRewardRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	outboxRepo := repository.NewOutboxRepository(outbox.NewRepository(dbConn), log)

	unlockService := service.NewUnlockService(txManager, userRepo, achievementRepo, skillRepo, completionRepo, rewardRepo, outboxRepo, log)

	// outbox dispatcher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("MQ publisher init failed", zap.Error(err))
	}
	defer publisher.Close()

	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	defer dispatcherCancel()

	dispatcher := outbox.NewDispatcher(outbox.NewRepository(dbConn), publisher, log)
	go dispatcher.Start(dispatcherCtx)

	// consumers
	if err := publisher.EnsureDLQ(
		contracts.RoutingKeyHabitCompleted,
		contracts.RoutingKeyPenaltyCreated,
		contracts.RoutingKeyAchievementUnlocked,
	); err != nil {
		log.Fatal("DLQ setup failed", zap.Error(err))
	}
	retrier := mqhandler.NewRetrier(util.NewRetryCounter(rdb, time.Hour), publisher, 5, log)

	completedHandler := mqhandler.NewHabitCompletedHandler(unlockService, deduper, log)
	completedConsumer, err := mq.NewConsumer(cfg.MQ.URL, "habit_completed_queue", contracts.RoutingKeyHabitCompleted, log)
	if err != nil {
		log.Fatal("habit.completed consumer init failed", zap.Error(err))
	}
	completedConsumer.SetHandler(retrier.Wrap(contracts.RoutingKeyHabitCompleted, completedHandler.Handle))
	defer completedConsumer.Stop()

	go func() {
		if err := completedConsumer.StartConsuming(); err != nil {
			log.Fatal("habit.completed consumer crashed", zap.Error(err))
		}
	}()

	penaltyHandler := mqhandler.NewPenaltyCreatedHandler(notificationRepo, deduper, log)
	penaltyConsumer, err := mq.NewConsumer(cfg.MQ.URL, "penalty_created_queue", contracts.RoutingKeyPenaltyCreated, log)
	if err != nil {
		log.Fatal("penalty.created consumer init failed", zap.Error(err))
	}
	penaltyConsumer.SetHandler(retrier.Wrap(contracts.RoutingKeyPenaltyCreated, penaltyHandler.Handle))
	defer penaltyConsumer.Stop()

	go func() {
		if err := penaltyConsumer.StartConsuming(); err != nil {
			log.Fatal("penalty.created consumer crashed", zap.Error(err))
		}
	}()

	achievementHandler := mqhandler.NewAchievementUnlockedHandler(notificationRepo, deduper, log)
	achievementConsumer, err := mq.NewConsumer(cfg.MQ.URL, "achievement_unlocked_queue", contracts.RoutingKeyAchievementUnlocked, log)
	if err != nil {
		log.Fatal("achievement.unlocked consumer init failed", zap.Error(err))
	}
	achievementConsumer.SetHandler(retrier.Wrap(contracts.RoutingKeyAchievementUnlocked, achievementHandler.Handle))
	defer achievementConsumer.Stop()

	go func() {
		if err := achievementConsumer.StartConsuming(); err != nil {
			log.Fatal("achievement.unlocked consumer crashed", zap.Error(err))
		}
	}()

	log.Info("Worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Worker shutting down")
}

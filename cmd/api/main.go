package main

import (
	"time"

	"go.uber.org/zap"

	"habitquest/internal/config"
	"habitquest/internal/handler"
	"habitquest/internal/httpserver"
	"habitquest/internal/payment"
	"habitquest/internal/repository"
	"habitquest/internal/service"
	"habitquest/pkg/db"
	"habitquest/pkg/logger"
	"habitquest/pkg/outbox"
	"habitquest/pkg/redis"
	"habitquest/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting api service...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("port", cfg.Server.Port),
		zap.Bool("payments_enabled", cfg.Payment.Enabled()),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.Migrate(cfg.DB, cfg.MigrationsDir, log); err != nil {
		log.Fatal("Migrations failed", zap.Error(err))
	}

	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, 24*time.Hour, log)

	// repositories
	txManager := repository.NewTxManager(dbConn)
	userRepo := repository.NewUserRepository(dbConn, log)
	habitRepo := repository.NewHabitRepository(dbConn, log)
	completionRepo := repository.NewCompletionRepository(dbConn, log)
	achievementRepo := repository.NewAchievementRepository(dbConn, log)
	skillRepo := repository.NewSkillRepository(dbConn, log)
	penaltyRepo := repository.NewPenaltyRepository(dbConn, log)
	rewardRepo := repository.NewRewardRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	outboxRepo := repository.NewOutboxRepository(outbox.NewRepository(dbConn), log)

	// services
	gateway := payment.NewClient(cfg.Payment, log)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, log)
	habitService := service.NewHabitService(habitRepo, log)
	completionService := service.NewCompletionService(txManager, userRepo, habitRepo, completionRepo, outboxRepo, log)
	unlockService := service.NewUnlockService(txManager, userRepo, achievementRepo, skillRepo, completionRepo, rewardRepo, outboxRepo, log)
	ledgerService := service.NewLedgerService(penaltyRepo, rewardRepo, notificationRepo, gateway, deduper, log)

	handlers := httpserver.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Habit:        handler.NewHabitHandler(habitService, log),
		Completion:   handler.NewCompletionHandler(completionService, unlockService, log),
		Unlock:       handler.NewUnlockHandler(unlockService, log),
		Ledger:       handler.NewLedgerHandler(ledgerService, log),
		Payment:      handler.NewPaymentHandler(ledgerService, log),
		Notification: handler.NewNotificationHandler(notificationRepo, log),
	}

	router := httpserver.NewRouter(handlers, cfg.JWT.Secret, log, dbConn)

	log.Info("API listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("Server exited", zap.Error(err))
	}
}

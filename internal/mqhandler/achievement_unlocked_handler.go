package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	contracts "habitquest/contracts/mq"
	"habitquest/internal/model"
	"habitquest/internal/service"
	"habitquest/pkg/logger"
	"habitquest/pkg/metrics"
	"habitquest/pkg/trace"
	"habitquest/pkg/util"
)

type AchievementUnlockedHandler struct {
	notifications service.NotificationStore
	deduper       *util.Deduper
	logger        *zap.Logger
}

func NewAchievementUnlockedHandler(notifications service.NotificationStore, deduper *util.Deduper, logger *zap.Logger) *AchievementUnlockedHandler {
	return &AchievementUnlockedHandler{notifications: notifications, deduper: deduper, logger: logger}
}

func (h *AchievementUnlockedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()

	var p contracts.AchievementUnlockedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal AchievementUnlockedPayload", zap.Error(err))
		return err
	}

	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	if p.UserID <= 0 || p.AchievementID <= 0 {
		return fmt.Errorf("invalid achievement.unlocked payload: user_id=%d achievement_id=%d", p.UserID, p.AchievementID)
	}

	key := fmt.Sprintf("%d:%d", p.UserID, p.AchievementID)
	if !h.deduper.AcquireOnce(ctx, "achievement_unlocked", key) {
		return nil
	}

	note := &model.Notification{
		UserID:  p.UserID,
		Kind:    model.NotificationAchievement,
		Message: fmt.Sprintf("Achievement unlocked: %s", p.Name),
	}
	if err := h.notifications.Insert(ctx, note); err != nil {
		log.Error("Failed to insert achievement notification",
			zap.Int64("user_id", p.UserID),
			zap.Int64("achievement_id", p.AchievementID),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordMQConsumeLatency(contracts.RoutingKeyAchievementUnlocked, "achievement_unlocked_queue", time.Since(start))
	return nil
}

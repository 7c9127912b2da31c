package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	contracts "habitquest/contracts/mq"
	"habitquest/internal/service"
	"habitquest/pkg/logger"
	"habitquest/pkg/metrics"
	"habitquest/pkg/trace"
	"habitquest/pkg/util"
)

// HabitCompletedHandler re-evaluates achievements after a completion. The
// request path already evaluates inline on the happy path; this consumer is
// the safety net for the cases where that inline pass failed.
type HabitCompletedHandler struct {
	unlocks *service.UnlockService
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewHabitCompletedHandler(unlocks *service.UnlockService, deduper *util.Deduper, logger *zap.Logger) *HabitCompletedHandler {
	return &HabitCompletedHandler{unlocks: unlocks, deduper: deduper, logger: logger}
}

func (h *HabitCompletedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()

	var p contracts.HabitCompletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal HabitCompletedPayload", zap.Error(err))
		return err
	}
	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	if p.CompletionID <= 0 || p.UserID <= 0 {
		return fmt.Errorf("invalid habit.completed payload: completion_id=%d user_id=%d", p.CompletionID, p.UserID)
	}

	key := fmt.Sprintf("completion:%d", p.CompletionID)
	if !h.deduper.AcquireOnce(ctx, "habit_completed", key) {
		return nil
	}

	log.Info("Handling habit.completed event",
		zap.Int64("completion_id", p.CompletionID),
		zap.Int64("user_id", p.UserID),
		zap.String("date", p.Date),
	)

	unlocked, err := h.unlocks.EvaluateAchievements(ctx, p.UserID)
	if err != nil {
		log.Error("Achievement evaluation failed",
			zap.Int64("user_id", p.UserID),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordMQConsumeLatency(contracts.RoutingKeyHabitCompleted, "habit_completed_queue", time.Since(start))
	if len(unlocked) > 0 {
		log.Info("Unlocked achievements from event",
			zap.Int64("user_id", p.UserID),
			zap.Int("count", len(unlocked)),
		)
	}
	return nil
}

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

// PenaltyCreatedHandler notifies the user that a missed habit cost them
// money.
type PenaltyCreatedHandler struct {
	notifications service.NotificationStore
	deduper       *util.Deduper
	logger        *zap.Logger
}

func NewPenaltyCreatedHandler(notifications service.NotificationStore, deduper *util.Deduper, logger *zap.Logger) *PenaltyCreatedHandler {
	return &PenaltyCreatedHandler{notifications: notifications, deduper: deduper, logger: logger}
}

func (h *PenaltyCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	start := time.Now()

	var p contracts.PenaltyCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal PenaltyCreatedPayload", zap.Error(err))
		return err
	}

	if p.TraceID != "" {
		ctx = trace.WithContext(ctx, p.TraceID)
	}
	log := logger.WithTrace(ctx, h.logger)

	if p.PenaltyID <= 0 || p.UserID <= 0 {
		return fmt.Errorf("invalid penalty.created payload: penalty_id=%d user_id=%d", p.PenaltyID, p.UserID)
	}

	key := fmt.Sprintf("penalty:%d", p.PenaltyID)
	if !h.deduper.AcquireOnce(ctx, "penalty_created", key) {
		return nil
	}

	note := &model.Notification{
		UserID:  p.UserID,
		Kind:    model.NotificationPenalty,
		Message: fmt.Sprintf("You missed %q on %s. A penalty of %s was added.", p.HabitName, p.MissedDate, p.Amount),
	}
	if err := h.notifications.Insert(ctx, note); err != nil {
		log.Error("Failed to insert penalty notification",
			zap.Int64("penalty_id", p.PenaltyID),
			zap.Error(err),
		)
		return err
	}

	metrics.RecordMQConsumeLatency(contracts.RoutingKeyPenaltyCreated, "penalty_created_queue", time.Since(start))
	log.Info("Penalty notification delivered",
		zap.Int64("penalty_id", p.PenaltyID),
		zap.Int64("user_id", p.UserID),
	)
	return nil
}

package repository

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"habitquest/pkg/outbox"
)

var errNoTransaction = errors.New("outbox insert requires an active transaction")

// OutboxRepository writes domain events into the outbox table inside the
// caller's transaction. The dispatcher picks them up asynchronously.
type OutboxRepository struct {
	repo   *outbox.Repository
	logger *zap.Logger
}

func NewOutboxRepository(repo *outbox.Repository, logger *zap.Logger) *OutboxRepository {
	return &OutboxRepository{repo: repo, logger: logger}
}

// InsertPending stages an event for publication. The context must carry the
// transaction that holds the business write; staging an event outside one
// would break the atomicity the outbox exists for.
func (r *OutboxRepository) InsertPending(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) error {
	tx, ok := TxFromContext(ctx)
	if !ok {
		return errNoTransaction
	}

	if err := outbox.InsertEventInTx(ctx, tx, r.repo, aggregateType, &aggregateID, routingKey, payload); err != nil {
		r.logger.Error("Failed to stage outbox event",
			zap.String("routing_key", routingKey),
			zap.Int64("aggregate_id", aggregateID),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("Outbox event staged",
		zap.String("routing_key", routingKey),
		zap.Int64("aggregate_id", aggregateID),
	)
	return nil
}

package mqhandler

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"habitquest/pkg/mq"
	"habitquest/pkg/util"
)

// Retrier guards consumer handlers against poison messages. Retryable
// failures are nacked back for redelivery up to maxAttempts; non-retryable
// failures and messages that exhaust their attempts are parked on the dead
// letter exchange and acked so the queue keeps moving.
type Retrier struct {
	counter     *util.RetryCounter
	dlq         *mq.Publisher
	maxAttempts int64
	logger      *zap.Logger
}

func NewRetrier(counter *util.RetryCounter, dlq *mq.Publisher, maxAttempts int64, logger *zap.Logger) *Retrier {
	return &Retrier{counter: counter, dlq: dlq, maxAttempts: maxAttempts, logger: logger}
}

func (r *Retrier) Wrap(routingKey string, next mq.MessageHandler) mq.MessageHandler {
	return func(ctx context.Context, data json.RawMessage) error {
		err := next(ctx, data)
		if err == nil {
			return nil
		}

		key := retryKey(routingKey, data)
		retryable, kind := util.IsRetryableError(err)
		if retryable {
			attempts, cerr := r.counter.IncrementAndGet(ctx, key)
			if cerr != nil {
				// counting resumes once redis is back, redeliver meanwhile
				r.logger.Warn("Retry counter unavailable",
					zap.String("routing_key", routingKey),
					zap.Error(cerr),
				)
				return err
			}
			if attempts < r.maxAttempts {
				r.logger.Warn("Handler failed, message will be redelivered",
					zap.String("routing_key", routingKey),
					zap.String("error_type", kind),
					zap.Int64("attempt", attempts),
					zap.Error(err),
				)
				return err
			}
		}

		if derr := r.dlq.PublishToDLQ(routingKey, data, err.Error()); derr != nil {
			r.logger.Error("Failed to publish to DLQ",
				zap.String("routing_key", routingKey),
				zap.Error(derr),
			)
			return err
		}
		_ = r.counter.Reset(ctx, key)

		r.logger.Error("Message dead-lettered",
			zap.String("routing_key", routingKey),
			zap.String("error_type", kind),
			zap.Error(err),
		)
		return nil
	}
}

// retryKey identifies a delivery by its content, so redeliveries of the same
// message share a counter.
func retryKey(routingKey string, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("retry:%s:%x", routingKey, sum[:8])
}

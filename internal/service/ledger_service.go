package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"habitquest/internal/model"
	"habitquest/internal/payment"
)

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	Enabled() bool
	CreateIntent(ctx context.Context, amountMinor int64, userID int64, penaltyIDs []int64) (*payment.Intent, error)
}

// DedupeGuard provides at-most-once guards for external callbacks.
type DedupeGuard interface {
	AcquireOnce(ctx context.Context, handler, key string) bool
	Release(ctx context.Context, handler, key string)
}

// LedgerService tracks monetary obligations and credits, and drives their
// settlement through the payment gateway.
type LedgerService struct {
	penalties     PenaltyStore
	rewards       RewardStore
	notifications NotificationStore
	gateway       PaymentGateway
	dedupe        DedupeGuard
	logger        *zap.Logger
}

func NewLedgerService(
	penalties PenaltyStore,
	rewards RewardStore,
	notifications NotificationStore,
	gateway PaymentGateway,
	dedupe DedupeGuard,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		penalties:     penalties,
		rewards:       rewards,
		notifications: notifications,
		gateway:       gateway,
		dedupe:        dedupe,
		logger:        logger,
	}
}

func (s *LedgerService) ListPenalties(ctx context.Context, userID int64, unpaidOnly bool) ([]model.Penalty, error) {
	return s.penalties.ListByUser(ctx, userID, unpaidOnly)
}

func (s *LedgerService) ListRewards(ctx context.Context, userID int64, unclaimedOnly bool) ([]model.Reward, error) {
	return s.rewards.ListByUser(ctx, userID, unclaimedOnly)
}

// MarkPenaltyPaid settles one penalty. Idempotent: a repeat call returns the
// already-settled row untouched, keeping the first payment reference.
func (s *LedgerService) MarkPenaltyPaid(ctx context.Context, userID, penaltyID int64, paymentRef string) (*model.Penalty, error) {
	if paymentRef == "" {
		return nil, ErrValidation
	}

	p, err := s.penalties.GetByID(ctx, penaltyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrNotOwner
	}

	updated, err := s.penalties.MarkPaid(ctx, penaltyID, userID, paymentRef)
	if err != nil {
		return nil, err
	}
	if !updated {
		// already paid, return current state as-is
		return p, nil
	}

	return s.penalties.GetByID(ctx, penaltyID)
}

// MarkRewardClaimed settles one reward. Same idempotency contract as
// MarkPenaltyPaid.
func (s *LedgerService) MarkRewardClaimed(ctx context.Context, userID, rewardID int64, transferRef string) error {
	if transferRef == "" {
		return ErrValidation
	}

	updated, err := s.rewards.MarkClaimed(ctx, rewardID, userID, transferRef)
	if err != nil {
		return err
	}
	if !updated {
		rewards, err := s.rewards.ListByUser(ctx, userID, false)
		if err != nil {
			return err
		}
		for _, rw := range rewards {
			if rw.ID == rewardID {
				return nil // already claimed
			}
		}
		return ErrNotFound
	}
	return nil
}

// CreatePaymentIntent charges the sum of the listed unpaid penalties. No
// penalty state changes here: settlement happens only on the gateway's
// confirmation callback, so a failed gateway call leaves everything
// untouched.
func (s *LedgerService) CreatePaymentIntent(ctx context.Context, userID int64, penaltyIDs []int64) (*payment.Intent, error) {
	if !s.gateway.Enabled() {
		return nil, ErrPaymentsNotConfigured
	}
	if len(penaltyIDs) == 0 {
		return nil, ErrValidation
	}

	totalMinor, count, err := s.penalties.SumUnpaidByIDs(ctx, userID, penaltyIDs)
	if err != nil {
		return nil, err
	}
	if count == 0 || totalMinor <= 0 {
		return nil, ErrNoPayablePenalties
	}

	intent, err := s.gateway.CreateIntent(ctx, totalMinor, userID, penaltyIDs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment intent issued",
		zap.Int64("user_id", userID),
		zap.Int64("amount_minor", totalMinor),
		zap.Int("penalty_count", count),
		zap.String("intent_id", intent.ID),
	)
	return intent, nil
}

// ConfirmPayment consumes the gateway's success callback and settles the
// referenced penalties. The redis guard absorbs duplicate webhook
// deliveries; the is_paid guard in the update makes a replay harmless even
// when redis forgot.
func (s *LedgerService) ConfirmPayment(ctx context.Context, userID int64, penaltyIDs []int64, paymentRef string) (int, error) {
	if !s.gateway.Enabled() {
		return 0, ErrPaymentsNotConfigured
	}
	if paymentRef == "" || len(penaltyIDs) == 0 {
		return 0, ErrValidation
	}

	if !s.dedupe.AcquireOnce(ctx, "payment_confirm", paymentRef) {
		return 0, nil
	}

	settled, err := s.penalties.MarkPaidByIDs(ctx, userID, penaltyIDs, paymentRef)
	if err != nil {
		// free the ref so the gateway's retry is not swallowed
		s.dedupe.Release(ctx, "payment_confirm", paymentRef)
		return 0, err
	}

	if settled > 0 {
		note := &model.Notification{
			UserID:  userID,
			Kind:    model.NotificationPenalty,
			Message: fmt.Sprintf("Payment received, %d penalties settled", settled),
		}
		if err := s.notifications.Insert(ctx, note); err != nil {
			s.logger.Warn("Failed to write settlement notification", zap.Error(err))
		}
	}

	s.logger.Info("Payment confirmed",
		zap.Int64("user_id", userID),
		zap.String("payment_ref", paymentRef),
		zap.Int("settled", settled),
	)
	return settled, nil
}

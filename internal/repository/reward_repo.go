package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type RewardRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRewardRepository(db *pgxpool.Pool, logger *zap.Logger) *RewardRepository {
	return &RewardRepository{db: db, logger: logger}
}

func (r *RewardRepository) Insert(ctx context.Context, rw *model.Reward) error {
	query := `
        INSERT INTO rewards (user_id, amount, reason)
        VALUES ($1, $2::NUMERIC, $3)
        RETURNING id, created_at
    `
	err := querier(ctx, r.db).QueryRow(ctx, query,
		rw.UserID,
		rw.Amount,
		rw.Reason,
	).Scan(&rw.ID, &rw.CreatedAt)

	if err != nil {
		r.logger.Error("Failed to insert reward", zap.Error(err))
		return err
	}

	r.logger.Info("Reward created",
		zap.Int64("id", rw.ID),
		zap.Int64("user_id", rw.UserID),
		zap.String("amount", rw.Amount),
	)
	return nil
}

func (r *RewardRepository) ListByUser(ctx context.Context, userID int64, unclaimedOnly bool) ([]model.Reward, error) {
	query := `
        SELECT id, user_id, amount::TEXT, reason, is_claimed, transfer_ref, created_at, claimed_at
        FROM rewards
        WHERE user_id = $1
    `
	if unclaimedOnly {
		query += ` AND is_claimed = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list rewards", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		var rw model.Reward
		if err := rows.Scan(
			&rw.ID, &rw.UserID, &rw.Amount, &rw.Reason,
			&rw.IsClaimed, &rw.TransferRef, &rw.CreatedAt, &rw.ClaimedAt,
		); err != nil {
			return nil, err
		}
		rewards = append(rewards, rw)
	}

	return rewards, rows.Err()
}

// MarkClaimed records a payout. Idempotent via the is_claimed guard.
func (r *RewardRepository) MarkClaimed(ctx context.Context, id int64, userID int64, transferRef string) (bool, error) {
	query := `
        UPDATE rewards
        SET is_claimed = TRUE, transfer_ref = $3, claimed_at = NOW()
        WHERE id = $1 AND user_id = $2 AND is_claimed = FALSE
    `
	tag, err := querier(ctx, r.db).Exec(ctx, query, id, userID, transferRef)
	if err != nil {
		r.logger.Error("Failed to mark reward claimed", zap.Int64("id", id), zap.Error(err))
		return false, err
	}

	updated := tag.RowsAffected() > 0
	if updated {
		r.logger.Info("Reward claimed",
			zap.Int64("id", id),
			zap.String("transfer_ref", transferRef),
		)
	}
	return updated, nil
}

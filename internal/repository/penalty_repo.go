package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type PenaltyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPenaltyRepository(db *pgxpool.Pool, logger *zap.Logger) *PenaltyRepository {
	return &PenaltyRepository{db: db, logger: logger}
}

const penaltyColumns = `
	id, user_id, habit_id, amount::TEXT, destination, reason,
	missed_date::TEXT, is_paid, payment_ref, created_at, paid_at
`

func scanPenalty(row interface{ Scan(dest ...any) error }) (*model.Penalty, error) {
	var p model.Penalty
	err := row.Scan(
		&p.ID, &p.UserID, &p.HabitID, &p.Amount, &p.Destination, &p.Reason,
		&p.MissedDate, &p.IsPaid, &p.PaymentRef, &p.CreatedAt, &p.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert creates a penalty for a missed habit day. Returns false when one
// already exists for the (habit, date) pair, which makes sweep reruns safe.
func (r *PenaltyRepository) Insert(ctx context.Context, p *model.Penalty) (bool, error) {
	query := `
        INSERT INTO penalties (user_id, habit_id, amount, destination, reason, missed_date)
        VALUES ($1, $2, $3::NUMERIC, $4, $5, $6::DATE)
        ON CONFLICT (habit_id, missed_date) DO NOTHING
        RETURNING id, created_at
    `
	err := querier(ctx, r.db).QueryRow(ctx, query,
		p.UserID,
		p.HabitID,
		p.Amount,
		p.Destination,
		p.Reason,
		p.MissedDate,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		if isNoRows(err) {
			return false, nil
		}
		r.logger.Error("Failed to insert penalty",
			zap.Int64("habit_id", p.HabitID),
			zap.String("missed_date", p.MissedDate),
			zap.Error(err),
		)
		return false, err
	}

	r.logger.Info("Penalty created",
		zap.Int64("id", p.ID),
		zap.Int64("habit_id", p.HabitID),
		zap.String("amount", p.Amount),
	)
	return true, nil
}

func (r *PenaltyRepository) GetByID(ctx context.Context, id int64) (*model.Penalty, error) {
	query := `SELECT ` + penaltyColumns + ` FROM penalties WHERE id = $1`
	return scanPenalty(querier(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *PenaltyRepository) ListByUser(ctx context.Context, userID int64, unpaidOnly bool) ([]model.Penalty, error) {
	query := `SELECT ` + penaltyColumns + ` FROM penalties WHERE user_id = $1`
	if unpaidOnly {
		query += ` AND is_paid = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list penalties", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var penalties []model.Penalty
	for rows.Next() {
		p, err := scanPenalty(rows)
		if err != nil {
			return nil, err
		}
		penalties = append(penalties, *p)
	}

	return penalties, rows.Err()
}

// MarkPaid settles a penalty. The WHERE guard makes the call idempotent:
// a second call for an already paid penalty affects zero rows.
func (r *PenaltyRepository) MarkPaid(ctx context.Context, id int64, userID int64, paymentRef string) (bool, error) {
	query := `
        UPDATE penalties
        SET is_paid = TRUE, payment_ref = $3, paid_at = NOW()
        WHERE id = $1 AND user_id = $2 AND is_paid = FALSE
    `
	tag, err := querier(ctx, r.db).Exec(ctx, query, id, userID, paymentRef)
	if err != nil {
		r.logger.Error("Failed to mark penalty paid", zap.Int64("id", id), zap.Error(err))
		return false, err
	}

	updated := tag.RowsAffected() > 0
	if updated {
		r.logger.Info("Penalty settled",
			zap.Int64("id", id),
			zap.String("payment_ref", paymentRef),
		)
	}
	return updated, nil
}

// SumUnpaidByIDs totals the listed unpaid penalties in minor currency units.
// Penalties that are already paid or belong to another user are excluded.
func (r *PenaltyRepository) SumUnpaidByIDs(ctx context.Context, userID int64, ids []int64) (int64, int, error) {
	query := `
        SELECT COALESCE((SUM(amount) * 100)::BIGINT, 0), COUNT(*)
        FROM penalties
        WHERE user_id = $1 AND is_paid = FALSE AND id = ANY($2)
    `
	var total int64
	var count int
	err := querier(ctx, r.db).QueryRow(ctx, query, userID, ids).Scan(&total, &count)
	if err != nil {
		r.logger.Error("Failed to sum unpaid penalties", zap.Error(err))
		return 0, 0, err
	}
	return total, count, nil
}

// MarkPaidByIDs settles a batch after a confirmed gateway payment.
func (r *PenaltyRepository) MarkPaidByIDs(ctx context.Context, userID int64, ids []int64, paymentRef string) (int, error) {
	query := `
        UPDATE penalties
        SET is_paid = TRUE, payment_ref = $3, paid_at = NOW()
        WHERE user_id = $1 AND is_paid = FALSE AND id = ANY($2)
    `
	tag, err := querier(ctx, r.db).Exec(ctx, query, userID, ids, paymentRef)
	if err != nil {
		r.logger.Error("Failed to settle penalty batch", zap.Error(err))
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

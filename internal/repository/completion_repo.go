package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type CompletionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCompletionRepository(db *pgxpool.Pool, logger *zap.Logger) *CompletionRepository {
	return &CompletionRepository{db: db, logger: logger}
}

// Insert records a completion. The unique index on (habit_id, date) makes a
// second completion for the same day fail with a duplicate key error.
func (r *CompletionRepository) Insert(ctx context.Context, c *model.HabitCompletion) error {
	query := `
        INSERT INTO habit_completions (habit_id, user_id, date, exp_gained)
        VALUES ($1, $2, $3::DATE, $4)
        RETURNING id, completed_at
    `
	err := querier(ctx, r.db).QueryRow(ctx, query,
		c.HabitID,
		c.UserID,
		c.Date,
		c.ExpGained,
	).Scan(&c.ID, &c.CompletedAt)

	if err != nil {
		return err
	}

	r.logger.Info("Completion recorded",
		zap.Int64("id", c.ID),
		zap.Int64("habit_id", c.HabitID),
		zap.String("date", c.Date),
	)
	return nil
}

func (r *CompletionRepository) ListByUser(ctx context.Context, userID int64, date string) ([]model.HabitCompletion, error) {
	query := `
        SELECT id, habit_id, user_id, date::TEXT, exp_gained, completed_at
        FROM habit_completions
        WHERE user_id = $1
    `
	args := []any{userID}
	if date != "" {
		query += ` AND date = $2::DATE`
		args = append(args, date)
	}
	query += ` ORDER BY completed_at DESC`

	rows, err := querier(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list completions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var completions []model.HabitCompletion
	for rows.Next() {
		var c model.HabitCompletion
		if err := rows.Scan(&c.ID, &c.HabitID, &c.UserID, &c.Date, &c.ExpGained, &c.CompletedAt); err != nil {
			r.logger.Error("Failed to scan completion", zap.Error(err))
			return nil, err
		}
		completions = append(completions, c)
	}

	return completions, rows.Err()
}

// HasCompletionOn reports whether the user completed any habit on the date.
func (r *CompletionRepository) HasCompletionOn(ctx context.Context, userID int64, date string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM habit_completions WHERE user_id = $1 AND date = $2::DATE)`
	err := querier(ctx, r.db).QueryRow(ctx, query, userID, date).Scan(&exists)
	return exists, err
}

// HabitCompletedOn reports whether a specific habit was completed on the date.
func (r *CompletionRepository) HabitCompletedOn(ctx context.Context, habitID int64, date string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM habit_completions WHERE habit_id = $1 AND date = $2::DATE)`
	err := querier(ctx, r.db).QueryRow(ctx, query, habitID, date).Scan(&exists)
	return exists, err
}

func (r *CompletionRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM habit_completions WHERE user_id = $1`
	err := querier(ctx, r.db).QueryRow(ctx, query, userID).Scan(&count)
	if err != nil && err != pgx.ErrNoRows {
		return 0, err
	}
	return count, nil
}

// WeeklyProgress returns per-day completion counts for the last 7 days.
func (r *CompletionRepository) WeeklyProgress(ctx context.Context, userID int64) ([]model.DailyProgress, error) {
	query := `
        SELECT date::TEXT, COUNT(*)
        FROM habit_completions
        WHERE user_id = $1 AND date >= CURRENT_DATE - INTERVAL '7 days'
        GROUP BY date
        ORDER BY date
    `

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query weekly progress", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var progress []model.DailyProgress
	for rows.Next() {
		var p model.DailyProgress
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}

	return progress, rows.Err()
}

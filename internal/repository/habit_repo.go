package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type HabitRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHabitRepository(db *pgxpool.Pool, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{db: db, logger: logger}
}

const habitColumns = `
	id, user_id, name, description, category,
	exp_reward, penalty_amount::TEXT, penalty_destination, is_active,
	current_streak, longest_streak, total_completions,
	created_at, updated_at
`

func scanHabit(row interface{ Scan(dest ...any) error }) (*model.Habit, error) {
	var h model.Habit
	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Category,
		&h.ExpReward, &h.PenaltyAmount, &h.PenaltyDestination, &h.IsActive,
		&h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *HabitRepository) Insert(ctx context.Context, h *model.Habit) error {
	r.logger.Debug("Inserting habit",
		zap.Int64("user_id", h.UserID),
		zap.String("name", h.Name),
		zap.String("category", h.Category),
	)

	query := `
        INSERT INTO habits (user_id, name, description, category, exp_reward, penalty_amount, penalty_destination)
        VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7)
        RETURNING id, is_active, current_streak, longest_streak, total_completions, created_at, updated_at
    `
	err := querier(ctx, r.db).QueryRow(ctx, query,
		h.UserID,
		h.Name,
		h.Description,
		h.Category,
		h.ExpReward,
		h.PenaltyAmount,
		h.PenaltyDestination,
	).Scan(&h.ID, &h.IsActive, &h.CurrentStreak, &h.LongestStreak, &h.TotalCompletions, &h.CreatedAt, &h.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to insert habit", zap.Error(err))
		return err
	}

	r.logger.Info("Habit inserted successfully",
		zap.Int64("id", h.ID),
		zap.Int64("user_id", h.UserID),
	)
	return nil
}

func (r *HabitRepository) GetByID(ctx context.Context, id int64) (*model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`
	return scanHabit(querier(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *HabitRepository) ListActiveByUser(ctx context.Context, userID int64) ([]model.Habit, error) {
	r.logger.Debug("Listing active habits for user", zap.Int64("user_id", userID))

	query := `
        SELECT ` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND is_active = TRUE
        ORDER BY created_at DESC
    `

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list habits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			r.logger.Error("Failed to scan habit", zap.Error(err))
			return nil, err
		}
		habits = append(habits, *h)
	}

	return habits, rows.Err()
}

func (r *HabitRepository) Update(ctx context.Context, h *model.Habit) error {
	query := `
        UPDATE habits
        SET name = $2, description = $3, category = $4, exp_reward = $5,
            penalty_amount = $6::NUMERIC, penalty_destination = $7, updated_at = NOW()
        WHERE id = $1
    `
	_, err := querier(ctx, r.db).Exec(ctx, query,
		h.ID, h.Name, h.Description, h.Category, h.ExpReward, h.PenaltyAmount, h.PenaltyDestination,
	)
	if err != nil {
		r.logger.Error("Failed to update habit", zap.Int64("id", h.ID), zap.Error(err))
	}
	return err
}

// SoftDelete deactivates a habit. Completion history is preserved.
func (r *HabitRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE habits SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := querier(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to soft delete habit", zap.Int64("id", id), zap.Error(err))
		return err
	}
	r.logger.Info("Habit deactivated", zap.Int64("id", id))
	return nil
}

// UpdateCompletionStats persists streak counters after a completion.
func (r *HabitRepository) UpdateCompletionStats(ctx context.Context, h *model.Habit) error {
	query := `
        UPDATE habits
        SET current_streak = $2, longest_streak = $3, total_completions = $4, updated_at = NOW()
        WHERE id = $1
    `
	_, err := querier(ctx, r.db).Exec(ctx, query,
		h.ID, h.CurrentStreak, h.LongestStreak, h.TotalCompletions,
	)
	if err != nil {
		r.logger.Error("Failed to update habit completion stats",
			zap.Int64("id", h.ID),
			zap.Error(err),
		)
	}
	return err
}

// ListMissedOn returns active habits with no completion recorded for the
// given date. Used by the penalty sweep.
func (r *HabitRepository) ListMissedOn(ctx context.Context, date string) ([]model.Habit, error) {
	r.logger.Debug("Listing habits missed on date", zap.String("date", date))

	query := `
        SELECT ` + habitColumns + `
        FROM habits h
        WHERE h.is_active = TRUE
        AND h.created_at < $1::DATE
        AND NOT EXISTS (
            SELECT 1 FROM habit_completions c
            WHERE c.habit_id = h.id AND c.date = $1::DATE
        )
        ORDER BY h.id
    `

	rows, err := querier(ctx, r.db).Query(ctx, query, date)
	if err != nil {
		r.logger.Error("Failed to list missed habits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var habits []model.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			r.logger.Error("Failed to scan habit", zap.Error(err))
			return nil, err
		}
		habits = append(habits, *h)
	}

	return habits, rows.Err()
}

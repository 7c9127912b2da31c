package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type AchievementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAchievementRepository(db *pgxpool.Pool, logger *zap.Logger) *AchievementRepository {
	return &AchievementRepository{db: db, logger: logger}
}

func (r *AchievementRepository) ListAll(ctx context.Context) ([]model.Achievement, error) {
	query := `
        SELECT id, name, description, category, requirement, exp_reward, currency_reward, rarity, is_secret, created_at
        FROM achievements
        ORDER BY category, requirement
    `

	rows, err := querier(ctx, r.db).Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list achievements", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var achievements []model.Achievement
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Description, &a.Category, &a.Requirement,
			&a.ExpReward, &a.CurrencyReward, &a.Rarity, &a.IsSecret, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}

	return achievements, rows.Err()
}

func (r *AchievementRepository) ListUserAchievements(ctx context.Context, userID int64) ([]model.UserAchievement, error) {
	query := `
        SELECT id, user_id, achievement_id, progress, unlocked_at
        FROM user_achievements
        WHERE user_id = $1
        ORDER BY unlocked_at DESC
    `

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list user achievements", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var unlocks []model.UserAchievement
	for rows.Next() {
		var ua model.UserAchievement
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.AchievementID, &ua.Progress, &ua.UnlockedAt); err != nil {
			return nil, err
		}
		unlocks = append(unlocks, ua)
	}

	return unlocks, rows.Err()
}

func (r *AchievementRepository) ListUnlockedIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	query := `SELECT achievement_id FROM user_achievements WHERE user_id = $1`

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		unlocked[id] = true
	}

	return unlocked, rows.Err()
}

// InsertUnlock records an unlock. Returns false without error when the pair
// already exists; re-evaluation never double-creates.
func (r *AchievementRepository) InsertUnlock(ctx context.Context, userID, achievementID int64, progress int) (bool, error) {
	query := `
        INSERT INTO user_achievements (user_id, achievement_id, progress)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, achievement_id) DO NOTHING
    `
	tag, err := querier(ctx, r.db).Exec(ctx, query, userID, achievementID, progress)
	if err != nil {
		r.logger.Error("Failed to insert achievement unlock",
			zap.Int64("user_id", userID),
			zap.Int64("achievement_id", achievementID),
			zap.Error(err),
		)
		return false, err
	}

	inserted := tag.RowsAffected() > 0
	if inserted {
		r.logger.Info("Achievement unlocked",
			zap.Int64("user_id", userID),
			zap.Int64("achievement_id", achievementID),
		)
	}
	return inserted, nil
}

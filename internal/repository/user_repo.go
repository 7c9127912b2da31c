package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `
	id, email, password_hash, display_name,
	level, experience, experience_to_next, currency,
	current_streak, longest_streak, total_achievements,
	strength_stat, intelligence_stat, discipline_stat, social_stat,
	created_at, updated_at
`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName,
		&u.Level, &u.Experience, &u.ExperienceToNext, &u.Currency,
		&u.CurrentStreak, &u.LongestStreak, &u.TotalAchievements,
		&u.StrengthStat, &u.IntelligenceStat, &u.DisciplineStat, &u.SocialStat,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (email, password_hash, display_name)
        VALUES ($1, $2, $3)
        RETURNING id, level, experience, experience_to_next, currency, created_at, updated_at
    `
	err := querier(ctx, r.db).QueryRow(ctx, query,
		u.Email,
		u.PasswordHash,
		u.DisplayName,
	).Scan(&u.ID, &u.Level, &u.Experience, &u.ExperienceToNext, &u.Currency, &u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		r.logger.Error("Failed to insert user", zap.Error(err))
		return err
	}

	r.logger.Info("User created", zap.Int64("user_id", u.ID))
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(querier(ctx, r.db).QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(querier(ctx, r.db).QueryRow(ctx, query, id))
}

// GetByIDForUpdate locks the user row for the duration of the surrounding
// transaction. Used by workflows that read-modify-write progression fields.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(querier(ctx, r.db).QueryRow(ctx, query, id))
}

// UpdateProgress persists the progression and streak fields of a profile.
func (r *UserRepository) UpdateProgress(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET level = $2, experience = $3, experience_to_next = $4, currency = $5,
            current_streak = $6, longest_streak = $7,
            strength_stat = $8, intelligence_stat = $9, discipline_stat = $10, social_stat = $11,
            updated_at = NOW()
        WHERE id = $1
    `
	_, err := querier(ctx, r.db).Exec(ctx, query,
		u.ID,
		u.Level, u.Experience, u.ExperienceToNext, u.Currency,
		u.CurrentStreak, u.LongestStreak,
		u.StrengthStat, u.IntelligenceStat, u.DisciplineStat, u.SocialStat,
	)
	if err != nil {
		r.logger.Error("Failed to update user progress",
			zap.Int64("user_id", u.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// GrantAchievementReward credits currency and bumps the achievement counter.
func (r *UserRepository) GrantAchievementReward(ctx context.Context, userID int64, currency int) error {
	query := `
        UPDATE users
        SET currency = currency + $2, total_achievements = total_achievements + 1, updated_at = NOW()
        WHERE id = $1
    `
	_, err := querier(ctx, r.db).Exec(ctx, query, userID, currency)
	if err != nil {
		r.logger.Error("Failed to grant achievement reward",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return err
}

// DeductCurrency subtracts amount from the user's balance. The caller has
// already verified sufficiency under a row lock.
func (r *UserRepository) DeductCurrency(ctx context.Context, userID int64, amount int) error {
	query := `UPDATE users SET currency = currency - $2, updated_at = NOW() WHERE id = $1`
	_, err := querier(ctx, r.db).Exec(ctx, query, userID, amount)
	if err != nil {
		r.logger.Error("Failed to deduct currency",
			zap.Int64("user_id", userID),
			zap.Int("amount", amount),
			zap.Error(err),
		)
	}
	return err
}

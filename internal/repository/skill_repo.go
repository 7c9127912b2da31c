package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

type SkillRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSkillRepository(db *pgxpool.Pool, logger *zap.Logger) *SkillRepository {
	return &SkillRepository{db: db, logger: logger}
}

func (r *SkillRepository) ListAll(ctx context.Context) ([]model.Skill, error) {
	query := `
        SELECT id, name, description, category, tier, cost, required_level, effect, created_at
        FROM skills
        ORDER BY tier, required_level
    `

	rows, err := querier(ctx, r.db).Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list skills", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var skills []model.Skill
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Category, &s.Tier,
			&s.Cost, &s.RequiredLevel, &s.Effect, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}

	return skills, rows.Err()
}

func (r *SkillRepository) GetByID(ctx context.Context, id int64) (*model.Skill, error) {
	query := `
        SELECT id, name, description, category, tier, cost, required_level, effect, created_at
        FROM skills
        WHERE id = $1
    `
	var s model.Skill
	err := querier(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Category, &s.Tier,
		&s.Cost, &s.RequiredLevel, &s.Effect, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepository) ListUserSkills(ctx context.Context, userID int64) ([]model.UserSkill, error) {
	query := `
        SELECT id, user_id, skill_id, unlocked_at
        FROM user_skills
        WHERE user_id = $1
        ORDER BY unlocked_at DESC
    `

	rows, err := querier(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list user skills", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var skills []model.UserSkill
	for rows.Next() {
		var us model.UserSkill
		if err := rows.Scan(&us.ID, &us.UserID, &us.SkillID, &us.UnlockedAt); err != nil {
			return nil, err
		}
		skills = append(skills, us)
	}

	return skills, rows.Err()
}

// InsertUnlock records a skill unlock. Returns false when the pair already
// exists.
func (r *SkillRepository) InsertUnlock(ctx context.Context, userID, skillID int64) (bool, error) {
	query := `
        INSERT INTO user_skills (user_id, skill_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, skill_id) DO NOTHING
    `
	tag, err := querier(ctx, r.db).Exec(ctx, query, userID, skillID)
	if err != nil {
		r.logger.Error("Failed to insert skill unlock",
			zap.Int64("user_id", userID),
			zap.Int64("skill_id", skillID),
			zap.Error(err),
		)
		return false, err
	}

	inserted := tag.RowsAffected() > 0
	if inserted {
		r.logger.Info("Skill unlocked",
			zap.Int64("user_id", userID),
			zap.Int64("skill_id", skillID),
		)
	}
	return inserted, nil
}

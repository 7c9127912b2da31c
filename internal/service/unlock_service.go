package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	contracts "habitquest/contracts/mq"
	"habitquest/internal/model"
	"habitquest/pkg/metrics"
	"habitquest/pkg/trace"
)

// UnlockService evaluates achievement eligibility and handles skill
// purchases.
type UnlockService struct {
	tx           TxRunner
	users        UserStore
	achievements AchievementStore
	skills       SkillStore
	completions  CompletionStore
	rewards      RewardStore
	events       EventStore
	logger       *zap.Logger
}

func NewUnlockService(
	tx TxRunner,
	users UserStore,
	achievements AchievementStore,
	skills SkillStore,
	completions CompletionStore,
	rewards RewardStore,
	events EventStore,
	logger *zap.Logger,
) *UnlockService {
	return &UnlockService{
		tx:           tx,
		users:        users,
		achievements: achievements,
		skills:       skills,
		completions:  completions,
		rewards:      rewards,
		events:       events,
		logger:       logger,
	}
}

// progressFor maps an achievement's requirement category to the profile
// counter it measures.
func progressFor(a *model.Achievement, u *model.User, completionCount int) int {
	switch a.Category {
	case model.AchievementStreak:
		return u.LongestStreak
	case model.AchievementLevel:
		return u.Level
	case model.AchievementHabit:
		return completionCount
	default:
		return 0
	}
}

// EvaluateAchievements compares the profile against the catalog and records
// every newly earned unlock. Monotonic and idempotent: reruns with unchanged
// stats create nothing, and an unlock is never revoked.
func (s *UnlockService) EvaluateAchievements(ctx context.Context, userID int64) ([]model.Achievement, error) {
	catalog, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var newlyUnlocked []model.Achievement
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		completionCount, err := s.completions.CountByUser(ctx, userID)
		if err != nil {
			return err
		}

		unlocked, err := s.achievements.ListUnlockedIDs(ctx, userID)
		if err != nil {
			return err
		}

		for i := range catalog {
			a := &catalog[i]
			if unlocked[a.ID] {
				continue
			}

			progress := progressFor(a, user, completionCount)
			if progress < a.Requirement {
				continue
			}

			inserted, err := s.achievements.InsertUnlock(ctx, userID, a.ID, progress)
			if err != nil {
				return err
			}
			if !inserted {
				continue
			}

			if err := s.users.GrantAchievementReward(ctx, userID, a.CurrencyReward); err != nil {
				return err
			}

			if a.CurrencyReward > 0 {
				reward := &model.Reward{
					UserID: userID,
					Amount: strconv.Itoa(a.CurrencyReward) + ".00",
					Reason: "Achievement unlocked: " + a.Name,
				}
				if err := s.rewards.Insert(ctx, reward); err != nil {
					return err
				}
			}

			if err := s.events.InsertPending(ctx, "user_achievement", a.ID,
				contracts.RoutingKeyAchievementUnlocked,
				contracts.AchievementUnlockedPayload{
					UserID:        userID,
					AchievementID: a.ID,
					Name:          a.Name,
					TraceID:       trace.FromContext(ctx),
				}); err != nil {
				return err
			}

			newlyUnlocked = append(newlyUnlocked, *a)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AddAchievementUnlocks(len(newlyUnlocked))
	if len(newlyUnlocked) > 0 {
		s.logger.Info("Achievements unlocked",
			zap.Int64("user_id", userID),
			zap.Int("count", len(newlyUnlocked)),
		)
	}
	return newlyUnlocked, nil
}

func (s *UnlockService) ListAchievements(ctx context.Context, userID int64) ([]model.Achievement, []model.UserAchievement, error) {
	catalog, err := s.achievements.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	unlocks, err := s.achievements.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return catalog, unlocks, nil
}

func (s *UnlockService) ListSkills(ctx context.Context, userID int64) ([]model.Skill, []model.UserSkill, error) {
	catalog, err := s.skills.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	unlocks, err := s.skills.ListUserSkills(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return catalog, unlocks, nil
}

// UnlockSkill purchases a skill. Level and currency are both checked under
// the profile row lock, so a racing purchase cannot overspend.
func (s *UnlockService) UnlockSkill(ctx context.Context, userID, skillID int64) (*model.Skill, error) {
	skill, err := s.skills.GetByID(ctx, skillID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if user.Level < skill.RequiredLevel {
			return ErrInsufficientLevel
		}
		if user.Currency < skill.Cost {
			return ErrInsufficientCurrency
		}

		inserted, err := s.skills.InsertUnlock(ctx, userID, skillID)
		if err != nil {
			return err
		}
		if !inserted {
			return ErrSkillAlreadyUnlocked
		}

		return s.users.DeductCurrency(ctx, userID, skill.Cost)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Skill purchased",
		zap.Int64("user_id", userID),
		zap.Int64("skill_id", skillID),
		zap.Int("cost", skill.Cost),
	)
	return skill, nil
}

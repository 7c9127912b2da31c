package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	contracts "habitquest/contracts/mq"
	"habitquest/internal/model"
	"habitquest/pkg/metrics"
	"habitquest/pkg/trace"
	"habitquest/pkg/util"
)

const dateLayout = "2006-01-02"

// CompletionService runs the habit completion workflow: one atomic unit of
// work covering the completion record, habit streaks, and the owning
// profile's progression.
type CompletionService struct {
	tx          TxRunner
	users       UserStore
	habits      HabitStore
	completions CompletionStore
	events      EventStore
	logger      *zap.Logger
}

func NewCompletionService(
	tx TxRunner,
	users UserStore,
	habits HabitStore,
	completions CompletionStore,
	events EventStore,
	logger *zap.Logger,
) *CompletionService {
	return &CompletionService{
		tx:          tx,
		users:       users,
		habits:      habits,
		completions: completions,
		events:      events,
		logger:      logger,
	}
}

// Complete records that the habit was done on the given date (today when
// empty). At most one completion per (habit, date) exists; the storage
// uniqueness constraint is the arbiter, so two racing requests cannot both
// win. Everything commits together or not at all.
func (s *CompletionService) Complete(ctx context.Context, userID, habitID int64, date string) (*model.HabitCompletion, error) {
	if date == "" {
		date = time.Now().Format(dateLayout)
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrValidation
	}
	yesterday := day.AddDate(0, 0, -1).Format(dateLayout)

	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if habit.UserID != userID {
		return nil, ErrNotOwner
	}
	if !habit.IsActive {
		return nil, ErrNotFound
	}

	expGained := habit.ExpReward
	if expGained <= 0 {
		expGained = DefaultExpReward
	}

	completion := &model.HabitCompletion{
		HabitID:   habitID,
		UserID:    userID,
		Date:      date,
		ExpGained: expGained,
	}

	var leveledUp bool
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		// The daily streak only advances on the first completion of the
		// day, so check before the insert lands.
		alreadyToday, err := s.completions.HasCompletionOn(ctx, userID, date)
		if err != nil {
			return err
		}

		if err := s.completions.Insert(ctx, completion); err != nil {
			if util.IsDuplicateKey(err) {
				return ErrAlreadyCompleted
			}
			return err
		}

		habitDoneYesterday, err := s.completions.HabitCompletedOn(ctx, habitID, yesterday)
		if err != nil {
			return err
		}
		habit.CurrentStreak = NextStreak(habitDoneYesterday, habit.CurrentStreak)
		if habit.CurrentStreak > habit.LongestStreak {
			habit.LongestStreak = habit.CurrentStreak
		}
		habit.TotalCompletions++
		if err := s.habits.UpdateCompletionStats(ctx, habit); err != nil {
			return err
		}

		updated, crossed := ApplyCompletion(*user, habit.ExpReward)
		*user = updated
		leveledUp = crossed
		StatForCompletion(user, habit.Category)

		if !alreadyToday {
			doneYesterday, err := s.completions.HasCompletionOn(ctx, userID, yesterday)
			if err != nil {
				return err
			}
			user.CurrentStreak = NextStreak(doneYesterday, user.CurrentStreak)
			if user.CurrentStreak > user.LongestStreak {
				user.LongestStreak = user.CurrentStreak
			}
		}

		if err := s.users.UpdateProgress(ctx, user); err != nil {
			return err
		}

		return s.events.InsertPending(ctx, "habit_completion", completion.ID,
			contracts.RoutingKeyHabitCompleted,
			contracts.HabitCompletedPayload{
				CompletionID: completion.ID,
				HabitID:      habitID,
				UserID:       userID,
				Date:         date,
				ExpGained:    completion.ExpGained,
				TraceID:      trace.FromContext(ctx),
			})
	})
	if err != nil {
		return nil, err
	}

	metrics.IncrementHabitCompletion(habit.Category)
	s.logger.Info("Habit completed",
		zap.Int64("user_id", userID),
		zap.Int64("habit_id", habitID),
		zap.String("date", date),
		zap.Int("exp_gained", completion.ExpGained),
		zap.Bool("leveled_up", leveledUp),
	)
	return completion, nil
}

func (s *CompletionService) List(ctx context.Context, userID int64, date string) ([]model.HabitCompletion, error) {
	if date != "" {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, ErrValidation
		}
	}
	return s.completions.ListByUser(ctx, userID, date)
}

func (s *CompletionService) WeeklyProgress(ctx context.Context, userID int64) ([]model.DailyProgress, error) {
	return s.completions.WeeklyProgress(ctx, userID)
}

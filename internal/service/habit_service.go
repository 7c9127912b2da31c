package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

// HabitService owns habit lifecycle: create, update, soft-delete, list.
type HabitService struct {
	habits HabitStore
	logger *zap.Logger
}

func NewHabitService(habits HabitStore, logger *zap.Logger) *HabitService {
	return &HabitService{habits: habits, logger: logger}
}

// HabitInput carries user-editable habit fields.
type HabitInput struct {
	Name               string `json:"name"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	ExpReward          int    `json:"exp_reward"`
	PenaltyAmount      string `json:"penalty_amount"`
	PenaltyDestination string `json:"penalty_destination"`
}

func (in *HabitInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || len(in.Name) > 200 {
		return ErrValidation
	}
	if !model.ValidCategory(in.Category) {
		return ErrValidation
	}
	if in.ExpReward == 0 {
		in.ExpReward = DefaultExpReward
	}
	if in.ExpReward < 0 || in.ExpReward > 1000 {
		return ErrValidation
	}
	if in.PenaltyAmount == "" {
		in.PenaltyAmount = "15.00"
	}
	if amt, err := strconv.ParseFloat(in.PenaltyAmount, 64); err != nil || amt < 0 {
		return ErrValidation
	}
	if in.PenaltyDestination == "" {
		in.PenaltyDestination = model.DestinationCause
	}
	if !model.ValidDestination(in.PenaltyDestination) {
		return ErrValidation
	}
	return nil
}

func (s *HabitService) Create(ctx context.Context, userID int64, in HabitInput) (*model.Habit, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	habit := &model.Habit{
		UserID:             userID,
		Name:               in.Name,
		Description:        in.Description,
		Category:           in.Category,
		ExpReward:          in.ExpReward,
		PenaltyAmount:      in.PenaltyAmount,
		PenaltyDestination: in.PenaltyDestination,
	}
	if err := s.habits.Insert(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Get(ctx context.Context, userID, habitID int64) (*model.Habit, error) {
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
	return habit, nil
}

func (s *HabitService) List(ctx context.Context, userID int64) ([]model.Habit, error) {
	return s.habits.ListActiveByUser(ctx, userID)
}

func (s *HabitService) Update(ctx context.Context, userID, habitID int64, in HabitInput) (*model.Habit, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return nil, err
	}

	habit.Name = in.Name
	habit.Description = in.Description
	habit.Category = in.Category
	habit.ExpReward = in.ExpReward
	habit.PenaltyAmount = in.PenaltyAmount
	habit.PenaltyDestination = in.PenaltyDestination

	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete deactivates the habit. Completion history stays queryable.
func (s *HabitService) Delete(ctx context.Context, userID, habitID int64) error {
	habit, err := s.Get(ctx, userID, habitID)
	if err != nil {
		return err
	}

	if err := s.habits.SoftDelete(ctx, habit.ID); err != nil {
		return err
	}

	s.logger.Info("Habit deleted",
		zap.Int64("user_id", userID),
		zap.Int64("habit_id", habitID),
	)
	return nil
}

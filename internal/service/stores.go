package service

import (
	"context"

	"habitquest/internal/model"
)

// Store interfaces are what the services actually consume. The concrete
// repositories satisfy them; tests substitute in-memory fakes.

type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.User, error)
	UpdateProgress(ctx context.Context, u *model.User) error
	GrantAchievementReward(ctx context.Context, userID int64, currency int) error
	DeductCurrency(ctx context.Context, userID int64, amount int) error
}

type HabitStore interface {
	Insert(ctx context.Context, h *model.Habit) error
	GetByID(ctx context.Context, id int64) (*model.Habit, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]model.Habit, error)
	Update(ctx context.Context, h *model.Habit) error
	SoftDelete(ctx context.Context, id int64) error
	UpdateCompletionStats(ctx context.Context, h *model.Habit) error
	ListMissedOn(ctx context.Context, date string) ([]model.Habit, error)
}

type CompletionStore interface {
	Insert(ctx context.Context, c *model.HabitCompletion) error
	ListByUser(ctx context.Context, userID int64, date string) ([]model.HabitCompletion, error)
	HasCompletionOn(ctx context.Context, userID int64, date string) (bool, error)
	HabitCompletedOn(ctx context.Context, habitID int64, date string) (bool, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	WeeklyProgress(ctx context.Context, userID int64) ([]model.DailyProgress, error)
}

type AchievementStore interface {
	ListAll(ctx context.Context) ([]model.Achievement, error)
	ListUserAchievements(ctx context.Context, userID int64) ([]model.UserAchievement, error)
	ListUnlockedIDs(ctx context.Context, userID int64) (map[int64]bool, error)
	InsertUnlock(ctx context.Context, userID, achievementID int64, progress int) (bool, error)
}

type SkillStore interface {
	ListAll(ctx context.Context) ([]model.Skill, error)
	GetByID(ctx context.Context, id int64) (*model.Skill, error)
	ListUserSkills(ctx context.Context, userID int64) ([]model.UserSkill, error)
	InsertUnlock(ctx context.Context, userID, skillID int64) (bool, error)
}

type PenaltyStore interface {
	Insert(ctx context.Context, p *model.Penalty) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.Penalty, error)
	ListByUser(ctx context.Context, userID int64, unpaidOnly bool) ([]model.Penalty, error)
	MarkPaid(ctx context.Context, id int64, userID int64, paymentRef string) (bool, error)
	SumUnpaidByIDs(ctx context.Context, userID int64, ids []int64) (int64, int, error)
	MarkPaidByIDs(ctx context.Context, userID int64, ids []int64, paymentRef string) (int, error)
}

type RewardStore interface {
	Insert(ctx context.Context, rw *model.Reward) error
	ListByUser(ctx context.Context, userID int64, unclaimedOnly bool) ([]model.Reward, error)
	MarkClaimed(ctx context.Context, id int64, userID int64, transferRef string) (bool, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, id int64, userID int64) error
}

type EventStore interface {
	InsertPending(ctx context.Context, aggregateType string, aggregateID int64, routingKey string, payload any) error
}

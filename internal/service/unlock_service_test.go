package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitquest/internal/model"
)

func newUnlockFixture(user model.User, achievements []model.Achievement, skills []model.Skill) (*UnlockService, *fakeUserStore, *fakeAchievementStore, *fakeSkillStore, *fakeRewardStore, *fakeEventStore, *fakeCompletionStore) {
	users := newFakeUserStore(user)
	achStore := newFakeAchievementStore(achievements...)
	skillStore := newFakeSkillStore(skills...)
	completions := &fakeCompletionStore{}
	rewards := newFakeRewardStore()
	events := &fakeEventStore{}
	svc := NewUnlockService(&fakeTx{}, users, achStore, skillStore, completions, rewards, events, zap.NewNop())
	return svc, users, achStore, skillStore, rewards, events, completions
}

func TestEvaluateAchievementsUnlocksEligible(t *testing.T) {
	u := baseUser()
	u.Level = 5
	catalog := []model.Achievement{
		{ID: 1, Name: "Level 5", Category: model.AchievementLevel, Requirement: 5, CurrencyReward: 50},
		{ID: 2, Name: "Level 10", Category: model.AchievementLevel, Requirement: 10, CurrencyReward: 100},
	}
	svc, users, _, _, rewards, events, _ := newUnlockFixture(u, catalog, nil)

	unlocked, err := svc.EvaluateAchievements(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, unlocked, 1)
	assert.Equal(t, int64(1), unlocked[0].ID)

	user, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, 50, user.Currency)
	assert.Equal(t, 1, user.TotalAchievements)

	rws, _ := rewards.ListByUser(context.Background(), 1, true)
	require.Len(t, rws, 1)
	assert.Equal(t, "50.00", rws[0].Amount)

	assert.Len(t, events.staged, 1)
}

func TestEvaluateAchievementsIdempotent(t *testing.T) {
	u := baseUser()
	u.Level = 5
	catalog := []model.Achievement{
		{ID: 1, Name: "Level 5", Category: model.AchievementLevel, Requirement: 5, CurrencyReward: 50},
	}
	svc, users, _, _, _, _, _ := newUnlockFixture(u, catalog, nil)

	first, err := svc.EvaluateAchievements(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.EvaluateAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, second, "rerun with unchanged stats unlocks nothing")

	user, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, 50, user.Currency, "reward granted exactly once")
}

func TestEvaluateAchievementsStreakAndCompletionCategories(t *testing.T) {
	u := baseUser()
	u.LongestStreak = 7
	catalog := []model.Achievement{
		{ID: 1, Name: "Week streak", Category: model.AchievementStreak, Requirement: 7},
		{ID: 2, Name: "Ten done", Category: model.AchievementHabit, Requirement: 10},
	}
	svc, _, _, _, _, _, completions := newUnlockFixture(u, catalog, nil)

	for i := 0; i < 10; i++ {
		completions.completions = append(completions.completions, model.HabitCompletion{UserID: 1})
	}

	unlocked, err := svc.EvaluateAchievements(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, unlocked, 2)
}

func TestUnlockSkillDeductsCost(t *testing.T) {
	u := baseUser()
	u.Level = 3
	u.Currency = 150
	skills := []model.Skill{{ID: 1, Name: "Focus", Cost: 100, RequiredLevel: 2}}
	svc, users, _, skillStore, _, _, _ := newUnlockFixture(u, nil, skills)

	skill, err := svc.UnlockSkill(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Focus", skill.Name)

	user, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, 50, user.Currency)

	owned, _ := skillStore.ListUserSkills(context.Background(), 1)
	assert.Len(t, owned, 1)
}

func TestUnlockSkillEnforcesLevel(t *testing.T) {
	u := baseUser()
	u.Level = 1
	u.Currency = 1000
	skills := []model.Skill{{ID: 1, Cost: 100, RequiredLevel: 5}}
	svc, users, _, _, _, _, _ := newUnlockFixture(u, nil, skills)

	_, err := svc.UnlockSkill(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrInsufficientLevel)

	user, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, 1000, user.Currency, "no deduction on failure")
}

func TestUnlockSkillEnforcesCurrency(t *testing.T) {
	u := baseUser()
	u.Level = 10
	u.Currency = 20
	skills := []model.Skill{{ID: 1, Cost: 100, RequiredLevel: 5}}
	svc, _, _, _, _, _, _ := newUnlockFixture(u, nil, skills)

	_, err := svc.UnlockSkill(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrInsufficientCurrency)
}

func TestUnlockSkillRejectsDuplicate(t *testing.T) {
	u := baseUser()
	u.Level = 10
	u.Currency = 500
	skills := []model.Skill{{ID: 1, Cost: 100, RequiredLevel: 1}}
	svc, users, _, _, _, _, _ := newUnlockFixture(u, nil, skills)

	_, err := svc.UnlockSkill(context.Background(), 1, 1)
	require.NoError(t, err)

	_, err = svc.UnlockSkill(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrSkillAlreadyUnlocked)

	user, _ := users.GetByID(context.Background(), 1)
	assert.Equal(t, 400, user.Currency, "cost charged once")
}

func TestUnlockSkillUnknown(t *testing.T) {
	svc, _, _, _, _, _, _ := newUnlockFixture(baseUser(), nil, nil)

	_, err := svc.UnlockSkill(context.Background(), 1, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

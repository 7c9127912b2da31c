package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitquest/internal/model"
)

func TestApplyCompletionAccumulatesWithoutLevelUp(t *testing.T) {
	u := model.User{Level: 1, Experience: 10, ExperienceToNext: 100, Currency: 5}

	got, leveledUp := ApplyCompletion(u, 30)

	assert.False(t, leveledUp)
	assert.Equal(t, 1, got.Level)
	assert.Equal(t, 40, got.Experience)
	assert.Equal(t, 100, got.ExperienceToNext)
	assert.Equal(t, 15, got.Currency)
}

func TestApplyCompletionLevelUpKeepsExperience(t *testing.T) {
	u := model.User{Level: 1, Experience: 90, ExperienceToNext: 100, Currency: 0}

	got, leveledUp := ApplyCompletion(u, 50)

	require.True(t, leveledUp)
	assert.Equal(t, 2, got.Level)
	assert.Equal(t, 140, got.Experience, "experience accumulates, never resets")
	assert.Equal(t, 200, got.ExperienceToNext)
	assert.Equal(t, 10, got.Currency)
}

func TestApplyCompletionDefaultsZeroReward(t *testing.T) {
	u := model.User{Level: 1, Experience: 0, ExperienceToNext: 100}

	got, _ := ApplyCompletion(u, 0)

	assert.Equal(t, DefaultExpReward, got.Experience)
}

func TestApplyCompletionOrderMattersNearBoundary(t *testing.T) {
	u := model.User{Level: 1, Experience: 0, ExperienceToNext: 100}

	// Each completion grants at most one level, so the order of rewards
	// around a boundary changes the final level even though the
	// experience total is identical.
	a, _ := ApplyCompletion(u, 120) // 120 >= 100 -> level 2, threshold 200
	a, _ = ApplyCompletion(a, 90)   // 210 >= 200 -> level 3

	b, _ := ApplyCompletion(u, 90) // 90 < 100, still level 1
	b, _ = ApplyCompletion(b, 120) // 210 >= 100 -> level 2 only

	assert.Equal(t, a.Experience, b.Experience, "experience total is order-independent")
	assert.Equal(t, 3, a.Level)
	assert.Equal(t, 2, b.Level)
}

func TestApplyCompletionFlatCurrency(t *testing.T) {
	u := model.User{Level: 1, ExperienceToNext: 100}

	small, _ := ApplyCompletion(u, 10)
	large, _ := ApplyCompletion(u, 500)

	assert.Equal(t, small.Currency, large.Currency, "currency accrual ignores reward size")
	assert.Equal(t, CurrencyPerCompletion, small.Currency)
}

func TestStatForCompletion(t *testing.T) {
	u := &model.User{StrengthStat: 10, IntelligenceStat: 10, DisciplineStat: 10, SocialStat: 10}

	StatForCompletion(u, model.CategoryPhysical)
	StatForCompletion(u, model.CategoryMental)
	StatForCompletion(u, model.CategoryKnowledge)
	StatForCompletion(u, model.CategorySocial)
	StatForCompletion(u, "unknown")

	assert.Equal(t, 11, u.StrengthStat)
	assert.Equal(t, 11, u.DisciplineStat)
	assert.Equal(t, 11, u.IntelligenceStat)
	assert.Equal(t, 11, u.SocialStat)
}

func TestNextStreak(t *testing.T) {
	assert.Equal(t, 6, NextStreak(true, 5))
	assert.Equal(t, 1, NextStreak(false, 5))
	assert.Equal(t, 1, NextStreak(false, 0))
}

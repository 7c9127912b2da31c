package service

import "habitquest/internal/model"

const (
	// DefaultExpReward applies when a habit has no configured reward.
	DefaultExpReward = 50

	// CurrencyPerCompletion is flat per completion, independent of the
	// habit's experience reward.
	CurrencyPerCompletion = 10
)

// ApplyCompletion folds one completion into a profile and returns the updated
// copy plus whether a level-up occurred. Experience accumulates monotonically:
// crossing the threshold bumps the level and recomputes the threshold, but
// never resets or subtracts experience. Persistence is the caller's problem.
func ApplyCompletion(u model.User, expReward int) (model.User, bool) {
	if expReward <= 0 {
		expReward = DefaultExpReward
	}

	u.Experience += expReward
	u.Currency += CurrencyPerCompletion

	leveledUp := false
	if u.Experience >= u.ExperienceToNext {
		u.Level++
		u.ExperienceToNext = u.Level * 100
		leveledUp = true
	}

	return u, leveledUp
}

// StatForCompletion bumps the profile stat matching the habit's category.
func StatForCompletion(u *model.User, category string) {
	switch category {
	case model.CategoryPhysical:
		u.StrengthStat++
	case model.CategoryMental:
		u.DisciplineStat++
	case model.CategoryKnowledge:
		u.IntelligenceStat++
	case model.CategorySocial:
		u.SocialStat++
	}
}

// NextStreak advances a daily streak counter: consecutive days extend it,
// anything else restarts at one.
func NextStreak(completedYesterday bool, current int) int {
	if completedYesterday {
		return current + 1
	}
	return 1
}

package model

import "time"

// Achievement requirement categories.
const (
	AchievementStreak  = "streak"
	AchievementLevel   = "level"
	AchievementHabit   = "habit"
	AchievementSpecial = "special"
)

type Achievement struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Requirement    int       `json:"requirement"`
	ExpReward      int       `json:"exp_reward"`
	CurrencyReward int       `json:"currency_reward"`
	Rarity         string    `json:"rarity"`
	IsSecret       bool      `json:"is_secret"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserAchievement struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	AchievementID int64     `json:"achievement_id"`
	Progress      int       `json:"progress"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

package model

import "time"

type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	DisplayName       string    `json:"display_name"`
	Level             int       `json:"level"`
	Experience        int       `json:"experience"`
	ExperienceToNext  int       `json:"experience_to_next"`
	Currency          int       `json:"currency"`
	CurrentStreak     int       `json:"current_streak"`
	LongestStreak     int       `json:"longest_streak"`
	TotalAchievements int       `json:"total_achievements"`
	StrengthStat      int       `json:"strength_stat"`
	IntelligenceStat  int       `json:"intelligence_stat"`
	DisciplineStat    int       `json:"discipline_stat"`
	SocialStat        int       `json:"social_stat"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

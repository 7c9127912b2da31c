package model

import "time"

// Habit categories. Each category feeds a different profile stat.
const (
	CategoryPhysical  = "physical"
	CategoryMental    = "mental"
	CategoryKnowledge = "knowledge"
	CategorySocial    = "social"
)

// Penalty destinations a user can pick for missed habits.
const (
	DestinationPolitical  = "political"
	DestinationCompetitor = "competitor"
	DestinationCause      = "cause"
)

type Habit struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	ExpReward          int       `json:"exp_reward"`
	PenaltyAmount      string    `json:"penalty_amount"` // decimal string, e.g. "15.00"
	PenaltyDestination string    `json:"penalty_destination"`
	IsActive           bool      `json:"is_active"`
	CurrentStreak      int       `json:"current_streak"`
	LongestStreak      int       `json:"longest_streak"`
	TotalCompletions   int       `json:"total_completions"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func ValidCategory(c string) bool {
	switch c {
	case CategoryPhysical, CategoryMental, CategoryKnowledge, CategorySocial:
		return true
	}
	return false
}

func ValidDestination(d string) bool {
	switch d {
	case DestinationPolitical, DestinationCompetitor, DestinationCause:
		return true
	}
	return false
}

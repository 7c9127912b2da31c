package model

import "time"

// HabitCompletion is an immutable fact: one habit done on one calendar date.
// ExpGained is a snapshot of the habit's reward at completion time.
type HabitCompletion struct {
	ID          int64     `json:"id"`
	HabitID     int64     `json:"habit_id"`
	UserID      int64     `json:"user_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	ExpGained   int       `json:"exp_gained"`
	CompletedAt time.Time `json:"completed_at"`
}

type DailyProgress struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

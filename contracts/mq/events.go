package mq

// Routing keys on the "events" topic exchange.
const (
	RoutingKeyHabitCompleted      = "habit.completed"
	RoutingKeyPenaltyCreated      = "penalty.created"
	RoutingKeyAchievementUnlocked = "achievement.unlocked"
)

type HabitCompletedPayload struct {
	CompletionID int64  `json:"completion_id"`
	HabitID      int64  `json:"habit_id"`
	UserID       int64  `json:"user_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	ExpGained    int    `json:"exp_gained"`
	TraceID      string `json:"trace_id,omitempty"`
}

type PenaltyCreatedPayload struct {
	PenaltyID  int64  `json:"penalty_id"`
	HabitID    int64  `json:"habit_id"`
	UserID     int64  `json:"user_id"`
	HabitName  string `json:"habit_name"`
	Amount     string `json:"amount"` // decimal string, e.g. "15.00"
	MissedDate string `json:"missed_date"`
	TraceID    string `json:"trace_id,omitempty"`
}

type AchievementUnlockedPayload struct {
	UserID        int64  `json:"user_id"`
	AchievementID int64  `json:"achievement_id"`
	Name          string `json:"name"`
	TraceID       string `json:"trace_id,omitempty"`
}

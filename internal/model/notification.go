package model

import "time"

// Notification kinds.
const (
	NotificationPenalty     = "penalty"
	NotificationAchievement = "achievement"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

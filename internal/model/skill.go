package model

import "time"

type Skill struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"` // passive, active, ultimate
	Tier          int       `json:"tier"`
	Cost          int       `json:"cost"`
	RequiredLevel int       `json:"required_level"`
	Effect        string    `json:"effect"`
	CreatedAt     time.Time `json:"created_at"`
}

type UserSkill struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	SkillID    int64     `json:"skill_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

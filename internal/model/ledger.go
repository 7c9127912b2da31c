package model

import "time"

// Penalty is a monetary obligation created when a habit is missed.
// PaymentRef holds the gateway's payment identifier once settled.
type Penalty struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	HabitID     int64      `json:"habit_id"`
	Amount      string     `json:"amount"` // decimal string
	Destination string     `json:"destination"`
	Reason      string     `json:"reason"`
	MissedDate  string     `json:"missed_date"` // YYYY-MM-DD
	IsPaid      bool       `json:"is_paid"`
	PaymentRef  *string    `json:"payment_ref,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// Reward is a monetary credit earned through achievements.
type Reward struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Amount      string     `json:"amount"`
	Reason      string     `json:"reason"`
	IsClaimed   bool       `json:"is_claimed"`
	TransferRef *string    `json:"transfer_ref,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

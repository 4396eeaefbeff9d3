package domain

import "time"

// Redemption is the claim ticket tying a completed non-negative session to a
// unique human-readable code. At most one exists per session.
type Redemption struct {
	ID           string     `json:"id"`
	SessionID    string     `json:"session_id"`
	UserEmail    string     `json:"user_email"`
	UserPhone    string     `json:"user_phone"`
	OutcomeID    string     `json:"outcome_id"`
	OutcomeLabel string     `json:"outcome_label"`
	Code         string     `json:"redemption_code"`
	IsRedeemed   bool       `json:"is_redeemed"`
	RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy   string     `json:"redeemed_by,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RedemptionStats aggregates per-display redemption counts.
type RedemptionStats struct {
	Total    int64 `json:"total_redemptions"`
	Redeemed int64 `json:"redeemed_count"`
	Pending  int64 `json:"pending_count"`
}

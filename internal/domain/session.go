package domain

import "time"

// Session statuses. A session has no failure state; stuck sessions are forced
// to completed by the background sweep.
const (
	SessionPending   = "pending"
	SessionPlaying   = "playing"
	SessionCompleted = "completed"
)

// Session is one played attempt. The outcome is fixed at creation and never
// re-rolled; only the status moves.
type Session struct {
	ID        string    `json:"id"`
	DisplayID string    `json:"display_id"`
	PlayerID  string    `json:"player_id"`
	OutcomeID string    `json:"outcome_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	Player  *Player  `json:"player,omitempty"`
	Outcome *Outcome `json:"outcome,omitempty"`
}

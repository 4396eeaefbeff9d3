package response

import (
	"time"

	"github.com/promosign/spin-api/internal/domain"
)

type SubmitResponse struct {
	SessionID string `json:"session_id"`
}

type OutcomeResponse struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	IsNegative bool   `json:"is_negative"`
}

type SessionResponse struct {
	ID             string           `json:"id"`
	DisplayID      string           `json:"display_id"`
	Status         string           `json:"status"`
	PlayerName     string           `json:"player_name,omitempty"`
	Outcome        *OutcomeResponse `json:"outcome,omitempty"`
	RedemptionCode string           `json:"redemption_code,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NewSessionResponse hides the pre-selected outcome until the wheel has
// actually started spinning.
func NewSessionResponse(session domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:        session.ID,
		DisplayID: session.DisplayID,
		Status:    session.Status,
		CreatedAt: session.CreatedAt,
	}

	if session.Player != nil {
		resp.PlayerName = session.Player.Name
	}

	if session.Status != domain.SessionPending && session.Outcome != nil {
		resp.Outcome = &OutcomeResponse{
			ID:         session.Outcome.ID,
			Label:      session.Outcome.Label,
			IsNegative: session.Outcome.IsNegative,
		}
	}

	return resp
}

type EligibilityResponse struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

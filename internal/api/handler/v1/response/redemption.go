package response

import (
	"time"

	"github.com/promosign/spin-api/internal/domain"
)

type RedemptionResponse struct {
	ID           string     `json:"id"`
	SessionID    string     `json:"session_id"`
	OutcomeLabel string     `json:"outcome_label"`
	Code         string     `json:"code"`
	IsRedeemed   bool       `json:"is_redeemed"`
	RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy   string     `json:"redeemed_by,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func NewRedemptionResponse(r domain.Redemption) RedemptionResponse {
	return RedemptionResponse{
		ID:           r.ID,
		SessionID:    r.SessionID,
		OutcomeLabel: r.OutcomeLabel,
		Code:         r.Code,
		IsRedeemed:   r.IsRedeemed,
		RedeemedAt:   r.RedeemedAt,
		RedeemedBy:   r.RedeemedBy,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
	}
}

type RedeemResponse struct {
	Redemption      RedemptionResponse `json:"redemption"`
	AlreadyRedeemed bool               `json:"already_redeemed"`
}

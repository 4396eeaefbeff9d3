package domain

import "time"

// Player is one captured form submission. Both the raw and the normalized
// identity are kept; only the normalized forms participate in equality checks.
type Player struct {
	ID              string    `json:"id"`
	DisplayID       string    `json:"display_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	EmailNormalized string    `json:"-"`
	PhoneNormalized string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

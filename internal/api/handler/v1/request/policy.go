package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdatePolicyRequest struct {
	AllowMultiplePlays   bool   `json:"allow_multiple_plays"`
	MaxPlaysPerEmail     *int   `json:"max_plays_per_email"`
	MaxPlaysPerPhone     *int   `json:"max_plays_per_phone"`
	TimeWindowHours      *int   `json:"time_window_hours"`
	AllowRetryOnNegative bool   `json:"allow_retry_on_negative"`
	CheckAcrossDisplays  bool   `json:"check_across_displays"`
	CheckDisplayIDs      string `json:"check_display_ids"`
}

func (req *UpdatePolicyRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.MaxPlaysPerEmail, validation.Min(1)),
		validation.Field(&req.MaxPlaysPerPhone, validation.Min(1)),
		validation.Field(&req.TimeWindowHours, validation.Min(1)),
		validation.Field(&req.CheckDisplayIDs, validation.Length(0, 500)),
	)
}

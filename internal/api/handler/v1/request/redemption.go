package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type VerifyRedemptionRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (req *VerifyRedemptionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Phone, validation.Required),
		validation.Field(&req.Code, validation.Required),
	)
}

type RedeemRequest struct {
	RedeemedBy string `json:"redeemed_by"`
	Notes      string `json:"notes"`
}

func (req *RedeemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RedeemedBy, validation.Length(0, 100)),
		validation.Field(&req.Notes, validation.Length(0, 500)),
	)
}

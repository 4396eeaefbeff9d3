package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var displayIDExp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type CreateDisplayRequest struct {
	ID               string `json:"id"`
	LocationName     string `json:"location_name"`
	QRCodeURL        string `json:"qr_code_url"`
	Timezone         string `json:"timezone"`
	LogoURL          string `json:"logo_url"`
	BackgroundConfig string `json:"background_config"`
}

func (req *CreateDisplayRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ID, validation.Required, validation.Length(1, 50), validation.Match(displayIDExp)),
		validation.Field(&req.LocationName, validation.Required, validation.Length(1, 100)),
	)
}

type UpdateDisplayRequest struct {
	LocationName     *string `json:"location_name"`
	QRCodeURL        *string `json:"qr_code_url"`
	IsActive         *bool   `json:"is_active"`
	Timezone         *string `json:"timezone"`
	LogoURL          *string `json:"logo_url"`
	BackgroundConfig *string `json:"background_config"`
}

func (req *UpdateDisplayRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.LocationName, validation.Length(1, 100)),
	)
}

package response

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type TokenValidationResponse struct {
	Valid     bool   `json:"valid"`
	DisplayID string `json:"display_id,omitempty"`
}

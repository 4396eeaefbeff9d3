package response

import "github.com/promosign/spin-api/internal/domain"

type LoginResponse struct {
	Token string           `json:"token"`
	User  domain.AdminUser `json:"user"`
}

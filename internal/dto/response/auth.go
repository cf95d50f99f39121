package response

import (
	"time"

	"local-services/internal/data/entity"
)

type AuthResponse struct {
	AccountID  string      `json:"account_id"`
	Token      string      `json:"token"`
	ExpiresAt  time.Time   `json:"expires_at"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       entity.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
}

type AccountResponse struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       entity.Role `json:"role"`
	IsVerified bool        `json:"is_verified"`
}

// Helper converters
func AccountToResponse(account *entity.Account) AccountResponse {
	return AccountResponse{
		ID:         account.ID.String(),
		Name:       account.Name,
		Email:      account.Email,
		Role:       account.Role,
		IsVerified: account.Verified,
	}
}

func AuthToResponse(account *entity.Account, token string, expiresAt time.Time) AuthResponse {
	return AuthResponse{
		AccountID:  account.ID.String(),
		Token:      token,
		ExpiresAt:  expiresAt,
		Name:       account.Name,
		Email:      account.Email,
		Role:       account.Role,
		IsVerified: account.Verified,
	}
}

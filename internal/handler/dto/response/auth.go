package response

import (
	"mobirent/internal/usecase/commands"

	"github.com/google/uuid"
)

type LoginResponse struct {
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	AccessToken string    `json:"accessToken"`
}

func FromLoginResult(result *commands.LoginResult) *LoginResponse {
	return &LoginResponse{
		UserID:      result.UserID,
		Email:       result.Email,
		Username:    result.Username,
		Role:        result.Role,
		AccessToken: result.AccessToken,
	}
}

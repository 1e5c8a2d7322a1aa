package login

import (
	"time"

	"stocksence/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type LoginRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CompanyID string `json:"companyId"`
}

type GoogleLoginRequest struct {
	Credential string `json:"credential"`
}

// UserView is the account as exposed to clients. Secrets never leave the store.
type UserView struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	CompanyID   string     `json:"companyId"`
	Email       string     `json:"email,omitempty"`
	Picture     string     `json:"picture,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	ExpiresAt   time.Time  `json:"expiresAt"`
}

func NewUserView(u models.User, expiresAt time.Time) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		CompanyID:   u.CompanyID,
		Email:       u.Email,
		Picture:     u.Picture,
		LastLoginAt: u.LastLoginAt,
		ExpiresAt:   expiresAt,
	}
}

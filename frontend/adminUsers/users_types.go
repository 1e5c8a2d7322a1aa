package adminusers

import (
	"time"

	"stocksence/models"
)

type LockUserRequest struct {
	Reason string `json:"reason"`
}

type AddSerialRequest struct {
	SerialNumber string `json:"serialNumber"`
}

// UserRow is an account as listed to admins.
type UserRow struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Role          string     `json:"role"`
	Email         string     `json:"email,omitempty"`
	IsActive      bool       `json:"isActive"`
	IsLocked      bool       `json:"isLocked"`
	LockedUntil   *time.Time `json:"lockedUntil,omitempty"`
	LockReason    string     `json:"lockReason,omitempty"`
	LoginAttempts int        `json:"loginAttempts"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toUserRows(users []models.User) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{
			ID:            u.ID,
			Username:      u.Username,
			Role:          u.Role,
			Email:         u.Email,
			IsActive:      u.IsActive,
			IsLocked:      u.IsLocked,
			LockedUntil:   u.LockedUntil,
			LockReason:    u.LockReason,
			LoginAttempts: u.LoginAttempts,
			LastLoginAt:   u.LastLoginAt,
			CreatedAt:     u.CreatedAt,
		})
	}
	return rows
}

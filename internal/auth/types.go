package auth

import (
	"time"

	"catalogadmin/catalog-panel/internal/model"
)

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Document     string `json:"document"`
	PasswordHash string `json:"password_hash"`
}

func (u User) Profile() model.Profile {
	return model.Profile{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Document: u.Document,
	}
}

type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

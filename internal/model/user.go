package model

import (
	"slices"
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User is an account that authors contacts and events.
type User struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	Email          string                      `gorm:"size:180;not null;uniqueIndex:email_idx" json:"email" validate:"required,email,max=180"`
	Roles          datatypes.JSONSlice[string] `gorm:"not null" json:"roles"`
	Password       string                      `gorm:"size:255;not null" json:"-"`
	TelegramChatID *int64                      `gorm:"index" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// HasRole reports whether the user was granted role. Every stored user is implicitly ROLE_USER.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	if role == RoleUser {
		return true
	}
	return slices.Contains(u.Roles, role)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Grant adds role unless the user already has it.
func (u *User) Grant(role string) {
	if slices.Contains(u.Roles, role) {
		return
	}
	u.Roles = append(u.Roles, role)
}

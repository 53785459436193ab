package auth

import (
	"errors"
	"time"

	"pdf-to-sound-api/internal/middlewares"
)

const (
	RoleUser  = middlewares.RoleUser
	RoleAdmin = middlewares.RoleAdmin
)

var (
	ErrUserExists         = errors.New("An account with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrPasswordMismatch   = errors.New("Passwords do not match")
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	Enabled   bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"lastUpdated"`
}

func (User) TableName() string {
	return "users"
}

type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	RepeatPassword string `json:"repeatPassword" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

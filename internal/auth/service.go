// Package auth manages user accounts and issues the access tokens checked by
// middlewares.AuthMiddleware.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"pdf-to-sound-api/internal/util"
)

type AuthService struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration

	now func() time.Time
}

func (s *AuthService) Register(email, password string) (*User, error) {
	email = normalizeEmail(email)

	var count int64
	if err := s.DB.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hashed, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := User{Email: email, Password: hashed, Role: RoleUser, Enabled: true}
	if err := s.DB.Create(&user).Error; err != nil {
		// lost a race with a concurrent signup
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate returns ErrInvalidCredentials for unknown emails, wrong
// passwords and disabled accounts alike.
func (s *AuthService) Authenticate(email, password string) (*User, error) {
	var user User
	if err := s.DB.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrInvalidCredentials
	}
	if err := util.VerifyPassword(password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AuthService) GetUserByID(id uint) (*User, error) {
	var user User
	if err := s.DB.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) IssueToken(user *User) (string, error) {
	if s.JWTSecret == "" {
		return "", errors.New("JWT_SECRET is not configured")
	}

	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now
	if s.now != nil {
		now = s.now
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(s.JWTSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package auth

import "pdf-to-sound-api/internal/logs"

type AuthServicePort interface {
	Register(email, password string) (*User, error)
	Authenticate(email, password string) (*User, error)
	GetUserByID(id uint) (*User, error)
	IssueToken(user *User) (string, error)
}

type LogServicePort interface {
	Log(entry logs.SystemLog, payload any) error
}

var _ AuthServicePort = (*AuthService)(nil)
var _ LogServicePort = (*logs.LogService)(nil)

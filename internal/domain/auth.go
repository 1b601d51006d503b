package domain

import (
	"context"
	"time"
)

type Token = string

type TokenClaims struct {
	JTI       string // уникальный id токена
	UserID    UserID
	Login     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Хеширование паролей
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, encodedHash string) (bool, error)
}

// Управление токенами (JWT, реализация в internal/auth/token)
type TokenManager interface {
	Issue(ctx context.Context, userID UserID, login string) (Token, TokenClaims, error)
	Parse(ctx context.Context, t Token) (TokenClaims, error)
}

// Блэклист/ревокация токенов (Redis)
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

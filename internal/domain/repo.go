package domain

import (
	"context"
	"time"
)

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, login string, passHash []byte) (User, error)
	UserByLogin(ctx context.Context, login string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
}

// CacheRow — строка кеш-таблицы: ключ → JSON-документ + метки времени.
// UpdatedAt управляет протуханием, CreatedAt информационный.
type CacheRow struct {
	ID        string
	Key       string
	Payload   []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CacheStore — таблица ключ→документ поверх хранилища (Postgres).
// Каждая операция — один независимый round trip, last-writer-wins.
type CacheStore interface {
	Get(ctx context.Context, key string) (CacheRow, bool, error)
	Upsert(ctx context.Context, key string, payload []byte, updatedAt time.Time) error
	Delete(ctx context.Context, key string) error
	// Диапазонное удаление протухших строк: updated_at < cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// Последние limit строк по updated_at (для листинга кеша).
	Recent(ctx context.Context, limit int) ([]CacheRow, error)
}

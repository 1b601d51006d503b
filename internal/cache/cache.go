// Package cache — TTL-кеш сгенерированных артефактов поверх кеш-таблицы.
// Кеш всегда оптимизация, не источник истины: любой сбой чтения — промах,
// сбой записи логируется и глотается.
package cache

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

type Cache struct {
	store  domain.CacheStore
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time

	// Схлопывает одновременные промахи по одному ключу в один вызов генератора.
	group singleflight.Group
}

func New(store domain.CacheStore, ttl time.Duration, logger *log.Logger) *Cache {
	return &Cache{store: store, ttl: ttl, logger: logger, now: time.Now}
}

// Get возвращает свежий документ по ключу. Протухшая запись удаляется
// на чтении (ленивое протухание, фонового свипера нет) и считается промахом.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	row, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Printf("get %q: store error, treating as miss: %v", key, err)
		return nil, false
	}
	if !found || len(row.Payload) == 0 {
		c.logger.Printf("get %q: miss", key)
		return nil, false
	}

	if age := c.now().Sub(row.UpdatedAt); age > c.ttl {
		c.logger.Printf("get %q: expired (age=%s ttl=%s), deleting", key, age, c.ttl)
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Printf("get %q: expiry delete failed: %v", key, err)
		}
		return nil, false
	}

	c.logger.Printf("get %q: hit (%d bytes)", key, len(row.Payload))
	return row.Payload, true
}

// Set — best-effort upsert. Артефакт уже сгенерирован, поэтому провал записи
// не должен мешать отдать его вызывающему.
func (c *Cache) Set(ctx context.Context, key string, payload []byte) {
	if err := c.store.Upsert(ctx, key, payload, c.now()); err != nil {
		c.logger.Printf("set %q failed (ignored): %v", key, err)
		return
	}
	c.logger.Printf("set %q ok (%d bytes)", key, len(payload))
}

// Delete — best-effort удаление записи.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Printf("delete %q failed (ignored): %v", key, err)
	}
}

// GetOrGenerate возвращает свежий документ, при промахе зовёт gen.
// Конкурентные промахи по одному ключу схлопываются в один вызов генератора;
// ошибка генерации уходит всем ожидающим и не кешируется.
func (c *Cache) GetOrGenerate(ctx context.Context, key string, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if payload, ok := c.Get(ctx, key); ok {
		return payload, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// Пока мы ждали своей очереди, другой вызов мог уже записать результат.
		if payload, ok := c.Get(ctx, key); ok {
			return payload, nil
		}
		payload, err := gen(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, payload)
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Printf("generate %q: shared with concurrent callers", key)
	}
	return v.([]byte), nil
}

// PurgeExpired удаляет все строки старше TTL одним диапазонным запросом.
func (c *Cache) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := c.now().Add(-c.ttl)
	n, err := c.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		c.logger.Printf("purge expired failed: %v", err)
		return 0, err
	}
	c.logger.Printf("purge expired: deleted=%d (cutoff=%s)", n, cutoff.UTC().Format(time.RFC3339))
	return n, nil
}

// Recent отдаёт последние строки пространства (для листинга кешированных рецептов).
func (c *Cache) Recent(ctx context.Context, limit int) ([]domain.CacheRow, error) {
	return c.store.Recent(ctx, limit)
}

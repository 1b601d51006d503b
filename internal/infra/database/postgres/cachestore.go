package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/wnsghl6272/total-cooked/internal/domain"
)

// CacheTable — доступ к одной кеш-таблице «ключ → JSON-документ».
// Колонка ключа у таблиц исторически разная (cache_key / recipe_title),
// поэтому имена задаются при создании.
type CacheTable struct {
	repo       *PGRepo
	table      string
	keyCol     string
	payloadCol string
}

var _ domain.CacheStore = (*CacheTable)(nil)

// RecipeCache — таблица recipe_cache (ключ cache_key, документ recipe_data).
func (r *PGRepo) RecipeCache() *CacheTable {
	return &CacheTable{repo: r, table: "recipe_cache", keyCol: "cache_key", payloadCol: "recipe_data"}
}

// DalleCache — таблица dalle_cache (ключ recipe_title, документ image_data).
func (r *PGRepo) DalleCache() *CacheTable {
	return &CacheTable{repo: r, table: "dalle_cache", keyCol: "recipe_title", payloadCol: "image_data"}
}

func (t *CacheTable) fqTable() string {
	return fmt.Sprintf("%s.%s", t.repo.schema, t.table)
}

func (t *CacheTable) Get(ctx context.Context, key string) (domain.CacheRow, bool, error) {
	q := t.repo.qb().Select("id", t.keyCol, t.payloadCol, "created_at", "updated_at").
		From(t.fqTable()).
		Where(sq.Eq{t.keyCol: key})

	sqlStr, args, _ := q.ToSql()
	t.repo.logSQL(t.table+".Get", sqlStr, args)

	var row domain.CacheRow
	err := t.repo.pool.QueryRow(ctx, sqlStr, args...).
		Scan(&row.ID, &row.Key, &row.Payload, &row.CreatedAt, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CacheRow{}, false, nil
	}
	if err != nil {
		t.repo.logger.Printf("%s.Get %q failed: %v", t.table, key, err)
		return domain.CacheRow{}, false, err
	}
	return row, true, nil
}

func (t *CacheTable) Upsert(ctx context.Context, key string, payload []byte, updatedAt time.Time) error {
	q := t.repo.qb().Insert(t.fqTable()).
		Columns(t.keyCol, t.payloadCol, "updated_at").
		Values(key, payload, updatedAt).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, updated_at = EXCLUDED.updated_at",
			t.keyCol, t.payloadCol, t.payloadCol,
		))

	sqlStr, args, _ := q.ToSql()
	t.repo.logSQL(t.table+".Upsert", sqlStr, args)

	start := time.Now()
	if _, err := t.repo.pool.Exec(ctx, sqlStr, args...); err != nil {
		t.repo.logger.Printf("%s.Upsert %q failed after %s: %v", t.table, key, time.Since(start), err)
		return err
	}
	t.repo.logger.Printf("%s.Upsert %q ok in %s (%d bytes)", t.table, key, time.Since(start), len(payload))
	return nil
}

func (t *CacheTable) Delete(ctx context.Context, key string) error {
	q := t.repo.qb().Delete(t.fqTable()).Where(sq.Eq{t.keyCol: key})

	sqlStr, args, _ := q.ToSql()
	t.repo.logSQL(t.table+".Delete", sqlStr, args)

	if _, err := t.repo.pool.Exec(ctx, sqlStr, args...); err != nil {
		t.repo.logger.Printf("%s.Delete %q failed: %v", t.table, key, err)
		return err
	}
	return nil
}

func (t *CacheTable) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := t.repo.qb().Delete(t.fqTable()).Where(sq.Lt{"updated_at": cutoff})

	sqlStr, args, _ := q.ToSql()
	t.repo.logSQL(t.table+".DeleteOlderThan", sqlStr, args)

	tag, err := t.repo.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		t.repo.logger.Printf("%s.DeleteOlderThan failed: %v", t.table, err)
		return 0, err
	}
	n := tag.RowsAffected()
	t.repo.logger.Printf("%s.DeleteOlderThan: deleted=%d", t.table, n)
	return n, nil
}

func (t *CacheTable) Recent(ctx context.Context, limit int) ([]domain.CacheRow, error) {
	q := t.repo.qb().Select("id", t.keyCol, t.payloadCol, "created_at", "updated_at").
		From(t.fqTable()).
		OrderBy("updated_at DESC").
		Limit(uint64(limit))

	sqlStr, args, _ := q.ToSql()
	t.repo.logSQL(t.table+".Recent", sqlStr, args)

	rows, err := t.repo.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		t.repo.logger.Printf("%s.Recent failed: %v", t.table, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.CacheRow
	for rows.Next() {
		var row domain.CacheRow
		if err := rows.Scan(&row.ID, &row.Key, &row.Payload, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

package domain

import (
	"sort"
	"strings"
	"time"
)

// Ключи кеша — единое место, чтобы не расползались по коду.

// Зарезервированный ключ пула hero-картинок в пространстве dalle_cache.
const HeroPoolKey = "hero_image_pool"

// Целевой размер пула.
const HeroPoolSize = 5

// TTL фиксированы на пространство, на уровне вызова не настраиваются.
const (
	RecipeCacheTTL = 24 * time.Hour
	ImageCacheTTL  = 24 * time.Hour
	HeroPoolTTL    = 30 * 24 * time.Hour
)

// RecipeCacheKey строит детерминированный ключ рецепта:
// title + "-" + отсортированные ингредиенты через запятую.
// Сортировка убирает чувствительность к порядку ингредиентов.
func RecipeCacheKey(title string, ingredients []string) string {
	sorted := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			sorted = append(sorted, ing)
		}
	}
	sort.Strings(sorted)
	return title + "-" + strings.Join(sorted, ",")
}

// ImageCacheKey — ключ одиночной картинки: буквально название/тема запроса.
func ImageCacheKey(subject string) string { return subject }

// Slugify приводит ключ/название к виду url-слага (как в листинге кеша).
func Slugify(s string) string {
	var b strings.Builder
	prevDash := true // отсекает дефис в начале
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// TitleFromSlug восстанавливает название из слага: слова с заглавной буквы.
func TitleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

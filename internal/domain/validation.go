package domain

import (
	"regexp"
	"strings"
)

var (
	loginRe = regexp.MustCompile(`^[A-Za-z0-9]{4,}$`)
	upperRe = regexp.MustCompile(`[A-Z]`)
	lowerRe = regexp.MustCompile(`[a-z]`)
	digitRe = regexp.MustCompile(`[0-9]`)
)

func ValidLogin(s string) bool {
	return loginRe.MatchString(s)
}

// Пароль: минимум 8 символов, буквы в обоих регистрах и цифра.
func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	return upperRe.MatchString(s) && lowerRe.MatchString(s) && digitRe.MatchString(s)
}

// Ограничения списка ингредиентов для AI-запросов.
const (
	MinIngredients = 1
	MaxIngredients = 20
)

// SplitIngredients разбирает "a,b,c" в нормализованный список.
func SplitIngredients(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Login     string    `json:"login"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"created_at"`
}

// Краткая карточка рецепта из поиска по ингредиентам (Spoonacular)
type RecipeSummary struct {
	ID                    int    `json:"id"`
	Title                 string `json:"title"`
	Image                 string `json:"image"`
	ReadyInMinutes        int    `json:"readyInMinutes"`
	MissedIngredientCount int    `json:"missedIngredientCount"`
	SourceURL             string `json:"sourceUrl"`
	Instructions          string `json:"instructions"`
}

// Ингредиент в составе сгенерированного рецепта
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

type Instruction struct {
	Step int    `json:"step"`
	Text string `json:"text"`
}

type NutritionFacts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Полный AI-рецепт — именно этот документ лежит в recipe_cache
type RecipeDetails struct {
	Title          string         `json:"title,omitempty"`
	Description    string         `json:"description"`
	PrepTime       string         `json:"prepTime"`
	CookTime       string         `json:"cookTime"`
	Servings       int            `json:"servings"`
	Ingredients    []Ingredient   `json:"ingredients"`
	Instructions   []Instruction  `json:"instructions"`
	NutritionFacts NutritionFacts `json:"nutritionFacts"`
	Tips           []string       `json:"tips"`
}

// Короткое предложение рецепта от LLM (название + описание)
type Suggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Сгенерированная картинка. URL после зеркалирования указывает в наш бакет,
// prompt сохраняем для отладки и регенерации.
type DalleImage struct {
	ID             string `json:"id"`
	URL            string `json:"url"`
	AltDescription string `json:"alt_description"`
	Prompt         string `json:"prompt"`
	CreatedAt      string `json:"created_at"`
}

// Пул hero-картинок — одна запись в dalle_cache под зарезервированным ключом.
// CurrentIndex — рудимент старой ротации: реальный выбор случайный,
// поле оставлено ради совместимости формата.
type HeroImagePool struct {
	Images       []DalleImage `json:"images"`
	LastUpdated  time.Time    `json:"lastUpdated"`
	CurrentIndex int          `json:"currentIndex"`
}

// Сводка кешированного рецепта для листинга /api/recipes-cache
type CachedRecipeSummary struct {
	ID        string    `json:"id"`
	CacheKey  string    `json:"cacheKey"`
	Title     string    `json:"title"`
	Desc      string    `json:"description"`
	PrepTime  string    `json:"prepTime"`
	CookTime  string    `json:"cookTime"`
	Servings  int       `json:"servings"`
	UpdatedAt time.Time `json:"updatedAt"`
	Slug      string    `json:"slug"`
}

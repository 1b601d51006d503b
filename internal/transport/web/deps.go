package web

import (
	"github.com/wnsghl6272/total-cooked/internal/cache"
	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/airecipes"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/health"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/heropool"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/images"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/v1/recipes"
)

// Deps — всё, что нужно HTTP-слою. Собирается в app.Build.
type Deps struct {
	Users domain.UsersRepo

	Recipes  recipes.RecipeAPI
	LLM      airecipes.LLM
	ImageGen images.ImageGen
	HeroPool heropool.Pool

	RecipeCache *cache.Cache // recipe_cache
	ImageCache  *cache.Cache // dalle_cache

	DB      health.Pinger
	Cache   health.Pinger
	Storage health.Pinger
}

type AuthDeps struct {
	Hasher    domain.PasswordHasher
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}

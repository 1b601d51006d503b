package airecipes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/wnsghl6272/total-cooked/internal/cache"
	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

// LLM — генератор рецептов.
type LLM interface {
	RecipeDetails(ctx context.Context, title string, ingredients []string) (domain.RecipeDetails, error)
	SuggestRecipes(ctx context.Context, ingredients []string) ([]domain.Suggestion, error)
}

type Handler struct {
	Log    *log.Logger
	LLM    LLM
	Recipe *cache.Cache // пространство recipe_cache
}

// Details godoc
// @Summary     Full AI recipe by slug (cache-or-generate)
// @Tags        ai
// @Produce     json
// @Param       slug path string true "recipe slug"
// @Param       ingredients query string false "comma-separated ingredient list"
// @Success     200 {object} domain.RecipeDetails
// @Failure     500 {object} map[string]string
// @Failure     504 {object} map[string]string
// @Router      /api/ai-recipes/{slug} [get]
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	const op = "airecipes.details"
	reqID := mw.RequestIDFromCtx(r.Context())

	slug := unescape(r.PathValue("slug"))
	if slug == "" {
		v1.WriteError(w, r, domain.ErrBadParams)
		return
	}
	title := domain.TitleFromSlug(slug)
	ingredients := domain.SplitIngredients(r.URL.Query().Get("ingredients"))

	// ключ детерминирован: одинаковые вход и порядок-независимые
	// ингредиенты всегда попадают в одну запись
	key := domain.RecipeCacheKey(title, ingredients)

	payload, err := h.Recipe.GetOrGenerate(r.Context(), key, func(ctx context.Context) ([]byte, error) {
		details, err := h.LLM.RecipeDetails(ctx, title, ingredients)
		if err != nil {
			return nil, err
		}
		return json.Marshal(details)
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "generation failed", err, "key", key)
		v1.WriteError(w, r, err)
		return
	}

	var details domain.RecipeDetails
	if err := json.Unmarshal(payload, &details); err != nil {
		logx.Error(h.Log, reqID, op, "stored recipe malformed", err, "key", key)
		v1.WriteError(w, r, domain.ErrUnexpected)
		return
	}
	details.Title = title

	logx.Info(h.Log, reqID, op, "ok", "key", key)
	v1.WriteJSON(w, r, http.StatusOK, details)
}

type suggestionsResponse struct {
	Recipes []domain.Suggestion `json:"recipes"`
}

// Suggestions godoc
// @Summary     AI recipe suggestions for a set of ingredients
// @Tags        ai
// @Produce     json
// @Param       ingredients query string true "comma-separated ingredient list (1..20)"
// @Success     200 {object} suggestionsResponse
// @Failure     400 {object} map[string]string
// @Failure     504 {object} map[string]string
// @Router      /api/ai-suggestions [get]
func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	const op = "airecipes.suggestions"
	reqID := mw.RequestIDFromCtx(r.Context())

	raw := r.URL.Query().Get("ingredients")
	if raw == "" {
		v1.WriteErrorText(w, r, http.StatusBadRequest, "No ingredients provided")
		return
	}
	ingredients := domain.SplitIngredients(raw)
	if len(ingredients) > domain.MaxIngredients {
		v1.WriteErrorText(w, r, http.StatusBadRequest,
			fmt.Sprintf("Too many ingredients. Maximum allowed: %d", domain.MaxIngredients))
		return
	}
	if len(ingredients) < domain.MinIngredients {
		v1.WriteErrorText(w, r, http.StatusBadRequest,
			fmt.Sprintf("At least %d ingredient is required", domain.MinIngredients))
		return
	}

	recipes, err := h.LLM.SuggestRecipes(r.Context(), ingredients)
	if err != nil {
		logx.Error(h.Log, reqID, op, "suggestions failed", err, "ingredients", strings.Join(ingredients, ","))
		v1.WriteError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(recipes))
	v1.WriteJSON(w, r, http.StatusOK, suggestionsResponse{Recipes: recipes})
}

func unescape(s string) string {
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return u
}

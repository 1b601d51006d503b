package recipes

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/wnsghl6272/total-cooked/internal/cache"
	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

// Базовый список для локального автодополнения — сперва ищем здесь,
// к вендору идём только если префикс ничего не дал.
var commonIngredients = []string{
	"salt", "pepper", "olive oil", "garlic", "onion", "tomato", "potato", "carrot",
	"chicken", "beef", "pork", "rice", "pasta", "egg", "milk", "butter", "cheese",
	"flour", "sugar", "bread", "lettuce", "cucumber", "mushroom", "lemon", "ginger",
}

// RecipeAPI — рецептурный вендор (Spoonacular).
type RecipeAPI interface {
	SearchByIngredients(ctx context.Context, ingredients []string) ([]domain.RecipeSummary, error)
	RecipeInformation(ctx context.Context, id int) (json.RawMessage, error)
	AutocompleteIngredients(ctx context.Context, query string, number int) ([]string, error)
}

type Handler struct {
	Log    *log.Logger
	API    RecipeAPI
	Recipe *cache.Cache // пространство recipe_cache, для листинга/чистки
}

// Search godoc
// @Summary     Find recipes by ingredients
// @Tags        recipes
// @Produce     json
// @Param       ingredients query string true "comma-separated ingredient list"
// @Success     200 {array} domain.RecipeSummary
// @Failure     400 {object} map[string]string
// @Failure     502 {object} map[string]string
// @Router      /api/recipes [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	const op = "recipes.search"
	reqID := mw.RequestIDFromCtx(r.Context())

	ingredients := domain.SplitIngredients(r.URL.Query().Get("ingredients"))
	if len(ingredients) == 0 {
		logx.Error(h.Log, reqID, op, "no ingredients provided", domain.ErrBadParams)
		v1.WriteErrorText(w, r, http.StatusBadRequest, "No ingredients provided")
		return
	}

	recipes, err := h.API.SearchByIngredients(r.Context(), ingredients)
	if err != nil {
		logx.Error(h.Log, reqID, op, "vendor search failed", err, "ingredients", strings.Join(ingredients, ","))
		v1.WriteError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(recipes))
	v1.WriteJSON(w, r, http.StatusOK, recipes)
}

// ByID godoc
// @Summary     Recipe details by vendor id
// @Tags        recipes
// @Produce     json
// @Param       id path int true "recipe id"
// @Success     200 {object} map[string]any
// @Failure     400 {object} map[string]string
// @Failure     502 {object} map[string]string
// @Router      /api/recipes/{id} [get]
func (h *Handler) ByID(w http.ResponseWriter, r *http.Request) {
	const op = "recipes.by_id"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad recipe id", err, "raw", r.PathValue("id"))
		v1.WriteError(w, r, domain.ErrBadParams)
		return
	}

	raw, err := h.API.RecipeInformation(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "vendor fetch failed", err, "recipe_id", id)
		v1.WriteError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "recipe_id", id)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", reqID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

type ingredientsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// Ingredients godoc
// @Summary     Ingredient autocomplete
// @Tags        recipes
// @Produce     json
// @Param       query query string true "prefix"
// @Success     200 {object} ingredientsResponse
// @Router      /api/ingredients [get]
func (h *Handler) Ingredients(w http.ResponseWriter, r *http.Request) {
	const op = "recipes.ingredients"
	reqID := mw.RequestIDFromCtx(r.Context())

	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	if query == "" {
		v1.WriteJSON(w, r, http.StatusOK, ingredientsResponse{Suggestions: []string{}})
		return
	}

	// локальный список первым
	var local []string
	for _, ing := range commonIngredients {
		if strings.Contains(ing, query) {
			local = append(local, ing)
		}
	}
	if len(local) > 0 {
		logx.Info(h.Log, reqID, op, "local hit", "query", query, "count", len(local))
		v1.WriteJSON(w, r, http.StatusOK, ingredientsResponse{Suggestions: local})
		return
	}

	// вендор; при любом сбое деградируем до «эха» пользовательского ввода
	suggestions, err := h.API.AutocompleteIngredients(r.Context(), query, 5)
	if err != nil || len(suggestions) == 0 {
		logx.Error(h.Log, reqID, op, "vendor autocomplete failed, echoing query", err, "query", query)
		v1.WriteJSON(w, r, http.StatusOK, ingredientsResponse{Suggestions: []string{query}})
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "query", query, "count", len(suggestions))
	v1.WriteJSON(w, r, http.StatusOK, ingredientsResponse{Suggestions: suggestions})
}

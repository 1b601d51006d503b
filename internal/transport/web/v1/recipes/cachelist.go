package recipes

import (
	"encoding/json"
	"net/http"

	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

// Сколько кешированных рецептов показываем в блоге.
const cacheListLimit = 20

// CacheList godoc
// @Summary     Recently cached AI recipes
// @Tags        recipes
// @Produce     json
// @Success     200 {array} domain.CachedRecipeSummary
// @Failure     500 {object} map[string]string
// @Router      /api/recipes-cache [get]
func (h *Handler) CacheList(w http.ResponseWriter, r *http.Request) {
	const op = "recipes.cache_list"
	reqID := mw.RequestIDFromCtx(r.Context())

	rows, err := h.Recipe.Recent(r.Context(), cacheListLimit)
	if err != nil {
		logx.Error(h.Log, reqID, op, "recent fetch failed", err)
		v1.WriteErrorText(w, r, http.StatusInternalServerError, "Failed to fetch recipes")
		return
	}

	summaries := make([]domain.CachedRecipeSummary, 0, len(rows))
	for _, row := range rows {
		var details domain.RecipeDetails
		if err := json.Unmarshal(row.Payload, &details); err != nil {
			// битая строка в кеше — пропускаем, не валим листинг
			logx.Error(h.Log, reqID, op, "malformed cached recipe, skipping", err, "key", row.Key)
			continue
		}

		title := details.Title
		if title == "" {
			title = row.Key
		}
		desc := details.Description
		if desc == "" {
			desc = "AI-generated recipe"
		}
		prep := details.PrepTime
		if prep == "" {
			prep = "30 mins"
		}
		cook := details.CookTime
		if cook == "" {
			cook = "30 mins"
		}
		servings := details.Servings
		if servings == 0 {
			servings = 4
		}

		summaries = append(summaries, domain.CachedRecipeSummary{
			ID:        row.ID,
			CacheKey:  row.Key,
			Title:     title,
			Desc:      desc,
			PrepTime:  prep,
			CookTime:  cook,
			Servings:  servings,
			UpdatedAt: row.UpdatedAt,
			Slug:      domain.Slugify(row.Key),
		})
	}

	logx.Info(h.Log, reqID, op, "ok", "count", len(summaries))
	v1.WriteJSON(w, r, http.StatusOK, summaries)
}

type purgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// CachePurge godoc
// @Summary     Purge expired cached recipes
// @Tags        recipes
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} purgeResponse
// @Failure     500 {object} map[string]string
// @Router      /api/recipes-cache [delete]
func (h *Handler) CachePurge(w http.ResponseWriter, r *http.Request) {
	const op = "recipes.cache_purge"
	reqID := mw.RequestIDFromCtx(r.Context())

	n, err := h.Recipe.PurgeExpired(r.Context())
	if err != nil {
		logx.Error(h.Log, reqID, op, "purge failed", err)
		v1.WriteError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "deleted", n)
	v1.WriteJSON(w, r, http.StatusOK, purgeResponse{Deleted: n})
}

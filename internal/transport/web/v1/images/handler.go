package images

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/wnsghl6272/total-cooked/internal/cache"
	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

const defaultCount = 2

// ImageGen — внешний генератор картинок.
type ImageGen interface {
	GenerateRecipeImages(ctx context.Context, query string, count int) ([]domain.DalleImage, error)
}

type Handler struct {
	Log    *log.Logger
	Gen    ImageGen
	Images *cache.Cache // пространство dalle_cache
}

// Ответ в формате, который исторически ждёт фронтенд (совместим с unsplash-полями).
type imageResponse struct {
	ID             string        `json:"id"`
	URLs           imageURLs     `json:"urls"`
	AltDescription string        `json:"alt_description"`
	User           imageUser     `json:"user"`
	DalleSpecific  dalleSpecific `json:"dalle_specific"`
}

type imageURLs struct {
	Regular string `json:"regular"`
	Full    string `json:"full"`
}

type imageUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

type dalleSpecific struct {
	Prompt    string `json:"prompt"`
	CreatedAt string `json:"created_at"`
}

// Generate godoc
// @Summary     Cache-or-generate illustrative images for a query
// @Tags        images
// @Produce     json
// @Param       query query string true "subject, e.g. recipe title"
// @Param       count query int false "number of images (default 2)"
// @Success     200 {array} imageResponse
// @Failure     400 {object} map[string]string
// @Failure     500 {object} map[string]string
// @Router      /api/dalle [get]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	const op = "images.generate"
	reqID := mw.RequestIDFromCtx(r.Context())

	query := r.URL.Query().Get("query")
	if query == "" {
		v1.WriteErrorText(w, r, http.StatusBadRequest, "Query parameter is required")
		return
	}
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || count < 1 {
		count = defaultCount
	}

	key := domain.ImageCacheKey(query)

	// кеш: годится только если в нём достаточно картинок под запрошенный count
	if payload, ok := h.Images.Get(r.Context(), key); ok {
		var cached []domain.DalleImage
		if err := json.Unmarshal(payload, &cached); err == nil && len(cached) >= count {
			logx.Info(h.Log, reqID, op, "cache hit", "query", query, "count", count)
			v1.WriteJSON(w, r, http.StatusOK, transform(cached[:count]))
			return
		}
	}

	images, err := h.Gen.GenerateRecipeImages(r.Context(), query, count)
	if err != nil {
		logx.Error(h.Log, reqID, op, "generation failed", err, "query", query)
		v1.WriteError(w, r, err)
		return
	}
	if len(images) == 0 {
		logx.Error(h.Log, reqID, op, "no images generated", nil, "query", query)
		v1.WriteErrorText(w, r, http.StatusInternalServerError, "Failed to generate images")
		return
	}

	if payload, err := json.Marshal(images); err == nil {
		h.Images.Set(r.Context(), key, payload)
	}

	logx.Info(h.Log, reqID, op, "ok", "query", query, "count", len(images))
	v1.WriteJSON(w, r, http.StatusOK, transform(images))
}

func transform(images []domain.DalleImage) []imageResponse {
	out := make([]imageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, imageResponse{
			ID:             img.ID,
			URLs:           imageURLs{Regular: img.URL, Full: img.URL},
			AltDescription: img.AltDescription,
			User:           imageUser{Name: "AI Generated", Username: "dalle"},
			DalleSpecific:  dalleSpecific{Prompt: img.Prompt, CreatedAt: img.CreatedAt},
		})
	}
	return out
}

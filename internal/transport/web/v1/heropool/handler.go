package heropool

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

// Pool — менеджер пула hero-картинок.
type Pool interface {
	Pool(ctx context.Context) (*domain.HeroImagePool, bool)
	Generate(ctx context.Context) *domain.HeroImagePool
	NextImage(ctx context.Context) (domain.DalleImage, bool)
	Refresh(ctx context.Context) *domain.HeroImagePool
	NeedsRefresh(ctx context.Context) bool
}

type Handler struct {
	Log  *log.Logger
	Pool Pool
}

type statusResponse struct {
	Exists       bool       `json:"exists"`
	ImageCount   int        `json:"imageCount"`
	LastUpdated  *time.Time `json:"lastUpdated,omitempty"`
	CurrentIndex int        `json:"currentIndex"`
	NeedsRefresh bool       `json:"needsRefresh"`
}

type actionResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	ImageCount  int       `json:"imageCount"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type summaryResponse struct {
	Success bool         `json:"success"`
	Pool    *poolSummary `json:"pool"`
}

type poolSummary struct {
	ImageCount   int       `json:"imageCount"`
	LastUpdated  time.Time `json:"lastUpdated"`
	CurrentIndex int       `json:"currentIndex"`
	ImageURLs    []string  `json:"imageUrls"`
}

// Manage godoc
// @Summary     Hero image pool management
// @Description action=status|next|refresh|initialize; без action — сводка пула
// @Tags        hero-pool
// @Produce     json
// @Param       action query string false "status | next | refresh | initialize"
// @Success     200 {object} summaryResponse
// @Failure     500 {object} map[string]string
// @Router      /api/hero-pool [get]
func (h *Handler) Manage(w http.ResponseWriter, r *http.Request) {
	const op = "heropool.manage"
	reqID := mw.RequestIDFromCtx(r.Context())
	action := r.URL.Query().Get("action")
	logx.Info(h.Log, reqID, op, "start", "action", action)

	switch action {
	case "status":
		pool, ok := h.Pool.Pool(r.Context())
		resp := statusResponse{NeedsRefresh: h.Pool.NeedsRefresh(r.Context())}
		if ok {
			resp.Exists = true
			resp.ImageCount = len(pool.Images)
			resp.LastUpdated = &pool.LastUpdated
			resp.CurrentIndex = pool.CurrentIndex
		}
		v1.WriteJSON(w, r, http.StatusOK, resp)

	case "next":
		img, ok := h.Pool.NextImage(r.Context())
		if !ok {
			logx.Error(h.Log, reqID, op, "no hero image available", nil)
			v1.WriteErrorText(w, r, http.StatusInternalServerError, "Failed to get hero image")
			return
		}
		v1.WriteJSON(w, r, http.StatusOK, img)

	case "refresh":
		pool := h.Pool.Refresh(r.Context())
		v1.WriteJSON(w, r, http.StatusOK, actionResponse{
			Success:     true,
			Message:     "Hero image pool refreshed successfully",
			ImageCount:  len(pool.Images),
			LastUpdated: pool.LastUpdated,
		})

	case "initialize":
		if pool, ok := h.Pool.Pool(r.Context()); ok {
			v1.WriteJSON(w, r, http.StatusOK, actionResponse{
				Success:     true,
				Message:     "Hero image pool already exists",
				ImageCount:  len(pool.Images),
				LastUpdated: pool.LastUpdated,
			})
			return
		}
		pool := h.Pool.Generate(r.Context())
		v1.WriteJSON(w, r, http.StatusOK, actionResponse{
			Success:     true,
			Message:     "Hero image pool initialized successfully",
			ImageCount:  len(pool.Images),
			LastUpdated: pool.LastUpdated,
		})

	default:
		resp := summaryResponse{Success: true}
		if pool, ok := h.Pool.Pool(r.Context()); ok {
			urls := make([]string, 0, len(pool.Images))
			for _, img := range pool.Images {
				urls = append(urls, img.URL)
			}
			resp.Pool = &poolSummary{
				ImageCount:   len(pool.Images),
				LastUpdated:  pool.LastUpdated,
				CurrentIndex: pool.CurrentIndex,
				ImageURLs:    urls,
			}
		}
		v1.WriteJSON(w, r, http.StatusOK, resp)
	}
}

type postRequest struct {
	Action string `json:"action"`
}

// ManagePost godoc
// @Summary     Hero image pool management (POST)
// @Tags        hero-pool
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body postRequest true "action: initialize | refresh"
// @Success     200 {object} actionResponse
// @Failure     400 {object} map[string]string
// @Router      /api/hero-pool [post]
func (h *Handler) ManagePost(w http.ResponseWriter, r *http.Request) {
	const op = "heropool.manage_post"
	reqID := mw.RequestIDFromCtx(r.Context())

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteErrorText(w, r, http.StatusBadRequest, "Invalid action")
		return
	}

	var (
		pool *domain.HeroImagePool
		msg  string
	)
	switch req.Action {
	case "initialize":
		pool = h.Pool.Generate(r.Context())
		msg = "Hero image pool initialized successfully"
	case "refresh":
		pool = h.Pool.Refresh(r.Context())
		msg = "Hero image pool refreshed successfully"
	default:
		logx.Error(h.Log, reqID, op, "invalid action", nil, "action", req.Action)
		v1.WriteErrorText(w, r, http.StatusBadRequest, "Invalid action")
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "action", req.Action, "count", len(pool.Images))
	v1.WriteJSON(w, r, http.StatusOK, actionResponse{
		Success:     true,
		Message:     msg,
		ImageCount:  len(pool.Images),
		LastUpdated: pool.LastUpdated,
	})
}

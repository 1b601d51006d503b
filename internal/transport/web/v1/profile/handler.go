package profile

import (
	"log"
	"net/http"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

type Handler struct {
	Log   *log.Logger
	Users domain.UsersRepo
}

type profileResponse struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	CreatedAt string `json:"created_at"`
}

// Get godoc
// @Summary     Current user profile
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} profileResponse
// @Failure     401 {object} map[string]string
// @Router      /api/profile [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "profile.get"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "unauthorized", domain.ErrUnauth)
		v1.WriteError(w, r, domain.ErrUnauth)
		return
	}

	// Клеймы несут только id и login, created_at дочитываем из БД.
	u, err := h.Users.UserByID(r.Context(), me.ID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "user lookup failed", err, "user_id", me.ID)
		v1.WriteError(w, r, domain.ErrNotFound)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID)
	v1.WriteJSON(w, r, http.StatusOK, profileResponse{
		ID:        u.ID.String(),
		Login:     u.Login,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	})
}

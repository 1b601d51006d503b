package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

type Handler struct {
	Log     *log.Logger
	DB      Pinger
	Cache   Pinger
	Storage Pinger
}

// Liveness godoc
// @Summary      Liveness probe
// @Description  Проверка, жив ли сервис (не зависит от БД/кэша)
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	const op = "health.liveness"
	reqID := mw.RequestIDFromCtx(r.Context())

	logx.Info(h.Log, reqID, op, "ok")
	v1.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness godoc
// @Summary      Readiness probe
// @Description  Проверка готовности сервиса (пинг Postgres, Redis и бакета)
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /readyz [get]
func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "db ping failed", err)
		v1.WriteError(w, r, domain.ErrUnexpected)
		return
	}

	if err := h.Cache.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "cache ping failed", err)
		v1.WriteError(w, r, domain.ErrUnexpected)
		return
	}

	// Зеркало картинок опционально.
	if h.Storage != nil {
		if err := h.Storage.Ping(ctx); err != nil {
			logx.Error(h.Log, reqID, op, "storage ping failed", err)
			v1.WriteError(w, r, domain.ErrUnexpected)
			return
		}
	}

	logx.Info(h.Log, reqID, op, "ready")
	v1.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

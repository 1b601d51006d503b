package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

type HandlerLogout struct {
	Log       *log.Logger
	Tokens    domain.TokenManager
	Blacklist domain.TokenBlacklist
}

type logoutResponse struct {
	Revoked string `json:"revoked"` // jti
}

// Logout godoc
// @Summary     Logout (revoke token)
// @Description Завершает сессию: помечает токен как отозванный до истечения exp.
// @Tags        auth
// @Produce     json
// @Param       token path string true "JWT token (raw)"
// @Success     200 {object} logoutResponse
// @Failure     400 {object} map[string]string
// @Failure     401 {object} map[string]string
// @Router      /api/auth/{token} [delete]
func (h *HandlerLogout) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "auth.logout"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	raw := tokenFromPathOrHeader(r)
	if raw == "" {
		logx.Error(h.Log, reqID, op, "missing token", domain.ErrBadParams)
		v1.WriteError(w, r, domain.ErrBadParams)
		return
	}

	claims, err := h.Tokens.Parse(r.Context(), raw)
	if err != nil {
		logx.Error(h.Log, reqID, op, "parse token failed", err)
		v1.WriteError(w, r, domain.ErrUnauth)
		return
	}

	// ревокация до exp
	if err := h.Blacklist.Revoke(r.Context(), claims.JTI, claims.ExpiresAt); err != nil {
		logx.Error(h.Log, reqID, op, "revoke failed", err, "jti", claims.JTI)
		v1.WriteError(w, r, domain.ErrUnexpected)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "jti", claims.JTI)
	v1.WriteJSON(w, r, http.StatusOK, logoutResponse{Revoked: claims.JTI})
}

func tokenFromPathOrHeader(r *http.Request) string {
	// 1) DELETE /api/auth/{token}
	const pfx = "/api/auth/"
	if strings.HasPrefix(r.URL.Path, pfx) && len(r.URL.Path) > len(pfx) {
		return r.URL.Path[len(pfx):]
	}
	// 2) query ?token=...
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	// 3) Authorization: Bearer ...
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

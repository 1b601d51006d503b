package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/logx"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
	v1 "github.com/wnsghl6272/total-cooked/internal/transport/web/v1"
)

// HandlerRegister обрабатывает POST /api/register
type HandlerRegister struct {
	Log    *log.Logger
	Users  domain.UsersRepo
	Hasher domain.PasswordHasher
}

type registerRequest struct {
	Login string `json:"login"`
	Pswd  string `json:"pswd"`
}

type registerResponse struct {
	Login string `json:"login"`
}

// Register godoc
// @Summary     Register new user
// @Description Регистрация нового пользователя.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "login, pswd"
// @Success     200 {object} registerResponse
// @Failure     400 {object} map[string]string
// @Failure     500 {object} map[string]string
// @Router      /api/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	// Принимаем JSON, но поддержим и форму (на случай ручного теста).
	var req registerRequest
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logx.Error(h.Log, reqID, op, "bad json", err)
			v1.WriteError(w, r, domain.ErrBadParams)
			return
		}
	} else {
		_ = r.ParseForm()
		req.Login = r.FormValue("login")
		req.Pswd = r.FormValue("pswd")
	}

	// Валидация логина/пароля (домен)
	if !domain.ValidLogin(req.Login) || !domain.ValidPassword(req.Pswd) {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "login", req.Login)
		v1.WriteError(w, r, domain.ErrBadParams)
		return
	}

	// Хэш пароля
	hashStr, err := h.Hasher.Hash(req.Pswd)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteError(w, r, domain.ErrUnexpected)
		return
	}

	// Создаём пользователя
	u, err := h.Users.CreateUser(r.Context(), req.Login, []byte(hashStr))
	if err != nil {
		// возможен уникальный конфликт по login — маппим как bad params
		logx.Error(h.Log, reqID, op, "create user failed", err, "login", req.Login)
		v1.WriteError(w, r, domain.ErrBadParams)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "login", u.Login)
	v1.WriteJSON(w, r, http.StatusOK, registerResponse{Login: u.Login})
}

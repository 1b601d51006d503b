package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wnsghl6272/total-cooked/internal/domain"
	"github.com/wnsghl6272/total-cooked/internal/transport/web/mw"
)

// Тело ошибки — плоское {"error": "..."}: фронтенд читает именно это поле.
type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON пишет успешный JSON-ответ.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", mw.RequestIDFromCtx(r.Context()))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// MapError решает HTTP-статус и текст по ошибке.
// Типизированная ошибка внешнего API несёт статус сама.
func MapError(err error) (int, string) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message
	}
	switch {
	case errors.Is(err, domain.ErrBadParams):
		return http.StatusBadRequest, "bad params"
	case errors.Is(err, domain.ErrUnauth):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "upstream failed"
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout, "request timed out"
	default:
		return http.StatusInternalServerError, "unexpected error"
	}
}

// WriteError маппит ошибку в статус + {"error": text}.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, text := MapError(err)
	WriteJSON(w, r, status, errorBody{Error: text})
}

// WriteErrorText — ошибка с готовым статусом и текстом.
func WriteErrorText(w http.ResponseWriter, r *http.Request, status int, text string) {
	WriteJSON(w, r, status, errorBody{Error: text})
}

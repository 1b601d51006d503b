package domain

import (
	"errors"
	"fmt"
)

// Бизнес-ошибки (маппятся на HTTP коды в transport/web/v1)
var (
	ErrBadParams        = errors.New("bad_params")         // 400
	ErrUnauth           = errors.New("unauthorized")       // 401
	ErrNotFound         = errors.New("not_found")          // 404
	ErrMethodNotAllowed = errors.New("method_not_allowed") // 405
	ErrUpstream         = errors.New("upstream_failed")    // 502
	ErrTimeout          = errors.New("upstream_timeout")   // 504
	ErrUnexpected       = errors.New("unexpected")         // 500
)

// APIError — типизированная ошибка внешнего API: текст + статус,
// с которым её нужно отдать наружу. Ошибки генерации никогда не кешируются.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func NewAPIError(status int, message string) *APIError {
	return &APIError{Message: message, Status: status}
}

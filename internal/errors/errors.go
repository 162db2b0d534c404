// errors стандартизирует ответы об ошибках HTTP-слоя discussion-service.
// На вход он принимает ошибку движка (thread), реестра сессий (service) или хранилища,
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/discussion-service/internal/service"
	"github.com/pribylovaa/discussion-service/internal/storage"
	"github.com/pribylovaa/discussion-service/internal/thread"
)

// StatusTooEarly — сессия ещё загружается (RFC 8470).
const StatusTooEarly = http.StatusTooEarly

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// table — порядок важен: более конкретные причины проверяются раньше.
// ErrAuth с причиной PermissionDenied — 403, остальные ErrAuth — 401.
var table = []mapping{
	{service.ErrSessionNotFound, http.StatusNotFound, "session_not_found", "session not found"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden", "session belongs to another viewer"},
	{service.ErrTooManySessions, http.StatusTooManyRequests, "too_many_sessions", "too many sessions"},
	{service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "invalid argument"},

	{thread.ErrMutationInFlight, http.StatusConflict, "mutation_in_flight", "mutation already in flight"},
	{thread.ErrNotReady, StatusTooEarly, "not_ready", "session not ready"},
	{thread.ErrClosed, http.StatusGone, "closed", "session closed"},
	{storage.ErrPermissionDenied, http.StatusForbidden, "permission_denied", "permission denied"},
	{thread.ErrAuth, http.StatusUnauthorized, "unauthenticated", "unauthenticated"},
	{storage.ErrConflict, http.StatusConflict, "conflict", "conflict"},
	{thread.ErrValidation, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{thread.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
	{thread.ErrNetwork, http.StatusServiceUnavailable, "unavailable", "service unavailable"},

	{storage.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "unauthenticated"},
	{storage.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument", "invalid argument"},
	{storage.ErrNotFound, http.StatusNotFound, "not_found", "not found"},
	{storage.ErrUnavailable, http.StatusServiceUnavailable, "unavailable", "service unavailable"},
}

// ToHTTP конвертирует входную ошибку в HTTP-статус и унифицированный ответ для фронта.
//
// Поведение:
//   - err == nil - это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг.
//   - известная ошибка - маппим по table;
//   - прочее - 500/internal (без утечки деталей).
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if stderrors.Is(err, m.target) {
				return m.status, ErrorResponse{Error: APIError{Code: m.code, Message: m.message}}
			}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Error: APIError{
			Code:    "internal",
			Message: "internal error",
		},
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/discussion-service/internal/errors"
	"github.com/pribylovaa/discussion-service/internal/http/middleware"
	"github.com/pribylovaa/discussion-service/internal/service"
	"github.com/pribylovaa/discussion-service/internal/thread"
)

// Handlers агрегирует зависимости HTTP-слоя (реестр сессий).
type Handlers struct {
	Service *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{Service: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — локальная ошибка разбора запроса.
func errInvalidArgument() error {
	return service.ErrInvalidArgument
}

// session достаёт сессию {id} текущего зрителя; при ошибке ответ уже записан.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*thread.Session, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return nil, false
	}

	sess, err := h.Service.Get(id, middleware.ViewerFrom(r.Context()))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return nil, false
	}

	return sess, true
}

// commentID достаёт {cid}; при ошибке ответ уже записан.
func commentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cid := strings.TrimSpace(chi.URLParam(r, "cid"))
	if cid == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return "", false
	}

	return cid, true
}

// loadFailed — загрузка завершилась ошибкой, но сессия существует и показывает ERROR:
// клиенту отдаётся вид (с advisory), а не ошибка.
func loadFailed(sess *thread.Session, err error) bool {
	return sess != nil && err != nil && sess.State() == thread.StateError && !errors.Is(err, thread.ErrClosed)
}

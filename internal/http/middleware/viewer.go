package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pribylovaa/discussion-service/internal/pkg/log"
)

// ViewerHeader — заголовок, в котором апстрим-шлюз передаёт аутентифицированного пользователя.
const ViewerHeader = "X-User-Id"

// Viewer переносит X-User-Id в контекст (CtxViewerID) и в атрибуты логгера.
// Отсутствие заголовка — анонимный зритель: чтение разрешено, мутации отвергаются движком.
func Viewer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viewer := strings.TrimSpace(r.Header.Get(ViewerHeader))
			if viewer == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), CtxViewerID, viewer)
			ctx = log.With(ctx, "viewer_id", viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/discussion-service/internal/http/handlers"
	"github.com/pribylovaa/discussion-service/internal/http/middleware"
	"github.com/pribylovaa/discussion-service/internal/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования: request_id попадает в attrs
		middleware.Logging(opts.Logger),
		middleware.Viewer(),
	)

	h := handlers.New(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, opts.Timeout)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, opts.Timeout)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
// Поток снимков живёт дольше одного запроса и потому вне Timeout.
func registerRoutes(r chi.Router, h *handlers.Handlers, timeout time.Duration) {
	r.Get("/sessions/{id}/stream", h.Stream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		// sessions
		r.Post("/sessions", h.OpenSession)
		r.Get("/sessions/{id}", h.GetSession)
		r.Delete("/sessions/{id}", h.CloseSession)
		r.Put("/sessions/{id}/content", h.SwitchContent)
		r.Post("/sessions/{id}/refresh", h.Refresh)
		r.Post("/sessions/{id}/retry", h.Retry)
		r.Post("/sessions/{id}/seen", h.MarkSeen)
		r.Put("/sessions/{id}/moderation", h.SetModeration)
		r.Get("/sessions/{id}/draft", h.Draft)

		// comments
		r.Post("/sessions/{id}/comments", h.SubmitComment)
		r.Delete("/sessions/{id}/comments/{cid}", h.DeleteComment)
		r.Post("/sessions/{id}/comments/{cid}/reaction", h.ToggleReaction)
		r.Post("/sessions/{id}/comments/{cid}/collapse", h.ToggleCollapse)
		r.Post("/sessions/{id}/comments/{cid}/report", h.Report)
		r.Post("/sessions/{id}/comments/{cid}/hide", h.Hide)
		r.Delete("/sessions/{id}/comments/{cid}/hide", h.Unhide)
	})
}

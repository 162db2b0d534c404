// service содержит реестр сессий discussion-service: открытие, поиск, смена области и закрытие.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pribylovaa/discussion-service/internal/config"
	"github.com/pribylovaa/discussion-service/internal/metrics"
	"github.com/pribylovaa/discussion-service/internal/moderation"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
	"github.com/pribylovaa/discussion-service/internal/render"
	"github.com/pribylovaa/discussion-service/internal/storage"
	"github.com/pribylovaa/discussion-service/internal/thread"
)

var (
	// ErrSessionNotFound — сессии с таким id нет (или она уже закрыта).
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions — исчерпан лимит limits.max_sessions.
	ErrTooManySessions = errors.New("too many sessions")
	// ErrInvalidArgument — неверные входные параметры.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden — сессия принадлежит другому зрителю.
	ErrForbidden = errors.New("forbidden")
)

// Service — реестр сессий поверх общего хранилища.
type Service struct {
	storage  storage.Storage
	prefs    *moderation.Preferences
	renderer *render.Renderer
	cfg      config.Config

	// ctx — время жизни фоновых операций всех сессий.
	ctx context.Context

	mu       sync.RWMutex
	sessions map[string]*thread.Session
}

// New создаёт новый экземпляр Service. cache может быть nil (только удалённый список скрытых),
// renderer может быть nil (body_html не заполняется).
func New(ctx context.Context, st storage.Storage, cache storage.HiddenCache, renderer *render.Renderer, cfg config.Config) *Service {
	return &Service{
		storage:  st,
		prefs:    moderation.NewPreferences(cache, st),
		renderer: renderer,
		cfg:      cfg,
		ctx:      ctx,
		sessions: make(map[string]*thread.Session),
	}
}

func (s *Service) options() thread.Options {
	return thread.Options{
		Consistency:      thread.Consistency(s.cfg.Consistency.Mode),
		DeletedParent:    moderation.DeletedParentPolicy(s.cfg.Moderation.DeletedParent),
		Placeholders:     s.cfg.Moderation.Placeholders,
		AutoHideOnReport: s.cfg.Moderation.AutoHideOnReport,
		MaxBodyRunes:     s.cfg.Limits.MaxBody,
		FeedDebounce:     s.cfg.Feed.Debounce,
		ReactionsTimeout: s.cfg.Reactions.Timeout,
	}
}

// Open создаёт сессию (viewerID может быть пустым — анонимный просмотр) и выполняет первичную загрузку.
// Ошибка загрузки не закрывает сессию: она остаётся в ERROR и ждёт Retry.
func (s *Service) Open(ctx context.Context, contentID, viewerID string) (*thread.Session, error) {
	const op = "service/sessions/Open"

	contentID = strings.TrimSpace(contentID)
	viewerID = strings.TrimSpace(viewerID)
	lg := log.From(ctx).With("op", op, "content_id", contentID, "viewer_id", viewerID)

	if contentID == "" {
		lg.Warn("invalid argument: empty content_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	id := uuid.NewString()

	s.mu.Lock()
	if len(s.sessions) >= s.cfg.Limits.MaxSessions {
		s.mu.Unlock()
		lg.Warn("session limit reached", "limit", s.cfg.Limits.MaxSessions)
		return nil, fmt.Errorf("%s: %w", op, ErrTooManySessions)
	}

	sess := thread.New(log.Into(s.ctx, lg), id, contentID, viewerID, thread.Deps{
		Comments:    s.storage,
		Reactions:   s.storage,
		Feed:        s.storage,
		Preferences: s.prefs,
		Renderer:    s.renderer,
	}, s.options())
	s.sessions[id] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	if err := sess.Load(ctx); err != nil {
		lg.Warn("initial load failed, session left in error state", "session_id", id, "err", err)
		return sess, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("session opened", "session_id", id)

	return sess, nil
}

// Get возвращает сессию по id. Сессия с владельцем доступна только ему.
func (s *Service) Get(id, viewerID string) (*thread.Session, error) {
	const op = "service/sessions/Get"

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}

	if sess.ViewerID() != strings.TrimSpace(viewerID) {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return sess, nil
}

// SwitchContent переводит сессию на другую область.
func (s *Service) SwitchContent(ctx context.Context, id, viewerID, contentID string) (*thread.Session, error) {
	const op = "service/sessions/SwitchContent"

	sess, err := s.Get(id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if err := sess.SwitchContent(ctx, contentID); err != nil {
		return sess, fmt.Errorf("%s: %w", op, err)
	}

	return sess, nil
}

// Close закрывает и удаляет сессию.
func (s *Service) Close(ctx context.Context, id, viewerID string) error {
	const op = "service/sessions/Close"

	sess, err := s.Get(id, viewerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	sess.Close()
	log.From(ctx).Info("session closed", "op", op, "session_id", id)

	return nil
}

// Len — число открытых сессий.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Shutdown закрывает все сессии (graceful shutdown процесса).
func (s *Service) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*thread.Session)
	metrics.ActiveSessions.Set(0)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

// Package thread — подсистема обсуждения одной области для одного зрителя.
//
// Session владеет плоским авторитетным источником (последняя успешная загрузка), поверх
// которого каждый раз заново строится отображаемый лес:
//
//	records + transients -> tree.Build -> реакции -> moderation.Apply -> View
//
// Все асинхронные ответы (загрузки, подтверждения мутаций, события канала) перед применением
// сверяются с токеном области: после SwitchContent или Close их результат отбрасывается.
package thread

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/discussion-service/internal/feed"
	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/moderation"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
	"github.com/pribylovaa/discussion-service/internal/reactions"
	"github.com/pribylovaa/discussion-service/internal/render"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

const (
	defaultMaxBodyRunes = 10000
	liveOffAdvisory     = "live updates unavailable, refresh manually"
)

// Deps — внешние коллабораторы сессии.
type Deps struct {
	Comments  storage.Comments
	Reactions storage.Reactions
	// Feed может быть nil: сессия работает в режиме ручного обновления.
	Feed storage.Feed
	// Preferences может быть nil: скрытие живёт только в памяти сессии.
	Preferences *moderation.Preferences
	// Renderer может быть nil: body_html не заполняется.
	Renderer *render.Renderer
}

// Options — настройки поведения сессии.
type Options struct {
	Consistency      Consistency
	DeletedParent    moderation.DeletedParentPolicy
	Placeholders     bool
	AutoHideOnReport bool
	MaxBodyRunes     int
	FeedDebounce     time.Duration
	ReactionsTimeout time.Duration
}

// transient — оптимистичный узел отправляемого комментария.
// После подтверждения живёт до первой загрузки, начатой позже подтверждения,
// или до первой загрузки, в которой уже есть запись realID.
type transient struct {
	rec        models.Comment
	confirmed  bool
	confirmSeq uint64
	realID     string
}

// Session — экземпляр подсистемы для пары (зритель, область). Безопасна для конкурентного использования.
type Session struct {
	id       string
	viewerID string
	deps     Deps
	opts     Options
	likes    *reactions.Aggregator
	listener *feed.Listener
	group    singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
	newID  func() string

	mu        sync.Mutex
	closed    bool
	contentID string
	scope     uint64
	state     State
	lastErr   error
	advisory  string
	liveOff   bool
	autoHide  bool
	fetching  int

	records    []models.Comment
	total      int
	transients []transient
	reactions  map[string]models.Reaction

	hidden     moderation.Set
	tombstones moderation.Set
	collapsed  moderation.Set
	// viewed — id, уже показанные зрителю (nil до первой загрузки).
	viewed moderation.Set
	drafts map[string]string

	inflight map[mutationKey]struct{}

	// Версионирование авторитетных ответов (ConsistencyVersioned).
	seq         uint64
	fetchSeq    uint64
	hiddenVer   uint64
	reactionVer map[string]uint64

	view    *models.View
	version uint64
	subs    map[int]chan *models.View
	nextSub int
}

// New создаёт сессию в состоянии INIT. ctx задаёт время жизни фоновых операций
// (подписка на канал, обновления по событиям) и логгер.
func New(ctx context.Context, id, contentID, viewerID string, deps Deps, opts Options) *Session {
	if opts.Consistency == "" {
		opts.Consistency = ConsistencyVersioned
	}
	if opts.DeletedParent == "" {
		opts.DeletedParent = moderation.DeletedParentHide
	}
	if opts.MaxBodyRunes <= 0 {
		opts.MaxBodyRunes = defaultMaxBodyRunes
	}
	if deps.Preferences == nil {
		deps.Preferences = moderation.NewPreferences(nil, nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	ctx = log.With(ctx, "session_id", id, "viewer_id", viewerID)

	var src reactions.Source
	if deps.Reactions != nil {
		src = deps.Reactions
	}

	s := &Session{
		id:        id,
		viewerID:  viewerID,
		deps:      deps,
		opts:      opts,
		likes:     reactions.New(src, opts.ReactionsTimeout),
		listener:  feed.New(deps.Feed, opts.FeedDebounce),
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
		newID:     uuid.NewString,
		contentID: contentID,
		state:     StateInit,
		autoHide:  opts.AutoHideOnReport,
		subs:      make(map[int]chan *models.View),
	}
	s.resetScopeLocked()
	s.hidden = moderation.Set{}

	return s
}

// resetScopeLocked сбрасывает всё, что принадлежит текущей области.
func (s *Session) resetScopeLocked() {
	s.records = nil
	s.total = 0
	s.transients = nil
	s.reactions = make(map[string]models.Reaction)
	s.reactionVer = make(map[string]uint64)
	s.tombstones = moderation.Set{}
	s.collapsed = moderation.Set{}
	s.viewed = nil
	s.drafts = make(map[string]string)
	s.inflight = make(map[mutationKey]struct{})
	s.fetching = 0
	s.fetchSeq = 0
	s.lastErr = nil
	s.advisory = ""
	s.liveOff = false
}

func (s *Session) ID() string       { return s.id }
func (s *Session) ViewerID() string { return s.viewerID }

func (s *Session) ContentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.contentID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Err — ошибка, переведшая сессию в ERROR.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastErr
}

// View возвращает последний снимок. Снимки неизменяемы: каждый rebuild создаёт новые узлы.
func (s *Session) View() *models.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == nil {
		s.rebuildLocked("init")
	}

	return s.view
}

// Subscribe возвращает канал снимков (сразу содержит текущий) и функцию отписки.
// Медленный читатель получает только самый свежий снимок. Канал закрывается при Close.
func (s *Session) Subscribe() (<-chan *models.View, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan *models.View, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	if s.view == nil {
		s.rebuildLocked("init")
	}
	ch <- s.view

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()

			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Session) publishLocked(v *models.View) {
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- v:
			default:
			}
		}
	}
}

// Load выполняет первичную загрузку (INIT -> LOADING -> READY | ERROR) и подписывается на канал.
// Повторный Load на живой сессии равносилен Refresh.
func (s *Session) Load(ctx context.Context) error {
	const op = "thread/Session/Load"

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return wrap(op, ErrClosed)
	case s.state.Live():
		s.mu.Unlock()
		return s.Refresh(ctx)
	case s.state == StateLoading:
		s.mu.Unlock()
		return wrap(op, ErrNotReady)
	}
	s.state = StateLoading
	s.rebuildLocked("load")
	s.mu.Unlock()

	return s.loadAndSubscribe(ctx, op)
}

// Retry — ручной выход из ERROR.
func (s *Session) Retry(ctx context.Context) error {
	const op = "thread/Session/Retry"

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return wrap(op, ErrClosed)
	case s.state != StateError:
		s.mu.Unlock()
		return wrap(op, ErrNotReady)
	}
	s.state = StateLoading
	s.lastErr = nil
	s.rebuildLocked("retry")
	s.mu.Unlock()

	return s.loadAndSubscribe(ctx, op)
}

func (s *Session) loadAndSubscribe(ctx context.Context, op string) error {
	if err := s.reload(ctx, "load"); err != nil {
		return wrap(op, err)
	}

	s.startFeed()

	return nil
}

// Refresh — ручное обновление живой сессии. Одновременные вызовы разделяют одну загрузку;
// отмена ctx одного из них разделяемую загрузку не прерывает.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refreshShared(ctx, "refresh")
}

func (s *Session) refreshShared(ctx context.Context, trigger string) error {
	const op = "thread/Session/Refresh"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return wrap(op, ErrClosed)
	}
	if !s.state.Live() {
		s.mu.Unlock()
		return wrap(op, ErrNotReady)
	}
	key := s.contentID + "#" + uintKey(s.scope)
	s.mu.Unlock()

	shared := context.WithoutCancel(ctx)
	_, err, _ := s.group.Do(key, func() (any, error) {
		return nil, s.reload(shared, trigger)
	})
	if err != nil {
		return wrap(op, err)
	}

	return nil
}

// SwitchContent меняет область: старая подписка снимается, ответы в полёте отбрасываются,
// выполняется загрузка новой области.
func (s *Session) SwitchContent(ctx context.Context, contentID string) error {
	const op = "thread/Session/SwitchContent"

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return wrap(op, ErrClosed)
	}
	if contentID == "" {
		s.mu.Unlock()
		return wrap(op, ErrValidation)
	}

	s.scope++
	s.contentID = contentID
	s.resetScopeLocked()
	s.state = StateLoading
	s.rebuildLocked("switch")
	s.mu.Unlock()

	s.listener.Stop()

	log.From(s.ctx).Info("content scope switched", "op", op, "content_id", contentID)

	return s.loadAndSubscribe(ctx, op)
}

// Close закрывает сессию: подписка снимается, подписчики снимков отключаются,
// все ещё не пришедшие ответы будут отброшены.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.scope++
	s.state = StateClosed
	s.rebuildLocked("close")
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	s.listener.Close()
	s.cancel()
}

// startFeed подписывается на канал текущей области. Сбой не фатален: вид уже заполнен.
func (s *Session) startFeed() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	scope, contentID := s.scope, s.contentID
	s.mu.Unlock()

	err := s.listener.Start(s.ctx, contentID, scope, s.onFeed)

	s.mu.Lock()
	defer s.mu.Unlock()

	if scope != s.scope || s.closed {
		return
	}
	s.liveOff = err != nil
	s.rebuildLocked("feed")
}

// onFeed вызывается дебаунсером с пакетом событий своей области.
func (s *Session) onFeed(scope uint64, batch []models.FeedEvent) {
	const op = "thread/Session/onFeed"

	s.mu.Lock()
	if s.closed || scope != s.scope {
		s.mu.Unlock()
		return
	}
	for _, ev := range batch {
		if ev.Kind == models.FeedCommentDeleted {
			s.tombstones.Add(ev.CommentID)
		}
	}
	s.mu.Unlock()

	if err := s.refreshShared(s.ctx, "feed"); err != nil {
		log.From(s.ctx).Warn("feed-triggered refresh failed", "op", op, "events", len(batch), "err", err)
	}
}

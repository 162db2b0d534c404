// Package feed слушает канал изменений одной области и превращает поток событий
// в редкие (дебаунс) сигналы «перезагрузить всё».
//
// Модель согласованности грубая: события не применяются инкрементально, любой пакет
// событий приводит к полной перезагрузке и перестроению леса.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pribylovaa/discussion-service/internal/metrics"
	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

// TriggerFunc получает токен области, для которой собран пакет, и сами события.
type TriggerFunc func(scope uint64, batch []models.FeedEvent)

// Listener — подписка на одну область с дебаунсом. Безопасен для конкурентного использования.
type Listener struct {
	feed     storage.Feed
	debounce time.Duration

	mu        sync.Mutex
	closed    bool
	gen       uint64
	sub       storage.Subscription
	contentID string
	scope     uint64
	timer     *time.Timer
	batch     []models.FeedEvent
	onTrigger TriggerFunc
}

// New создаёт Listener. debounce <= 0 — каждое событие сразу приводит к триггеру.
func New(feed storage.Feed, debounce time.Duration) *Listener {
	return &Listener{feed: feed, debounce: debounce}
}

// Start подписывается на область contentID, предварительно сняв прежнюю подписку.
// scope — токен области вызывающей стороны: события с чужим токеном отбрасываются,
// Start с токеном старше уже виденного ничего не делает.
// Ошибка подписки не фатальна для вызывающего: вид остаётся в режиме ручного обновления.
func (l *Listener) Start(ctx context.Context, contentID string, scope uint64, onTrigger TriggerFunc) error {
	const op = "feed/Listener/Start"

	if l.feed == nil {
		metrics.FeedDegraded.Inc()
		return fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	}

	l.mu.Lock()
	if l.closed || scope < l.scope {
		l.mu.Unlock()
		return nil
	}
	prev := l.resetLocked()
	gen := l.gen
	l.contentID = contentID
	l.scope = scope
	l.onTrigger = onTrigger
	l.mu.Unlock()

	if prev != nil {
		_ = prev.Unsubscribe()
	}

	sub, err := l.feed.SubscribeToChanges(ctx, contentID, func(ev models.FeedEvent) {
		l.handle(gen, contentID, ev)
	})
	if err != nil {
		metrics.FeedDegraded.Inc()
		log.From(ctx).Warn("change feed unavailable, manual refresh only",
			"op", op, "content_id", contentID, "err", err)
		return fmt.Errorf("%s: %w", op, err)
	}

	l.mu.Lock()
	// Пока подписывались, подписку могли снять, перезапустить или закрыть.
	if l.gen != gen {
		l.mu.Unlock()
		_ = sub.Unsubscribe()
		return nil
	}
	l.sub = sub
	l.mu.Unlock()

	return nil
}

// Stop снимает подписку и отменяет отложенный триггер. После Stop возможен новый Start.
func (l *Listener) Stop() {
	l.mu.Lock()
	sub := l.resetLocked()
	l.mu.Unlock()

	if sub != nil {
		_ = sub.Unsubscribe()
	}
}

// Close — окончательный Stop: последующие и ещё не завершённые Start подписку не оставят.
func (l *Listener) Close() {
	l.mu.Lock()
	l.closed = true
	sub := l.resetLocked()
	l.mu.Unlock()

	if sub != nil {
		_ = sub.Unsubscribe()
	}
}

// resetLocked делает текущее поколение недействительным и возвращает подписку для снятия.
// Снимать её нужно уже без l.mu: Unsubscribe ждёт горутину потока, которая может ждать handle.
func (l *Listener) resetLocked() storage.Subscription {
	l.gen++
	sub := l.sub
	l.sub = nil
	l.onTrigger = nil
	l.batch = nil
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}

	return sub
}

// Active — есть ли действующая подписка.
func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.sub != nil
}

func (l *Listener) handle(gen uint64, contentID string, ev models.FeedEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.onTrigger == nil || l.gen != gen {
		return
	}

	if ev.ContentID != "" && ev.ContentID != contentID {
		return
	}

	metrics.FeedEvents.WithLabelValues(string(ev.Kind)).Inc()
	l.batch = append(l.batch, ev)

	if l.timer != nil {
		l.timer.Reset(l.debounce)
		return
	}

	l.timer = time.AfterFunc(l.debounce, func() { l.fire(gen) })
}

func (l *Listener) fire(gen uint64) {
	l.mu.Lock()
	if l.gen != gen || l.onTrigger == nil || len(l.batch) == 0 {
		l.mu.Unlock()
		return
	}

	batch := l.batch
	trigger := l.onTrigger
	scope := l.scope
	l.batch = nil
	l.timer = nil
	l.mu.Unlock()

	metrics.FeedRefreshes.Inc()
	trigger(scope, batch)
}

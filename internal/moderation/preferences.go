// Package moderation реализует пер-зрительский слой видимости поверх авторитетных данных:
// множество скрытых id (локальный кеш ∪ удалённый список), жалобы и наложение на лес.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

// Preferences — хранилище настроек модерации зрителя.
// Локальная копия авторитетна для мгновенного UI, удалённая запись — best-effort.
// Общий с внешней страницей настроек список разрешается по принципу «последняя запись побеждает».
type Preferences struct {
	local    storage.HiddenCache
	remote   storage.Moderation
	validate *validator.Validate
	now      func() time.Time

	// Hide/Unhide переписывают список целиком: изменения одного зрителя идут по одному.
	mu    sync.Mutex
	locks map[string]*viewerLock
}

type viewerLock struct {
	mu   sync.Mutex
	refs int
}

// NewPreferences создаёт Preferences. local может быть nil (только удалённый список).
func NewPreferences(local storage.HiddenCache, remote storage.Moderation) *Preferences {
	return &Preferences{
		local:    local,
		remote:   remote,
		validate: validator.New(),
		now:      time.Now,
		locks:    make(map[string]*viewerLock),
	}
}

// lockViewer захватывает блокировку списка зрителя и возвращает функцию освобождения.
func (p *Preferences) lockViewer(viewerID string) func() {
	p.mu.Lock()
	l, ok := p.locks[viewerID]
	if !ok {
		l = &viewerLock{}
		p.locks[viewerID] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, viewerID)
		}
		p.mu.Unlock()
	}
}

// Load возвращает объединение локального и удалённого списков.
// Сбой одного источника не фатален; ошибка возвращается, только если недоступны оба.
func (p *Preferences) Load(ctx context.Context, viewerID string) (Set, error) {
	const op = "moderation/Preferences/Load"

	if strings.TrimSpace(viewerID) == "" {
		return Set{}, nil
	}

	lg := log.From(ctx).With("op", op, "viewer_id", viewerID)

	var localIDs, remoteIDs []string
	var localErr, remoteErr error

	if p.local != nil {
		localIDs, localErr = p.local.Load(ctx, viewerID)
		if localErr != nil {
			lg.Warn("local hidden cache unavailable", "err", localErr)
		}
	}

	if p.remote != nil {
		remoteIDs, remoteErr = p.remote.Hidden(ctx, viewerID)
		if remoteErr != nil {
			lg.Warn("remote hidden list unavailable", "err", remoteErr)
		}
	}

	set := NewSet(localIDs, remoteIDs)

	failedLocal := p.local == nil || localErr != nil
	failedRemote := p.remote == nil || remoteErr != nil
	if failedLocal && failedRemote && (localErr != nil || remoteErr != nil) {
		return set, fmt.Errorf("%s: %w", op, errors.Join(localErr, remoteErr))
	}

	// Подтягиваем удалённые id в локальный кеш, чтобы следующий старт был мгновенным.
	if p.local != nil && localErr == nil && remoteErr == nil && len(set) != len(NewSet(localIDs)) {
		if err := p.local.Store(ctx, viewerID, set.Slice()); err != nil {
			lg.Warn("local hidden cache write-back failed", "err", err)
		}
	}

	return set, nil
}

// Hide добавляет id в скрытые и возвращает новое множество.
func (p *Preferences) Hide(ctx context.Context, viewerID, commentID string) (Set, error) {
	return p.update(ctx, "moderation/Preferences/Hide", viewerID, commentID, Set.Add)
}

// Unhide убирает id из скрытых. Если удалённая запись не удалась, id может вернуться
// при следующем Load (объединение), это допустимо для низкоценной настройки.
func (p *Preferences) Unhide(ctx context.Context, viewerID, commentID string) (Set, error) {
	return p.update(ctx, "moderation/Preferences/Unhide", viewerID, commentID, Set.Remove)
}

func (p *Preferences) update(ctx context.Context, op, viewerID, commentID string, apply func(Set, string)) (Set, error) {
	viewerID = strings.TrimSpace(viewerID)
	commentID = strings.TrimSpace(commentID)
	lg := log.From(ctx).With("op", op, "viewer_id", viewerID, "comment_id", commentID)

	if viewerID == "" {
		lg.Warn("unauthenticated: empty viewer_id")
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUnauthenticated)
	}

	if commentID == "" {
		lg.Warn("invalid argument: empty comment_id")
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	unlock := p.lockViewer(viewerID)
	defer unlock()

	cur, err := p.Load(ctx, viewerID)
	if err != nil {
		lg.Warn("hidden lists unavailable, applying to empty set", "err", err)
	}

	next := cur.Clone()
	apply(next, commentID)
	ids := next.Slice()

	if p.local != nil {
		if err := p.local.Store(ctx, viewerID, ids); err != nil {
			lg.Warn("local hidden cache write failed", "err", err)
		}
	}

	if p.remote != nil {
		if err := p.remote.SetHidden(ctx, viewerID, ids); err != nil {
			lg.Warn("remote hidden list write failed (best-effort)", "err", err)
		}
	}

	return next, nil
}

// Report валидирует и отправляет жалобу. Скрытие по жалобе решает вызывающая сторона
// и только после успешного ответа.
func (p *Preferences) Report(ctx context.Context, report models.Report) (*models.Report, error) {
	const op = "moderation/Preferences/Report"

	report.TargetID = strings.TrimSpace(report.TargetID)
	report.ReporterID = strings.TrimSpace(report.ReporterID)
	report.Details = strings.TrimSpace(report.Details)
	lg := log.From(ctx).With("op", op, "target_id", report.TargetID, "reason", string(report.Reason))

	if report.ReporterID == "" {
		lg.Warn("unauthenticated: empty reporter_id")
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUnauthenticated)
	}

	if err := p.validate.Struct(report); err != nil {
		lg.Warn("invalid report", "err", err)
		return nil, fmt.Errorf("%s: %w: %v", op, storage.ErrInvalidArgument, err)
	}

	if p.remote == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUnavailable)
	}

	if report.CreatedAt.IsZero() {
		report.CreatedAt = p.now().UTC()
	}

	out, err := p.remote.ReportContent(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

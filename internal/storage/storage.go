// Package storage описывает узкий контракт внешнего слоя данных/транспорта,
// через который движок обсуждений читает и пишет комментарии, лайки и модерацию.
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/discussion-service/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует (или уже удалена) в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument — хранилище отвергло вход (пустое тело, битый id).
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated — операция требует известного пользователя.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied — пользователь известен, но не вправе выполнить операцию.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable — источник временно недоступен (сеть, реплика, таймаут).
	ErrUnavailable = errors.New("unavailable")
)

// Comments — операции над плоскими записями комментариев.
type Comments interface {
	// FetchComments возвращает записи области contentID и число живых среди них.
	// Удалённые записи приходят маркерами (Deleted=true, пустое тело), чтобы любой зритель
	// видел одинаковую политику для ответов на удалённый комментарий.
	// Возможные ошибки: ErrNotFound (область неизвестна), ErrUnavailable.
	FetchComments(ctx context.Context, contentID string) ([]models.Comment, int, error)

	// SubmitComment создаёт запись. Ожидается: ContentID, AuthorID, Body, опционально ParentID.
	// Вычисляются хранилищем: ID, CreatedAt, UpdatedAt.
	// Возможные ошибки: ErrInvalidArgument, ErrUnauthenticated, ErrUnavailable.
	SubmitComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// DeleteComment удаляет запись; только автор. Возможные ошибки:
	// ErrNotFound, ErrUnauthenticated, ErrPermissionDenied.
	DeleteComment(ctx context.Context, commentID, requesterID string) error
}

// Reactions — лайки.
type Reactions interface {
	// ToggleReaction переключает лайк зрителя и возвращает авторитетные {liked, count}.
	// Возможные ошибки: ErrUnauthenticated, ErrNotFound, ErrUnavailable.
	ToggleReaction(ctx context.Context, commentID, viewerID string) (models.ReactionState, error)

	// LikesFor возвращает рёбра лайков для набора комментариев.
	LikesFor(ctx context.Context, commentIDs []string) ([]models.LikeEdge, error)
}

// Moderation — удалённое хранилище пер-зрительских настроек модерации и жалоб.
type Moderation interface {
	// Hidden возвращает удалённо сохранённый список скрытых id зрителя (пустой, если нет).
	Hidden(ctx context.Context, viewerID string) ([]string, error)
	// SetHidden полностью заменяет удалённый список скрытых id зрителя.
	SetHidden(ctx context.Context, viewerID string, ids []string) error
	// ReportContent сохраняет жалобу. Ошибки: ErrInvalidArgument, ErrNotFound, ErrUnavailable.
	ReportContent(ctx context.Context, report models.Report) (*models.Report, error)
}

// HiddenCache — локально сохраняемый кеш скрытых id (авторитетен для мгновенного UI).
type HiddenCache interface {
	Load(ctx context.Context, viewerID string) ([]string, error)
	Store(ctx context.Context, viewerID string, ids []string) error
}

// Subscription — дескриптор подписки на канал изменений.
type Subscription interface {
	Unsubscribe() error
}

// Feed — канал push-уведомлений, ограниченный одной областью contentID.
type Feed interface {
	// SubscribeToChanges подписывает onEvent на изменения комментариев и лайков области.
	// onEvent может вызываться из произвольной горутины.
	SubscribeToChanges(ctx context.Context, contentID string, onEvent func(models.FeedEvent)) (Subscription, error)
}

// Storage — полный набор контрактов, который реализует боевое хранилище.
type Storage interface {
	Comments
	Reactions
	Moderation
	Feed

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}

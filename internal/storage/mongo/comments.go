package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

// commentDoc — документ коллекции comments. Удаление мягкое: is_deleted=true, тело очищается,
// чтобы канал изменений получил полный документ с content_id.
type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ContentID string             `bson:"content_id"`
	AuthorID  string             `bson:"author_id"`
	Body      string             `bson:"body"`
	ParentID  string             `bson:"parent_id"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
	Edited    bool               `bson:"edited"`
	IsDeleted bool               `bson:"is_deleted"`
}

func (d commentDoc) toModel() models.Comment {
	return models.Comment{
		ID:        d.ID.Hex(),
		ContentID: d.ContentID,
		AuthorID:  d.AuthorID,
		Body:      d.Body,
		ParentID:  d.ParentID,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
		Edited:    d.Edited,
		Deleted:   d.IsDeleted,
	}
}

// FetchComments возвращает комментарии области в порядке created_at ASC.
// Удалённые приходят маркерами (Deleted=true) и не входят в total.
// Лес строится выше, здесь — только плоский список.
func (m *Mongo) FetchComments(ctx context.Context, contentID string) ([]models.Comment, int, error) {
	const op = "storage/mongo/FetchComments"

	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return nil, 0, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	cur, err := m.comments.Find(ctx,
		bson.D{{Key: "content_id", Value: contentID}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: find: %w", op, wrapUnavailable(err))
	}
	defer cur.Close(ctx)

	var items []models.Comment
	live := 0
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("%s: decode: %w", op, err)
		}
		if !doc.IsDeleted {
			live++
		}
		items = append(items, doc.toModel())
	}

	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: cursor: %w", op, wrapUnavailable(err))
	}

	return items, live, nil
}

// SubmitComment создаёт комментарий (корневой или ответ).
//   - тело нормализуется (TrimSpace) и не должно быть пустым;
//   - родитель должен существовать, быть живым и жить в той же области.
func (m *Mongo) SubmitComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/SubmitComment"

	comment.Body = strings.TrimSpace(comment.Body)
	comment.ContentID = strings.TrimSpace(comment.ContentID)
	comment.AuthorID = strings.TrimSpace(comment.AuthorID)
	comment.ParentID = strings.TrimSpace(comment.ParentID)

	if comment.AuthorID == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUnauthenticated)
	}

	if comment.Body == "" || comment.ContentID == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	if comment.ParentID != "" {
		parent, err := m.liveComment(ctx, comment.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%s: parent: %w", op, err)
		}

		if parent.ContentID != comment.ContentID {
			return nil, fmt.Errorf("%s: parent in another scope: %w", op, storage.ErrInvalidArgument)
		}
	}

	now := toMS(m.now())
	doc := commentDoc{
		ContentID: comment.ContentID,
		AuthorID:  comment.AuthorID,
		Body:      comment.Body,
		ParentID:  comment.ParentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := m.comments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: insert: %w", op, wrapUnavailable(err))
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	doc.ID = oid
	out := doc.toModel()

	return &out, nil
}

// DeleteComment мягко удаляет комментарий. Удалять может только автор:
// чужой комментарий — storage.ErrPermissionDenied, отсутствующий — storage.ErrNotFound.
func (m *Mongo) DeleteComment(ctx context.Context, commentID, requesterID string) error {
	const op = "storage/mongo/DeleteComment"

	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrUnauthenticated)
	}

	doc, err := m.liveComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if doc.AuthorID != requesterID {
		return fmt.Errorf("%s: %w", op, storage.ErrPermissionDenied)
	}

	res, err := m.comments.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: doc.ID}, {Key: "author_id", Value: requesterID}, {Key: "is_deleted", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_deleted", Value: true},
			{Key: "body", Value: ""},
			{Key: "updated_at", Value: toMS(m.now())},
		}}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, wrapUnavailable(err))
	}

	// Между чтением и записью комментарий успели удалить.
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// liveComment возвращает живой (не удалённый) комментарий.
// Некорректный формат id трактуется как «нет такой записи».
func (m *Mongo) liveComment(ctx context.Context, id string) (*commentDoc, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, storage.ErrNotFound
	}

	var doc commentDoc
	err = m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "is_deleted", Value: false}}).Decode(&doc)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, wrapUnavailable(err)
	}

	return &doc, nil
}

// wrapUnavailable помечает сетевые/серверные сбои драйвера как storage.ErrUnavailable,
// сохраняя исходную ошибку в цепочке.
func wrapUnavailable(err error) error {
	if err == nil || errors.Is(err, storage.ErrUnavailable) {
		return err
	}

	if mongodriver.IsNetworkError(err) || mongodriver.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongodriver.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}

	return err
}

package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

// likeDoc — ребро лайка. Одна запись на пару (комментарий, пользователь):
// снятие лайка переводит active в false, а не удаляет документ, чтобы
// канал изменений видел content_id в полном документе.
type likeDoc struct {
	ID        string    `bson:"_id"`
	CommentID string    `bson:"comment_id"`
	UserID    string    `bson:"user_id"`
	ContentID string    `bson:"content_id"`
	Active    bool      `bson:"active"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func likeID(commentID, userID string) string {
	return commentID + ":" + userID
}

// ToggleReaction атомарно переключает лайк пользователя (upsert с конвейером обновления)
// и возвращает авторитетные {liked, count}.
func (m *Mongo) ToggleReaction(ctx context.Context, commentID, viewerID string) (models.ReactionState, error) {
	const op = "storage/mongo/ToggleReaction"

	viewerID = strings.TrimSpace(viewerID)
	if viewerID == "" {
		return models.ReactionState{}, fmt.Errorf("%s: %w", op, storage.ErrUnauthenticated)
	}

	comment, err := m.liveComment(ctx, commentID)
	if err != nil {
		return models.ReactionState{}, fmt.Errorf("%s: %w", op, err)
	}
	commentID = comment.ID.Hex()

	update := mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "comment_id", Value: bson.D{{Key: "$literal", Value: commentID}}},
			{Key: "user_id", Value: bson.D{{Key: "$literal", Value: viewerID}}},
			{Key: "content_id", Value: bson.D{{Key: "$literal", Value: comment.ContentID}}},
			{Key: "active", Value: bson.D{{Key: "$not", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$active", false}}},
			}}}},
			{Key: "updated_at", Value: toMS(m.now())},
		}}},
	}

	var doc likeDoc
	err = m.likes.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: likeID(commentID, viewerID)}},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return models.ReactionState{}, fmt.Errorf("%s: toggle: %w", op, wrapUnavailable(err))
	}

	count, err := m.likes.CountDocuments(ctx, bson.D{{Key: "comment_id", Value: commentID}, {Key: "active", Value: true}})
	if err != nil {
		return models.ReactionState{}, fmt.Errorf("%s: count: %w", op, wrapUnavailable(err))
	}

	return models.ReactionState{Liked: doc.Active, Count: int(count)}, nil
}

// LikesFor возвращает активные рёбра лайков для набора комментариев.
func (m *Mongo) LikesFor(ctx context.Context, commentIDs []string) ([]models.LikeEdge, error) {
	const op = "storage/mongo/LikesFor"

	if len(commentIDs) == 0 {
		return []models.LikeEdge{}, nil
	}

	cur, err := m.likes.Find(ctx, bson.D{
		{Key: "comment_id", Value: bson.D{{Key: "$in", Value: commentIDs}}},
		{Key: "active", Value: true},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, wrapUnavailable(err))
	}
	defer cur.Close(ctx)

	edges := make([]models.LikeEdge, 0, len(commentIDs))
	for cur.Next(ctx) {
		var doc likeDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		edges = append(edges, models.LikeEdge{CommentID: doc.CommentID, UserID: doc.UserID})
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, wrapUnavailable(err))
	}

	return edges, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/discussion-service/internal/models"
	"github.com/pribylovaa/discussion-service/internal/pkg/log"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

// changeEvent — нужная часть события change stream.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	FullDocument changeDoc `bson:"fullDocument"`
}

// changeDoc — объединение полей commentDoc и likeDoc, достаточное для FeedEvent.
// _id у комментариев — ObjectID, у лайков — строка, поэтому RawValue.
type changeDoc struct {
	ID        bson.RawValue `bson:"_id"`
	ContentID string        `bson:"content_id"`
	CommentID string        `bson:"comment_id"`
	IsDeleted bool          `bson:"is_deleted"`
}

// subscription — запущенный change stream одной области.
type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Unsubscribe() error {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})

	return nil
}

// SubscribeToChanges открывает change stream базы с фильтром по области contentID.
// Требует replica set; в одиночном режиме возвращает storage.ErrUnavailable, и сессия
// продолжает работать с ручным обновлением.
func (m *Mongo) SubscribeToChanges(ctx context.Context, contentID string, onEvent func(models.FeedEvent)) (storage.Subscription, error) {
	const op = "storage/mongo/SubscribeToChanges"

	contentID = strings.TrimSpace(contentID)
	if contentID == "" || onEvent == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	pipeline := mongodriver.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: bson.A{commentsCollection, likesCollection}}}},
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
			{Key: "fullDocument.content_id", Value: contentID},
		}}},
	}

	subCtx, cancel := context.WithCancel(ctx)

	stream, err := m.db.Watch(subCtx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	lg := log.From(ctx).With("op", op, "content_id", contentID)

	go func() {
		defer close(sub.done)
		defer stream.Close(context.Background())

		for stream.Next(subCtx) {
			var ev changeEvent
			if err := stream.Decode(&ev); err != nil {
				lg.Warn("decode change event failed", "err", err)
				continue
			}

			if fe, ok := toFeedEvent(ev, m.now()); ok {
				onEvent(fe)
			}
		}

		if err := stream.Err(); err != nil && !errors.Is(err, context.Canceled) && subCtx.Err() == nil {
			lg.Warn("change stream stopped", "err", err)
		}
	}()

	return sub, nil
}

// toFeedEvent переводит событие change stream в событие канала.
// Неизвестные коллекции и документы без области отбрасываются.
func toFeedEvent(ev changeEvent, at time.Time) (models.FeedEvent, bool) {
	doc := ev.FullDocument
	if doc.ContentID == "" {
		return models.FeedEvent{}, false
	}

	out := models.FeedEvent{ContentID: doc.ContentID, At: at.UTC()}

	switch ev.NS.Coll {
	case commentsCollection:
		oid, ok := doc.ID.ObjectIDOK()
		if !ok {
			return models.FeedEvent{}, false
		}
		out.CommentID = oid.Hex()

		switch {
		case doc.IsDeleted:
			out.Kind = models.FeedCommentDeleted
		case ev.OperationType == "insert":
			out.Kind = models.FeedCommentCreated
		default:
			out.Kind = models.FeedCommentUpdated
		}
	case likesCollection:
		out.CommentID = doc.CommentID
		out.Kind = models.FeedReactionChanged
	default:
		return models.FeedEvent{}, false
	}

	return out, true
}

package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pribylovaa/discussion-service/internal/config"
	"github.com/pribylovaa/discussion-service/internal/storage"
)

const (
	commentsCollection = "comments"
	likesCollection    = "likes"
	hiddenCollection   = "hidden"
	reportsCollection  = "reports"
	defaultDBName      = "discussion"
)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
// Реализует storage.Storage целиком: комментарии, лайки, модерацию и канал изменений.
type Mongo struct {
	cfg      *config.Config
	client   *mongodriver.Client
	db       *mongodriver.Database
	comments *mongodriver.Collection
	likes    *mongodriver.Collection
	hidden   *mongodriver.Collection
	reports  *mongodriver.Collection

	now func() time.Time
}

var _ storage.Storage = (*Mongo)(nil)

// New подключается к MongoDB, проверяет его, подготавливает коллекции и обеспечивает индексацию.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(cfg.DB.URL))

	m := &Mongo{
		cfg:      cfg,
		client:   cli,
		db:       db,
		comments: db.Collection(commentsCollection),
		likes:    db.Collection(likesCollection),
		hidden:   db.Collection(hiddenCollection),
		reports:  db.Collection(reportsCollection),
		now:      time.Now,
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping — проверка готовности для /healthz.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// ensureIndexes создает индексы, необходимые сервису.
// - Загрузка области (живые и маркеры удалённых): content_id + created_at(asc)
// - Агрегация лайков: comment_id + active
// - Одна жалоба на комментарий от одного пользователя: target_id + reporter_id (unique)
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	if _, err := m.comments.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "content_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("content_created_asc"),
		},
	}); err != nil {
		return fmt.Errorf("mongo ensure indexes (comments): %w", err)
	}

	if _, err := m.likes.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "comment_id", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index().SetName("comment_active"),
		},
	}); err != nil {
		return fmt.Errorf("mongo ensure indexes (likes): %w", err)
	}

	if _, err := m.reports.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "target_id", Value: 1}, {Key: "reporter_id", Value: 1}},
			Options: options.Index().SetName("target_reporter_unique").SetUnique(true),
		},
	}); err != nil {
		return fmt.Errorf("mongo ensure indexes (reports): %w", err)
	}

	return nil
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает разумное значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

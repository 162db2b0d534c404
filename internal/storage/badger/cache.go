// Package badger — локальный персистентный кеш скрытых id зрителей поверх BadgerDB.
//
// Кеш авторитетен для мгновенного UI: Hide/Unhide пишут сюда синхронно,
// удалённый список в Mongo обновляется best-effort.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/pribylovaa/discussion-service/internal/storage"
)

const hiddenPrefix = "hidden/"

// Config — параметры открытия кеша.
type Config struct {
	// Path — каталог файлов БД; игнорируется при InMemory.
	Path string
	// InMemory — без записи на диск (тесты, эфемерные инстансы).
	InMemory bool
	// Logger — логгер внутренних сообщений badger; nil — отключить.
	Logger *slog.Logger
	// GCInterval — период сборки мусора value log; 0 — не запускать.
	GCInterval time.Duration
}

// Cache — реализация storage.HiddenCache.
type Cache struct {
	db     *badger.DB
	stopGC chan struct{}
	doneGC chan struct{}
}

var _ storage.HiddenCache = (*Cache)(nil)

// badgerLogger адаптирует slog к интерфейсу логгера badger.
type badgerLogger struct {
	lg *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) { l.lg.Error(fmt.Sprintf(format, args...)) }
func (l badgerLogger) Warningf(format string, args ...any) {
	l.lg.Warn(fmt.Sprintf(format, args...))
}
func (l badgerLogger) Infof(format string, args ...any)  { l.lg.Info(fmt.Sprintf(format, args...)) }
func (l badgerLogger) Debugf(format string, args ...any) { l.lg.Debug(fmt.Sprintf(format, args...)) }

// Open открывает (или создаёт) кеш.
func Open(cfg Config) (*Cache, error) {
	const op = "storage/badger/Open"

	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("%s: path is required for persistent cache", op)
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("%s: create dir %s: %w", op, cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}

	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{lg: cfg.Logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c := &Cache{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		c.stopGC = make(chan struct{})
		c.doneGC = make(chan struct{})
		go c.runGC(cfg.GCInterval, cfg.Logger)
	}

	return c, nil
}

// InMemory — кеш без диска.
func InMemory() (*Cache, error) {
	return Open(Config{InMemory: true})
}

func (c *Cache) runGC(interval time.Duration, lg *slog.Logger) {
	defer close(c.doneGC)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite — сборка не понадобилась.
			if err := c.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) && lg != nil {
				lg.Warn("badger value log GC failed", "err", err)
			}
		}
	}
}

// Load возвращает сохранённые id зрителя; отсутствие записи — пустой список.
func (c *Cache) Load(ctx context.Context, viewerID string) ([]string, error) {
	const op = "storage/badger/Load"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if viewerID == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	var ids []string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hiddenKey(viewerID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ids)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

// Store полностью заменяет список id зрителя; пустой список удаляет запись.
func (c *Cache) Store(ctx context.Context, viewerID string, ids []string) error {
	const op = "storage/badger/Store"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if viewerID == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidArgument)
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		if len(ids) == 0 {
			return txn.Delete(hiddenKey(viewerID))
		}

		val, err := json.Marshal(ids)
		if err != nil {
			return err
		}

		return txn.Set(hiddenKey(viewerID), val)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close останавливает GC и закрывает БД.
func (c *Cache) Close() error {
	if c.stopGC != nil {
		close(c.stopGC)
		<-c.doneGC
		c.stopGC = nil
	}

	return c.db.Close()
}

func hiddenKey(viewerID string) []byte {
	return []byte(hiddenPrefix + viewerID)
}

// config реализует конфигурацию discussion-service: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	GRPC        GRPCConfig        `yaml:"grpc"`
	HTTP        HTTPConfig        `yaml:"http"`
	DB          DBConfig          `yaml:"db"`
	Cache       CacheConfig       `yaml:"cache"`
	Feed        FeedConfig        `yaml:"feed"`
	Reactions   ReactionsConfig   `yaml:"reactions"`
	Moderation  ModerationConfig  `yaml:"moderation"`
	Consistency ConsistencyConfig `yaml:"consistency"`
	Limits      LimitsConfig      `yaml:"limits"`
	Render      RenderConfig      `yaml:"render"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
}

// TimeoutConfig — сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// GRPCConfig — gRPC-сервер (health-check сервиса).
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50055"`
}

// HTTPConfig — HTTP API сессий, websocket-поток, health и метрики.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8085"`
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — настройки подключения к MongoDB.
// Канал изменений использует change streams: нужен replica set.
type DBConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL" env-required:"true"`
}

// CacheConfig — локальный кеш скрытых id (badger).
type CacheConfig struct {
	Path     string `yaml:"path"      env:"CACHE_PATH"      env-default:"./data/hidden"`
	InMemory bool   `yaml:"in_memory" env:"CACHE_IN_MEMORY" env-default:"false"`
}

// FeedConfig — канал изменений.
type FeedConfig struct {
	// Пауза дебаунса: пачка событий внутри окна даёт одну перезагрузку.
	Debounce time.Duration `yaml:"debounce" env:"FEED_DEBOUNCE" env-default:"250ms"`
}

// ReactionsConfig — загрузка лайков.
type ReactionsConfig struct {
	// Timeout — после него счётчики деградируют до нулей, остальной конвейер не ждёт.
	Timeout time.Duration `yaml:"timeout" env:"REACTIONS_TIMEOUT" env-default:"2s"`
}

// ModerationConfig — параметры слоя модерации.
type ModerationConfig struct {
	AutoHideOnReport bool `yaml:"auto_hide_on_report" env:"AUTO_HIDE_ON_REPORT" env-default:"false"`
	// DeletedParent — судьба ответов удалённого родителя: hide (мягкое каскадное скрытие) или promote.
	DeletedParent string `yaml:"deleted_parent" env:"DELETED_PARENT" env-default:"hide"`
	Placeholders  bool   `yaml:"placeholders"   env:"HIDDEN_PLACEHOLDERS" env-default:"false"`
}

// ConsistencyConfig — порядок применения авторитетных ответов: versioned | arrival.
type ConsistencyConfig struct {
	Mode string `yaml:"mode" env:"CONSISTENCY_MODE" env-default:"versioned"`
}

// LimitsConfig — лимиты.
type LimitsConfig struct {
	// Максимальная длина тела комментария в рунах.
	MaxBody int `yaml:"max_body"     env:"MAX_BODY"     env-default:"10000"`
	// Максимальное число одновременно открытых сессий.
	MaxSessions int `yaml:"max_sessions" env:"MAX_SESSIONS" env-default:"10000"`
}

// RenderConfig — отрисовка markdown-тела.
type RenderConfig struct {
	// PlainText — не заполнять body_html (клиент рисует тело сам).
	PlainText bool `yaml:"plain_text" env:"RENDER_PLAIN_TEXT" env-default:"false"`
	CacheSize int  `yaml:"cache_size" env:"RENDER_CACHE_SIZE" env-default:"4096"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)

	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	if c.DB.URL == "" {
		return fmt.Errorf("db.url is required")
	}

	if !c.Cache.InMemory && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required unless cache.in_memory is set")
	}

	if c.Feed.Debounce < 10*time.Millisecond || c.Feed.Debounce > 10*time.Second {
		return fmt.Errorf("feed.debounce must be within [10ms, 10s]")
	}

	if c.Reactions.Timeout <= 0 {
		return fmt.Errorf("reactions.timeout must be > 0")
	}

	switch c.Moderation.DeletedParent {
	case "hide", "promote":
	default:
		return fmt.Errorf("moderation.deleted_parent must be hide or promote, got %q", c.Moderation.DeletedParent)
	}

	switch c.Consistency.Mode {
	case "versioned", "arrival":
	default:
		return fmt.Errorf("consistency.mode must be versioned or arrival, got %q", c.Consistency.Mode)
	}

	if c.Limits.MaxBody <= 0 {
		return fmt.Errorf("limits.max_body must be > 0")
	}

	if c.Limits.MaxSessions <= 0 {
		return fmt.Errorf("limits.max_sessions must be > 0")
	}

	if c.Render.CacheSize <= 0 {
		return fmt.Errorf("render.cache_size must be > 0")
	}

	if c.Timeouts.Service <= 0 {
		return fmt.Errorf("timeouts.service must be > 0")
	}

	return nil
}

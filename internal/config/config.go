package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"
)

// Configはアプリ全体の設定
type Config struct {
	Port   string `envconfig:"PORT" default:"8080"`  // サーバーポート
	AppEnv string `envconfig:"APP_ENV" default:"dev"` // dev/prod

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json/console

	DB DBConfig

	RedisURL string `envconfig:"REDIS_URL"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"` // JWT署名シークレット
	AccessTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`

	// ログイン後の振り分けに使う
	AdminEmail  string `envconfig:"ADMIN_EMAIL"`
	WorkerEmail string `envconfig:"WORKER_EMAIL"`

	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	CartStore    string        `envconfig:"CART_STORE" default:"memory"` // memory/redis
	CookieSecure bool          `envconfig:"COOKIE_SECURE" default:"true"`
}

type DBConfig struct {
	Driver string `envconfig:"DB_DRIVER" default:"postgres"` // postgres/sqlite
	URL    string `envconfig:"DATABASE_URL"`

	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	Name     string `envconfig:"POSTGRES_DB" default:"restaurant"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	// sqliteのときのファイル
	SQLitePath string `envconfig:"SQLITE_PATH" default:"restaurant.db"`
}

// DSNは接続文字列を返す（DATABASE_URLが最優先）
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (c Config) IsProd() bool {
	return strings.EqualFold(c.AppEnv, AppEnvProd)
}

// Loadは.env（あれば）と環境変数から読む
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		// .envが無いのはエラーにしない
		_ = godotenv.Load(envFiles...)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	//必須チェック
	switch cfg.DB.Driver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite")
	}
	switch cfg.CartStore {
	case CartStoreMemory:
	case CartStoreRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required when CART_STORE=redis")
		}
	default:
		return Config{}, fmt.Errorf("CART_STORE must be memory or redis")
	}
	if cfg.IsProd() && len(cfg.JWTSecret) < 32 {
		return Config{}, fmt.Errorf("JWT_SECRET must be at least 32 chars in prod")
	}

	return cfg, nil
}

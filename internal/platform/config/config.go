// Package config は環境変数からサーバー設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config はサーバーの実行時設定をまとめて保持します。
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"8020"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	OAuth OAuthConfig `envPrefix:"OAUTH2_"`

	DB        DBConfig      `envPrefix:"DB_"`
	Redis     RedisConfig   `envPrefix:"REDIS_"`
	Storage   StorageConfig `envPrefix:"STORAGE_"`
	S3        S3Config      `envPrefix:"S3_"`
	UploadDir string        `env:"UPLOAD_DIR" envDefault:"uploads"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3020"`
	// TrustedProxies はX-Forwarded-Forを信頼するプロキシのIP/CIDRです。空なら接続元アドレスのみを使います。
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`

	ProviderTimeout time.Duration `env:"HTTP_PROVIDER_TIMEOUT" envDefault:"10s"`
}

// OAuthConfig は外部ログイン（OAuth2）の設定です。
type OAuthConfig struct {
	// AuthorizedRedirectURI は発行したトークンを受け取るフロントエンドのURLです。
	AuthorizedRedirectURI string        `env:"AUTHORIZED_REDIRECT_URI" envDefault:"http://localhost:3020/oauth2/redirect"`
	StateTTL              time.Duration `env:"STATE_TTL" envDefault:"10m"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubRedirectURI  string `env:"GITHUB_REDIRECT_URI"`
}

// DBConfig はデータベースの種類と接続先を表します。
type DBConfig struct {
	Driver        string `env:"DRIVER" envDefault:"sqlite"`
	DSN           string `env:"DSN"`
	Host          string `env:"HOST" envDefault:"127.0.0.1"`
	Port          string `env:"PORT" envDefault:"5432"`
	User          string `env:"USER" envDefault:"kanban"`
	Password      string `env:"PASSWORD"`
	Name          string `env:"NAME" envDefault:"kanban"`
	SSLMode       string `env:"SSLMODE" envDefault:"disable"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// RedisConfig は任意のRedis接続先です。Hostが空の場合Redisは使用しません。
type RedisConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
}

// StorageConfig はプロフィール画像の保存先を選択します。
type StorageConfig struct {
	Driver string `env:"DRIVER" envDefault:"local"`
}

// S3Config はプロフィール画像用のS3互換バケットの設定です。
type S3Config struct {
	Bucket        string `env:"BUCKET"`
	Region        string `env:"REGION" envDefault:"us-east-1"`
	Endpoint      string `env:"ENDPOINT"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// Load は .env があれば読み込み、環境変数をConfigへパースします。
// 返却されるConfigは検証済みです。
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env が見つからないため、システム環境変数を使用します")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate は起動を中止すべき設定エラーをまとめて返します。
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if err := ValidateRedirectBase(c.OAuth.AuthorizedRedirectURI); err != nil {
		errs = append(errs, err)
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}

// ValidateRedirectBase はuriがスキームとホストを持つ絶対URLであることを確認します。
func ValidateRedirectBase(uri string) error {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return fmt.Errorf("invalid OAUTH2_AUTHORIZED_REDIRECT_URI %q: %w", uri, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid OAUTH2_AUTHORIZED_REDIRECT_URI %q: scheme must be http or https", uri)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid OAUTH2_AUTHORIZED_REDIRECT_URI %q: missing host", uri)
	}
	return nil
}

// RedisAddr は "host:port" を返します。Redis未設定の場合は空文字を返します。
func (c Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return c.Redis.Host + ":" + c.Redis.Port
}

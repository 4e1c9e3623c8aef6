package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	UploadDisk  = "disk"
	UploadMinio = "minio"

	devJWTSecret = "hostelfix-dev-secret-change-me"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"3000"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	StorageDriver   string        `env:"STORAGE_DRIVER" envDefault:"mongo"`
	MongoURI        string        `env:"MONGODB_URI"`
	MongoURILegacy  string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string        `env:"MONGODB_DATABASE" envDefault:"hostel_maintenance"`
	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"host=localhost user=user password=password dbname=hostelfix port=5432 sslmode=disable"`
	StrictScope     bool          `env:"STRICT_HOSTEL_SCOPE" envDefault:"false"`
	PurgeOnDelete   bool          `env:"PURGE_PHOTOS_ON_DELETE" envDefault:"false"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Redis    RedisConfig
	Uploads  UploadConfig
	Minio    MinioConfig
	Telegram TelegramConfig
	Limit    RateLimitConfig
	Log      LogConfig
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type UploadConfig struct {
	Backend  string `env:"UPLOAD_BACKEND" envDefault:"disk"`
	Dir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"hostelfix-uploads"`
	UseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`
}

type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `env:"TELEGRAM_CHAT_ID"`
	Lang     string `env:"TELEGRAM_LANG" envDefault:"en"`
}

// Enabled reports whether both the bot token and the target chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != 0
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	Always   bool          `env:"RATE_LIMIT_ALWAYS" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load(files ...string) (*Config, bool, error) {
	found := godotenv.Load(files...) == nil

	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, found, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, found, err
	}
	return cfg, found, nil
}

func (c *Config) applyDefaults() {
	c.AppEnv = strings.ToLower(strings.TrimSpace(c.AppEnv))
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.Uploads.Backend = strings.ToLower(strings.TrimSpace(c.Uploads.Backend))

	if c.MongoURI == "" {
		c.MongoURI = c.MongoURILegacy
	}
	if c.JWTSecret == "" && c.AppEnv != EnvProduction {
		c.JWTSecret = devJWTSecret
	}
	if c.JWTTTL <= 0 {
		c.JWTTTL = DefaultTokenTTL
	}
	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = DefaultUploadMaxBytes
	}
}

// Validate rejects unknown enum values and unsafe production settings.
func (c *Config) Validate() error {
	var errs []error

	switch c.AppEnv {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV: unknown environment %q", c.AppEnv))
	}

	switch c.StorageDriver {
	case StorageMongo, StoragePostgres, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER: unknown driver %q", c.StorageDriver))
	}

	switch c.Uploads.Backend {
	case UploadDisk:
	case UploadMinio:
		if c.Minio.Endpoint == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT is required when UPLOAD_BACKEND=minio"))
		}
	default:
		errs = append(errs, fmt.Errorf("UPLOAD_BACKEND: unknown backend %q", c.Uploads.Backend))
	}

	if c.AppEnv == EnvProduction && c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.Limit.Requests <= 0 || c.Limit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool  { return c.AppEnv == EnvProduction }
func (c *Config) IsDevelopment() bool { return c.AppEnv == EnvDevelopment }

// RateLimitEnabled mirrors the production-only limiter, unless forced on.
func (c *Config) RateLimitEnabled() bool {
	return c.IsProduction() || c.Limit.Always
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

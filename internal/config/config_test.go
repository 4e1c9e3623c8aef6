package config_test

import (
	"testing"
	"time"

	"hostelfix/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MONGODB_URI", "")

	cfg, _, err := config.Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, config.EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, config.StorageMongo, cfg.StorageDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI, "falls back to MONGO_URI default")
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.NotEmpty(t, cfg.JWTSecret, "development gets a fixed secret")
	assert.Equal(t, int64(5<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, 100, cfg.Limit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.Limit.Window)
	assert.False(t, cfg.RateLimitEnabled())
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_LegacyMongoURI(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGO_URI", "mongodb://legacy:27017")

	cfg, _, err := config.Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://legacy:27017", cfg.MongoURI)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, _, err := config.Load("testdata/does-not-exist.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_ProductionEnablesRateLimit(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, _, err := config.Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.RateLimitEnabled())
}

func TestLoad_RejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"env", "APP_ENV", "staging"},
		{"storage", "STORAGE_DRIVER", "cassandra"},
		{"uploads", "UPLOAD_BACKEND", "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, _, err := config.Load("testdata/does-not-exist.env")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_MinioNeedsEndpoint(t *testing.T) {
	t.Setenv("UPLOAD_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "")

	_, _, err := config.Load("testdata/does-not-exist.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINIO_ENDPOINT")
}

func TestTelegramConfig_Enabled(t *testing.T) {
	assert.False(t, config.TelegramConfig{BotToken: "x"}.Enabled())
	assert.False(t, config.TelegramConfig{ChatID: 42}.Enabled())
	assert.True(t, config.TelegramConfig{BotToken: "x", ChatID: 42}.Enabled())
}

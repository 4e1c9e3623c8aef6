// Package sqlstore implements storage.Store on PostgreSQL through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hostelfix/backend/internal/models"
	"hostelfix/backend/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const uniqueViolation = "23505"

var _ storage.Store = (*Store)(nil)

type Store struct {
	DB *gorm.DB
}

// NewStore wraps an open gorm handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Open connects to PostgreSQL and migrates the schema.
// dsn may be a postgres:// URL or a key=value string.
func Open(ctx context.Context, dsn string) (*Store, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(normalized), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: connect failed: %w", err)
	}

	s := NewStore(db)
	if err := s.Ping(ctx); err != nil {
		return nil, fmt.Errorf("sqlstore: ping failed: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NormalizeDSN turns URL-style connection strings into key=value form.
func NormalizeDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		converted, err := pq.ParseURL(dsn)
		if err != nil {
			return "", fmt.Errorf("sqlstore: parse DATABASE_URL: %w", err)
		}
		return converted, nil
	}
	return dsn, nil
}

// Migrate creates or updates the users and complaints tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.DB.WithContext(ctx).AutoMigrate(&models.User{}, &models.Complaint{}); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// wrapError maps gorm and postgres errors onto the storage sentinels.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return storage.ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrDuplicate
	}
	return err
}

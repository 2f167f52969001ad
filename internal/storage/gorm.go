package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqliteDriver "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore keeps blobs in the kv_blobs table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(driver, dsn string) (*GormStore, error) {
	db, err := OpenGorm(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open kv store: %w", err)
	}
	if err := db.AutoMigrate(&blobRow{}); err != nil {
		return nil, fmt.Errorf("migrate kv store: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row blobRow
	if err := s.db.WithContext(ctx).Where("blob_key = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return row.Value, nil
}

func (s *GormStore) Put(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	row := blobRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blob_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

type blobRow struct {
	Key       string    `gorm:"column:blob_key;primaryKey;size:191"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (blobRow) TableName() string {
	return "kv_blobs"
}

func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		driver = "sqlite"
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		if driver == "sqlite" {
			dsn = "data/lovable.db"
		} else {
			return nil, fmt.Errorf("dsn is required for driver %q", driver)
		}
	}

	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	switch driver {
	case "sqlite":
		if err := ensureSQLiteDirectory(dsn); err != nil {
			return nil, err
		}
		return gorm.Open(sqliteDriver.Open(dsn), cfg)
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

func ensureSQLiteDirectory(dsn string) error {
	path, ok := sqliteFilePath(dsn)
	if !ok {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sqlite db dir: %w", err)
	}
	return nil
}

func sqliteFilePath(dsn string) (string, bool) {
	raw := strings.TrimSpace(dsn)
	lower := strings.ToLower(raw)
	switch {
	case raw == "", lower == ":memory:", strings.HasPrefix(lower, "file::memory:"):
		return "", false
	case strings.HasPrefix(lower, "file:"):
		parsed, err := url.Parse(raw)
		if err != nil {
			return stripQuery(strings.TrimPrefix(raw, "file:")), true
		}
		if strings.EqualFold(parsed.Query().Get("mode"), "memory") {
			return "", false
		}
		if parsed.Path != "" {
			return parsed.Path, true
		}
		if parsed.Opaque != "" {
			return stripQuery(parsed.Opaque), true
		}
		return "", false
	}
	return stripQuery(raw), true
}

func stripQuery(v string) string {
	if i := strings.Index(v, "?"); i >= 0 {
		return v[:i]
	}
	return v
}

// Package cache implements the profile persistence layer, backed by GORM and
// SQLite (pure Go driver). A finished analysis is stored as one row per
// username holding the serialized profile, the schema version, and the time
// it was cached. Freshness is evaluated on read: a record older than the TTL
// is treated exactly like a missing one.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erislabs/go-debate-backend/internal/domain"
)

// SchemaVersion is bumped whenever the serialized profile shape changes;
// records written under another version are still served, the field exists
// for offline migrations.
const SchemaVersion = "1"

// ErrCacheMiss indicates no fresh profile exists for the username.
var ErrCacheMiss = errors.New("cache: miss")

// ProfileRecord is the row stored per analyzed username.
type ProfileRecord struct {
	Username    string    `gorm:"primaryKey"`
	ProfileJSON string    `gorm:"not null"`
	Version     string    `gorm:"not null"`
	CachedAt    time.Time `gorm:"index;not null"`
}

// TableName overrides GORM's pluralized default.
func (ProfileRecord) TableName() string { return "profile_cache" }

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the cache schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ProfileRecord{})
}

// GetProfile returns the cached profile for username if it is younger than
// ttl, or ErrCacheMiss. The second return value is when it was cached.
func GetProfile(ctx context.Context, db *gorm.DB, username string, ttl time.Duration, now time.Time) (*domain.SynthesizedProfile, time.Time, error) {
	var rec ProfileRecord
	err := db.WithContext(ctx).
		Where("username = ? AND cached_at > ?", username, now.Add(-ttl)).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, ErrCacheMiss
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	var p domain.SynthesizedProfile
	if err := json.Unmarshal([]byte(rec.ProfileJSON), &p); err != nil {
		return nil, time.Time{}, err
	}
	return &p, rec.CachedAt, nil
}

// PutProfile upserts the profile row for its username, stamping CachedAt and
// the current schema version.
func PutProfile(ctx context.Context, db *gorm.DB, p *domain.SynthesizedProfile, now time.Time) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	rec := ProfileRecord{
		Username:    p.Username,
		ProfileJSON: string(raw),
		Version:     SchemaVersion,
		CachedAt:    now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"profile_json", "version", "cached_at"}),
		}).
		Create(&rec).Error
}

// InvalidateProfile removes the row for username. It reports whether a row
// existed.
func InvalidateProfile(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	res := db.WithContext(ctx).Where("username = ?", username).Delete(&ProfileRecord{})
	return res.RowsAffected > 0, res.Error
}

// Stats returns the total number of cached profiles and how many of them are
// still fresh under ttl.
func Stats(ctx context.Context, db *gorm.DB, ttl time.Duration, now time.Time) (total, fresh int64, err error) {
	q := db.WithContext(ctx).Model(&ProfileRecord{})
	if err = q.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = db.WithContext(ctx).Model(&ProfileRecord{}).
		Where("cached_at > ?", now.Add(-ttl)).
		Count(&fresh).Error; err != nil {
		return 0, 0, err
	}
	return total, fresh, nil
}

// CleanupExpired deletes rows older than ttl and returns how many were
// removed.
func CleanupExpired(ctx context.Context, db *gorm.DB, ttl time.Duration, now time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("cached_at <= ?", now.Add(-ttl)).
		Delete(&ProfileRecord{})
	return res.RowsAffected, res.Error
}

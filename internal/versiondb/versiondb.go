// Package versiondb persists what is known about game builds across runs:
// which archive hash corresponds to which version, and cached executable
// hashes so repeated status checks skip re-reading a large binary.
package versiondb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GameVersion maps a build's SHA-256 to its human-readable version.
type GameVersion struct {
	SHA256     string `gorm:"primaryKey"`
	Version    string
	Stable     bool
	ReleasedOn time.Time
	CreatedAt  time.Time
}

// ExeHash caches the hash of an executable keyed by path, invalidated by
// size or mtime changes.
type ExeHash struct {
	Path      string `gorm:"primaryKey"`
	Size      int64
	ModTime   time.Time
	SHA256    string
	UpdatedAt time.Time
}

// DB wraps the SQLite-backed version store.
type DB struct {
	db *gorm.DB
}

// Open opens (creating if needed) the version database at path and runs
// migrations.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening version database: %w", err)
	}

	if err := db.AutoMigrate(&GameVersion{}, &ExeHash{}); err != nil {
		return nil, fmt.Errorf("migrating version database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// LookupVersion returns the recorded version for a build hash, or ok=false
// when the hash is unknown.
func (d *DB) LookupVersion(sha256 string) (*GameVersion, bool, error) {
	var gv GameVersion
	err := d.db.First(&gv, "sha256 = ?", sha256).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("looking up version: %w", err)
	}
	return &gv, true, nil
}

// RecordVersion stores or updates the version for a build hash.
func (d *DB) RecordVersion(gv GameVersion) error {
	if err := d.db.Save(&gv).Error; err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return nil
}

// CachedHash returns the cached hash for the executable at path if the
// cache entry is still valid for the file's current size and mtime.
func (d *DB) CachedHash(path string, size int64, modTime time.Time) (string, bool, error) {
	var eh ExeHash
	err := d.db.First(&eh, "path = ?", path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up hash cache: %w", err)
	}
	if eh.Size != size || !eh.ModTime.Equal(modTime) {
		return "", false, nil
	}
	return eh.SHA256, true, nil
}

// StoreHash records the hash of the executable at path together with the
// size and mtime it was computed against.
func (d *DB) StoreHash(path string, size int64, modTime time.Time, sha256 string) error {
	eh := ExeHash{Path: path, Size: size, ModTime: modTime, SHA256: sha256}
	if err := d.db.Save(&eh).Error; err != nil {
		return fmt.Errorf("storing hash cache: %w", err)
	}
	return nil
}

// Versions returns all recorded versions, newest first.
func (d *DB) Versions() ([]GameVersion, error) {
	var versions []GameVersion
	if err := d.db.Order("released_on desc").Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	return versions, nil
}

// Package store persists image hashes in a SQLite index through GORM, using
// the pure-Go SQLite driver.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	phash "github.com/vmchale/phash-fut"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("store: record not found")

// scanBatchSize bounds the rows held in memory by Nearest.
const scanBatchSize = 500

// Record is one indexed image.
type Record struct {
	ID          uint   `gorm:"primaryKey"`
	Path        string `gorm:"uniqueIndex;not null"`
	ContentHash string `gorm:"index;size:64"`
	// Params is the phash.Hasher fingerprint the hash was computed with.
	Params string `gorm:"index;size:64"`
	// Hash holds the bits of a phash.Hash; SQLite integers are signed.
	Hash      int64
	Width     int
	Height    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PHash returns the stored perceptual hash.
func (r *Record) PHash() phash.Hash { return phash.Hash(uint64(r.Hash)) }

// SetPHash stores h in the record.
func (r *Record) SetPHash(h phash.Hash) { r.Hash = int64(uint64(h)) }

// Match is a record found by Nearest along with its Hamming distance.
type Match struct {
	Record   Record
	Distance int
}

// DB wraps the GORM connection.
type DB struct {
	*gorm.DB
	path string
}

// Config holds database configuration options.
type Config struct {
	Path        string
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// New opens (creating if needed) the index and runs migrations.
func New(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)", cfg.Path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &DB{DB: db, path: cfg.Path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the underlying connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Upsert inserts rec or, when its path is already indexed, replaces the
// stored values.
func (db *DB) Upsert(ctx context.Context, rec *Record) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_hash", "params", "hash", "width", "height", "updated_at"}),
	}).Create(rec).Error
}

// Get returns the record for path.
func (db *DB) Get(ctx context.Context, path string) (*Record, error) {
	return db.first(ctx, "path = ?", path)
}

// FindByContentHash returns any record whose file bytes hashed to sum under
// the hasher fingerprint params.
func (db *DB) FindByContentHash(ctx context.Context, sum, params string) (*Record, error) {
	return db.first(ctx, "content_hash = ? AND params = ?", sum, params)
}

func (db *DB) first(ctx context.Context, query string, args ...any) (*Record, error) {
	var rec Record
	err := db.WithContext(ctx).Where(query, args...).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns all records ordered by path.
func (db *DB) List(ctx context.Context) ([]Record, error) {
	var recs []Record
	err := db.WithContext(ctx).Order("path").Find(&recs).Error
	return recs, err
}

// Count returns the number of indexed images.
func (db *DB) Count(ctx context.Context) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Record{}).Count(&n).Error
	return n, err
}

// Delete removes the record for path. Deleting a missing path returns
// ErrNotFound.
func (db *DB) Delete(ctx context.Context, path string) error {
	res := db.WithContext(ctx).Where("path = ?", path).Delete(&Record{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Nearest returns records hashed under params whose hash is within
// maxDistance bits of h, closest first, ties broken by path. Empty params
// matches records of every fingerprint. A limit <= 0 returns every match.
func (db *DB) Nearest(ctx context.Context, h phash.Hash, params string, maxDistance, limit int) ([]Match, error) {
	var matches []Match
	var batch []Record
	tx := db.WithContext(ctx)
	if params != "" {
		tx = tx.Where("params = ?", params)
	}
	res := tx.FindInBatches(&batch, scanBatchSize, func(tx *gorm.DB, _ int) error {
		for _, rec := range batch {
			if d := rec.PHash().Distance(h); d <= maxDistance {
				matches = append(matches, Match{Record: rec, Distance: d})
			}
		}
		return ctx.Err()
	})
	if res.Error != nil {
		return nil, res.Error
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Record.Path < matches[j].Record.Path
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

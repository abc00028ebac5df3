// Package config handles application configuration for the phash tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// DataDir holds the index database (default: $XDG_DATA_HOME/phash).
	DataDir string
	// DBPath is the SQLite hash index (default: DataDir/index.db).
	DBPath string

	Hash  HashConfig
	Cache CacheConfig
	Log   LogConfig
}

// HashConfig configures the filter and hash pipeline.
type HashConfig struct {
	KernelSize    int
	Interpolation string
	Workers       int
}

// CacheConfig selects the content-keyed hash cache. A non-empty RedisAddr
// selects Redis; otherwise an in-memory LRU of Size entries is used.
type CacheConfig struct {
	RedisAddr string
	Size      int
}

// LogConfig configures logrus output.
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := filepath.Join(xdg.DataHome, "phash")
	return &Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "index.db"),
		Hash: HashConfig{
			KernelSize:    7,
			Interpolation: "bilinear",
			Workers:       1,
		},
		Cache: CacheConfig{Size: 4096},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a .env file from the working directory if present, then applies
// PHASH_* environment variables over the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := Default()

	if v := os.Getenv("PHASH_DATA_DIR"); v != "" {
		cfg.DataDir = v
		cfg.DBPath = filepath.Join(v, "index.db")
	}
	if v := os.Getenv("PHASH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PHASH_INTERPOLATION"); v != "" {
		cfg.Hash.Interpolation = v
	}
	if v := os.Getenv("PHASH_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("PHASH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PHASH_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"PHASH_KERNEL_SIZE", &cfg.Hash.KernelSize},
		{"PHASH_WORKERS", &cfg.Hash.Workers},
		{"PHASH_CACHE_SIZE", &cfg.Cache.Size},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = n
	}
	return cfg, nil
}

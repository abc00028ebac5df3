// Package cli provides the command-line interface for phash.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	phash "github.com/vmchale/phash-fut"
	"github.com/vmchale/phash-fut/cache"
	"github.com/vmchale/phash-fut/internal/config"
	applog "github.com/vmchale/phash-fut/internal/log"
	"github.com/vmchale/phash-fut/luma"
	"github.com/vmchale/phash-fut/store"
)

// errFailed is returned when at least one input could not be processed. The
// individual failures have already been reported.
var errFailed = errors.New("one or more inputs failed")

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
)

// globalFlags override the loaded configuration when set.
type globalFlags struct {
	kernel   int
	interp   string
	workers  int
	db       string
	logLevel string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var gf globalFlags
	root := &cobra.Command{
		Use:   "phash",
		Short: "Perceptual image hashing",
		Long: `Perceptual image hashing

Smooths images with a mean filter, takes the DCT of a 32x32 resample and
derives a 64-bit hash that stays stable under resizing, recompression and
small brightness changes.

Configuration is read from PHASH_* environment variables and an optional
.env file; flags take precedence.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.IntVar(&gf.kernel, "kernel", 0, "mean filter window side (odd)")
	pf.StringVar(&gf.interp, "interp", "", "resampling: nearest, approx-bilinear, bilinear, catmull-rom")
	pf.IntVar(&gf.workers, "workers", 0, "goroutines used by the filter and the indexer")
	pf.StringVar(&gf.db, "db", "", "path of the hash index")
	pf.StringVar(&gf.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newFilterCmd(&gf),
		newHashCmd(&gf),
		newCompareCmd(&gf),
		newBenchCmd(&gf),
		newIndexCmd(&gf),
		newSearchCmd(&gf),
	)
	return root
}

// Execute runs the CLI with fang enhancements.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, NewRootCmd())
}

// runtime is the per-command state built from config and flags.
type runtime struct {
	cfg    *config.Config
	log    *logrus.Logger
	hasher *phash.Hasher
}

func setup(cmd *cobra.Command, gf *globalFlags, hashSize int) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("kernel") {
		cfg.Hash.KernelSize = gf.kernel
	}
	if flags.Changed("interp") {
		cfg.Hash.Interpolation = gf.interp
	}
	if flags.Changed("workers") {
		cfg.Hash.Workers = gf.workers
	}
	if flags.Changed("db") {
		cfg.DBPath = gf.db
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = gf.logLevel
	}

	logger, err := applog.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	interp, err := luma.ParseInterpolator(cfg.Hash.Interpolation)
	if err != nil {
		return nil, err
	}
	hasher, err := phash.NewHasher(&phash.Options{
		KernelSize:   cfg.Hash.KernelSize,
		Interpolator: interp,
		Workers:      cfg.Hash.Workers,
		HashSize:     hashSize,
	})
	if err != nil {
		return nil, fmt.Errorf("hasher: %w", err)
	}
	return &runtime{cfg: cfg, log: logger, hasher: hasher}, nil
}

func (rt *runtime) openStore() (*store.DB, error) {
	db, err := store.New(store.DefaultConfig(rt.cfg.DBPath))
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", rt.cfg.DBPath, err)
	}
	rt.log.WithField("path", db.Path()).Debug("opened index")
	return db, nil
}

// openCache returns the configured cache and a function releasing it.
func (rt *runtime) openCache(ctx context.Context) (cache.Cache, func(), error) {
	if addr := rt.cfg.Cache.RedisAddr; addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", addr, err)
		}
		rt.log.WithField("addr", addr).Debug("using redis cache")
		return cache.NewRedis(client, "", 0), func() { client.Close() }, nil
	}
	mem, err := cache.NewMemory(rt.cfg.Cache.Size)
	if err != nil {
		return nil, nil, err
	}
	return mem, func() {}, nil
}

func (rt *runtime) load(path string) (*luma.Image, error) {
	img, err := phash.Load(path)
	if err != nil {
		return nil, err
	}
	rt.log.WithFields(logrus.Fields{"path": path, "width": img.Width(), "height": img.Height()}).Debug("loaded image")
	return img, nil
}

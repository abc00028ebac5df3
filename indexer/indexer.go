// Package indexer hashes image files and records them in the store.
package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	phash "github.com/vmchale/phash-fut"
	"github.com/vmchale/phash-fut/cache"
	applog "github.com/vmchale/phash-fut/internal/log"
	"github.com/vmchale/phash-fut/store"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImage reports whether path has an image file extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Options configures an Indexer.
type Options struct {
	// Workers bounds concurrent files. Values below 1 select 1.
	Workers int

	// Cache is consulted before hashing. May be nil.
	Cache cache.Cache

	// Logger receives per-file failures. Nil discards them.
	Logger logrus.FieldLogger
}

// Summary reports the outcome of an indexing run.
type Summary struct {
	Scanned  int
	Hashed   int
	Cached   int
	Failed   int
	Duration time.Duration
}

// Result is the hash of one file.
type Result struct {
	Path        string
	ContentHash string
	Hash        phash.Hash
	Width       int
	Height      int
	// Cached is set when the hash came from the cache or the store.
	Cached bool
}

// Indexer hashes files and upserts them into a store.
type Indexer struct {
	hasher  *phash.Hasher
	db      *store.DB
	cache   cache.Cache
	log     logrus.FieldLogger
	workers int
}

// New returns an Indexer. db may be nil when only HashFile is used.
func New(hasher *phash.Hasher, db *store.DB, opts Options) *Indexer {
	if hasher == nil {
		hasher, _ = phash.NewHasher(nil)
	}
	ix := &Indexer{
		hasher:  hasher,
		db:      db,
		cache:   opts.Cache,
		log:     opts.Logger,
		workers: max(opts.Workers, 1),
	}
	if ix.log == nil {
		ix.log = applog.Discard()
	}
	return ix
}

// IndexDir indexes every image file below root.
func (ix *Indexer) IndexDir(ctx context.Context, root string) (Summary, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && IsImage(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("walk %s: %w", root, err)
	}
	ix.log.WithFields(logrus.Fields{"root": root, "files": len(paths)}).Debug("scanned directory")
	return ix.IndexFiles(ctx, paths)
}

// IndexFiles hashes and upserts paths. A failing file is logged and counted;
// only cancellation or a store failure stops the run.
func (ix *Indexer) IndexFiles(ctx context.Context, paths []string) (Summary, error) {
	if ix.db == nil {
		return Summary{}, errors.New("indexer: no store configured")
	}
	start := time.Now()
	var hashed, cached, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := ix.HashFile(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				ix.log.WithError(err).WithField("path", path).Warn("failed to hash image")
				return nil
			}
			rec := &store.Record{
				Path:        res.Path,
				ContentHash: res.ContentHash,
				Params:      ix.hasher.Fingerprint(),
				Width:       res.Width,
				Height:      res.Height,
			}
			rec.SetPHash(res.Hash)
			if err := ix.db.Upsert(gctx, rec); err != nil {
				return fmt.Errorf("upsert %s: %w", path, err)
			}
			if res.Cached {
				cached.Add(1)
			} else {
				hashed.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	sum := Summary{
		Scanned:  len(paths),
		Hashed:   int(hashed.Load()),
		Cached:   int(cached.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}
	ix.log.WithFields(logrus.Fields{
		"scanned":  sum.Scanned,
		"hashed":   sum.Hashed,
		"cached":   sum.Cached,
		"failed":   sum.Failed,
		"duration": sum.Duration,
	}).Info("indexing finished")
	return sum, err
}

// HashFile computes the hash of one file, consulting the cache and then the
// store by content and hasher fingerprint before decoding.
func (ix *Indexer) HashFile(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	res := Result{Path: path, ContentHash: cache.ContentKey(data)}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	res.Width, res.Height = cfg.Width, cfg.Height

	if h, ok := ix.lookup(ctx, res.ContentHash); ok {
		res.Hash, res.Cached = h, true
		return res, nil
	}

	img, _, err := phash.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	h, err := ix.hasher.Hash(ctx, phash.FromImage(img))
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	res.Hash = h

	if ix.cache != nil {
		if err := ix.cache.Set(ctx, ix.cacheKey(res.ContentHash), h); err != nil {
			ix.log.WithError(err).WithField("path", path).Debug("cache write failed")
		}
	}
	return res, nil
}

// cacheKey scopes a content key to the hasher options, so one cache can be
// shared by runs with different kernels or interpolators.
func (ix *Indexer) cacheKey(sum string) string {
	return sum + ":" + ix.hasher.Fingerprint()
}

func (ix *Indexer) lookup(ctx context.Context, sum string) (phash.Hash, bool) {
	key := ix.cacheKey(sum)
	if ix.cache != nil {
		h, ok, err := ix.cache.Get(ctx, key)
		if err != nil {
			ix.log.WithError(err).Debug("cache read failed")
		} else if ok {
			return h, true
		}
	}
	if ix.db == nil {
		return 0, false
	}
	rec, err := ix.db.FindByContentHash(ctx, sum, ix.hasher.Fingerprint())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			ix.log.WithError(err).Debug("store lookup failed")
		}
		return 0, false
	}
	if ix.cache != nil {
		_ = ix.cache.Set(ctx, key, rec.PHash())
	}
	return rec.PHash(), true
}

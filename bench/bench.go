// Package bench times the mean filter and the perceptual hash on real images,
// optionally next to goimagehash's PerceptionHash, and writes text reports.
package bench

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	phash "github.com/vmchale/phash-fut"
)

// ErrNoImages is returned by Run when no paths are given.
var ErrNoImages = errors.New("bench: no images")

// Options configures a run.
type Options struct {
	// Iterations per image and operation. Values below 1 select 1.
	Iterations int

	// Hasher runs the pipeline. Nil selects the defaults.
	Hasher *phash.Hasher

	// Reference also times goimagehash.PerceptionHash.
	Reference bool
}

// Result holds average per-call timings for one image.
type Result struct {
	Path          string
	Width, Height int

	Hash       phash.Hash
	MeanFilter time.Duration
	ImageHash  time.Duration

	// Set only when the reference was timed.
	ReferenceHash phash.Hash
	Reference     time.Duration
}

// Totals are summed average timings across all images.
type Totals struct {
	MeanFilter time.Duration
	ImageHash  time.Duration
	Reference  time.Duration
}

// Report is the outcome of a run.
type Report struct {
	RunID      uuid.UUID
	Timestamp  time.Time
	Iterations int
	KernelSize int
	Reference  bool
	Results    []Result
}

// Run loads each path and times the pipeline on it.
func Run(ctx context.Context, paths []string, opts Options) (*Report, error) {
	if len(paths) == 0 {
		return nil, ErrNoImages
	}
	hasher := opts.Hasher
	if hasher == nil {
		hasher, _ = phash.NewHasher(nil)
	}
	iters := max(opts.Iterations, 1)

	rep := &Report{
		RunID:      uuid.New(),
		Timestamp:  time.Now(),
		Iterations: iters,
		KernelSize: hasher.KernelSize(),
		Reference:  opts.Reference,
	}
	for _, path := range paths {
		res, err := runOne(ctx, path, hasher, iters, opts.Reference)
		if err != nil {
			return nil, err
		}
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}

func runOne(ctx context.Context, path string, hasher *phash.Hasher, iters int, reference bool) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	img, _, err := phash.Decode(f)
	f.Close()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	src := phash.FromImage(img)
	res := Result{Path: path, Width: src.Width(), Height: src.Height()}

	res.MeanFilter, err = timeIt(ctx, iters, func() error {
		_, err := hasher.MeanFilter(ctx, src)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	res.ImageHash, err = timeIt(ctx, iters, func() error {
		h, err := hasher.Hash(ctx, src)
		res.Hash = h
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	if reference {
		res.Reference, err = timeIt(ctx, iters, func() error {
			h, err := referenceHash(img)
			res.ReferenceHash = h
			return err
		})
		if err != nil {
			return Result{}, fmt.Errorf("%s: reference: %w", path, err)
		}
	}
	return res, nil
}

func referenceHash(img image.Image) (phash.Hash, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return 0, err
	}
	return phash.Hash(h.GetHash()), nil
}

// timeIt returns the average duration of fn over iters calls.
func timeIt(ctx context.Context, iters int, fn func() error) (time.Duration, error) {
	var total time.Duration
	for i := 0; i < iters; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		start := time.Now()
		if err := fn(); err != nil {
			return 0, err
		}
		total += time.Since(start)
	}
	return total / time.Duration(iters), nil
}

// Totals sums the average timings of every result.
func (r *Report) Totals() Totals {
	var t Totals
	for _, res := range r.Results {
		t.MeanFilter += res.MeanFilter
		t.ImageHash += res.ImageHash
		t.Reference += res.Reference
	}
	return t
}

// Write renders the report as text.
func (r *Report) Write(w io.Writer) error {
	p := message.NewPrinter(language.English)
	ew := &errWriter{w: w}

	ew.printf(p, "=== Perceptual Hash Benchmark ===\n")
	ew.printf(p, "Run: %s\n", r.RunID)
	ew.printf(p, "Timestamp: %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	ew.printf(p, "Images: %d\n", len(r.Results))
	ew.printf(p, "Iterations: %d\n", r.Iterations)
	ew.printf(p, "Kernel size: %d\n\n", r.KernelSize)

	for i, res := range r.Results {
		ew.printf(p, "%d. %s (%s)\n", i+1, res.Path, fmt.Sprintf("%dx%d", res.Width, res.Height))
		ew.printf(p, "   mean filter:  %s\n", micros(p, res.MeanFilter))
		ew.printf(p, "   image hash:   %s  %s\n", micros(p, res.ImageHash), res.Hash)
		if r.Reference {
			ew.printf(p, "   goimagehash:  %s  %s  (distance %d)\n",
				micros(p, res.Reference), res.ReferenceHash, res.Hash.Distance(res.ReferenceHash))
		}
	}

	t := r.Totals()
	ew.printf(p, "\nTotal mean filter: %s\n", micros(p, t.MeanFilter))
	ew.printf(p, "Total image hash: %s\n", micros(p, t.ImageHash))
	if r.Reference {
		ew.printf(p, "Total goimagehash: %s\n", micros(p, t.Reference))
		if t.ImageHash > 0 {
			ew.printf(p, "Speedup vs goimagehash: %.2fx\n", float64(t.Reference)/float64(t.ImageHash))
		}
	}
	return ew.err
}

// WriteFile writes the report to dir/bench_<timestamp>.txt and returns the
// file path.
func (r *Report) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	name := filepath.Join(dir, fmt.Sprintf("bench_%s.txt", r.Timestamp.Format("2006-01-02_15-04-05")))
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return "", err
	}
	return name, f.Close()
}

func micros(p *message.Printer, d time.Duration) string {
	return p.Sprintf("%.1f µs", float64(d)/float64(time.Microsecond))
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(p *message.Printer, format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = p.Fprintf(ew.w, format, args...)
}

package layout

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const (
	// DefaultParallelThreshold is the key count from which rank mapping fans out.
	DefaultParallelThreshold = 4096
	DefaultBatchSize         = 1024
)

type buildOptions struct {
	logger            zerolog.Logger
	workers           int
	searchWorkers     int
	parallelThreshold int
	batchSize         int
}

// Option customizes construction and batch search of a Tree.
type Option func(*buildOptions)

// WithLogger sets the logger used for construction events.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// WithWorkers bounds the goroutines used for parallel rank mapping.
func WithWorkers(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSearchWorkers bounds the goroutines used by Tree.SearchAll.
func WithSearchWorkers(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.searchWorkers = n
		}
	}
}

// WithParallelThreshold sets the minimum key count for parallel mapping.
func WithParallelThreshold(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.parallelThreshold = n
		}
	}
}

// WithBatchSize sets how many targets one SearchAll task handles.
func WithBatchSize(n int) Option {
	return func(o *buildOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

type slotted[K any] struct {
	slot int
	key  K
}

// Build lays sorted out in van Emde Boas order. Keys must be strictly
// increasing.
func Build[K cmp.Ordered](sorted []K, opts ...Option) (*Tree[K], error) {
	return BuildFunc(sorted, cmp.Compare[K], opts...)
}

// BuildFunc is Build for keys ordered by compare.
//
// Each key is tagged with the slot its rank maps to, the tagged pairs are
// sorted by slot, and the keys are written out in that order. Slots beyond the
// last rank become padding that compares after every key.
func BuildFunc[K any](sorted []K, compare func(a, b K) int, opts ...Option) (*Tree[K], error) {
	o := buildOptions{
		logger:            zerolog.Nop(),
		workers:           runtime.NumCPU(),
		searchWorkers:     runtime.NumCPU(),
		parallelThreshold: DefaultParallelThreshold,
		batchSize:         DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	n := len(sorted)
	for i := 1; i < n; i++ {
		switch c := compare(sorted[i-1], sorted[i]); {
		case c == 0:
			return nil, fmt.Errorf("%w: at index %d", ErrDuplicateKey, i)
		case c > 0:
			return nil, fmt.Errorf("%w: at index %d", ErrUnsortedInput, i)
		}
	}

	h, err := HeightFor(n)
	if err != nil {
		return nil, err
	}

	slots := mapSlots(n, h, o)
	pairs := make([]slotted[K], n)
	for i, key := range sorted {
		pairs[i] = slotted[K]{slot: slots[i], key: key}
	}
	slices.SortFunc(pairs, func(a, b slotted[K]) int { return cmp.Compare(a.slot, b.slot) })

	size := TreeSize(h)
	keys := make([]K, size)
	claimed := roaring.New()
	for _, p := range pairs {
		if p.slot < 0 || p.slot >= size || !claimed.CheckedAdd(uint32(p.slot)) {
			return nil, fmt.Errorf("%w: slot %d height %d", ErrNonBijective, p.slot, h)
		}
		keys[p.slot] = p.key
	}

	var pad *roaring.Bitmap
	if n < size {
		pad = roaring.New()
		pad.AddRange(0, uint64(size))
		pad.AndNot(claimed)
	}

	t := &Tree[K]{
		ID:        uuid.New(),
		keys:      keys,
		n:         n,
		height:    h,
		compare:   compare,
		pad:       pad,
		workers:   o.searchWorkers,
		batchSize: o.batchSize,
	}

	o.logger.Debug().
		Str("tree", t.ID.String()).
		Int("keys", n).
		Int("height", h).
		Int("padding", size-n).
		Dur("elapsed", time.Since(start)).
		Msg("built veb layout")

	return t, nil
}

// mapSlots returns the 0-based slot for every rank 1..n.
func mapSlots(n, h int, o buildOptions) []int {
	slots := make([]int, n)
	fill := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			slots[i] = int(position(uint64(i+1), uint64(h))) - 1
		}
	}

	if n < o.parallelThreshold || o.workers <= 1 {
		fill(0, n)
		return slots
	}

	chunk := (n + o.workers - 1) / o.workers
	p := pool.New().WithMaxGoroutines(o.workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		p.Go(func() {
			fill(lo, hi)
		})
	}
	p.Wait()

	o.logger.Debug().Int("keys", n).Int("workers", o.workers).Msg("mapped ranks in parallel")
	return slots
}

package analysis

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Collector accumulates block profiles from concurrent Collect calls.
type Collector struct {
	mu       sync.Mutex
	profiles atomic.Value // stores []BlockProfile
	elapsed  atomic.Int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	c := &Collector{}
	c.profiles.Store([]BlockProfile(nil))
	return c
}

// Collect profiles every kind for an n key tree in parallel and merges the
// results.
func (c *Collector) Collect(ctx context.Context, n int, kinds []Kind, blockSizes []int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()
	results := make([][]BlockProfile, len(kinds))
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for i, kind := range kinds {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prof, err := Profile(kind, n, blockSizes)
			if err != nil {
				return err
			}
			results[i] = prof
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	merged := slices.Clone(c.profiles.Load().([]BlockProfile))
	for _, r := range results {
		merged = append(merged, r...)
	}
	slices.SortStableFunc(merged, func(a, b BlockProfile) int {
		return cmp.Or(
			cmp.Compare(a.Keys, b.Keys),
			cmp.Compare(a.BlockSize, b.BlockSize),
			cmp.Compare(a.Layout, b.Layout),
		)
	})
	c.profiles.Store(merged)
	c.elapsed.Add(int64(time.Since(start)))
	return nil
}

// Profiles returns the merged profiles ordered by keys, block size, layout.
func (c *Collector) Profiles() []BlockProfile {
	return slices.Clone(c.profiles.Load().([]BlockProfile))
}

// Elapsed is the total time spent inside Collect.
func (c *Collector) Elapsed() time.Duration { return time.Duration(c.elapsed.Load()) }

// Reset drops every collected profile.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles.Store([]BlockProfile(nil))
	c.elapsed.Store(0)
}

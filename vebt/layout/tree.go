package layout

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// Tree is an immutable static search tree stored implicitly in van Emde Boas
// order. It is safe for concurrent searches once Build returns.
type Tree[K any] struct {
	ID uuid.UUID

	keys    []K
	n       int
	height  int
	compare func(a, b K) int
	pad     *roaring.Bitmap

	workers   int
	batchSize int
}

// Len is the number of stored keys.
func (t *Tree[K]) Len() int { return t.n }

// Height of the complete tree backing the layout.
func (t *Tree[K]) Height() int { return t.height }

// Slots is the allocated array length, 2^Height-1.
func (t *Tree[K]) Slots() int { return len(t.keys) }

// Layout returns the stored keys in slot order, padding slots omitted.
func (t *Tree[K]) Layout() []K {
	out := make([]K, 0, t.n)
	for i, k := range t.keys {
		if t.isPad(i) {
			continue
		}
		out = append(out, k)
	}
	return out
}

func (t *Tree[K]) isPad(slot int) bool {
	return t.pad != nil && t.pad.Contains(uint32(slot))
}

func (t *Tree[K]) searcher(trace *[]int) searcher[K] {
	return searcher[K]{keys: t.keys, compare: t.compare, pad: t.pad, trace: trace}
}

// Search looks up target. Misses report the insertion boundary in Insert.
func (t *Tree[K]) Search(target K) Result {
	s := t.searcher(nil)
	return s.search(target)
}

// Trace is Search that also returns every slot compared, in probe order.
func (t *Tree[K]) Trace(target K) (Result, []int) {
	path := make([]int, 0, 2*t.height)
	s := t.searcher(&path)
	return s.search(target), path
}

// Select returns the key with the given 1-based sorted rank.
func (t *Tree[K]) Select(rank int) (K, error) {
	var zero K
	if rank < 1 || rank > t.n {
		return zero, fmt.Errorf("%w: rank=%d keys=%d", ErrInvalidRank, rank, t.n)
	}
	slot, err := Slot(uint64(rank), uint64(t.height))
	if err != nil {
		return zero, err
	}
	return t.keys[slot], nil
}

// SearchAll runs Search for every target with bounded parallelism. Results
// are index-aligned with targets.
func (t *Tree[K]) SearchAll(ctx context.Context, targets []K) ([]Result, error) {
	results := make([]Result, len(targets))
	batch := max(t.batchSize, 1)

	p := pool.New().WithMaxGoroutines(max(t.workers, 1)).WithContext(ctx)
	for lo := 0; lo < len(targets); lo += batch {
		hi := min(lo+batch, len(targets))
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s := t.searcher(nil)
			for i := lo; i < hi; i++ {
				results[i] = s.search(targets[i])
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

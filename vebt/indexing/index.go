package indexing

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring"

	"github.com/ZanzyTHEbar/vebtree/vebt/layout"
)

// Index is a static int64 -> RecordID lookup structure. Keys live in a van
// Emde Boas tree and ids sit in a parallel column sharing its slot order, so
// a hit on slot s reads ids[s] from the same neighbourhood of memory.
type Index struct {
	Meta IndexMeta

	tree *layout.Tree[int64]
	ids  []RecordID
}

// Build indexes keys[i] -> ids[i]. Input need not be sorted, but keys must
// be unique.
func Build(keys []int64, ids []RecordID, opts ...layout.Option) (*Index, error) {
	if len(keys) != len(ids) {
		return nil, fmt.Errorf("%w: %d keys, %d ids", ErrColumnMismatch, len(keys), len(ids))
	}

	entries := make([]Entry, len(keys))
	for i := range keys {
		entries[i] = Entry{Key: keys[i], ID: ids[i]}
	}
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.Key, b.Key) })

	sorted := make([]int64, len(entries))
	for i, e := range entries {
		sorted[i] = e.Key
	}
	tree, err := layout.Build(sorted, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build key layout: %w", err)
	}

	col := make([]RecordID, tree.Slots())
	for i, e := range entries {
		slot, err := layout.Slot(uint64(i+1), uint64(tree.Height()))
		if err != nil {
			return nil, err
		}
		col[slot] = e.ID
	}

	return &Index{
		Meta: IndexMeta{
			NumKeys:      len(entries),
			Height:       tree.Height(),
			BuildUnixSec: time.Now().Unix(),
		},
		tree: tree,
		ids:  col,
	}, nil
}

func (ix *Index) Len() int { return ix.tree.Len() }

// Lookup returns the record for an exact key.
func (ix *Index) Lookup(key int64) (RecordID, bool) {
	res := ix.tree.Search(key)
	if !res.Found {
		return 0, false
	}
	return ix.ids[res.Slot], true
}

// Floor returns the greatest key <= key and its record.
func (ix *Index) Floor(key int64) (int64, RecordID, bool) {
	res := ix.tree.Search(key)
	if res.Found {
		return key, ix.ids[res.Slot], true
	}
	if res.Insert == 0 {
		return 0, 0, false
	}
	return ix.at(res.Insert)
}

// Range returns the records whose keys fall in [lo, hi].
func (ix *Index) Range(lo, hi int64) *roaring.Bitmap {
	out := roaring.New()
	if lo > hi || ix.Len() == 0 {
		return out
	}

	first := ix.tree.Search(lo)
	from := first.Insert + 1
	if first.Found {
		from = first.Rank
	}
	last := ix.tree.Search(hi)
	to := last.Insert
	if last.Found {
		to = last.Rank
	}

	for r := from; r <= to; r++ {
		if _, id, ok := ix.at(r); ok {
			out.Add(id)
		}
	}
	return out
}

func (ix *Index) at(rank int) (int64, RecordID, bool) {
	key, err := ix.tree.Select(rank)
	if err != nil {
		return 0, 0, false
	}
	slot, err := layout.Slot(uint64(rank), uint64(ix.tree.Height()))
	if err != nil {
		return 0, 0, false
	}
	return key, ix.ids[slot], true
}

package layout

import (
	"cmp"
	"fmt"
	"math/bits"

	"github.com/RoaringBitmap/roaring"
)

// Result is the outcome of one search.
//
// On a hit Rank is the 1-based sorted rank and Slot the array index holding
// the key. On a miss Branch is the final left (0) or right (1) decision taken
// at a leaf and Insert counts the stored keys that sort before the target.
type Result struct {
	Found  bool
	Rank   int
	Slot   int
	Branch int
	Insert int
}

// Search looks target up in keys, which must already be in van Emde Boas
// order for a complete tree (len(keys) == 2^h-1). An empty slice is a miss.
func Search[K cmp.Ordered](keys []K, target K) (Result, error) {
	n := len(keys)
	if n == 0 {
		return Result{}, nil
	}
	if n&(n+1) != 0 {
		return Result{}, fmt.Errorf("%w: length=%d", ErrIncompleteTree, n)
	}
	s := searcher[K]{keys: keys, compare: cmp.Compare[K]}
	return s.search(target), nil
}

type searcher[K any] struct {
	keys    []K
	compare func(a, b K) int
	pad     *roaring.Bitmap // slots past the last rank; they sort after everything
	trace   *[]int
}

func (s *searcher[K]) search(target K) Result {
	if len(s.keys) == 0 {
		return Result{}
	}
	code, slot, branch, found := s.locate(0, len(s.keys), target)
	if found {
		return Result{Found: true, Rank: code, Slot: slot}
	}
	return Result{Branch: branch, Insert: code}
}

func (s *searcher[K]) probe(slot int, target K) int {
	if s.trace != nil {
		*s.trace = append(*s.trace, slot)
	}
	if s.pad != nil && s.pad.Contains(uint32(slot)) {
		return -1
	}
	return s.compare(target, s.keys[slot])
}

// locate searches the complete subtree stored in keys[base:base+length].
//
// On a hit code is the 1-based in-order rank of target inside this subtree.
// On a miss code is the number of subtree keys below target, which for the
// top subtree is exactly the index of the bottom subtree to descend into.
func (s *searcher[K]) locate(base, length int, target K) (code, slot, branch int, found bool) {
	if length == 1 {
		switch c := s.probe(base, target); {
		case c == 0:
			return 1, base, 0, true
		case c < 0:
			return 0, -1, 0, false
		default:
			return 1, -1, 1, false
		}
	}

	hy := splitHeight(bits.Len(uint(length)))

	code, slot, branch, found = s.locate(base, hy.TopSize, target)
	if found {
		// Every top node is preceded by one whole bottom subtree per smaller top node.
		return code * hy.BottomGaps, slot, 0, true
	}

	b := code
	offset := base + hy.TopSize + b*hy.SubtreeSize
	code, slot, branch, found = s.locate(offset, hy.SubtreeSize, target)
	return b*hy.BottomGaps + code, slot, branch, found
}

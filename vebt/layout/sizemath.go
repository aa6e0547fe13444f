package layout

import (
	"fmt"
	"math/bits"
)

// MaxHeight bounds tree height so every slot fits a uint32 bitmap id.
const MaxHeight = 31

// PowerOfTwo returns 2^k.
func PowerOfTwo(k int) int { return 1 << k }

// TreeSize is the node count of a complete binary tree of the given height.
func TreeSize(height int) int { return PowerOfTwo(height) - 1 }

// HeightFor returns ceil(log2(n+1)), the smallest height whose complete tree
// holds n nodes. n == 0 yields height 0.
func HeightFor(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: n=%d", ErrEmptyTree, n)
	}
	h := bits.Len(uint(n))
	if h > MaxHeight {
		return 0, fmt.Errorf("%w: n=%d needs height %d", ErrTooManyKeys, n, h)
	}
	return h, nil
}

// Hyper describes how a subtree of Height splits into a top subtree and the
// bottom subtrees hanging off its leaves.
//
//	Height       = ceil(log2(length+1))
//	TopHeight    = Height / 2
//	TopSize      = 2^TopHeight - 1
//	BottomHeight = Height - TopHeight
//	SubtreeSize  = 2^BottomHeight - 1
//	LeafCount    = 2^(Height-1)
//	BottomGaps   = 2^BottomHeight
//
// BottomGaps is the number of distinct branch codes a bottom subtree can
// return, which makes it the multiplier when a top branch decision is
// combined with a bottom result.
type Hyper struct {
	Height       int
	TopHeight    int
	TopSize      int
	BottomHeight int
	SubtreeSize  int
	LeafCount    int
	BottomGaps   int
}

// Split computes the hyperfloor split for a subtree of length nodes.
func Split(length int) (Hyper, error) {
	if length <= 0 {
		return Hyper{}, fmt.Errorf("%w: length=%d", ErrEmptyTree, length)
	}
	h, err := HeightFor(length)
	if err != nil {
		return Hyper{}, err
	}
	return splitHeight(h), nil
}

func splitHeight(h int) Hyper {
	d := h / 2
	delta := h - d
	return Hyper{
		Height:       h,
		TopHeight:    d,
		TopSize:      TreeSize(d),
		BottomHeight: delta,
		SubtreeSize:  TreeSize(delta),
		LeafCount:    PowerOfTwo(h - 1),
		BottomGaps:   PowerOfTwo(delta),
	}
}

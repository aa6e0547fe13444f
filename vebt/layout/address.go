package layout

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// Position maps a 1-based sorted rank to its 1-based position in the van
// Emde Boas ordering of a complete tree of the given height.
//
// The rank's bitstring doubles as a traversal code. Its low
// height-height/2 bits select a node inside a bottom subtree and the
// remaining high bits select which bottom subtree. A rank whose low bits are
// all zero is a node of the top subtree.
//
//	rank  1 2 3 4 5 6 7 8 9 10 11 12 13 14 15   (height 4)
//	pos   5 4 6 2 8 7 9 1 11 10 12  3 14 13 15
func Position(rank, height uint64) (uint64, error) {
	if height > MaxHeight {
		return 0, fmt.Errorf("%w: height=%d", ErrInvalidHeight, height)
	}
	if rank == 0 || rank >= uint64(1)<<height {
		return 0, fmt.Errorf("%w: rank=%d height=%d", ErrInvalidRank, rank, height)
	}
	return position(rank, height), nil
}

// Slot is the 0-based array index for rank, in [0, 2^height-2].
func Slot(rank, height uint64) (uint64, error) {
	p, err := Position(rank, height)
	if err != nil {
		return 0, err
	}
	return p - 1, nil
}

func position(rank, height uint64) uint64 {
	if height <= 1 {
		return rank
	}

	topHeight := height / 2
	bottomHeight := height - topHeight

	top := rank >> bottomHeight
	bottom := rank & (uint64(1)<<bottomHeight - 1)

	if bottom == 0 {
		return position(top, topHeight)
	}

	// Skip the top block, then the bottom subtrees left of ours.
	base := top*treeSize(bottomHeight) + treeSize(topHeight)
	return base + position(bottom, bottomHeight)
}

func treeSize(height uint64) uint64 { return uint64(1)<<height - 1 }

// VerifyBijection maps every rank of a tree of the given height and checks
// that the resulting slots are exactly [0, 2^height-2].
func VerifyBijection(height uint64) error {
	if height > MaxHeight {
		return fmt.Errorf("%w: height=%d", ErrInvalidHeight, height)
	}
	size := treeSize(height)
	seen := roaring.New()
	for r := uint64(1); r <= size; r++ {
		s := position(r, height) - 1
		if s >= size {
			return fmt.Errorf("%w: rank %d mapped outside the tree to slot %d", ErrNonBijective, r, s)
		}
		if !seen.CheckedAdd(uint32(s)) {
			return fmt.Errorf("%w: rank %d collides at slot %d", ErrNonBijective, r, s)
		}
	}
	if seen.GetCardinality() != size {
		return fmt.Errorf("%w: %d of %d slots claimed", ErrNonBijective, seen.GetCardinality(), size)
	}
	return nil
}

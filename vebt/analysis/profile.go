package analysis

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ZanzyTHEbar/vebtree/vebt/layout"
)

// Kind names a search layout.
type Kind string

const (
	VEB       Kind = "veb"
	Eytzinger Kind = "eytzinger"
	Sorted    Kind = "sorted"
)

// Kinds lists every layout Profile understands.
var Kinds = []Kind{VEB, Eytzinger, Sorted}

var (
	ErrUnknownKind      = errors.New("analysis: unknown layout kind")
	ErrInvalidBlockSize = errors.New("analysis: block size must be positive")
)

// BlockProfile summarizes how many distinct blocks of BlockSize keys a
// successful search touches, over every key of an n key tree.
type BlockProfile struct {
	Layout    Kind
	Keys      int
	BlockSize int
	Probes    float64 // mean slots compared
	Mean      float64
	StdDev    float64
	Max       float64
}

// Paths returns, for every rank 1..n, the slots compared while searching the
// key of that rank in the given layout.
func Paths(kind Kind, n int) ([][]int, error) {
	sorted := make([]int, n)
	for i := range sorted {
		sorted[i] = i + 1
	}

	paths := make([][]int, n)
	switch kind {
	case VEB:
		tree, err := layout.Build(sorted)
		if err != nil {
			return nil, err
		}
		for i, k := range sorted {
			_, paths[i] = tree.Trace(k)
		}
	case Eytzinger:
		a := buildEytzinger(sorted)
		for i, k := range sorted {
			paths[i] = traceEytzinger(a, k)
		}
	case Sorted:
		for i, k := range sorted {
			paths[i] = traceSorted(sorted, k)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return paths, nil
}

// Transfers counts the distinct blocks of blockSize slots that path touches.
func Transfers(path []int, blockSize int) int {
	if blockSize <= 0 {
		return 0
	}
	blocks := roaring.New()
	for _, slot := range path {
		blocks.Add(uint32(slot / blockSize))
	}
	return int(blocks.GetCardinality())
}

// Profile measures block transfers of layout kind for each block size.
func Profile(kind Kind, n int, blockSizes []int) ([]BlockProfile, error) {
	for _, b := range blockSizes {
		if b <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, b)
		}
	}
	paths, err := Paths(kind, n)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	probes := make([]float64, len(paths))
	for i, p := range paths {
		probes[i] = float64(len(p))
	}
	meanProbes := stat.Mean(probes, nil)

	out := make([]BlockProfile, 0, len(blockSizes))
	transfers := make([]float64, len(paths))
	for _, b := range blockSizes {
		for i, p := range paths {
			transfers[i] = float64(Transfers(p, b))
		}
		mean, std := stat.MeanStdDev(transfers, nil)
		if len(transfers) < 2 {
			std = 0
		}
		out = append(out, BlockProfile{
			Layout:    kind,
			Keys:      n,
			BlockSize: b,
			Probes:    meanProbes,
			Mean:      mean,
			StdDev:    std,
			Max:       floats.Max(transfers),
		})
	}
	return out, nil
}

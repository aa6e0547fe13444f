package layout

import "errors"

// Contract violations. They are returned wrapped with the offending values,
// so match them with errors.Is.
var (
	ErrInvalidRank    = errors.New("layout: rank outside [1, 2^height-1]")
	ErrInvalidHeight  = errors.New("layout: height outside supported range")
	ErrEmptyTree      = errors.New("layout: tree has no nodes")
	ErrTooManyKeys    = errors.New("layout: key count exceeds maximum tree size")
	ErrUnsortedInput  = errors.New("layout: input keys are not sorted")
	ErrDuplicateKey   = errors.New("layout: duplicate key")
	ErrIncompleteTree = errors.New("layout: array length is not 2^h-1")
)

// ErrNonBijective means two ranks were mapped to the same slot. It can only
// surface from a defect in the address mapping, never from caller input.
var ErrNonBijective = errors.New("layout: rank to slot mapping is not a bijection")

package indexing

import "errors"

// RecordID identifies the row a key points at. It is kept small and
// contiguous so result sets fit roaring bitmaps.
type RecordID = uint32

// Entry pairs a numeric key with the record it indexes.
type Entry struct {
	Key int64
	ID  RecordID
}

// IndexMeta captures summary information for a built index.
type IndexMeta struct {
	NumKeys      int
	Height       int
	BuildUnixSec int64
}

var ErrColumnMismatch = errors.New("indexing: keys and ids differ in length")

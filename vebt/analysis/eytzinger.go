package analysis

import "cmp"

// buildEytzinger lays sorted out breadth-first: slot i-1 holds node i, whose
// children are nodes 2i and 2i+1.
func buildEytzinger[K any](sorted []K) []K {
	n := len(sorted)
	out := make([]K, n)
	pos := 0
	var dfs func(i int)
	dfs = func(i int) {
		if i > n {
			return
		}
		dfs(i << 1)
		out[i-1] = sorted[pos]
		pos++
		dfs((i << 1) | 1)
	}
	dfs(1)
	return out
}

// traceEytzinger descends an Eytzinger array and returns the slots compared,
// stopping at a hit.
func traceEytzinger[K cmp.Ordered](a []K, x K) []int {
	var path []int
	for i := 1; i <= len(a); {
		path = append(path, i-1)
		switch c := cmp.Compare(x, a[i-1]); {
		case c == 0:
			return path
		case c > 0:
			i = (i << 1) | 1
		default:
			i = i << 1
		}
	}
	return path
}

// traceSorted is textbook binary search over a sorted array.
func traceSorted[K cmp.Ordered](a []K, x K) []int {
	var path []int
	lo, hi := 0, len(a)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		path = append(path, mid)
		switch c := cmp.Compare(x, a[mid]); {
		case c == 0:
			return path
		case c > 0:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return path
}

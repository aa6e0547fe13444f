package layout

import (
	"bytes"
	"cmp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAlphabet(t *testing.T) {
	tree, err := Build([]byte("ABCDEFGHIJKLMNO"))
	require.NoError(t, err)

	assert.Equal(t, alphabetLayout, string(tree.Layout()))
	assert.Equal(t, 15, tree.Len())
	assert.Equal(t, 15, tree.Slots())
	assert.Equal(t, 4, tree.Height())
	assert.NotEqual(t, uuid.Nil, tree.ID)
}

func TestBuildOddHeight(t *testing.T) {
	tree, err := Build([]byte("ABCDEFG"))
	require.NoError(t, err)
	assert.Equal(t, "DBACFEG", string(tree.Layout()))
}

func TestBuildSingleKey(t *testing.T) {
	tree, err := Build([]string{"only"})
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Height())
	assert.Equal(t, Result{Found: true, Rank: 1, Slot: 0}, tree.Search("only"))
	assert.Equal(t, Result{Branch: 1, Insert: 1}, tree.Search("zzz"))
}

func TestBuildEmpty(t *testing.T) {
	tree, err := Build([]int{})
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, 0, tree.Slots())
	assert.Empty(t, tree.Layout())
	assert.Equal(t, Result{}, tree.Search(42))
}

func TestBuildRejectsBadInput(t *testing.T) {
	_, err := Build([]int{1, 3, 2})
	assert.ErrorIs(t, err, ErrUnsortedInput)

	_, err = Build([]int{1, 2, 2, 3})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestBuildPadsIncompleteTree(t *testing.T) {
	tree, err := Build([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	require.NoError(t, err)

	assert.Equal(t, 10, tree.Len())
	assert.Equal(t, 15, tree.Slots())
	assert.Len(t, tree.Layout(), 10)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, tree.Layout())
}

func TestBuildFuncCustomOrder(t *testing.T) {
	desc := func(a, b string) int { return cmp.Compare(b, a) }
	words := []string{"pear", "mango", "kiwi", "fig", "apple"}

	tree, err := BuildFunc(words, desc)
	require.NoError(t, err)

	for i, w := range words {
		res := tree.Search(w)
		assert.True(t, res.Found, w)
		assert.Equal(t, i+1, res.Rank, w)
	}
	res := tree.Search("zebra")
	assert.False(t, res.Found)
	assert.Equal(t, 0, res.Insert)
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	sorted := make([]int, 20000)
	for i := range sorted {
		sorted[i] = i * 3
	}

	serial, err := Build(sorted, WithWorkers(1))
	require.NoError(t, err)
	parallel, err := Build(sorted, WithWorkers(8), WithParallelThreshold(1))
	require.NoError(t, err)

	assert.Equal(t, serial.Layout(), parallel.Layout())
	assert.NotEqual(t, serial.ID, parallel.ID)
}

func TestBuildLogsConstruction(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	tree, err := Build([]int{1, 2, 3}, WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "built veb layout")
	assert.Contains(t, out, tree.ID.String())
	assert.True(t, strings.Contains(out, `"height":2`), out)
}

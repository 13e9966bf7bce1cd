package datasets

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPartitionDisjointCover checks that for fixed fractions every part is
// disjoint from the others and together they cover [0, n).
func TestPartitionDisjointCover(t *testing.T) {
	cases := []struct {
		n         int
		fractions []float64
		sizes     []int
	}{
		{100, []float64{0.9, 0.1}, []int{90, 10}},
		{10, []float64{0.8, 0.1, 0.1}, []int{8, 1, 1}},
		{7, []float64{0.5, 0.5}, []int{3, 4}},
		{3, []float64{1, 0}, []int{3, 0}},
		{0, []float64{0.9, 0.1}, []int{0, 0}},
	}
	for _, tc := range cases {
		seen := make(map[int]bool)
		for part, want := range tc.sizes {
			idx, err := Partition(tc.n, tc.fractions, part)
			require.NoError(t, err)
			assert.Len(t, idx, want, "n=%d fractions=%v part=%d", tc.n, tc.fractions, part)
			for _, i := range idx {
				assert.False(t, seen[i], "index %d in two parts", i)
				assert.True(t, i >= 0 && i < tc.n)
				seen[i] = true
			}
		}
		assert.Len(t, seen, tc.n)
	}
}

func TestPartitionDeterministic(t *testing.T) {
	a, err := Partition(50, DefaultSplit, 0)
	require.NoError(t, err)
	b, err := Partition(50, DefaultSplit, 0)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	sorted := append([]int(nil), a...)
	sort.Ints(sorted)
	assert.NotEqual(t, sorted, a, "parts are drawn from a shuffled order")
}

func TestPartitionErrors(t *testing.T) {
	_, err := Partition(10, []float64{0.5, 0.4}, 0)
	assert.Error(t, err, "fractions must sum to 1")
	_, err = Partition(10, []float64{1.5, -0.5}, 0)
	assert.Error(t, err, "negative fraction")
	_, err = Partition(10, []float64{0.9, 0.1}, 2)
	assert.Error(t, err, "part outside split")
	_, err = Partition(10, nil, 0)
	assert.Error(t, err)
}

func TestModeIndex(t *testing.T) {
	for mode, want := range map[Mode]int{ModeTrain: 0, ModeVal: 1, ModeTest: 2} {
		got, err := mode.Index()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := Mode("holdout").Index()
	assert.Error(t, err)
}

package icesheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawIndicesDeterminism(t *testing.T) {
	a, err := drawIndices(newGenerator(1234), 100, 17, true)
	require.NoError(t, err)
	b, err := drawIndices(newGenerator(1234), 100, 17, true)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := drawIndices(newGenerator(4321), 100, 17, true)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDrawIndicesWithReplacement(t *testing.T) {
	idx, err := drawIndices(newGenerator(1), 1000, 3, true)
	require.NoError(t, err)
	require.Len(t, idx, 1000)
	for _, i := range idx {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 3)
	}
}

func TestDrawIndicesWithoutReplacement(t *testing.T) {
	idx, err := drawIndices(newGenerator(1), 5, 8, false)
	require.NoError(t, err)
	require.Len(t, idx, 5)
	seen := map[int]bool{}
	for _, i := range idx {
		assert.False(t, seen[i], "index %d drawn twice", i)
		seen[i] = true
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 8)
	}

	// Exhausting the ensemble exactly is allowed.
	idx, err = drawIndices(newGenerator(1), 8, 8, false)
	require.NoError(t, err)
	assert.Len(t, idx, 8)

	// Overdrawing is not. Never truncate, never upsample.
	_, err = drawIndices(newGenerator(1), 9, 8, false)
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestDrawSelectorStreamOrder(t *testing.T) {
	// Selector then indices on one generator must reproduce exactly.
	run := func() ([]bool, []int) {
		rng := newGenerator(99)
		use := drawSelector(rng, []float64{0, 1, 0.5, 0.5})
		idx, err := drawIndices(rng, 4, 10, true)
		require.NoError(t, err)
		return use, idx
	}
	u1, i1 := run()
	u2, i2 := run()
	assert.Equal(t, u1, u2)
	assert.Equal(t, i1, i2)

	// Degenerate weights are deterministic regardless of seed.
	assert.False(t, u1[0])
	assert.True(t, u1[1])
}

// TestSamplerCorrelation verifies that one joint index vector selects
// complete member trajectories: for every sample, the values across all ice
// sheets and years come from the same ensemble member.
func TestSamplerCorrelation(t *testing.T) {
	src := toySource()
	sub, err := src.Subset(Low, []int{2020, 2030, 2040}, 2000)
	require.NoError(t, err)

	idx := []int{1, 0, 1, 1}
	sp := sampler{lo: sub, idx: idx}

	for _, sheet := range Sheets {
		g := sp.global(sheet)
		require.Equal(t, []int{4, 3}, g.Shape)
		for i, m := range idx {
			want := sub.Member(sheet, m)
			for k := range want {
				assert.Equal(t, want[k], g.Get(i, k),
					"sheet %s sample %d year index %d", sheet, i, k)
			}
		}
	}
}

func TestSamplerConditioning(t *testing.T) {
	src := toySource()
	years := []int{2020, 2030, 2040}
	lo, err := src.Subset(Low, years, 2000)
	require.NoError(t, err)
	hi, err := src.Subset(High, years, 2000)
	require.NoError(t, err)

	sp := sampler{
		lo:      lo,
		hi:      hi,
		idx:     []int{0, 0, 1},
		useHigh: []bool{false, true, true},
	}
	g := sp.global(EAIS)
	assert.Equal(t, lo.Member(EAIS, 0)[0], g.Get(0, 0))
	assert.Equal(t, hi.Member(EAIS, 0)[0], g.Get(1, 0))
	assert.Equal(t, hi.Member(EAIS, 1)[0], g.Get(2, 0))
}

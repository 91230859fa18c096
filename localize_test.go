package icesheets

import (
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constField returns a field holding the same factor everywhere on a grid
// covering the test sites.
func constField(factor float64) *Field {
	lats := []float64{-90, -45, 0, 45, 90}
	lons := []float64{0, 90, 180, 270}
	vals := make([]float64, len(lats)*len(lons))
	for i := range vals {
		vals[i] = factor
	}
	return &Field{lats: lats, lons: lons, vals: vals}
}

func testSites(n int) []Location {
	sites := make([]Location, n)
	for i := range sites {
		sites[i] = Location{Name: "site", ID: i + 1, Lat: 0, Lon: 90}
	}
	return sites
}

// collectLocal runs localization and concatenates the emitted blocks in
// order.
func collectLocal(t *testing.T, comps []component, sites []Location, chunksize int) []float64 {
	t.Helper()
	var out []float64
	err := localize(comps, sites, chunksize,
		func(offset int, chunk []Location, block *sparse.DenseArray) error {
			assert.Equal(t, len(chunk), block.Shape[0])
			assert.LessOrEqual(t, len(chunk), chunksize)
			out = append(out, block.Elements...)
			return nil
		})
	require.NoError(t, err)
	return out
}

func TestLocalizeLinearity(t *testing.T) {
	src := toySource()
	sub, err := src.Subset(Low, []int{2020, 2030, 2040}, 2000)
	require.NoError(t, err)
	sp := sampler{lo: sub, idx: []int{0, 1, 1, 0}}

	g := sp.global(GIS)
	comps := []component{{global: g, field: constField(2.0)}}
	local := collectLocal(t, comps, testSites(1), 50)

	require.Len(t, local, len(g.Elements))
	for e, v := range g.Elements {
		assert.Equal(t, v*2.0, local[e])
	}
}

func TestLocalizeChunkInvariance(t *testing.T) {
	src := toySource()
	sub, err := src.Subset(High, []int{2020, 2030, 2040}, 2000)
	require.NoError(t, err)
	sp := sampler{lo: sub, idx: []int{1, 0, 1}}

	comps := []component{{global: sp.global(EAIS), field: constField(1.3)}}
	sites := testSites(7)

	want := collectLocal(t, comps, sites, 7)
	for _, cs := range []int{1, 2, 3, 4, 50} {
		assert.Equal(t, want, collectLocal(t, comps, sites, cs), "chunksize %d", cs)
	}
}

// TestLocalizeAISComposition checks that the combined Antarctic signal is
// the sum of its separately fingerprinted east and west components.
func TestLocalizeAISComposition(t *testing.T) {
	src := toySource()
	sub, err := src.Subset(Low, []int{2020, 2030, 2040}, 2000)
	require.NoError(t, err)
	sp := sampler{lo: sub, idx: []int{0, 1}}

	fields := map[IceSheet]*Field{
		EAIS: constField(1.5),
		WAIS: constField(0.5),
		GIS:  constField(1.0),
	}
	sites := testSites(1)

	ais := collectLocal(t, components(AIS, sp, fields), sites, 10)
	eais := collectLocal(t, components(EAIS, sp, fields), sites, 10)
	wais := collectLocal(t, components(WAIS, sp, fields), sites, 10)

	require.Len(t, ais, len(eais))
	for e := range ais {
		assert.InDelta(t, eais[e]+wais[e], ais[e], 1e-12)
	}
}

func TestLocalizeOutOfDomainAborts(t *testing.T) {
	src := toySource()
	sub, err := src.Subset(Low, []int{2020}, 2000)
	require.NoError(t, err)
	sp := sampler{lo: sub, idx: []int{0}}

	sites := []Location{{Name: "far", ID: 1, Lat: 0, Lon: 90}}
	narrow := &Field{
		lats: []float64{50, 60, 70},
		lons: []float64{0, 10, 20},
		vals: make([]float64, 9),
	}
	emitted := 0
	err = localize([]component{{global: sp.global(GIS), field: narrow}}, sites, 10,
		func(int, []Location, *sparse.DenseArray) error { emitted++; return nil })
	assert.ErrorIs(t, err, ErrOutOfDomain)
	assert.Zero(t, emitted)
}

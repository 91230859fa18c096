package icesheets

import (
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterAttributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global.nc")
	global := sparse.ZerosDense(2, 3)
	for e := range global.Elements {
		global.Elements[e] = float64(e)
	}
	meta := Meta{Description: "test tensor", Scenario: "rcp85", BaseYear: 2005}
	require.NoError(t, writeGlobal(path, global, []int{2020, 2030, 2040}, meta))

	fid, f, err := openNC(path)
	require.NoError(t, err)
	defer fid.Close()

	assert.Equal(t, "test tensor", f.Header.GetAttribute("", "description"))
	assert.Equal(t, "rcp85", f.Header.GetAttribute("", "scenario"))
	assert.Equal(t, []int32{2005}, f.Header.GetAttribute("", "baseyear"))
	assert.Equal(t, "mm", f.Header.GetAttribute("sea_level_change", "units"))
	assert.Equal(t, []int{1, 2, 3}, f.Header.Lengths("sea_level_change"))
}

// TestWriterZeroYears exercises the degenerate empty projection horizon: the
// file still records its location and sample coordinates, but carries no
// years dimension and no data variable.
func TestWriterZeroYears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.nc")
	global := sparse.ZerosDense(3, 0)
	require.NoError(t, writeGlobal(path, global, []int{}, Meta{Scenario: "rcp26", BaseYear: 2000}))

	fid, f, err := openNC(path)
	require.NoError(t, err)
	defer fid.Close()

	assert.False(t, hasVar(f, "years"))
	assert.False(t, hasVar(f, "sea_level_change"))
	assert.Equal(t, 3, varLen(f, "samples"))
	assert.Equal(t, []int{-1}, mustInts(t, f, "locations"))
}

// TestWriterChunkedBlocks writes a three-site dataset in two blocks and
// checks the reassembled variable against a straight row-major fill.
func TestWriterChunkedBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.nc")
	sites := []Location{
		{Name: "a", ID: 1, Lat: 0, Lon: 0},
		{Name: "b", ID: 2, Lat: 0, Lon: 0},
		{Name: "c", ID: 3, Lat: 0, Lon: 0},
	}
	years := []int{2020, 2030}
	w, err := newDatasetWriter(path, sites, 2, years, Meta{Scenario: "rcp26", BaseYear: 2000})
	require.NoError(t, err)

	fill := func(nloc int, base float64) *sparse.DenseArray {
		b := sparse.ZerosDense(nloc, 2, 2)
		for e := range b.Elements {
			b.Elements[e] = base + float64(e)
		}
		return b
	}
	require.NoError(t, w.writeBlock(0, fill(2, 0)))
	require.NoError(t, w.writeBlock(2, fill(1, 8)))
	require.NoError(t, w.close())

	fid, f, err := openNC(path)
	require.NoError(t, err)
	defer fid.Close()

	got, err := ncFloats(f, "sea_level_change")
	require.NoError(t, err)
	want := make([]float64, 12)
	for e := range want {
		want[e] = float64(e)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []int{1, 2, 3}, mustInts(t, f, "locations"))
	assert.Equal(t, []int{2020, 2030}, mustInts(t, f, "years"))
}

func mustInts(t *testing.T, f *cdf.File, name string) []int {
	t.Helper()
	v, err := ncInts(f, name)
	require.NoError(t, err)
	return v
}

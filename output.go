package icesheets

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Channel holds the optional destination paths of one ice sheet's two output
// files. An empty path skips writing that file; the tensors are computed
// either way.
type Channel struct {
	Global string
	Local  string
}

// Meta carries the run attributes stamped on every output file.
type Meta struct {
	Description string
	Scenario    string
	BaseYear    int
}

// globalSite is the synthetic location row of global (un-fingerprinted)
// output files, following the source framework's convention.
var globalSite = Location{Name: "global", ID: -1,
	Lat: math.Inf(1), Lon: math.Inf(1)}

// datasetWriter streams sample tensors into a NetCDF classic file with
// dimensions (locations, samples, years). Coordinate variables are written
// at creation; sea_level_change arrives in location blocks.
type datasetWriter struct {
	fid    *os.File
	f      *cdf.File
	nsamps int
	nyears int
}

func newDatasetWriter(path string, sites []Location, nsamps int, years []int, meta Meta) (*datasetWriter, error) {
	// A zero-length projection horizon leaves nothing to record; the years
	// dimension and the data variable are omitted rather than declared empty.
	dims := []string{"locations", "samples"}
	lens := []int{len(sites), nsamps}
	if len(years) > 0 {
		dims = append(dims, "years")
		lens = append(lens, len(years))
	}
	h := cdf.NewHeader(dims, lens)
	h.AddAttribute("", "description", meta.Description)
	h.AddAttribute("", "source", "SLR Framework: Bamber icesheet workflow")
	h.AddAttribute("", "scenario", meta.Scenario)
	h.AddAttribute("", "baseyear", []int32{int32(meta.BaseYear)})

	h.AddVariable("locations", []string{"locations"}, []int32{0})
	h.AddVariable("lat", []string{"locations"}, []float32{0})
	h.AddVariable("lon", []string{"locations"}, []float32{0})
	h.AddVariable("samples", []string{"samples"}, []int32{0})
	if len(years) > 0 {
		h.AddVariable("years", []string{"years"}, []int32{0})
		h.AddVariable("sea_level_change", []string{"locations", "samples", "years"}, []float32{0})
		h.AddAttribute("sea_level_change", "units", "mm")
	}
	h.Define()
	for _, err := range h.Check() {
		if err != nil {
			return nil, fmt.Errorf("output %s: %v", path, err)
		}
	}

	fid, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	f, err := cdf.Create(fid, h)
	if err != nil {
		fid.Close()
		return nil, fmt.Errorf("output %s: %v", path, err)
	}
	w := &datasetWriter{fid: fid, f: f, nsamps: nsamps, nyears: len(years)}

	ids := make([]int32, len(sites))
	lats := make([]float32, len(sites))
	lons := make([]float32, len(sites))
	for i, s := range sites {
		ids[i] = int32(s.ID)
		lats[i] = float32(s.Lat)
		lons[i] = float32(s.Lon)
	}
	samps := make([]int32, nsamps)
	for i := range samps {
		samps[i] = int32(i)
	}
	if err := w.put("locations", ids); err != nil {
		return nil, err
	}
	if err := w.put("lat", lats); err != nil {
		return nil, err
	}
	if err := w.put("lon", lons); err != nil {
		return nil, err
	}
	if err := w.put("samples", samps); err != nil {
		return nil, err
	}
	if len(years) > 0 {
		yrs := make([]int32, len(years))
		for i, y := range years {
			yrs[i] = int32(y)
		}
		if err := w.put("years", yrs); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *datasetWriter) put(name string, data interface{}) error {
	end := w.f.Header.Lengths(name)
	start := make([]int, len(end))
	if _, err := w.f.Writer(name, start, end).Write(data); err != nil {
		return fmt.Errorf("output %s: writing %s: %v", w.fid.Name(), name, err)
	}
	return nil
}

// writeBlock writes one (locations, samples, years) block at the given
// location offset, downcast to float32 like every other writer in this
// codebase.
func (w *datasetWriter) writeBlock(offset int, block *sparse.DenseArray) error {
	if w.nyears == 0 || len(block.Elements) == 0 {
		return nil
	}
	buf := make([]float32, len(block.Elements))
	for i, v := range block.Elements {
		buf[i] = float32(v)
	}
	begin := []int{offset, 0, 0}
	end := []int{offset + block.Shape[0], 0, 0}
	if _, err := w.f.Writer("sea_level_change", begin, end).Write(buf); err != nil {
		return fmt.Errorf("output %s: writing block at %d: %v", w.fid.Name(), offset, err)
	}
	return nil
}

func (w *datasetWriter) close() error {
	if err := cdf.UpdateNumRecs(w.fid); err != nil {
		w.fid.Close()
		return err
	}
	return w.fid.Close()
}

// writeGlobal writes one sheet's (samples, years) global tensor as a
// single-location dataset.
func writeGlobal(path string, global *sparse.DenseArray, years []int, meta Meta) error {
	w, err := newDatasetWriter(path, []Location{globalSite}, global.Shape[0], years, meta)
	if err != nil {
		return err
	}
	block := sparse.ZerosDense(1, global.Shape[0], global.Shape[1])
	copy(block.Elements, global.Elements)
	if err := w.writeBlock(0, block); err != nil {
		w.fid.Close()
		return err
	}
	return w.close()
}

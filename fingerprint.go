package icesheets

import (
	"fmt"
	"math"
	"path/filepath"
)

// fprintFiles names the per-sheet fingerprint grids inside a fingerprint
// directory. AIS has no field of its own; its local contribution is the sum
// of the localized EAIS and WAIS components.
var fprintFiles = map[IceSheet]string{
	EAIS: "fprint_eais.nc",
	WAIS: "fprint_wais.nc",
	GIS:  "fprint_gis.nc",
}

var (
	latNames = []string{"lat", "latitude", "y"}
	lonNames = []string{"lon", "longitude", "x"}
	fpNames  = []string{"fp", "fingerprint", "scale"}
)

// Field is one ice sheet's spatial fingerprint: a dimensionless
// amplification factor on a regular latitude/longitude grid. Immutable and
// shared for the run's duration.
type Field struct {
	lats, lons []float64
	vals       []float64 // nlat × nlon, row-major
}

// LoadFields reads the three fingerprint grids from dir.
func LoadFields(dir string) (map[IceSheet]*Field, error) {
	out := make(map[IceSheet]*Field, len(fprintFiles))
	for sheet, name := range fprintFiles {
		f, err := LoadField(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("%s fingerprint: %w", sheet, err)
		}
		out[sheet] = f
	}
	return out, nil
}

// LoadField reads a single fingerprint grid, tolerating the coordinate and
// data variable names found across fingerprint products.
func LoadField(path string) (*Field, error) {
	fid, f, err := openNC(path)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	pick := func(names []string) (string, bool) {
		for _, n := range names {
			if hasVar(f, n) {
				return n, true
			}
		}
		return "", false
	}
	latVar, okLat := pick(latNames)
	lonVar, okLon := pick(lonNames)
	fpVar, okFp := pick(fpNames)
	if !okLat || !okLon || !okFp {
		return nil, fmt.Errorf("%s: %w: missing lat/lon/fingerprint variable", path, ErrInputFormat)
	}

	lats, err := ncFloats(f, latVar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lons, err := ncFloats(f, lonVar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	vals, err := ncFloats(f, fpVar)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(lats) < 2 || len(lons) < 2 || len(vals) != len(lats)*len(lons) {
		return nil, fmt.Errorf("%s: %w: fingerprint grid is %d×%d but holds %d values",
			path, ErrInputFormat, len(lats), len(lons), len(vals))
	}
	return &Field{lats: lats, lons: lons, vals: vals}, nil
}

// Factor resolves the fingerprint factor at a point by deterministic
// nearest-node lookup. Points beyond the grid extent (padded by half a cell)
// or landing on a masked node fail with ErrOutOfDomain.
func (f *Field) Factor(lat, lon float64) (float64, error) {
	i, ok := nearest(f.lats, lat)
	if !ok {
		return 0, fmt.Errorf("%w: latitude %.4f outside field extent", ErrOutOfDomain, lat)
	}
	j, ok := nearest(f.lons, wrapLon(lon, f.lons))
	if !ok {
		return 0, fmt.Errorf("%w: longitude %.4f outside field extent", ErrOutOfDomain, lon)
	}
	v := f.vals[i*len(f.lons)+j]
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%w: point (%.4f, %.4f) resolves to a masked node", ErrOutOfDomain, lat, lon)
	}
	return v, nil
}

// wrapLon shifts a longitude by ±360° into the field's convention
// (0..360 fields vs ±180 locations and vice versa).
func wrapLon(lon float64, axis []float64) float64 {
	lo, hi := axis[0], axis[len(axis)-1]
	if lo > hi {
		lo, hi = hi, lo
	}
	for lon < lo && lon+360 <= hi+180 {
		lon += 360
	}
	for lon > hi && lon-360 >= lo-180 {
		lon -= 360
	}
	return lon
}

// nearest returns the index of the axis node closest to x. The axis must be
// monotonic (either direction); x may overhang the end nodes by at most half
// the edge spacing.
func nearest(axis []float64, x float64) (int, bool) {
	n := len(axis)
	asc := axis[n-1] >= axis[0]
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if (axis[mid] <= x) == asc {
			lo = mid
		} else {
			hi = mid
		}
	}
	best := lo
	if math.Abs(x-axis[hi]) < math.Abs(x-axis[lo]) {
		best = hi
	}
	dist := math.Abs(x - axis[best])
	if best > 0 && best < n-1 {
		return best, true // interior node, always in coverage
	}
	var edge float64
	if best == 0 {
		edge = math.Abs(axis[1] - axis[0])
	} else {
		edge = math.Abs(axis[n-1] - axis[n-2])
	}
	return best, dist <= edge/2
}

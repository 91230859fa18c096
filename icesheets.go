// Package icesheets produces scenario-conditioned, spatially localized
// sea-level-rise projections from the Bamber et al. (2019) structured
// expert judgement ice-sheet ensembles.
//
// A run resamples joint ice-sheet trajectories from a precomputed ensemble,
// optionally re-expresses them against an externally supplied temperature
// trajectory, applies spatial fingerprint fields at a list of point
// locations, and writes global and local sample tensors to NetCDF files.
package icesheets

// IceSheet identifies one of the four projected ice-sheet contributions.
type IceSheet int

const (
	EAIS IceSheet = iota // East Antarctic
	WAIS                 // West Antarctic
	AIS                  // combined Antarctic (EAIS+WAIS)
	GIS                  // Greenland
)

// Sheets lists every ice sheet in output order.
var Sheets = [4]IceSheet{EAIS, WAIS, AIS, GIS}

func (s IceSheet) String() string {
	switch s {
	case EAIS:
		return "EAIS"
	case WAIS:
		return "WAIS"
	case AIS:
		return "AIS"
	case GIS:
		return "GIS"
	}
	return "unknown"
}

// projectionYears builds the arithmetic sequence start..end (inclusive) with
// the given step. end < start yields an empty sequence; this mirrors the
// source framework and is deliberate.
func projectionYears(start, end, step int) []int {
	if end < start {
		return []int{}
	}
	yrs := make([]int, 0, (end-start)/step+1)
	for y := start; y <= end; y += step {
		yrs = append(yrs, y)
	}
	return yrs
}

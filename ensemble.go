package icesheets

import "fmt"

// coreVars names the per-sheet member×year trajectory variables of the SEJ
// core file. The high bucket holds the +5 °C elicitation, the low bucket the
// +2 °C one. AIS is not stored; it is derived as EAIS+WAIS.
var coreVars = map[Bucket]map[IceSheet]string{
	High: {EAIS: "eais_hi", WAIS: "wais_hi", GIS: "gis_hi"},
	Low:  {EAIS: "eais_lo", WAIS: "wais_lo", GIS: "gis_lo"},
}

// Source is the read-only SEJ projection ensemble: per ice sheet and
// temperature bucket, complete member trajectories (mm of global-mean
// sea-level contribution) on the source's native years. Loaded once per run
// and shared immutably by every pipeline.
type Source struct {
	Years   []int
	Members int

	data map[Bucket]map[IceSheet][][]float64 // [member][yearIndex]
}

// LoadSource reads the SEJ core file. The file carries a years coordinate
// plus the six {eais,wais,gis}_{hi,lo} member×year variables.
func LoadSource(path string) (*Source, error) {
	fid, f, err := openNC(path)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	yrs, err := ncInts(f, "years")
	if err != nil {
		return nil, fmt.Errorf("ensemble %s: %w", path, err)
	}
	src := &Source{Years: yrs, data: map[Bucket]map[IceSheet][][]float64{}}

	for b, vars := range coreVars {
		src.data[b] = map[IceSheet][][]float64{}
		for sheet, name := range vars {
			dims := f.Header.Lengths(name)
			if !hasVar(f, name) || len(dims) != 2 || dims[1] != len(yrs) {
				return nil, fmt.Errorf("ensemble %s: %w: variable %q must be members×years",
					path, ErrInputFormat, name)
			}
			flat, err := ncFloats(f, name)
			if err != nil {
				return nil, fmt.Errorf("ensemble %s: %w", path, err)
			}
			if src.Members == 0 {
				src.Members = dims[0]
			} else if src.Members != dims[0] {
				return nil, fmt.Errorf("ensemble %s: %w: %q has %d members, expected %d",
					path, ErrInputFormat, name, dims[0], src.Members)
			}
			m := make([][]float64, dims[0])
			for i := range m {
				m[i] = flat[i*len(yrs) : (i+1)*len(yrs)]
			}
			src.data[b][sheet] = m
		}
	}
	if src.Members == 0 {
		return nil, fmt.Errorf("ensemble %s: %w: empty ensemble", path, ErrInputFormat)
	}
	return src, nil
}

// Subset is one bucket of the ensemble re-referenced to a base year and
// restricted to the projection years, with AIS derived. It is immutable once
// built.
type Subset struct {
	Years   []int
	Members int

	data map[IceSheet][][]float64
}

// Subset centers every member trajectory on baseyear and keeps only the
// requested projection years, which must all exist in the source.
func (s *Source) Subset(b Bucket, years []int, baseyear int) (*Subset, error) {
	cols := make([]int, len(years))
	for i, y := range years {
		j, ok := indexOf(s.Years, y)
		if !ok {
			return nil, fmt.Errorf("%w: projection year %d not in ensemble years %v",
				ErrInputFormat, y, s.Years)
		}
		cols[i] = j
	}

	sub := &Subset{Years: years, Members: s.Members, data: map[IceSheet][][]float64{}}
	for _, sheet := range [3]IceSheet{EAIS, WAIS, GIS} {
		raw := s.data[b][sheet]
		m := make([][]float64, s.Members)
		for i, traj := range raw {
			ref := refValue(s.Years, traj, baseyear)
			row := make([]float64, len(years))
			for k, j := range cols {
				row[k] = traj[j] - ref
			}
			m[i] = row
		}
		sub.data[sheet] = m
	}

	ais := make([][]float64, s.Members)
	for i := range ais {
		row := make([]float64, len(years))
		for k := range row {
			row[k] = sub.data[EAIS][i][k] + sub.data[WAIS][i][k]
		}
		ais[i] = row
	}
	sub.data[AIS] = ais
	return sub, nil
}

// Member returns one centered trajectory. The slice is shared; callers must
// not mutate it.
func (s *Subset) Member(sheet IceSheet, i int) []float64 { return s.data[sheet][i] }

// refValue linearly interpolates a member trajectory at baseyear, with an
// implied (2000, 0.0) anchor prepended to the series. Base years before the
// first anchor reference zero; beyond the last year the final value holds.
func refValue(years []int, traj []float64, baseyear int) float64 {
	xs := append([]int{2000}, years...)
	ys := append([]float64{0}, traj...)
	if baseyear <= xs[0] {
		return 0
	}
	last := len(xs) - 1
	if baseyear >= xs[last] {
		return ys[last]
	}
	for i := 1; i <= last; i++ {
		if baseyear <= xs[i] {
			f := float64(baseyear-xs[i-1]) / float64(xs[i]-xs[i-1])
			return ys[i-1] + f*(ys[i]-ys[i-1])
		}
	}
	return ys[last]
}

func indexOf(xs []int, x int) (int, bool) {
	for i, v := range xs {
		if v == x {
			return i, true
		}
	}
	return 0, false
}

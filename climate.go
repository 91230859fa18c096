package icesheets

import "fmt"

// Reference and integration windows of the temperature-driven conditioning
// rule, and the Bamber et al. (2019) integrated-warming markers (°C·yr over
// 2000–2099) of the low and high elicitation scenarios.
const (
	refWindowStart = 1850
	refWindowEnd   = 1900 // exclusive
	intWindowStart = 2000
	intWindowEnd   = 2100 // exclusive

	isatLowMarker  = 142.5
	isatHighMarker = 242.5
)

// Trajectory is an externally produced surface-air-temperature ensemble:
// one temperature series per sample on calendar years.
type Trajectory struct {
	Years []int
	SAT   [][]float64 // [yearIndex][sample], °C

	baseyear int
}

// LoadTrajectory reads a climate file holding a years coordinate and a
// years×samples surface_temperature variable.
func LoadTrajectory(path string) (*Trajectory, error) {
	fid, f, err := openNC(path)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	yrs, err := ncInts(f, "years")
	if err != nil {
		return nil, fmt.Errorf("climate %s: %w", path, err)
	}
	dims := f.Header.Lengths("surface_temperature")
	if !hasVar(f, "surface_temperature") || len(dims) != 2 || dims[0] != len(yrs) {
		return nil, fmt.Errorf("climate %s: %w: surface_temperature must be years×samples",
			path, ErrInputFormat)
	}
	flat, err := ncFloats(f, "surface_temperature")
	if err != nil {
		return nil, fmt.Errorf("climate %s: %w", path, err)
	}
	t := &Trajectory{Years: yrs, SAT: make([][]float64, len(yrs))}
	for i := range t.SAT {
		t.SAT[i] = flat[i*dims[1] : (i+1)*dims[1]]
	}
	if a := f.Header.GetAttribute("", "baseyear"); a != nil {
		if v, ok := a.([]int32); ok && len(v) == 1 {
			t.baseyear = int(v[0])
		}
	}
	return t, nil
}

// Samples returns the trajectory's sample-dimension cardinality.
func (t *Trajectory) Samples() int {
	if len(t.SAT) == 0 {
		return 0
	}
	return len(t.SAT[0])
}

// Check validates the trajectory against the run configuration before any
// sampling: the sample count must equal nsamps and the reference and
// integration windows must be covered.
func (t *Trajectory) Check(cfg *Config) error {
	if n := t.Samples(); n != cfg.NSamps {
		return fmt.Errorf("%w: climate trajectory has %d samples, nsamps is %d",
			ErrCountMismatch, n, cfg.NSamps)
	}
	for _, y := range [4]int{refWindowStart, refWindowEnd - 1, intWindowStart, intWindowEnd - 1} {
		if _, ok := indexOf(t.Years, y); !ok {
			return fmt.Errorf("%w: climate trajectory does not cover year %d", ErrInputFormat, y)
		}
	}
	if t.baseyear != 0 && t.baseyear != cfg.BaseYear {
		return fmt.Errorf("%w: climate trajectory baseyear %d differs from configured %d",
			ErrConfiguration, t.baseyear, cfg.BaseYear)
	}
	return nil
}

// HighWeights converts each sample's integrated warming into the probability
// of drawing that sample from the high-scenario elicitation. Temperatures
// are first normalized to the sample's 1850–1899 mean, then integrated over
// 2000–2099 and scaled linearly between the low and high markers, clamped
// to [0,1].
func (t *Trajectory) HighWeights() []float64 {
	n := t.Samples()
	ref := make([]float64, n)
	var refYears int
	for i, y := range t.Years {
		if y >= refWindowStart && y < refWindowEnd {
			for s := 0; s < n; s++ {
				ref[s] += t.SAT[i][s]
			}
			refYears++
		}
	}
	for s := range ref {
		ref[s] /= float64(refYears)
	}

	w := make([]float64, n)
	for i, y := range t.Years {
		if y >= intWindowStart && y < intWindowEnd {
			for s := 0; s < n; s++ {
				w[s] += t.SAT[i][s] - ref[s]
			}
		}
	}
	for s := range w {
		f := (w[s] - isatLowMarker) / (isatHighMarker - isatLowMarker)
		if f < 0 {
			f = 0
		} else if f > 1 {
			f = 1
		}
		w[s] = f
	}
	return w
}

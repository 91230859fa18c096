package icesheets

import (
	"fmt"
	"math/rand"

	"github.com/ctessum/sparse"
	mrg63k3a "github.com/maseology/goRNG/MRG63k3a"
)

// newGenerator returns the deterministic pseudo-random source for one
// ice-sheet pipeline. Every pipeline seeds its own generator from the run
// seed alone, so each independently reproduces the identical joint draw and
// output never depends on scheduling.
func newGenerator(seed int64) *rand.Rand {
	rng := rand.New(mrg63k3a.New())
	rng.Seed(seed)
	return rng
}

// drawIndices draws nsamps ensemble-member indices from [0,members). With
// replacement the draws are independent; without, a random permutation is
// truncated, which requires nsamps <= members.
func drawIndices(rng *rand.Rand, nsamps, members int, replace bool) ([]int, error) {
	if replace {
		idx := make([]int, nsamps)
		for i := range idx {
			idx[i] = rng.Intn(members)
		}
		return idx, nil
	}
	if nsamps > members {
		return nil, fmt.Errorf("%w: nsamps %d exceeds ensemble size %d without replacement",
			ErrCountMismatch, nsamps, members)
	}
	return rng.Perm(members)[:nsamps], nil
}

// drawSelector draws the per-sample high/low choices of the temperature
// conditioning rule. It must run before drawIndices on the same generator so
// the stream order matches across pipelines.
func drawSelector(rng *rand.Rand, weights []float64) []bool {
	use := make([]bool, len(weights))
	for i, w := range weights {
		use[i] = rng.Float64() < w
	}
	return use
}

// sampler materializes correlation-preserving global sample tensors: one
// joint index vector selects complete member trajectories across every ice
// sheet and year. In conditioned runs each sample's identity is re-expressed
// against the realized temperature path with the 1:1 index correspondence of
// the climate trajectory; useHigh is nil otherwise and hi is ignored.
type sampler struct {
	lo, hi  *Subset
	idx     []int
	useHigh []bool
}

// global builds the (samples, years) tensor for one ice sheet.
func (sp sampler) global(sheet IceSheet) *sparse.DenseArray {
	ny := len(sp.lo.Years)
	out := sparse.ZerosDense(len(sp.idx), ny)
	for i, m := range sp.idx {
		traj := sp.lo.Member(sheet, m)
		if sp.useHigh != nil && sp.useHigh[i] {
			traj = sp.hi.Member(sheet, m)
		}
		copy(out.Elements[i*ny:(i+1)*ny], traj)
	}
	return out
}

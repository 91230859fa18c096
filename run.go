package icesheets

import (
	"fmt"

	"github.com/ctessum/sparse"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Pipeline wires one run: the shared immutable inputs, the validated
// configuration and the requested output channels. The four ice sheets are
// processed as independent instances of Resolve → Sample → (Condition) →
// Localize → Write over disjoint outputs; they may run sequentially or in
// parallel with identical results.
type Pipeline struct {
	Config  Config
	Source  *Source
	Climate *Trajectory // nil when scenario-driven
	Sites   []Location
	Fields  map[IceSheet]*Field
	Outputs map[IceSheet]Channel

	// Parallel fans the sheets out over goroutines.
	Parallel bool

	// OnChunk, when set, observes localization progress.
	OnChunk func(sheet IceSheet, done, total int)

	Log *zap.Logger
}

// Run validates everything up front, then executes the four ice-sheet
// pipelines. Any fatal error aborts the run; chunk files already flushed are
// not retracted.
func (p *Pipeline) Run() error {
	if p.Log == nil {
		p.Log = zap.NewNop()
	}
	if err := p.validate(); err != nil {
		return err
	}

	years := p.Config.Years()
	lo, hi, weights, err := p.resolve(years)
	if err != nil {
		return err
	}

	if !p.Parallel {
		for _, sheet := range Sheets {
			if err := p.runSheet(sheet, lo, hi, weights); err != nil {
				return err
			}
		}
		return nil
	}
	var g errgroup.Group
	for _, sheet := range Sheets {
		sheet := sheet
		g.Go(func() error { return p.runSheet(sheet, lo, hi, weights) })
	}
	return g.Wait()
}

func (p *Pipeline) validate() error {
	if err := p.Config.Validate(p.Climate != nil); err != nil {
		return err
	}
	if p.Source == nil {
		return fmt.Errorf("%w: no projection ensemble loaded", ErrConfiguration)
	}
	for _, sheet := range [3]IceSheet{EAIS, WAIS, GIS} {
		if p.Fields[sheet] == nil {
			return fmt.Errorf("%w: no %s fingerprint field loaded", ErrConfiguration, sheet)
		}
	}
	if p.Climate != nil {
		if err := p.Climate.Check(&p.Config); err != nil {
			return err
		}
	}
	if !p.Config.Replace && p.Config.NSamps > p.Source.Members {
		return fmt.Errorf("%w: nsamps %d exceeds ensemble size %d without replacement",
			ErrCountMismatch, p.Config.NSamps, p.Source.Members)
	}
	return nil
}

// resolve selects the ensemble subsets for the run: the scenario's bucket
// when scenario-driven, or both buckets plus high-pick weights when a
// climate trajectory conditions the samples.
func (p *Pipeline) resolve(years []int) (lo, hi *Subset, weights []float64, err error) {
	if p.Climate != nil {
		lo, err = p.Source.Subset(Low, years, p.Config.BaseYear)
		if err != nil {
			return nil, nil, nil, err
		}
		hi, err = p.Source.Subset(High, years, p.Config.BaseYear)
		if err != nil {
			return nil, nil, nil, err
		}
		p.Log.Info("scenario conditioning engaged",
			zap.String("scenario", string(p.Config.Scenario)),
			zap.Int("climate samples", p.Climate.Samples()))
		return lo, hi, p.Climate.HighWeights(), nil
	}
	b, err := p.Config.Scenario.Bucket()
	if err != nil {
		return nil, nil, nil, err
	}
	lo, err = p.Source.Subset(b, years, p.Config.BaseYear)
	if err != nil {
		return nil, nil, nil, err
	}
	p.Log.Info("scenario resolved",
		zap.String("scenario", string(p.Config.Scenario)),
		zap.String("bucket", b.String()))
	return lo, nil, nil, nil
}

// runSheet executes one ice sheet's stage sequence. The generator is seeded
// from the run seed alone, so every sheet reproduces the identical joint
// index vector and the correlation structure of the source ensemble is
// preserved by construction.
func (p *Pipeline) runSheet(sheet IceSheet, lo, hi *Subset, weights []float64) error {
	cfg := &p.Config
	rng := newGenerator(cfg.Seed)

	sp := sampler{lo: lo, hi: hi}
	if weights != nil {
		sp.useHigh = drawSelector(rng, weights)
	}
	idx, err := drawIndices(rng, cfg.NSamps, lo.Members, cfg.Replace)
	if err != nil {
		return err
	}
	sp.idx = idx

	meta := Meta{
		Description: fmt.Sprintf("SLR contribution from %s from the Bamber et al. 2019 workflow", sheet),
		Scenario:    string(cfg.Scenario),
		BaseYear:    cfg.BaseYear,
	}
	ch := p.Outputs[sheet]

	// Global and local tensors are always computed; writing is conditional.
	global := sp.global(sheet)
	if ch.Global != "" {
		if err := writeGlobal(ch.Global, global, lo.Years, meta); err != nil {
			return err
		}
		p.Log.Info("global projections written",
			zap.String("sheet", sheet.String()), zap.String("file", ch.Global))
	}

	var lw *datasetWriter
	if ch.Local != "" {
		if lw, err = newDatasetWriter(ch.Local, p.Sites, cfg.NSamps, lo.Years, meta); err != nil {
			return err
		}
	}
	nchunks := (len(p.Sites) + cfg.ChunkSize - 1) / cfg.ChunkSize
	done := 0
	err = localize(components(sheet, sp, p.Fields), p.Sites, cfg.ChunkSize,
		func(offset int, _ []Location, block *sparse.DenseArray) error {
			if lw != nil {
				if err := lw.writeBlock(offset, block); err != nil {
					return err
				}
			}
			done++
			if p.OnChunk != nil {
				p.OnChunk(sheet, done, nchunks)
			}
			return nil
		})
	if lw != nil {
		if cerr := lw.close(); err == nil {
			err = cerr
		}
		if err == nil {
			p.Log.Info("local projections written",
				zap.String("sheet", sheet.String()), zap.String("file", ch.Local),
				zap.Int("sites", len(p.Sites)), zap.Int("chunks", nchunks))
		}
	}
	return err
}

package icesheets

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// component is one fingerprinted contribution to a sheet's local sea level.
// EAIS, WAIS and GIS each localize as a single component; AIS is the sum of
// its east and west components.
type component struct {
	global *sparse.DenseArray // (samples, years)
	field  *Field
}

// components maps an ice sheet onto the fingerprinted contributions that
// compose its local signal.
func components(sheet IceSheet, sp sampler, fields map[IceSheet]*Field) []component {
	switch sheet {
	case AIS:
		return []component{
			{global: sp.global(EAIS), field: fields[EAIS]},
			{global: sp.global(WAIS), field: fields[WAIS]},
		}
	default:
		return []component{{global: sp.global(sheet), field: fields[sheet]}}
	}
}

// localize partitions sites into consecutive chunks of at most chunksize
// entries and streams each filled (locations, samples, years) block to emit.
// Chunk boundaries bound peak memory; they never change the numbers. A site
// that cannot be resolved against a fingerprint field aborts the whole run.
func localize(comps []component, sites []Location, chunksize int,
	emit func(offset int, sites []Location, block *sparse.DenseArray) error) error {

	if len(comps) == 0 {
		return nil
	}
	nsamps := comps[0].global.Shape[0]
	nyears := comps[0].global.Shape[1]

	for off := 0; off < len(sites); off += chunksize {
		end := off + chunksize
		if end > len(sites) {
			end = len(sites)
		}
		chunk := sites[off:end]

		block := sparse.ZerosDense(len(chunk), nsamps, nyears)
		for _, c := range comps {
			for k, site := range chunk {
				fac, err := c.field.Factor(site.Lat, site.Lon)
				if err != nil {
					return fmt.Errorf("site %q (id %d): %w", site.Name, site.ID, err)
				}
				dst := block.Elements[k*nsamps*nyears : (k+1)*nsamps*nyears]
				for e, g := range c.global.Elements {
					dst[e] += g * fac
				}
			}
		}
		if err := emit(off, chunk, block); err != nil {
			return err
		}
	}
	return nil
}

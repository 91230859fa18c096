// Command icesheets runs the Bamber et al. (2019) ice-sheet sea-level
// projection pipeline: resample the SEJ ensemble, optionally condition on an
// external temperature trajectory, localize with spatial fingerprints and
// write global/local NetCDF projections.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gosuri/uiprogress"
	"github.com/maseology/mmio"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	icesheets "github.com/fact-sealevel/bamber19-icesheets"
)

func env(key, def string) string {
	if v, ok := os.LookupEnv("ICESHEETS_" + key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, ok := os.LookupEnv("ICESHEETS_" + key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv("ICESHEETS_" + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

type options struct {
	pipelineID string
	pyearStart int
	pyearEnd   int
	pyearStep  int
	baseyear   int
	scenario   string
	ensembleFp string
	climateFp  string
	locationFp string
	fprintDir  string
	nsamps     int
	replace    bool
	seed       int64
	chunksize  int
	outputPath string
	outGlobal  map[icesheets.IceSheet]*string
	outLocal   map[icesheets.IceSheet]*string
	quiet      bool
	sequential bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{
		outGlobal: map[icesheets.IceSheet]*string{},
		outLocal:  map[icesheets.IceSheet]*string{},
	}
	cmd := &cobra.Command{
		Use:   "icesheets",
		Short: "Sea-level projections from ice-sheet contributions (Bamber et al. 2019)",
		Long: "Samples estimated global ice-sheet contributions to sea level and " +
			"adjusts them with spatial fingerprints to produce localized projections.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&o.pipelineID, "pipeline-id", env("PIPELINE_ID", ""), "unique identifier for this run; used to name output files")
	fl.IntVar(&o.pyearStart, "pyear-start", envInt("PYEAR_START", 2020), "projection year start")
	fl.IntVar(&o.pyearEnd, "pyear-end", envInt("PYEAR_END", 2100), "projection year end")
	fl.IntVar(&o.pyearStep, "pyear-step", envInt("PYEAR_STEP", 10), "projection year step")
	fl.IntVar(&o.baseyear, "baseyear", envInt("BASEYEAR", 2000), "year to which projections are referenced")
	fl.StringVar(&o.scenario, "scenario", env("SCENARIO", "rcp85"), "emissions scenario (rcp26, rcp85, tlim2.0win0.25, tlim5.0win0.25)")
	fl.StringVar(&o.ensembleFp, "ensemble-file", env("ENSEMBLE_FILE", "bamber19_sej_core.nc"), "SEJ projection core file")
	fl.StringVar(&o.climateFp, "climate-data-file", env("CLIMATE_DATA_FILE", ""), "surface temperature trajectory file; engages scenario conditioning")
	fl.StringVar(&o.locationFp, "location-file", env("LOCATION_FILE", "location.lst"), "list of points for localization (name id lat lon)")
	fl.StringVar(&o.fprintDir, "fingerprint-dir", env("FINGERPRINT_DIR", "FPRINT"), "directory holding fprint_{eais,wais,gis}.nc")
	fl.IntVar(&o.nsamps, "nsamps", envInt("NSAMPS", 500), "number of samples to draw")
	fl.BoolVar(&o.replace, "replace", envBool("REPLACE", true), "sample with replacement")
	fl.Int64Var(&o.seed, "rngseed", int64(envInt("RNGSEED", 1234)), "seed for the random number generator")
	fl.IntVar(&o.chunksize, "chunksize", envInt("CHUNKSIZE", 50), "locations per chunk during localization")
	fl.StringVar(&o.outputPath, "output-path", env("OUTPUT_PATH", "output"), "directory for derived output file names")
	fl.BoolVar(&o.quiet, "quiet", false, "suppress the progress bar")
	fl.BoolVar(&o.sequential, "sequential", false, "process ice sheets one at a time")

	for _, sheet := range icesheets.Sheets {
		g, l := new(string), new(string)
		o.outGlobal[sheet], o.outLocal[sheet] = g, l
		name := sheet.String()
		fl.StringVar(g, "output-"+lc(name)+"-global-file", "", "explicit "+name+" global output path (overrides --output-path)")
		fl.StringVar(l, "output-"+lc(name)+"-local-file", "", "explicit "+name+" local output path (overrides --output-path)")
	}
	return cmd
}

func lc(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func (o *options) channels() map[icesheets.IceSheet]icesheets.Channel {
	out := map[icesheets.IceSheet]icesheets.Channel{}
	for _, sheet := range icesheets.Sheets {
		ch := icesheets.Channel{Global: *o.outGlobal[sheet], Local: *o.outLocal[sheet]}
		if ch.Global == "" && o.outputPath != "" {
			ch.Global = filepath.Join(o.outputPath, fmt.Sprintf("%s_%s_globalsl.nc", o.pipelineID, sheet))
		}
		if ch.Local == "" && o.outputPath != "" {
			ch.Local = filepath.Join(o.outputPath, fmt.Sprintf("%s_%s_localsl.nc", o.pipelineID, sheet))
		}
		out[sheet] = ch
	}
	return out
}

func run(o *options) error {
	// Checked here rather than with MarkFlagRequired so the env fallback
	// satisfies it too.
	if o.pipelineID == "" {
		return fmt.Errorf("%w: pipeline-id is required (--pipeline-id or ICESHEETS_PIPELINE_ID)",
			icesheets.ErrConfiguration)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := icesheets.Config{
		PipelineID: o.pipelineID,
		PyearStart: o.pyearStart,
		PyearEnd:   o.pyearEnd,
		PyearStep:  o.pyearStep,
		BaseYear:   o.baseyear,
		Scenario:   icesheets.Scenario(o.scenario),
		NSamps:     o.nsamps,
		Replace:    o.replace,
		Seed:       o.seed,
		ChunkSize:  o.chunksize,
	}
	// Surface option errors before touching any input file.
	if err := cfg.Validate(o.climateFp != ""); err != nil {
		return err
	}

	tt := mmio.NewTimer()
	src, err := icesheets.LoadSource(o.ensembleFp)
	if err != nil {
		return err
	}
	var clim *icesheets.Trajectory
	if o.climateFp != "" {
		if clim, err = icesheets.LoadTrajectory(o.climateFp); err != nil {
			return err
		}
	}
	sites, err := icesheets.LoadLocations(o.locationFp)
	if err != nil {
		return err
	}
	fields, err := icesheets.LoadFields(o.fprintDir)
	if err != nil {
		return err
	}
	tt.Lap("inputs loaded")

	chans := o.channels()
	if o.outputPath != "" {
		mmio.MakeDir(o.outputPath)
	}

	p := &icesheets.Pipeline{
		Config:   cfg,
		Source:   src,
		Climate:  clim,
		Sites:    sites,
		Fields:   fields,
		Outputs:  chans,
		Parallel: !o.sequential,
		Log:      logger,
	}

	if !o.quiet {
		nchunks := (len(sites) + o.chunksize - 1) / o.chunksize
		uiprogress.Start()
		bar := uiprogress.AddBar(nchunks * len(icesheets.Sheets)).AppendCompleted().PrependElapsed()
		p.OnChunk = func(icesheets.IceSheet, int, int) { bar.Incr() }
		defer uiprogress.Stop()
	}

	logger.Info("starting run",
		zap.String("pipeline_id", o.pipelineID),
		zap.String("scenario", o.scenario),
		zap.Int("nsamps", o.nsamps),
		zap.Int("members", src.Members),
		zap.Int("sites", len(sites)),
		zap.Bool("conditioned", clim != nil))

	if err := p.Run(); err != nil {
		return err
	}
	tt.Lap("projections complete")
	return nil
}

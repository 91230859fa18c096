package icesheets

import "fmt"

// Scenario names an emissions pathway or temperature-target bucket of the
// source ensemble.
type Scenario string

const (
	RCP26  Scenario = "rcp26"
	RCP85  Scenario = "rcp85"
	Tlim2C Scenario = "tlim2.0win0.25"
	Tlim5C Scenario = "tlim5.0win0.25"
)

// Bucket selects one of the two ensemble core files.
type Bucket int

const (
	Low Bucket = iota
	High
)

func (b Bucket) String() string {
	if b == High {
		return "high"
	}
	return "low"
}

// ParseScenario maps a tag onto the closed scenario enumeration.
func ParseScenario(tag string) (Scenario, error) {
	switch Scenario(tag) {
	case RCP26, RCP85, Tlim2C, Tlim5C:
		return Scenario(tag), nil
	}
	return "", fmt.Errorf("%w: unrecognized scenario %q", ErrConfiguration, tag)
}

// Bucket returns the ensemble subset the scenario draws from.
func (s Scenario) Bucket() (Bucket, error) {
	switch s {
	case RCP26, Tlim2C:
		return Low, nil
	case RCP85, Tlim5C:
		return High, nil
	}
	return 0, fmt.Errorf("%w: unrecognized scenario %q", ErrConfiguration, string(s))
}

// Config is the validated parameter surface of a run. PipelineID is
// bookkeeping only and has no computational effect.
type Config struct {
	PipelineID string

	PyearStart int // >= 2020
	PyearEnd   int // <= 2300
	PyearStep  int // >= 1
	BaseYear   int

	Scenario Scenario // advisory when a climate trajectory is supplied

	NSamps  int
	Replace bool
	Seed    int64

	ChunkSize int
}

// Validate fails fast on option errors, before any input is sampled.
// hasClimate reports whether a climate trajectory accompanies the run; with
// one present the scenario tag becomes advisory and conditioning takes
// precedence.
func (c *Config) Validate(hasClimate bool) error {
	switch {
	case c.PyearStart < 2020:
		return fmt.Errorf("%w: pyear_start %d before 2020", ErrConfiguration, c.PyearStart)
	case c.PyearEnd > 2300:
		return fmt.Errorf("%w: pyear_end %d after 2300", ErrConfiguration, c.PyearEnd)
	case c.PyearStep < 1:
		return fmt.Errorf("%w: pyear_step %d < 1", ErrConfiguration, c.PyearStep)
	case c.NSamps < 1:
		return fmt.Errorf("%w: nsamps %d < 1", ErrConfiguration, c.NSamps)
	case c.ChunkSize < 1:
		return fmt.Errorf("%w: chunksize %d < 1", ErrConfiguration, c.ChunkSize)
	}
	if !hasClimate {
		if _, err := ParseScenario(string(c.Scenario)); err != nil {
			return err
		}
	}
	return nil
}

// Years returns the projection-year sequence implied by the config.
func (c *Config) Years() []int {
	return projectionYears(c.PyearStart, c.PyearEnd, c.PyearStep)
}

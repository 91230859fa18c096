package icesheets

import "errors"

// Fatal error classes. Every failure surfaced by a run wraps exactly one of
// these so callers can branch with errors.Is.
var (
	// ErrConfiguration marks inconsistent or invalid run options, such as an
	// unrecognized scenario with no climate trajectory to fall back on.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrInputFormat marks a malformed or incomplete input file: missing
	// variables, uncovered year ranges, duplicate location ids.
	ErrInputFormat = errors.New("malformed input")

	// ErrCountMismatch marks a sample-count inconsistency: nsamps exceeding
	// the ensemble size without replacement, or a climate trajectory whose
	// sample dimension disagrees with nsamps.
	ErrCountMismatch = errors.New("sample count mismatch")

	// ErrOutOfDomain marks a location that cannot be resolved against a
	// fingerprint field. It always aborts the run; locations are never
	// silently skipped.
	ErrOutOfDomain = errors.New("location outside fingerprint domain")
)

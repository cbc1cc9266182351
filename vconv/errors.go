package vconv

import "github.com/pkg/errors"

// The error taxonomy of the package. All failures are value returns wrapping
// one of these sentinels (test with errors.Is); computations are pure, so a
// failing query fails deterministically -- treat these as configuration
// bugs, never as transient conditions.
var (
	// ErrInvalidConfiguration indicates a single layer's parameters are
	// individually malformed: negative wing size, non-positive stride or
	// inverse stride, malformed padding.
	ErrInvalidConfiguration = errors.New("vconv: invalid layer configuration")

	// ErrInfeasibleLayer indicates a layer's parameters are valid but cannot
	// support the requested interval even after maximal extension into the
	// available input. Wrapped messages from sequence propagation include
	// the offending layer's position.
	ErrInfeasibleLayer = errors.New("vconv: layer cannot support the requested interval")

	// ErrOutOfDomain indicates a query interval lies outside the valid
	// input or output domain of a layer or sequence.
	ErrOutOfDomain = errors.New("vconv: query interval outside the valid domain")
)

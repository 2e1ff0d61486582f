package ta

import "errors"

// Error kinds shared by every batch and incremental entry point. Kernels wrap
// these with indicator context, so callers match with errors.Is.
var (
	// ErrInvalidParameter reports an out-of-domain optimization parameter
	// (period below its minimum, acceleration bounds inverted, and so on).
	ErrInvalidParameter = errors.New("ta: invalid parameter")

	// ErrLengthMismatch reports input/output slices of unequal length.
	ErrLengthMismatch = errors.New("ta: input/output length mismatch")

	// ErrInsufficientData reports a series shorter than the lookback needs.
	ErrInsufficientData = errors.New("ta: insufficient data")

	// ErrNaNDetected reports a NaN input sample under strict checking.
	ErrNaNDetected = errors.New("ta: NaN in input")

	// ErrConversion reports an integer constant that cannot be represented
	// exactly in the working precision.
	ErrConversion = errors.New("ta: numeric conversion out of range")
)

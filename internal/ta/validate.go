package ta

import "fmt"

// FloatFromInt converts an integer constant into the working precision.
// It fails with ErrConversion when the value cannot be represented exactly,
// rather than silently rounding.
func FloatFromInt(n int) (TAFloat, error) {
	if n > maxExactInt || n < -maxExactInt {
		return 0, fmt.Errorf("%w: %d", ErrConversion, n)
	}
	return TAFloat(n), nil
}

// checkPeriod fails with ErrInvalidParameter when period < minimum.
func checkPeriod(period, minimum int) error {
	if period < minimum {
		return fmt.Errorf("%w: period %d < %d", ErrInvalidParameter, period, minimum)
	}
	return nil
}

// checkData verifies the input is non-empty and longer than the lookback.
// Runs before any output is written, so failed calls leave buffers untouched.
func checkData(inputLen, lookback int) error {
	if inputLen == 0 {
		return fmt.Errorf("%w: empty input", ErrInsufficientData)
	}
	if inputLen <= lookback {
		return fmt.Errorf("%w: have %d samples, lookback %d", ErrInsufficientData, inputLen, lookback)
	}
	return nil
}

// checkLengths verifies every slice matches the reference input length.
func checkLengths(inputLen int, others ...[]TAFloat) error {
	for _, s := range others {
		if len(s) != inputLen {
			return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(s), inputLen)
		}
	}
	return nil
}

// checkNoNaN scans the given series for NaN samples when strict mode is on.
func (k Kernel) checkNoNaN(series ...[]TAFloat) error {
	if !k.CheckNaN {
		return nil
	}
	for _, s := range series {
		for i, v := range s {
			if IsNaN(v) {
				return fmt.Errorf("%w: index %d", ErrNaNDetected, i)
			}
		}
	}
	return nil
}

// checkNoNaNValues is the scalar-argument form used by incremental kernels.
func (k Kernel) checkNoNaNValues(values ...TAFloat) error {
	if !k.CheckNaN {
		return nil
	}
	for _, v := range values {
		if IsNaN(v) {
			return fmt.Errorf("%w: scalar input", ErrNaNDetected)
		}
	}
	return nil
}

// fillNaN marks the pre-lookback region of an output slice as undefined.
func fillNaN(out []TAFloat, lookback int) {
	nan := NaN()
	for i := 0; i < lookback && i < len(out); i++ {
		out[i] = nan
	}
}

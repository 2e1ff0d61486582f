package ta

import (
	"errors"
	"math"
	"testing"
)

// ────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────

func assertClose(t *testing.T, label string, got, want, tol TAFloat) {
	t.Helper()
	if IsNaN(got) || math.Abs(float64(got-want)) > float64(tol) {
		t.Errorf("%s: got %.10f, want %.10f (tol=%g)", label, got, want, tol)
	}
}

func assertNaN(t *testing.T, label string, got TAFloat) {
	t.Helper()
	if !IsNaN(got) {
		t.Errorf("%s: got %.10f, want NaN", label, got)
	}
}

// assertLookback checks the lookback law: exactly lookback leading NaNs,
// none after.
func assertLookback(t *testing.T, label string, out []TAFloat, lookback int) {
	t.Helper()
	for i, v := range out {
		if i < lookback && !IsNaN(v) {
			t.Errorf("%s: position %d inside lookback %d is %.6f, want NaN", label, i, lookback, v)
		}
		if i >= lookback && IsNaN(v) {
			t.Errorf("%s: position %d past lookback %d is NaN", label, i, lookback)
		}
	}
}

// testSeries generates a deterministic wavy price series for replay tests.
func testSeries(n int) []TAFloat {
	out := make([]TAFloat, n)
	for i := range out {
		f := float64(i)
		out[i] = TAFloat(100 + 10*math.Sin(f/3) + f/7)
	}
	return out
}

// testBars generates deterministic OHLCV bars with genuine high/low spread.
func testBars(n int) (open, high, low, close, volume []TAFloat) {
	close = testSeries(n)
	open = make([]TAFloat, n)
	high = make([]TAFloat, n)
	low = make([]TAFloat, n)
	volume = make([]TAFloat, n)
	for i := range close {
		if i == 0 {
			open[i] = close[i] - 1
		} else {
			open[i] = close[i-1]
		}
		spread := TAFloat(1 + 0.5*math.Abs(math.Cos(float64(i)/5)))
		hi, lo := open[i], close[i]
		if lo > hi {
			hi, lo = lo, hi
		}
		high[i] = hi + spread
		low[i] = lo - spread
		volume[i] = TAFloat(1000 + 50*i%400)
	}
	return open, high, low, close, volume
}

func nanSlice(n int) []TAFloat {
	out := make([]TAFloat, n)
	for i := range out {
		out[i] = NaN()
	}
	return out
}

// ────────────────────────────────────────────────────────────
// Validation kernel
// ────────────────────────────────────────────────────────────

func TestFloatFromInt_Exact(t *testing.T) {
	v, err := FloatFromInt(200)
	if err != nil {
		t.Fatalf("FloatFromInt(200): %v", err)
	}
	if v != 200 {
		t.Errorf("FloatFromInt(200) = %v", v)
	}
}

func TestFloatFromInt_OutOfRange(t *testing.T) {
	if _, err := FloatFromInt(maxExactInt + 1); !errors.Is(err, ErrConversion) {
		t.Errorf("FloatFromInt(maxExactInt+1): got %v, want ErrConversion", err)
	}
}

func TestStrictNaN_Rejected(t *testing.T) {
	strict := Kernel{CheckNaN: true}
	input := []TAFloat{1, 2, NaN(), 4, 5}
	out := make([]TAFloat, len(input))
	if err := strict.SMA(input, 3, out); !errors.Is(err, ErrNaNDetected) {
		t.Errorf("strict SMA over NaN input: got %v, want ErrNaNDetected", err)
	}
	// Fast mode lets the NaN propagate instead.
	if err := (Kernel{}).SMA(input, 3, out); err != nil {
		t.Errorf("fast SMA over NaN input: %v", err)
	}
}

func TestValidation_NoPartialOutput(t *testing.T) {
	input := []TAFloat{1, 2}
	out := nanSlice(5) // deliberately wrong length
	if err := (Kernel{}).SMA(input, 2, out); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("got %v, want ErrLengthMismatch", err)
	}
	for i, v := range out {
		if !IsNaN(v) {
			t.Errorf("output[%d] mutated to %.6f on failed call", i, v)
		}
	}
}

package ta

import (
	"errors"
	"testing"
)

const tol = 1e-9

// ────────────────────────────────────────────────────────────
// Known-value scenarios
// ────────────────────────────────────────────────────────────

func TestEMA_KnownValues(t *testing.T) {
	// EMA(3): m = 2/4 = 0.5, seed = (10+11+12)/3 = 11
	// out[2] = 12*0.5 + 11*0.5    = 11.5
	// out[3] = 13*0.5 + 11.5*0.5  = 12.25
	// out[4] = 14*0.5 + 12.25*0.5 = 13.125
	input := []TAFloat{10, 11, 12, 13, 14}
	out := make([]TAFloat, len(input))
	if err := (Kernel{}).EMA(input, 3, out); err != nil {
		t.Fatalf("EMA: %v", err)
	}
	assertLookback(t, "EMA(3)", out, 2)
	for i, want := range []TAFloat{11.5, 12.25, 13.125} {
		assertClose(t, "EMA(3)", out[i+2], want, tol)
	}
}

func TestEMAInc_KnownValue(t *testing.T) {
	// prev=13.5, price=15, m=0.5 → 15*0.5 + 13.5*0.5 = 14.25
	got, err := Kernel{}.EMAInc(15.0, 13.5, 3)
	if err != nil {
		t.Fatalf("EMAInc: %v", err)
	}
	assertClose(t, "EMAInc", got, 14.25, tol)
}

func TestSMA_KnownValues(t *testing.T) {
	// SMA(3) over 10,11,12,13,14: 11, 12, 13
	input := []TAFloat{10, 11, 12, 13, 14}
	out := make([]TAFloat, len(input))
	if err := (Kernel{}).SMA(input, 3, out); err != nil {
		t.Fatalf("SMA: %v", err)
	}
	assertLookback(t, "SMA(3)", out, 2)
	for i, want := range []TAFloat{11, 12, 13} {
		assertClose(t, "SMA(3)", out[i+2], want, tol)
	}
}

func TestMax_KnownValues(t *testing.T) {
	// Rolling max(3) over 5,3,8,1,9: 8, 8, 9
	input := []TAFloat{5, 3, 8, 1, 9}
	out := make([]TAFloat, len(input))
	if err := (Kernel{}).Max(input, 3, out); err != nil {
		t.Fatalf("Max: %v", err)
	}
	assertLookback(t, "Max(3)", out, 2)
	for i, want := range []TAFloat{8, 8, 9} {
		assertClose(t, "Max(3)", out[i+2], want, tol)
	}
}

func TestMin_KnownValues(t *testing.T) {
	input := []TAFloat{5, 3, 8, 1, 9}
	out := make([]TAFloat, len(input))
	if err := (Kernel{}).Min(input, 3, out); err != nil {
		t.Fatalf("Min: %v", err)
	}
	for i, want := range []TAFloat{3, 1, 1} {
		assertClose(t, "Min(3)", out[i+2], want, tol)
	}
}

func TestWMA_KnownValues(t *testing.T) {
	// WMA(3) over 10,11,12: (10*1 + 11*2 + 12*3)/6 = 68/6
	input := []TAFloat{10, 11, 12, 13}
	out := make([]TAFloat, len(input))
	if err := (Kernel{}).WMA(input, 3, out); err != nil {
		t.Fatalf("WMA: %v", err)
	}
	assertClose(t, "WMA(3)[2]", out[2], 68.0/6, tol)
	// next window 11,12,13: (11 + 24 + 39)/6 = 74/6
	assertClose(t, "WMA(3)[3]", out[3], 74.0/6, tol)
}

func TestVar_KnownValues(t *testing.T) {
	// Var(3) over 2,4,6: mean=4, var=(4+0+4)/3
	input := []TAFloat{2, 4, 6, 8}
	out := make([]TAFloat, len(input))
	if err := (Kernel{}).Var(input, 3, out); err != nil {
		t.Fatalf("Var: %v", err)
	}
	assertClose(t, "Var(3)[2]", out[2], 8.0/3, tol)
	assertClose(t, "Var(3)[3]", out[3], 8.0/3, tol)
}

func TestCorrel_PerfectCorrelation(t *testing.T) {
	a := []TAFloat{1, 2, 3, 4, 5}
	b := []TAFloat{2, 4, 6, 8, 10}
	out := make([]TAFloat, len(a))
	if err := (Kernel{}).Correl(a, b, 3, out); err != nil {
		t.Fatalf("Correl: %v", err)
	}
	assertLookback(t, "Correl(3)", out, 2)
	for i := 2; i < len(a); i++ {
		assertClose(t, "Correl(3)", out[i], 1, 1e-6)
	}
}

func TestROCP_KnownValues(t *testing.T) {
	input := []TAFloat{10, 10.5, 11.2, 10.8, 11.5}
	out := make([]TAFloat, len(input))
	if err := (Kernel{}).ROCP(input, 2, out); err != nil {
		t.Fatalf("ROCP: %v", err)
	}
	assertLookback(t, "ROCP(2)", out, 2)
	assertClose(t, "ROCP(2)[2]", out[2], (11.2-10)/10, tol)
	assertClose(t, "ROCP(2)[4]", out[4], (11.5-11.2)/11.2, tol)
}

func TestBBands_MiddleIsSMA(t *testing.T) {
	input := testSeries(40)
	upper := make([]TAFloat, len(input))
	middle := make([]TAFloat, len(input))
	lower := make([]TAFloat, len(input))
	sma := make([]TAFloat, len(input))
	k := Kernel{}
	if err := k.BBands(input, 10, 2, 2, upper, middle, lower); err != nil {
		t.Fatalf("BBands: %v", err)
	}
	if err := k.SMA(input, 10, sma); err != nil {
		t.Fatalf("SMA: %v", err)
	}
	assertLookback(t, "BBands upper", upper, 9)
	for i := 9; i < len(input); i++ {
		assertClose(t, "BBands middle vs SMA", middle[i], sma[i], tol)
		if upper[i] < middle[i] || lower[i] > middle[i] {
			t.Errorf("band ordering violated at %d: %v %v %v", i, upper[i], middle[i], lower[i])
		}
	}
}

func TestCDLDragonflyDoji_Classify(t *testing.T) {
	k := Kernel{}
	// Open and close pinned at the high, deep lower shadow.
	got, err := k.CDLDragonflyDojiInc(100, 100.05, 95, 100.02, 5)
	if err != nil {
		t.Fatalf("CDLDragonflyDojiInc: %v", err)
	}
	if got != SignalPattern {
		t.Errorf("dragonfly bar: got %v, want pattern", got)
	}
	// Fat-bodied bar is not a doji.
	got, err = k.CDLDragonflyDojiInc(100, 104, 99, 103.5, 5)
	if err != nil {
		t.Fatalf("CDLDragonflyDojiInc: %v", err)
	}
	if got != SignalNoPattern {
		t.Errorf("full-bodied bar: got %v, want no pattern", got)
	}
}

func TestHA_FirstBarSeed(t *testing.T) {
	open := []TAFloat{10, 11}
	high := []TAFloat{12, 13}
	low := []TAFloat{9, 10}
	close := []TAFloat{11, 12}
	n := len(open)
	outO, outH, outL, outC := make([]TAFloat, n), make([]TAFloat, n), make([]TAFloat, n), make([]TAFloat, n)
	if err := (Kernel{}).HA(open, high, low, close, outO, outH, outL, outC); err != nil {
		t.Fatalf("HA: %v", err)
	}
	assertClose(t, "haOpen[0]", outO[0], 10.5, tol)
	assertClose(t, "haClose[0]", outC[0], 10.5, tol)
	assertClose(t, "haOpen[1]", outO[1], 10.5, tol)
	assertClose(t, "haClose[1]", outC[1], 11.5, tol)
	if outH[1] < outO[1] || outH[1] < outC[1] || outL[1] > outO[1] || outL[1] > outC[1] {
		t.Errorf("HA high/low must bracket open/close")
	}
}

// ────────────────────────────────────────────────────────────
// Error taxonomy across families
// ────────────────────────────────────────────────────────────

func TestInsufficientData_AllPaths(t *testing.T) {
	k := Kernel{}
	short := []TAFloat{1, 2}
	out := nanSlice(2)

	if err := k.SMA(short, 5, out); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("SMA short: got %v", err)
	}
	if err := k.RSI(short, 5, out); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("RSI short: got %v", err)
	}
	if err := k.ATR(short, short, short, 5, out); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("ATR short: got %v", err)
	}
	if _, err := k.SeedMax(short, 5); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("SeedMax short: got %v", err)
	}
	// Failed batch calls must leave the output untouched.
	for i, v := range out {
		if !IsNaN(v) {
			t.Errorf("output[%d] written on failed call: %v", i, v)
		}
	}
}

func TestInvalidPeriod_AllFamilies(t *testing.T) {
	k := Kernel{}
	input := testSeries(30)
	out := make([]TAFloat, len(input))

	batch := map[string]error{
		"SMA":    k.SMA(input, 1, out),
		"EMA":    k.EMA(input, 1, out),
		"WMA":    k.WMA(input, 1, out),
		"RSI":    k.RSI(input, 1, out),
		"Max":    k.Max(input, 1, out),
		"Var":    k.Var(input, 1, out),
		"ATR":    k.ATR(input, input, input, 1, out),
		"Correl": k.Correl(input, input, 1, out),
	}
	for name, err := range batch {
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s period=1: got %v, want ErrInvalidParameter", name, err)
		}
	}

	if _, err := k.SMAInc(1, 1, 1, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SMAInc period=1: got %v", err)
	}
	if _, err := k.EMAInc(1, 1, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("EMAInc period=0: got %v", err)
	}
}

func TestSAR_InvalidAcceleration(t *testing.T) {
	high := testSeries(10)
	out := make([]TAFloat, len(high))
	// start > max is out of domain
	err := Kernel{}.SAR(high, high, 0.3, 0.02, 0.2, out)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("SAR start>max: got %v, want ErrInvalidParameter", err)
	}
}

func TestADOSC_InvalidPeriodOrder(t *testing.T) {
	if _, err := ADOSCLookback(10, 3); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("ADOSC fast>=slow: got %v", err)
	}
}

// ────────────────────────────────────────────────────────────
// Idempotence
// ────────────────────────────────────────────────────────────

func TestBatch_Idempotent(t *testing.T) {
	input := testSeries(100)
	a := make([]TAFloat, len(input))
	b := make([]TAFloat, len(input))
	k := Kernel{}
	if err := k.EMA(input, 14, a); err != nil {
		t.Fatal(err)
	}
	if err := k.EMA(input, 14, b); err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if IsNaN(a[i]) && IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			t.Errorf("EMA not bit-identical at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

package ta

import "fmt"

// ADLookback returns the number of undefined leading outputs for the
// accumulation/distribution line. The line is cumulative from the first bar,
// so there is none.
func ADLookback() int { return 0 }

// moneyFlowVolume converts one bar into its money-flow contribution. Bars
// with zero range contribute nothing.
func moneyFlowVolume(high, low, close, volume TAFloat) TAFloat {
	hl := high - low
	if hl == 0 {
		return 0
	}
	mfm := ((close - low) - (high - close)) / hl
	return mfm * volume
}

// AD computes the accumulation/distribution line, a cumulative sum of
// money-flow volume:
//
//	mfm = ((close-low) - (high-close)) / (high-low)
//	ad  = prev + mfm*volume
func (k Kernel) AD(high, low, close, volume []TAFloat, output []TAFloat) error {
	if err := checkData(len(high), ADLookback()); err != nil {
		return err
	}
	if err := checkLengths(len(high), low, close, volume, output); err != nil {
		return err
	}
	if err := k.checkNoNaN(high, low, close, volume); err != nil {
		return err
	}

	var prev TAFloat
	for i := range high {
		prev += moneyFlowVolume(high[i], low[i], close[i], volume[i])
		output[i] = prev
	}
	return nil
}

// ADInc advances the accumulation/distribution line by one bar. The carried
// state is the previous line value alone.
func (k Kernel) ADInc(high, low, close, volume, prevAD TAFloat) (TAFloat, error) {
	if err := k.checkNoNaNValues(high, low, close, volume, prevAD); err != nil {
		return 0, err
	}
	return prevAD + moneyFlowVolume(high, low, close, volume), nil
}

// ADOSCLookback returns the number of undefined leading outputs for the
// Chaikin oscillator, governed by the slow EMA.
func ADOSCLookback(fastPeriod, slowPeriod int) (int, error) {
	if err := checkPeriod(fastPeriod, 2); err != nil {
		return 0, err
	}
	if fastPeriod >= slowPeriod {
		return 0, fmt.Errorf("%w: fast period %d >= slow period %d", ErrInvalidParameter, fastPeriod, slowPeriod)
	}
	return slowPeriod - 1, nil
}

// ADOSC computes the Chaikin oscillator: the fast EMA of the
// accumulation/distribution line minus the slow EMA. This is a three-stage
// chain; the kernel also emits the A/D line and both EMAs so incremental
// state can be lifted from any batch position.
func (k Kernel) ADOSC(high, low, close, volume []TAFloat, fastPeriod, slowPeriod int, output, outAD, outFastEMA, outSlowEMA []TAFloat) error {
	lookback, err := ADOSCLookback(fastPeriod, slowPeriod)
	if err != nil {
		return err
	}
	if err := checkData(len(high), lookback); err != nil {
		return err
	}
	if err := checkLengths(len(high), low, close, volume, output, outAD, outFastEMA, outSlowEMA); err != nil {
		return err
	}
	if err := k.checkNoNaN(high, low, close, volume); err != nil {
		return err
	}

	if err := k.AD(high, low, close, volume, outAD); err != nil {
		return err
	}
	if err := k.EMA(outAD, fastPeriod, outFastEMA); err != nil {
		return err
	}
	if err := k.EMA(outAD, slowPeriod, outSlowEMA); err != nil {
		return err
	}
	for i := lookback; i < len(high); i++ {
		output[i] = outFastEMA[i] - outSlowEMA[i]
	}
	fillNaN(output, lookback)
	return nil
}

// ADOSCState is the carried state for the incremental Chaikin oscillator:
// the A/D line and its two EMA stages, updated in dependency order so each
// stage sees only already-updated inputs.
type ADOSCState struct {
	AD      TAFloat
	FastEMA TAFloat
	SlowEMA TAFloat
}

// ADOSCInc advances the Chaikin oscillator by one bar.
func (k Kernel) ADOSCInc(high, low, close, volume TAFloat, prev ADOSCState, fastPeriod, slowPeriod int) (TAFloat, ADOSCState, error) {
	if _, err := ADOSCLookback(fastPeriod, slowPeriod); err != nil {
		return 0, prev, err
	}
	if err := k.checkNoNaNValues(high, low, close, volume, prev.AD, prev.FastEMA, prev.SlowEMA); err != nil {
		return 0, prev, err
	}

	st := prev
	ad, err := k.ADInc(high, low, close, volume, prev.AD)
	if err != nil {
		return 0, prev, err
	}
	st.AD = ad
	if st.FastEMA, err = k.EMAInc(ad, prev.FastEMA, fastPeriod); err != nil {
		return 0, prev, err
	}
	if st.SlowEMA, err = k.EMAInc(ad, prev.SlowEMA, slowPeriod); err != nil {
		return 0, prev, err
	}
	return st.FastEMA - st.SlowEMA, st, nil
}

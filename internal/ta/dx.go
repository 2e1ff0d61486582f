package ta

// DXLookback returns the number of undefined leading outputs for the
// directional movement index.
func DXLookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// DXState is the carried state for incremental DX: the Wilder-smoothed
// directional movement and true range sub-components, updated in dependency
// order on every step.
type DXState struct {
	SmoothedPlusDM  TAFloat
	SmoothedMinusDM TAFloat
	SmoothedTR      TAFloat
}

// directionalMovement splits one bar transition into +DM and -DM.
func directionalMovement(high, low, prevHigh, prevLow TAFloat) (plus, minus TAFloat) {
	up := high - prevHigh
	down := prevLow - low
	if up > down && up > 0 {
		plus = up
	}
	if down > up && down > 0 {
		minus = down
	}
	return plus, minus
}

// dxValue maps smoothed components onto the 0..100 DX scale.
func dxValue(st DXState) TAFloat {
	if st.SmoothedTR == 0 {
		return 0
	}
	pdi := 100 * st.SmoothedPlusDM / st.SmoothedTR
	mdi := 100 * st.SmoothedMinusDM / st.SmoothedTR
	if pdi+mdi == 0 {
		return 0
	}
	return 100 * taAbs(pdi-mdi) / (pdi + mdi)
}

// DX computes the directional movement index. The smoothed sub-components
// are seeded with plain sums over the first period bar transitions and then
// Wilder-smoothed:
//
//	smoothed = prev - prev/period + current
//
// Alongside the DX series the kernel emits the three smoothed sub-series, so
// a caller can lift carried state straight out of any batch position.
func (k Kernel) DX(high, low, close []TAFloat, period int, output, outPlusDM, outMinusDM, outTR []TAFloat) error {
	lookback, err := DXLookback(period)
	if err != nil {
		return err
	}
	if err := checkData(len(high), lookback); err != nil {
		return err
	}
	if err := checkLengths(len(high), low, close, output, outPlusDM, outMinusDM, outTR); err != nil {
		return err
	}
	if err := k.checkNoNaN(high, low, close); err != nil {
		return err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return err
	}

	var st DXState
	for i := 1; i <= period; i++ {
		plus, minus := directionalMovement(high[i], low[i], high[i-1], low[i-1])
		st.SmoothedPlusDM += plus
		st.SmoothedMinusDM += minus
		st.SmoothedTR += trueRange(high[i], low[i], close[i-1])
	}
	write := func(i int) {
		output[i] = dxValue(st)
		outPlusDM[i] = st.SmoothedPlusDM
		outMinusDM[i] = st.SmoothedMinusDM
		outTR[i] = st.SmoothedTR
	}
	write(lookback)
	for i := lookback + 1; i < len(high); i++ {
		plus, minus := directionalMovement(high[i], low[i], high[i-1], low[i-1])
		st.SmoothedPlusDM += plus - st.SmoothedPlusDM/p
		st.SmoothedMinusDM += minus - st.SmoothedMinusDM/p
		st.SmoothedTR += trueRange(high[i], low[i], close[i-1]) - st.SmoothedTR/p
		write(i)
	}
	fillNaN(output, lookback)
	fillNaN(outPlusDM, lookback)
	fillNaN(outMinusDM, lookback)
	fillNaN(outTR, lookback)
	return nil
}

// DXInc advances the directional movement index by one bar. The previous bar
// supplies the directional movement and true range; every smoothed component
// comes back updated in the returned state.
func (k Kernel) DXInc(high, low, prevHigh, prevLow, prevClose TAFloat, prev DXState, period int) (TAFloat, DXState, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, prev, err
	}
	if err := k.checkNoNaNValues(high, low, prevHigh, prevLow, prevClose,
		prev.SmoothedPlusDM, prev.SmoothedMinusDM, prev.SmoothedTR); err != nil {
		return 0, prev, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, prev, err
	}

	plus, minus := directionalMovement(high, low, prevHigh, prevLow)
	st := DXState{
		SmoothedPlusDM:  prev.SmoothedPlusDM + plus - prev.SmoothedPlusDM/p,
		SmoothedMinusDM: prev.SmoothedMinusDM + minus - prev.SmoothedMinusDM/p,
		SmoothedTR:      prev.SmoothedTR + trueRange(high, low, prevClose) - prev.SmoothedTR/p,
	}
	return dxValue(st), st, nil
}

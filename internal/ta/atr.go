package ta

// ATRLookback returns the number of undefined leading outputs for the
// average true range. True range consumes one bar for the previous close and
// the seed average consumes period more.
func ATRLookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// TrueRange is the greatest of high-low, |high-prevClose|, |low-prevClose|.
func TrueRange(high, low, prevClose TAFloat) TAFloat {
	return trueRange(high, low, prevClose)
}

func trueRange(high, low, prevClose TAFloat) TAFloat {
	tr := high - low
	if hc := taAbs(high - prevClose); hc > tr {
		tr = hc
	}
	if lc := taAbs(low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}

// ATR computes the average true range: true range per bar, seeded with the
// mean of the first period true ranges, then Wilder-smoothed:
//
//	atr = (prev*(period-1) + tr) / period
//
// This is a two-stage chain, so the incremental form only needs the previous
// ATR and previous close as carried state.
func (k Kernel) ATR(high, low, close []TAFloat, period int, output []TAFloat) error {
	lookback, err := ATRLookback(period)
	if err != nil {
		return err
	}
	if err := checkData(len(high), lookback); err != nil {
		return err
	}
	if err := checkLengths(len(high), low, close, output); err != nil {
		return err
	}
	if err := k.checkNoNaN(high, low, close); err != nil {
		return err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return err
	}

	var sum TAFloat
	for i := 1; i <= period; i++ {
		sum += trueRange(high[i], low[i], close[i-1])
	}
	prev := sum / p
	output[lookback] = prev
	for i := lookback + 1; i < len(high); i++ {
		tr := trueRange(high[i], low[i], close[i-1])
		prev = (prev*(p-1) + tr) / p
		output[i] = prev
	}
	fillNaN(output, lookback)
	return nil
}

// ATRInc advances the average true range by one bar.
func (k Kernel) ATRInc(high, low, prevClose, prevATR TAFloat, period int) (TAFloat, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	if err := k.checkNoNaNValues(high, low, prevClose, prevATR); err != nil {
		return 0, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, err
	}
	return (prevATR*(p-1) + trueRange(high, low, prevClose)) / p, nil
}

package ta

// ADRLookback returns the number of undefined leading outputs for the
// average daily range.
func ADRLookback(period int) (int, error) {
	return SMALookback(period)
}

// ADR computes the average daily range: a simple moving average of the
// per-bar high-low range.
func (k Kernel) ADR(high, low []TAFloat, period int, output []TAFloat) error {
	lookback, err := ADRLookback(period)
	if err != nil {
		return err
	}
	if err := checkData(len(high), lookback); err != nil {
		return err
	}
	if err := checkLengths(len(high), low, output); err != nil {
		return err
	}
	if err := k.checkNoNaN(high, low); err != nil {
		return err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return err
	}

	var sum TAFloat
	for i := 0; i < period; i++ {
		sum += high[i] - low[i]
	}
	output[lookback] = sum / p
	for i := lookback + 1; i < len(high); i++ {
		sum += (high[i] - low[i]) - (high[i-period] - low[i-period])
		output[i] = sum / p
	}
	fillNaN(output, lookback)
	return nil
}

// ADRInc advances the average daily range by one bar. The bar leaving the
// window supplies the dropped range.
func (k Kernel) ADRInc(high, low, droppedHigh, droppedLow, prevADR TAFloat, period int) (TAFloat, error) {
	return k.SMAInc(high-low, droppedHigh-droppedLow, prevADR, period)
}

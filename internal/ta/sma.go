package ta

// SMALookback returns the number of undefined leading outputs for a simple
// moving average of the given period.
func SMALookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// SMA computes a simple moving average over input, writing one value per
// input position. The first period-1 outputs are NaN. The window sum is
// carried forward, so the whole series costs O(n) regardless of period.
func (k Kernel) SMA(input []TAFloat, period int, output []TAFloat) error {
	lookback, err := SMALookback(period)
	if err != nil {
		return err
	}
	if err := checkData(len(input), lookback); err != nil {
		return err
	}
	if err := checkLengths(len(input), output); err != nil {
		return err
	}
	if err := k.checkNoNaN(input); err != nil {
		return err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return err
	}

	var sum TAFloat
	for _, v := range input[:period] {
		sum += v
	}
	output[lookback] = sum / p
	for i := lookback + 1; i < len(input); i++ {
		sum += input[i] - input[i-period]
		output[i] = sum / p
	}
	fillNaN(output, lookback)
	return nil
}

// SMAInc advances a simple moving average by one sample.
// dropped is the raw sample leaving the window (the one period steps back);
// the caller keeps that window, typically in a Window ring.
//
//	next = prev + (price - dropped) / period
func (k Kernel) SMAInc(price, dropped, prevSMA TAFloat, period int) (TAFloat, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	if err := k.checkNoNaNValues(price, dropped, prevSMA); err != nil {
		return 0, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, err
	}
	return prevSMA + (price-dropped)/p, nil
}

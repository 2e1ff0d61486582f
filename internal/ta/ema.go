package ta

// EMALookback returns the number of undefined leading outputs for an
// exponential moving average of the given period.
func EMALookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// emaMultiplier derives the smoothing constant 2/(period+1).
func emaMultiplier(period int) (TAFloat, error) {
	p, err := FloatFromInt(period + 1)
	if err != nil {
		return 0, err
	}
	return 2 / p, nil
}

// EMA computes an exponential moving average. The recurrence is seeded with
// the mean of the first period samples and applied from the lookback
// position onward:
//
//	ema = price*m + prev*(1-m),  m = 2/(period+1)
func (k Kernel) EMA(input []TAFloat, period int, output []TAFloat) error {
	lookback, err := EMALookback(period)
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
	m, err := emaMultiplier(period)
	if err != nil {
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
	prev := sum / p
	for i := lookback; i < len(input); i++ {
		prev = input[i]*m + prev*(1-m)
		output[i] = prev
	}
	fillNaN(output, lookback)
	return nil
}

// EMAInc advances an exponential moving average by one sample. The carried
// state is the previous EMA alone; the smoothing constant is re-derived from
// the period so replay cannot drift from batch output.
func (k Kernel) EMAInc(price, prevEMA TAFloat, period int) (TAFloat, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	if err := k.checkNoNaNValues(price, prevEMA); err != nil {
		return 0, err
	}
	m, err := emaMultiplier(period)
	if err != nil {
		return 0, err
	}
	return price*m + prevEMA*(1-m), nil
}

package ta

// WMALookback returns the number of undefined leading outputs for a weighted
// moving average of the given period.
func WMALookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// WMA computes a linearly weighted moving average where the newest sample
// carries weight period and the oldest weight 1. Both the plain and the
// weighted window sums are carried forward:
//
//	W(i+1) = W(i) - S(i) + period*price(i+1)
//
// so each step is O(1) instead of rescanning the window.
func (k Kernel) WMA(input []TAFloat, period int, output []TAFloat) error {
	lookback, err := WMALookback(period)
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
	denom := p * (p + 1) / 2

	var sum, weighted TAFloat
	weight := TAFloat(1)
	for _, v := range input[:period] {
		sum += v
		weighted += v * weight
		weight++
	}
	output[lookback] = weighted / denom
	for i := lookback + 1; i < len(input); i++ {
		weighted += p*input[i] - sum
		sum += input[i] - input[i-period]
		output[i] = weighted / denom
	}
	fillNaN(output, lookback)
	return nil
}

// WMAInc computes the weighted moving average of one full window of raw
// samples, oldest first. The window itself is the minimal carried state for
// this family, so the caller passes it whole (typically via Window.Slice).
func (k Kernel) WMAInc(window []TAFloat, period int) (TAFloat, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	if len(window) != period {
		return 0, checkLengths(period, window)
	}
	if err := k.checkNoNaN(window); err != nil {
		return 0, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, err
	}
	denom := p * (p + 1) / 2

	var weighted TAFloat
	weight := TAFloat(1)
	for _, v := range window {
		weighted += v * weight
		weight++
	}
	return weighted / denom, nil
}

package ta

import "fmt"

// BBandsLookback returns the number of undefined leading outputs for
// Bollinger bands.
func BBandsLookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// BBands computes Bollinger bands: the middle band is an SMA, the upper and
// lower bands sit devUp and devDown standard deviations away. All three
// output slices are aligned to the input; deviation multipliers must be
// non-negative.
func (k Kernel) BBands(input []TAFloat, period int, devUp, devDown TAFloat, upper, middle, lower []TAFloat) error {
	lookback, err := BBandsLookback(period)
	if err != nil {
		return err
	}
	if devUp < 0 || devDown < 0 {
		return fmt.Errorf("%w: deviation multipliers %v/%v", ErrInvalidParameter, devUp, devDown)
	}
	if err := checkData(len(input), lookback); err != nil {
		return err
	}
	if err := checkLengths(len(input), upper, middle, lower); err != nil {
		return err
	}
	if err := k.checkNoNaN(input); err != nil {
		return err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return err
	}

	var sum, sumSq TAFloat
	for _, v := range input[:period] {
		sum += v
		sumSq += v * v
	}
	write := func(i int) {
		mean := sum / p
		sd := taSqrt(sumSq/p - mean*mean)
		middle[i] = mean
		upper[i] = mean + devUp*sd
		lower[i] = mean - devDown*sd
	}
	write(lookback)
	for i := lookback + 1; i < len(input); i++ {
		old := input[i-period]
		sum += input[i] - old
		sumSq += input[i]*input[i] - old*old
		write(i)
	}
	fillNaN(upper, lookback)
	fillNaN(middle, lookback)
	fillNaN(lower, lookback)
	return nil
}

// BBandsInc advances Bollinger bands by one sample. State is the window sum
// and sum of squares, returned updated alongside the three band values.
func (k Kernel) BBandsInc(price, dropped, prevSum, prevSumSq TAFloat, period int, devUp, devDown TAFloat) (up, mid, low, sum, sumSq TAFloat, err error) {
	if err = checkPeriod(period, 2); err != nil {
		return 0, 0, 0, 0, 0, err
	}
	if devUp < 0 || devDown < 0 {
		return 0, 0, 0, 0, 0, fmt.Errorf("%w: deviation multipliers %v/%v", ErrInvalidParameter, devUp, devDown)
	}
	if err = k.checkNoNaNValues(price, dropped, prevSum, prevSumSq); err != nil {
		return 0, 0, 0, 0, 0, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, 0, 0, 0, 0, err
	}

	sum = prevSum + (price - dropped)
	sumSq = prevSumSq + (price*price - dropped*dropped)
	mean := sum / p
	sd := taSqrt(sumSq/p - mean*mean)
	return mean + devUp*sd, mean, mean - devDown*sd, sum, sumSq, nil
}

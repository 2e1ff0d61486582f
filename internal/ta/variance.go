package ta

// VarLookback returns the number of undefined leading outputs for rolling
// population variance.
func VarLookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// Var computes the rolling population variance over a window of period
// samples, carrying the window sum and sum of squares forward:
//
//	var = sumSq/period - (sum/period)^2
func (k Kernel) Var(input []TAFloat, period int, output []TAFloat) error {
	lookback, err := VarLookback(period)
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

	var sum, sumSq TAFloat
	for _, v := range input[:period] {
		sum += v
		sumSq += v * v
	}
	mean := sum / p
	output[lookback] = sumSq/p - mean*mean
	for i := lookback + 1; i < len(input); i++ {
		old := input[i-period]
		sum += input[i] - old
		sumSq += input[i]*input[i] - old*old
		mean = sum / p
		output[i] = sumSq/p - mean*mean
	}
	fillNaN(output, lookback)
	return nil
}

// VarInc advances the rolling variance by one sample. The carried state is
// the window sum and sum of squares, both returned updated; the caller's
// raw-sample ring supplies the dropped value.
func (k Kernel) VarInc(price, dropped, prevSum, prevSumSq TAFloat, period int) (variance, sum, sumSq TAFloat, err error) {
	if err = checkPeriod(period, 2); err != nil {
		return 0, 0, 0, err
	}
	if err = k.checkNoNaNValues(price, dropped, prevSum, prevSumSq); err != nil {
		return 0, 0, 0, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, 0, 0, err
	}

	sum = prevSum + (price - dropped)
	sumSq = prevSumSq + (price*price - dropped*dropped)
	mean := sum / p
	return sumSq/p - mean*mean, sum, sumSq, nil
}

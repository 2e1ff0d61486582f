package ta

// ROCPLookback returns the number of undefined leading outputs for rate of
// change percentage. The first value needs a price period steps back, so the
// lookback is the full period.
func ROCPLookback(period int) (int, error) {
	if err := checkPeriod(period, 1); err != nil {
		return 0, err
	}
	return period, nil
}

// ROCP computes the fractional change between each price and the price
// period steps earlier:
//
//	rocp = (price - price[n-period]) / price[n-period]
func (k Kernel) ROCP(input []TAFloat, period int, output []TAFloat) error {
	lookback, err := ROCPLookback(period)
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

	for i := lookback; i < len(input); i++ {
		output[i] = (input[i] - input[i-period]) / input[i-period]
	}
	fillNaN(output, lookback)
	return nil
}

// ROCPInc computes the next rate-of-change value from the new price and the
// price period steps back. The caller's raw-sample ring is the carried state.
func (k Kernel) ROCPInc(price, prevPeriodPrice TAFloat) (TAFloat, error) {
	if err := k.checkNoNaNValues(price, prevPeriodPrice); err != nil {
		return 0, err
	}
	return (price - prevPeriodPrice) / prevPeriodPrice, nil
}

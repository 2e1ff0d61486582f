package ta

// RSILookback returns the number of undefined leading outputs for the
// relative strength index. Deltas consume one bar and the seed averages
// consume period more, so the lookback is the full period.
func RSILookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// RSI computes the relative strength index with Wilder smoothing. The seed
// averages are the mean gain and loss over the first period deltas; each
// later bar folds its delta in at weight 1/period:
//
//	avg = (avg*(period-1) + delta) / period
//	rsi = 100 - 100/(1 + avgGain/avgLoss)
func (k Kernel) RSI(input []TAFloat, period int, output []TAFloat) error {
	lookback, err := RSILookback(period)
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

	var avgGain, avgLoss TAFloat
	for i := 1; i <= period; i++ {
		delta := input[i] - input[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= p
	avgLoss /= p
	output[lookback] = rsiFromAverages(avgGain, avgLoss)

	for i := lookback + 1; i < len(input); i++ {
		var gain, loss TAFloat
		if delta := input[i] - input[i-1]; delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		output[i] = rsiFromAverages(avgGain, avgLoss)
	}
	fillNaN(output, lookback)
	return nil
}

// RSIInc advances the RSI by one bar. The carried state is the previous
// close and the two Wilder averages; all three come back updated.
func (k Kernel) RSIInc(price, prevPrice, prevAvgGain, prevAvgLoss TAFloat, period int) (rsi, avgGain, avgLoss TAFloat, err error) {
	if err = checkPeriod(period, 2); err != nil {
		return 0, 0, 0, err
	}
	if err = k.checkNoNaNValues(price, prevPrice, prevAvgGain, prevAvgLoss); err != nil {
		return 0, 0, 0, err
	}
	p, err := FloatFromInt(period)
	if err != nil {
		return 0, 0, 0, err
	}

	var gain, loss TAFloat
	if delta := price - prevPrice; delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}
	avgGain = (prevAvgGain*(p-1) + gain) / p
	avgLoss = (prevAvgLoss*(p-1) + loss) / p
	return rsiFromAverages(avgGain, avgLoss), avgGain, avgLoss, nil
}

// rsiFromAverages maps Wilder averages onto the 0..100 scale. A zero average
// loss pins the index at 100 rather than dividing by zero.
func rsiFromAverages(avgGain, avgLoss TAFloat) TAFloat {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

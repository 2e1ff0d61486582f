package ta

// HALookback returns the number of undefined leading outputs for the
// Heikin-Ashi transform. The first bar seeds itself, so there is none.
func HALookback() int { return 0 }

// HA computes Heikin-Ashi candles from raw OHLC series. Each smoothed bar
// opens at the midpoint of the previous smoothed bar and closes at the mean
// of the raw bar:
//
//	haClose = (open+high+low+close)/4
//	haOpen  = (prevHAOpen+prevHAClose)/2
func (k Kernel) HA(open, high, low, close []TAFloat, outOpen, outHigh, outLow, outClose []TAFloat) error {
	if err := checkData(len(open), HALookback()); err != nil {
		return err
	}
	if err := checkLengths(len(open), high, low, close, outOpen, outHigh, outLow, outClose); err != nil {
		return err
	}
	if err := k.checkNoNaN(open, high, low, close); err != nil {
		return err
	}

	haOpen := (open[0] + close[0]) / 2
	haClose := (open[0] + high[0] + low[0] + close[0]) / 4
	writeHA(outOpen, outHigh, outLow, outClose, 0, haOpen, haClose, high[0], low[0])
	for i := 1; i < len(open); i++ {
		haOpen = (outOpen[i-1] + outClose[i-1]) / 2
		haClose = (open[i] + high[i] + low[i] + close[i]) / 4
		writeHA(outOpen, outHigh, outLow, outClose, i, haOpen, haClose, high[i], low[i])
	}
	return nil
}

func writeHA(outOpen, outHigh, outLow, outClose []TAFloat, i int, haOpen, haClose, high, low TAFloat) {
	haHigh := high
	if haOpen > haHigh {
		haHigh = haOpen
	}
	if haClose > haHigh {
		haHigh = haClose
	}
	haLow := low
	if haOpen < haLow {
		haLow = haOpen
	}
	if haClose < haLow {
		haLow = haClose
	}
	outOpen[i] = haOpen
	outHigh[i] = haHigh
	outLow[i] = haLow
	outClose[i] = haClose
}

// HAInc transforms one raw bar into its Heikin-Ashi form. The carried state
// is the previous smoothed open and close.
func (k Kernel) HAInc(open, high, low, close, prevHAOpen, prevHAClose TAFloat) (haOpen, haHigh, haLow, haClose TAFloat, err error) {
	if err = k.checkNoNaNValues(open, high, low, close, prevHAOpen, prevHAClose); err != nil {
		return 0, 0, 0, 0, err
	}

	haOpen = (prevHAOpen + prevHAClose) / 2
	haClose = (open + high + low + close) / 4
	haHigh = high
	if haOpen > haHigh {
		haHigh = haOpen
	}
	if haClose > haHigh {
		haHigh = haClose
	}
	haLow = low
	if haOpen < haLow {
		haLow = haOpen
	}
	if haClose < haLow {
		haLow = haClose
	}
	return haOpen, haHigh, haLow, haClose, nil
}

package ta

// MaxLookback returns the number of undefined leading outputs for the
// rolling window maximum.
func MaxLookback(period int) (int, error) {
	if err := checkPeriod(period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// MinLookback returns the number of undefined leading outputs for the
// rolling window minimum.
func MinLookback(period int) (int, error) {
	return MaxLookback(period)
}

// Max computes the rolling maximum of the last period samples. Extremum
// candidates are kept in a monotonic deque, so a departing maximum is
// replaced without rescanning the window and the whole series costs O(n).
func (k Kernel) Max(input []TAFloat, period int, output []TAFloat) error {
	return k.rollingExtremum(input, period, output, true)
}

// Min computes the rolling minimum of the last period samples.
func (k Kernel) Min(input []TAFloat, period int, output []TAFloat) error {
	return k.rollingExtremum(input, period, output, false)
}

func (k Kernel) rollingExtremum(input []TAFloat, period int, output []TAFloat, max bool) error {
	lookback, err := MaxLookback(period)
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

	win, err := NewMonotonicWindow(period, max)
	if err != nil {
		return err
	}
	for i, v := range input {
		ext := win.Push(v)
		if i >= lookback {
			output[i] = ext
		}
	}
	fillNaN(output, lookback)
	return nil
}

// MaxInc advances a rolling maximum by one sample. The MonotonicWindow is
// the carried state; seed it by pushing the last period samples of history
// (SeedMax does exactly that).
func (k Kernel) MaxInc(state *MonotonicWindow, price TAFloat) (TAFloat, error) {
	if err := k.checkNoNaNValues(price); err != nil {
		return 0, err
	}
	return state.Push(price), nil
}

// MinInc advances a rolling minimum by one sample.
func (k Kernel) MinInc(state *MonotonicWindow, price TAFloat) (TAFloat, error) {
	return k.MaxInc(state, price)
}

// SeedMax builds rolling-maximum state from the tail of a price history, so
// subsequent MaxInc calls continue exactly where a batch Max call left off.
func (k Kernel) SeedMax(input []TAFloat, period int) (*MonotonicWindow, error) {
	return k.seedExtremum(input, period, true)
}

// SeedMin builds rolling-minimum state from the tail of a price history.
func (k Kernel) SeedMin(input []TAFloat, period int) (*MonotonicWindow, error) {
	return k.seedExtremum(input, period, false)
}

func (k Kernel) seedExtremum(input []TAFloat, period int, max bool) (*MonotonicWindow, error) {
	lookback, err := MaxLookback(period)
	if err != nil {
		return nil, err
	}
	if err := checkData(len(input), lookback); err != nil {
		return nil, err
	}
	if err := k.checkNoNaN(input); err != nil {
		return nil, err
	}
	win, err := NewMonotonicWindow(period, max)
	if err != nil {
		return nil, err
	}
	for _, v := range input[len(input)-period:] {
		win.Push(v)
	}
	return win, nil
}
